package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB         int    `mapstructure:"REDIS_CACHE_DB"`
	RedisProviderCacheDB int    `mapstructure:"REDIS_PROVIDER_CACHE_DB"`
	RedisSweepDB         int    `mapstructure:"REDIS_SWEEP_DB"`

	// Billing policy.
	TaxRate         float64 `mapstructure:"TAX_RATE"`
	PlatformFeeRate float64 `mapstructure:"PLATFORM_FEE_RATE"`

	// Completion challenge policy.
	CompletionCodeTTLMin      int `mapstructure:"COMPLETION_CODE_TTL_MIN"`
	CompletionCodeMaxAttempts int `mapstructure:"COMPLETION_CODE_MAX_ATTEMPTS"`

	// Expiry sweep policy.
	BookingExpiryGraceMin int `mapstructure:"BOOKING_EXPIRY_GRACE_MIN"`
	SweepIntervalMin      int `mapstructure:"SWEEP_INTERVAL_MIN"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_PROVIDER_CACHE_DB", 1)
	viper.SetDefault("REDIS_SWEEP_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("TAX_RATE", 0.08)
	viper.SetDefault("PLATFORM_FEE_RATE", 0.10)
	viper.SetDefault("COMPLETION_CODE_TTL_MIN", 30)
	viper.SetDefault("COMPLETION_CODE_MAX_ATTEMPTS", 5)
	viper.SetDefault("BOOKING_EXPIRY_GRACE_MIN", 60)
	viper.SetDefault("SWEEP_INTERVAL_MIN", 5)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// CompletionCodeTTL returns the challenge validity window.
func CompletionCodeTTL() time.Duration {
	return time.Duration(AppConfig.CompletionCodeTTLMin) * time.Minute
}

// BookingExpiryGrace returns the window past the scheduled time before a
// pending booking is swept to EXPIRED.
func BookingExpiryGrace() time.Duration {
	return time.Duration(AppConfig.BookingExpiryGraceMin) * time.Minute
}
