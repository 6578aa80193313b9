package utils

import (
	"errors"
	"fmt"
	"time"

	"jobnest/config"
	"jobnest/models"

	"github.com/golang-jwt/jwt"
)

func secretKey() []byte {
	secret := config.AppConfig.JWTSecret
	if secret == "" {
		secret = "jobnest-dev-secret"
	}
	return []byte(secret)
}

// GenerateToken creates a signed JWT for the given actor. The provider claim
// is included only for provider actors.
func GenerateToken(actor models.Actor, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  actor.UserID,
		"role": string(actor.Role),
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(duration).Unix(),
	}
	if actor.ProviderID != "" {
		claims["providerId"] = actor.ProviderID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey(), nil
	})
}

// ActorFromToken resolves the Actor encoded in a valid token string.
func ActorFromToken(tokenString string) (models.Actor, error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return models.Actor{}, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Actor{}, errors.New("invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || role == "" {
		return models.Actor{}, errors.New("token missing subject or role")
	}
	actor := models.Actor{UserID: sub, Role: models.Role(role)}
	if pid, ok := claims["providerId"].(string); ok {
		actor.ProviderID = pid
	}
	switch actor.Role {
	case models.RoleCustomer, models.RoleProvider, models.RoleAdmin:
	default:
		return models.Actor{}, fmt.Errorf("unknown role %q in token", role)
	}
	return actor, nil
}
