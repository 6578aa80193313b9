package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// Clock supplies the current instant. Injected so transition and challenge
// logic stays deterministic under test.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock in UTC.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// DigitSource yields uniformly distributed decimal digits for completion codes.
type DigitSource interface {
	Digits(n int) (string, error)
}

// CryptoDigitSource draws each digit from crypto/rand, so codes are uniform
// over the full space rather than biased by modulo truncation.
type CryptoDigitSource struct{}

var ten = big.NewInt(10)

func (CryptoDigitSource) Digits(n int) (string, error) {
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		buf[i] = byte('0' + d.Int64())
	}
	return string(buf), nil
}
