package booking

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"jobnest/models"
)

// CodeLength is the number of digits in a completion code.
const CodeLength = 6

// HashCode computes the SHA-256 hex digest stored in place of the plaintext
// completion code.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// issueChallenge generates a fresh completion challenge. The plaintext code is
// returned for delivery to the customer; only its hash is attached to the
// booking. Any prior challenge is overwritten by the caller, which invalidates
// a stale shared code.
func issueChallenge(src DigitSource, now time.Time) (string, models.CompletionChallenge, error) {
	code, err := src.Digits(CodeLength)
	if err != nil {
		return "", models.CompletionChallenge{}, fmt.Errorf("failed to generate completion code: %w", err)
	}
	return code, models.CompletionChallenge{
		CodeHash: HashCode(code),
		IssuedAt: now,
		Attempts: 0,
	}, nil
}

// verifyChallenge checks a supplied code against the booking's outstanding
// challenge. It returns the updated challenge pointer to store back on the
// booking (nil when the challenge is consumed or invalidated) together with
// the outcome:
//
//   - nil error: code matched; the challenge is consumed.
//   - NoChallenge: nothing outstanding.
//   - ChallengeExpired: TTL elapsed; the challenge is cleared, forcing reissue.
//   - ChallengeMismatch: wrong code; attempts are counted and the challenge is
//     invalidated once the cap is reached, which bounds guessing over the
//     6-digit space.
//
// The returned challenge must be persisted even on failure, otherwise the
// attempt counter would reset on every try.
func verifyChallenge(ch *models.CompletionChallenge, supplied string, now time.Time, p Policy) (*models.CompletionChallenge, error) {
	if ch == nil {
		return nil, NewNoChallengeError("no completion code outstanding")
	}
	if now.Sub(ch.IssuedAt) > p.ChallengeTTL {
		return nil, NewChallengeExpiredError("completion code expired")
	}
	if HashCode(supplied) != ch.CodeHash {
		updated := *ch
		updated.Attempts++
		if updated.Attempts >= p.MaxCodeAttempts {
			return nil, NewChallengeMismatchError("completion code attempts exhausted")
		}
		return &updated, NewChallengeMismatchError("completion code does not match")
	}
	return nil, nil
}
