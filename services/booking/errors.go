package booking

import (
	"errors"
	"fmt"
)

// Error codes for the booking domain. Handlers map these to HTTP statuses and
// user-facing messages; all of them are recoverable by the caller.
const (
	CodeUnauthorized       = "unauthorized"
	CodeInvalidState       = "invalidState"
	CodeInvariantViolation = "invariantViolation"
	CodeNotFound           = "notFound"
	CodeConflict           = "conflict"
	CodeChallengeExpired   = "challengeExpired"
	CodeChallengeMismatch  = "challengeMismatch"
	CodeNoChallenge        = "noChallenge"
)

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewUnauthorizedError(msg string) error {
	return &DomainError{Code: CodeUnauthorized, Message: msg}
}

func NewInvalidStateError(msg string) error {
	return &DomainError{Code: CodeInvalidState, Message: msg}
}

func NewInvariantViolationError(msg string) error {
	return &DomainError{Code: CodeInvariantViolation, Message: msg}
}

func NewNotFoundError(msg string) error {
	return &DomainError{Code: CodeNotFound, Message: msg}
}

func NewConflictError(msg string) error {
	return &DomainError{Code: CodeConflict, Message: msg}
}

func NewChallengeExpiredError(msg string) error {
	return &DomainError{Code: CodeChallengeExpired, Message: msg}
}

func NewChallengeMismatchError(msg string) error {
	return &DomainError{Code: CodeChallengeMismatch, Message: msg}
}

func NewNoChallengeError(msg string) error {
	return &DomainError{Code: CodeNoChallenge, Message: msg}
}

// ErrorCode extracts the domain code from err, or "" for non-domain errors.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
