package booking

import (
	"time"

	"jobnest/models"

	"go.uber.org/zap"
)

// Payload carries the per-action inputs of a transition.
type Payload struct {
	Reason string `json:"reason,omitempty"` // Rejection/cancellation reason.
	Code   string `json:"code,omitempty"`   // Supplied completion code for VERIFY_COMPLETION.
}

// transitionTable is the closed edge set of the booking lifecycle. Terminal
// statuses have no entry. INITIATE_COMPLETION is a self-edge: it attaches a
// challenge without changing status.
var transitionTable = map[models.BookingStatus]map[Action]models.BookingStatus{
	models.BookingStatusPending: {
		ActionAccept: models.BookingStatusConfirmed,
		ActionReject: models.BookingStatusRejected,
		ActionCancel: models.BookingStatusCancelled,
		ActionExpire: models.BookingStatusExpired,
	},
	models.BookingStatusConfirmed: {
		ActionStart: models.BookingStatusInProgress,
	},
	models.BookingStatusInProgress: {
		ActionInitiateCompletion: models.BookingStatusInProgress,
		ActionVerifyCompletion:   models.BookingStatusCompleted,
		ActionCancel:             models.BookingStatusCancelled,
	},
}

// ApplyResult is the outcome of a successful transition.
type ApplyResult struct {
	Booking models.Booking
	// IssuedCode is the plaintext completion code, set only for
	// INITIATE_COMPLETION. It is handed to the notification dispatcher for
	// delivery to the customer and stored nowhere.
	IssuedCode string
}

// Machine owns the booking transition logic. It is value-in/value-out: the
// input booking is never mutated, and identical inputs (including now) yield
// identical outputs for a fixed digit source.
type Machine struct {
	Policy Policy
	Guard  Guard
	Digits DigitSource
	Logger *zap.Logger
}

func NewMachine(p Policy, logger *zap.Logger) *Machine {
	return &Machine{
		Policy: p,
		Guard:  Guard{Policy: p},
		Digits: CryptoDigitSource{},
		Logger: logger,
	}
}

func (m *Machine) logger() *zap.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return zap.L()
}

// Apply attempts one transition and returns the resulting booking value. The
// caller persists the result with a compare-and-swap on the prior status; a
// lost race surfaces there, never here.
//
// For VERIFY_COMPLETION a challenge failure (mismatch, expired) returns both a
// non-nil error and an updated booking carrying the attempt counter or cleared
// challenge; the caller must persist that booking so failed attempts count.
func (m *Machine) Apply(b models.Booking, actor models.Actor, provider models.Provider, action Action, payload Payload, now time.Time) (ApplyResult, error) {
	permitted := m.Guard.PermittedActions(actor, b, provider, now)

	if !permitted.Has(action) {
		// VERIFY_COMPLETION against a missing or expired challenge is reported
		// through the challenge taxonomy, not as a blanket authorization error.
		if action == ActionVerifyCompletion &&
			m.Guard.roleEligible(actor, b, provider, action) &&
			b.Status == models.BookingStatusInProgress {
			return m.applyVerify(b, payload, now)
		}
		if !m.Guard.roleEligible(actor, b, provider, action) {
			return ApplyResult{}, NewUnauthorizedError("action not permitted for this actor")
		}
		return ApplyResult{}, NewInvalidStateError("booking status does not admit this action")
	}

	// Re-validate against the edge table independently of the guard. A
	// disagreement means the guard and the table have drifted; refuse the
	// transition and log it, never apply.
	dest, ok := transitionTable[b.Status][action]
	if !ok {
		m.logger().Error("guard permitted an action absent from the transition table",
			zap.String("bookingId", b.ID),
			zap.String("status", string(b.Status)),
			zap.String("action", string(action)),
		)
		return ApplyResult{}, NewInvalidStateError("transition not defined for current status")
	}

	if action == ActionExpire && actor.Role != models.RoleSystem {
		return ApplyResult{}, NewUnauthorizedError("only the system may expire a booking")
	}

	next := b.Clone()
	next.UpdatedAt = now

	switch action {
	case ActionAccept:
		next.Status = dest
	case ActionStart:
		next.Status = dest
	case ActionReject:
		if payload.Reason == "" {
			return ApplyResult{}, NewInvariantViolationError("rejection requires a reason")
		}
		next.Status = dest
		next.Rejection = &models.Rejection{Reason: payload.Reason, At: now}
	case ActionCancel:
		next.Status = dest
		next.Cancellation = &models.Cancellation{
			CancelledBy: actor.UserID,
			Reason:      payload.Reason,
			At:          now,
		}
		next.Challenge = nil
	case ActionExpire:
		next.Status = dest
	case ActionInitiateCompletion:
		code, ch, err := issueChallenge(m.Digits, now)
		if err != nil {
			return ApplyResult{}, err
		}
		next.Challenge = &ch
		return ApplyResult{Booking: next, IssuedCode: code}, nil
	case ActionVerifyCompletion:
		return m.applyVerify(b, payload, now)
	default:
		return ApplyResult{}, NewInvalidStateError("unknown action")
	}

	return ApplyResult{Booking: next}, nil
}

// applyVerify resolves a completion code check. Ok is the only path to
// COMPLETED; every failure still returns the booking to persist.
func (m *Machine) applyVerify(b models.Booking, payload Payload, now time.Time) (ApplyResult, error) {
	if len(payload.Code) != CodeLength {
		return ApplyResult{}, NewInvariantViolationError("completion code must be 6 digits")
	}

	next := b.Clone()
	updated, err := verifyChallenge(b.Challenge, payload.Code, now, m.Policy)
	if err != nil {
		// Expired and exhausted challenges are cleared, forcing reissue; a
		// plain mismatch keeps the challenge with its bumped attempt counter.
		next.Challenge = updated
		next.UpdatedAt = now
		return ApplyResult{Booking: next}, err
	}

	next.Status = models.BookingStatusCompleted
	next.Challenge = nil
	next.UpdatedAt = now
	return ApplyResult{Booking: next}, nil
}
