package booking

import (
	"sort"
	"time"

	"jobnest/models"
)

// Action is an intent an actor can issue against a booking.
type Action string

const (
	ActionAccept             Action = "ACCEPT"
	ActionReject             Action = "REJECT"
	ActionCancel             Action = "CANCEL"
	ActionStart              Action = "START"
	ActionInitiateCompletion Action = "INITIATE_COMPLETION"
	ActionVerifyCompletion   Action = "VERIFY_COMPLETION"
	ActionExpire             Action = "EXPIRE"
)

// ActionSet is the set of actions permitted for an actor on a booking.
type ActionSet map[Action]struct{}

func (s ActionSet) Has(a Action) bool {
	_, ok := s[a]
	return ok
}

func (s ActionSet) add(a Action) {
	s[a] = struct{}{}
}

// List returns the actions in stable order.
func (s ActionSet) List() []Action {
	out := make([]Action, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Policy carries the tunable constants of the booking core.
type Policy struct {
	ChallengeTTL    time.Duration // Validity window of an issued completion code.
	MaxCodeAttempts int           // Failed verifies before the challenge is invalidated.
	ExpiryGrace     time.Duration // Window past scheduledAt before a pending booking expires.
}

// DefaultPolicy mirrors the configuration defaults.
func DefaultPolicy() Policy {
	return Policy{
		ChallengeTTL:    30 * time.Minute,
		MaxCodeAttempts: 5,
		ExpiryGrace:     60 * time.Minute,
	}
}

// Guard derives the permitted action set for an (actor, booking, provider)
// triple. It is pure: no side effects, deterministic in its inputs. An action
// absent from the set is the uniform authorization failure.
type Guard struct {
	Policy Policy
}

// challengeOutstanding reports whether an issued, unconsumed, unexpired
// challenge exists at the given instant.
func (g Guard) challengeOutstanding(b models.Booking, now time.Time) bool {
	return b.Challenge != nil && now.Sub(b.Challenge.IssuedAt) <= g.Policy.ChallengeTTL
}

// PermittedActions returns the actions the actor may issue against the booking
// at the given instant. Admin actors operate on providers through the
// moderation gate, never directly on bookings, so their set here is empty.
func (g Guard) PermittedActions(actor models.Actor, b models.Booking, provider models.Provider, now time.Time) ActionSet {
	set := make(ActionSet)

	matchingProvider := actor.Role == models.RoleProvider &&
		actor.ProviderID != "" &&
		actor.ProviderID == b.ProviderID &&
		provider.ID == b.ProviderID
	approved := provider.Status == models.ProviderStatusApproved
	owningCustomer := actor.Role == models.RoleCustomer && actor.UserID == b.CustomerID

	switch b.Status {
	case models.BookingStatusPending:
		if matchingProvider && approved {
			set.add(ActionAccept)
			set.add(ActionReject)
		}
		if owningCustomer {
			set.add(ActionCancel)
		}
		if actor.Role == models.RoleSystem && now.After(b.ScheduledAt.Add(g.Policy.ExpiryGrace)) {
			set.add(ActionExpire)
		}
	case models.BookingStatusConfirmed:
		if matchingProvider && approved {
			set.add(ActionStart)
		}
	case models.BookingStatusInProgress:
		if owningCustomer || matchingProvider {
			set.add(ActionCancel)
		}
		if matchingProvider && approved && !g.challengeOutstanding(b, now) {
			set.add(ActionInitiateCompletion)
		}
		if matchingProvider && g.challengeOutstanding(b, now) {
			set.add(ActionVerifyCompletion)
		}
	}
	// Terminal statuses yield the empty set.
	return set
}

// roleEligible checks only the identity half of an action's precondition:
// role, ownership and moderation status, ignoring the booking status. Apply
// uses it to tell Unauthorized apart from InvalidState when an action is
// absent from the permitted set.
func (g Guard) roleEligible(actor models.Actor, b models.Booking, provider models.Provider, action Action) bool {
	matchingProvider := actor.Role == models.RoleProvider &&
		actor.ProviderID != "" &&
		actor.ProviderID == b.ProviderID &&
		provider.ID == b.ProviderID
	approved := provider.Status == models.ProviderStatusApproved

	switch action {
	case ActionAccept, ActionReject, ActionStart, ActionInitiateCompletion:
		return matchingProvider && approved
	case ActionVerifyCompletion:
		return matchingProvider
	case ActionCancel:
		owningCustomer := actor.Role == models.RoleCustomer && actor.UserID == b.CustomerID
		return owningCustomer || matchingProvider
	case ActionExpire:
		return actor.Role == models.RoleSystem
	}
	return false
}
