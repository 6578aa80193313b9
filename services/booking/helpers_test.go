package booking

import (
	"time"

	"jobnest/models"

	"go.uber.org/zap"
)

// fixedClock always reports the same instant.
type fixedClock struct {
	at time.Time
}

func (c fixedClock) Now() time.Time { return c.at }

// scriptedDigits returns pre-baked codes in order, so challenge flows are
// deterministic under test.
type scriptedDigits struct {
	codes []string
	idx   *int
}

func newScriptedDigits(codes ...string) scriptedDigits {
	idx := 0
	return scriptedDigits{codes: codes, idx: &idx}
}

func (s scriptedDigits) Digits(n int) (string, error) {
	code := s.codes[*s.idx%len(s.codes)]
	*s.idx++
	return code, nil
}

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func testPolicy() Policy {
	return Policy{
		ChallengeTTL:    30 * time.Minute,
		MaxCodeAttempts: 5,
		ExpiryGrace:     time.Hour,
	}
}

func newTestMachine(codes ...string) *Machine {
	if len(codes) == 0 {
		codes = []string{"482913"}
	}
	p := testPolicy()
	return &Machine{
		Policy: p,
		Guard:  Guard{Policy: p},
		Digits: newScriptedDigits(codes...),
		Logger: zap.NewNop(),
	}
}

func newTestBooking(status models.BookingStatus) models.Booking {
	return models.Booking{
		ID:          "bk-1",
		CustomerID:  "cust-1",
		ProviderID:  "prov-1",
		ServiceID:   "svc-plumbing",
		Status:      status,
		BaseAmount:  1000.00,
		ScheduledAt: testNow.Add(24 * time.Hour),
		CreatedAt:   testNow.Add(-time.Hour),
		UpdatedAt:   testNow.Add(-time.Hour),
	}
}

func approvedProvider() models.Provider {
	return models.Provider{ID: "prov-1", UserID: "provuser-1", Status: models.ProviderStatusApproved}
}

func suspendedProvider() models.Provider {
	p := approvedProvider()
	p.Status = models.ProviderStatusSuspended
	return p
}

func providerActor() models.Actor {
	return models.Actor{UserID: "provuser-1", Role: models.RoleProvider, ProviderID: "prov-1"}
}

func customerActor() models.Actor {
	return models.Actor{UserID: "cust-1", Role: models.RoleCustomer}
}

func adminActor() models.Actor {
	return models.Actor{UserID: "admin-1", Role: models.RoleAdmin}
}
