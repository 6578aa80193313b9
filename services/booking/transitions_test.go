package booking

import (
	"testing"
	"time"

	"jobnest/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullCompletionFlow(t *testing.T) {
	m := newTestMachine("482913")
	provider := approvedProvider()

	b := newTestBooking(models.BookingStatusPending)

	res, err := m.Apply(b, providerActor(), provider, ActionAccept, Payload{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, res.Booking.Status)

	res, err = m.Apply(res.Booking, providerActor(), provider, ActionStart, Payload{}, testNow.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusInProgress, res.Booking.Status)

	res, err = m.Apply(res.Booking, providerActor(), provider, ActionInitiateCompletion, Payload{}, testNow.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusInProgress, res.Booking.Status)
	assert.Equal(t, "482913", res.IssuedCode)
	require.NotNil(t, res.Booking.Challenge)
	assert.Equal(t, HashCode("482913"), res.Booking.Challenge.CodeHash)

	res, err = m.Apply(res.Booking, providerActor(), provider, ActionVerifyCompletion, Payload{Code: "482913"}, testNow.Add(3*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, res.Booking.Status)
	assert.Nil(t, res.Booking.Challenge)

	invoice, err := Project(res.Booking, 0.08, 0.10)
	require.NoError(t, err)
	assert.Equal(t, 1000.00, invoice.Subtotal)
	assert.Equal(t, 80.00, invoice.Tax)
	assert.Equal(t, 1080.00, invoice.Total)
}

func TestApplyNeverMutatesInput(t *testing.T) {
	m := newTestMachine()
	b := newTestBooking(models.BookingStatusPending)
	before := b.Clone()

	_, err := m.Apply(b, providerActor(), approvedProvider(), ActionAccept, Payload{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, before, b)
}

func TestApplyIsDeterministic(t *testing.T) {
	b := newTestBooking(models.BookingStatusPending)

	first, err1 := newTestMachine().Apply(b, providerActor(), approvedProvider(), ActionAccept, Payload{}, testNow)
	second, err2 := newTestMachine().Apply(b, providerActor(), approvedProvider(), ActionAccept, Payload{}, testNow)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)
}

func TestCustomerCancelPendingThenCancelAgain(t *testing.T) {
	m := newTestMachine()
	b := newTestBooking(models.BookingStatusPending)

	res, err := m.Apply(b, customerActor(), approvedProvider(), ActionCancel, Payload{Reason: "found someone sooner"}, testNow)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, res.Booking.Status)
	require.NotNil(t, res.Booking.Cancellation)
	assert.Equal(t, "cust-1", res.Booking.Cancellation.CancelledBy)

	_, err = m.Apply(res.Booking, customerActor(), approvedProvider(), ActionCancel, Payload{}, testNow)
	require.Error(t, err)
	assert.Equal(t, CodeInvalidState, ErrorCode(err))
}

func TestCancelFromConfirmedIsRefused(t *testing.T) {
	m := newTestMachine()
	b := newTestBooking(models.BookingStatusConfirmed)

	_, err := m.Apply(b, customerActor(), approvedProvider(), ActionCancel, Payload{}, testNow)
	require.Error(t, err)
	assert.Equal(t, CodeInvalidState, ErrorCode(err))
}

func TestRejectRequiresReason(t *testing.T) {
	m := newTestMachine()
	b := newTestBooking(models.BookingStatusPending)

	_, err := m.Apply(b, providerActor(), approvedProvider(), ActionReject, Payload{}, testNow)
	require.Error(t, err)
	assert.Equal(t, CodeInvariantViolation, ErrorCode(err))

	res, err := m.Apply(b, providerActor(), approvedProvider(), ActionReject, Payload{Reason: "fully booked"}, testNow)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusRejected, res.Booking.Status)
	require.NotNil(t, res.Booking.Rejection)
	assert.Equal(t, "fully booked", res.Booking.Rejection.Reason)
}

func TestSuspensionGatesInitiateUntilRestored(t *testing.T) {
	m := newTestMachine()
	b := newTestBooking(models.BookingStatusInProgress)

	_, err := m.Apply(b, providerActor(), suspendedProvider(), ActionInitiateCompletion, Payload{}, testNow)
	require.Error(t, err)
	assert.Equal(t, CodeUnauthorized, ErrorCode(err))

	res, err := m.Apply(b, providerActor(), approvedProvider(), ActionInitiateCompletion, Payload{}, testNow)
	require.NoError(t, err)
	assert.NotNil(t, res.Booking.Challenge)
}

func TestCustomerCannotRunProviderActions(t *testing.T) {
	m := newTestMachine()

	_, err := m.Apply(newTestBooking(models.BookingStatusPending), customerActor(), approvedProvider(), ActionAccept, Payload{}, testNow)
	assert.Equal(t, CodeUnauthorized, ErrorCode(err))

	_, err = m.Apply(newTestBooking(models.BookingStatusConfirmed), customerActor(), approvedProvider(), ActionStart, Payload{}, testNow)
	assert.Equal(t, CodeUnauthorized, ErrorCode(err))

	_, err = m.Apply(newTestBooking(models.BookingStatusInProgress), customerActor(), approvedProvider(), ActionVerifyCompletion, Payload{Code: "482913"}, testNow)
	assert.Equal(t, CodeUnauthorized, ErrorCode(err))
}

func TestExpireRequiresSystemActor(t *testing.T) {
	m := newTestMachine()
	b := newTestBooking(models.BookingStatusPending)
	past := b.ScheduledAt.Add(2 * time.Hour)

	_, err := m.Apply(b, customerActor(), approvedProvider(), ActionExpire, Payload{}, past)
	assert.Equal(t, CodeUnauthorized, ErrorCode(err))

	res, err := m.Apply(b, models.SystemActor, models.Provider{}, ActionExpire, Payload{}, past)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusExpired, res.Booking.Status)
}

func TestExpireBeforeGraceIsRefused(t *testing.T) {
	m := newTestMachine()
	b := newTestBooking(models.BookingStatusPending)

	_, err := m.Apply(b, models.SystemActor, models.Provider{}, ActionExpire, Payload{}, b.ScheduledAt.Add(time.Minute))
	require.Error(t, err)
	assert.Equal(t, CodeInvalidState, ErrorCode(err))
}

func TestProviderCancelInProgress(t *testing.T) {
	m := newTestMachine()
	b := newTestBooking(models.BookingStatusInProgress)
	b.Challenge = &models.CompletionChallenge{CodeHash: HashCode("482913"), IssuedAt: testNow}

	res, err := m.Apply(b, providerActor(), approvedProvider(), ActionCancel, Payload{Reason: "customer absent"}, testNow)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, res.Booking.Status)
	// Cancelling clears any outstanding challenge.
	assert.Nil(t, res.Booking.Challenge)
}

func TestNoStatusUnreachableFromPending(t *testing.T) {
	// Walk the edge table from PENDING and confirm it reaches exactly the
	// documented statuses.
	reached := map[models.BookingStatus]bool{models.BookingStatusPending: true}
	frontier := []models.BookingStatus{models.BookingStatusPending}
	for len(frontier) > 0 {
		status := frontier[0]
		frontier = frontier[1:]
		for _, dest := range transitionTable[status] {
			if !reached[dest] {
				reached[dest] = true
				frontier = append(frontier, dest)
			}
		}
	}

	expected := []models.BookingStatus{
		models.BookingStatusPending,
		models.BookingStatusConfirmed,
		models.BookingStatusInProgress,
		models.BookingStatusCompleted,
		models.BookingStatusCancelled,
		models.BookingStatusRejected,
		models.BookingStatusExpired,
	}
	assert.Len(t, reached, len(expected))
	for _, status := range expected {
		assert.True(t, reached[status], "status %s unreachable", status)
	}

	// Terminal statuses have no outgoing edges.
	for _, status := range expected {
		if status.IsTerminal() {
			assert.Empty(t, transitionTable[status])
		}
	}
}
