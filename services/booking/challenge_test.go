package booking

import (
	"testing"
	"time"

	"jobnest/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChallengeVerifiesExactlyOnce(t *testing.T) {
	m := newTestMachine("482913")
	b := newTestBooking(models.BookingStatusInProgress)

	res, err := m.Apply(b, providerActor(), approvedProvider(), ActionInitiateCompletion, Payload{}, testNow)
	require.NoError(t, err)

	res, err = m.Apply(res.Booking, providerActor(), approvedProvider(), ActionVerifyCompletion, Payload{Code: "482913"}, testNow.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, res.Booking.Status)

	// The booking is now terminal; the same code buys nothing.
	_, err = m.Apply(res.Booking, providerActor(), approvedProvider(), ActionVerifyCompletion, Payload{Code: "482913"}, testNow.Add(2*time.Minute))
	require.Error(t, err)
	assert.Equal(t, CodeInvalidState, ErrorCode(err))
}

func TestChallengeExpiresAfterTTL(t *testing.T) {
	m := newTestMachine("482913")
	b := newTestBooking(models.BookingStatusInProgress)

	res, err := m.Apply(b, providerActor(), approvedProvider(), ActionInitiateCompletion, Payload{}, testNow)
	require.NoError(t, err)

	late := testNow.Add(testPolicy().ChallengeTTL + time.Second)
	res, err = m.Apply(res.Booking, providerActor(), approvedProvider(), ActionVerifyCompletion, Payload{Code: "482913"}, late)
	require.Error(t, err)
	assert.Equal(t, CodeChallengeExpired, ErrorCode(err))
	// Expiry clears the challenge, so a correct code can never complete late.
	assert.Nil(t, res.Booking.Challenge)
	assert.Equal(t, models.BookingStatusInProgress, res.Booking.Status)
}

func TestReissueInvalidatesPriorCode(t *testing.T) {
	m := newTestMachine("111111", "222222")
	b := newTestBooking(models.BookingStatusInProgress)

	res, err := m.Apply(b, providerActor(), approvedProvider(), ActionInitiateCompletion, Payload{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, "111111", res.IssuedCode)

	// The first code expires; initiation opens up again and mints a new one.
	later := testNow.Add(testPolicy().ChallengeTTL + time.Minute)
	res, err = m.Apply(res.Booking, providerActor(), approvedProvider(), ActionInitiateCompletion, Payload{}, later)
	require.NoError(t, err)
	assert.Equal(t, "222222", res.IssuedCode)

	_, err = m.Apply(res.Booking, providerActor(), approvedProvider(), ActionVerifyCompletion, Payload{Code: "111111"}, later.Add(time.Minute))
	require.Error(t, err)
	assert.Equal(t, CodeChallengeMismatch, ErrorCode(err))

	done, err := m.Apply(res.Booking, providerActor(), approvedProvider(), ActionVerifyCompletion, Payload{Code: "222222"}, later.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, done.Booking.Status)
}

func TestWrongCodeCountsAttempts(t *testing.T) {
	m := newTestMachine("482913")
	b := newTestBooking(models.BookingStatusInProgress)

	res, err := m.Apply(b, providerActor(), approvedProvider(), ActionInitiateCompletion, Payload{}, testNow)
	require.NoError(t, err)

	res, err = m.Apply(res.Booking, providerActor(), approvedProvider(), ActionVerifyCompletion, Payload{Code: "000000"}, testNow.Add(time.Minute))
	require.Error(t, err)
	assert.Equal(t, CodeChallengeMismatch, ErrorCode(err))
	require.NotNil(t, res.Booking.Challenge)
	assert.Equal(t, 1, res.Booking.Challenge.Attempts)

	// A correct code after a miss still completes.
	done, err := m.Apply(res.Booking, providerActor(), approvedProvider(), ActionVerifyCompletion, Payload{Code: "482913"}, testNow.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, done.Booking.Status)
}

func TestAttemptCapClearsChallenge(t *testing.T) {
	m := newTestMachine("482913")
	b := newTestBooking(models.BookingStatusInProgress)

	res, err := m.Apply(b, providerActor(), approvedProvider(), ActionInitiateCompletion, Payload{}, testNow)
	require.NoError(t, err)

	cur := res.Booking
	for i := 1; i <= testPolicy().MaxCodeAttempts; i++ {
		res, err = m.Apply(cur, providerActor(), approvedProvider(), ActionVerifyCompletion, Payload{Code: "999999"}, testNow.Add(time.Minute))
		require.Error(t, err)
		assert.Equal(t, CodeChallengeMismatch, ErrorCode(err))
		cur = res.Booking
	}

	// Exhaustion clears the challenge; even the right code is refused now.
	assert.Nil(t, cur.Challenge)
	_, err = m.Apply(cur, providerActor(), approvedProvider(), ActionVerifyCompletion, Payload{Code: "482913"}, testNow.Add(2*time.Minute))
	require.Error(t, err)
	assert.Equal(t, CodeNoChallenge, ErrorCode(err))

	// But the provider can start over with a fresh challenge.
	res, err = m.Apply(cur, providerActor(), approvedProvider(), ActionInitiateCompletion, Payload{}, testNow.Add(3*time.Minute))
	require.NoError(t, err)
	assert.NotNil(t, res.Booking.Challenge)
}

func TestVerifyRejectsMalformedCode(t *testing.T) {
	m := newTestMachine("482913")
	b := newTestBooking(models.BookingStatusInProgress)

	res, err := m.Apply(b, providerActor(), approvedProvider(), ActionInitiateCompletion, Payload{}, testNow)
	require.NoError(t, err)

	for _, code := range []string{"", "1234", "12345678"} {
		out, err := m.Apply(res.Booking, providerActor(), approvedProvider(), ActionVerifyCompletion, Payload{Code: code}, testNow.Add(time.Minute))
		require.Error(t, err, "code %q", code)
		assert.Equal(t, CodeInvariantViolation, ErrorCode(err), "code %q", code)
		// Malformed input does not burn an attempt.
		if out.Booking.Challenge != nil {
			assert.Equal(t, 0, out.Booking.Challenge.Attempts)
		}
	}
}

func TestCodeHashIsStoredNotPlaintext(t *testing.T) {
	m := newTestMachine("482913")
	b := newTestBooking(models.BookingStatusInProgress)

	res, err := m.Apply(b, providerActor(), approvedProvider(), ActionInitiateCompletion, Payload{}, testNow)
	require.NoError(t, err)
	require.NotNil(t, res.Booking.Challenge)
	assert.NotEqual(t, "482913", res.Booking.Challenge.CodeHash)
	assert.Len(t, res.Booking.Challenge.CodeHash, 64)
}
