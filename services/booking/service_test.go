package booking

import (
	"context"
	"testing"
	"time"

	bookingRepo "jobnest/database/repository/booking"
	providerRepo "jobnest/database/repository/provider"
	"jobnest/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeBookingRepo keeps bookings in memory. Setting conflictNext makes the
// next conditional replace report a lost race, as if another transition
// committed between the caller's read and write.
type fakeBookingRepo struct {
	bookings     map[string]models.Booking
	conflictNext bool
}

func newFakeBookingRepo(bookings ...models.Booking) *fakeBookingRepo {
	r := &fakeBookingRepo{bookings: map[string]models.Booking{}}
	for _, b := range bookings {
		r.bookings[b.ID] = b.Clone()
	}
	return r
}

func (r *fakeBookingRepo) Create(b *models.Booking) error {
	r.bookings[b.ID] = b.Clone()
	return nil
}

func (r *fakeBookingRepo) GetByID(id string) (*models.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	clone := b.Clone()
	return &clone, nil
}

func (r *fakeBookingRepo) ReplaceWithStatus(b *models.Booking, expected models.BookingStatus) error {
	if r.conflictNext {
		r.conflictNext = false
		return bookingRepo.ErrStaleStatus
	}
	stored, ok := r.bookings[b.ID]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	if stored.Status != expected {
		return bookingRepo.ErrStaleStatus
	}
	r.bookings[b.ID] = b.Clone()
	return nil
}

func (r *fakeBookingRepo) ListDuePending(cutoff time.Time, limit int64) ([]models.Booking, error) {
	var due []models.Booking
	for _, b := range r.bookings {
		if b.Status == models.BookingStatusPending && b.ScheduledAt.Before(cutoff) {
			due = append(due, b.Clone())
		}
	}
	return due, nil
}

type fakeProviderStore struct {
	providers map[string]models.Provider
}

func newFakeProviderStore(providers ...models.Provider) *fakeProviderStore {
	r := &fakeProviderStore{providers: map[string]models.Provider{}}
	for _, p := range providers {
		r.providers[p.ID] = p
	}
	return r
}

func (r *fakeProviderStore) Create(p *models.Provider) error {
	r.providers[p.ID] = *p
	return nil
}

func (r *fakeProviderStore) GetByID(id string) (*models.Provider, error) {
	p, ok := r.providers[id]
	if !ok {
		return nil, providerRepo.ErrNotFound
	}
	clone := p
	return &clone, nil
}

func (r *fakeProviderStore) UpdateStatus(id string, oldStatus, newStatus models.ProviderStatus) (*models.Provider, error) {
	p, ok := r.providers[id]
	if !ok {
		return nil, providerRepo.ErrNotFound
	}
	if p.Status != oldStatus {
		return nil, providerRepo.ErrStaleStatus
	}
	p.Status = newStatus
	r.providers[id] = p
	clone := p
	return &clone, nil
}

func (r *fakeProviderStore) AppendAudit(record *models.ProviderAudit) error { return nil }

func (r *fakeProviderStore) ListAudit(providerID string) ([]models.ProviderAudit, error) {
	return nil, nil
}

func newTestService(bookings ...models.Booking) (*DefaultBookingService, *fakeBookingRepo) {
	repo := newFakeBookingRepo(bookings...)
	svc := &DefaultBookingService{
		Repo:            repo,
		ProviderRepo:    newFakeProviderStore(approvedProvider()),
		Machine:         newTestMachine(),
		Clock:           fixedClock{at: testNow},
		Logger:          zap.NewNop(),
		TaxRate:         0.08,
		PlatformFeeRate: 0.10,
	}
	return svc, repo
}

func inProgressWithChallenge() models.Booking {
	b := newTestBooking(models.BookingStatusInProgress)
	b.Challenge = &models.CompletionChallenge{
		CodeHash: HashCode("482913"),
		IssuedAt: testNow.Add(-time.Minute),
	}
	return b
}

func TestActPersistsMismatchAttempts(t *testing.T) {
	svc, repo := newTestService(inProgressWithChallenge())
	ctx := context.Background()

	_, err := svc.Act(ctx, providerActor(), "bk-1", ActionVerifyCompletion, Payload{Code: "000000"})
	require.Error(t, err)
	assert.Equal(t, CodeChallengeMismatch, ErrorCode(err))

	// The miss must be written back, otherwise every request starts from a
	// fresh counter and the attempt cap never binds.
	stored := repo.bookings["bk-1"]
	require.NotNil(t, stored.Challenge)
	assert.Equal(t, 1, stored.Challenge.Attempts)
	assert.Equal(t, models.BookingStatusInProgress, stored.Status)

	_, err = svc.Act(ctx, providerActor(), "bk-1", ActionVerifyCompletion, Payload{Code: "111111"})
	require.Error(t, err)
	stored = repo.bookings["bk-1"]
	require.NotNil(t, stored.Challenge)
	assert.Equal(t, 2, stored.Challenge.Attempts)
}

func TestActAttemptCapBindsAcrossRequests(t *testing.T) {
	svc, repo := newTestService(inProgressWithChallenge())
	ctx := context.Background()

	for i := 0; i < testPolicy().MaxCodeAttempts; i++ {
		_, err := svc.Act(ctx, providerActor(), "bk-1", ActionVerifyCompletion, Payload{Code: "999999"})
		require.Error(t, err)
		assert.Equal(t, CodeChallengeMismatch, ErrorCode(err))
	}

	// Exhaustion cleared the stored challenge; the correct code is dead.
	assert.Nil(t, repo.bookings["bk-1"].Challenge)
	_, err := svc.Act(ctx, providerActor(), "bk-1", ActionVerifyCompletion, Payload{Code: "482913"})
	require.Error(t, err)
	assert.Equal(t, CodeNoChallenge, ErrorCode(err))
}

func TestActPersistsExpiredChallengeCleared(t *testing.T) {
	b := newTestBooking(models.BookingStatusInProgress)
	b.Challenge = &models.CompletionChallenge{
		CodeHash: HashCode("482913"),
		IssuedAt: testNow.Add(-testPolicy().ChallengeTTL - time.Minute),
	}
	svc, repo := newTestService(b)

	_, err := svc.Act(context.Background(), providerActor(), "bk-1", ActionVerifyCompletion, Payload{Code: "482913"})
	require.Error(t, err)
	assert.Equal(t, CodeChallengeExpired, ErrorCode(err))
	assert.Nil(t, repo.bookings["bk-1"].Challenge)
}

func TestActSurfacesConflictOnLostRace(t *testing.T) {
	svc, repo := newTestService(newTestBooking(models.BookingStatusPending))
	repo.conflictNext = true

	_, err := svc.Act(context.Background(), providerActor(), "bk-1", ActionAccept, Payload{})
	require.Error(t, err)
	assert.Equal(t, CodeConflict, ErrorCode(err))
	// The losing transition is not applied.
	assert.Equal(t, models.BookingStatusPending, repo.bookings["bk-1"].Status)
}

func TestActUnknownBooking(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Act(context.Background(), providerActor(), "bk-404", ActionAccept, Payload{})
	require.Error(t, err)
	assert.Equal(t, CodeNotFound, ErrorCode(err))
}

func TestCreateBookingUsesActorIdentity(t *testing.T) {
	svc, repo := newTestService()

	created, err := svc.CreateBooking(context.Background(), customerActor(), CreateBookingInput{
		ProviderID:  "prov-1",
		ServiceID:   "svc-plumbing",
		BaseAmount:  1000.004,
		ScheduledAt: testNow.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "cust-1", created.CustomerID)
	assert.Equal(t, models.BookingStatusPending, created.Status)
	assert.Equal(t, 1000.00, created.BaseAmount)

	stored := repo.bookings[created.ID]
	assert.Equal(t, "cust-1", stored.CustomerID)
}

func TestCreateBookingValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	valid := CreateBookingInput{
		ProviderID:  "prov-1",
		ServiceID:   "svc-plumbing",
		BaseAmount:  1000.00,
		ScheduledAt: testNow.Add(24 * time.Hour),
	}

	_, err := svc.CreateBooking(ctx, providerActor(), valid)
	assert.Equal(t, CodeUnauthorized, ErrorCode(err))

	bad := valid
	bad.BaseAmount = 0
	_, err = svc.CreateBooking(ctx, customerActor(), bad)
	assert.Equal(t, CodeInvariantViolation, ErrorCode(err))

	bad = valid
	bad.ScheduledAt = testNow.Add(-time.Hour)
	_, err = svc.CreateBooking(ctx, customerActor(), bad)
	assert.Equal(t, CodeInvariantViolation, ErrorCode(err))

	bad = valid
	bad.ProviderID = "prov-404"
	_, err = svc.CreateBooking(ctx, customerActor(), bad)
	assert.Equal(t, CodeNotFound, ErrorCode(err))
}

func TestExpireDueSweepsOverdueOnly(t *testing.T) {
	due := newTestBooking(models.BookingStatusPending)
	due.ScheduledAt = testNow.Add(-2 * time.Hour)

	fresh := newTestBooking(models.BookingStatusPending)
	fresh.ID = "bk-2"

	svc, repo := newTestService(due, fresh)

	expired, err := svc.ExpireDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	assert.Equal(t, models.BookingStatusExpired, repo.bookings["bk-1"].Status)
	assert.Equal(t, models.BookingStatusPending, repo.bookings["bk-2"].Status)
}
