// internal/market/booking_test.go
package market

import (
	"context"
	"testing"
	"time"

	"stall-market-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type bookingEnv struct {
	stalls  *memStallRepo
	vendors *memVendorRepo
	history *memHistoryRepo
	svc     *BookingService
	clock   *time.Time

	vendorID primitive.ObjectID
	stallID  primitive.ObjectID
}

func newBookingEnv(t *testing.T) *bookingEnv {
	t.Helper()

	env := &bookingEnv{
		stalls:  newMemStallRepo(),
		vendors: newMemVendorRepo(),
		history: newMemHistoryRepo(),
	}
	env.svc = NewBookingService(env.stalls, env.vendors, env.history, DefaultAttendanceWindow)

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	env.clock = &start
	env.svc.now = func() time.Time { return *env.clock }

	vendor := &models.Vendor{
		Email:   "asha@example.com",
		Name:    "Asha",
		ShopID:  "SHOP-11111111",
		License: models.License{Status: models.LicenseNotIssued},
	}
	require.NoError(t, env.vendors.Insert(context.Background(), vendor))
	env.vendorID = vendor.ID

	stall := &models.Stall{
		Name:         "Central Ground Stall 1",
		Position:     models.Position{Latitude: 12.97, Longitude: 77.59},
		LocationName: "Central Ground",
	}
	require.NoError(t, env.stalls.Insert(context.Background(), stall))
	env.stallID = stall.ID

	return env
}

func (env *bookingEnv) advance(d time.Duration) {
	*env.clock = env.clock.Add(d)
}

func (env *bookingEnv) book(t *testing.T) {
	t.Helper()
	_, err := env.svc.Claim(context.Background(), env.vendorID, env.stallID)
	require.NoError(t, err)
	_, err = env.svc.Confirm(context.Background(), env.vendorID, env.stallID, true)
	require.NoError(t, err)
}

// requireConsistent asserts the registry invariant taken == (assignedVendor != nil).
func requireConsistent(t *testing.T, stalls *memStallRepo) {
	t.Helper()
	all, err := stalls.FindAll(context.Background())
	require.NoError(t, err)
	for _, s := range all {
		require.Equal(t, s.Taken, s.AssignedVendor != nil, "stall %q: taken flag and assigned vendor out of sync", s.Name)
	}
}

func TestClaimConfirmReleaseRoundTrip(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	stall, err := env.svc.Claim(ctx, env.vendorID, env.stallID)
	require.NoError(t, err)
	assert.False(t, stall.Taken, "claim must not mark the stall taken before payment")
	require.NotNil(t, stall.ClaimedBy)
	assert.Equal(t, env.vendorID, *stall.ClaimedBy)
	requireConsistent(t, env.stalls)

	stall, err = env.svc.Confirm(ctx, env.vendorID, env.stallID, true)
	require.NoError(t, err)
	assert.True(t, stall.Taken)
	require.NotNil(t, stall.AssignedVendor)
	assert.Equal(t, env.vendorID, stall.AssignedVendor.VendorID)
	require.NotNil(t, stall.BookingTime)
	requireConsistent(t, env.stalls)

	vendor, err := env.vendors.FindByID(ctx, env.vendorID)
	require.NoError(t, err)
	require.NotNil(t, vendor.GPSCoordinates, "confirm must mirror the stall position onto the vendor")

	require.NoError(t, env.svc.Release(ctx, env.vendorID, env.stallID))

	stall, err = env.stalls.FindByID(ctx, env.stallID)
	require.NoError(t, err)
	assert.False(t, stall.Taken)
	assert.Nil(t, stall.AssignedVendor)
	assert.Nil(t, stall.BookingTime)
	requireConsistent(t, env.stalls)

	vendor, err = env.vendors.FindByID(ctx, env.vendorID)
	require.NoError(t, err)
	assert.Nil(t, vendor.GPSCoordinates, "release must clear the vendor coordinates")

	entries, err := env.history.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.HistoryAssigned, entries[0].Status)
	assert.Equal(t, models.HistoryUnassigned, entries[1].Status)
}

func TestClaimFailsOnTakenStall(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()
	env.book(t)

	other := &models.Vendor{Email: "ravi@example.com", Name: "Ravi", ShopID: "SHOP-22222222"}
	require.NoError(t, env.vendors.Insert(ctx, other))

	_, err := env.svc.Claim(ctx, other.ID, env.stallID)
	require.ErrorIs(t, err, ErrConflict)
}

func TestConfirmWithoutPaymentFails(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	_, err := env.svc.Claim(ctx, env.vendorID, env.stallID)
	require.NoError(t, err)

	_, err = env.svc.Confirm(ctx, env.vendorID, env.stallID, false)
	require.ErrorIs(t, err, ErrValidation)

	stall, err := env.stalls.FindByID(ctx, env.stallID)
	require.NoError(t, err)
	assert.False(t, stall.Taken)
}

func TestConfirmWithoutClaimFails(t *testing.T) {
	env := newBookingEnv(t)

	_, err := env.svc.Confirm(context.Background(), env.vendorID, env.stallID, true)
	require.ErrorIs(t, err, ErrConflict)
}

func TestSecondBookingRequiresRelease(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()
	env.book(t)

	// The only stall at Central Ground is now taken, so a second stall is
	// admissible there.
	second := &models.Stall{
		Name:         "Central Ground Stall 2",
		Position:     models.Position{Latitude: 12.98, Longitude: 77.60},
		LocationName: "Central Ground",
	}
	require.NoError(t, env.stalls.Insert(ctx, second))

	_, err := env.svc.Claim(ctx, env.vendorID, second.ID)
	require.ErrorIs(t, err, ErrConflict, "a vendor cannot hold two bookings")

	require.NoError(t, env.svc.Release(ctx, env.vendorID, env.stallID))

	_, err = env.svc.Claim(ctx, env.vendorID, second.ID)
	require.NoError(t, err)
}

func TestReleaseIsIdempotent(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()
	env.book(t)

	require.NoError(t, env.svc.Release(ctx, env.vendorID, env.stallID))
	entriesAfterFirst, err := env.history.FindAll(ctx)
	require.NoError(t, err)

	// Second release of an already-free stall: no error, no new history row.
	require.NoError(t, env.svc.Release(ctx, env.vendorID, env.stallID))
	entriesAfterSecond, err := env.history.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(entriesAfterFirst), len(entriesAfterSecond))
}

func TestReleaseByOtherVendorFails(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()
	env.book(t)

	other := &models.Vendor{Email: "ravi@example.com", Name: "Ravi", ShopID: "SHOP-22222222"}
	require.NoError(t, env.vendors.Insert(ctx, other))

	err := env.svc.Release(ctx, other.ID, env.stallID)
	require.ErrorIs(t, err, ErrConflict)
}

func TestMarkAttendanceRejectsSecondMarkSameDay(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()
	env.book(t)

	first, err := env.svc.MarkAttendance(ctx, env.vendorID)
	require.NoError(t, err)

	env.advance(2 * time.Hour)
	_, err = env.svc.MarkAttendance(ctx, env.vendorID)
	require.ErrorIs(t, err, ErrConflict)

	vendor, err := env.vendors.FindByID(ctx, env.vendorID)
	require.NoError(t, err)
	require.NotNil(t, vendor.LastAttendance)
	assert.True(t, vendor.LastAttendance.Equal(*first), "a rejected mark must not move the recorded timestamp")
}

func TestMarkAttendanceAllowedNextDayAfterFirstCheckIn(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()
	env.book(t)

	_, err := env.svc.MarkAttendance(ctx, env.vendorID)
	require.NoError(t, err)

	// The deadline only gates the first check-in; the next day's mark is
	// fine even though more than 24h have passed since booking.
	env.advance(26 * time.Hour)
	_, err = env.svc.MarkAttendance(ctx, env.vendorID)
	require.NoError(t, err)
}

func TestMarkAttendanceWithoutBookingFails(t *testing.T) {
	env := newBookingEnv(t)

	_, err := env.svc.MarkAttendance(context.Background(), env.vendorID)
	require.ErrorIs(t, err, ErrConflict)
}

func TestLateFirstCheckInReleasesStall(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()
	env.book(t)

	env.advance(25 * time.Hour)
	_, err := env.svc.MarkAttendance(ctx, env.vendorID)
	require.ErrorIs(t, err, ErrConflict)

	stall, err := env.stalls.FindByID(ctx, env.stallID)
	require.NoError(t, err)
	assert.False(t, stall.Taken, "a late first check-in must release the lapsed booking")

	vendor, err := env.vendors.FindByID(ctx, env.vendorID)
	require.NoError(t, err)
	assert.Nil(t, vendor.LastAttendance, "the late mark must not be recorded")
}

func TestExpiryReleasesUnattendedBooking(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()
	env.book(t)

	// Never attended; 25 hours later the booking must be released.
	env.advance(25 * time.Hour)

	released, err := env.svc.CheckExpiry(ctx, env.stallID)
	require.NoError(t, err)
	assert.True(t, released)

	stall, err := env.stalls.FindByID(ctx, env.stallID)
	require.NoError(t, err)
	assert.False(t, stall.Taken)
	requireConsistent(t, env.stalls)

	entries, err := env.history.FindByStall(ctx, env.stallID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.HistoryUnassigned, entries[1].Status)
}

func TestExpirySparesAttendedBooking(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()
	env.book(t)

	// Attendance at T+23h beats the 24h deadline.
	env.advance(23 * time.Hour)
	_, err := env.svc.MarkAttendance(ctx, env.vendorID)
	require.NoError(t, err)

	env.advance(2 * time.Hour) // now T+25h
	released, err := env.svc.CheckExpiry(ctx, env.stallID)
	require.NoError(t, err)
	assert.False(t, released, "an attended booking must not be released")

	stall, err := env.stalls.FindByID(ctx, env.stallID)
	require.NoError(t, err)
	assert.True(t, stall.Taken)
}

func TestExpiryIgnoresStaleAttendanceFromEarlierBooking(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	// Attendance stamped before this booking belongs to an earlier one.
	stale := env.clock.Add(-48 * time.Hour)
	require.NoError(t, env.vendors.SetLastAttendance(ctx, env.vendorID, stale))

	env.book(t)
	env.advance(25 * time.Hour)

	released, err := env.svc.CheckExpiry(ctx, env.stallID)
	require.NoError(t, err)
	assert.True(t, released)
}

func TestCheckExpiryIsSafeAgainstRebooking(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()
	env.book(t)

	// A sweep reads the stall, then the booking is released and the stall
	// re-booked by another vendor before the sweep acts.
	snapshot, err := env.stalls.FindByID(ctx, env.stallID)
	require.NoError(t, err)

	require.NoError(t, env.svc.Release(ctx, env.vendorID, env.stallID))

	other := &models.Vendor{Email: "ravi@example.com", Name: "Ravi", ShopID: "SHOP-22222222"}
	require.NoError(t, env.vendors.Insert(ctx, other))
	env.advance(time.Hour)
	_, err = env.svc.Claim(ctx, other.ID, env.stallID)
	require.NoError(t, err)
	_, err = env.svc.Confirm(ctx, other.ID, env.stallID, true)
	require.NoError(t, err)

	// Acting on the stale snapshot must not release the new booking.
	released, err := env.svc.release(ctx, snapshot)
	require.NoError(t, err)
	assert.False(t, released)

	stall, err := env.stalls.FindByID(ctx, env.stallID)
	require.NoError(t, err)
	assert.True(t, stall.Taken)
	assert.Equal(t, other.ID, stall.AssignedVendor.VendorID)
}

func TestSweepReleasesOnlyExpiredStalls(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()
	env.book(t)

	second := &models.Stall{
		Name:         "Central Ground Stall 2",
		Position:     models.Position{Latitude: 12.98, Longitude: 77.60},
		LocationName: "Central Ground",
	}
	require.NoError(t, env.stalls.Insert(ctx, second))

	other := &models.Vendor{Email: "ravi@example.com", Name: "Ravi", ShopID: "SHOP-22222222"}
	require.NoError(t, env.vendors.Insert(ctx, other))

	// The second vendor books 20 hours later and attends immediately.
	env.advance(20 * time.Hour)
	_, err := env.svc.Claim(ctx, other.ID, second.ID)
	require.NoError(t, err)
	_, err = env.svc.Confirm(ctx, other.ID, second.ID, true)
	require.NoError(t, err)
	_, err = env.svc.MarkAttendance(ctx, other.ID)
	require.NoError(t, err)

	env.advance(5 * time.Hour) // first booking at T+25h, second attended

	released, err := env.svc.Sweep(ctx)
	require.NoError(t, err)
	require.Len(t, released, 1)
	assert.Equal(t, env.stallID, released[0].ID)
	requireConsistent(t, env.stalls)
}
