// internal/market/booking.go
package market

import (
	"context"
	"time"

	"stall-market-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// claimHoldTTL is how long a pending claim blocks other vendors from
// claiming the same stall before payment confirmation arrives.
const claimHoldTTL = 15 * time.Minute

// BookingService orchestrates the stall booking lifecycle:
// Unbooked -> Claimed -> Booked -> Attended | Expired.
// A vendor holds at most one active booking and a stall at most one vendor.
type BookingService struct {
	stalls  StallRepository
	vendors VendorRepository
	history HistoryRepository
	window  time.Duration
	now     func() time.Time
}

// NewBookingService creates a booking service. A non-positive window falls
// back to DefaultAttendanceWindow.
func NewBookingService(stalls StallRepository, vendors VendorRepository, history HistoryRepository, window time.Duration) *BookingService {
	if window <= 0 {
		window = DefaultAttendanceWindow
	}
	return &BookingService{
		stalls:  stalls,
		vendors: vendors,
		history: history,
		window:  window,
		now:     time.Now,
	}
}

// Claim places a pending hold on the stall for the vendor. The stall is
// not marked taken until Confirm; payment happens in between.
func (s *BookingService) Claim(ctx context.Context, vendorID, stallID primitive.ObjectID) (*models.Stall, error) {
	stall, err := s.stalls.FindByID(ctx, stallID)
	if err != nil {
		return nil, err
	}
	if stall.Taken {
		return nil, conflictf("stall %q is already taken", stall.Name)
	}

	count, err := s.stalls.CountAssignedTo(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, conflictf("vendor already has an active booking; release it before claiming another stall")
	}

	ok, err := s.stalls.SetClaim(ctx, stallID, vendorID, s.now(), claimHoldTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, conflictf("stall %q is taken or held by another vendor", stall.Name)
	}

	return s.stalls.FindByID(ctx, stallID)
}

// Confirm completes the booking after the payment collaborator reports
// success. It marks the stall taken, stamps the booking time, mirrors the
// stall position onto the vendor and appends an "assigned" history row.
func (s *BookingService) Confirm(ctx context.Context, vendorID, stallID primitive.ObjectID, paid bool) (*models.Stall, error) {
	if !paid {
		return nil, validationf("payment was not confirmed")
	}

	vendor, err := s.vendors.FindByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	stall, err := s.stalls.FindByID(ctx, stallID)
	if err != nil {
		return nil, err
	}

	count, err := s.stalls.CountAssignedTo(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, conflictf("vendor already has an active booking")
	}

	bookingTime := s.now()
	ref := models.VendorRef{VendorID: vendor.ID, VendorName: vendor.Name, ShopID: vendor.ShopID}
	ok, err := s.stalls.Assign(ctx, stallID, ref, bookingTime)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, conflictf("stall %q is taken or the claim has lapsed", stall.Name)
	}

	coords := stall.Position.Coordinates()
	if err := s.vendors.SetCoordinates(ctx, vendorID, &coords); err != nil {
		return nil, err
	}

	if err := s.history.Append(ctx, models.StallHistory{
		StallID:    stall.ID,
		StallName:  stall.Name,
		VendorID:   vendor.ID,
		VendorName: vendor.Name,
		ShopID:     vendor.ShopID,
		Status:     models.HistoryAssigned,
		BookedOn:   bookingTime,
	}); err != nil {
		return nil, err
	}

	return s.stalls.FindByID(ctx, stallID)
}

// Release frees the vendor's stall. Releasing an already-unbooked stall is
// a no-op, not an error, so the lazy dashboard check and the periodic
// sweep can both call it safely.
func (s *BookingService) Release(ctx context.Context, vendorID, stallID primitive.ObjectID) error {
	stall, err := s.stalls.FindByID(ctx, stallID)
	if err != nil {
		return err
	}
	if !stall.Taken || stall.AssignedVendor == nil {
		return nil
	}
	if stall.AssignedVendor.VendorID != vendorID {
		return conflictf("stall %q is assigned to another vendor", stall.Name)
	}
	_, err = s.release(ctx, stall)
	return err
}

// release applies the conditional unbooking for the stall snapshot the
// caller holds. The update is keyed on the current assignee and booking
// time so a stale expiry decision can never clobber a newer booking.
func (s *BookingService) release(ctx context.Context, stall *models.Stall) (bool, error) {
	if stall.AssignedVendor == nil || stall.BookingTime == nil {
		return false, nil
	}

	ok, err := s.stalls.ReleaseIf(ctx, stall.ID, stall.AssignedVendor.VendorID, *stall.BookingTime)
	if err != nil || !ok {
		return false, err
	}

	if err := s.vendors.SetCoordinates(ctx, stall.AssignedVendor.VendorID, nil); err != nil {
		return false, err
	}

	if err := s.history.Append(ctx, models.StallHistory{
		StallID:    stall.ID,
		StallName:  stall.Name,
		VendorID:   stall.AssignedVendor.VendorID,
		VendorName: stall.AssignedVendor.VendorName,
		ShopID:     stall.AssignedVendor.ShopID,
		Status:     models.HistoryUnassigned,
		BookedOn:   *stall.BookingTime,
	}); err != nil {
		return false, err
	}

	return true, nil
}

// MarkAttendance records the vendor's daily check-in. The first check-in
// must land before the booking deadline; later days only require one mark
// per local calendar day. A second mark on the same day is rejected and
// never moves the recorded timestamp.
func (s *BookingService) MarkAttendance(ctx context.Context, vendorID primitive.ObjectID) (*time.Time, error) {
	stall, err := s.stalls.FindAssignedTo(ctx, vendorID)
	if err != nil {
		return nil, conflictf("no active booking to attend")
	}

	vendor, err := s.vendors.FindByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if AttendedOn(vendor.LastAttendance, now) {
		return nil, conflictf("attendance already marked today")
	}

	if stall.BookingTime != nil && ShouldExpire(now, *stall.BookingTime, vendor.LastAttendance, s.window) {
		// The booking already lapsed; free the stall rather than let a
		// late check-in resurrect it.
		if _, err := s.release(ctx, stall); err != nil {
			return nil, err
		}
		return nil, conflictf("booking expired before first check-in; the stall has been released")
	}

	if err := s.vendors.SetLastAttendance(ctx, vendorID, now); err != nil {
		return nil, err
	}
	return &now, nil
}

// CheckExpiry re-reads the stall and releases it when the booking deadline
// passed without a check-in. It reports whether a release happened. Safe
// to call from both the dashboard fetch and the periodic sweep.
func (s *BookingService) CheckExpiry(ctx context.Context, stallID primitive.ObjectID) (bool, error) {
	stall, err := s.stalls.FindByID(ctx, stallID)
	if err != nil {
		return false, err
	}
	if !stall.Taken || stall.AssignedVendor == nil || stall.BookingTime == nil {
		return false, nil
	}

	vendor, err := s.vendors.FindByID(ctx, stall.AssignedVendor.VendorID)
	if err != nil {
		return false, err
	}

	if !ShouldExpire(s.now(), *stall.BookingTime, vendor.LastAttendance, s.window) {
		return false, nil
	}
	return s.release(ctx, stall)
}

// CheckVendorExpiry runs the expiry check for the vendor's own booking,
// used by the dashboard fetch. No booking means nothing to do.
func (s *BookingService) CheckVendorExpiry(ctx context.Context, vendorID primitive.ObjectID) (bool, error) {
	stall, err := s.stalls.FindAssignedTo(ctx, vendorID)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return s.CheckExpiry(ctx, stall.ID)
}

// Sweep runs the expiry check across every booked stall and returns the
// stalls that were released.
func (s *BookingService) Sweep(ctx context.Context) ([]models.Stall, error) {
	booked, err := s.stalls.FindBooked(ctx)
	if err != nil {
		return nil, err
	}

	var released []models.Stall
	for _, stall := range booked {
		ok, err := s.CheckExpiry(ctx, stall.ID)
		if err != nil {
			return released, err
		}
		if ok {
			released = append(released, stall)
		}
	}
	return released, nil
}

// Deadline exposes the check-in deadline for a booking time under the
// service's configured window.
func (s *BookingService) Deadline(bookingTime time.Time) time.Time {
	return Deadline(bookingTime, s.window)
}
