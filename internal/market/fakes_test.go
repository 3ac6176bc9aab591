// internal/market/fakes_test.go
package market

import (
	"context"
	"time"

	"stall-market-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repositories mirroring the conditional-update semantics of the
// Mongo implementations, so the lifecycle services can be tested without a
// database.

type memStallRepo struct {
	stalls map[primitive.ObjectID]*models.Stall
}

func newMemStallRepo() *memStallRepo {
	return &memStallRepo{stalls: make(map[primitive.ObjectID]*models.Stall)}
}

func (r *memStallRepo) Insert(_ context.Context, stall *models.Stall) error {
	if stall.ID.IsZero() {
		stall.ID = primitive.NewObjectID()
	}
	cp := *stall
	r.stalls[stall.ID] = &cp
	return nil
}

func (r *memStallRepo) InsertMany(ctx context.Context, stalls []models.Stall) error {
	for i := range stalls {
		if err := r.Insert(ctx, &stalls[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *memStallRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Stall, error) {
	stall, ok := r.stalls[id]
	if !ok {
		return nil, notFoundf("stall %s not found", id.Hex())
	}
	cp := *stall
	return &cp, nil
}

func (r *memStallRepo) FindAll(context.Context) ([]models.Stall, error) {
	out := []models.Stall{}
	for _, s := range r.stalls {
		out = append(out, *s)
	}
	return out, nil
}

func (r *memStallRepo) FindBooked(context.Context) ([]models.Stall, error) {
	out := []models.Stall{}
	for _, s := range r.stalls {
		if s.Taken {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memStallRepo) FindAssignedTo(_ context.Context, vendorID primitive.ObjectID) (*models.Stall, error) {
	for _, s := range r.stalls {
		if s.Taken && s.AssignedVendor != nil && s.AssignedVendor.VendorID == vendorID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, notFoundf("vendor %s has no assigned stall", vendorID.Hex())
}

func (r *memStallRepo) CountByLocation(_ context.Context, locationName string) (int64, error) {
	var n int64
	for _, s := range r.stalls {
		if s.LocationName == locationName {
			n++
		}
	}
	return n, nil
}

func (r *memStallRepo) CountUntakenByLocation(_ context.Context, locationName string) (int64, error) {
	var n int64
	for _, s := range r.stalls {
		if s.LocationName == locationName && !s.Taken {
			n++
		}
	}
	return n, nil
}

func (r *memStallRepo) CountAssignedTo(_ context.Context, vendorID primitive.ObjectID) (int64, error) {
	var n int64
	for _, s := range r.stalls {
		if s.Taken && s.AssignedVendor != nil && s.AssignedVendor.VendorID == vendorID {
			n++
		}
	}
	return n, nil
}

func (r *memStallRepo) UpdatePosition(_ context.Context, id primitive.ObjectID, pos models.Position) error {
	if s, ok := r.stalls[id]; ok {
		s.Position = pos
	}
	return nil
}

func (r *memStallRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(r.stalls, id)
	return nil
}

func (r *memStallRepo) SetClaim(_ context.Context, stallID, vendorID primitive.ObjectID, at time.Time, holdTTL time.Duration) (bool, error) {
	s, ok := r.stalls[stallID]
	if !ok || s.Taken {
		return false, nil
	}
	if s.ClaimedBy != nil && *s.ClaimedBy != vendorID && s.ClaimedAt != nil && !s.ClaimedAt.Before(at.Add(-holdTTL)) {
		return false, nil
	}
	s.ClaimedBy = &vendorID
	s.ClaimedAt = &at
	return true, nil
}

func (r *memStallRepo) Assign(_ context.Context, stallID primitive.ObjectID, vendor models.VendorRef, bookingTime time.Time) (bool, error) {
	s, ok := r.stalls[stallID]
	if !ok || s.Taken || s.ClaimedBy == nil || *s.ClaimedBy != vendor.VendorID {
		return false, nil
	}
	bt := bookingTime
	s.Taken = true
	s.AssignedVendor = &vendor
	s.BookingTime = &bt
	s.ClaimedBy = nil
	s.ClaimedAt = nil
	return true, nil
}

func (r *memStallRepo) ReleaseIf(_ context.Context, stallID, vendorID primitive.ObjectID, bookingTime time.Time) (bool, error) {
	s, ok := r.stalls[stallID]
	if !ok || !s.Taken || s.AssignedVendor == nil {
		return false, nil
	}
	if s.AssignedVendor.VendorID != vendorID || s.BookingTime == nil || !s.BookingTime.Equal(bookingTime) {
		return false, nil
	}
	s.Taken = false
	s.AssignedVendor = nil
	s.BookingTime = nil
	s.ClaimedBy = nil
	s.ClaimedAt = nil
	return true, nil
}

func (r *memStallRepo) ResetAll(context.Context) error {
	for _, s := range r.stalls {
		s.Taken = false
		s.AssignedVendor = nil
		s.BookingTime = nil
		s.ClaimedBy = nil
		s.ClaimedAt = nil
	}
	return nil
}

func (r *memStallRepo) DeleteAll(context.Context) error {
	r.stalls = make(map[primitive.ObjectID]*models.Stall)
	return nil
}

type memVendorRepo struct {
	vendors map[primitive.ObjectID]*models.Vendor
}

func newMemVendorRepo() *memVendorRepo {
	return &memVendorRepo{vendors: make(map[primitive.ObjectID]*models.Vendor)}
}

func (r *memVendorRepo) Insert(_ context.Context, vendor *models.Vendor) error {
	if vendor.ID.IsZero() {
		vendor.ID = primitive.NewObjectID()
	}
	cp := *vendor
	r.vendors[vendor.ID] = &cp
	return nil
}

func (r *memVendorRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Vendor, error) {
	v, ok := r.vendors[id]
	if !ok {
		return nil, notFoundf("vendor not found")
	}
	cp := *v
	return &cp, nil
}

func (r *memVendorRepo) FindByEmail(_ context.Context, email string) (*models.Vendor, error) {
	for _, v := range r.vendors {
		if v.Email == email {
			cp := *v
			return &cp, nil
		}
	}
	return nil, notFoundf("vendor not found")
}

func (r *memVendorRepo) FindAll(context.Context) ([]models.Vendor, error) {
	out := []models.Vendor{}
	for _, v := range r.vendors {
		out = append(out, *v)
	}
	return out, nil
}

func (r *memVendorRepo) UpdateProfile(_ context.Context, id primitive.ObjectID, name, shopName, phone, category string) error {
	if v, ok := r.vendors[id]; ok {
		v.Name, v.ShopName, v.Phone, v.Category = name, shopName, phone, category
	}
	return nil
}

func (r *memVendorRepo) SetCoordinates(_ context.Context, id primitive.ObjectID, coords *string) error {
	if v, ok := r.vendors[id]; ok {
		v.GPSCoordinates = coords
	}
	return nil
}

func (r *memVendorRepo) ClearAllCoordinates(context.Context) error {
	for _, v := range r.vendors {
		v.GPSCoordinates = nil
	}
	return nil
}

func (r *memVendorRepo) SetLastAttendance(_ context.Context, id primitive.ObjectID, t time.Time) error {
	if v, ok := r.vendors[id]; ok {
		stamp := t
		v.LastAttendance = &stamp
	}
	return nil
}

func (r *memVendorRepo) SetLicense(_ context.Context, id primitive.ObjectID, lic models.License) error {
	if v, ok := r.vendors[id]; ok {
		v.License = lic
	}
	return nil
}

func (r *memVendorRepo) FindLicenseRequested(context.Context) ([]models.Vendor, error) {
	out := []models.Vendor{}
	for _, v := range r.vendors {
		if v.License.Status == models.LicenseRequested {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *memVendorRepo) CountByLicenseNumber(_ context.Context, licenseNumber string) (int64, error) {
	var n int64
	for _, v := range r.vendors {
		if v.License.LicenseNumber == licenseNumber {
			n++
		}
	}
	return n, nil
}

func (r *memVendorRepo) PushProduct(_ context.Context, vendorID primitive.ObjectID, p models.Product) error {
	if v, ok := r.vendors[vendorID]; ok {
		v.Products = append(v.Products, p)
	}
	return nil
}

func (r *memVendorRepo) UpdateProduct(_ context.Context, vendorID primitive.ObjectID, p models.Product) (bool, error) {
	v, ok := r.vendors[vendorID]
	if !ok {
		return false, nil
	}
	for i := range v.Products {
		if v.Products[i].ProductID == p.ProductID {
			v.Products[i] = p
			return true, nil
		}
	}
	return false, nil
}

func (r *memVendorRepo) RemoveProduct(_ context.Context, vendorID primitive.ObjectID, productID string) (bool, error) {
	v, ok := r.vendors[vendorID]
	if !ok {
		return false, nil
	}
	for i := range v.Products {
		if v.Products[i].ProductID == productID {
			v.Products = append(v.Products[:i], v.Products[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *memVendorRepo) FindByProductID(_ context.Context, productID string) (*models.Vendor, error) {
	for _, v := range r.vendors {
		for _, p := range v.Products {
			if p.ProductID == productID {
				cp := *v
				return &cp, nil
			}
		}
	}
	return nil, notFoundf("vendor not found")
}

func (r *memVendorRepo) DeductStockAndAppendOrder(_ context.Context, vendorID primitive.ObjectID, productID string, quantity int, order models.Order) (bool, error) {
	v, ok := r.vendors[vendorID]
	if !ok {
		return false, nil
	}
	for i := range v.Products {
		if v.Products[i].ProductID == productID && v.Products[i].Stock >= quantity {
			v.Products[i].Stock -= quantity
			v.Orders = append(v.Orders, order)
			return true, nil
		}
	}
	return false, nil
}

func (r *memVendorRepo) CompleteOrder(_ context.Context, vendorID primitive.ObjectID, orderID string) (bool, error) {
	v, ok := r.vendors[vendorID]
	if !ok {
		return false, nil
	}
	for i := range v.Orders {
		if v.Orders[i].OrderID == orderID && v.Orders[i].Status == models.OrderPending {
			v.Orders[i].Status = models.OrderCompleted
			return true, nil
		}
	}
	return false, nil
}

func (r *memVendorRepo) FindOrdersByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	out := []models.Order{}
	for _, v := range r.vendors {
		for _, o := range v.Orders {
			if o.UserID == userID {
				out = append(out, o)
			}
		}
	}
	return out, nil
}

type memHistoryRepo struct {
	entries []models.StallHistory
}

func newMemHistoryRepo() *memHistoryRepo {
	return &memHistoryRepo{}
}

func (r *memHistoryRepo) Append(_ context.Context, entry models.StallHistory) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memHistoryRepo) FindAll(context.Context) ([]models.StallHistory, error) {
	return append([]models.StallHistory{}, r.entries...), nil
}

func (r *memHistoryRepo) FindByStall(_ context.Context, stallID primitive.ObjectID) ([]models.StallHistory, error) {
	out := []models.StallHistory{}
	for _, e := range r.entries {
		if e.StallID == stallID {
			out = append(out, e)
		}
	}
	return out, nil
}
