// internal/market/repository.go
package market

import (
	"context"
	"time"

	"stall-market-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StallRepository defines data access for stalls. Conditional mutations
// (SetClaim, Assign, ReleaseIf) report whether the document matched so the
// services can detect lost races instead of acting on stale state.
type StallRepository interface {
	Insert(ctx context.Context, stall *models.Stall) error
	InsertMany(ctx context.Context, stalls []models.Stall) error

	// FindByID returns ErrNotFound when no stall has the given id.
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Stall, error)
	FindAll(ctx context.Context) ([]models.Stall, error)

	// FindBooked returns every stall with taken == true.
	FindBooked(ctx context.Context) ([]models.Stall, error)

	// FindAssignedTo returns the stall currently assigned to the vendor,
	// or ErrNotFound when the vendor has no booking.
	FindAssignedTo(ctx context.Context, vendorID primitive.ObjectID) (*models.Stall, error)

	CountByLocation(ctx context.Context, locationName string) (int64, error)
	CountUntakenByLocation(ctx context.Context, locationName string) (int64, error)
	CountAssignedTo(ctx context.Context, vendorID primitive.ObjectID) (int64, error)

	UpdatePosition(ctx context.Context, id primitive.ObjectID, pos models.Position) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// SetClaim places a pending hold for the vendor. It matches only while
	// the stall is untaken and not freshly claimed by someone else.
	SetClaim(ctx context.Context, stallID, vendorID primitive.ObjectID, at time.Time, holdTTL time.Duration) (bool, error)

	// Assign marks the stall taken for the vendor holding the claim. It
	// matches only while taken is false and the claim belongs to the vendor.
	Assign(ctx context.Context, stallID primitive.ObjectID, vendor models.VendorRef, bookingTime time.Time) (bool, error)

	// ReleaseIf frees the stall only if it is still assigned to the given
	// vendor with the given booking time. A false return means the stall
	// was already free or has been re-booked since the caller read it.
	ReleaseIf(ctx context.Context, stallID, vendorID primitive.ObjectID, bookingTime time.Time) (bool, error)

	// ResetAll clears occupancy on every stall; DeleteAll removes them.
	ResetAll(ctx context.Context) error
	DeleteAll(ctx context.Context) error
}

// VendorRepository defines data access for the vendor aggregate, including
// its embedded license, products and orders.
type VendorRepository interface {
	Insert(ctx context.Context, vendor *models.Vendor) error

	// FindByID and FindByEmail return ErrNotFound when absent.
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Vendor, error)
	FindByEmail(ctx context.Context, email string) (*models.Vendor, error)
	FindAll(ctx context.Context) ([]models.Vendor, error)

	UpdateProfile(ctx context.Context, id primitive.ObjectID, name, shopName, phone, category string) error

	// SetCoordinates records the booked stall position on the vendor
	// ("lat,lng"), or clears it when coords is nil.
	SetCoordinates(ctx context.Context, id primitive.ObjectID, coords *string) error
	ClearAllCoordinates(ctx context.Context) error

	SetLastAttendance(ctx context.Context, id primitive.ObjectID, t time.Time) error

	SetLicense(ctx context.Context, id primitive.ObjectID, lic models.License) error
	FindLicenseRequested(ctx context.Context) ([]models.Vendor, error)
	CountByLicenseNumber(ctx context.Context, licenseNumber string) (int64, error)

	PushProduct(ctx context.Context, vendorID primitive.ObjectID, p models.Product) error
	UpdateProduct(ctx context.Context, vendorID primitive.ObjectID, p models.Product) (bool, error)
	RemoveProduct(ctx context.Context, vendorID primitive.ObjectID, productID string) (bool, error)

	// FindByProductID returns the vendor owning the product, ErrNotFound
	// when no vendor lists it.
	FindByProductID(ctx context.Context, productID string) (*models.Vendor, error)

	// DeductStockAndAppendOrder decrements the product stock and appends
	// the order in one document update. It matches only while the product
	// exists with stock >= order quantity.
	DeductStockAndAppendOrder(ctx context.Context, vendorID primitive.ObjectID, productID string, quantity int, order models.Order) (bool, error)

	// CompleteOrder flips the order status Pending -> Completed. A false
	// return means the order was not found in that state.
	CompleteOrder(ctx context.Context, vendorID primitive.ObjectID, orderID string) (bool, error)

	FindOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
}

// HistoryRepository is the append-only stall assignment audit trail.
// There are deliberately no update or delete operations.
type HistoryRepository interface {
	Append(ctx context.Context, entry models.StallHistory) error
	FindAll(ctx context.Context) ([]models.StallHistory, error)
	FindByStall(ctx context.Context, stallID primitive.ObjectID) ([]models.StallHistory, error)
}
