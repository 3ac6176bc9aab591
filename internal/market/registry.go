// internal/market/registry.go
package market

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stall-market-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Registry manages stall records for the admin panel and the public map.
// The stall occupancy flag and the assigned vendor's coordinate field are
// always mutated together so neither can drift from the other.
type Registry struct {
	stalls  StallRepository
	vendors VendorRepository
	history HistoryRepository
	now     func() time.Time
}

// NewRegistry creates a stall registry service.
func NewRegistry(stalls StallRepository, vendors VendorRepository, history HistoryRepository) *Registry {
	return &Registry{stalls: stalls, vendors: vendors, history: history, now: time.Now}
}

// CreateStall adds one stall at the location. New stalls are admitted only
// while every existing stall at that location is assigned; this is a
// deliberate admission-control rule, pending product-owner confirmation.
func (r *Registry) CreateStall(ctx context.Context, pos models.Position, locationName string) (*models.Stall, error) {
	locationName = strings.TrimSpace(locationName)
	if locationName == "" {
		return nil, validationf("locationName is required")
	}

	if err := r.checkAdmission(ctx, locationName); err != nil {
		return nil, err
	}

	count, err := r.stalls.CountByLocation(ctx, locationName)
	if err != nil {
		return nil, err
	}

	now := r.now()
	stall := &models.Stall{
		Name:         stallName(locationName, count+1),
		Position:     pos,
		LocationName: locationName,
		Taken:        false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.stalls.Insert(ctx, stall); err != nil {
		return nil, err
	}
	return stall, nil
}

// CreateStallsBulk adds several stalls at the location with sequential
// names, under the same admission rule as CreateStall.
func (r *Registry) CreateStallsBulk(ctx context.Context, positions []models.Position, locationName string) ([]models.Stall, error) {
	locationName = strings.TrimSpace(locationName)
	if locationName == "" {
		return nil, validationf("locationName is required")
	}
	if len(positions) == 0 {
		return nil, validationf("at least one position is required")
	}

	if err := r.checkAdmission(ctx, locationName); err != nil {
		return nil, err
	}

	count, err := r.stalls.CountByLocation(ctx, locationName)
	if err != nil {
		return nil, err
	}

	now := r.now()
	stalls := make([]models.Stall, 0, len(positions))
	for i, pos := range positions {
		stalls = append(stalls, models.Stall{
			Name:         stallName(locationName, count+int64(i)+1),
			Position:     pos,
			LocationName: locationName,
			Taken:        false,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	if err := r.stalls.InsertMany(ctx, stalls); err != nil {
		return nil, err
	}
	return stalls, nil
}

func (r *Registry) checkAdmission(ctx context.Context, locationName string) error {
	untaken, err := r.stalls.CountUntakenByLocation(ctx, locationName)
	if err != nil {
		return err
	}
	if untaken > 0 {
		return validationf("location %q still has %d unassigned stall(s); all stalls must be assigned before adding more", locationName, untaken)
	}
	return nil
}

// UpdatePosition moves a stall on the map. When the stall is taken the new
// position is propagated to the assigned vendor's recorded coordinates so
// the vendor-facing location stays consistent with the physical stall.
func (r *Registry) UpdatePosition(ctx context.Context, id primitive.ObjectID, pos models.Position) (*models.Stall, error) {
	stall, err := r.stalls.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.stalls.UpdatePosition(ctx, id, pos); err != nil {
		return nil, err
	}

	if stall.Taken && stall.AssignedVendor != nil {
		coords := pos.Coordinates()
		if err := r.vendors.SetCoordinates(ctx, stall.AssignedVendor.VendorID, &coords); err != nil {
			return nil, err
		}
	}

	stall.Position = pos
	return stall, nil
}

// Delete removes a stall. A taken stall first gets its vendor's
// coordinates cleared and a closing history row appended, so no vendor is
// left pointing at a stall that no longer exists.
func (r *Registry) Delete(ctx context.Context, id primitive.ObjectID) error {
	stall, err := r.stalls.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if stall.Taken && stall.AssignedVendor != nil {
		if err := r.unassignForRemoval(ctx, *stall); err != nil {
			return err
		}
	}

	return r.stalls.Delete(ctx, id)
}

// ResetAll clears occupancy on every stall and the coordinate field of
// every vendor together. Stalls that were taken get closing history rows.
func (r *Registry) ResetAll(ctx context.Context) error {
	booked, err := r.stalls.FindBooked(ctx)
	if err != nil {
		return err
	}
	for _, stall := range booked {
		if err := r.unassignForRemoval(ctx, stall); err != nil {
			return err
		}
	}
	if err := r.stalls.ResetAll(ctx); err != nil {
		return err
	}
	return r.vendors.ClearAllCoordinates(ctx)
}

// ClearAll deletes every stall with the same vendor-coordinate hygiene as
// ResetAll.
func (r *Registry) ClearAll(ctx context.Context) error {
	booked, err := r.stalls.FindBooked(ctx)
	if err != nil {
		return err
	}
	for _, stall := range booked {
		if err := r.unassignForRemoval(ctx, stall); err != nil {
			return err
		}
	}
	if err := r.stalls.DeleteAll(ctx); err != nil {
		return err
	}
	return r.vendors.ClearAllCoordinates(ctx)
}

// unassignForRemoval clears the vendor side of an assignment and records
// the unassignment, used when the stall itself is being reset or removed.
func (r *Registry) unassignForRemoval(ctx context.Context, stall models.Stall) error {
	if err := r.vendors.SetCoordinates(ctx, stall.AssignedVendor.VendorID, nil); err != nil {
		return err
	}
	entry := models.StallHistory{
		StallID:    stall.ID,
		StallName:  stall.Name,
		VendorID:   stall.AssignedVendor.VendorID,
		VendorName: stall.AssignedVendor.VendorName,
		ShopID:     stall.AssignedVendor.ShopID,
		Status:     models.HistoryUnassigned,
		BookedOn:   r.now(),
	}
	if stall.BookingTime != nil {
		entry.BookedOn = *stall.BookingTime
	}
	return r.history.Append(ctx, entry)
}

// Get returns one stall by id.
func (r *Registry) Get(ctx context.Context, id primitive.ObjectID) (*models.Stall, error) {
	return r.stalls.FindByID(ctx, id)
}

// List returns every stall for the map and the admin panel.
func (r *Registry) List(ctx context.Context) ([]models.Stall, error) {
	return r.stalls.FindAll(ctx)
}

// History returns the full append-only assignment audit trail.
func (r *Registry) History(ctx context.Context) ([]models.StallHistory, error) {
	return r.history.FindAll(ctx)
}

// StallHistory returns the audit trail for one stall.
func (r *Registry) StallHistory(ctx context.Context, stallID primitive.ObjectID) ([]models.StallHistory, error) {
	return r.history.FindByStall(ctx, stallID)
}

func stallName(locationName string, n int64) string {
	return fmt.Sprintf("%s Stall %d", locationName, n)
}
