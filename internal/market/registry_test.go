// internal/market/registry_test.go
package market

import (
	"context"
	"testing"

	"stall-market-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newRegistryEnv(t *testing.T) (*Registry, *memStallRepo, *memVendorRepo, *memHistoryRepo) {
	t.Helper()
	stalls := newMemStallRepo()
	vendors := newMemVendorRepo()
	history := newMemHistoryRepo()
	return NewRegistry(stalls, vendors, history), stalls, vendors, history
}

func TestCreateStallSequentialNaming(t *testing.T) {
	reg, stalls, vendors, history := newRegistryEnv(t)
	ctx := context.Background()

	first, err := reg.CreateStall(ctx, models.Position{Latitude: 12.97, Longitude: 77.59}, "Central Ground")
	require.NoError(t, err)
	assert.Equal(t, "Central Ground Stall 1", first.Name)
	assert.False(t, first.Taken)

	// Book the only stall so the location admits another.
	bookStallForTest(t, stalls, vendors, history, first.ID)

	second, err := reg.CreateStall(ctx, models.Position{Latitude: 12.98, Longitude: 77.60}, "Central Ground")
	require.NoError(t, err)
	assert.Equal(t, "Central Ground Stall 2", second.Name)
}

func TestCreateStallRejectedWhileLocationHasFreeStall(t *testing.T) {
	reg, _, _, _ := newRegistryEnv(t)
	ctx := context.Background()

	_, err := reg.CreateStall(ctx, models.Position{Latitude: 12.97, Longitude: 77.59}, "Central Ground")
	require.NoError(t, err)

	_, err = reg.CreateStall(ctx, models.Position{Latitude: 12.98, Longitude: 77.60}, "Central Ground")
	require.ErrorIs(t, err, ErrValidation, "an unassigned stall at the location blocks admission")

	// A different location is unaffected.
	_, err = reg.CreateStall(ctx, models.Position{Latitude: 13.01, Longitude: 77.55}, "River Side")
	require.NoError(t, err)
}

func TestCreateStallRequiresLocationName(t *testing.T) {
	reg, _, _, _ := newRegistryEnv(t)

	_, err := reg.CreateStall(context.Background(), models.Position{}, "   ")
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateStallsBulk(t *testing.T) {
	reg, _, _, _ := newRegistryEnv(t)
	ctx := context.Background()

	positions := []models.Position{
		{Latitude: 12.97, Longitude: 77.59},
		{Latitude: 12.98, Longitude: 77.60},
		{Latitude: 12.99, Longitude: 77.61},
	}
	created, err := reg.CreateStallsBulk(ctx, positions, "Central Ground")
	require.NoError(t, err)
	require.Len(t, created, 3)
	assert.Equal(t, "Central Ground Stall 1", created[0].Name)
	assert.Equal(t, "Central Ground Stall 3", created[2].Name)

	_, err = reg.CreateStallsBulk(ctx, nil, "Central Ground")
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdatePositionPropagatesToAssignedVendor(t *testing.T) {
	reg, stalls, vendors, history := newRegistryEnv(t)
	ctx := context.Background()

	stall, err := reg.CreateStall(ctx, models.Position{Latitude: 12.97, Longitude: 77.59}, "Central Ground")
	require.NoError(t, err)
	vendorID := bookStallForTest(t, stalls, vendors, history, stall.ID)

	newPos := models.Position{Latitude: 13.05, Longitude: 77.62}
	_, err = reg.UpdatePosition(ctx, stall.ID, newPos)
	require.NoError(t, err)

	vendor, err := vendors.FindByID(ctx, vendorID)
	require.NoError(t, err)
	require.NotNil(t, vendor.GPSCoordinates)
	assert.Equal(t, newPos.Coordinates(), *vendor.GPSCoordinates)
}

func TestDeleteTakenStallClearsVendorAndRecordsHistory(t *testing.T) {
	reg, stalls, vendors, history := newRegistryEnv(t)
	ctx := context.Background()

	stall, err := reg.CreateStall(ctx, models.Position{Latitude: 12.97, Longitude: 77.59}, "Central Ground")
	require.NoError(t, err)
	vendorID := bookStallForTest(t, stalls, vendors, history, stall.ID)

	require.NoError(t, reg.Delete(ctx, stall.ID))

	_, err = stalls.FindByID(ctx, stall.ID)
	require.ErrorIs(t, err, ErrNotFound)

	vendor, err := vendors.FindByID(ctx, vendorID)
	require.NoError(t, err)
	assert.Nil(t, vendor.GPSCoordinates)

	entries, err := history.FindByStall(ctx, stall.ID)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, models.HistoryUnassigned, entries[len(entries)-1].Status)
}

func TestResetAllFreesStallsAndVendors(t *testing.T) {
	reg, stalls, vendors, history := newRegistryEnv(t)
	ctx := context.Background()

	stall, err := reg.CreateStall(ctx, models.Position{Latitude: 12.97, Longitude: 77.59}, "Central Ground")
	require.NoError(t, err)
	vendorID := bookStallForTest(t, stalls, vendors, history, stall.ID)

	require.NoError(t, reg.ResetAll(ctx))

	got, err := stalls.FindByID(ctx, stall.ID)
	require.NoError(t, err)
	assert.False(t, got.Taken)
	assert.Nil(t, got.AssignedVendor)

	vendor, err := vendors.FindByID(ctx, vendorID)
	require.NoError(t, err)
	assert.Nil(t, vendor.GPSCoordinates)

	entries, err := history.FindByStall(ctx, stall.ID)
	require.NoError(t, err)
	assert.Equal(t, models.HistoryUnassigned, entries[len(entries)-1].Status)
}

func TestClearAllDeletesEverything(t *testing.T) {
	reg, stalls, vendors, history := newRegistryEnv(t)
	ctx := context.Background()

	stall, err := reg.CreateStall(ctx, models.Position{Latitude: 12.97, Longitude: 77.59}, "Central Ground")
	require.NoError(t, err)
	vendorID := bookStallForTest(t, stalls, vendors, history, stall.ID)

	require.NoError(t, reg.ClearAll(ctx))

	all, err := stalls.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	vendor, err := vendors.FindByID(ctx, vendorID)
	require.NoError(t, err)
	assert.Nil(t, vendor.GPSCoordinates)

	// History survives the wipe; it is the append-only audit trail.
	entries, err := history.FindAll(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

// bookStallForTest assigns a fresh vendor to the stall through the booking
// service and returns the vendor id.
func bookStallForTest(t *testing.T, stalls *memStallRepo, vendors *memVendorRepo, history *memHistoryRepo, stallID primitive.ObjectID) primitive.ObjectID {
	t.Helper()
	ctx := context.Background()

	vendor := &models.Vendor{
		Email:  primitive.NewObjectID().Hex() + "@example.com",
		Name:   "Test Vendor",
		ShopID: "SHOP-" + primitive.NewObjectID().Hex()[:8],
	}
	require.NoError(t, vendors.Insert(ctx, vendor))

	svc := NewBookingService(stalls, vendors, history, DefaultAttendanceWindow)
	_, err := svc.Claim(ctx, vendor.ID, stallID)
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, vendor.ID, stallID, true)
	require.NoError(t, err)
	return vendor.ID
}
