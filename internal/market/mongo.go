// internal/market/mongo.go
package market

import (
	"context"
	"time"

	"stall-market-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	stallsCollection  = "stalls"
	vendorsCollection = "vendors"
	historyCollection = "stall_history"
)

// --- Stalls ---

type mongoStallRepo struct {
	col *mongo.Collection
}

// NewMongoStallRepository returns a StallRepository backed by the "stalls"
// collection. Every state transition is a single conditional document
// update, relying on Mongo's per-document atomicity.
func NewMongoStallRepository(db *mongo.Database) StallRepository {
	return &mongoStallRepo{col: db.Collection(stallsCollection)}
}

func (r *mongoStallRepo) Insert(ctx context.Context, stall *models.Stall) error {
	result, err := r.col.InsertOne(ctx, stall)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		stall.ID = oid
	}
	return nil
}

func (r *mongoStallRepo) InsertMany(ctx context.Context, stalls []models.Stall) error {
	docs := make([]interface{}, 0, len(stalls))
	for i := range stalls {
		docs = append(docs, stalls[i])
	}
	result, err := r.col.InsertMany(ctx, docs)
	if err != nil {
		return err
	}
	for i, id := range result.InsertedIDs {
		if oid, ok := id.(primitive.ObjectID); ok && i < len(stalls) {
			stalls[i].ID = oid
		}
	}
	return nil
}

func (r *mongoStallRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Stall, error) {
	var stall models.Stall
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&stall)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, notFoundf("stall %s not found", id.Hex())
		}
		return nil, err
	}
	return &stall, nil
}

func (r *mongoStallRepo) FindAll(ctx context.Context) ([]models.Stall, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoStallRepo) FindBooked(ctx context.Context) ([]models.Stall, error) {
	return r.find(ctx, bson.M{"taken": true})
}

func (r *mongoStallRepo) find(ctx context.Context, filter bson.M) ([]models.Stall, error) {
	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stalls []models.Stall
	if err = cursor.All(ctx, &stalls); err != nil {
		return nil, err
	}
	if stalls == nil {
		stalls = []models.Stall{}
	}
	return stalls, nil
}

func (r *mongoStallRepo) FindAssignedTo(ctx context.Context, vendorID primitive.ObjectID) (*models.Stall, error) {
	var stall models.Stall
	err := r.col.FindOne(ctx, bson.M{"taken": true, "assignedVendor.vendorId": vendorID}).Decode(&stall)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, notFoundf("vendor %s has no assigned stall", vendorID.Hex())
		}
		return nil, err
	}
	return &stall, nil
}

func (r *mongoStallRepo) CountByLocation(ctx context.Context, locationName string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"locationName": locationName})
}

func (r *mongoStallRepo) CountUntakenByLocation(ctx context.Context, locationName string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"locationName": locationName, "taken": false})
}

func (r *mongoStallRepo) CountAssignedTo(ctx context.Context, vendorID primitive.ObjectID) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"taken": true, "assignedVendor.vendorId": vendorID})
}

func (r *mongoStallRepo) UpdatePosition(ctx context.Context, id primitive.ObjectID, pos models.Position) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"position":  pos,
		"updatedAt": time.Now(),
	}})
	return err
}

func (r *mongoStallRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *mongoStallRepo) SetClaim(ctx context.Context, stallID, vendorID primitive.ObjectID, at time.Time, holdTTL time.Duration) (bool, error) {
	filter := bson.M{
		"_id":   stallID,
		"taken": false,
		"$or": []bson.M{
			{"claimedBy": nil},
			{"claimedBy": vendorID},
			{"claimedAt": bson.M{"$lt": at.Add(-holdTTL)}},
		},
	}
	result, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"claimedBy": vendorID,
		"claimedAt": at,
		"updatedAt": at,
	}})
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (r *mongoStallRepo) Assign(ctx context.Context, stallID primitive.ObjectID, vendor models.VendorRef, bookingTime time.Time) (bool, error) {
	filter := bson.M{"_id": stallID, "taken": false, "claimedBy": vendor.VendorID}
	update := bson.M{
		"$set": bson.M{
			"taken":          true,
			"assignedVendor": vendor,
			"bookingTime":    bookingTime,
			"updatedAt":      bookingTime,
		},
		"$unset": bson.M{"claimedBy": "", "claimedAt": ""},
	}
	result, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (r *mongoStallRepo) ReleaseIf(ctx context.Context, stallID, vendorID primitive.ObjectID, bookingTime time.Time) (bool, error) {
	// Keyed on the current assignee and booking time: a stale expiry
	// decision cannot release a stall that has been re-booked since.
	filter := bson.M{
		"_id":                     stallID,
		"taken":                   true,
		"assignedVendor.vendorId": vendorID,
		"bookingTime":             bookingTime,
	}
	update := bson.M{
		"$set": bson.M{
			"taken":          false,
			"assignedVendor": nil,
			"bookingTime":    nil,
			"updatedAt":      time.Now(),
		},
		"$unset": bson.M{"claimedBy": "", "claimedAt": ""},
	}
	result, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (r *mongoStallRepo) ResetAll(ctx context.Context) error {
	update := bson.M{
		"$set": bson.M{
			"taken":          false,
			"assignedVendor": nil,
			"bookingTime":    nil,
			"updatedAt":      time.Now(),
		},
		"$unset": bson.M{"claimedBy": "", "claimedAt": ""},
	}
	_, err := r.col.UpdateMany(ctx, bson.M{}, update)
	return err
}

func (r *mongoStallRepo) DeleteAll(ctx context.Context) error {
	_, err := r.col.DeleteMany(ctx, bson.M{})
	return err
}

// --- Vendors ---

type mongoVendorRepo struct {
	col *mongo.Collection
}

// NewMongoVendorRepository returns a VendorRepository backed by the
// "vendors" collection. Products and orders live inside the vendor
// document, so stock deduction and order append share one update.
func NewMongoVendorRepository(db *mongo.Database) VendorRepository {
	return &mongoVendorRepo{col: db.Collection(vendorsCollection)}
}

func (r *mongoVendorRepo) Insert(ctx context.Context, vendor *models.Vendor) error {
	result, err := r.col.InsertOne(ctx, vendor)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		vendor.ID = oid
	}
	return nil
}

func (r *mongoVendorRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Vendor, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoVendorRepo) FindByEmail(ctx context.Context, email string) (*models.Vendor, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoVendorRepo) FindByProductID(ctx context.Context, productID string) (*models.Vendor, error) {
	return r.findOne(ctx, bson.M{"products.productId": productID})
}

func (r *mongoVendorRepo) findOne(ctx context.Context, filter bson.M) (*models.Vendor, error) {
	var vendor models.Vendor
	err := r.col.FindOne(ctx, filter).Decode(&vendor)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, notFoundf("vendor not found")
		}
		return nil, err
	}
	return &vendor, nil
}

func (r *mongoVendorRepo) FindAll(ctx context.Context) ([]models.Vendor, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoVendorRepo) FindLicenseRequested(ctx context.Context) ([]models.Vendor, error) {
	return r.find(ctx, bson.M{"license.status": models.LicenseRequested})
}

func (r *mongoVendorRepo) find(ctx context.Context, filter bson.M) ([]models.Vendor, error) {
	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var vendors []models.Vendor
	if err = cursor.All(ctx, &vendors); err != nil {
		return nil, err
	}
	if vendors == nil {
		vendors = []models.Vendor{}
	}
	return vendors, nil
}

func (r *mongoVendorRepo) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, shopName, phone, category string) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":      name,
		"shopName":  shopName,
		"phone":     phone,
		"category":  category,
		"updatedAt": time.Now(),
	}})
	return err
}

func (r *mongoVendorRepo) SetCoordinates(ctx context.Context, id primitive.ObjectID, coords *string) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"gpsCoordinates": coords,
		"updatedAt":      time.Now(),
	}})
	return err
}

func (r *mongoVendorRepo) ClearAllCoordinates(ctx context.Context) error {
	_, err := r.col.UpdateMany(ctx, bson.M{}, bson.M{"$set": bson.M{
		"gpsCoordinates": nil,
		"updatedAt":      time.Now(),
	}})
	return err
}

func (r *mongoVendorRepo) SetLastAttendance(ctx context.Context, id primitive.ObjectID, t time.Time) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"lastAttendance": t,
		"updatedAt":      time.Now(),
	}})
	return err
}

func (r *mongoVendorRepo) SetLicense(ctx context.Context, id primitive.ObjectID, lic models.License) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"license":   lic,
		"updatedAt": time.Now(),
	}})
	return err
}

func (r *mongoVendorRepo) CountByLicenseNumber(ctx context.Context, licenseNumber string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"license.licenseNumber": licenseNumber})
}

func (r *mongoVendorRepo) PushProduct(ctx context.Context, vendorID primitive.ObjectID, p models.Product) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": vendorID}, bson.M{
		"$push": bson.M{"products": p},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	return err
}

func (r *mongoVendorRepo) UpdateProduct(ctx context.Context, vendorID primitive.ObjectID, p models.Product) (bool, error) {
	filter := bson.M{"_id": vendorID, "products.productId": p.ProductID}
	result, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"products.$": p,
		"updatedAt":  time.Now(),
	}})
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (r *mongoVendorRepo) RemoveProduct(ctx context.Context, vendorID primitive.ObjectID, productID string) (bool, error) {
	result, err := r.col.UpdateOne(ctx, bson.M{"_id": vendorID}, bson.M{
		"$pull": bson.M{"products": bson.M{"productId": productID}},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

func (r *mongoVendorRepo) DeductStockAndAppendOrder(ctx context.Context, vendorID primitive.ObjectID, productID string, quantity int, order models.Order) (bool, error) {
	// Matches only while the product still has enough stock, so the
	// decrement and the order append land atomically or not at all.
	filter := bson.M{
		"_id": vendorID,
		"products": bson.M{"$elemMatch": bson.M{
			"productId": productID,
			"stock":     bson.M{"$gte": quantity},
		}},
	}
	update := bson.M{
		"$inc":  bson.M{"products.$.stock": -quantity},
		"$push": bson.M{"orders": order},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	result, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (r *mongoVendorRepo) CompleteOrder(ctx context.Context, vendorID primitive.ObjectID, orderID string) (bool, error) {
	filter := bson.M{
		"_id": vendorID,
		"orders": bson.M{"$elemMatch": bson.M{
			"orderId": orderID,
			"status":  models.OrderPending,
		}},
	}
	result, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"orders.$.status": models.OrderCompleted,
		"updatedAt":       time.Now(),
	}})
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (r *mongoVendorRepo) FindOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	vendors, err := r.find(ctx, bson.M{"orders.userId": userID})
	if err != nil {
		return nil, err
	}

	orders := []models.Order{}
	for _, vendor := range vendors {
		for _, order := range vendor.Orders {
			if order.UserID == userID {
				orders = append(orders, order)
			}
		}
	}
	return orders, nil
}

// --- Stall history ---

type mongoHistoryRepo struct {
	col *mongo.Collection
}

// NewMongoHistoryRepository returns the append-only audit trail backed by
// the "stall_history" collection. Only inserts and reads exist.
func NewMongoHistoryRepository(db *mongo.Database) HistoryRepository {
	return &mongoHistoryRepo{col: db.Collection(historyCollection)}
}

func (r *mongoHistoryRepo) Append(ctx context.Context, entry models.StallHistory) error {
	_, err := r.col.InsertOne(ctx, entry)
	return err
}

func (r *mongoHistoryRepo) FindAll(ctx context.Context) ([]models.StallHistory, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoHistoryRepo) FindByStall(ctx context.Context, stallID primitive.ObjectID) ([]models.StallHistory, error) {
	return r.find(ctx, bson.M{"stallId": stallID})
}

func (r *mongoHistoryRepo) find(ctx context.Context, filter bson.M) ([]models.StallHistory, error) {
	opts := options.Find().SetSort(bson.D{{Key: "bookedOn", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.StallHistory
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.StallHistory{}
	}
	return entries, nil
}
