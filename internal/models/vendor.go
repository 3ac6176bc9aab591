// internal/models/vendor.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// License statuses.
const (
	LicenseNotIssued = "not_issued"
	LicenseRequested = "requested"
	LicenseCompleted = "completed"
)

// Order statuses.
const (
	OrderPending   = "Pending"
	OrderCompleted = "Completed"
)

// LicenseDocuments holds the paperwork a vendor submits with a license
// application. Photos are stored by reference (S3 URL), never as content.
type LicenseDocuments struct {
	AadhaarID           string `bson:"aadhaarID" json:"aadhaarID"`
	PANNumber           string `bson:"panNumber" json:"panNumber"`
	BusinessName        string `bson:"businessName" json:"businessName"`
	GSTNumber           string `bson:"gstNumber,omitempty" json:"gstNumber,omitempty"`
	YearsInBusiness     string `bson:"yearsInBusiness,omitempty" json:"yearsInBusiness,omitempty"`
	BusinessDescription string `bson:"businessDescription,omitempty" json:"businessDescription,omitempty"`
	ShopPhotoURL        string `bson:"shopPhotoURL" json:"shopPhotoURL"`
	VendorPhotoURL      string `bson:"vendorPhotoURL" json:"vendorPhotoURL"`
}

// License tracks the business permit lifecycle for one vendor.
// Status only ever moves not_issued -> requested -> completed.
type License struct {
	Status        string            `bson:"status" json:"status"`
	Documents     *LicenseDocuments `bson:"documents,omitempty" json:"documents,omitempty"`
	AppliedAt     *time.Time        `bson:"appliedAt,omitempty" json:"appliedAt,omitempty"`
	ApprovedAt    *time.Time        `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	LicenseNumber string            `bson:"licenseNumber,omitempty" json:"licenseNumber,omitempty"`
}

// Product is one catalog entry embedded in its owning vendor document.
type Product struct {
	ProductID string  `bson:"productId" json:"productId"`
	Name      string  `bson:"name" json:"name"`
	Price     float64 `bson:"price" json:"price"`
	Stock     int     `bson:"stock" json:"stock"`
	Category  string  `bson:"category" json:"category"`
	ImageURL  string  `bson:"imageURL,omitempty" json:"imageURL,omitempty"`
}

// Order is one purchase embedded in the vendor that fulfils it.
type Order struct {
	OrderID     string             `bson:"orderId" json:"orderId"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	ProductID   string             `bson:"productId" json:"productId"`
	ProductName string             `bson:"productName" json:"productName"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	Price       float64            `bson:"price" json:"price"`
	Status      string             `bson:"status" json:"status"` // "Pending" or "Completed"
	OrderedAt   time.Time          `bson:"orderedAt" json:"orderedAt"`
}

// Vendor matches the vendor document in MongoDB. Products and orders are
// embedded arrays; stock deduction and order append happen in the same
// document update.
type Vendor struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email          string             `bson:"email" json:"email"`
	Password       string             `bson:"password" json:"-"`
	Name           string             `bson:"name" json:"name"`
	ShopID         string             `bson:"shopID" json:"shopID"` // e.g., "SHOP-9F2C41AB", unique
	ShopName       string             `bson:"shopName" json:"shopName"`
	Phone          string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Category       string             `bson:"category,omitempty" json:"category,omitempty"`
	GPSCoordinates *string            `bson:"gpsCoordinates" json:"gpsCoordinates"` // "lat,lng" of the booked stall
	LastAttendance *time.Time         `bson:"lastAttendance" json:"lastAttendance"`
	License        License            `bson:"license" json:"license"`
	Products       []Product          `bson:"products" json:"products"`
	Orders         []Order            `bson:"orders" json:"orders"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
