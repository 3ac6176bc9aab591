// internal/models/stall.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VendorRef is the denormalized vendor snapshot a stall carries while assigned.
type VendorRef struct {
	VendorID   primitive.ObjectID `bson:"vendorId" json:"vendorId"`
	VendorName string             `bson:"vendorName" json:"vendorName"`
	ShopID     string             `bson:"shopID" json:"shopID"`
}

// Stall is a bookable physical market spot.
// Invariant: Taken is true exactly when AssignedVendor is non-nil.
type Stall struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"` // e.g., "Central Ground Stall 3", unique
	Position       Position           `bson:"position" json:"position"`
	LocationName   string             `bson:"locationName" json:"locationName"`
	Taken          bool               `bson:"taken" json:"taken"`
	BookingTime    *time.Time         `bson:"bookingTime" json:"bookingTime"`
	AssignedVendor *VendorRef         `bson:"assignedVendor" json:"assignedVendor"`

	// Pending claim hold, set between Claim and Confirm. Cleared on Confirm/Release.
	ClaimedBy *primitive.ObjectID `bson:"claimedBy,omitempty" json:"claimedBy,omitempty"`
	ClaimedAt *time.Time          `bson:"claimedAt,omitempty" json:"claimedAt,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
