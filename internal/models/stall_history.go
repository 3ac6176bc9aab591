// internal/models/stall_history.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stall history statuses.
const (
	HistoryAssigned   = "assigned"
	HistoryUnassigned = "unassigned"
)

// StallHistory is one row of the append-only assignment audit trail.
// Rows are inserted on confirm and release and are never updated or deleted.
type StallHistory struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StallID    primitive.ObjectID `bson:"stallId" json:"stallId"`
	StallName  string             `bson:"stallName" json:"stallName"`
	VendorID   primitive.ObjectID `bson:"vendorId" json:"vendorId"`
	VendorName string             `bson:"vendorName" json:"vendorName"`
	ShopID     string             `bson:"shopID" json:"shopID"`
	Status     string             `bson:"status" json:"status"` // "assigned" or "unassigned"
	BookedOn   time.Time          `bson:"bookedOn" json:"bookedOn"`
}
