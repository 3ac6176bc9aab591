// internal/models/common.go
package models

import "fmt"

// Position is a point on the market map.
type Position struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// Coordinates renders a position the way the vendor document stores it ("lat,lng").
func (p Position) Coordinates() string {
	return fmt.Sprintf("%f,%f", p.Latitude, p.Longitude)
}
