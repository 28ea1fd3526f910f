package models

import "time"

// TravelTimeEntry is directional: A->B and B->A are separate rows even
// though callers usually fill both with the same value.
type TravelTimeEntry struct {
	ID uint `gorm:"primaryKey" json:"id"`

	FromLocationID uint `gorm:"uniqueIndex:idx_travel_pair" json:"from_location_id"`
	ToLocationID   uint `gorm:"uniqueIndex:idx_travel_pair" json:"to_location_id"`

	TravelSeconds  int `json:"travel_seconds"`
	DistanceMeters int `json:"distance_meters"`

	ComputedAt time.Time `json:"computed_at"`
}
