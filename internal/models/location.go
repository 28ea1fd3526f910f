package models

import "time"

const (
	LocationOwnerCustomer = "customer"
	LocationOwnerWalker   = "walker"
)

// Location coordinates are the travel-time cache key; rows referenced by a
// future active booking must not be edited (enforced in the handler layer).
type Location struct {
	ID uint `gorm:"primaryKey" json:"id"`

	OwnerType string `gorm:"size:10;not null" json:"owner_type"`
	OwnerID   uint   `gorm:"not null" json:"owner_id"`

	Label     string  `gorm:"size:100" json:"label"`
	Address   string  `gorm:"size:255" json:"address"`
	City      string  `gorm:"size:100" json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
