package models

import "time"

type Booking struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Reference string `gorm:"size:36;uniqueIndex" json:"reference"`

	WalkerID uint   `gorm:"index" json:"walker_id"`
	Walker   Walker `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"walker"`

	CustomerID uint     `json:"customer_id"`
	Customer   Customer `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"customer"`

	ServiceID uint        `json:"service_id"`
	Service   WalkService `gorm:"foreignKey:ServiceID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"service"`

	PetID *uint `json:"pet_id"`
	Pet   *Pet  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"pet,omitempty"`

	LocationID uint     `json:"location_id"`
	Location   Location `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"location"`

	StartTime time.Time `gorm:"index" json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	// Captured at commit time; later service edits never touch a booking.
	DurationMin int     `json:"duration_min"`
	Price       float64 `json:"price"`

	Status string `gorm:"size:20;default:'pending'" json:"status"`

	// Tight marks an administrative override of the travel-buffer rule.
	// The customer-facing flow never sets it.
	Tight bool `gorm:"default:false" json:"tight"`

	Notes       string     `gorm:"size:255" json:"notes"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
