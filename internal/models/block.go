package models

import "time"

const (
	RecurrenceNone   = ""
	RecurrenceDaily  = "daily"
	RecurrenceWeekly = "weekly"
)

const (
	BlockSourceManual   = "manual"
	BlockSourceCalendar = "calendar"
)

// Block is declared unavailability. Rows may overlap each other; the
// availability resolver unions them before subtracting.
type Block struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	WalkerID uint `gorm:"index" json:"walker_id"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	Reason     string `gorm:"size:100" json:"reason"`
	Recurrence string `gorm:"size:10" json:"recurrence"`
	Source     string `gorm:"size:10;default:'manual'" json:"source"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
