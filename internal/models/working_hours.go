package models

import "time"

// One row per walker per weekday; the replace-all update keeps it that way.
type WorkingHours struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	WalkerID uint `gorm:"uniqueIndex:idx_walker_weekday" json:"walker_id"`

	Weekday int `gorm:"uniqueIndex:idx_walker_weekday" json:"weekday"`

	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Active    bool   `json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
