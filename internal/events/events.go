package events

import "time"

var timeNow = time.Now

type Type string

const (
	BookingCommitted Type = "booking_committed"
	BookingCancelled Type = "booking_cancelled"
)

// Event is what the engine tells the outside world after a booking state
// change. Consumers (audit trail, payment capture, calendar sync) never
// write back into availability through it; their effects only ever show up
// as Block or Booking rows.
type Event struct {
	ID   string
	Type Type

	WalkerID   uint
	CustomerID uint
	BookingID  uint
	Reference  string

	Start      time.Time
	End        time.Time
	LocationID uint
	Price      float64

	OccurredAt time.Time
}
