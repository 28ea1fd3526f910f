package audit

import (
	"encoding/json"

	"gorm.io/gorm"

	"github.com/waggytrails/walker-scheduler/internal/events"
	"github.com/waggytrails/walker-scheduler/internal/models"
)

type Writer struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Writer {
	return &Writer{db: db}
}

func (w *Writer) Log(
	walkerID uint,
	action string,
	entity string,
	entityID *uint,
	metadata any,
) error {

	var metaJSON string
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			metaJSON = string(b)
		}
	}

	entry := models.AuditLog{
		WalkerID: walkerID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Metadata: metaJSON,
	}

	return w.db.Create(&entry).Error
}

// Handle makes the audit trail an event subscriber: every committed or
// cancelled booking leaves a row.
func (w *Writer) Handle(ev events.Event) {
	action := string(ev.Type)
	id := ev.BookingID
	_ = w.Log(ev.WalkerID, action, "booking", &id, map[string]any{
		"reference":   ev.Reference,
		"customer_id": ev.CustomerID,
		"start":       ev.Start,
		"end":         ev.End,
		"location_id": ev.LocationID,
	})
}

// Compile-time check
var _ events.Subscriber = (*Writer)(nil)
