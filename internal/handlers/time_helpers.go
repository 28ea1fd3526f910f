package handlers

import (
	"time"

	"github.com/waggytrails/walker-scheduler/internal/models"
	"github.com/waggytrails/walker-scheduler/internal/timezone"
)

func walkerLocation(w *models.Walker) *time.Location {
	if w != nil {
		return timezone.Location(w.Timezone)
	}
	return timezone.Location("")
}

func parseDateForWalker(w *models.Walker, dateStr string) (time.Time, error) {
	return time.ParseInLocation(
		"2006-01-02",
		dateStr,
		walkerLocation(w),
	)
}
