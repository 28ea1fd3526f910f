package booking

import (
	"context"

	"github.com/waggytrails/walker-scheduler/internal/domain/schedule"
	"github.com/waggytrails/walker-scheduler/internal/events"
	"github.com/waggytrails/walker-scheduler/internal/httperr"
	"github.com/waggytrails/walker-scheduler/internal/models"
	"github.com/waggytrails/walker-scheduler/internal/timezone"
)

type MarkNoShow struct {
	repo   schedule.Repository
	events *events.Dispatcher
}

func NewMarkNoShow(
	repo schedule.Repository,
	dispatcher *events.Dispatcher,
) *MarkNoShow {
	return &MarkNoShow{
		repo:   repo,
		events: dispatcher,
	}
}

func (uc *MarkNoShow) Execute(
	ctx context.Context,
	walkerID uint,
	bookingID uint,
) (*models.Booking, error) {

	walker, err := uc.repo.GetWalkerByID(ctx, walkerID)
	if err != nil {
		return nil, err
	}

	b, err := uc.repo.GetBookingForWalker(ctx, bookingID, walkerID)
	if err != nil {
		return nil, httperr.ErrBusiness("booking_not_found")
	}

	now := timezone.NowIn(walker.Timezone)
	if err := schedule.MarkNoShow(b, now); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}

	// A no-show frees the slot just like a cancellation does.
	uc.events.Dispatch(events.Event{
		Type:       events.BookingCancelled,
		WalkerID:   b.WalkerID,
		CustomerID: b.CustomerID,
		BookingID:  b.ID,
		Reference:  b.Reference,
		Start:      b.StartTime,
		End:        b.EndTime,
		LocationID: b.LocationID,
	})

	return b, nil
}
