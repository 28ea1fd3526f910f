package booking

import (
	"context"

	"github.com/waggytrails/walker-scheduler/internal/domain/schedule"
	"github.com/waggytrails/walker-scheduler/internal/events"
	"github.com/waggytrails/walker-scheduler/internal/httperr"
	"github.com/waggytrails/walker-scheduler/internal/models"
	"github.com/waggytrails/walker-scheduler/internal/timezone"
)

type CancelBooking struct {
	repo   schedule.Repository
	events *events.Dispatcher
}

func NewCancelBooking(
	repo schedule.Repository,
	dispatcher *events.Dispatcher,
) *CancelBooking {
	return &CancelBooking{
		repo:   repo,
		events: dispatcher,
	}
}

func (uc *CancelBooking) Execute(
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
	if err := schedule.Cancel(b, now); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}

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
