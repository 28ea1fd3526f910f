package booking

import (
	"context"

	"github.com/waggytrails/walker-scheduler/internal/domain/schedule"
	"github.com/waggytrails/walker-scheduler/internal/httperr"
	"github.com/waggytrails/walker-scheduler/internal/models"
	"github.com/waggytrails/walker-scheduler/internal/timezone"
)

type CompleteBooking struct {
	repo schedule.Repository
}

func NewCompleteBooking(repo schedule.Repository) *CompleteBooking {
	return &CompleteBooking{repo: repo}
}

func (uc *CompleteBooking) Execute(
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
	if err := schedule.Complete(b, now); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}
