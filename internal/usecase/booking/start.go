package booking

import (
	"context"

	"github.com/waggytrails/walker-scheduler/internal/domain/schedule"
	"github.com/waggytrails/walker-scheduler/internal/httperr"
	"github.com/waggytrails/walker-scheduler/internal/models"
)

type StartBooking struct {
	repo schedule.Repository
}

func NewStartBooking(repo schedule.Repository) *StartBooking {
	return &StartBooking{repo: repo}
}

func (uc *StartBooking) Execute(
	ctx context.Context,
	walkerID uint,
	bookingID uint,
) (*models.Booking, error) {

	b, err := uc.repo.GetBookingForWalker(ctx, bookingID, walkerID)
	if err != nil {
		return nil, httperr.ErrBusiness("booking_not_found")
	}

	if err := schedule.Start(b); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}
