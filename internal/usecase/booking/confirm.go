package booking

import (
	"context"

	"github.com/waggytrails/walker-scheduler/internal/domain/schedule"
	"github.com/waggytrails/walker-scheduler/internal/httperr"
	"github.com/waggytrails/walker-scheduler/internal/models"
)

type ConfirmBooking struct {
	repo schedule.Repository
}

func NewConfirmBooking(repo schedule.Repository) *ConfirmBooking {
	return &ConfirmBooking{repo: repo}
}

func (uc *ConfirmBooking) Execute(
	ctx context.Context,
	walkerID uint,
	bookingID uint,
) (*models.Booking, error) {

	b, err := uc.repo.GetBookingForWalker(ctx, bookingID, walkerID)
	if err != nil {
		return nil, httperr.ErrBusiness("booking_not_found")
	}

	if err := schedule.Confirm(b); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}
