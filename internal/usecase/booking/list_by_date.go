package booking

import (
	"context"
	"time"

	"github.com/waggytrails/walker-scheduler/internal/domain/schedule"
	"github.com/waggytrails/walker-scheduler/internal/dto"
	"github.com/waggytrails/walker-scheduler/internal/timezone"
)

type ListBookingsByDate struct {
	repo schedule.Repository
}

func NewListBookingsByDate(repo schedule.Repository) *ListBookingsByDate {
	return &ListBookingsByDate{repo: repo}
}

func (uc *ListBookingsByDate) Execute(
	ctx context.Context,
	walkerID uint,
	date time.Time,
) ([]dto.BookingListDTO, error) {

	walker, err := uc.repo.GetWalkerByID(ctx, walkerID)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(walker.Timezone)

	start := time.Date(
		date.Year(), date.Month(), date.Day(),
		0, 0, 0, 0,
		loc,
	)
	end := start.AddDate(0, 0, 1)

	bookings, err := uc.repo.ListBookingsForPeriod(ctx, walkerID, start, end)
	if err != nil {
		return nil, err
	}

	out := make([]dto.BookingListDTO, 0, len(bookings))
	for _, b := range bookings {
		item := dto.BookingListDTO{
			ID:           b.ID,
			Reference:    b.Reference,
			StartTime:    b.StartTime,
			EndTime:      b.EndTime,
			Status:       b.Status,
			Tight:        b.Tight,
			CustomerName: b.Customer.Name,
			ServiceName:  b.Service.Name,
			LocationName: b.Location.Label,
			Price:        b.Price,
		}
		if b.Pet != nil {
			item.PetName = b.Pet.Name
		}
		out = append(out, item)
	}

	return out, nil
}
