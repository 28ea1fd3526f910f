package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/waggytrails/walker-scheduler/internal/domain/schedule"
	"github.com/waggytrails/walker-scheduler/internal/events"
	"github.com/waggytrails/walker-scheduler/internal/httperr"
	"github.com/waggytrails/walker-scheduler/internal/models"
	"github.com/waggytrails/walker-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CommitBookingInput struct {
	WalkerID uint

	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	PetName       string

	ServiceID  uint
	LocationID uint

	Date  string
	Time  string
	Notes string

	// Tight is the administrative override: travel-gap checks are skipped
	// and the booking is flagged. Never reachable from the public flow.
	Tight bool

	// Confirm creates the booking as confirmed instead of pending.
	Confirm bool
}

// ======================================================
// USE CASE
// ======================================================

// CommitBooking is the only write path into a walker's calendar. The
// sequence is: resolve and validate inputs, prefetch travel times, then
// re-validate against freshly-read state under the walker's advisory lock
// and insert inside that same transaction. Concurrent commits for one
// walker serialize on the lock; different walkers never contend.
type CommitBooking struct {
	repo   schedule.Repository
	travel schedule.TravelSource
	events *events.Dispatcher
}

func NewCommitBooking(
	repo schedule.Repository,
	travel schedule.TravelSource,
	dispatcher *events.Dispatcher,
) *CommitBooking {
	return &CommitBooking{
		repo:   repo,
		travel: travel,
		events: dispatcher,
	}
}

func (uc *CommitBooking) Execute(
	ctx context.Context,
	in CommitBookingInput,
) (*models.Booking, error) {

	walker, err := uc.repo.GetWalkerByID(ctx, in.WalkerID)
	if err != nil {
		return nil, httperr.ErrBusiness("walker_not_found")
	}

	start, err := time.ParseInLocation(
		"2006-01-02 15:04",
		in.Date+" "+in.Time,
		timezone.Location(walker.Timezone),
	)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	if !in.Tight {
		minAdvance := walker.MinAdvanceMinutes
		if minAdvance <= 0 {
			minAdvance = 120
		}
		now := timezone.NowIn(walker.Timezone)
		if start.Before(now.Add(time.Duration(minAdvance) * time.Minute)) {
			return nil, httperr.ErrBusiness("too_soon")
		}
	}

	svc, err := uc.repo.GetService(ctx, in.WalkerID, in.ServiceID)
	if err != nil || !svc.Active {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	if _, err := uc.repo.GetLocation(ctx, in.LocationID); err != nil {
		return nil, httperr.ErrBusiness("location_not_found")
	}

	end := start.Add(time.Duration(svc.DurationMin) * time.Minute)

	// Travel times are resolved before taking the lock so the external
	// routing call never extends the critical section. A booking committed
	// by a racer between here and the locked re-read can only introduce a
	// pair missing from the lookup, which the evaluator rejects as
	// infeasible; retrying resolves it.
	preSched, err := schedule.NewResolver(uc.repo).DaySchedule(ctx, in.WalkerID, start)
	if err != nil {
		return nil, err
	}
	lookup := schedule.PrefetchTravel(ctx, uc.travel, in.LocationID, preSched.Bookings)

	customer, err := uc.repo.GetOrCreateCustomer(
		ctx,
		in.CustomerName,
		in.CustomerPhone,
		in.CustomerEmail,
	)
	if err != nil {
		return nil, err
	}

	var petID *uint
	if in.PetName != "" {
		pet, err := uc.repo.GetOrCreatePet(ctx, customer.ID, in.PetName)
		if err != nil {
			return nil, err
		}
		petID = &pet.ID
	}

	status := schedule.StatusPending
	if in.Confirm {
		status = schedule.StatusConfirmed
	}

	var booking *models.Booking

	err = uc.repo.WithWalkerLock(ctx, in.WalkerID, func(tx schedule.Repository) error {
		sched, err := schedule.NewResolver(tx).DaySchedule(ctx, in.WalkerID, start)
		if err != nil {
			return err
		}

		if conflict := schedule.Evaluate(schedule.EvaluateInput{
			Candidate: schedule.Candidate{
				LocationID: in.LocationID,
				Interval:   schedule.Interval{Start: start, End: end},
			},
			WorkWindows:      sched.WorkWindows,
			Blocks:           sched.Blocks,
			Bookings:         sched.Bookings,
			Travel:           lookup,
			SkipTravelChecks: in.Tight,
		}); conflict != nil {
			return conflict
		}

		booking = &models.Booking{
			Reference:   uuid.NewString(),
			WalkerID:    in.WalkerID,
			CustomerID:  customer.ID,
			ServiceID:   svc.ID,
			PetID:       petID,
			LocationID:  in.LocationID,
			StartTime:   start,
			EndTime:     end,
			DurationMin: svc.DurationMin,
			Price:       svc.Price,
			Status:      string(status),
			Tight:       in.Tight,
			Notes:       in.Notes,
		}

		return tx.CreateBooking(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	uc.events.Dispatch(events.Event{
		Type:       events.BookingCommitted,
		WalkerID:   booking.WalkerID,
		CustomerID: booking.CustomerID,
		BookingID:  booking.ID,
		Reference:  booking.Reference,
		Start:      booking.StartTime,
		End:        booking.EndTime,
		LocationID: booking.LocationID,
		Price:      booking.Price,
	})

	return booking, nil
}
