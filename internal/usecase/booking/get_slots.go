package booking

import (
	"context"
	"time"

	"github.com/waggytrails/walker-scheduler/internal/domain/schedule"
	"github.com/waggytrails/walker-scheduler/internal/httperr"
	"github.com/waggytrails/walker-scheduler/internal/timezone"
)

// Availability queries are capped to a month so a bad range cannot turn
// into an unbounded scan.
const maxRangeDays = 31

// ======================================================
// INPUT / OUTPUT
// ======================================================

type GetSlotsInput struct {
	WalkerID   uint
	ServiceID  uint
	LocationID uint
	From       time.Time
	To         time.Time
}

type DaySlots struct {
	Date  time.Time       `json:"date"`
	Slots []schedule.Slot `json:"slots"`
}

// ======================================================
// USE CASE
// ======================================================

type GetSlots struct {
	repo  schedule.Repository
	slots *schedule.SlotGenerator
}

func NewGetSlots(
	repo schedule.Repository,
	slots *schedule.SlotGenerator,
) *GetSlots {
	return &GetSlots{
		repo:  repo,
		slots: slots,
	}
}

func (uc *GetSlots) Execute(
	ctx context.Context,
	in GetSlotsInput,
) ([]DaySlots, error) {

	if in.To.Before(in.From) {
		return nil, httperr.ErrBusiness("invalid_range")
	}
	if in.To.Sub(in.From) > maxRangeDays*24*time.Hour {
		return nil, httperr.ErrBusiness("invalid_range")
	}

	walker, err := uc.repo.GetWalkerByID(ctx, in.WalkerID)
	if err != nil {
		return nil, httperr.ErrBusiness("walker_not_found")
	}

	svc, err := uc.repo.GetService(ctx, in.WalkerID, in.ServiceID)
	if err != nil || !svc.Active {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	if _, err := uc.repo.GetLocation(ctx, in.LocationID); err != nil {
		return nil, httperr.ErrBusiness("location_not_found")
	}

	minAdvance := walker.MinAdvanceMinutes
	if minAdvance <= 0 {
		minAdvance = 120
	}
	notBefore := timezone.NowIn(walker.Timezone).
		Add(time.Duration(minAdvance) * time.Minute)

	var out []DaySlots
	for day := in.From; !day.After(in.To); day = day.AddDate(0, 0, 1) {
		slots, err := uc.slots.CandidateSlots(
			ctx,
			in.WalkerID,
			svc,
			in.LocationID,
			day,
			notBefore,
		)
		if err != nil {
			return nil, err
		}
		if slots == nil {
			slots = []schedule.Slot{}
		}
		out = append(out, DaySlots{Date: day, Slots: slots})
	}

	return out, nil
}
