package schedule

import (
	"context"
	"time"

	"github.com/waggytrails/walker-scheduler/internal/models"
)

type TravelEstimate struct {
	Seconds int `json:"seconds"`
	Meters  int `json:"meters"`
}

// TravelSource resolves travel time between two stored locations. The
// production implementation is the travel-time cache; tests inject a double.
type TravelSource interface {
	Travel(ctx context.Context, fromLocationID, toLocationID uint) (TravelEstimate, error)
}

type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type SlotGenerator struct {
	repo        Repository
	travel      TravelSource
	granularity time.Duration
}

func NewSlotGenerator(
	repo Repository,
	travel TravelSource,
	granularity time.Duration,
) *SlotGenerator {
	if granularity <= 0 {
		granularity = 15 * time.Minute
	}
	return &SlotGenerator{
		repo:        repo,
		travel:      travel,
		granularity: granularity,
	}
}

// CandidateSlots enumerates offerable start times for one walker-local day.
// Every returned slot passes Evaluate against the same snapshot, so a slot
// offered here is feasible if committed immediately. An empty result means
// no feasible time that day, not an error.
//
// Travel times are resolved once per distinct location pair for the whole
// request, never once per candidate. notBefore (zero to disable) drops
// candidates starting earlier, e.g. now plus the walker's minimum advance.
func (g *SlotGenerator) CandidateSlots(
	ctx context.Context,
	walkerID uint,
	svc *models.WalkService,
	locationID uint,
	day time.Time,
	notBefore time.Time,
) ([]Slot, error) {

	sched, err := NewResolver(g.repo).DaySchedule(ctx, walkerID, day)
	if err != nil {
		return nil, err
	}

	free := sched.FreeWindows()
	if len(free) == 0 {
		return []Slot{}, nil
	}

	duration := time.Duration(svc.DurationMin) * time.Minute
	lookup := PrefetchTravel(ctx, g.travel, locationID, sched.Bookings)

	var slots []Slot
	for _, window := range free {
		for t := window.Start; !t.Add(duration).After(window.End); t = t.Add(g.granularity) {
			if !notBefore.IsZero() && t.Before(notBefore) {
				continue
			}

			conflict := Evaluate(EvaluateInput{
				Candidate: Candidate{
					LocationID: locationID,
					Interval:   Interval{Start: t, End: t.Add(duration)},
				},
				WorkWindows: sched.WorkWindows,
				Blocks:      sched.Blocks,
				Bookings:    sched.Bookings,
				Travel:      lookup,
			})
			if conflict == nil {
				slots = append(slots, Slot{Start: t, End: t.Add(duration)})
			}
		}
	}

	return slots, nil
}

type pairKey struct {
	from uint
	to   uint
}

// PrefetchTravel resolves both directions between the candidate location
// and every distinct booking location of the day, one source call per
// pair. A pair whose resolution fails stays absent from the map, so
// candidates adjacent to that booking are rejected rather than offered on
// an unknown travel time. The commit path shares this helper, keeping its
// external calls outside the walker lock.
func PrefetchTravel(
	ctx context.Context,
	travel TravelSource,
	locationID uint,
	bookings []BookingWindow,
) TravelLookup {

	resolved := make(map[pairKey]int)
	seen := make(map[pairKey]bool)

	for _, bw := range bookings {
		if bw.LocationID == locationID {
			continue
		}
		for _, k := range []pairKey{
			{from: bw.LocationID, to: locationID},
			{from: locationID, to: bw.LocationID},
		} {
			if seen[k] {
				continue
			}
			seen[k] = true

			est, err := travel.Travel(ctx, k.from, k.to)
			if err != nil {
				continue
			}
			resolved[k] = est.Seconds
		}
	}

	return func(from, to uint) (int, bool) {
		s, ok := resolved[pairKey{from: from, to: to}]
		return s, ok
	}
}
