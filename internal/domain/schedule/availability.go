package schedule

import (
	"context"
	"sort"
	"time"

	"github.com/waggytrails/walker-scheduler/internal/httperr"
	"github.com/waggytrails/walker-scheduler/internal/models"
	"github.com/waggytrails/walker-scheduler/internal/timezone"
)

// DaySchedule is everything the engine knows about one walker-local day:
// the enabled working window, declared blocks and active bookings, all
// clipped to the day. Both slot generation and the locked commit path build
// their ConflictEvaluator input from this one shape.
type DaySchedule struct {
	Date        time.Time
	WorkWindows []Interval
	Blocks      []Interval
	Bookings    []BookingWindow
}

// FreeWindows subtracts blocks and then active bookings from the working
// window, returning ordered disjoint intervals.
func (s *DaySchedule) FreeWindows() []Interval {
	var free []Interval
	for _, w := range s.WorkWindows {
		free = append(free, SubtractAll(w, s.Blocks)...)
	}

	var busy []Interval
	for _, bw := range s.Bookings {
		busy = append(busy, bw.Interval)
	}

	var out []Interval
	for _, w := range free {
		out = append(out, SubtractAll(w, busy)...)
	}
	return Normalize(out)
}

type DayAvailability struct {
	Date    time.Time  `json:"date"`
	Windows []Interval `json:"windows"`
}

// Resolver derives free windows from stored state. It keeps no state of its
// own between calls; the same stored state always yields the same result.
type Resolver struct {
	repo Repository
}

func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// FreeWindows returns one entry per calendar day in [from, to] (inclusive,
// walker-local days), each holding that day's ordered free intervals.
func (r *Resolver) FreeWindows(
	ctx context.Context,
	walkerID uint,
	from time.Time,
	to time.Time,
) ([]DayAvailability, error) {

	if to.Before(from) {
		return nil, httperr.ErrBusiness("invalid_range")
	}

	walker, err := r.repo.GetWalkerByID(ctx, walkerID)
	if err != nil {
		return nil, err
	}
	loc := timezone.Location(walker.Timezone)

	first := midnight(from.In(loc))
	last := midnight(to.In(loc))
	rangeEnd := last.AddDate(0, 0, 1)

	hours, err := r.repo.ListWorkingHours(ctx, walkerID)
	if err != nil {
		return nil, err
	}
	blocks, err := r.repo.ListBlocksInRange(ctx, walkerID, first, rangeEnd)
	if err != nil {
		return nil, err
	}
	bookings, err := r.repo.ListActiveBookingsInRange(ctx, walkerID, first, rangeEnd)
	if err != nil {
		return nil, err
	}

	var out []DayAvailability
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		sched := buildDaySchedule(day, loc, hours, blocks, bookings)
		out = append(out, DayAvailability{
			Date:    day,
			Windows: sched.FreeWindows(),
		})
	}

	return out, nil
}

// DaySchedule assembles the schedule for a single walker-local day. The
// commit path calls this on a transaction-bound repository so it sees the
// latest committed state.
func (r *Resolver) DaySchedule(
	ctx context.Context,
	walkerID uint,
	day time.Time,
) (*DaySchedule, error) {

	walker, err := r.repo.GetWalkerByID(ctx, walkerID)
	if err != nil {
		return nil, err
	}
	loc := timezone.Location(walker.Timezone)

	start := midnight(day.In(loc))
	end := start.AddDate(0, 0, 1)

	hours, err := r.repo.ListWorkingHours(ctx, walkerID)
	if err != nil {
		return nil, err
	}
	blocks, err := r.repo.ListBlocksInRange(ctx, walkerID, start, end)
	if err != nil {
		return nil, err
	}
	bookings, err := r.repo.ListActiveBookingsInRange(ctx, walkerID, start, end)
	if err != nil {
		return nil, err
	}

	sched := buildDaySchedule(start, loc, hours, blocks, bookings)
	return &sched, nil
}

// --------------------------------------------------
// Pure assembly
// --------------------------------------------------

func buildDaySchedule(
	day time.Time,
	loc *time.Location,
	hours []models.WorkingHours,
	blocks []models.Block,
	bookings []models.Booking,
) DaySchedule {

	sched := DaySchedule{Date: day}
	dayEnd := day.AddDate(0, 0, 1)
	dayWindow := Interval{Start: day, End: dayEnd}

	weekday := int(day.Weekday())
	for _, wh := range hours {
		if wh.Weekday != weekday || !wh.Active || wh.StartTime == "" || wh.EndTime == "" {
			continue
		}
		w := Interval{
			Start: atClock(day, wh.StartTime, loc),
			End:   atClock(day, wh.EndTime, loc),
		}
		if !w.IsEmpty() {
			sched.WorkWindows = append(sched.WorkWindows, w)
		}
	}

	for _, b := range blocks {
		for _, iv := range projectBlock(b, day, dayWindow, loc) {
			sched.Blocks = append(sched.Blocks, iv)
		}
	}
	sched.Blocks = Normalize(sched.Blocks)

	for _, bk := range bookings {
		if !IsActive(Status(bk.Status)) {
			continue
		}
		iv := Interval{Start: bk.StartTime.In(loc), End: bk.EndTime.In(loc)}
		if !iv.Overlaps(dayWindow) {
			continue
		}
		sched.Bookings = append(sched.Bookings, BookingWindow{
			ID:         bk.ID,
			LocationID: bk.LocationID,
			Interval:   iv,
			Tight:      bk.Tight,
		})
	}
	sort.Slice(sched.Bookings, func(i, j int) bool {
		return sched.Bookings[i].Interval.Start.Before(sched.Bookings[j].Interval.Start)
	})

	return sched
}

// projectBlock clips a block onto the day, expanding daily/weekly
// recurrence by projecting the block's clock time forward.
func projectBlock(b models.Block, day time.Time, dayWindow Interval, loc *time.Location) []Interval {
	switch b.Recurrence {
	case models.RecurrenceDaily, models.RecurrenceWeekly:
		localStart := b.StartTime.In(loc)
		if day.Before(midnight(localStart)) {
			return nil
		}
		if b.Recurrence == models.RecurrenceWeekly && localStart.Weekday() != day.Weekday() {
			return nil
		}
		start := time.Date(
			day.Year(), day.Month(), day.Day(),
			localStart.Hour(), localStart.Minute(), 0, 0,
			loc,
		)
		iv := Interval{Start: start, End: start.Add(b.EndTime.Sub(b.StartTime))}
		return clip(iv, dayWindow)

	default:
		iv := Interval{Start: b.StartTime.In(loc), End: b.EndTime.In(loc)}
		return clip(iv, dayWindow)
	}
}

func clip(iv, bounds Interval) []Interval {
	if !iv.Overlaps(bounds) {
		return nil
	}
	if iv.Start.Before(bounds.Start) {
		iv.Start = bounds.Start
	}
	if iv.End.After(bounds.End) {
		iv.End = bounds.End
	}
	return []Interval{iv}
}

func atClock(day time.Time, hm string, loc *time.Location) time.Time {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return day
	}
	return time.Date(
		day.Year(), day.Month(), day.Day(),
		t.Hour(), t.Minute(), 0, 0,
		loc,
	)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
