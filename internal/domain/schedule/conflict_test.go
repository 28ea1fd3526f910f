package schedule

import (
	"testing"
)

func travelTable(seconds map[[2]uint]int) TravelLookup {
	return func(from, to uint) (int, bool) {
		s, ok := seconds[[2]uint{from, to}]
		return s, ok
	}
}

func workday() []Interval {
	return []Interval{iv(8, 0, 18, 0)}
}

func TestEvaluate_OutsideWorkingHours(t *testing.T) {
	conflict := Evaluate(EvaluateInput{
		Candidate:   Candidate{LocationID: 1, Interval: iv(7, 0, 8, 0)},
		WorkWindows: workday(),
	})
	if conflict == nil || conflict.Reason != ReasonOutsideWorkingHours {
		t.Fatalf("expected outside_working_hours, got %v", conflict)
	}

	// Ending exactly at the window edge is allowed.
	if conflict := Evaluate(EvaluateInput{
		Candidate:   Candidate{LocationID: 1, Interval: iv(17, 0, 18, 0)},
		WorkWindows: workday(),
	}); conflict != nil {
		t.Fatalf("expected feasible at window edge, got %v", conflict)
	}
}

func TestEvaluate_Blocked(t *testing.T) {
	conflict := Evaluate(EvaluateInput{
		Candidate:   Candidate{LocationID: 1, Interval: iv(12, 30, 13, 30)},
		WorkWindows: workday(),
		Blocks:      []Interval{iv(12, 0, 13, 0)},
	})
	if conflict == nil || conflict.Reason != ReasonBlocked {
		t.Fatalf("expected blocked, got %v", conflict)
	}
}

func TestEvaluate_OverlapCarriesBookingID(t *testing.T) {
	conflict := Evaluate(EvaluateInput{
		Candidate:   Candidate{LocationID: 1, Interval: iv(9, 30, 10, 30)},
		WorkWindows: workday(),
		Bookings: []BookingWindow{
			{ID: 42, LocationID: 1, Interval: iv(9, 0, 10, 0)},
		},
	})
	if conflict == nil || conflict.Reason != ReasonOverlap {
		t.Fatalf("expected overlap, got %v", conflict)
	}
	if conflict.ConflictingBookingID != 42 {
		t.Fatalf("expected booking 42, got %d", conflict.ConflictingBookingID)
	}
}

// A booking at location 2 ends 09:00; moving to location 1 takes 20 minutes.
// A 09:10 start leaves only 10 minutes of gap and must be rejected with the
// gap numbers; 09:20 is exactly enough.
func TestEvaluate_TravelGapBefore(t *testing.T) {
	travel := travelTable(map[[2]uint]int{
		{2, 1}: 1200,
		{1, 2}: 1200,
	})
	bookings := []BookingWindow{
		{ID: 7, LocationID: 2, Interval: iv(8, 0, 9, 0)},
	}

	conflict := Evaluate(EvaluateInput{
		Candidate:   Candidate{LocationID: 1, Interval: iv(9, 10, 9, 40)},
		WorkWindows: workday(),
		Bookings:    bookings,
		Travel:      travel,
	})
	if conflict == nil || conflict.Reason != ReasonTravelInfeasible {
		t.Fatalf("expected travel_infeasible, got %v", conflict)
	}
	if conflict.ConflictingBookingID != 7 {
		t.Fatalf("expected booking 7, got %d", conflict.ConflictingBookingID)
	}
	if conflict.RequiredGapSec != 1200 || conflict.AvailableGapSec != 600 {
		t.Fatalf("expected required 1200 / available 600, got %d / %d",
			conflict.RequiredGapSec, conflict.AvailableGapSec)
	}

	if conflict := Evaluate(EvaluateInput{
		Candidate:   Candidate{LocationID: 1, Interval: iv(9, 20, 9, 50)},
		WorkWindows: workday(),
		Bookings:    bookings,
		Travel:      travel,
	}); conflict != nil {
		t.Fatalf("expected 09:20 feasible, got %v", conflict)
	}
}

func TestEvaluate_TravelGapAfter(t *testing.T) {
	travel := travelTable(map[[2]uint]int{
		{1, 3}: 900,
		{3, 1}: 900,
	})
	bookings := []BookingWindow{
		{ID: 9, LocationID: 3, Interval: iv(11, 0, 12, 0)},
	}

	conflict := Evaluate(EvaluateInput{
		Candidate:   Candidate{LocationID: 1, Interval: iv(10, 0, 10, 50)},
		WorkWindows: workday(),
		Bookings:    bookings,
		Travel:      travel,
	})
	if conflict == nil || conflict.Reason != ReasonTravelInfeasible {
		t.Fatalf("expected travel_infeasible, got %v", conflict)
	}
	if conflict.RequiredGapSec != 900 || conflict.AvailableGapSec != 600 {
		t.Fatalf("expected required 900 / available 600, got %d / %d",
			conflict.RequiredGapSec, conflict.AvailableGapSec)
	}
}

func TestEvaluate_SameLocationNeedsNoGap(t *testing.T) {
	bookings := []BookingWindow{
		{ID: 5, LocationID: 1, Interval: iv(8, 0, 9, 0)},
	}

	// Back to back at the same location, no travel table at all.
	if conflict := Evaluate(EvaluateInput{
		Candidate:   Candidate{LocationID: 1, Interval: iv(9, 0, 10, 0)},
		WorkWindows: workday(),
		Bookings:    bookings,
	}); conflict != nil {
		t.Fatalf("expected feasible, got %v", conflict)
	}
}

func TestEvaluate_UnresolvedTravelIsInfeasible(t *testing.T) {
	bookings := []BookingWindow{
		{ID: 5, LocationID: 2, Interval: iv(8, 0, 9, 0)},
	}

	conflict := Evaluate(EvaluateInput{
		Candidate:   Candidate{LocationID: 1, Interval: iv(13, 0, 14, 0)},
		WorkWindows: workday(),
		Bookings:    bookings,
		Travel:      travelTable(nil), // nothing resolved
	})
	if conflict == nil || conflict.Reason != ReasonTravelInfeasible {
		t.Fatalf("expected conservative rejection, got %v", conflict)
	}
}

func TestEvaluate_TightSkipsOnlyTravelChecks(t *testing.T) {
	bookings := []BookingWindow{
		{ID: 5, LocationID: 2, Interval: iv(8, 0, 9, 0)},
	}

	// Travel would fail, but the tight override skips it.
	if conflict := Evaluate(EvaluateInput{
		Candidate:        Candidate{LocationID: 1, Interval: iv(9, 0, 10, 0)},
		WorkWindows:      workday(),
		Bookings:         bookings,
		Travel:           travelTable(nil),
		SkipTravelChecks: true,
	}); conflict != nil {
		t.Fatalf("expected tight candidate feasible, got %v", conflict)
	}

	// Overlap still applies.
	conflict := Evaluate(EvaluateInput{
		Candidate:        Candidate{LocationID: 1, Interval: iv(8, 30, 9, 30)},
		WorkWindows:      workday(),
		Bookings:         bookings,
		SkipTravelChecks: true,
	})
	if conflict == nil || conflict.Reason != ReasonOverlap {
		t.Fatalf("expected overlap even when tight, got %v", conflict)
	}
}

func TestEvaluate_CheckOrder(t *testing.T) {
	// Candidate is outside working hours AND overlapping; the working-hours
	// check fires first.
	conflict := Evaluate(EvaluateInput{
		Candidate:   Candidate{LocationID: 1, Interval: iv(6, 0, 7, 0)},
		WorkWindows: workday(),
		Bookings: []BookingWindow{
			{ID: 1, LocationID: 1, Interval: iv(6, 0, 7, 0)},
		},
	})
	if conflict == nil || conflict.Reason != ReasonOutsideWorkingHours {
		t.Fatalf("expected outside_working_hours first, got %v", conflict)
	}
}
