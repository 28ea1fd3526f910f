package schedule

import "fmt"

// ===============================
// Conflict reasons
// ===============================

type Reason string

const (
	ReasonOverlap             Reason = "overlap"
	ReasonTravelInfeasible    Reason = "travel_infeasible"
	ReasonOutsideWorkingHours Reason = "outside_working_hours"
	ReasonBlocked             Reason = "blocked"
)

// ConflictError carries enough detail for the caller to explain the
// rejection: which booking clashed, or how much travel buffer was missing.
type ConflictError struct {
	Reason               Reason `json:"reason"`
	ConflictingBookingID uint   `json:"conflicting_booking_id,omitempty"`
	RequiredGapSec       int    `json:"required_gap_sec,omitempty"`
	AvailableGapSec      int    `json:"available_gap_sec,omitempty"`
}

func (e *ConflictError) Error() string {
	switch e.Reason {
	case ReasonTravelInfeasible:
		return fmt.Sprintf("booking conflict: %s (required %ds, available %ds)",
			e.Reason, e.RequiredGapSec, e.AvailableGapSec)
	case ReasonOverlap:
		return fmt.Sprintf("booking conflict: %s with booking %d", e.Reason, e.ConflictingBookingID)
	}
	return fmt.Sprintf("booking conflict: %s", e.Reason)
}

// ===============================
// Evaluation input
// ===============================

// BookingWindow is the slice of an active booking the evaluator cares about.
type BookingWindow struct {
	ID         uint
	LocationID uint
	Interval   Interval
	Tight      bool
}

type Candidate struct {
	LocationID uint
	Interval   Interval
}

// TravelLookup returns already-resolved travel seconds between two stored
// locations. ok=false means the value could not be resolved; the evaluator
// treats that as infeasible rather than assuming zero.
type TravelLookup func(fromLocationID, toLocationID uint) (seconds int, ok bool)

type EvaluateInput struct {
	Candidate Candidate

	// Enabled working-hours windows covering the candidate's date.
	WorkWindows []Interval

	// Declared unavailability for the date, already clipped to the day.
	Blocks []Interval

	// Active bookings for the date, sorted by start time.
	Bookings []BookingWindow

	Travel TravelLookup

	// SkipTravelChecks disables checks 4 and 5 for administrative "tight"
	// bookings. Overlap and block checks always apply.
	SkipTravelChecks bool
}

// Evaluate decides whether the candidate interval is bookable. It is pure:
// both slot generation and the locked commit path call this exact function,
// so the two can never disagree about feasibility.
//
// Checks run in order, first failure wins:
//  1. candidate lies within an enabled working window
//  2. candidate intersects no block
//  3. candidate overlaps no active booking
//  4. gap to the nearest preceding booking covers the travel time
//  5. gap to the nearest following booking covers the travel time
//
// A nil return means feasible.
func Evaluate(in EvaluateInput) *ConflictError {
	cand := in.Candidate.Interval

	within := false
	for _, w := range in.WorkWindows {
		if w.Contains(cand) {
			within = true
			break
		}
	}
	if !within {
		return &ConflictError{Reason: ReasonOutsideWorkingHours}
	}

	for _, b := range in.Blocks {
		if cand.Overlaps(b) {
			return &ConflictError{Reason: ReasonBlocked}
		}
	}

	for _, bw := range in.Bookings {
		if cand.Overlaps(bw.Interval) {
			return &ConflictError{
				Reason:               ReasonOverlap,
				ConflictingBookingID: bw.ID,
			}
		}
	}

	if in.SkipTravelChecks {
		return nil
	}

	if prev, ok := nearestBefore(in.Bookings, cand); ok {
		required, okTravel := requiredTravel(in.Travel, prev.LocationID, in.Candidate.LocationID)
		available := int(cand.Start.Sub(prev.Interval.End).Seconds())
		if !okTravel || available < required {
			return &ConflictError{
				Reason:               ReasonTravelInfeasible,
				ConflictingBookingID: prev.ID,
				RequiredGapSec:       required,
				AvailableGapSec:      available,
			}
		}
	}

	if next, ok := nearestAfter(in.Bookings, cand); ok {
		required, okTravel := requiredTravel(in.Travel, in.Candidate.LocationID, next.LocationID)
		available := int(next.Interval.Start.Sub(cand.End).Seconds())
		if !okTravel || available < required {
			return &ConflictError{
				Reason:               ReasonTravelInfeasible,
				ConflictingBookingID: next.ID,
				RequiredGapSec:       required,
				AvailableGapSec:      available,
			}
		}
	}

	return nil
}

func requiredTravel(lookup TravelLookup, fromID, toID uint) (int, bool) {
	if fromID == toID {
		return 0, true
	}
	if lookup == nil {
		return 0, false
	}
	return lookup(fromID, toID)
}

func nearestBefore(bookings []BookingWindow, cand Interval) (BookingWindow, bool) {
	var best BookingWindow
	found := false
	for _, bw := range bookings {
		if !bw.Interval.End.After(cand.Start) {
			if !found || bw.Interval.End.After(best.Interval.End) {
				best = bw
				found = true
			}
		}
	}
	return best, found
}

func nearestAfter(bookings []BookingWindow, cand Interval) (BookingWindow, bool) {
	var best BookingWindow
	found := false
	for _, bw := range bookings {
		if !bw.Interval.Start.Before(cand.End) {
			if !found || bw.Interval.Start.Before(best.Interval.Start) {
				best = bw
				found = true
			}
		}
	}
	return best, found
}
