package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/waggytrails/walker-scheduler/internal/httperr"
	"github.com/waggytrails/walker-scheduler/internal/models"
)

// day (2026-03-02, declared in interval_test.go) is a Monday.
const monday = 1

func mondayNineToSix() []models.WorkingHours {
	return []models.WorkingHours{
		{WalkerID: 1, Weekday: monday, Active: true, StartTime: "08:00", EndTime: "18:00"},
	}
}

func TestFreeWindows_BlockSplitsDay(t *testing.T) {
	repo := newFakeRepo()
	repo.hours = mondayNineToSix()
	repo.blocks = []models.Block{
		{WalkerID: 1, StartTime: at(12, 0), EndTime: at(13, 0)},
	}

	days, err := NewResolver(repo).FreeWindows(context.Background(), 1, day, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}

	sameIntervals(t, days[0].Windows, []Interval{
		iv(8, 0, 12, 0),
		iv(13, 0, 18, 0),
	})
}

func TestFreeWindows_BookingsSubtracted(t *testing.T) {
	repo := newFakeRepo()
	repo.hours = mondayNineToSix()
	repo.bookings = []models.Booking{
		{ID: 1, WalkerID: 1, LocationID: 1, Status: "confirmed",
			StartTime: at(9, 0), EndTime: at(10, 0)},
		{ID: 2, WalkerID: 1, LocationID: 1, Status: "cancelled",
			StartTime: at(14, 0), EndTime: at(15, 0)},
	}

	days, err := NewResolver(repo).FreeWindows(context.Background(), 1, day, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The cancelled booking does not occupy time.
	sameIntervals(t, days[0].Windows, []Interval{
		iv(8, 0, 9, 0),
		iv(10, 0, 18, 0),
	})
}

func TestFreeWindows_DisabledWeekdayIsEmpty(t *testing.T) {
	repo := newFakeRepo()
	repo.hours = []models.WorkingHours{
		{WalkerID: 1, Weekday: monday, Active: false, StartTime: "08:00", EndTime: "18:00"},
	}

	days, err := NewResolver(repo).FreeWindows(context.Background(), 1, day, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days[0].Windows) != 0 {
		t.Fatalf("expected no windows, got %v", days[0].Windows)
	}
}

func TestFreeWindows_InvalidRange(t *testing.T) {
	repo := newFakeRepo()
	_, err := NewResolver(repo).FreeWindows(context.Background(), 1, day, day.AddDate(0, 0, -1))
	if !httperr.IsBusiness(err, "invalid_range") {
		t.Fatalf("expected invalid_range, got %v", err)
	}
}

func TestFreeWindows_Deterministic(t *testing.T) {
	repo := newFakeRepo()
	repo.hours = mondayNineToSix()
	repo.blocks = []models.Block{
		{WalkerID: 1, StartTime: at(10, 0), EndTime: at(11, 0)},
		{WalkerID: 1, StartTime: at(10, 30), EndTime: at(11, 30)},
	}

	r := NewResolver(repo)
	first, err := r.FreeWindows(context.Background(), 1, day, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := r.FreeWindows(context.Background(), 1, day, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sameIntervals(t, second[0].Windows, first[0].Windows)
}

func TestFreeWindows_WeeklyRecurrence(t *testing.T) {
	repo := newFakeRepo()
	repo.hours = []models.WorkingHours{
		{WalkerID: 1, Weekday: monday, Active: true, StartTime: "08:00", EndTime: "18:00"},
		{WalkerID: 1, Weekday: 2, Active: true, StartTime: "08:00", EndTime: "18:00"},
	}

	// Weekly block anchored on a previous Monday 12:00..13:00.
	anchor := day.AddDate(0, 0, -7)
	repo.blocks = []models.Block{
		{
			WalkerID:   1,
			StartTime:  anchor.Add(12 * time.Hour),
			EndTime:    anchor.Add(13 * time.Hour),
			Recurrence: models.RecurrenceWeekly,
		},
	}

	days, err := NewResolver(repo).FreeWindows(context.Background(), 1, day, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Monday carries the projected block, Tuesday does not.
	sameIntervals(t, days[0].Windows, []Interval{
		iv(8, 0, 12, 0),
		iv(13, 0, 18, 0),
	})
	tue := day.AddDate(0, 0, 1)
	sameIntervals(t, days[1].Windows, []Interval{
		{Start: tue.Add(8 * time.Hour), End: tue.Add(18 * time.Hour)},
	})
}

func TestFreeWindows_DailyRecurrenceStartsAtAnchor(t *testing.T) {
	repo := newFakeRepo()
	repo.hours = mondayNineToSix()

	// Daily block anchored the day AFTER: it must not project backwards.
	anchor := day.AddDate(0, 0, 1)
	repo.blocks = []models.Block{
		{
			WalkerID:   1,
			StartTime:  anchor.Add(12 * time.Hour),
			EndTime:    anchor.Add(13 * time.Hour),
			Recurrence: models.RecurrenceDaily,
		},
	}

	days, err := NewResolver(repo).FreeWindows(context.Background(), 1, day, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sameIntervals(t, days[0].Windows, []Interval{iv(8, 0, 18, 0)})
}
