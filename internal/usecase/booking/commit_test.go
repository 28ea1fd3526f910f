package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/waggytrails/walker-scheduler/internal/domain/schedule"
	"github.com/waggytrails/walker-scheduler/internal/events"
	"github.com/waggytrails/walker-scheduler/internal/httperr"
	"github.com/waggytrails/walker-scheduler/internal/models"
)

// ======================================================
// FAKES
// ======================================================

// stubRepo serializes WithWalkerLock on lockMu, standing in for the
// advisory lock. stateMu guards the in-memory rows, since the commit path
// also reads them outside the lock.
type stubRepo struct {
	lockMu  sync.Mutex
	stateMu sync.Mutex

	walker   models.Walker
	service  models.WalkService
	hours    []models.WorkingHours
	bookings []models.Booking
	nextID   uint
}

func newStubRepo(day time.Time) *stubRepo {
	return &stubRepo{
		walker: models.Walker{
			ID:                1,
			Name:              "Jamie",
			Slug:              "jamie",
			Timezone:          "UTC",
			MinAdvanceMinutes: 120,
		},
		service: models.WalkService{
			ID: 1, WalkerID: 1, Name: "Standard walk",
			DurationMin: 30, Price: 25, Active: true,
		},
		hours: []models.WorkingHours{
			{
				WalkerID:  1,
				Weekday:   int(day.Weekday()),
				Active:    true,
				StartTime: "08:00",
				EndTime:   "18:00",
			},
		},
		nextID: 1,
	}
}

func (s *stubRepo) GetWalkerByID(ctx context.Context, id uint) (*models.Walker, error) {
	if id != s.walker.ID {
		return nil, gorm.ErrRecordNotFound
	}
	w := s.walker
	return &w, nil
}

func (s *stubRepo) GetWalkerBySlug(ctx context.Context, slug string) (*models.Walker, error) {
	if slug != s.walker.Slug {
		return nil, gorm.ErrRecordNotFound
	}
	w := s.walker
	return &w, nil
}

func (s *stubRepo) GetService(ctx context.Context, walkerID, serviceID uint) (*models.WalkService, error) {
	if serviceID != s.service.ID {
		return nil, gorm.ErrRecordNotFound
	}
	svc := s.service
	return &svc, nil
}

func (s *stubRepo) GetLocation(ctx context.Context, id uint) (*models.Location, error) {
	return &models.Location{ID: id}, nil
}

func (s *stubRepo) ListWorkingHours(ctx context.Context, walkerID uint) ([]models.WorkingHours, error) {
	return append([]models.WorkingHours(nil), s.hours...), nil
}

func (s *stubRepo) ListBlocksInRange(ctx context.Context, walkerID uint, start, end time.Time) ([]models.Block, error) {
	return nil, nil
}

func (s *stubRepo) ListActiveBookingsInRange(ctx context.Context, walkerID uint, start, end time.Time) ([]models.Booking, error) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	var out []models.Booking
	for _, b := range s.bookings {
		if schedule.IsActive(schedule.Status(b.Status)) &&
			b.StartTime.Before(end) && b.EndTime.After(start) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *stubRepo) GetOrCreateCustomer(ctx context.Context, name, phone, email string) (*models.Customer, error) {
	return &models.Customer{ID: 1, Name: name, Phone: phone, Email: email}, nil
}

func (s *stubRepo) GetOrCreatePet(ctx context.Context, customerID uint, name string) (*models.Pet, error) {
	return &models.Pet{ID: 1, CustomerID: customerID, Name: name}, nil
}

func (s *stubRepo) CreateBooking(ctx context.Context, b *models.Booking) error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	b.ID = s.nextID
	s.nextID++
	s.bookings = append(s.bookings, *b)
	return nil
}

func (s *stubRepo) GetBookingForWalker(ctx context.Context, bookingID, walkerID uint) (*models.Booking, error) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	for i := range s.bookings {
		if s.bookings[i].ID == bookingID {
			b := s.bookings[i]
			return &b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) UpdateBooking(ctx context.Context, b *models.Booking) error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	for i := range s.bookings {
		if s.bookings[i].ID == b.ID {
			s.bookings[i] = *b
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubRepo) ListBookingsForPeriod(ctx context.Context, walkerID uint, start, end time.Time) ([]models.Booking, error) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return append([]models.Booking(nil), s.bookings...), nil
}

func (s *stubRepo) WithWalkerLock(ctx context.Context, walkerID uint, fn func(tx schedule.Repository) error) error {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	return fn(s)
}

var _ schedule.Repository = (*stubRepo)(nil)

type stubTravel struct {
	seconds map[[2]uint]int
}

func (t *stubTravel) Travel(ctx context.Context, fromID, toID uint) (schedule.TravelEstimate, error) {
	if fromID == toID {
		return schedule.TravelEstimate{}, nil
	}
	s, ok := t.seconds[[2]uint{fromID, toID}]
	if !ok {
		return schedule.TravelEstimate{}, errors.New("unknown pair")
	}
	return schedule.TravelEstimate{Seconds: s}, nil
}

// ======================================================
// HELPERS
// ======================================================

// testDay is a walker-local midnight a week out, so the minimum-advance
// rule never interferes.
func testDay() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, 7)
}

func commitInput(day time.Time, clock string) CommitBookingInput {
	return CommitBookingInput{
		WalkerID:      1,
		CustomerName:  "Sam",
		CustomerPhone: "+15550100",
		PetName:       "Rex",
		ServiceID:     1,
		LocationID:    1,
		Date:          day.Format("2006-01-02"),
		Time:          clock,
	}
}

// ======================================================
// TESTS
// ======================================================

func TestCommitBooking_Success(t *testing.T) {
	day := testDay()
	repo := newStubRepo(day)
	uc := NewCommitBooking(repo, &stubTravel{}, events.NewDispatcher())

	b, err := uc.Execute(context.Background(), commitInput(day, "11:00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if b.Status != string(schedule.StatusPending) {
		t.Fatalf("expected pending, got %s", b.Status)
	}
	if b.Reference == "" {
		t.Fatal("expected a reference")
	}
	if b.DurationMin != 30 || b.Price != 25 {
		t.Fatalf("expected captured duration/price, got %d / %v", b.DurationMin, b.Price)
	}
	if !b.EndTime.Equal(b.StartTime.Add(30 * time.Minute)) {
		t.Fatalf("expected 30-minute booking, got %v..%v", b.StartTime, b.EndTime)
	}
	if b.PetID == nil {
		t.Fatal("expected pet attached")
	}
}

func TestCommitBooking_ConfirmFlag(t *testing.T) {
	day := testDay()
	repo := newStubRepo(day)
	uc := NewCommitBooking(repo, &stubTravel{}, events.NewDispatcher())

	in := commitInput(day, "11:00")
	in.Confirm = true

	b, err := uc.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Status != string(schedule.StatusConfirmed) {
		t.Fatalf("expected confirmed, got %s", b.Status)
	}
}

func TestCommitBooking_ConcurrentSameSlot(t *testing.T) {
	day := testDay()
	repo := newStubRepo(day)
	uc := NewCommitBooking(repo, &stubTravel{}, events.NewDispatcher())

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = uc.Execute(context.Background(), commitInput(day, "11:00"))
		}(i)
	}
	wg.Wait()

	var successes, overlaps int
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		var conflict *schedule.ConflictError
		if errors.As(err, &conflict) && conflict.Reason == schedule.ReasonOverlap {
			overlaps++
		}
	}

	if successes != 1 || overlaps != 1 {
		t.Fatalf("expected exactly one success and one overlap, got %d / %d (%v)",
			successes, overlaps, results)
	}
	if len(repo.bookings) != 1 {
		t.Fatalf("expected a single stored booking, got %d", len(repo.bookings))
	}
}

func TestCommitBooking_TravelInfeasible(t *testing.T) {
	day := testDay()
	repo := newStubRepo(day)

	// Existing walk at location 2 ends 10:50; getting to location 1 takes
	// 20 minutes, so an 11:00 start cannot work.
	repo.bookings = []models.Booking{
		{
			ID: 99, WalkerID: 1, LocationID: 2, Status: "confirmed",
			StartTime: day.Add(10 * time.Hour),
			EndTime:   day.Add(10*time.Hour + 50*time.Minute),
		},
	}
	repo.nextID = 100

	travel := &stubTravel{seconds: map[[2]uint]int{
		{1, 2}: 1200,
		{2, 1}: 1200,
	}}
	uc := NewCommitBooking(repo, travel, events.NewDispatcher())

	_, err := uc.Execute(context.Background(), commitInput(day, "11:00"))

	var conflict *schedule.ConflictError
	if !errors.As(err, &conflict) || conflict.Reason != schedule.ReasonTravelInfeasible {
		t.Fatalf("expected travel_infeasible, got %v", err)
	}
	if conflict.RequiredGapSec != 1200 || conflict.AvailableGapSec != 600 {
		t.Fatalf("expected required 1200 / available 600, got %d / %d",
			conflict.RequiredGapSec, conflict.AvailableGapSec)
	}
}

func TestCommitBooking_TightOverridesTravel(t *testing.T) {
	day := testDay()
	repo := newStubRepo(day)
	repo.bookings = []models.Booking{
		{
			ID: 99, WalkerID: 1, LocationID: 2, Status: "confirmed",
			StartTime: day.Add(10 * time.Hour),
			EndTime:   day.Add(10*time.Hour + 50*time.Minute),
		},
	}
	repo.nextID = 100

	travel := &stubTravel{seconds: map[[2]uint]int{
		{1, 2}: 1200,
		{2, 1}: 1200,
	}}
	uc := NewCommitBooking(repo, travel, events.NewDispatcher())

	in := commitInput(day, "11:00")
	in.Tight = true

	b, err := uc.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("expected tight commit to pass, got %v", err)
	}
	if !b.Tight {
		t.Fatal("expected tight flag recorded")
	}

	// Tight never overrides a genuine overlap.
	in2 := commitInput(day, "10:30")
	in2.Tight = true
	_, err = uc.Execute(context.Background(), in2)
	var conflict *schedule.ConflictError
	if !errors.As(err, &conflict) || conflict.Reason != schedule.ReasonOverlap {
		t.Fatalf("expected overlap, got %v", err)
	}
}

func TestCommitBooking_TooSoon(t *testing.T) {
	now := time.Now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	repo := newStubRepo(day)
	uc := NewCommitBooking(repo, &stubTravel{}, events.NewDispatcher())

	_, err := uc.Execute(context.Background(), commitInput(day, now.Add(30*time.Minute).Format("15:04")))
	if !httperr.IsBusiness(err, "too_soon") {
		t.Fatalf("expected too_soon, got %v", err)
	}
}

func TestCommitBooking_InvalidInputs(t *testing.T) {
	day := testDay()
	repo := newStubRepo(day)
	uc := NewCommitBooking(repo, &stubTravel{}, events.NewDispatcher())

	in := commitInput(day, "25:99")
	if _, err := uc.Execute(context.Background(), in); !httperr.IsBusiness(err, "invalid_date_or_time") {
		t.Fatalf("expected invalid_date_or_time, got %v", err)
	}

	in = commitInput(day, "11:00")
	in.ServiceID = 999
	if _, err := uc.Execute(context.Background(), in); !httperr.IsBusiness(err, "service_not_found") {
		t.Fatalf("expected service_not_found, got %v", err)
	}

	in = commitInput(day, "11:00")
	in.WalkerID = 999
	if _, err := uc.Execute(context.Background(), in); !httperr.IsBusiness(err, "walker_not_found") {
		t.Fatalf("expected walker_not_found, got %v", err)
	}
}

func TestCancelBooking_FreesSlotAndTransitions(t *testing.T) {
	day := testDay()
	repo := newStubRepo(day)
	dispatcher := events.NewDispatcher()
	commitUC := NewCommitBooking(repo, &stubTravel{}, dispatcher)
	cancelUC := NewCancelBooking(repo, dispatcher)

	b, err := commitUC.Execute(context.Background(), commitInput(day, "11:00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The slot is taken.
	if _, err := commitUC.Execute(context.Background(), commitInput(day, "11:00")); err == nil {
		t.Fatal("expected second commit to conflict")
	}

	cancelled, err := cancelUC.Execute(context.Background(), 1, b.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != string(schedule.StatusCancelled) {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}

	// The slot is bookable again.
	if _, err := commitUC.Execute(context.Background(), commitInput(day, "11:00")); err != nil {
		t.Fatalf("expected slot freed after cancel, got %v", err)
	}

	if _, err := cancelUC.Execute(context.Background(), 1, 12345); !httperr.IsBusiness(err, "booking_not_found") {
		t.Fatalf("expected booking_not_found, got %v", err)
	}
}
