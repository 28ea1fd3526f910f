package schedule

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/waggytrails/walker-scheduler/internal/models"
)

// fakeRepo backs resolver and slot tests with in-memory state. WithWalkerLock
// serializes on a mutex the way the real repository serializes on the
// advisory lock.
type fakeRepo struct {
	mu sync.Mutex

	walker   models.Walker
	services map[uint]models.WalkService
	hours    []models.WorkingHours
	blocks   []models.Block
	bookings []models.Booking
	nextID   uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		walker: models.Walker{
			ID:       1,
			Name:     "Jamie",
			Slug:     "jamie",
			Timezone: "UTC",
		},
		services: map[uint]models.WalkService{},
		nextID:   1,
	}
}

func (f *fakeRepo) GetWalkerByID(ctx context.Context, id uint) (*models.Walker, error) {
	if id != f.walker.ID {
		return nil, gorm.ErrRecordNotFound
	}
	w := f.walker
	return &w, nil
}

func (f *fakeRepo) GetWalkerBySlug(ctx context.Context, slug string) (*models.Walker, error) {
	if slug != f.walker.Slug {
		return nil, gorm.ErrRecordNotFound
	}
	w := f.walker
	return &w, nil
}

func (f *fakeRepo) GetService(ctx context.Context, walkerID, serviceID uint) (*models.WalkService, error) {
	svc, ok := f.services[serviceID]
	if !ok || svc.WalkerID != walkerID {
		return nil, gorm.ErrRecordNotFound
	}
	return &svc, nil
}

func (f *fakeRepo) GetLocation(ctx context.Context, id uint) (*models.Location, error) {
	return &models.Location{ID: id}, nil
}

func (f *fakeRepo) ListWorkingHours(ctx context.Context, walkerID uint) ([]models.WorkingHours, error) {
	return append([]models.WorkingHours(nil), f.hours...), nil
}

func (f *fakeRepo) ListBlocksInRange(ctx context.Context, walkerID uint, start, end time.Time) ([]models.Block, error) {
	var out []models.Block
	for _, b := range f.blocks {
		if b.Recurrence != "" || (b.StartTime.Before(end) && b.EndTime.After(start)) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListActiveBookingsInRange(ctx context.Context, walkerID uint, start, end time.Time) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if IsActive(Status(b.Status)) && b.StartTime.Before(end) && b.EndTime.After(start) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetOrCreateCustomer(ctx context.Context, name, phone, email string) (*models.Customer, error) {
	return &models.Customer{ID: 1, Name: name, Phone: phone, Email: email}, nil
}

func (f *fakeRepo) GetOrCreatePet(ctx context.Context, customerID uint, name string) (*models.Pet, error) {
	return &models.Pet{ID: 1, CustomerID: customerID, Name: name}, nil
}

func (f *fakeRepo) CreateBooking(ctx context.Context, b *models.Booking) error {
	b.ID = f.nextID
	f.nextID++
	f.bookings = append(f.bookings, *b)
	return nil
}

func (f *fakeRepo) GetBookingForWalker(ctx context.Context, bookingID, walkerID uint) (*models.Booking, error) {
	for i := range f.bookings {
		if f.bookings[i].ID == bookingID && f.bookings[i].WalkerID == walkerID {
			b := f.bookings[i]
			return &b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) UpdateBooking(ctx context.Context, b *models.Booking) error {
	for i := range f.bookings {
		if f.bookings[i].ID == b.ID {
			f.bookings[i] = *b
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepo) ListBookingsForPeriod(ctx context.Context, walkerID uint, start, end time.Time) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if !b.StartTime.Before(start) && b.StartTime.Before(end) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeRepo) WithWalkerLock(ctx context.Context, walkerID uint, fn func(tx Repository) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(f)
}

var _ Repository = (*fakeRepo)(nil)

// fakeTravel counts calls per pair, for asserting prefetch behavior.
type fakeTravel struct {
	mu      sync.Mutex
	seconds map[[2]uint]int
	err     error
	calls   map[[2]uint]int
}

func newFakeTravel(seconds map[[2]uint]int) *fakeTravel {
	return &fakeTravel{
		seconds: seconds,
		calls:   map[[2]uint]int{},
	}
}

func (f *fakeTravel) Travel(ctx context.Context, fromID, toID uint) (TravelEstimate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[[2]uint{fromID, toID}]++
	if f.err != nil {
		return TravelEstimate{}, f.err
	}
	if fromID == toID {
		return TravelEstimate{}, nil
	}
	s, ok := f.seconds[[2]uint{fromID, toID}]
	if !ok {
		return TravelEstimate{}, context.DeadlineExceeded
	}
	return TravelEstimate{Seconds: s}, nil
}
