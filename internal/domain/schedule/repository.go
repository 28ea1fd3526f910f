package schedule

import (
	"context"
	"time"

	"github.com/waggytrails/walker-scheduler/internal/models"
)

type Repository interface {
	// -------- Walker --------
	GetWalkerByID(
		ctx context.Context,
		id uint,
	) (*models.Walker, error)

	GetWalkerBySlug(
		ctx context.Context,
		slug string,
	) (*models.Walker, error)

	// -------- Service --------
	GetService(
		ctx context.Context,
		walkerID uint,
		serviceID uint,
	) (*models.WalkService, error)

	// -------- Location --------
	GetLocation(
		ctx context.Context,
		id uint,
	) (*models.Location, error)

	// -------- Availability inputs --------
	ListWorkingHours(
		ctx context.Context,
		walkerID uint,
	) ([]models.WorkingHours, error)

	ListBlocksInRange(
		ctx context.Context,
		walkerID uint,
		start time.Time,
		end time.Time,
	) ([]models.Block, error)

	ListActiveBookingsInRange(
		ctx context.Context,
		walkerID uint,
		start time.Time,
		end time.Time,
	) ([]models.Booking, error)

	// -------- Customer / Pet --------
	GetOrCreateCustomer(
		ctx context.Context,
		name string,
		phone string,
		email string,
	) (*models.Customer, error)

	GetOrCreatePet(
		ctx context.Context,
		customerID uint,
		name string,
	) (*models.Pet, error)

	// -------- Booking (create / state change) --------
	CreateBooking(
		ctx context.Context,
		b *models.Booking,
	) error

	GetBookingForWalker(
		ctx context.Context,
		bookingID uint,
		walkerID uint,
	) (*models.Booking, error)

	UpdateBooking(
		ctx context.Context,
		b *models.Booking,
	) error

	ListBookingsForPeriod(
		ctx context.Context,
		walkerID uint,
		start time.Time,
		end time.Time,
	) ([]models.Booking, error)

	// -------- Commit serialization --------
	// WithWalkerLock runs fn inside a transaction that holds the
	// walker-scoped advisory lock. The lock is released when the
	// transaction ends, on success and on error alike. fn receives a
	// repository bound to the transaction, so every read inside it sees
	// the latest committed state.
	WithWalkerLock(
		ctx context.Context,
		walkerID uint,
		fn func(tx Repository) error,
	) error
}
