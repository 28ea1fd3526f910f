package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/waggytrails/walker-scheduler/internal/domain/schedule"
	"github.com/waggytrails/walker-scheduler/internal/httperr"
	"github.com/waggytrails/walker-scheduler/internal/models"
)

// Advisory lock key space: (class, walker id). The class keeps walker
// locks from colliding with any other advisory-lock user of the database.
const walkerLockClass = 7401

const pgLockNotAvailable = "55P03"

var activeStatuses = []string{
	string(schedule.StatusPending),
	string(schedule.StatusConfirmed),
	string(schedule.StatusInProgress),
}

type ScheduleGormRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

func NewScheduleGormRepository(db *gorm.DB, lockTimeout time.Duration) *ScheduleGormRepository {
	return &ScheduleGormRepository{db: db, lockTimeout: lockTimeout}
}

// --------------------------------------------------
// Walker
// --------------------------------------------------

func (r *ScheduleGormRepository) GetWalkerByID(
	ctx context.Context,
	id uint,
) (*models.Walker, error) {

	var walker models.Walker
	if err := r.db.WithContext(ctx).First(&walker, id).Error; err != nil {
		return nil, err
	}
	return &walker, nil
}

func (r *ScheduleGormRepository) GetWalkerBySlug(
	ctx context.Context,
	slug string,
) (*models.Walker, error) {

	var walker models.Walker
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&walker).Error; err != nil {
		return nil, err
	}
	return &walker, nil
}

// --------------------------------------------------
// Service
// --------------------------------------------------

func (r *ScheduleGormRepository) GetService(
	ctx context.Context,
	walkerID uint,
	serviceID uint,
) (*models.WalkService, error) {

	var svc models.WalkService
	if err := r.db.WithContext(ctx).
		Where("id = ? AND walker_id = ?", serviceID, walkerID).
		First(&svc).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

// --------------------------------------------------
// Location
// --------------------------------------------------

func (r *ScheduleGormRepository) GetLocation(
	ctx context.Context,
	id uint,
) (*models.Location, error) {

	var loc models.Location
	if err := r.db.WithContext(ctx).First(&loc, id).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

// --------------------------------------------------
// Availability inputs
// --------------------------------------------------

func (r *ScheduleGormRepository) ListWorkingHours(
	ctx context.Context,
	walkerID uint,
) ([]models.WorkingHours, error) {

	var hours []models.WorkingHours
	if err := r.db.WithContext(ctx).
		Where("walker_id = ?", walkerID).
		Order("weekday ASC").
		Find(&hours).Error; err != nil {
		return nil, err
	}
	return hours, nil
}

// ListBlocksInRange returns blocks overlapping [start, end) plus every
// recurring block, since a recurring row projects onto days far beyond its
// stored timestamps.
func (r *ScheduleGormRepository) ListBlocksInRange(
	ctx context.Context,
	walkerID uint,
	start time.Time,
	end time.Time,
) ([]models.Block, error) {

	var blocks []models.Block
	if err := r.db.WithContext(ctx).
		Where(
			"walker_id = ? AND (recurrence <> '' OR (start_time < ? AND end_time > ?))",
			walkerID, end, start,
		).
		Order("start_time ASC").
		Find(&blocks).Error; err != nil {
		return nil, err
	}
	return blocks, nil
}

func (r *ScheduleGormRepository) ListActiveBookingsInRange(
	ctx context.Context,
	walkerID uint,
	start time.Time,
	end time.Time,
) ([]models.Booking, error) {

	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Where(
			"walker_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			walkerID, activeStatuses, end, start,
		).
		Order("start_time ASC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// --------------------------------------------------
// Customer / Pet
// --------------------------------------------------

func (r *ScheduleGormRepository) GetOrCreateCustomer(
	ctx context.Context,
	name string,
	phone string,
	email string,
) (*models.Customer, error) {

	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		First(&customer).Error

	if err == nil {
		return &customer, nil
	}

	customer = models.Customer{
		Name:  name,
		Phone: phone,
		Email: email,
	}

	if err := r.db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}

	return &customer, nil
}

func (r *ScheduleGormRepository) GetOrCreatePet(
	ctx context.Context,
	customerID uint,
	name string,
) (*models.Pet, error) {

	var pet models.Pet
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND name = ?", customerID, name).
		First(&pet).Error

	if err == nil {
		return &pet, nil
	}

	pet = models.Pet{
		CustomerID: customerID,
		Name:       name,
	}

	if err := r.db.WithContext(ctx).Create(&pet).Error; err != nil {
		return nil, err
	}

	return &pet, nil
}

// --------------------------------------------------
// Booking
// --------------------------------------------------

func (r *ScheduleGormRepository) CreateBooking(
	ctx context.Context,
	b *models.Booking,
) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *ScheduleGormRepository) GetBookingForWalker(
	ctx context.Context,
	bookingID uint,
	walkerID uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Where("id = ? AND walker_id = ?", bookingID, walkerID).
		First(&b).Error; err != nil {
		return nil, err
	}

	return &b, nil
}

func (r *ScheduleGormRepository) UpdateBooking(
	ctx context.Context,
	b *models.Booking,
) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *ScheduleGormRepository) ListBookingsForPeriod(
	ctx context.Context,
	walkerID uint,
	start time.Time,
	end time.Time,
) ([]models.Booking, error) {

	var bookings []models.Booking

	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Service").
		Preload("Pet").
		Preload("Location").
		Where(
			"walker_id = ? AND start_time >= ? AND start_time < ?",
			walkerID, start, end,
		).
		Order("start_time ASC").
		Find(&bookings).Error

	if err != nil {
		return nil, err
	}

	return bookings, nil
}

// --------------------------------------------------
// Commit serialization
// --------------------------------------------------

// WithWalkerLock serializes commit attempts per walker with a
// transactional advisory lock. Postgres releases the lock when the
// transaction ends, so an error, panic or cancelled context can never
// leave a walker locked. A lock wait beyond the configured timeout
// surfaces as the retryable walker_busy business error.
func (r *ScheduleGormRepository) WithWalkerLock(
	ctx context.Context,
	walkerID uint,
	fn func(tx schedule.Repository) error,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.lockTimeout > 0 {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}

		err := tx.Exec(
			"SELECT pg_advisory_xact_lock(?, ?)",
			walkerLockClass, int64(walkerID),
		).Error
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable {
				return httperr.ErrBusiness("walker_busy")
			}
			return err
		}

		return fn(NewScheduleGormRepository(tx, r.lockTimeout))
	})
}

// Compile-time check
var _ schedule.Repository = (*ScheduleGormRepository)(nil)
