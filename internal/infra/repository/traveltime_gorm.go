package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/waggytrails/walker-scheduler/internal/models"
	"github.com/waggytrails/walker-scheduler/internal/traveltime"
)

type TravelTimeGormStore struct {
	db *gorm.DB
}

func NewTravelTimeGormStore(db *gorm.DB) *TravelTimeGormStore {
	return &TravelTimeGormStore{db: db}
}

func (s *TravelTimeGormStore) GetEntry(
	ctx context.Context,
	fromID uint,
	toID uint,
) (*models.TravelTimeEntry, error) {

	var entry models.TravelTimeEntry
	err := s.db.WithContext(ctx).
		Where("from_location_id = ? AND to_location_id = ?", fromID, toID).
		First(&entry).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *TravelTimeGormStore) PutEntry(
	ctx context.Context,
	entry *models.TravelTimeEntry,
) error {

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "from_location_id"},
				{Name: "to_location_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"travel_seconds",
				"distance_meters",
				"computed_at",
			}),
		}).
		Create(entry).Error
}

func (s *TravelTimeGormStore) GetLocation(
	ctx context.Context,
	id uint,
) (*models.Location, error) {

	var loc models.Location
	if err := s.db.WithContext(ctx).First(&loc, id).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

// Compile-time check
var _ traveltime.Store = (*TravelTimeGormStore)(nil)
