package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/waggytrails/walker-scheduler/internal/httperr"
	"github.com/waggytrails/walker-scheduler/internal/httpresp"
	"github.com/waggytrails/walker-scheduler/internal/middleware"
	"github.com/waggytrails/walker-scheduler/internal/models"
)

type LocationHandler struct {
	db *gorm.DB
}

func NewLocationHandler(db *gorm.DB) *LocationHandler {
	return &LocationHandler{db: db}
}

// --------- Requests ---------

type CreateLocationRequest struct {
	Label     string  `json:"label" binding:"required"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude" binding:"required"`
	Longitude float64 `json:"longitude" binding:"required"`
}

type UpdateLocationRequest struct {
	Label     *string  `json:"label,omitempty"`
	Address   *string  `json:"address,omitempty"`
	City      *string  `json:"city,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// --------- Handlers ---------

func (h *LocationHandler) List(c *gin.Context) {
	walkerID := c.MustGet(middleware.ContextWalkerID).(uint)

	var locations []models.Location
	if err := h.db.
		Where("owner_type = ? AND owner_id = ?", models.LocationOwnerWalker, walkerID).
		Order("id ASC").
		Find(&locations).Error; err != nil {

		httperr.Internal(c, "failed_to_list_locations", "Could not list locations.")
		return
	}

	httpresp.List(c, locations)
}

func (h *LocationHandler) Create(c *gin.Context) {
	walkerID := c.MustGet(middleware.ContextWalkerID).(uint)

	var req CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid payload.")
		return
	}

	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		httperr.BadRequest(c, "invalid_coordinates", "Coordinates out of range.")
		return
	}

	location := models.Location{
		OwnerType: models.LocationOwnerWalker,
		OwnerID:   walkerID,
		Label:     req.Label,
		Address:   req.Address,
		City:      req.City,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}

	if err := h.db.Create(&location).Error; err != nil {
		httperr.Internal(c, "failed_to_create_location", "Could not create location.")
		return
	}

	c.JSON(http.StatusCreated, location)
}

func (h *LocationHandler) Update(c *gin.Context) {
	walkerID := c.MustGet(middleware.ContextWalkerID).(uint)
	id := c.Param("id")

	var location models.Location
	if err := h.db.
		Where("id = ? AND owner_type = ? AND owner_id = ?", id, models.LocationOwnerWalker, walkerID).
		First(&location).Error; err != nil {

		httperr.NotFound(c, "location_not_found", "Location not found.")
		return
	}

	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid payload.")
		return
	}

	// Moving a location would silently invalidate every travel gap already
	// promised around it, so coordinates are frozen while future active
	// bookings reference the row.
	movesCoordinates := req.Latitude != nil || req.Longitude != nil
	if movesCoordinates {
		inUse, err := h.locationInUse(location.ID)
		if err != nil {
			httperr.Internal(c, "failed_to_check_location", "Could not check bookings.")
			return
		}
		if inUse {
			httperr.Conflict(c, "location_in_use", "Location has upcoming bookings; coordinates cannot change.")
			return
		}
	}

	if req.Label != nil {
		location.Label = *req.Label
	}
	if req.Address != nil {
		location.Address = *req.Address
	}
	if req.City != nil {
		location.City = *req.City
	}
	if req.Latitude != nil {
		location.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		location.Longitude = *req.Longitude
	}

	if err := h.db.Save(&location).Error; err != nil {
		httperr.Internal(c, "failed_to_update_location", "Could not save location.")
		return
	}

	if movesCoordinates {
		// Cached travel entries touching this location are stale now.
		h.db.Where(
			"from_location_id = ? OR to_location_id = ?",
			location.ID, location.ID,
		).Delete(&models.TravelTimeEntry{})
	}

	c.JSON(http.StatusOK, location)
}

func (h *LocationHandler) Delete(c *gin.Context) {
	walkerID := c.MustGet(middleware.ContextWalkerID).(uint)
	id := c.Param("id")

	var location models.Location
	if err := h.db.
		Where("id = ? AND owner_type = ? AND owner_id = ?", id, models.LocationOwnerWalker, walkerID).
		First(&location).Error; err != nil {

		httperr.NotFound(c, "location_not_found", "Location not found.")
		return
	}

	inUse, err := h.locationInUse(location.ID)
	if err != nil {
		httperr.Internal(c, "failed_to_check_location", "Could not check bookings.")
		return
	}
	if inUse {
		httperr.Conflict(c, "location_in_use", "Location has upcoming bookings.")
		return
	}

	if err := h.db.Delete(&location).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_location", "Could not delete location.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *LocationHandler) locationInUse(locationID uint) (bool, error) {
	var count int64
	err := h.db.
		Model(&models.Booking{}).
		Where(
			"location_id = ? AND end_time > ? AND status IN ?",
			locationID,
			time.Now(),
			[]string{"pending", "confirmed", "in_progress"},
		).
		Count(&count).Error
	return count > 0, err
}
