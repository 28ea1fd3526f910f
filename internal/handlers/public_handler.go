package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/waggytrails/walker-scheduler/internal/domain/schedule"
	"github.com/waggytrails/walker-scheduler/internal/httperr"
	"github.com/waggytrails/walker-scheduler/internal/models"
	"github.com/waggytrails/walker-scheduler/internal/usecase/booking"
	"github.com/waggytrails/walker-scheduler/internal/validators"
)

// ======================================================
// HANDLER
// ======================================================

// PublicHandler serves the customer-facing, slug-scoped flow. It reuses the
// same commit use case as the private API, minus the walker-only overrides.
type PublicHandler struct {
	db     *gorm.DB
	repo   schedule.Repository
	commit *booking.CommitBooking
	slots  *booking.GetSlots
}

func NewPublicHandler(
	db *gorm.DB,
	repo schedule.Repository,
	commit *booking.CommitBooking,
	slots *booking.GetSlots,
) *PublicHandler {
	return &PublicHandler{
		db:     db,
		repo:   repo,
		commit: commit,
		slots:  slots,
	}
}

// ======================================================
// DTOs
// ======================================================

type PublicLocationInput struct {
	Label     string  `json:"label"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type PublicCreateBookingRequest struct {
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerPhone string `json:"customer_phone" binding:"required"`
	CustomerEmail string `json:"customer_email"`
	PetName       string `json:"pet_name"`

	ServiceID uint `json:"service_id" binding:"required"`

	// Either an existing location id or an inline address to register.
	LocationID uint                 `json:"location_id"`
	Location   *PublicLocationInput `json:"location,omitempty"`

	Date  string `json:"date" binding:"required"` // YYYY-MM-DD
	Time  string `json:"time" binding:"required"` // HH:mm
	Notes string `json:"notes"`
}

// ======================================================
// SERVICES
// ======================================================

func (h *PublicHandler) ListServices(c *gin.Context) {
	slug := c.Param("slug")

	walker, err := h.repo.GetWalkerBySlug(c.Request.Context(), slug)
	if err != nil {
		httperr.NotFound(c, "walker_not_found", "Walker not found.")
		return
	}

	var services []models.WalkService
	if err := h.db.
		Where("walker_id = ? AND active = true", walker.ID).
		Order("id ASC").
		Find(&services).Error; err != nil {

		httperr.Internal(c, "failed_to_list_services", "Could not list services.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"walker": gin.H{
			"id":       walker.ID,
			"name":     walker.Name,
			"slug":     walker.Slug,
			"bio":      walker.Bio,
			"timezone": walker.Timezone,
		},
		"services": services,
	})
}

// ======================================================
// AVAILABILITY
// ======================================================

func (h *PublicHandler) Availability(c *gin.Context) {
	slug := c.Param("slug")

	walker, err := h.repo.GetWalkerBySlug(c.Request.Context(), slug)
	if err != nil {
		httperr.NotFound(c, "walker_not_found", "Walker not found.")
		return
	}

	serviceID, err1 := strconv.ParseUint(c.Query("service_id"), 10, 64)
	locationID, err2 := strconv.ParseUint(c.Query("location_id"), 10, 64)
	if err1 != nil || err2 != nil {
		httperr.BadRequest(c, "missing_params", "service_id and location_id are required.")
		return
	}

	date, err := parseDateForWalker(walker, c.Query("date"))
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Use YYYY-MM-DD.")
		return
	}

	days, err := h.slots.Execute(c.Request.Context(), booking.GetSlotsInput{
		WalkerID:   walker.ID,
		ServiceID:  uint(serviceID),
		LocationID: uint(locationID),
		From:       date,
		To:         date,
	})
	if err != nil {
		mapBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date": c.Query("date"),
		"days": days,
	})
}

// ======================================================
// CREATE BOOKING
// ======================================================

func (h *PublicHandler) CreateBooking(c *gin.Context) {
	slug := c.Param("slug")

	walker, err := h.repo.GetWalkerBySlug(c.Request.Context(), slug)
	if err != nil {
		httperr.NotFound(c, "walker_not_found", "Walker not found.")
		return
	}

	var req PublicCreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid payload.")
		return
	}

	if !validators.IsPhoneValid(req.CustomerPhone) {
		httperr.BadRequest(c, "invalid_phone", "Phone number does not look valid.")
		return
	}

	locationID := req.LocationID
	if locationID == 0 {
		if req.Location == nil {
			httperr.BadRequest(c, "missing_location", "Send location_id or an inline location.")
			return
		}
		loc, err := h.registerCustomerLocation(c, &req)
		if err != nil {
			return // response already written
		}
		locationID = loc.ID
	}

	b, err := h.commit.Execute(c.Request.Context(), booking.CommitBookingInput{
		WalkerID:      walker.ID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		PetName:       req.PetName,
		ServiceID:     req.ServiceID,
		LocationID:    locationID,
		Date:          req.Date,
		Time:          req.Time,
		Notes:         req.Notes,
	})
	if err != nil {
		mapBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

// registerCustomerLocation resolves the customer first so the new location
// row carries the right owner, reusing an existing row at the same
// coordinates rather than stacking duplicates.
func (h *PublicHandler) registerCustomerLocation(
	c *gin.Context,
	req *PublicCreateBookingRequest,
) (*models.Location, error) {

	in := req.Location
	if in.Latitude < -90 || in.Latitude > 90 || in.Longitude < -180 || in.Longitude > 180 {
		httperr.BadRequest(c, "invalid_coordinates", "Coordinates out of range.")
		return nil, gorm.ErrInvalidData
	}

	customer, err := h.repo.GetOrCreateCustomer(
		c.Request.Context(),
		req.CustomerName,
		req.CustomerPhone,
		req.CustomerEmail,
	)
	if err != nil {
		httperr.Internal(c, "failed_to_create_customer", "Could not register customer.")
		return nil, err
	}

	var existing models.Location
	err = h.db.
		Where(
			"owner_type = ? AND owner_id = ? AND latitude = ? AND longitude = ?",
			models.LocationOwnerCustomer, customer.ID, in.Latitude, in.Longitude,
		).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}

	loc := models.Location{
		OwnerType: models.LocationOwnerCustomer,
		OwnerID:   customer.ID,
		Label:     in.Label,
		Address:   in.Address,
		City:      in.City,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
	}
	if err := h.db.Create(&loc).Error; err != nil {
		httperr.Internal(c, "failed_to_create_location", "Could not register location.")
		return nil, err
	}

	return &loc, nil
}
