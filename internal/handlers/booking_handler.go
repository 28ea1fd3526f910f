package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/waggytrails/walker-scheduler/internal/domain/schedule"
	"github.com/waggytrails/walker-scheduler/internal/httperr"
	"github.com/waggytrails/walker-scheduler/internal/httpresp"
	"github.com/waggytrails/walker-scheduler/internal/middleware"
	"github.com/waggytrails/walker-scheduler/internal/traveltime"
	"github.com/waggytrails/walker-scheduler/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	repo     schedule.Repository
	commit   *booking.CommitBooking
	slots    *booking.GetSlots
	list     *booking.ListBookingsByDate
	confirm  *booking.ConfirmBooking
	cancel   *booking.CancelBooking
	start    *booking.StartBooking
	complete *booking.CompleteBooking
	noShow   *booking.MarkNoShow
}

func NewBookingHandler(
	repo schedule.Repository,
	commit *booking.CommitBooking,
	slots *booking.GetSlots,
	list *booking.ListBookingsByDate,
	confirm *booking.ConfirmBooking,
	cancel *booking.CancelBooking,
	start *booking.StartBooking,
	complete *booking.CompleteBooking,
	noShow *booking.MarkNoShow,
) *BookingHandler {
	return &BookingHandler{
		repo:     repo,
		commit:   commit,
		slots:    slots,
		list:     list,
		confirm:  confirm,
		cancel:   cancel,
		start:    start,
		complete: complete,
		noShow:   noShow,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerPhone string `json:"customer_phone" binding:"required"`
	CustomerEmail string `json:"customer_email"`
	PetName       string `json:"pet_name"`

	ServiceID  uint `json:"service_id" binding:"required"`
	LocationID uint `json:"location_id" binding:"required"`

	Date  string `json:"date" binding:"required"`
	Time  string `json:"time" binding:"required"`
	Notes string `json:"notes"`

	// Walker-only overrides; the public flow never carries them.
	Tight   bool `json:"tight"`
	Confirm bool `json:"confirm"`
}

// ======================================================
// ERROR MAPPING
// ======================================================

// mapBookingError translates engine failures into HTTP responses. Conflicts
// and a busy walker lock are 409 (the client may retry or pick another
// slot); an unreachable routing backend is 503.
func mapBookingError(c *gin.Context, err error) {
	var conflict *schedule.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, gin.H{
			"error":    "booking_conflict",
			"conflict": conflict,
		})
		return
	}

	if errors.Is(err, traveltime.ErrUnavailable) {
		httperr.ServiceUnavailable(c, "travel_unavailable", "Travel times are temporarily unavailable.")
		return
	}

	var be httperr.BusinessError
	if errors.As(err, &be) {
		switch be.Code {
		case "walker_busy":
			httperr.Conflict(c, "walker_busy", "Another booking is being committed; retry.")
		case "walker_not_found", "service_not_found", "location_not_found", "booking_not_found":
			httperr.NotFound(c, be.Code, "Not found.")
		default:
			httperr.BadRequest(c, be.Code, "Request rejected.")
		}
		return
	}

	httperr.Internal(c, "booking_failed", "Unexpected error.")
}

// ======================================================
// CREATE
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	walkerID := c.MustGet(middleware.ContextWalkerID).(uint)

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid payload.")
		return
	}

	b, err := h.commit.Execute(c.Request.Context(), booking.CommitBookingInput{
		WalkerID:      walkerID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		PetName:       req.PetName,
		ServiceID:     req.ServiceID,
		LocationID:    req.LocationID,
		Date:          req.Date,
		Time:          req.Time,
		Notes:         req.Notes,
		Tight:         req.Tight,
		Confirm:       req.Confirm,
	})
	if err != nil {
		mapBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

// ======================================================
// SLOTS + FREE WINDOWS
// ======================================================

func (h *BookingHandler) Slots(c *gin.Context) {
	walkerID := c.MustGet(middleware.ContextWalkerID).(uint)

	serviceID, err1 := strconv.ParseUint(c.Query("service_id"), 10, 64)
	locationID, err2 := strconv.ParseUint(c.Query("location_id"), 10, 64)
	if err1 != nil || err2 != nil {
		httperr.BadRequest(c, "missing_params", "service_id and location_id are required.")
		return
	}

	walker, err := h.repo.GetWalkerByID(c.Request.Context(), walkerID)
	if err != nil {
		httperr.NotFound(c, "walker_not_found", "Not found.")
		return
	}

	from, err := parseDateForWalker(walker, c.Query("from"))
	if err != nil {
		httperr.BadRequest(c, "invalid_from", "Use YYYY-MM-DD.")
		return
	}
	to := from
	if toStr := c.Query("to"); toStr != "" {
		to, err = parseDateForWalker(walker, toStr)
		if err != nil {
			httperr.BadRequest(c, "invalid_to", "Use YYYY-MM-DD.")
			return
		}
	}

	days, err := h.slots.Execute(c.Request.Context(), booking.GetSlotsInput{
		WalkerID:   walkerID,
		ServiceID:  uint(serviceID),
		LocationID: uint(locationID),
		From:       from,
		To:         to,
	})
	if err != nil {
		mapBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"days": days})
}

func (h *BookingHandler) FreeWindows(c *gin.Context) {
	walkerID := c.MustGet(middleware.ContextWalkerID).(uint)

	walker, err := h.repo.GetWalkerByID(c.Request.Context(), walkerID)
	if err != nil {
		httperr.NotFound(c, "walker_not_found", "Not found.")
		return
	}

	from, err := parseDateForWalker(walker, c.Query("from"))
	if err != nil {
		httperr.BadRequest(c, "invalid_from", "Use YYYY-MM-DD.")
		return
	}
	to := from
	if toStr := c.Query("to"); toStr != "" {
		to, err = parseDateForWalker(walker, toStr)
		if err != nil {
			httperr.BadRequest(c, "invalid_to", "Use YYYY-MM-DD.")
			return
		}
	}

	days, err := schedule.NewResolver(h.repo).FreeWindows(c.Request.Context(), walkerID, from, to)
	if err != nil {
		mapBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"days": days})
}

// ======================================================
// LIST
// ======================================================

func (h *BookingHandler) ListByDate(c *gin.Context) {
	walkerID := c.MustGet(middleware.ContextWalkerID).(uint)

	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "Date is required.")
		return
	}

	walker, err := h.repo.GetWalkerByID(c.Request.Context(), walkerID)
	if err != nil {
		httperr.NotFound(c, "walker_not_found", "Not found.")
		return
	}

	date, err := parseDateForWalker(walker, dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Use YYYY-MM-DD.")
		return
	}

	items, err := h.list.Execute(c.Request.Context(), walkerID, date)
	if err != nil {
		mapBookingError(c, err)
		return
	}

	httpresp.List(c, items)
}

// ======================================================
// TRANSITIONS
// ======================================================

func (h *BookingHandler) bookingID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid booking id.")
		return 0, false
	}
	return uint(id), true
}

func (h *BookingHandler) Confirm(c *gin.Context) {
	walkerID := c.MustGet(middleware.ContextWalkerID).(uint)
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	b, err := h.confirm.Execute(c.Request.Context(), walkerID, id)
	if err != nil {
		mapBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	walkerID := c.MustGet(middleware.ContextWalkerID).(uint)
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	b, err := h.cancel.Execute(c.Request.Context(), walkerID, id)
	if err != nil {
		mapBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) Start(c *gin.Context) {
	walkerID := c.MustGet(middleware.ContextWalkerID).(uint)
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	b, err := h.start.Execute(c.Request.Context(), walkerID, id)
	if err != nil {
		mapBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) Complete(c *gin.Context) {
	walkerID := c.MustGet(middleware.ContextWalkerID).(uint)
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	b, err := h.complete.Execute(c.Request.Context(), walkerID, id)
	if err != nil {
		mapBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) NoShow(c *gin.Context) {
	walkerID := c.MustGet(middleware.ContextWalkerID).(uint)
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	b, err := h.noShow.Execute(c.Request.Context(), walkerID, id)
	if err != nil {
		mapBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
