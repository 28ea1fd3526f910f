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

type BlockHandler struct {
	db *gorm.DB
}

func NewBlockHandler(db *gorm.DB) *BlockHandler {
	return &BlockHandler{db: db}
}

// --------- Requests ---------

type CreateBlockRequest struct {
	StartTime  time.Time `json:"start_time" binding:"required"`
	EndTime    time.Time `json:"end_time" binding:"required"`
	Reason     string    `json:"reason"`
	Recurrence string    `json:"recurrence"`
	Source     string    `json:"source"`
}

// --------- Handlers ---------

func (h *BlockHandler) List(c *gin.Context) {
	walkerID := c.MustGet(middleware.ContextWalkerID).(uint)

	q := h.db.Where("walker_id = ?", walkerID)

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr != "" && toStr != "" {
		from, errF := time.Parse("2006-01-02", fromStr)
		to, errT := time.Parse("2006-01-02", toStr)
		if errF != nil || errT != nil {
			httperr.BadRequest(c, "invalid_range", "Use YYYY-MM-DD for from and to.")
			return
		}
		// Recurring blocks always match: they may project into any range.
		q = q.Where(
			"recurrence <> '' OR (start_time < ? AND end_time > ?)",
			to.AddDate(0, 0, 1), from,
		)
	}

	var blocks []models.Block
	if err := q.Order("start_time ASC").Find(&blocks).Error; err != nil {
		httperr.Internal(c, "failed_to_list_blocks", "Could not list blocks.")
		return
	}

	httpresp.List(c, blocks)
}

func (h *BlockHandler) Create(c *gin.Context) {
	walkerID := c.MustGet(middleware.ContextWalkerID).(uint)

	var req CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid payload.")
		return
	}

	if !req.EndTime.After(req.StartTime) {
		httperr.BadRequest(c, "end_before_start", "End must be after start.")
		return
	}

	switch req.Recurrence {
	case models.RecurrenceNone, models.RecurrenceDaily, models.RecurrenceWeekly:
	default:
		httperr.BadRequest(c, "invalid_recurrence", "Recurrence must be empty, daily or weekly.")
		return
	}

	source := req.Source
	switch source {
	case "":
		source = models.BlockSourceManual
	case models.BlockSourceManual, models.BlockSourceCalendar:
	default:
		httperr.BadRequest(c, "invalid_source", "Source must be manual or calendar.")
		return
	}

	block := models.Block{
		WalkerID:   walkerID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Reason:     req.Reason,
		Recurrence: req.Recurrence,
		Source:     source,
	}

	if err := h.db.Create(&block).Error; err != nil {
		httperr.Internal(c, "failed_to_create_block", "Could not create block.")
		return
	}

	c.JSON(http.StatusCreated, block)
}

func (h *BlockHandler) Delete(c *gin.Context) {
	walkerID := c.MustGet(middleware.ContextWalkerID).(uint)
	id := c.Param("id")

	var block models.Block
	if err := h.db.
		Where("id = ? AND walker_id = ?", id, walkerID).
		First(&block).Error; err != nil {

		httperr.NotFound(c, "block_not_found", "Block not found.")
		return
	}

	if err := h.db.Delete(&block).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_block", "Could not delete block.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
