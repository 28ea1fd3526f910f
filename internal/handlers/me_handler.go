package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/waggytrails/walker-scheduler/internal/httperr"
	"github.com/waggytrails/walker-scheduler/internal/middleware"
	"github.com/waggytrails/walker-scheduler/internal/models"
	"github.com/waggytrails/walker-scheduler/internal/storage"
	"github.com/waggytrails/walker-scheduler/internal/timezone"
	"github.com/waggytrails/walker-scheduler/internal/validators"
)

type MeHandler struct {
	db     *gorm.DB
	photos *storage.PhotoStore
}

func NewMeHandler(db *gorm.DB, photos *storage.PhotoStore) *MeHandler {
	return &MeHandler{db: db, photos: photos}
}

type UpdateMeRequest struct {
	Name              *string `json:"name,omitempty"`
	Phone             *string `json:"phone,omitempty"`
	Bio               *string `json:"bio,omitempty"`
	Timezone          *string `json:"timezone,omitempty"`
	MinAdvanceMinutes *int    `json:"min_advance_minutes,omitempty"`
}

func (h *MeHandler) GetMe(c *gin.Context) {
	walkerID := c.MustGet(middleware.ContextWalkerID).(uint)

	var walker models.Walker
	if err := h.db.First(&walker, walkerID).Error; err != nil {
		httperr.Internal(c, "walker_not_found", "Could not load profile.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"walker":    walker,
		"photo_url": h.photos.PublicURL(walker.PhotoKey),
	})
}

func (h *MeHandler) UpdateMe(c *gin.Context) {
	walkerID := c.MustGet(middleware.ContextWalkerID).(uint)

	var walker models.Walker
	if err := h.db.First(&walker, walkerID).Error; err != nil {
		httperr.Internal(c, "walker_not_found", "Could not load profile.")
		return
	}

	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid payload.")
		return
	}

	if req.Name != nil {
		walker.Name = *req.Name
	}
	if req.Phone != nil {
		walker.Phone = validators.NormalizePhone(*req.Phone)
	}
	if req.Bio != nil {
		walker.Bio = *req.Bio
	}
	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			httperr.BadRequest(c, "invalid_timezone", "Unknown timezone.")
			return
		}
		walker.Timezone = *req.Timezone
	}
	if req.MinAdvanceMinutes != nil {
		if *req.MinAdvanceMinutes < 0 {
			httperr.BadRequest(c, "invalid_min_advance", "Minimum advance must not be negative.")
			return
		}
		walker.MinAdvanceMinutes = *req.MinAdvanceMinutes
	}

	if err := h.db.Save(&walker).Error; err != nil {
		httperr.Internal(c, "failed_to_update_walker", "Could not save profile.")
		return
	}

	c.JSON(http.StatusOK, walker)
}

func (h *MeHandler) UploadPhoto(c *gin.Context) {
	walkerID := c.MustGet(middleware.ContextWalkerID).(uint)

	if !h.photos.Enabled() {
		httperr.BadRequest(c, "photos_disabled", "Photo storage is not configured.")
		return
	}

	var walker models.Walker
	if err := h.db.First(&walker, walkerID).Error; err != nil {
		httperr.Internal(c, "walker_not_found", "Could not load profile.")
		return
	}

	file, _, err := c.Request.FormFile("photo")
	if err != nil {
		httperr.BadRequest(c, "missing_photo", "Send the image in the photo form field.")
		return
	}
	defer file.Close()

	key, err := h.photos.UploadWalkerPhoto(c.Request.Context(), walkerID, file)
	if err != nil {
		httperr.BadRequest(c, "invalid_photo", "Could not process the image.")
		return
	}

	walker.PhotoKey = key
	if err := h.db.Save(&walker).Error; err != nil {
		httperr.Internal(c, "failed_to_update_walker", "Could not save profile.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"photo_key": key,
		"photo_url": h.photos.PublicURL(key),
	})
}
