package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"imeigate.com/app/internal/http/middleware"
	"imeigate.com/app/internal/modules/imeis"
	"imeigate.com/app/internal/shared/apperr"
)

// IMEIsHandler manages the allow-list. All routes are staff-only.
type IMEIsHandler struct {
	Svc *imeis.Service
}

func NewIMEIsHandler(svc *imeis.Service) *IMEIsHandler {
	return &IMEIsHandler{Svc: svc}
}

// GET /api/v1/imeis
func (h *IMEIsHandler) List(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context())
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	out := make([]gin.H, 0, len(items))
	for i := range items {
		out = append(out, imeiJSON(&items[i]))
	}
	c.JSON(http.StatusOK, gin.H{"imeis": out})
}

type createIMEIInput struct {
	IMEI string `json:"imei" binding:"required,len=15,numeric"`
}

// POST /api/v1/imeis
func (h *IMEIsHandler) Create(c *gin.Context) {
	var in createIMEIInput
	if err := bindJSON(c, &in); err != nil {
		middleware.Fail(c, err)
		return
	}

	entry, err := h.Svc.Create(c.Request.Context(), in.IMEI)
	if err != nil {
		if errors.Is(err, imeis.ErrExists) {
			middleware.Fail(c, apperr.ConflictErr(err.Error()))
			return
		}
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"imei": imeiJSON(entry)})
}

// DELETE /api/v1/imeis/:id
func (h *IMEIsHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		switch {
		case errors.Is(err, imeis.ErrNotFound):
			middleware.Fail(c, apperr.NotFoundErr(err.Error()))
		case errors.Is(err, imeis.ErrLinkedDevice):
			middleware.Fail(c, apperr.ConflictErr(err.Error()))
		default:
			middleware.Fail(c, apperr.Wrap(err))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "authorized IMEI removed"})
}

func imeiJSON(e *imeis.AuthorizedIMEI) gin.H {
	return gin.H{
		"id":         e.ID,
		"imei":       e.IMEI,
		"created_at": e.CreatedAt.Format(time.RFC3339),
	}
}
