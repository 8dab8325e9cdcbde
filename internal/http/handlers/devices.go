package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"imeigate.com/app/internal/http/middleware"
	"imeigate.com/app/internal/modules/devices"
	"imeigate.com/app/internal/shared/apperr"
)

const maxImageBytes = 5 << 20

type DevicesHandler struct {
	Svc *devices.Service
}

func NewDevicesHandler(svc *devices.Service) *DevicesHandler {
	return &DevicesHandler{Svc: svc}
}

func actorFrom(c *gin.Context) devices.Actor {
	u, _ := middleware.CurrentUser(c)
	return devices.Actor{ID: u.ID, Staff: u.IsStaff()}
}

// GET /api/v1/devices
func (h *DevicesHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	res, err := h.Svc.List(c.Request.Context(), devices.ListParams{
		Actor:    actorFrom(c),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	items := make([]gin.H, 0, len(res.Items))
	for i := range res.Items {
		items = append(items, deviceJSON(&res.Items[i]))
	}
	c.JSON(http.StatusOK, gin.H{"devices": items, "total": res.Total})
}

type createDeviceInput struct {
	Name        string  `json:"name" binding:"required,max=200"`
	IMEI        *string `json:"imei" binding:"omitempty,len=15,numeric"`
	Type        *string `json:"type" binding:"omitempty,max=50"`
	OS          *string `json:"os" binding:"omitempty,max=50"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Price       *string `json:"price" binding:"omitempty,max=20"`
}

// POST /api/v1/devices
func (h *DevicesHandler) Create(c *gin.Context) {
	var in createDeviceInput
	if err := bindJSON(c, &in); err != nil {
		middleware.Fail(c, err)
		return
	}

	u, _ := middleware.CurrentUser(c)
	d, err := h.Svc.Create(c.Request.Context(), devices.CreateInput{
		OwnerID:     u.ID,
		Name:        in.Name,
		IMEI:        in.IMEI,
		Type:        in.Type,
		OS:          in.OS,
		Description: in.Description,
		Price:       in.Price,
	})
	if err != nil {
		failDevice(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"device": deviceJSON(d)})
}

// GET /api/v1/devices/:id
func (h *DevicesHandler) Get(c *gin.Context) {
	d, err := h.Svc.Get(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		failDevice(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"device": deviceJSON(d)})
}

type updateDeviceInput struct {
	Name        *string `json:"name" binding:"omitempty,max=200"`
	IMEI        *string `json:"imei" binding:"omitempty,len=15,numeric"`
	Type        *string `json:"type" binding:"omitempty,max=50"`
	OS          *string `json:"os" binding:"omitempty,max=50"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Price       *string `json:"price" binding:"omitempty,max=20"`
}

// PATCH /api/v1/devices/:id
func (h *DevicesHandler) Update(c *gin.Context) {
	var in updateDeviceInput
	if err := bindJSON(c, &in); err != nil {
		middleware.Fail(c, err)
		return
	}

	d, err := h.Svc.Update(c.Request.Context(), c.Param("id"), actorFrom(c), devices.UpdateInput{
		Name:        in.Name,
		IMEI:        in.IMEI,
		Type:        in.Type,
		OS:          in.OS,
		Description: in.Description,
		Price:       in.Price,
	})
	if err != nil {
		failDevice(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"device": deviceJSON(d)})
}

// DELETE /api/v1/devices/:id
func (h *DevicesHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id"), actorFrom(c)); err != nil {
		failDevice(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "device deleted"})
}

// POST /api/v1/devices/:id/image (multipart, field "image")
func (h *DevicesHandler) UploadImage(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		middleware.Fail(c, apperr.InvalidErr("Image file is required.", map[string]string{"image": "This field is required."}))
		return
	}
	if fh.Size > maxImageBytes {
		middleware.Fail(c, apperr.InvalidErr("Image is too large (max 5 MB).", nil))
		return
	}

	f, err := fh.Open()
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	defer f.Close()

	d, err := h.Svc.AttachImage(c.Request.Context(), c.Param("id"), actorFrom(c), f, devices.ImageInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	})
	if err != nil {
		failDevice(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"device": deviceJSON(d)})
}

func failDevice(c *gin.Context, err error) {
	switch {
	case errors.Is(err, devices.ErrNotFound):
		middleware.Fail(c, apperr.NotFoundErr(err.Error()))
	case errors.Is(err, devices.ErrForbidden):
		middleware.Fail(c, apperr.ForbiddenErr(err.Error()))
	case errors.Is(err, devices.ErrIMEITaken):
		middleware.Fail(c, apperr.ConflictErr(err.Error()))
	case errors.Is(err, devices.ErrInvalidPrice):
		middleware.Fail(c, apperr.InvalidErr(err.Error(), map[string]string{"price": "Invalid value."}))
	case errors.Is(err, devices.ErrFrozenField):
		middleware.Fail(c, apperr.InvalidStateErr(err.Error()))
	default:
		middleware.Fail(c, apperr.Wrap(err))
	}
}

func deviceJSON(d *devices.Device) gin.H {
	var price *string
	if d.Price.Valid {
		v := d.Price.Decimal.StringFixed(2)
		price = &v
	}
	return gin.H{
		"id":            d.ID,
		"owner_id":      d.OwnerID,
		"name":          d.Name,
		"imei":          d.IMEI,
		"type":          d.Type,
		"os":            d.OS,
		"description":   d.Description,
		"price":         price,
		"image_url":     d.ImageURL,
		"is_authorized": d.IsAuthorized,
		"created_at":    d.CreatedAt.Format(time.RFC3339),
		"updated_at":    d.UpdatedAt.Format(time.RFC3339),
	}
}
