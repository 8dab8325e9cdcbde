package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"imeigate.com/app/internal/http/middleware"
	"imeigate.com/app/internal/modules/payments"
	"imeigate.com/app/internal/shared/apperr"
)

// PaymentCreator starts the hosted-checkout flow for a device.
type PaymentCreator interface {
	CreatePayment(ctx context.Context, in payments.CreateInput) (payments.CreateResult, error)
}

// PaymentLister queries payment history.
type PaymentLister interface {
	List(ctx context.Context, in payments.ListParams) ([]payments.Payment, int64, error)
}

type PaymentsHandler struct {
	Creator PaymentCreator
	Lister  PaymentLister
}

func NewPaymentsHandler(creator PaymentCreator, lister PaymentLister) *PaymentsHandler {
	return &PaymentsHandler{Creator: creator, Lister: lister}
}

type createPaymentInput struct {
	DeviceID string `json:"device_id" binding:"required"`
}

// POST /api/v1/payments
func (h *PaymentsHandler) Create(c *gin.Context) {
	var in createPaymentInput
	if err := bindJSON(c, &in); err != nil {
		middleware.Fail(c, err)
		return
	}

	u, _ := middleware.CurrentUser(c)
	res, err := h.Creator.CreatePayment(c.Request.Context(), payments.CreateInput{
		UserID:   u.ID,
		DeviceID: in.DeviceID,
		Customer: customerFrom(u),
	})
	if err != nil {
		failPayment(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"payment_id":  res.PaymentID,
		"amount":      res.Amount.StringFixed(2),
		"payment_url": res.PaymentURL,
	})
}

// GET /api/v1/payments
func (h *PaymentsHandler) List(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	in := payments.ListParams{
		DeviceID: c.Query("device_id"),
		Status:   c.Query("status"),
		Page:     intQuery(c, "page", 1),
		PageSize: intQuery(c, "page_size", 20),
	}
	// non-staff callers only ever see their own rows
	if !u.IsStaff() {
		in.UserID = u.ID
	} else if v := c.Query("user_id"); v != "" {
		in.UserID = v
	}

	items, total, err := h.Lister.List(c.Request.Context(), in)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	out := make([]gin.H, 0, len(items))
	for i := range items {
		out = append(out, paymentJSON(&items[i]))
	}
	c.JSON(http.StatusOK, gin.H{"payments": out, "total": total})
}

// The gateway redirects the customer's browser here after checkout.
// They carry no trusted state; the IPN is what settles the payment.

// GET|POST /api/v1/payments/success
func (h *PaymentsHandler) Success(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"detail": "payment successful"})
}

// GET|POST /api/v1/payments/fail
func (h *PaymentsHandler) Fail(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"detail": "payment failed"})
}

// GET|POST /api/v1/payments/cancel
func (h *PaymentsHandler) Cancel(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"detail": "payment canceled"})
}

func failPayment(c *gin.Context, err error) {
	var ge *payments.GatewayError
	switch {
	case errors.Is(err, payments.ErrDeviceNotFound):
		middleware.Fail(c, apperr.NotFoundErr(err.Error()))
	case errors.Is(err, payments.ErrDeviceAuthorized),
		errors.Is(err, payments.ErrPriceNotSet),
		errors.Is(err, payments.ErrNegativePrice):
		middleware.Fail(c, apperr.InvalidStateErr(err.Error()))
	case errors.As(err, &ge):
		middleware.Fail(c, apperr.BadGatewayErr("Failed to initialize payment.", err))
	default:
		middleware.Fail(c, apperr.Wrap(err))
	}
}

func customerFrom(u middleware.ContextUser) payments.Customer {
	name := ""
	if u.FirstName != nil {
		name = *u.FirstName
	}
	if u.LastName != nil {
		if name != "" {
			name += " "
		}
		name += *u.LastName
	}
	cust := payments.Customer{Name: name, Email: u.Email}
	if u.Phone != nil {
		cust.Phone = *u.Phone
	}
	if u.Address != nil {
		cust.Address = *u.Address
	}
	return cust
}

func paymentJSON(p *payments.Payment) gin.H {
	return gin.H{
		"id":             p.ID,
		"user_id":        p.UserID,
		"device_id":      p.DeviceID,
		"amount":         p.Amount.StringFixed(2),
		"status":         p.Status,
		"transaction_id": p.TransactionID,
		"created_at":     p.CreatedAt.Format(time.RFC3339),
		"updated_at":     p.UpdatedAt.Format(time.RFC3339),
	}
}

func intQuery(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 1 {
		return def
	}
	return n
}
