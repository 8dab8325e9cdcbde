package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"imeigate.com/app/internal/modules/payments"
)

// WebhookConfirmer reconciles a verified provider callback.
type WebhookConfirmer interface {
	Confirm(ctx context.Context, providerName string, cb payments.Callback) (payments.ConfirmResult, error)
}

// PayloadVerifier normalizes the raw IPN form into a Callback.
type PayloadVerifier interface {
	Name() string
	VerifyPayload(form url.Values) payments.Callback
}

type WebhookHandler struct {
	Logger    *slog.Logger
	Provider  PayloadVerifier
	Confirmer WebhookConfirmer
}

func NewWebhookHandler(logger *slog.Logger, p PayloadVerifier, confirmer WebhookConfirmer) *WebhookHandler {
	return &WebhookHandler{Logger: logger, Provider: p, Confirmer: confirmer}
}

// POST /api/v1/payments/webhook
// SSLCommerz posts the IPN form-encoded. This endpoint bypasses token
// auth; the tran_id lookup is what ties the call to a real payment.
// Responses are written directly since the gateway retries on non-2xx.
func (h *WebhookHandler) Handle(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "malformed form body"})
		return
	}

	cb := h.Provider.VerifyPayload(c.Request.PostForm)

	res, err := h.Confirmer.Confirm(c.Request.Context(), h.Provider.Name(), cb)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrMissingTranID):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "tran_id missing"})
		case errors.Is(err, payments.ErrPaymentNotFound):
			// no payment to retry against; 404 stops the redelivery loop
			h.Logger.Warn("ipn for unknown payment", "tran_id", cb.TranID)
			c.JSON(http.StatusNotFound, gin.H{"detail": "payment not found"})
		default:
			// 500 so the gateway redelivers
			h.Logger.Error("ipn processing failed", "tran_id", cb.TranID, "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		}
		return
	}

	switch res.Outcome {
	case payments.OutcomeConfirmed:
		c.JSON(http.StatusOK, gin.H{"detail": "payment confirmed, device authorized"})
	case payments.OutcomeFailed:
		c.JSON(http.StatusOK, gin.H{"detail": "payment failed"})
	default:
		c.JSON(http.StatusOK, gin.H{"detail": "already processed"})
	}
}
