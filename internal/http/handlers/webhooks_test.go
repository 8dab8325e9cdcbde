package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"imeigate.com/app/internal/modules/payments"
)

type verifierStub struct{}

func (verifierStub) Name() string { return "sslcommerz" }

func (verifierStub) VerifyPayload(form url.Values) payments.Callback {
	return payments.Callback{
		TranID: form.Get("tran_id"),
		Status: form.Get("status"),
		ValID:  form.Get("val_id"),
		Raw:    form,
	}
}

type confirmerStub struct {
	res payments.ConfirmResult
	err error

	gotProvider string
	gotCallback payments.Callback
}

func (s *confirmerStub) Confirm(ctx context.Context, providerName string, cb payments.Callback) (payments.ConfirmResult, error) {
	s.gotProvider = providerName
	s.gotCallback = cb
	return s.res, s.err
}

func webhookRouter(confirmer *confirmerStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewWebhookHandler(slog.Default(), verifierStub{}, confirmer)
	r.POST("/api/v1/payments/webhook", h.Handle)
	return r
}

func postIPN(t *testing.T, r *gin.Engine, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookHandler(t *testing.T) {
	form := url.Values{}
	form.Set("tran_id", "pay-1")
	form.Set("status", "VALID")
	form.Set("val_id", "V100")

	var tests = []struct {
		name           string
		confirmer      *confirmerStub
		form           url.Values
		expectedStatus int
		expectedDetail string
	}{
		{
			name:           "confirmed",
			confirmer:      &confirmerStub{res: payments.ConfirmResult{Outcome: payments.OutcomeConfirmed, PaymentID: "pay-1"}},
			form:           form,
			expectedStatus: http.StatusOK,
			expectedDetail: "payment confirmed, device authorized",
		},
		{
			name:           "failed",
			confirmer:      &confirmerStub{res: payments.ConfirmResult{Outcome: payments.OutcomeFailed, PaymentID: "pay-1"}},
			form:           form,
			expectedStatus: http.StatusOK,
			expectedDetail: "payment failed",
		},
		{
			name:           "already processed",
			confirmer:      &confirmerStub{res: payments.ConfirmResult{Outcome: payments.OutcomeAlreadyProcessed, PaymentID: "pay-1"}},
			form:           form,
			expectedStatus: http.StatusOK,
			expectedDetail: "already processed",
		},
		{
			name:           "missing tran_id",
			confirmer:      &confirmerStub{err: payments.ErrMissingTranID},
			form:           url.Values{"status": {"VALID"}},
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "tran_id missing",
		},
		{
			name:           "unknown payment",
			confirmer:      &confirmerStub{err: payments.ErrPaymentNotFound},
			form:           form,
			expectedStatus: http.StatusNotFound,
			expectedDetail: "payment not found",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := webhookRouter(tt.confirmer)
			w := postIPN(t, r, tt.form)

			require.Equal(t, tt.expectedStatus, w.Code)
			require.Contains(t, w.Body.String(), tt.expectedDetail)
		})
	}
}

func TestWebhookHandlerPassesVerifiedCallback(t *testing.T) {
	confirmer := &confirmerStub{res: payments.ConfirmResult{Outcome: payments.OutcomeConfirmed}}
	r := webhookRouter(confirmer)

	form := url.Values{}
	form.Set("tran_id", "pay-9")
	form.Set("status", "valid")
	form.Set("val_id", "V9")
	form.Set("amount", "150.00")
	postIPN(t, r, form)

	require.Equal(t, "sslcommerz", confirmer.gotProvider)
	require.Equal(t, "pay-9", confirmer.gotCallback.TranID)
	require.Equal(t, "valid", confirmer.gotCallback.Status)
	require.Equal(t, "V9", confirmer.gotCallback.ValID)
	require.Equal(t, "150.00", confirmer.gotCallback.Raw.Get("amount"))
}
