package payments

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"imeigate.com/app/internal/modules/devices"
)

func seedPendingPayment(t *testing.T, st *memStore, imei string) (*devices.Device, *Payment) {
	t.Helper()

	d := &devices.Device{
		ID:      "d1",
		OwnerID: "u1",
		Name:    "Pixel 8",
		Price:   decimal.NewNullDecimal(decimal.RequireFromString("1000.00")),
	}
	if imei != "" {
		d.IMEI = &imei
	}
	st.st.devices[d.ID] = d

	now := time.Now()
	p := &Payment{
		ID:        "pay-1",
		UserID:    "u1",
		DeviceID:  d.ID,
		Amount:    decimal.RequireFromString("150.00"),
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	st.st.payments[p.ID] = p
	return d, p
}

func validCallback(tranID, valID string) Callback {
	form := url.Values{}
	form.Set("tran_id", tranID)
	form.Set("status", "VALID")
	form.Set("val_id", valID)
	return Callback{TranID: tranID, Status: "VALID", ValID: valID, Raw: form}
}

func TestWebhookConfirmSuccess(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	seedPendingPayment(t, st, "123456789012345")
	svc := NewWebhookService(st)

	res, err := svc.Confirm(ctx, "sslcommerz", validCallback("pay-1", "V100"))
	require.NoError(t, err)
	require.Equal(t, OutcomeConfirmed, res.Outcome)
	require.Equal(t, "pay-1", res.PaymentID)

	p := st.st.payments["pay-1"]
	require.Equal(t, StatusSuccess, p.Status)
	require.NotNil(t, p.TransactionID)
	require.Equal(t, "V100", *p.TransactionID)

	require.True(t, st.st.devices["d1"].IsAuthorized)
	require.True(t, st.st.allowlist["123456789012345"])
	require.Equal(t, 1, st.st.authorizeCalls)
	require.Equal(t, 1, st.st.allowInserts)

	require.Len(t, st.st.callbacks, 1)
	require.Equal(t, string(OutcomeConfirmed), st.st.callbacks[0].Outcome)
}

func TestWebhookConfirmIdempotent(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	seedPendingPayment(t, st, "123456789012345")
	svc := NewWebhookService(st)

	_, err := svc.Confirm(ctx, "sslcommerz", validCallback("pay-1", "V100"))
	require.NoError(t, err)

	// same notification again, with a different val_id
	res, err := svc.Confirm(ctx, "sslcommerz", validCallback("pay-1", "V200"))
	require.NoError(t, err)
	require.Equal(t, OutcomeAlreadyProcessed, res.Outcome)

	// no re-run of side effects, no transaction_id overwrite
	p := st.st.payments["pay-1"]
	require.Equal(t, "V100", *p.TransactionID)
	require.Equal(t, 1, st.st.authorizeCalls)
	require.Equal(t, 1, st.st.allowInserts)
}

func TestWebhookConfirmConcurrentDeliveries(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	seedPendingPayment(t, st, "123456789012345")
	svc := NewWebhookService(st)

	const n = 8
	outcomes := make([]Outcome, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.Confirm(ctx, "sslcommerz", validCallback("pay-1", "V100"))
			require.NoError(t, err)
			outcomes[i] = res.Outcome
		}(i)
	}
	wg.Wait()

	confirmed := 0
	for _, o := range outcomes {
		if o == OutcomeConfirmed {
			confirmed++
		} else {
			require.Equal(t, OutcomeAlreadyProcessed, o)
		}
	}
	require.Equal(t, 1, confirmed)
	require.Equal(t, 1, st.st.authorizeCalls)
	require.Equal(t, 1, st.st.allowInserts)
	require.Equal(t, StatusSuccess, st.st.payments["pay-1"].Status)
}

func TestWebhookConfirmFailedStatus(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	seedPendingPayment(t, st, "123456789012345")
	svc := NewWebhookService(st)

	form := url.Values{}
	form.Set("tran_id", "pay-1")
	form.Set("status", "FAILED")
	res, err := svc.Confirm(ctx, "sslcommerz", Callback{TranID: "pay-1", Status: "FAILED", Raw: form})
	require.NoError(t, err)
	require.Equal(t, OutcomeFailed, res.Outcome)

	p := st.st.payments["pay-1"]
	require.Equal(t, StatusFailed, p.Status)
	require.NotNil(t, p.TransactionID)
	require.Equal(t, "pay-1", *p.TransactionID) // val_id absent, tran_id fallback

	// no device mutation on failure
	require.False(t, st.st.devices["d1"].IsAuthorized)
	require.Zero(t, st.st.authorizeCalls)
}

func TestWebhookConfirmTerminalStatesAbsorb(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	_, p := seedPendingPayment(t, st, "123456789012345")
	p.Status = StatusFailed
	svc := NewWebhookService(st)

	// a success callback after a terminal failure is acknowledged, not applied
	res, err := svc.Confirm(ctx, "sslcommerz", validCallback("pay-1", "V100"))
	require.NoError(t, err)
	require.Equal(t, OutcomeAlreadyProcessed, res.Outcome)
	require.Equal(t, StatusFailed, st.st.payments["pay-1"].Status)
	require.False(t, st.st.devices["d1"].IsAuthorized)
}

func TestWebhookConfirmUnknownReference(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	svc := NewWebhookService(st)

	_, err := svc.Confirm(ctx, "sslcommerz", validCallback("no-such-payment", "V1"))
	require.ErrorIs(t, err, ErrPaymentNotFound)
	require.Empty(t, st.st.payments)
}

func TestWebhookConfirmMissingReference(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	seedPendingPayment(t, st, "123456789012345")
	svc := NewWebhookService(st)

	_, err := svc.Confirm(ctx, "sslcommerz", Callback{Status: "VALID", Raw: url.Values{}})
	require.ErrorIs(t, err, ErrMissingTranID)
	require.Equal(t, StatusPending, st.st.payments["pay-1"].Status)
}

func TestWebhookConfirmDeviceWithoutIMEI(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	seedPendingPayment(t, st, "")
	svc := NewWebhookService(st)

	res, err := svc.Confirm(ctx, "sslcommerz", validCallback("pay-1", "V100"))
	require.NoError(t, err)
	require.Equal(t, OutcomeConfirmed, res.Outcome)

	require.True(t, st.st.devices["d1"].IsAuthorized)
	require.Empty(t, st.st.allowlist)
}
