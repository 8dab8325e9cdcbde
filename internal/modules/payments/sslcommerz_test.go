package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"imeigate.com/app/internal/config"
)

func sslcommerzFor(t *testing.T, srvURL string, timeout time.Duration) *SSLCommerz {
	t.Helper()
	return NewSSLCommerz(config.SSLCommerzConfig{
		StoreID:       "teststore",
		StorePassword: "testpass",
		APIURL:        srvURL,
		Timeout:       timeout,
	})
}

func initRequestFixture() InitRequest {
	return InitRequest{
		PaymentID:   "pay-1",
		DeviceID:    "dev-1",
		ProductName: "Pixel 8",
		Amount:      decimal.RequireFromString("150"),
		Customer: Customer{
			Name:    "Jamal Uddin",
			Email:   "jamal@example.com",
			Phone:   "01811111111",
			Address: "House 7, Road 2",
		},
		ReturnURLs: ReturnURLs{
			Success: "https://app.test/api/v1/payments/success",
			Fail:    "https://app.test/api/v1/payments/fail",
			Cancel:  "https://app.test/api/v1/payments/cancel",
		},
		NotifyURL: "https://app.test/api/v1/payments/webhook",
	}
}

func TestSSLCommerzInitPayment(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"SUCCESS","GatewayPageURL":"https://sandbox.sslcommerz.com/gw/pay-1"}`))
	}))
	defer srv.Close()

	adapter := sslcommerzFor(t, srv.URL, time.Second)
	resp, err := adapter.InitPayment(context.Background(), initRequestFixture())
	require.NoError(t, err)

	require.True(t, resp.Initialized())
	require.Equal(t, "https://sandbox.sslcommerz.com/gw/pay-1", resp.GatewayPageURL)
	require.NotEmpty(t, resp.Raw)

	require.Equal(t, "teststore", got.Get("store_id"))
	require.Equal(t, "testpass", got.Get("store_passwd"))
	require.Equal(t, "150.00", got.Get("total_amount"))
	require.Equal(t, "BDT", got.Get("currency"))
	require.Equal(t, "pay-1", got.Get("tran_id"))
	require.Equal(t, "https://app.test/api/v1/payments/webhook", got.Get("ipn_url"))
	require.Equal(t, "Jamal Uddin", got.Get("cus_name"))
	require.Equal(t, "jamal@example.com", got.Get("cus_email"))
	require.Equal(t, "Dhaka", got.Get("cus_city"))         // fallback
	require.Equal(t, "Bangladesh", got.Get("cus_country")) // fallback
	require.Equal(t, "NO", got.Get("shipping_method"))
	require.Equal(t, "Pixel 8", got.Get("product_name"))
	require.Equal(t, "non-physical-goods", got.Get("product_profile"))
	require.Equal(t, "device_id:dev-1", got.Get("value_a"))
}

func TestSSLCommerzInitPaymentFailedMarker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"FAILED","failedreason":"Store Credential Error"}`))
	}))
	defer srv.Close()

	adapter := sslcommerzFor(t, srv.URL, time.Second)
	resp, err := adapter.InitPayment(context.Background(), initRequestFixture())
	require.NoError(t, err) // transport succeeded; the caller interprets the marker
	require.False(t, resp.Initialized())
	require.Equal(t, "Store Credential Error", resp.FailedReason)
}

func TestSSLCommerzInitPaymentErrors(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		adapter := sslcommerzFor(t, srv.URL, time.Second)
		_, err := adapter.InitPayment(context.Background(), initRequestFixture())
		require.Error(t, err)
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>not json</html>"))
		}))
		defer srv.Close()

		adapter := sslcommerzFor(t, srv.URL, time.Second)
		_, err := adapter.InitPayment(context.Background(), initRequestFixture())
		require.Error(t, err)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
		}))
		defer srv.Close()

		adapter := sslcommerzFor(t, srv.URL, 50*time.Millisecond)
		_, err := adapter.InitPayment(context.Background(), initRequestFixture())
		require.Error(t, err)
	})
}

func TestSSLCommerzVerifyPayload(t *testing.T) {
	adapter := NewSSLCommerz(config.SSLCommerzConfig{StoreID: "s", StorePassword: "p"})

	form := url.Values{}
	form.Set("tran_id", "pay-1")
	form.Set("status", "VALID")
	form.Set("val_id", "V100")
	form.Set("amount", "150.00")

	cb := adapter.VerifyPayload(form)
	require.Equal(t, "pay-1", cb.TranID)
	require.Equal(t, "VALID", cb.Status)
	require.Equal(t, "V100", cb.ValID)
	require.Equal(t, "150.00", cb.Raw.Get("amount"))

	// missing fields come back empty, not as errors
	empty := adapter.VerifyPayload(url.Values{})
	require.Empty(t, empty.TranID)
	require.Empty(t, empty.Status)
	require.Empty(t, empty.ValID)
}
