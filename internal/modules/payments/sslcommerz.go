package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"imeigate.com/app/internal/config"
)

const maxInitResponseBytes = 1 << 20

// SSLCommerz is the hosted-checkout provider: init registers the
// transaction and yields a GatewayPageURL to redirect the user to, the
// IPN later posts form-encoded fields (tran_id, status, val_id, ...)
// back to our webhook.
type SSLCommerz struct {
	cfg    config.SSLCommerzConfig
	client *http.Client
}

func NewSSLCommerz(cfg config.SSLCommerzConfig) *SSLCommerz {
	if cfg.APIURL == "" {
		cfg.APIURL = "https://sandbox.sslcommerz.com/gwprocess/v4/api.php"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &SSLCommerz{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (s *SSLCommerz) Name() string { return "sslcommerz" }

func (s *SSLCommerz) InitPayment(ctx context.Context, req InitRequest) (InitResponse, error) {
	form := url.Values{}
	form.Set("store_id", s.cfg.StoreID)
	form.Set("store_passwd", s.cfg.StorePassword)
	form.Set("total_amount", req.Amount.StringFixed(2))
	form.Set("currency", "BDT")
	form.Set("tran_id", req.PaymentID)
	form.Set("success_url", req.ReturnURLs.Success)
	form.Set("fail_url", req.ReturnURLs.Fail)
	form.Set("cancel_url", req.ReturnURLs.Cancel)
	form.Set("ipn_url", req.NotifyURL)

	// customer fields, with the provider's mandatory-field fallbacks
	form.Set("cus_name", orDefault(req.Customer.Name, req.Customer.Email))
	form.Set("cus_email", req.Customer.Email)
	form.Set("cus_add1", orDefault(req.Customer.Address, "Not Provided"))
	form.Set("cus_city", orDefault(req.Customer.City, "Dhaka"))
	form.Set("cus_country", orDefault(req.Customer.Country, "Bangladesh"))
	form.Set("cus_phone", orDefault(req.Customer.Phone, "01700000000"))

	// product metadata
	form.Set("shipping_method", "NO")
	form.Set("product_name", orDefault(req.ProductName, "Device Authorization"))
	form.Set("product_category", "Electronics")
	form.Set("product_profile", "non-physical-goods")
	form.Set("value_a", "device_id:"+req.DeviceID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIURL, strings.NewReader(form.Encode()))
	if err != nil {
		return InitResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return InitResponse{}, fmt.Errorf("sslcommerz init: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return InitResponse{}, fmt.Errorf("sslcommerz init: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxInitResponseBytes))
	if err != nil {
		return InitResponse{}, fmt.Errorf("sslcommerz init: read body: %w", err)
	}

	var parsed struct {
		Status         string `json:"status"`
		GatewayPageURL string `json:"GatewayPageURL"`
		FailedReason   string `json:"failedreason"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return InitResponse{}, fmt.Errorf("sslcommerz init: malformed response: %w", err)
	}

	return InitResponse{
		Status:         parsed.Status,
		GatewayPageURL: parsed.GatewayPageURL,
		FailedReason:   parsed.FailedReason,
		Raw:            json.RawMessage(body),
	}, nil
}

func (s *SSLCommerz) VerifyPayload(form url.Values) Callback {
	return Callback{
		TranID: form.Get("tran_id"),
		Status: form.Get("status"),
		ValID:  form.Get("val_id"),
		Raw:    form,
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
