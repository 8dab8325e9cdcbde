package payments

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// Customer metadata forwarded to the gateway's hosted checkout.
type Customer struct {
	Name    string
	Email   string
	Phone   string
	Address string
	City    string
	Country string
}

type ReturnURLs struct {
	Success string
	Fail    string
	Cancel  string
}

type InitRequest struct {
	PaymentID   string // doubles as the provider tran_id
	DeviceID    string
	ProductName string
	Amount      decimal.Decimal
	Customer    Customer
	ReturnURLs  ReturnURLs
	NotifyURL   string // IPN callback the provider will POST to
}

// InitResponse is the provider's raw init answer. The adapter does not
// interpret it; callers check Initialized for the success marker.
type InitResponse struct {
	Status         string
	GatewayPageURL string
	FailedReason   string
	Raw            json.RawMessage
}

func (r InitResponse) Initialized() bool {
	return strings.EqualFold(r.Status, "SUCCESS") && r.GatewayPageURL != ""
}

// Callback is the canonical shape of an inbound provider notification.
// Missing fields stay empty rather than erroring.
type Callback struct {
	TranID string
	Status string
	ValID  string
	Raw    url.Values
}

type Provider interface {
	Name() string

	// InitPayment registers the transaction with the provider. One outbound
	// call with a bounded timeout, no internal retries.
	InitPayment(ctx context.Context, req InitRequest) (InitResponse, error)

	// VerifyPayload normalizes an inbound callback. Pure, no network.
	VerifyPayload(form url.Values) Callback
}
