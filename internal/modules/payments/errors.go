package payments

import (
	"errors"
	"fmt"
)

var (
	ErrDeviceNotFound   = errors.New("device not found or not owned by you")
	ErrDeviceAuthorized = errors.New("device is already authorized")
	ErrPriceNotSet      = errors.New("device price not set")
	ErrNegativePrice    = errors.New("device price is negative")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrMissingTranID    = errors.New("tran_id missing")
)

// GatewayError wraps any failure of the outbound init call: transport
// errors, timeouts, and responses without the expected success marker.
// The payment has already been durably marked failed when this surfaces.
type GatewayError struct {
	Reason string
	Err    error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway: %s: %v", e.Reason, e.Err)
	}
	return "gateway: " + e.Reason
}

func (e *GatewayError) Unwrap() error { return e.Err }
