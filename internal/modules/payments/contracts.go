package payments

import (
	"context"

	"imeigate.com/app/internal/modules/devices"
)

// Store is the narrow persistence contract the payment core runs on.
// Inside Transact the ...ForUpdate reads take row locks, so the decisive
// status check and write happen under the same lock; that is what closes
// the race between two concurrent callbacks for the same payment.
type Store interface {
	Transact(ctx context.Context, fn func(tx Store) error) error

	DeviceForUpdate(ctx context.Context, deviceID string) (*devices.Device, error)
	MarkDeviceAuthorized(ctx context.Context, deviceID string) error
	EnsureAuthorizedIMEI(ctx context.Context, imei string) error

	CreatePayment(ctx context.Context, p *Payment) error
	PaymentForUpdate(ctx context.Context, paymentID string) (*Payment, error)
	UpdatePayment(ctx context.Context, paymentID string, updates map[string]any) error
	ListPayments(ctx context.Context, in ListParams) ([]Payment, int64, error)

	RecordCallback(ctx context.Context, ev *ProviderCallback) error
}

type ListParams struct {
	UserID   string // empty = all users (staff)
	DeviceID string // optional filter
	Status   string // optional filter
	Page     int
	PageSize int
}
