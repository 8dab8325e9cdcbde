package payments

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Payment is one attempt to pay the authorization fee for one device.
// Its ID doubles as the provider-facing transaction reference (tran_id).
// Amount is fixed at creation; rows are never deleted, failed attempts
// stay behind as an audit trail.
type Payment struct {
	ID            string          `gorm:"type:char(36);primaryKey" json:"id"`
	UserID        string          `gorm:"type:char(36);not null;index:ix_payments_user_status,priority:1" json:"user_id"`
	DeviceID      string          `gorm:"type:char(36);not null;index:ix_payments_device_status,priority:1" json:"device_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status        string          `gorm:"type:varchar(10);not null;index:ix_payments_user_status,priority:2;index:ix_payments_device_status,priority:2" json:"status"`
	TransactionID *string         `gorm:"type:varchar(255);index:ix_payments_transaction_id" json:"transaction_id"`
	CreatedAt     time.Time       `gorm:"type:datetime(3);not null;index:ix_payments_created_at" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"type:datetime(3);not null" json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }

// ProviderCallback is an audit row for every routable IPN delivery.
// SSLCommerz IPNs carry no event id, so there is no dedupe key here;
// duplicate deliveries are absorbed by the payment status gate instead.
type ProviderCallback struct {
	ID          string         `gorm:"type:char(36);primaryKey"`
	Provider    string         `gorm:"type:varchar(64);not null;index:ix_provider_callbacks_provider"`
	TranID      *string        `gorm:"type:varchar(255);index:ix_provider_callbacks_tran_id"`
	Status      *string        `gorm:"type:varchar(64)"`
	ValID       *string        `gorm:"type:varchar(255)"`
	Outcome     string         `gorm:"type:varchar(32);not null"`
	PayloadJSON datatypes.JSON `gorm:"type:json;not null"`
	ReceivedAt  time.Time      `gorm:"type:datetime(3);not null"`
}

func (ProviderCallback) TableName() string { return "provider_callbacks" }
