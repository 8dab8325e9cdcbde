package devices

import (
	"time"

	"github.com/shopspring/decimal"
)

// Device is a user-registered handset awaiting (or holding) IMEI authorization.
// is_authorized is only ever flipped by the payment reconciler.
type Device struct {
	ID           string              `gorm:"type:char(36);primaryKey" json:"id"`
	OwnerID      string              `gorm:"type:char(36);not null;index:ix_devices_owner_id" json:"owner_id"`
	Name         string              `gorm:"type:varchar(100);not null" json:"name"`
	IMEI         *string             `gorm:"type:varchar(50);uniqueIndex:ux_devices_imei" json:"imei"`
	Type         *string             `gorm:"type:varchar(50)" json:"type"`
	OS           *string             `gorm:"type:varchar(50);column:os" json:"os"`
	Description  *string             `gorm:"type:text" json:"description"`
	Price        decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"price"`
	ImageKey     *string             `gorm:"type:varchar(255)" json:"-"`
	ImageURL     *string             `gorm:"type:varchar(255)" json:"image_url"`
	IsAuthorized bool                `gorm:"not null;default:false" json:"is_authorized"`
	CreatedAt    time.Time           `gorm:"type:datetime(3);not null;index:ix_devices_created_at" json:"created_at"`
	UpdatedAt    time.Time           `gorm:"type:datetime(3);not null" json:"updated_at"`
}

func (Device) TableName() string { return "devices" }
