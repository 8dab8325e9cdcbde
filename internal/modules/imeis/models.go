package imeis

import "time"

// AuthorizedIMEI is an allow-list entry: an IMEI cleared for use. Created
// by staff by hand, or by the payment reconciler on confirmed payments.
type AuthorizedIMEI struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	IMEI      string    `gorm:"type:varchar(50);not null;uniqueIndex:ux_authorized_imeis_imei" json:"imei"`
	CreatedAt time.Time `gorm:"type:datetime(3);not null" json:"created_at"`
}

func (AuthorizedIMEI) TableName() string { return "authorized_imeis" }
