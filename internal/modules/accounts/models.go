package accounts

import "time"

const (
	RoleUser  = "user"
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

type User struct {
	ID              string     `gorm:"primaryKey;type:char(36)"`
	Email           string     `gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	PasswordHash    string     `gorm:"type:varchar(255);not null"`
	FirstName       *string    `gorm:"type:varchar(100)"`
	LastName        *string    `gorm:"type:varchar(100)"`
	Phone           *string    `gorm:"type:varchar(32)"`
	Address         *string    `gorm:"type:varchar(500)"`
	ImageURL        *string    `gorm:"type:varchar(500)"`
	Role            string     `gorm:"type:varchar(20);not null;default:user"`
	EmailVerifiedAt *time.Time `gorm:"type:datetime(3)"`
	CreatedAt       time.Time  `gorm:"type:datetime(3);not null"`
	UpdatedAt       time.Time  `gorm:"type:datetime(3);not null"`
}

func (User) TableName() string { return "users" }

func (u *User) IsStaff() bool { return u.Role == RoleStaff || u.Role == RoleAdmin }

// APIToken is a database-backed bearer token. Only the SHA-256 of the
// raw token is stored; the raw value is shown to the client once.
type APIToken struct {
	ID         string    `gorm:"primaryKey;type:char(36)"`
	UserID     string    `gorm:"type:char(36);not null;index:ix_api_tokens_user_id"`
	TokenHash  []byte    `gorm:"type:binary(32);not null;uniqueIndex:ux_api_tokens_token_hash"`
	ExpiresAt  time.Time `gorm:"type:datetime(3);not null"`
	CreatedAt  time.Time `gorm:"type:datetime(3);not null"`
	LastSeenAt time.Time `gorm:"type:datetime(3);not null"`
}

func (APIToken) TableName() string { return "api_tokens" }

// EmailVerification holds a short-lived OTP code, hashed at rest.
type EmailVerification struct {
	ID        string     `gorm:"primaryKey;type:char(36)"`
	UserID    string     `gorm:"type:char(36);not null;index:ix_email_verifications_user_id"`
	CodeHash  []byte     `gorm:"type:binary(32);not null"`
	Attempts  int        `gorm:"not null;default:0"`
	ExpiresAt time.Time  `gorm:"type:datetime(3);not null"`
	UsedAt    *time.Time `gorm:"type:datetime(3)"`
	CreatedAt time.Time  `gorm:"type:datetime(3);not null"`
	UpdatedAt time.Time  `gorm:"type:datetime(3);not null"`
}

func (EmailVerification) TableName() string { return "email_verifications" }
