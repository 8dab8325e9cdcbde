package accounts

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"imeigate.com/app/internal/mailer"
)

const (
	otpTTL         = 10 * time.Minute
	otpMaxAttempts = 3
	otpHourlyCap   = 3
)

// VerifyService issues and checks email ownership OTP codes.
type VerifyService struct {
	db     *gorm.DB
	mail   mailer.Service
	from   string
	sender string
}

func NewVerifyService(db *gorm.DB, mail mailer.Service, fromAddr, fromName string) *VerifyService {
	return &VerifyService{db: db, mail: mail, from: fromAddr, sender: fromName}
}

// GenerateOTP returns a random 6-digit code.
func GenerateOTP() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	num := ((int(b[0]) << 16) | (int(b[1]) << 8) | int(b[2])) % 1000000
	return fmt.Sprintf("%06d", num), nil
}

// Start replaces any pending code for the user and mails a fresh one.
// At most otpHourlyCap codes per rolling hour.
func (s *VerifyService) Start(ctx context.Context, u *User) error {
	if u.EmailVerifiedAt != nil {
		return ErrAlreadyVerified
	}

	var recent int64
	err := s.db.WithContext(ctx).Model(&EmailVerification{}).
		Where("user_id = ? AND created_at > ?", u.ID, time.Now().Add(-time.Hour)).
		Count(&recent).Error
	if err != nil {
		return err
	}
	if recent >= otpHourlyCap {
		return ErrTooManyRequests
	}

	code, err := GenerateOTP()
	if err != nil {
		return err
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND used_at IS NULL", u.ID).
			Delete(&EmailVerification{}).Error; err != nil {
			return err
		}
		return tx.Create(&EmailVerification{
			ID:        uuid.NewString(),
			UserID:    u.ID,
			CodeHash:  HashToken(code),
			ExpiresAt: now.Add(otpTTL),
			CreatedAt: now,
			UpdatedAt: now,
		}).Error
	})
	if err != nil {
		return err
	}

	return s.mail.Send(ctx, mailer.Email{
		FromName: s.sender,
		From:     s.from,
		To:       []string{u.Email},
		Subject:  "Your verification code",
		TextBody: fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code),
	})
}

// Confirm burns the pending code and stamps the account verified.
// A bounded attempt counter stops brute forcing the 6 digits.
func (s *VerifyService) Confirm(ctx context.Context, userID, code string) error {
	var ev EmailVerification
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND used_at IS NULL", userID).
		Order("created_at DESC").
		First(&ev).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrCodeInvalid
		}
		return err
	}

	if time.Now().After(ev.ExpiresAt) {
		return ErrCodeExpired
	}
	if ev.Attempts >= otpMaxAttempts {
		return ErrTooManyAttempts
	}

	if !hashEqual(ev.CodeHash, HashToken(code)) {
		// the failed attempt must stick even though we reject the code
		_ = s.db.WithContext(ctx).Model(&EmailVerification{}).
			Where("id = ?", ev.ID).
			Updates(map[string]any{
				"attempts":   ev.Attempts + 1,
				"updated_at": time.Now(),
			}).Error
		return ErrCodeInvalid
	}

	now := time.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&EmailVerification{}).Where("id = ?", ev.ID).
			Updates(map[string]any{"used_at": now, "updated_at": now}).Error; err != nil {
			return err
		}
		return tx.Model(&User{}).Where("id = ?", userID).
			Updates(map[string]any{"email_verified_at": now, "updated_at": now}).Error
	})
}

func hashEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := range a {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}
