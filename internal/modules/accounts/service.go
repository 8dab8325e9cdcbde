package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Service struct {
	db       *gorm.DB
	tokenTTL time.Duration
}

func NewService(db *gorm.DB, tokenTTL time.Duration) *Service {
	return &Service{db: db, tokenTTL: tokenTTL}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName *string
	LastName  *string
	Phone     *string
	Address   *string
}

// Register creates the account and signs it in, returning a raw bearer
// token alongside the user.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	u := &User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		Address:      in.Address,
		Role:         RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDupKey(err) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := s.issueToken(ctx, u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login verifies credentials and issues a fresh bearer token. The error
// never distinguishes an unknown email from a wrong password.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	var u User
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, u.ID)
	if err != nil {
		return nil, "", err
	}
	return &u, token, nil
}

// Logout revokes the presented token. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	return s.db.WithContext(ctx).
		Where("token_hash = ?", HashToken(rawToken)).
		Delete(&APIToken{}).Error
}

// ResolveToken maps a raw bearer token to its user, refusing expired
// tokens. LastSeenAt is bumped best effort.
func (s *Service) ResolveToken(ctx context.Context, rawToken string) (*User, error) {
	var tok APIToken
	err := s.db.WithContext(ctx).
		Where("token_hash = ? AND expires_at > ?", HashToken(rawToken), time.Now()).
		First(&tok).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	var u User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", tok.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	_ = s.db.WithContext(ctx).Model(&APIToken{}).
		Where("id = ?", tok.ID).
		Update("last_seen_at", time.Now()).Error

	return &u, nil
}

func (s *Service) Profile(ctx context.Context, userID string) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Address   *string
	ImageURL  *string
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*User, error) {
	updates := map[string]any{"updated_at": time.Now()}
	if in.FirstName != nil {
		updates["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		updates["last_name"] = *in.LastName
	}
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}
	if in.Address != nil {
		updates["address"] = *in.Address
	}
	if in.ImageURL != nil {
		updates["image_url"] = *in.ImageURL
	}

	res := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	return s.Profile(ctx, userID)
}

// ChangePassword swaps the hash after checking the current password and
// revokes every other token so stolen sessions die with the old secret.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next, keepRawToken string) error {
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&User{}).Where("id = ?", userID).Updates(map[string]any{
			"password_hash": string(hash),
			"updated_at":    time.Now(),
		}).Error; err != nil {
			return err
		}
		q := tx.Where("user_id = ?", userID)
		if keepRawToken != "" {
			q = q.Where("token_hash <> ?", HashToken(keepRawToken))
		}
		return q.Delete(&APIToken{}).Error
	})
}

func (s *Service) issueToken(ctx context.Context, userID string) (string, error) {
	raw, err := newRawToken()
	if err != nil {
		return "", err
	}

	now := time.Now()
	tok := &APIToken{
		ID:         uuid.NewString(),
		UserID:     userID,
		TokenHash:  HashToken(raw),
		ExpiresAt:  now.Add(s.tokenTTL),
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if err := s.db.WithContext(ctx).Create(tok).Error; err != nil {
		return "", err
	}
	return raw, nil
}

func isDupKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
