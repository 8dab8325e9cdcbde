package payments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"imeigate.com/app/internal/modules/devices"
	"imeigate.com/app/internal/modules/imeis"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

func (s *GormStore) Transact(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) DeviceForUpdate(ctx context.Context, deviceID string) (*devices.Device, error) {
	var d devices.Device
	if err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&d, "id = ?", deviceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (s *GormStore) MarkDeviceAuthorized(ctx context.Context, deviceID string) error {
	return s.db.WithContext(ctx).Model(&devices.Device{}).
		Where("id = ?", deviceID).
		Updates(map[string]any{
			"is_authorized": true,
			"updated_at":    time.Now(),
		}).Error
}

// EnsureAuthorizedIMEI is create-if-absent: a duplicate-key error means
// the entry already exists and is not a failure.
func (s *GormStore) EnsureAuthorizedIMEI(ctx context.Context, imei string) error {
	entry := imeis.AuthorizedIMEI{
		ID:        uuid.NewString(),
		IMEI:      imei,
		CreatedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		if isDup(err) {
			return nil
		}
		return err
	}
	return nil
}

func (s *GormStore) CreatePayment(ctx context.Context, p *Payment) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *GormStore) PaymentForUpdate(ctx context.Context, paymentID string) (*Payment, error) {
	var p Payment
	if err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, "id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *GormStore) UpdatePayment(ctx context.Context, paymentID string, updates map[string]any) error {
	return s.db.WithContext(ctx).Model(&Payment{}).
		Where("id = ?", paymentID).
		Updates(updates).Error
}

func (s *GormStore) ListPayments(ctx context.Context, in ListParams) ([]Payment, int64, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	size := in.PageSize
	if size < 1 || size > 100 {
		size = 20
	}

	q := s.db.WithContext(ctx).Model(&Payment{})
	if in.UserID != "" {
		q = q.Where("user_id = ?", in.UserID)
	}
	if in.DeviceID != "" {
		q = q.Where("device_id = ?", in.DeviceID)
	}
	if status := strings.TrimSpace(in.Status); status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []Payment
	if err := q.
		Order("created_at DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *GormStore) RecordCallback(ctx context.Context, ev *ProviderCallback) error {
	return s.db.WithContext(ctx).Create(ev).Error
}

func isDup(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
