package imeis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"imeigate.com/app/internal/modules/devices"
)

var (
	ErrNotFound     = errors.New("authorized IMEI not found")
	ErrExists       = errors.New("this IMEI is already authorized")
	ErrLinkedDevice = errors.New("cannot delete an authorized IMEI linked to a device")
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) List(ctx context.Context) ([]AuthorizedIMEI, error) {
	var items []AuthorizedIMEI
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Service) Create(ctx context.Context, imei string) (*AuthorizedIMEI, error) {
	imei = strings.TrimSpace(imei)
	entry := AuthorizedIMEI{
		ID:        uuid.NewString(),
		IMEI:      imei,
		CreatedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		if isDupKey(err) {
			return nil, ErrExists
		}
		return nil, err
	}
	return &entry, nil
}

// Delete refuses to remove an entry while a registered device still carries
// the IMEI, so an authorized device never loses its allow-list entry.
func (s *Service) Delete(ctx context.Context, id string) error {
	var entry AuthorizedIMEI
	if err := s.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	var linked int64
	if err := s.db.WithContext(ctx).Model(&devices.Device{}).
		Where("imei = ?", entry.IMEI).
		Count(&linked).Error; err != nil {
		return err
	}
	if linked > 0 {
		return ErrLinkedDevice
	}

	return s.db.WithContext(ctx).Delete(&AuthorizedIMEI{}, "id = ?", id).Error
}

func isDupKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
