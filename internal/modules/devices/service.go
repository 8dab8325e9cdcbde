package devices

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"imeigate.com/app/internal/storage"
)

// Actor identifies who is calling; Staff covers both staff and admin roles.
type Actor struct {
	ID    string
	Staff bool
}

type Service struct {
	db    *gorm.DB
	files storage.Storage
}

func NewService(db *gorm.DB, files storage.Storage) *Service {
	return &Service{db: db, files: files}
}

type ListParams struct {
	Actor    Actor
	Page     int
	PageSize int
}

type ListResult struct {
	Items []Device
	Total int64
}

// List returns the actor's own devices; staff see every device.
func (s *Service) List(ctx context.Context, in ListParams) (ListResult, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	size := in.PageSize
	if size < 1 || size > 100 {
		size = 20
	}

	q := s.db.WithContext(ctx).Model(&Device{})
	if !in.Actor.Staff {
		q = q.Where("owner_id = ?", in.Actor.ID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return ListResult{}, err
	}

	var items []Device
	if err := q.
		Order("created_at DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&items).Error; err != nil {
		return ListResult{}, err
	}

	return ListResult{Items: items, Total: total}, nil
}

type CreateInput struct {
	OwnerID     string
	Name        string
	IMEI        *string
	Type        *string
	OS          *string
	Description *string
	Price       *string // decimal string, validated here
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Device, error) {
	now := time.Now()
	d := Device{
		ID:          uuid.NewString(),
		OwnerID:     in.OwnerID,
		Name:        strings.TrimSpace(in.Name),
		IMEI:        normalizeIMEI(in.IMEI),
		Type:        in.Type,
		OS:          in.OS,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if in.Price != nil {
		p, err := decimal.NewFromString(strings.TrimSpace(*in.Price))
		if err != nil || p.IsNegative() {
			return nil, ErrInvalidPrice
		}
		d.Price = decimal.NewNullDecimal(p.Round(2))
	}

	if err := s.db.WithContext(ctx).Create(&d).Error; err != nil {
		if isDupKey(err) {
			return nil, ErrIMEITaken
		}
		return nil, err
	}
	return &d, nil
}

// Get loads a device and enforces owner-or-staff access, mirroring the
// not-found / forbidden split the API exposes.
func (s *Service) Get(ctx context.Context, id string, actor Actor) (*Device, error) {
	var d Device
	if err := s.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if d.OwnerID != actor.ID && !actor.Staff {
		return nil, ErrForbidden
	}
	return &d, nil
}

type UpdateInput struct {
	Name        *string
	IMEI        *string
	Type        *string
	OS          *string
	Description *string
	Price       *string
}

func (s *Service) Update(ctx context.Context, id string, actor Actor, in UpdateInput) (*Device, error) {
	d, err := s.Get(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"updated_at": time.Now()}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Type != nil {
		updates["type"] = in.Type
	}
	if in.OS != nil {
		updates["os"] = in.OS
	}
	if in.Description != nil {
		updates["description"] = in.Description
	}
	if in.IMEI != nil {
		// IMEI is frozen once the device is authorized; the allow-list
		// entry was created from it.
		if d.IsAuthorized {
			return nil, ErrFrozenField
		}
		updates["imei"] = normalizeIMEI(in.IMEI)
	}
	if in.Price != nil {
		if d.IsAuthorized {
			return nil, ErrFrozenField
		}
		p, perr := decimal.NewFromString(strings.TrimSpace(*in.Price))
		if perr != nil || p.IsNegative() {
			return nil, ErrInvalidPrice
		}
		updates["price"] = p.Round(2)
	}

	if err := s.db.WithContext(ctx).Model(&Device{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		if isDupKey(err) {
			return nil, ErrIMEITaken
		}
		return nil, err
	}
	return s.Get(ctx, id, actor)
}

func (s *Service) Delete(ctx context.Context, id string, actor Actor) error {
	d, err := s.Get(ctx, id, actor)
	if err != nil {
		return err
	}
	if d.ImageKey != nil && s.files != nil {
		_ = s.files.Delete(ctx, *d.ImageKey)
	}
	return s.db.WithContext(ctx).Delete(&Device{}, "id = ?", id).Error
}

type ImageInput struct {
	Filename    string
	ContentType string
	Size        int64
}

func (s *Service) AttachImage(ctx context.Context, id string, actor Actor, r io.Reader, in ImageInput) (*Device, error) {
	d, err := s.Get(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	res, err := s.files.Put(ctx, r, storage.PutInput{
		Filename:    in.Filename,
		ContentType: in.ContentType,
		Size:        in.Size,
	})
	if err != nil {
		return nil, err
	}

	if d.ImageKey != nil {
		_ = s.files.Delete(ctx, *d.ImageKey)
	}

	updates := map[string]any{
		"image_key":  res.Key,
		"image_url":  res.URL,
		"updated_at": time.Now(),
	}
	if err := s.db.WithContext(ctx).Model(&Device{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, id, actor)
}

func normalizeIMEI(imei *string) *string {
	if imei == nil {
		return nil
	}
	v := strings.TrimSpace(*imei)
	if v == "" {
		return nil
	}
	return &v
}
