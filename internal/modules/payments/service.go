package payments

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"imeigate.com/app/internal/modules/devices"
)

// Service creates payments: phase-1 validates the device and writes the
// pending record in one transaction, phase-2 calls the provider outside
// any transaction, phase-3 durably marks the record failed if init did
// not produce a checkout URL. There is no automatic retry; a retry is a
// fresh payment.
type Service struct {
	store        Store
	provider     Provider
	publicDomain string
}

func NewService(store Store, provider Provider, publicDomain string) *Service {
	return &Service{
		store:        store,
		provider:     provider,
		publicDomain: strings.TrimRight(publicDomain, "/"),
	}
}

type CreateInput struct {
	UserID   string
	DeviceID string
	Customer Customer
}

type CreateResult struct {
	PaymentID  string
	Amount     decimal.Decimal
	PaymentURL string
}

func (s *Service) CreatePayment(ctx context.Context, in CreateInput) (CreateResult, error) {
	if in.UserID == "" || in.DeviceID == "" {
		return CreateResult{}, ErrDeviceNotFound
	}

	// Phase-1: device lock + preconditions + pending record
	var created Payment
	var dev devices.Device

	err := s.store.Transact(ctx, func(tx Store) error {
		d, err := tx.DeviceForUpdate(ctx, in.DeviceID)
		if err != nil {
			return err
		}
		if d.OwnerID != in.UserID {
			return ErrDeviceNotFound
		}
		if d.IsAuthorized {
			return ErrDeviceAuthorized
		}

		fee, err := AuthorizationFee(d.Price)
		if err != nil {
			return err
		}

		now := time.Now()
		created = Payment{
			ID:        uuid.NewString(),
			UserID:    in.UserID,
			DeviceID:  d.ID,
			Amount:    fee,
			Status:    StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		dev = *d
		return tx.CreatePayment(ctx, &created)
	})
	if err != nil {
		return CreateResult{}, err
	}

	// Phase-2: provider init (outside tx)
	resp, perr := s.provider.InitPayment(ctx, InitRequest{
		PaymentID:   created.ID,
		DeviceID:    dev.ID,
		ProductName: dev.Name,
		Amount:      created.Amount,
		Customer:    in.Customer,
		ReturnURLs:  s.returnURLs(),
		NotifyURL:   s.publicDomain + "/api/v1/payments/webhook",
	})

	// Phase-3: finalize
	if perr != nil || !resp.Initialized() {
		updates := map[string]any{
			"status":     StatusFailed,
			"updated_at": time.Now(),
		}
		if uerr := s.store.UpdatePayment(ctx, created.ID, updates); uerr != nil {
			return CreateResult{}, uerr
		}
		if perr != nil {
			return CreateResult{}, &GatewayError{Reason: "failed to initialize payment", Err: perr}
		}
		reason := resp.FailedReason
		if reason == "" {
			reason = "payment initialization failed"
		}
		return CreateResult{}, &GatewayError{Reason: reason}
	}

	return CreateResult{
		PaymentID:  created.ID,
		Amount:     created.Amount,
		PaymentURL: resp.GatewayPageURL,
	}, nil
}

// List is the thin payment query: users see their own rows, staff pass
// an empty UserID to see everything.
func (s *Service) List(ctx context.Context, in ListParams) ([]Payment, int64, error) {
	return s.store.ListPayments(ctx, in)
}

func (s *Service) returnURLs() ReturnURLs {
	return ReturnURLs{
		Success: s.publicDomain + "/api/v1/payments/success",
		Fail:    s.publicDomain + "/api/v1/payments/fail",
		Cancel:  s.publicDomain + "/api/v1/payments/cancel",
	}
}
