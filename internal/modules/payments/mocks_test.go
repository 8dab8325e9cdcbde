package payments

import (
	"context"
	"net/url"

	"github.com/stretchr/testify/mock"

	"imeigate.com/app/internal/modules/devices"
)

type StoreMock struct {
	mock.Mock
}

// Transact runs the callback against the mock itself so expectations set
// on the mock cover both transactional and direct calls.
func (m *StoreMock) Transact(ctx context.Context, fn func(tx Store) error) error {
	return fn(m)
}

func (m *StoreMock) DeviceForUpdate(ctx context.Context, deviceID string) (*devices.Device, error) {
	args := m.Called(ctx, deviceID)
	var d *devices.Device
	if v := args.Get(0); v != nil {
		d = v.(*devices.Device)
	}
	return d, args.Error(1)
}

func (m *StoreMock) MarkDeviceAuthorized(ctx context.Context, deviceID string) error {
	return m.Called(ctx, deviceID).Error(0)
}

func (m *StoreMock) EnsureAuthorizedIMEI(ctx context.Context, imei string) error {
	return m.Called(ctx, imei).Error(0)
}

func (m *StoreMock) CreatePayment(ctx context.Context, p *Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *StoreMock) PaymentForUpdate(ctx context.Context, paymentID string) (*Payment, error) {
	args := m.Called(ctx, paymentID)
	var p *Payment
	if v := args.Get(0); v != nil {
		p = v.(*Payment)
	}
	return p, args.Error(1)
}

func (m *StoreMock) UpdatePayment(ctx context.Context, paymentID string, updates map[string]any) error {
	return m.Called(ctx, paymentID, updates).Error(0)
}

func (m *StoreMock) ListPayments(ctx context.Context, in ListParams) ([]Payment, int64, error) {
	args := m.Called(ctx, in)
	var items []Payment
	if v := args.Get(0); v != nil {
		items = v.([]Payment)
	}
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *StoreMock) RecordCallback(ctx context.Context, ev *ProviderCallback) error {
	return m.Called(ctx, ev).Error(0)
}

type ProviderStub struct {
	resp InitResponse
	err  error
	last InitRequest
}

func (p *ProviderStub) Name() string { return "stub" }

func (p *ProviderStub) InitPayment(ctx context.Context, req InitRequest) (InitResponse, error) {
	p.last = req
	return p.resp, p.err
}

func (p *ProviderStub) VerifyPayload(form url.Values) Callback {
	return Callback{
		TranID: form.Get("tran_id"),
		Status: form.Get("status"),
		ValID:  form.Get("val_id"),
		Raw:    form,
	}
}
