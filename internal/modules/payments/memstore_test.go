package payments

import (
	"context"
	"sync"

	"imeigate.com/app/internal/modules/devices"
)

// memState holds the fake's data; memTx exposes it as an unlocked Store
// for use inside a transaction, memStore serializes access the way the
// real store's transactions do.
type memState struct {
	devices   map[string]*devices.Device
	payments  map[string]*Payment
	allowlist map[string]bool
	callbacks []ProviderCallback

	authorizeCalls int
	allowInserts   int
}

type memTx struct {
	st *memState
}

func (t *memTx) Transact(ctx context.Context, fn func(tx Store) error) error {
	return fn(t)
}

func (t *memTx) DeviceForUpdate(ctx context.Context, deviceID string) (*devices.Device, error) {
	d, ok := t.st.devices[deviceID]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	cp := *d
	return &cp, nil
}

func (t *memTx) MarkDeviceAuthorized(ctx context.Context, deviceID string) error {
	d, ok := t.st.devices[deviceID]
	if !ok {
		return ErrDeviceNotFound
	}
	d.IsAuthorized = true
	t.st.authorizeCalls++
	return nil
}

func (t *memTx) EnsureAuthorizedIMEI(ctx context.Context, imei string) error {
	if t.st.allowlist[imei] {
		return nil
	}
	t.st.allowlist[imei] = true
	t.st.allowInserts++
	return nil
}

func (t *memTx) CreatePayment(ctx context.Context, p *Payment) error {
	cp := *p
	t.st.payments[p.ID] = &cp
	return nil
}

func (t *memTx) PaymentForUpdate(ctx context.Context, paymentID string) (*Payment, error) {
	p, ok := t.st.payments[paymentID]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (t *memTx) UpdatePayment(ctx context.Context, paymentID string, updates map[string]any) error {
	p, ok := t.st.payments[paymentID]
	if !ok {
		return ErrPaymentNotFound
	}
	if v, ok := updates["status"]; ok {
		p.Status = v.(string)
	}
	if v, ok := updates["transaction_id"]; ok {
		tid := v.(string)
		p.TransactionID = &tid
	}
	return nil
}

func (t *memTx) ListPayments(ctx context.Context, in ListParams) ([]Payment, int64, error) {
	var items []Payment
	for _, p := range t.st.payments {
		if in.UserID != "" && p.UserID != in.UserID {
			continue
		}
		if in.DeviceID != "" && p.DeviceID != in.DeviceID {
			continue
		}
		if in.Status != "" && p.Status != in.Status {
			continue
		}
		items = append(items, *p)
	}
	return items, int64(len(items)), nil
}

func (t *memTx) RecordCallback(ctx context.Context, ev *ProviderCallback) error {
	t.st.callbacks = append(t.st.callbacks, *ev)
	return nil
}

type memStore struct {
	mu sync.Mutex
	st *memState
}

func newMemStore() *memStore {
	return &memStore{st: &memState{
		devices:   map[string]*devices.Device{},
		payments:  map[string]*Payment{},
		allowlist: map[string]bool{},
	}}
}

func (m *memStore) tx() *memTx { return &memTx{st: m.st} }

func (m *memStore) Transact(ctx context.Context, fn func(tx Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.tx())
}

func (m *memStore) DeviceForUpdate(ctx context.Context, deviceID string) (*devices.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().DeviceForUpdate(ctx, deviceID)
}

func (m *memStore) MarkDeviceAuthorized(ctx context.Context, deviceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().MarkDeviceAuthorized(ctx, deviceID)
}

func (m *memStore) EnsureAuthorizedIMEI(ctx context.Context, imei string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().EnsureAuthorizedIMEI(ctx, imei)
}

func (m *memStore) CreatePayment(ctx context.Context, p *Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().CreatePayment(ctx, p)
}

func (m *memStore) PaymentForUpdate(ctx context.Context, paymentID string) (*Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().PaymentForUpdate(ctx, paymentID)
}

func (m *memStore) UpdatePayment(ctx context.Context, paymentID string, updates map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().UpdatePayment(ctx, paymentID, updates)
}

func (m *memStore) ListPayments(ctx context.Context, in ListParams) ([]Payment, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().ListPayments(ctx, in)
}

func (m *memStore) RecordCallback(ctx context.Context, ev *ProviderCallback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx().RecordCallback(ctx, ev)
}
