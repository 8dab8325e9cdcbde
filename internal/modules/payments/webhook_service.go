package payments

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Outcome string

const (
	OutcomeConfirmed        Outcome = "confirmed"
	OutcomeFailed           Outcome = "failed"
	OutcomeAlreadyProcessed Outcome = "already_processed"
)

type ConfirmResult struct {
	Outcome   Outcome
	PaymentID string
}

// WebhookService reconciles provider IPN callbacks with payment records.
// pending -> success and pending -> failed are the only transitions;
// terminal states absorb any further delivery as a no-op acknowledgment,
// which is what makes duplicate and out-of-order IPNs safe.
type WebhookService struct {
	store  Store
	logger *slog.Logger
}

func NewWebhookService(store Store) *WebhookService {
	return &WebhookService{store: store, logger: slog.Default()}
}

func (s *WebhookService) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

func (s *WebhookService) Confirm(ctx context.Context, providerName string, cb Callback) (ConfirmResult, error) {
	if cb.TranID == "" {
		s.logger.WarnContext(ctx, "ipn without tran_id", "provider", providerName)
		return ConfirmResult{}, ErrMissingTranID
	}

	var res ConfirmResult
	err := s.store.Transact(ctx, func(tx Store) error {
		p, err := tx.PaymentForUpdate(ctx, cb.TranID)
		if err != nil {
			return err
		}

		// Idempotency gate: terminal states absorb every later delivery.
		// Checked under the row lock, immediately before the decisive write.
		if p.Status != StatusPending {
			res = ConfirmResult{Outcome: OutcomeAlreadyProcessed, PaymentID: p.ID}
			return nil
		}

		now := time.Now()
		tranID := cb.ValID
		if tranID == "" {
			tranID = cb.TranID
		}

		if isSuccessStatus(cb.Status) {
			if err := tx.UpdatePayment(ctx, p.ID, map[string]any{
				"status":         StatusSuccess,
				"transaction_id": tranID,
				"updated_at":     now,
			}); err != nil {
				return err
			}

			d, err := tx.DeviceForUpdate(ctx, p.DeviceID)
			if err != nil {
				return err
			}
			if err := tx.MarkDeviceAuthorized(ctx, d.ID); err != nil {
				return err
			}
			if d.IMEI != nil && *d.IMEI != "" {
				if err := tx.EnsureAuthorizedIMEI(ctx, *d.IMEI); err != nil {
					return err
				}
			}

			res = ConfirmResult{Outcome: OutcomeConfirmed, PaymentID: p.ID}
			return nil
		}

		if err := tx.UpdatePayment(ctx, p.ID, map[string]any{
			"status":         StatusFailed,
			"transaction_id": tranID,
			"updated_at":     now,
		}); err != nil {
			return err
		}
		res = ConfirmResult{Outcome: OutcomeFailed, PaymentID: p.ID}
		return nil
	})

	s.recordCallback(ctx, providerName, cb, res, err)

	if err != nil {
		s.logger.ErrorContext(ctx, "ipn reconciliation failed",
			"provider", providerName, "tran_id", cb.TranID, "err", err)
		return ConfirmResult{}, err
	}

	s.logger.InfoContext(ctx, "ipn processed",
		"provider", providerName, "tran_id", cb.TranID,
		"outcome", string(res.Outcome))
	return res, nil
}

// recordCallback persists the raw IPN as an audit row. Best effort: a
// failed audit write never undoes an applied reconciliation.
func (s *WebhookService) recordCallback(ctx context.Context, providerName string, cb Callback, res ConfirmResult, confirmErr error) {
	payload, err := json.Marshal(cb.Raw)
	if err != nil {
		payload = []byte("{}")
	}

	outcome := string(res.Outcome)
	if confirmErr != nil {
		outcome = "error"
	}

	ev := ProviderCallback{
		ID:          uuid.NewString(),
		Provider:    providerName,
		TranID:      optStr(cb.TranID),
		Status:      optStr(cb.Status),
		ValID:       optStr(cb.ValID),
		Outcome:     outcome,
		PayloadJSON: datatypes.JSON(payload),
		ReceivedAt:  time.Now(),
	}
	if err := s.store.RecordCallback(ctx, &ev); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist provider callback",
			"provider", providerName, "tran_id", cb.TranID, "err", err)
	}
}

// SSLCommerz signals success with "VALID" in IPNs, occasionally "SUCCESS".
func isSuccessStatus(status string) bool {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "VALID", "SUCCESS":
		return true
	default:
		return false
	}
}

func optStr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
