package service

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/adolfofidel/afdevs-admin/internal/domain"
	"github.com/google/uuid"
)

// PayPal webhook event types we handle.
const (
	EventPaymentCompleted          = "PAYMENT.SALE.COMPLETED"
	EventSubscriptionActivated     = "BILLING.SUBSCRIPTION.ACTIVATED"
	EventSubscriptionCancelled     = "BILLING.SUBSCRIPTION.CANCELLED"
	EventSubscriptionSuspended     = "BILLING.SUBSCRIPTION.SUSPENDED"
	EventSubscriptionPaymentFailed = "BILLING.SUBSCRIPTION.PAYMENT.FAILED"
)

// WebhookSubscriptionStore is the ledger surface webhook reconciliation
// writes through.
type WebhookSubscriptionStore interface {
	FindByPayPalID(ctx context.Context, paypalID string) (*domain.Subscription, error)
	UpdateStatus(ctx context.Context, id, status string) error
	AdvanceBillingDate(ctx context.Context, id string, next time.Time) error
	InsertPayment(ctx context.Context, p *domain.PaymentHistory) error
	Cancel(ctx context.Context, id, clientID string, at time.Time) error
}

// ClientStateStore mirrors subscription transitions onto the client row.
type ClientStateStore interface {
	SetSubscriptionState(ctx context.Context, id string, isSubscribed bool, status string) error
}

// WebhookService reconciles PayPal subscription lifecycle events into the
// same ledger the Azul workflows write.
type WebhookService struct {
	subs    WebhookSubscriptionStore
	clients ClientStateStore
}

// NewWebhookService creates a WebhookService.
func NewWebhookService(subs WebhookSubscriptionStore, clients ClientStateStore) *WebhookService {
	return &WebhookService{subs: subs, clients: clients}
}

// paypalResource is the subset of the event resource we read.
type paypalResource struct {
	ID                 string `json:"id"`
	BillingAgreementID string `json:"billing_agreement_id"`
	Amount             struct {
		Total string `json:"total"`
	} `json:"amount"`
}

// HandleEvent applies one provider event to local state. Unrecognized event
// types are logged and ignored; events referencing unknown subscriptions
// are silently dropped so provider replays for stale data stay harmless.
func (s *WebhookService) HandleEvent(ctx context.Context, eventType string, resource json.RawMessage) error {
	var res paypalResource
	if len(resource) > 0 {
		if err := json.Unmarshal(resource, &res); err != nil {
			return domain.ErrBadRequest("malformed event resource")
		}
	}

	switch eventType {
	case EventPaymentCompleted:
		return s.paymentCompleted(ctx, &res)
	case EventSubscriptionActivated:
		return s.transition(ctx, res.ID, domain.SubActive, true)
	case EventSubscriptionCancelled:
		return s.cancelled(ctx, res.ID)
	case EventSubscriptionSuspended:
		return s.transition(ctx, res.ID, domain.SubPaused, false)
	case EventSubscriptionPaymentFailed:
		return s.paymentFailed(ctx, res.ID)
	default:
		log.Printf("webhook: unhandled PayPal event type: %s", eventType)
		return nil
	}
}

// paymentCompleted records a provider-confirmed payment and advances the
// billing date.
func (s *WebhookService) paymentCompleted(ctx context.Context, res *paypalResource) error {
	sub, err := s.subs.FindByPayPalID(ctx, res.BillingAgreementID)
	if err != nil {
		return err
	}
	if sub == nil {
		return nil
	}

	amount, err := strconv.ParseFloat(res.Amount.Total, 64)
	if err != nil {
		return domain.ErrBadRequest("malformed payment amount")
	}

	now := time.Now()
	txnID := res.ID
	pay := &domain.PaymentHistory{
		ID:                  uuid.New().String(),
		SubscriptionID:      sub.ID,
		ClientID:            sub.ClientID,
		AmountUSD:           amount,
		PayPalTransactionID: &txnID,
		Status:              domain.PaymentCompleted,
		PaymentDate:         now,
	}
	if err := s.subs.InsertPayment(ctx, pay); err != nil {
		return err
	}
	return s.subs.AdvanceBillingDate(ctx, sub.ID, now.AddDate(0, 0, domain.BillingPeriodDays))
}

// transition applies a plain status change to the subscription and mirrors
// it to the client.
func (s *WebhookService) transition(ctx context.Context, paypalID, status string, subscribed bool) error {
	sub, err := s.subs.FindByPayPalID(ctx, paypalID)
	if err != nil {
		return err
	}
	if sub == nil {
		return nil
	}
	if err := s.subs.UpdateStatus(ctx, sub.ID, status); err != nil {
		return err
	}
	return s.clients.SetSubscriptionState(ctx, sub.ClientID, subscribed, status)
}

func (s *WebhookService) cancelled(ctx context.Context, paypalID string) error {
	sub, err := s.subs.FindByPayPalID(ctx, paypalID)
	if err != nil {
		return err
	}
	if sub == nil {
		return nil
	}
	return s.subs.Cancel(ctx, sub.ID, sub.ClientID, time.Now())
}

// paymentFailed marks the subscription past_due, mirrors it to the client,
// and records a failed payment attempt.
func (s *WebhookService) paymentFailed(ctx context.Context, paypalID string) error {
	sub, err := s.subs.FindByPayPalID(ctx, paypalID)
	if err != nil {
		return err
	}
	if sub == nil {
		return nil
	}
	if err := s.subs.UpdateStatus(ctx, sub.ID, domain.SubPastDue); err != nil {
		return err
	}
	if err := s.clients.SetSubscriptionState(ctx, sub.ClientID, true, domain.SubPastDue); err != nil {
		return err
	}
	pay := &domain.PaymentHistory{
		ID:             uuid.New().String(),
		SubscriptionID: sub.ID,
		ClientID:       sub.ClientID,
		AmountUSD:      float64(sub.PriceUSD),
		Status:         domain.PaymentFailed,
		PaymentDate:    time.Now(),
	}
	return s.subs.InsertPayment(ctx, pay)
}
