package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/adolfofidel/afdevs-admin/internal/domain"
)

func newWebhookFixture() (*WebhookService, *mockWebhookSubStore, *mockClientStateStore) {
	subs := newMockWebhookSubStore()
	clients := newMockClientStateStore()
	paypalID := "I-PAYPAL1"
	subs.byPayPalID["I-PAYPAL1"] = &domain.Subscription{
		ID:                   "sub-1",
		ClientID:             "client-1",
		Status:               domain.SubActive,
		PriceUSD:             domain.PlanPriceUSD,
		PayPalSubscriptionID: &paypalID,
	}
	return NewWebhookService(subs, clients), subs, clients
}

func TestHandlePaymentCompleted(t *testing.T) {
	svc, subs, _ := newWebhookFixture()

	resource := json.RawMessage(`{"id":"TXN-1","billing_agreement_id":"I-PAYPAL1","amount":{"total":"255.00"}}`)
	if err := svc.HandleEvent(context.Background(), EventPaymentCompleted, resource); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(subs.payments) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(subs.payments))
	}
	pay := subs.payments[0]
	if pay.AmountUSD != 255 {
		t.Errorf("amount = %v, want 255", pay.AmountUSD)
	}
	if pay.PayPalTransactionID == nil || *pay.PayPalTransactionID != "TXN-1" {
		t.Errorf("paypal txn id = %v", pay.PayPalTransactionID)
	}
	if pay.Status != domain.PaymentCompleted {
		t.Errorf("status = %q", pay.Status)
	}
	if _, ok := subs.advanced["sub-1"]; !ok {
		t.Error("billing date not advanced")
	}
}

func TestHandleActivatedAndSuspended(t *testing.T) {
	svc, subs, clients := newWebhookFixture()

	resource := json.RawMessage(`{"id":"I-PAYPAL1"}`)
	if err := svc.HandleEvent(context.Background(), EventSubscriptionSuspended, resource); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subs.statuses["sub-1"] != domain.SubPaused {
		t.Errorf("status = %q, want paused", subs.statuses["sub-1"])
	}
	if clients.states["client-1"] != domain.SubPaused {
		t.Errorf("client state = %q, want paused", clients.states["client-1"])
	}

	if err := svc.HandleEvent(context.Background(), EventSubscriptionActivated, resource); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subs.statuses["sub-1"] != domain.SubActive {
		t.Errorf("status = %q, want active", subs.statuses["sub-1"])
	}
}

func TestHandleCancelled(t *testing.T) {
	svc, subs, _ := newWebhookFixture()

	resource := json.RawMessage(`{"id":"I-PAYPAL1"}`)
	if err := svc.HandleEvent(context.Background(), EventSubscriptionCancelled, resource); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(subs.cancelled) != 1 || subs.cancelled[0] != "sub-1" {
		t.Errorf("cancelled = %v", subs.cancelled)
	}
}

func TestHandlePaymentFailed(t *testing.T) {
	svc, subs, clients := newWebhookFixture()

	resource := json.RawMessage(`{"id":"I-PAYPAL1"}`)
	if err := svc.HandleEvent(context.Background(), EventSubscriptionPaymentFailed, resource); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subs.statuses["sub-1"] != domain.SubPastDue {
		t.Errorf("status = %q, want past_due", subs.statuses["sub-1"])
	}
	if clients.states["client-1"] != domain.SubPastDue {
		t.Errorf("client state = %q, want past_due", clients.states["client-1"])
	}
	if len(subs.payments) != 1 || subs.payments[0].Status != domain.PaymentFailed {
		t.Errorf("payments = %+v", subs.payments)
	}
}

func TestHandleUnknownEventType(t *testing.T) {
	svc, subs, _ := newWebhookFixture()

	if err := svc.HandleEvent(context.Background(), "CHECKOUT.ORDER.APPROVED", nil); err != nil {
		t.Fatalf("unknown event types must be ignored, got %v", err)
	}
	if len(subs.payments) != 0 || len(subs.cancelled) != 0 {
		t.Error("unknown event must not write anything")
	}
}

func TestHandleUnknownSubscription(t *testing.T) {
	svc, subs, _ := newWebhookFixture()

	resource := json.RawMessage(`{"id":"I-UNKNOWN"}`)
	if err := svc.HandleEvent(context.Background(), EventSubscriptionCancelled, resource); err != nil {
		t.Fatalf("events for unknown subscriptions must be dropped, got %v", err)
	}
	if len(subs.cancelled) != 0 {
		t.Error("unknown subscription must not be cancelled")
	}
}

func TestHandleMalformedResource(t *testing.T) {
	svc, _, _ := newWebhookFixture()

	err := svc.HandleEvent(context.Background(), EventPaymentCompleted, json.RawMessage(`{broken`))
	appErr, ok := domain.AsAppError(err)
	if !ok || appErr.Code != 400 {
		t.Fatalf("expected 400, got %v", err)
	}
}
