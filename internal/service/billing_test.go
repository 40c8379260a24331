package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/adolfofidel/afdevs-admin/internal/domain"
	"github.com/adolfofidel/afdevs-admin/internal/repository"
	"github.com/adolfofidel/afdevs-admin/pkg/azul"
)

// dueSub builds a due subscription with an encrypted saved token.
func dueSub(t *testing.T, id string, token string) *repository.DueSubscription {
	t.Helper()
	due := time.Now().Add(2 * time.Hour)
	sub := &repository.DueSubscription{
		Subscription: domain.Subscription{
			ID:              id,
			ClientID:        "client-" + id,
			Status:          domain.SubActive,
			PriceUSD:        domain.PlanPriceUSD,
			NextBillingDate: &due,
		},
	}
	if token != "" {
		encrypted, err := testEncryptor().EncryptString(token)
		if err != nil {
			t.Fatalf("encrypt: %v", err)
		}
		sub.AzulToken = &encrypted
	}
	return sub
}

func TestProcessDueEmptyDay(t *testing.T) {
	store := newMockBillingStore()
	svc := NewBillingService(store, &mockGateway{}, testEncryptor())

	report, err := svc.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Message != "No subscriptions due for billing today" {
		t.Errorf("message = %q", report.Message)
	}
	if report.Total != 0 || report.Successful != 0 || report.Failed != 0 {
		t.Errorf("counts = %+v", report)
	}
}

func TestProcessDueChargesEachSubscription(t *testing.T) {
	store := newMockBillingStore(
		dueSub(t, "sub-1", "token-1"),
		dueSub(t, "sub-2", "token-2"),
	)
	gw := &mockGateway{tokenResp: &azul.Response{IsoCode: "00", AzulOrderId: "OK", AuthorizationCode: "A1"}}
	svc := NewBillingService(store, gw, testEncryptor())

	report, err := svc.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Total != 2 || report.Successful != 2 || report.Failed != 0 {
		t.Errorf("report = %+v", report)
	}

	// The gateway saw the decrypted tokens.
	if len(gw.tokenSales) != 2 {
		t.Fatalf("expected 2 token sales, got %d", len(gw.tokenSales))
	}
	if gw.tokenSales[0] != "token-1" || gw.tokenSales[1] != "token-2" {
		t.Errorf("tokens = %v", gw.tokenSales)
	}

	if len(store.successes) != 2 {
		t.Fatalf("expected 2 success writes, got %d", len(store.successes))
	}
	pay := store.successes[0]
	if pay.Status != domain.PaymentCompleted {
		t.Errorf("payment status = %q", pay.Status)
	}
	if pay.AmountITBIS == nil {
		t.Error("completed payment must record tax")
	}
}

func TestProcessDueSecondRunIsNoOp(t *testing.T) {
	store := newMockBillingStore(dueSub(t, "sub-1", "token-1"))
	gw := &mockGateway{tokenResp: &azul.Response{IsoCode: "00"}}
	svc := NewBillingService(store, gw, testEncryptor())

	if _, err := svc.ProcessDue(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	report, err := svc.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	// The row is still due but already claimed: skipped without counting.
	if report.Total != 0 {
		t.Errorf("second run total = %d, want 0", report.Total)
	}
	if len(gw.tokenSales) != 1 {
		t.Errorf("expected 1 charge across both runs, got %d", len(gw.tokenSales))
	}
}

func TestProcessDueMissingToken(t *testing.T) {
	store := newMockBillingStore(dueSub(t, "sub-1", ""))
	gw := &mockGateway{}
	svc := NewBillingService(store, gw, testEncryptor())

	report, err := svc.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Failed != 1 || report.Successful != 0 {
		t.Errorf("report = %+v", report)
	}
	if len(report.Errors) != 1 || !strings.Contains(report.Errors[0], "No payment token found") {
		t.Errorf("errors = %v", report.Errors)
	}
	if len(gw.tokenSales) != 0 {
		t.Error("tokenless subscription must not reach the gateway")
	}
	if len(store.pastDue) != 1 || store.pastDue[0] != "sub-1" {
		t.Errorf("pastDue = %v", store.pastDue)
	}
	if len(store.failures) != 0 {
		t.Error("missing token must not write a payment row")
	}
}

func TestProcessDueFallsBackToClientToken(t *testing.T) {
	sub := dueSub(t, "sub-1", "")
	encrypted, err := testEncryptor().EncryptString("client-token")
	if err != nil {
		t.Fatal(err)
	}
	sub.ClientToken = &encrypted

	store := newMockBillingStore(sub)
	gw := &mockGateway{tokenResp: &azul.Response{IsoCode: "00"}}
	svc := NewBillingService(store, gw, testEncryptor())

	report, err := svc.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Successful != 1 {
		t.Errorf("report = %+v", report)
	}
	if len(gw.tokenSales) != 1 || gw.tokenSales[0] != "client-token" {
		t.Errorf("tokens = %v", gw.tokenSales)
	}
}

func TestProcessDueDeclineDoesNotAbortBatch(t *testing.T) {
	store := newMockBillingStore(
		dueSub(t, "sub-1", "token-1"),
		dueSub(t, "sub-2", "token-2"),
	)
	gw := &declineFirstGateway{}
	svc := NewBillingService(store, gw, testEncryptor())

	report, err := svc.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Total != 2 || report.Successful != 1 || report.Failed != 1 {
		t.Errorf("report = %+v", report)
	}
	if len(store.failures) != 1 {
		t.Fatalf("expected 1 failure write, got %d", len(store.failures))
	}
	// Failed attempts record the amount only.
	if store.failures[0].AmountITBIS != nil {
		t.Error("failed payment must not record tax")
	}
	if store.failures[0].Status != domain.PaymentFailed {
		t.Errorf("failed payment status = %q", store.failures[0].Status)
	}
}

func TestProcessDueTransportErrorKeepsClaim(t *testing.T) {
	store := newMockBillingStore(dueSub(t, "sub-1", "token-1"))
	gw := &mockGateway{tokenErr: errors.New("connection reset")}
	svc := NewBillingService(store, gw, testEncryptor())

	report, err := svc.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Failed != 1 {
		t.Errorf("report = %+v", report)
	}
	// No payment row and no past_due transition: the outcome is unknown.
	if len(store.failures) != 0 || len(store.pastDue) != 0 {
		t.Error("unknown outcome must not write ledger rows")
	}
	// The claim stays held, so a retry run skips the row.
	report2, _ := svc.ProcessDue(context.Background())
	if report2.Total != 0 {
		t.Errorf("retry total = %d, want 0", report2.Total)
	}
}

// declineFirstGateway declines the first token sale and approves the rest.
type declineFirstGateway struct {
	mockGateway
	calls int
}

func (g *declineFirstGateway) ProcessTokenSale(ctx context.Context, token string, amountCents, itbisCents int, customOrderID string) (*azul.Response, error) {
	g.calls++
	if g.calls == 1 {
		return &azul.Response{IsoCode: "51"}, nil
	}
	return &azul.Response{IsoCode: "00"}, nil
}
