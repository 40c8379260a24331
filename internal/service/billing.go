package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/adolfofidel/afdevs-admin/internal/domain"
	"github.com/adolfofidel/afdevs-admin/internal/repository"
	"github.com/adolfofidel/afdevs-admin/pkg/azul"
	"github.com/adolfofidel/afdevs-admin/pkg/crypto"
	"github.com/google/uuid"
)

// BillingStore is the ledger surface the recurring billing run needs.
type BillingStore interface {
	FindDueBetween(ctx context.Context, from, to time.Time) ([]*repository.DueSubscription, error)
	ClaimForBilling(ctx context.Context, id string, now, cutoff time.Time) (bool, error)
	RecordBillingSuccess(ctx context.Context, subID string, pay *domain.PaymentHistory, nextBilling time.Time) error
	RecordBillingFailure(ctx context.Context, subID, clientID string, pay *domain.PaymentHistory) error
	MarkPastDue(ctx context.Context, subID, clientID string) error
}

// BillingService runs the daily recurring charge batch. Azul does not
// initiate recurring charges itself when driven through the API; we charge
// each due subscription's saved token ourselves.
type BillingService struct {
	store   BillingStore
	gateway azul.Gateway
	enc     *crypto.Encryptor
}

// NewBillingService creates a BillingService.
func NewBillingService(store BillingStore, gateway azul.Gateway, enc *crypto.Encryptor) *BillingService {
	return &BillingService{
		store:   store,
		gateway: gateway,
		enc:     enc,
	}
}

// ProcessDue charges every active subscription whose next billing date
// falls within the current calendar day. Subscriptions are processed
// strictly sequentially and independently: one failure never aborts the
// batch. Each row is atomically claimed before its charge is attempted, so
// invoking the run twice in the same day cannot double-charge anyone.
func (s *BillingService) ProcessDue(ctx context.Context) (*domain.BillingReport, error) {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := midnight.AddDate(0, 0, 1)

	due, err := s.store.FindDueBetween(ctx, midnight, tomorrow)
	if err != nil {
		return nil, domain.ErrInternal("failed to fetch due subscriptions", err)
	}
	if len(due) == 0 {
		return &domain.BillingReport{
			Message: "No subscriptions due for billing today",
			Errors:  []string{},
		}, nil
	}

	report := &domain.BillingReport{
		Message: "Recurring payments processed",
		Errors:  []string{},
	}

	for _, sub := range due {
		claimed, err := s.store.ClaimForBilling(ctx, sub.ID, now, midnight)
		if err != nil {
			report.Failed++
			report.Total++
			report.Errors = append(report.Errors, fmt.Sprintf("Subscription %s: %v", sub.ID, err))
			continue
		}
		if !claimed {
			// Another invocation already attempted this row today.
			continue
		}
		report.Total++

		s.processOne(ctx, sub, now, report)
	}

	return report, nil
}

// processOne charges a single claimed subscription and records the outcome.
func (s *BillingService) processOne(ctx context.Context, sub *repository.DueSubscription, now time.Time, report *domain.BillingReport) {
	// Prefer the subscription's own saved token, fall back to the client's.
	encrypted := sub.AzulToken
	if encrypted == nil {
		encrypted = sub.ClientToken
	}
	if encrypted == nil {
		report.Failed++
		report.Errors = append(report.Errors, fmt.Sprintf("Subscription %s: No payment token found", sub.ID))
		if err := s.store.MarkPastDue(ctx, sub.ID, sub.ClientID); err != nil {
			log.Printf("billing: failed to mark %s past_due: %v", sub.ID, err)
		}
		return
	}

	token, err := s.enc.DecryptString(*encrypted)
	if err != nil {
		report.Failed++
		report.Errors = append(report.Errors, fmt.Sprintf("Subscription %s: %v", sub.ID, err))
		return
	}

	amountCents := domain.AmountCents(sub.PriceUSD)
	itbisCents := domain.ItbisCents(amountCents)
	customOrderID := orderReference("REC", sub.ID)

	resp, err := s.gateway.ProcessTokenSale(ctx, token, amountCents+itbisCents, itbisCents, customOrderID)
	if err != nil {
		// Outcome unknown: the claim stays held so a repeat run cannot
		// risk charging this card twice today.
		report.Failed++
		report.Errors = append(report.Errors, fmt.Sprintf("Subscription %s: %v", sub.ID, err))
		return
	}

	if azul.IsApproved(resp) {
		itbis := domain.ItbisUSD(sub.PriceUSD)
		txnID := resp.AzulOrderId
		authCode := resp.AuthorizationCode
		pay := &domain.PaymentHistory{
			ID:                    uuid.New().String(),
			SubscriptionID:        sub.ID,
			ClientID:              sub.ClientID,
			AmountUSD:             float64(sub.PriceUSD),
			AmountITBIS:           &itbis,
			AzulTransactionID:     &txnID,
			AzulAuthorizationCode: &authCode,
			Status:                domain.PaymentCompleted,
			PaymentDate:           now,
		}
		next := now.AddDate(0, 0, domain.BillingPeriodDays)
		if err := s.store.RecordBillingSuccess(ctx, sub.ID, pay, next); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("Subscription %s: charge approved but ledger write failed: %v", sub.ID, err))
			log.Printf("billing: ledger write failed after approved charge for %s (order %s): %v", sub.ID, customOrderID, err)
			return
		}
		report.Successful++
		return
	}

	// Declined. Failed attempts record the amount only, without tax.
	pay := &domain.PaymentHistory{
		ID:             uuid.New().String(),
		SubscriptionID: sub.ID,
		ClientID:       sub.ClientID,
		AmountUSD:      float64(sub.PriceUSD),
		Status:         domain.PaymentFailed,
		PaymentDate:    now,
	}
	report.Failed++
	report.Errors = append(report.Errors, fmt.Sprintf("Subscription %s: %s", sub.ID, azul.ErrorMessage(resp)))
	if err := s.store.RecordBillingFailure(ctx, sub.ID, sub.ClientID, pay); err != nil {
		log.Printf("billing: failed to record decline for %s: %v", sub.ID, err)
	}
}
