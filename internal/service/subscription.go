package service

import (
	"context"
	"fmt"
	"time"

	"github.com/adolfofidel/afdevs-admin/internal/domain"
	"github.com/adolfofidel/afdevs-admin/pkg/azul"
	"github.com/adolfofidel/afdevs-admin/pkg/crypto"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ClientStore is the client lookup surface the subscription workflows need.
type ClientStore interface {
	FindByID(ctx context.Context, id string) (*domain.Client, error)
	FindByEmail(ctx context.Context, email string) (*domain.Client, error)
}

// SubscriptionStore is the ledger surface for the creation workflow.
type SubscriptionStore interface {
	FindCurrentByClient(ctx context.Context, clientID string) (*domain.Subscription, error)
	RecordActivation(ctx context.Context, sub *domain.Subscription, pay *domain.PaymentHistory) error
	Cancel(ctx context.Context, id, clientID string, at time.Time) error
}

// ChallengeStore persists halted 3-D-Secure sales. Consume must be atomic:
// for a given order id it returns the challenge to at most one caller.
type ChallengeStore interface {
	Create(ctx context.Context, c *domain.PendingChallenge) error
	Find(ctx context.Context, azulOrderID string) (*domain.PendingChallenge, error)
	Consume(ctx context.Context, azulOrderID string) (*domain.PendingChallenge, error)
}

// SubscribeOutcome is the three-way result of a charge attempt. Declines
// and step-up challenges are data, not errors: exactly one field is set.
type SubscribeOutcome struct {
	Result    *domain.SubscribeResult
	Challenge *domain.Challenge
	Decline   *domain.Decline
}

// SubscriptionService implements the interactive subscription lifecycle:
// creation (initial charge), 3DS resumption, and cancellation.
type SubscriptionService struct {
	clients    ClientStore
	subs       SubscriptionStore
	challenges ChallengeStore
	gateway    azul.Gateway
	enc        *crypto.Encryptor
	validate   *validator.Validate
}

// NewSubscriptionService creates a SubscriptionService.
func NewSubscriptionService(clients ClientStore, subs SubscriptionStore, challenges ChallengeStore, gateway azul.Gateway, enc *crypto.Encryptor) *SubscriptionService {
	return &SubscriptionService{
		clients:    clients,
		subs:       subs,
		challenges: challenges,
		gateway:    gateway,
		enc:        enc,
		validate:   validator.New(),
	}
}

// Subscribe validates the client, charges the initial payment, and on
// approval opens the subscription in a single ledger transaction. No ledger
// rows are written for declines or step-up challenges.
func (s *SubscriptionService) Subscribe(ctx context.Context, req *domain.SubscribeRequest) (*SubscribeOutcome, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrBadRequest("missing required fields")
	}

	client, err := s.clients.FindByID(ctx, req.ClientID)
	if err != nil {
		return nil, domain.ErrInternal("failed to look up client", err)
	}
	if client == nil {
		return nil, domain.ErrNotFound("client not found")
	}

	amountCents := domain.AmountCents(domain.PlanPriceUSD)
	itbisCents := domain.ItbisCents(amountCents)
	customOrderID := orderReference("SUB", req.ClientID)

	resp, err := s.gateway.ProcessSale(ctx, azul.SaleRequest{
		CardNumber:      req.CardNumber,
		Expiration:      req.Expiration,
		CVC:             req.CVC,
		AmountCents:     amountCents + itbisCents,
		ItbisCents:      itbisCents,
		CustomOrderID:   customOrderID,
		SaveToDataVault: req.SaveCard,
	})
	if err != nil {
		return nil, domain.ErrInternal("payment gateway request failed", err)
	}

	if !azul.IsApproved(resp) {
		if azul.Requires3DS(resp) {
			// Persist the halted sale so the completion endpoint can
			// resume it after the cardholder authenticates.
			challenge := &domain.PendingChallenge{
				AzulOrderID: resp.AzulOrderId,
				ClientID:    req.ClientID,
				PriceUSD:    domain.PlanPriceUSD,
				CreatedAt:   time.Now(),
			}
			if err := s.challenges.Create(ctx, challenge); err != nil {
				return nil, domain.ErrInternal("failed to persist 3DS challenge", err)
			}

			var data interface{}
			if resp.ThreeDSMethod != nil {
				data = resp.ThreeDSMethod
			} else {
				data = resp.ThreeDSChallenge
			}
			return &SubscribeOutcome{Challenge: &domain.Challenge{
				AzulOrderID: resp.AzulOrderId,
				ThreeDSData: data,
			}}, nil
		}

		return &SubscribeOutcome{Decline: &domain.Decline{
			Reason:  azul.ErrorMessage(resp),
			IsoCode: resp.IsoCode,
		}}, nil
	}

	result, err := s.activate(ctx, req.ClientID, domain.PlanPriceUSD, resp)
	if err != nil {
		return nil, err
	}
	return &SubscribeOutcome{Result: result}, nil
}

// Complete3DS resumes a sale that was halted by a step-up challenge. The
// transaction outcome is verified with the gateway by order id; on approval
// the challenge is consumed atomically and the same activation transaction
// runs as for a directly-approved sale. A replayed completion request loses
// the consume and writes nothing, so one charge can never open two
// subscriptions or duplicate payment rows.
func (s *SubscriptionService) Complete3DS(ctx context.Context, azulOrderID string) (*SubscribeOutcome, error) {
	if azulOrderID == "" {
		return nil, domain.ErrBadRequest("missing azulOrderId")
	}

	pending, err := s.challenges.Find(ctx, azulOrderID)
	if err != nil {
		return nil, domain.ErrInternal("failed to look up pending challenge", err)
	}
	if pending == nil {
		return nil, domain.ErrNotFound("no pending challenge for this order")
	}

	resp, err := s.gateway.VerifyTransaction(ctx, azulOrderID)
	if err != nil {
		// Challenge left in place: the caller may retry once the gateway
		// is reachable again.
		return nil, domain.ErrInternal("payment gateway request failed", err)
	}

	if !azul.IsApproved(resp) {
		return &SubscribeOutcome{Decline: &domain.Decline{
			Reason:  azul.ErrorMessage(resp),
			IsoCode: resp.IsoCode,
		}}, nil
	}

	claimed, err := s.challenges.Consume(ctx, azulOrderID)
	if err != nil {
		return nil, domain.ErrInternal("failed to consume pending challenge", err)
	}
	if claimed == nil {
		// A concurrent request already finalized this order.
		return nil, domain.ErrNotFound("no pending challenge for this order")
	}

	if resp.AzulOrderId == "" {
		resp.AzulOrderId = azulOrderID
	}
	result, err := s.activate(ctx, claimed.ClientID, claimed.PriceUSD, resp)
	if err != nil {
		return nil, err
	}
	return &SubscribeOutcome{Result: result}, nil
}

// activate performs the post-approval ledger writes: subscription row,
// completed payment row, and client flags, in one transaction.
func (s *SubscriptionService) activate(ctx context.Context, clientID string, priceUSD int, resp *azul.Response) (*domain.SubscribeResult, error) {
	now := time.Now()

	var token *string
	if resp.DataVaultToken != "" {
		encrypted, err := s.enc.EncryptString(resp.DataVaultToken)
		if err != nil {
			return nil, domain.ErrInternal("failed to encrypt vault token", err)
		}
		token = &encrypted
	}

	nextBilling := now.AddDate(0, 0, domain.BillingPeriodDays)
	orderID := resp.AzulOrderId
	itbis := domain.ItbisUSD(priceUSD)
	authCode := resp.AuthorizationCode

	sub := &domain.Subscription{
		ID:              uuid.New().String(),
		ClientID:        clientID,
		Status:          domain.SubActive,
		PlanName:        domain.PlanName,
		PriceUSD:        priceUSD,
		AzulToken:       token,
		AzulOrderID:     &orderID,
		StartedAt:       now,
		NextBillingDate: &nextBilling,
	}
	pay := &domain.PaymentHistory{
		ID:                    uuid.New().String(),
		SubscriptionID:        sub.ID,
		ClientID:              clientID,
		AmountUSD:             float64(priceUSD),
		AmountITBIS:           &itbis,
		AzulTransactionID:     &orderID,
		AzulAuthorizationCode: &authCode,
		Status:                domain.PaymentCompleted,
		PaymentDate:           now,
	}

	if err := s.subs.RecordActivation(ctx, sub, pay); err != nil {
		return nil, domain.ErrInternal("failed to create subscription record", err)
	}

	return &domain.SubscribeResult{
		Subscription:      sub,
		AzulOrderID:       resp.AzulOrderId,
		AuthorizationCode: resp.AuthorizationCode,
	}, nil
}

// GetCurrent returns the client's current subscription, or nil if none.
func (s *SubscriptionService) GetCurrent(ctx context.Context, clientID string) (*domain.Subscription, error) {
	return s.subs.FindCurrentByClient(ctx, clientID)
}

// Cancel cancels the client's current subscription.
func (s *SubscriptionService) Cancel(ctx context.Context, clientID string) error {
	sub, err := s.subs.FindCurrentByClient(ctx, clientID)
	if err != nil {
		return domain.ErrInternal("failed to look up subscription", err)
	}
	if sub == nil {
		return domain.ErrNotFound("no current subscription")
	}
	if err := s.subs.Cancel(ctx, sub.ID, clientID, time.Now()); err != nil {
		return domain.ErrInternal("failed to cancel subscription", err)
	}
	return nil
}

// ResolveClientByEmail maps an identity-provider email to a client record.
// Used by the portal endpoints, where the token subject is not a client id.
func (s *SubscriptionService) ResolveClientByEmail(ctx context.Context, email string) (*domain.Client, error) {
	if email == "" {
		return nil, domain.ErrUnauthorized("no email in token")
	}
	client, err := s.clients.FindByEmail(ctx, email)
	if err != nil {
		return nil, domain.ErrInternal("failed to look up client", err)
	}
	if client == nil {
		return nil, domain.ErrNotFound("client not found")
	}
	return client, nil
}

// orderReference builds a merchant-visible order reference unique per
// charge attempt.
func orderReference(kind, ownerID string) string {
	return fmt.Sprintf("AFDEVS-%s-%s-%s", kind, ownerID, uuid.New().String())
}
