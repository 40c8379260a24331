package service

import (
	"context"
	"errors"
	"time"

	"github.com/adolfofidel/afdevs-admin/internal/domain"
	"github.com/adolfofidel/afdevs-admin/internal/repository"
	"github.com/adolfofidel/afdevs-admin/pkg/azul"
	"github.com/adolfofidel/afdevs-admin/pkg/crypto"
)

const testEncKey = "0123456789abcdef0123456789abcdef"

func testEncryptor() *crypto.Encryptor {
	enc, err := crypto.NewEncryptor(testEncKey)
	if err != nil {
		panic(err)
	}
	return enc
}

// mockGateway scripts gateway responses and records every call.
type mockGateway struct {
	saleResp   *azul.Response
	saleErr    error
	tokenResp  *azul.Response
	tokenErr   error
	verifyResp *azul.Response
	verifyErr  error

	sales      []azul.SaleRequest
	tokenSales []string // tokens charged
	verified   []string // order ids verified
}

func (m *mockGateway) ProcessSale(ctx context.Context, req azul.SaleRequest) (*azul.Response, error) {
	m.sales = append(m.sales, req)
	return m.saleResp, m.saleErr
}

func (m *mockGateway) ProcessTokenSale(ctx context.Context, token string, amountCents, itbisCents int, customOrderID string) (*azul.Response, error) {
	m.tokenSales = append(m.tokenSales, token)
	return m.tokenResp, m.tokenErr
}

func (m *mockGateway) CreateToken(ctx context.Context, cardNumber, expiration, cvc string) (*azul.Response, error) {
	return nil, errors.New("not implemented")
}

func (m *mockGateway) DeleteToken(ctx context.Context, token string) (*azul.Response, error) {
	return nil, errors.New("not implemented")
}

func (m *mockGateway) VerifyTransaction(ctx context.Context, azulOrderID string) (*azul.Response, error) {
	m.verified = append(m.verified, azulOrderID)
	return m.verifyResp, m.verifyErr
}

// mockClientStore serves clients by id and email.
type mockClientStore struct {
	clients map[string]*domain.Client
}

func (m *mockClientStore) FindByID(ctx context.Context, id string) (*domain.Client, error) {
	return m.clients[id], nil
}

func (m *mockClientStore) FindByEmail(ctx context.Context, email string) (*domain.Client, error) {
	for _, c := range m.clients {
		if c.PrimaryEmail != nil && *c.PrimaryEmail == email {
			return c, nil
		}
	}
	return nil, nil
}

// mockSubStore records ledger writes for the creation workflow.
type mockSubStore struct {
	current     *domain.Subscription
	activations []*domain.Subscription
	payments    []*domain.PaymentHistory
	cancelled   []string
}

func (m *mockSubStore) FindCurrentByClient(ctx context.Context, clientID string) (*domain.Subscription, error) {
	return m.current, nil
}

func (m *mockSubStore) RecordActivation(ctx context.Context, sub *domain.Subscription, pay *domain.PaymentHistory) error {
	m.activations = append(m.activations, sub)
	m.payments = append(m.payments, pay)
	return nil
}

func (m *mockSubStore) Cancel(ctx context.Context, id, clientID string, at time.Time) error {
	m.cancelled = append(m.cancelled, id)
	return nil
}

// mockChallengeStore keeps pending challenges in a map.
type mockChallengeStore struct {
	pending map[string]*domain.PendingChallenge
}

func newMockChallengeStore() *mockChallengeStore {
	return &mockChallengeStore{pending: make(map[string]*domain.PendingChallenge)}
}

func (m *mockChallengeStore) Create(ctx context.Context, c *domain.PendingChallenge) error {
	m.pending[c.AzulOrderID] = c
	return nil
}

func (m *mockChallengeStore) Find(ctx context.Context, azulOrderID string) (*domain.PendingChallenge, error) {
	return m.pending[azulOrderID], nil
}

func (m *mockChallengeStore) Consume(ctx context.Context, azulOrderID string) (*domain.PendingChallenge, error) {
	c := m.pending[azulOrderID]
	delete(m.pending, azulOrderID)
	return c, nil
}

// mockBillingStore records the billing run's ledger writes.
type mockBillingStore struct {
	due       []*repository.DueSubscription
	claimed   map[string]bool // pre-claimed rows report false from ClaimForBilling
	successes []*domain.PaymentHistory
	failures  []*domain.PaymentHistory
	pastDue   []string
	claims    []string
}

func newMockBillingStore(due ...*repository.DueSubscription) *mockBillingStore {
	return &mockBillingStore{due: due, claimed: make(map[string]bool)}
}

func (m *mockBillingStore) FindDueBetween(ctx context.Context, from, to time.Time) ([]*repository.DueSubscription, error) {
	return m.due, nil
}

func (m *mockBillingStore) ClaimForBilling(ctx context.Context, id string, now, cutoff time.Time) (bool, error) {
	if m.claimed[id] {
		return false, nil
	}
	m.claimed[id] = true
	m.claims = append(m.claims, id)
	return true, nil
}

func (m *mockBillingStore) RecordBillingSuccess(ctx context.Context, subID string, pay *domain.PaymentHistory, nextBilling time.Time) error {
	m.successes = append(m.successes, pay)
	return nil
}

func (m *mockBillingStore) RecordBillingFailure(ctx context.Context, subID, clientID string, pay *domain.PaymentHistory) error {
	m.failures = append(m.failures, pay)
	return nil
}

func (m *mockBillingStore) MarkPastDue(ctx context.Context, subID, clientID string) error {
	m.pastDue = append(m.pastDue, subID)
	return nil
}

// mockWebhookSubStore serves subscriptions by PayPal id.
type mockWebhookSubStore struct {
	byPayPalID map[string]*domain.Subscription
	statuses   map[string]string
	payments   []*domain.PaymentHistory
	advanced   map[string]time.Time
	cancelled  []string
}

func newMockWebhookSubStore() *mockWebhookSubStore {
	return &mockWebhookSubStore{
		byPayPalID: make(map[string]*domain.Subscription),
		statuses:   make(map[string]string),
		advanced:   make(map[string]time.Time),
	}
}

func (m *mockWebhookSubStore) FindByPayPalID(ctx context.Context, paypalID string) (*domain.Subscription, error) {
	return m.byPayPalID[paypalID], nil
}

func (m *mockWebhookSubStore) UpdateStatus(ctx context.Context, id, status string) error {
	m.statuses[id] = status
	return nil
}

func (m *mockWebhookSubStore) AdvanceBillingDate(ctx context.Context, id string, next time.Time) error {
	m.advanced[id] = next
	return nil
}

func (m *mockWebhookSubStore) InsertPayment(ctx context.Context, p *domain.PaymentHistory) error {
	m.payments = append(m.payments, p)
	return nil
}

func (m *mockWebhookSubStore) Cancel(ctx context.Context, id, clientID string, at time.Time) error {
	m.cancelled = append(m.cancelled, id)
	return nil
}

// mockClientStateStore records subscription-state mirroring onto clients.
type mockClientStateStore struct {
	states map[string]string // client id -> status
}

func newMockClientStateStore() *mockClientStateStore {
	return &mockClientStateStore{states: make(map[string]string)}
}

func (m *mockClientStateStore) SetSubscriptionState(ctx context.Context, id string, isSubscribed bool, status string) error {
	m.states[id] = status
	return nil
}
