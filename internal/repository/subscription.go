package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/adolfofidel/afdevs-admin/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// execer is satisfied by both *pgxpool.Pool and pgx.Tx, so the row writers
// below can run standalone or inside a workflow transaction.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

const subscriptionColumns = `id, client_id, status, plan_name, price_usd, azul_token,
	azul_order_id, paypal_subscription_id, started_at, next_billing_date, cancelled_at,
	billing_attempted_at`

// SubscriptionRepository handles database operations for subscriptions and
// the ledger writes that must stay consistent with them.
type SubscriptionRepository struct {
	db *pgxpool.Pool
}

// NewSubscriptionRepository creates a new SubscriptionRepository.
func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var s domain.Subscription
	err := row.Scan(
		&s.ID, &s.ClientID, &s.Status, &s.PlanName, &s.PriceUSD, &s.AzulToken,
		&s.AzulOrderID, &s.PayPalSubscriptionID, &s.StartedAt, &s.NextBillingDate,
		&s.CancelledAt, &s.BillingAttemptedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan subscription: %w", err)
	}
	return &s, nil
}

func insertSubscription(ctx context.Context, tx execer, s *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, client_id, status, plan_name, price_usd, azul_token,
			azul_order_id, paypal_subscription_id, started_at, next_billing_date, cancelled_at,
			billing_attempted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := tx.Exec(ctx, query,
		s.ID, s.ClientID, s.Status, s.PlanName, s.PriceUSD, s.AzulToken,
		s.AzulOrderID, s.PayPalSubscriptionID, s.StartedAt, s.NextBillingDate,
		s.CancelledAt, s.BillingAttemptedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

func insertPayment(ctx context.Context, tx execer, p *domain.PaymentHistory) error {
	query := `
		INSERT INTO payment_history (id, subscription_id, client_id, amount_usd, amount_itbis,
			azul_transaction_id, azul_authorization_code, paypal_transaction_id, status, payment_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := tx.Exec(ctx, query,
		p.ID, p.SubscriptionID, p.ClientID, p.AmountUSD, p.AmountITBIS,
		p.AzulTransactionID, p.AzulAuthorizationCode, p.PayPalTransactionID,
		p.Status, p.PaymentDate,
	)
	if err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}
	return nil
}

func updateClientState(ctx context.Context, tx execer, clientID string, isSubscribed bool, status string, azulToken *string) error {
	var err error
	if azulToken != nil {
		_, err = tx.Exec(ctx,
			`UPDATE clients SET is_subscribed = $2, subscription_status = $3, azul_customer_token = $4, updated_at = NOW() WHERE id = $1`,
			clientID, isSubscribed, status, azulToken)
	} else {
		_, err = tx.Exec(ctx,
			`UPDATE clients SET is_subscribed = $2, subscription_status = $3, updated_at = NOW() WHERE id = $1`,
			clientID, isSubscribed, status)
	}
	if err != nil {
		return fmt.Errorf("failed to update client state: %w", err)
	}
	return nil
}

// FindByID returns a subscription by ID, or nil if absent.
func (r *SubscriptionRepository) FindByID(ctx context.Context, id string) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	return scanSubscription(r.db.QueryRow(ctx, query, id))
}

// FindCurrentByClient returns the client's most recent non-cancelled
// subscription, or nil if none exists.
func (r *SubscriptionRepository) FindCurrentByClient(ctx context.Context, clientID string) (*domain.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + ` FROM subscriptions
		WHERE client_id = $1 AND status != 'cancelled'
		ORDER BY started_at DESC LIMIT 1
	`
	return scanSubscription(r.db.QueryRow(ctx, query, clientID))
}

// FindByPayPalID returns the subscription carrying the given provider
// subscription identifier, or nil if absent.
func (r *SubscriptionRepository) FindByPayPalID(ctx context.Context, paypalID string) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE paypal_subscription_id = $1`
	return scanSubscription(r.db.QueryRow(ctx, query, paypalID))
}

// ListAll returns every subscription, newest first, for the dashboard.
func (r *SubscriptionRepository) ListAll(ctx context.Context) ([]*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions ORDER BY started_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*domain.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, nil
}

// DueSubscription is a subscription due for billing joined with its owning
// client's fallback card token.
type DueSubscription struct {
	domain.Subscription
	ClientToken *string
}

// FindDueBetween returns active subscriptions whose next billing date falls
// in the half-open interval [from, to).
func (r *SubscriptionRepository) FindDueBetween(ctx context.Context, from, to time.Time) ([]*DueSubscription, error) {
	query := `
		SELECT s.id, s.client_id, s.status, s.plan_name, s.price_usd, s.azul_token,
			s.azul_order_id, s.paypal_subscription_id, s.started_at, s.next_billing_date,
			s.cancelled_at, s.billing_attempted_at, c.azul_customer_token
		FROM subscriptions s
		JOIN clients c ON c.id = s.client_id
		WHERE s.status = 'active' AND s.next_billing_date >= $1 AND s.next_billing_date < $2
		ORDER BY s.next_billing_date ASC
	`
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query due subscriptions: %w", err)
	}
	defer rows.Close()

	var due []*DueSubscription
	for rows.Next() {
		var d DueSubscription
		err := rows.Scan(
			&d.ID, &d.ClientID, &d.Status, &d.PlanName, &d.PriceUSD, &d.AzulToken,
			&d.AzulOrderID, &d.PayPalSubscriptionID, &d.StartedAt, &d.NextBillingDate,
			&d.CancelledAt, &d.BillingAttemptedAt, &d.ClientToken,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan due subscription: %w", err)
		}
		due = append(due, &d)
	}
	return due, nil
}

// ClaimForBilling atomically marks a subscription as attempted for the
// current billing day. It returns false when another invocation already
// claimed the row on or after the cutoff, so a repeated batch run in the
// same day cannot charge the subscription twice.
func (r *SubscriptionRepository) ClaimForBilling(ctx context.Context, id string, now, cutoff time.Time) (bool, error) {
	query := `
		UPDATE subscriptions SET billing_attempted_at = $2
		WHERE id = $1 AND status = 'active'
			AND (billing_attempted_at IS NULL OR billing_attempted_at < $3)
	`
	tag, err := r.db.Exec(ctx, query, id, now, cutoff)
	if err != nil {
		return false, fmt.Errorf("failed to claim subscription for billing: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// RecordActivation performs the three ledger writes that follow a successful
// initial charge in a single transaction: insert the subscription, insert
// its completed payment row, and flip the client's subscription flags.
func (r *SubscriptionRepository) RecordActivation(ctx context.Context, sub *domain.Subscription, pay *domain.PaymentHistory) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertSubscription(ctx, tx, sub); err != nil {
		return err
	}
	if err := insertPayment(ctx, tx, pay); err != nil {
		return err
	}
	if err := updateClientState(ctx, tx, sub.ClientID, true, domain.SubActive, sub.AzulToken); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit activation: %w", err)
	}
	return nil
}

// RecordBillingSuccess writes the outcome of an approved recurring charge:
// a completed payment row, the advanced next billing date, and an active
// status, in one transaction.
func (r *SubscriptionRepository) RecordBillingSuccess(ctx context.Context, subID string, pay *domain.PaymentHistory, nextBilling time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertPayment(ctx, tx, pay); err != nil {
		return err
	}
	_, err = tx.Exec(ctx,
		`UPDATE subscriptions SET next_billing_date = $2, status = 'active' WHERE id = $1`,
		subID, nextBilling)
	if err != nil {
		return fmt.Errorf("failed to advance billing date: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit billing success: %w", err)
	}
	return nil
}

// RecordBillingFailure writes the outcome of a declined recurring charge: a
// failed payment row and past_due status on both the subscription and the
// owning client, in one transaction.
func (r *SubscriptionRepository) RecordBillingFailure(ctx context.Context, subID, clientID string, pay *domain.PaymentHistory) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertPayment(ctx, tx, pay); err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `UPDATE subscriptions SET status = 'past_due' WHERE id = $1`, subID)
	if err != nil {
		return fmt.Errorf("failed to mark subscription past_due: %w", err)
	}
	_, err = tx.Exec(ctx,
		`UPDATE clients SET subscription_status = 'past_due', updated_at = NOW() WHERE id = $1`,
		clientID)
	if err != nil {
		return fmt.Errorf("failed to mark client past_due: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit billing failure: %w", err)
	}
	return nil
}

// MarkPastDue sets past_due on a subscription and mirrors it to the owning
// client. Used when no charge could even be attempted (missing token); no
// payment row is written.
func (r *SubscriptionRepository) MarkPastDue(ctx context.Context, subID, clientID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `UPDATE subscriptions SET status = 'past_due' WHERE id = $1`, subID)
	if err != nil {
		return fmt.Errorf("failed to mark subscription past_due: %w", err)
	}
	_, err = tx.Exec(ctx,
		`UPDATE clients SET subscription_status = 'past_due', updated_at = NOW() WHERE id = $1`,
		clientID)
	if err != nil {
		return fmt.Errorf("failed to mark client past_due: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit past_due: %w", err)
	}
	return nil
}

// UpdateStatus sets a subscription's status.
func (r *SubscriptionRepository) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.db.Exec(ctx, `UPDATE subscriptions SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update subscription status: %w", err)
	}
	return nil
}

// Cancel marks a subscription cancelled and clears the client's
// subscription flags in one transaction.
func (r *SubscriptionRepository) Cancel(ctx context.Context, id, clientID string, at time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE subscriptions SET status = 'cancelled', cancelled_at = $2 WHERE id = $1`,
		id, at)
	if err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}
	if err := updateClientState(ctx, tx, clientID, false, domain.SubCancelled, nil); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit cancellation: %w", err)
	}
	return nil
}

// AdvanceBillingDate moves the next billing date forward. Used by webhook
// reconciliation after a provider-confirmed payment.
func (r *SubscriptionRepository) AdvanceBillingDate(ctx context.Context, id string, next time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE subscriptions SET next_billing_date = $2 WHERE id = $1`, id, next)
	if err != nil {
		return fmt.Errorf("failed to advance billing date: %w", err)
	}
	return nil
}

// InsertPayment writes a standalone payment history row outside any
// workflow transaction (webhook reconciliation).
func (r *SubscriptionRepository) InsertPayment(ctx context.Context, p *domain.PaymentHistory) error {
	return insertPayment(ctx, r.db, p)
}
