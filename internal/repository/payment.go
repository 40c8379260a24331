package repository

import (
	"context"
	"fmt"

	"github.com/adolfofidel/afdevs-admin/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

const paymentColumns = `id, subscription_id, client_id, amount_usd, amount_itbis,
	azul_transaction_id, azul_authorization_code, paypal_transaction_id, status, payment_date`

// PaymentRepository reads the append-only payment history ledger. Writes go
// through SubscriptionRepository so they stay transactional with the
// subscription state they record.
type PaymentRepository struct {
	db *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// ListByClient returns a client's payment history, newest first.
func (r *PaymentRepository) ListByClient(ctx context.Context, clientID string) ([]*domain.PaymentHistory, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_history WHERE client_id = $1 ORDER BY payment_date DESC`
	return r.list(ctx, query, clientID)
}

// ListBySubscription returns a subscription's payment history, newest first.
func (r *PaymentRepository) ListBySubscription(ctx context.Context, subscriptionID string) ([]*domain.PaymentHistory, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_history WHERE subscription_id = $1 ORDER BY payment_date DESC`
	return r.list(ctx, query, subscriptionID)
}

func (r *PaymentRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.PaymentHistory, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*domain.PaymentHistory
	for rows.Next() {
		var p domain.PaymentHistory
		err := rows.Scan(
			&p.ID, &p.SubscriptionID, &p.ClientID, &p.AmountUSD, &p.AmountITBIS,
			&p.AzulTransactionID, &p.AzulAuthorizationCode, &p.PayPalTransactionID,
			&p.Status, &p.PaymentDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, &p)
	}
	return payments, nil
}
