package repository

import (
	"context"
	"fmt"

	"github.com/adolfofidel/afdevs-admin/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChallengeRepository persists sales halted by a 3-D-Secure step-up so the
// charge flow can be resumed after the cardholder authenticates.
type ChallengeRepository struct {
	db *pgxpool.Pool
}

// NewChallengeRepository creates a new ChallengeRepository.
func NewChallengeRepository(db *pgxpool.Pool) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

// Create records a pending challenge keyed by the gateway's order id.
func (r *ChallengeRepository) Create(ctx context.Context, c *domain.PendingChallenge) error {
	query := `
		INSERT INTO pending_challenges (azul_order_id, client_id, price_usd, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query, c.AzulOrderID, c.ClientID, c.PriceUSD, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create pending challenge: %w", err)
	}
	return nil
}

// Find returns a pending challenge by gateway order id, or nil if absent.
func (r *ChallengeRepository) Find(ctx context.Context, azulOrderID string) (*domain.PendingChallenge, error) {
	query := `SELECT azul_order_id, client_id, price_usd, created_at FROM pending_challenges WHERE azul_order_id = $1`
	return scanChallenge(r.db.QueryRow(ctx, query, azulOrderID))
}

// Consume atomically deletes and returns a pending challenge, or nil if it
// was already consumed. At most one caller per order id ever gets the row
// back, so a replayed completion request cannot activate twice.
func (r *ChallengeRepository) Consume(ctx context.Context, azulOrderID string) (*domain.PendingChallenge, error) {
	query := `
		DELETE FROM pending_challenges WHERE azul_order_id = $1
		RETURNING azul_order_id, client_id, price_usd, created_at
	`
	return scanChallenge(r.db.QueryRow(ctx, query, azulOrderID))
}

func scanChallenge(row pgx.Row) (*domain.PendingChallenge, error) {
	var c domain.PendingChallenge
	err := row.Scan(&c.AzulOrderID, &c.ClientID, &c.PriceUSD, &c.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan pending challenge: %w", err)
	}
	return &c, nil
}
