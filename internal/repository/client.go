package repository

import (
	"context"
	"fmt"

	"github.com/adolfofidel/afdevs-admin/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const clientColumns = `id, name, company_name, primary_email, primary_phone, billing_address,
	is_active, is_subscribed, subscription_status, azul_customer_token, created_at, updated_at`

// ClientRepository handles database operations for clients.
type ClientRepository struct {
	db *pgxpool.Pool
}

// NewClientRepository creates a new ClientRepository.
func NewClientRepository(db *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{db: db}
}

func scanClient(row pgx.Row) (*domain.Client, error) {
	var c domain.Client
	err := row.Scan(
		&c.ID, &c.Name, &c.CompanyName, &c.PrimaryEmail, &c.PrimaryPhone, &c.BillingAddress,
		&c.IsActive, &c.IsSubscribed, &c.SubscriptionStatus, &c.AzulCustomerToken,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan client: %w", err)
	}
	return &c, nil
}

// Create inserts a new client.
func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	query := `
		INSERT INTO clients (id, name, company_name, primary_email, primary_phone, billing_address,
			is_active, is_subscribed, subscription_status, azul_customer_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.Exec(ctx, query,
		c.ID, c.Name, c.CompanyName, c.PrimaryEmail, c.PrimaryPhone, c.BillingAddress,
		c.IsActive, c.IsSubscribed, c.SubscriptionStatus, c.AzulCustomerToken,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// FindByID returns a client by ID, or nil if absent.
func (r *ClientRepository) FindByID(ctx context.Context, id string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	return scanClient(r.db.QueryRow(ctx, query, id))
}

// FindByEmail returns a client by primary email, or nil if absent. Used to
// resolve the portal user behind an identity-provider token.
func (r *ClientRepository) FindByEmail(ctx context.Context, email string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE primary_email = $1`
	return scanClient(r.db.QueryRow(ctx, query, email))
}

// ListAll returns all clients ordered by name.
func (r *ClientRepository) ListAll(ctx context.Context) ([]*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []*domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, nil
}

// Update applies the non-nil fields of the request to a client row.
func (r *ClientRepository) Update(ctx context.Context, id string, req *domain.UpdateClientRequest) error {
	query := `
		UPDATE clients SET
			name            = COALESCE($2, name),
			company_name    = COALESCE($3, company_name),
			primary_email   = COALESCE($4, primary_email),
			primary_phone   = COALESCE($5, primary_phone),
			billing_address = COALESCE($6, billing_address),
			is_active       = COALESCE($7, is_active),
			updated_at      = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id,
		req.Name, req.CompanyName, req.PrimaryEmail, req.PrimaryPhone, req.BillingAddress, req.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	return nil
}

// Delete removes a client by ID.
func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}

// SetSubscriptionState updates the client-level subscription mirror fields.
func (r *ClientRepository) SetSubscriptionState(ctx context.Context, id string, isSubscribed bool, status string) error {
	query := `UPDATE clients SET is_subscribed = $2, subscription_status = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, isSubscribed, status)
	if err != nil {
		return fmt.Errorf("failed to update client subscription state: %w", err)
	}
	return nil
}

// Search returns clients whose name or company matches the query, for the
// dashboard type-ahead box.
func (r *ClientRepository) Search(ctx context.Context, q string, limit int) ([]*domain.Client, error) {
	query := `
		SELECT ` + clientColumns + ` FROM clients
		WHERE name ILIKE '%' || $1 || '%' OR company_name ILIKE '%' || $1 || '%'
		ORDER BY name ASC LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search clients: %w", err)
	}
	defer rows.Close()

	var clients []*domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, nil
}
