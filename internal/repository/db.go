package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewDB creates a new PostgreSQL connection pool.
func NewDB(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// RunMigrations executes the initial schema migration.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	query := `
		CREATE TABLE IF NOT EXISTS clients (
			id                  TEXT PRIMARY KEY,
			name                TEXT NOT NULL,
			company_name        TEXT,
			primary_email       TEXT,
			primary_phone       TEXT,
			billing_address     TEXT,
			is_active           BOOLEAN NOT NULL DEFAULT TRUE,
			is_subscribed       BOOLEAN NOT NULL DEFAULT FALSE,
			subscription_status TEXT,
			azul_customer_token TEXT,
			created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_clients_email ON clients(primary_email);

		CREATE TABLE IF NOT EXISTS sites (
			id                     TEXT PRIMARY KEY,
			client_id              TEXT REFERENCES clients(id),
			name                   TEXT NOT NULL,
			address                TEXT,
			city                   TEXT,
			region                 TEXT,
			status                 TEXT NOT NULL DEFAULT 'active',
			unifi_site_id          TEXT,
			google_drive_folder_id TEXT,
			created_at             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_sites_client_id ON sites(client_id);

		CREATE TABLE IF NOT EXISTS tasks (
			id              TEXT PRIMARY KEY,
			site_id         TEXT REFERENCES sites(id),
			title           TEXT NOT NULL,
			description     TEXT,
			status          TEXT NOT NULL DEFAULT 'pending',
			urgency         TEXT NOT NULL DEFAULT 'normal',
			task_type       TEXT,
			assignee_id     TEXT,
			scheduled_start TIMESTAMPTZ,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_tasks_site_id ON tasks(site_id);

		CREATE TABLE IF NOT EXISTS subscriptions (
			id                     TEXT PRIMARY KEY,
			client_id              TEXT NOT NULL REFERENCES clients(id),
			status                 TEXT NOT NULL,
			plan_name              TEXT NOT NULL,
			price_usd              INTEGER NOT NULL,
			azul_token             TEXT,
			azul_order_id          TEXT,
			paypal_subscription_id TEXT,
			started_at             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			next_billing_date      TIMESTAMPTZ,
			cancelled_at           TIMESTAMPTZ,
			billing_attempted_at   TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS idx_subscriptions_client_id ON subscriptions(client_id);
		CREATE INDEX IF NOT EXISTS idx_subscriptions_due ON subscriptions(status, next_billing_date);
		CREATE INDEX IF NOT EXISTS idx_subscriptions_paypal ON subscriptions(paypal_subscription_id);

		CREATE TABLE IF NOT EXISTS payment_history (
			id                      TEXT PRIMARY KEY,
			subscription_id         TEXT NOT NULL REFERENCES subscriptions(id),
			client_id               TEXT NOT NULL REFERENCES clients(id),
			amount_usd              DOUBLE PRECISION NOT NULL,
			amount_itbis            DOUBLE PRECISION,
			azul_transaction_id     TEXT,
			azul_authorization_code TEXT,
			paypal_transaction_id   TEXT,
			status                  TEXT NOT NULL,
			payment_date            TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_payment_history_subscription ON payment_history(subscription_id);
		CREATE INDEX IF NOT EXISTS idx_payment_history_client ON payment_history(client_id);

		CREATE TABLE IF NOT EXISTS pending_challenges (
			azul_order_id TEXT PRIMARY KEY,
			client_id     TEXT NOT NULL REFERENCES clients(id),
			price_usd     INTEGER NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`
	_, err := pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
