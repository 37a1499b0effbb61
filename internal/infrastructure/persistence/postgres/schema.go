package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables if they don't exist. The CHECK constraints
// on credits back the ledger's fail-closed contract at the storage layer too.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const q = `
		CREATE TABLE IF NOT EXISTS accounts (
			id UUID PRIMARY KEY,
			credits BIGINT NOT NULL DEFAULT 0 CHECK (credits >= 0),
			active_org_id UUID,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS organizations (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			credits BIGINT NOT NULL DEFAULT 0 CHECK (credits >= 0),
			plan TEXT NOT NULL DEFAULT 'free',
			seats INT NOT NULL DEFAULT 1,
			invite_code TEXT NOT NULL UNIQUE,
			api_enabled BOOLEAN NOT NULL DEFAULT false,
			rpm BIGINT NOT NULL DEFAULT 0,
			daily_jobs BIGINT NOT NULL DEFAULT 0,
			max_api_keys INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS org_members (
			org_id UUID NOT NULL REFERENCES organizations(id),
			account_id UUID NOT NULL REFERENCES accounts(id),
			role TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (org_id, account_id)
		);
		CREATE TABLE IF NOT EXISTS api_keys (
			id UUID PRIMARY KEY,
			org_id UUID NOT NULL REFERENCES organizations(id),
			prefix TEXT NOT NULL UNIQUE,
			token_hash TEXT NOT NULL,
			label TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			revoked_at TIMESTAMPTZ
		);
		CREATE TABLE IF NOT EXISTS jobs (
			id UUID PRIMARY KEY,
			kind TEXT NOT NULL DEFAULT 'clip',
			account_id UUID,
			org_id UUID NOT NULL REFERENCES organizations(id),
			url TEXT NOT NULL,
			worker_job_id TEXT NOT NULL,
			dub_lang TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			worker_error TEXT NOT NULL DEFAULT '',
			credits_spent BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			org_id UUID NOT NULL REFERENCES organizations(id),
			kind TEXT NOT NULL,
			seat_delta INT NOT NULL DEFAULT 0,
			amount_cents BIGINT NOT NULL,
			provider_order_id TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL DEFAULT 'created',
			payment_id TEXT NOT NULL DEFAULT '',
			paid_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS usage_counters (
			org_id UUID PRIMARY KEY REFERENCES organizations(id),
			minute_start TIMESTAMPTZ NOT NULL,
			minute_count BIGINT NOT NULL DEFAULT 0,
			day_start TIMESTAMPTZ NOT NULL,
			day_count BIGINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`
	if _, err := pool.Exec(ctx, q); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
