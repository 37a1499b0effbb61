package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gautam2117/cliplingua/internal/application/ports"
	"github.com/Gautam2117/cliplingua/internal/domain"
)

// APIKeyRepository persists org API keys.
type APIKeyRepository struct {
	pool *pgxpool.Pool
}

var _ ports.APIKeyRepository = (*APIKeyRepository)(nil)

func NewAPIKeyRepository(pool *pgxpool.Pool) *APIKeyRepository {
	return &APIKeyRepository{pool: pool}
}

func (r *APIKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO api_keys (id, org_id, prefix, token_hash, label, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		key.ID.UUID, key.OrgID.UUID, key.Prefix, key.TokenHash, key.Label, key.CreatedAt,
	)
	return err
}

func (r *APIKeyRepository) GetByPrefix(ctx context.Context, prefix string) (*domain.APIKey, error) {
	var k domain.APIKey
	err := r.pool.QueryRow(ctx,
		`SELECT id, org_id, prefix, token_hash, label, created_at, revoked_at
		 FROM api_keys WHERE prefix = $1`,
		prefix,
	).Scan(&k.ID.UUID, &k.OrgID.UUID, &k.Prefix, &k.TokenHash, &k.Label, &k.CreatedAt, &k.RevokedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func (r *APIKeyRepository) ListByOrg(ctx context.Context, orgID domain.OrganizationID) ([]*domain.APIKey, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, org_id, prefix, token_hash, label, created_at, revoked_at
		 FROM api_keys WHERE org_id = $1 ORDER BY created_at`,
		orgID.UUID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.APIKey
	for rows.Next() {
		var k domain.APIKey
		if err := rows.Scan(&k.ID.UUID, &k.OrgID.UUID, &k.Prefix, &k.TokenHash, &k.Label, &k.CreatedAt, &k.RevokedAt); err != nil {
			return nil, err
		}
		out = append(out, &k)
	}
	return out, rows.Err()
}

func (r *APIKeyRepository) CountActive(ctx context.Context, orgID domain.OrganizationID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM api_keys WHERE org_id = $1 AND revoked_at IS NULL`,
		orgID.UUID,
	).Scan(&n)
	return n, err
}

func (r *APIKeyRepository) Revoke(ctx context.Context, orgID domain.OrganizationID, keyID domain.APIKeyID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE api_keys SET revoked_at = now() WHERE id = $1 AND org_id = $2 AND revoked_at IS NULL`,
		keyID.UUID, orgID.UUID,
	)
	return err
}
