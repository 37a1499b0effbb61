package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gautam2117/cliplingua/internal/application/ports"
	"github.com/Gautam2117/cliplingua/internal/domain"
)

// AccountRepository persists accounts. It writes credits only at row
// creation (the signup grant); all later balance changes go through the
// ledger.
type AccountRepository struct {
	pool *pgxpool.Pool
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) GetOrCreate(ctx context.Context, id domain.AccountID, signupCredits int64) (*domain.Account, bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO accounts (id, credits) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		id.UUID, signupCredits,
	)
	if err != nil {
		return nil, false, err
	}
	created := tag.RowsAffected() == 1
	account, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return account, created, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id domain.AccountID) (*domain.Account, error) {
	var a domain.Account
	var activeOrg uuid.NullUUID
	err := r.pool.QueryRow(ctx,
		`SELECT id, credits, active_org_id, created_at, updated_at FROM accounts WHERE id = $1`,
		id.UUID,
	).Scan(&a.ID.UUID, &a.Credits, &activeOrg, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if activeOrg.Valid {
		orgID := domain.NewOrganizationID(activeOrg.UUID)
		a.ActiveOrgID = &orgID
	}
	return &a, nil
}

func (r *AccountRepository) SetActiveOrg(ctx context.Context, id domain.AccountID, orgID domain.OrganizationID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE accounts SET active_org_id = $2, updated_at = now() WHERE id = $1`,
		id.UUID, orgID.UUID,
	)
	return err
}
