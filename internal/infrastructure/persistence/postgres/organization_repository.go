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

// OrganizationRepository persists organizations and memberships. Credits are
// written only at creation; the ledger owns them afterwards.
type OrganizationRepository struct {
	pool *pgxpool.Pool
}

var _ ports.OrganizationRepository = (*OrganizationRepository)(nil)

func NewOrganizationRepository(pool *pgxpool.Pool) *OrganizationRepository {
	return &OrganizationRepository{pool: pool}
}

func (r *OrganizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	if org.CreatedAt.IsZero() {
		org.CreatedAt = time.Now()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO organizations
			(id, name, credits, plan, seats, invite_code, api_enabled, rpm, daily_jobs, max_api_keys, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`,
		org.ID.UUID, org.Name, org.Credits, string(org.Plan), org.Seats, org.InviteCode,
		org.APIEnabled, org.RPM, org.DailyJobs, org.MaxAPIKeys, org.CreatedAt,
	)
	return err
}

const orgColumns = `id, name, credits, plan, seats, invite_code, api_enabled, rpm, daily_jobs, max_api_keys, created_at, updated_at`

func (r *OrganizationRepository) GetByID(ctx context.Context, id domain.OrganizationID) (*domain.Organization, error) {
	return r.getOne(ctx, `SELECT `+orgColumns+` FROM organizations WHERE id = $1`, id.UUID)
}

func (r *OrganizationRepository) GetByInviteCode(ctx context.Context, code string) (*domain.Organization, error) {
	return r.getOne(ctx, `SELECT `+orgColumns+` FROM organizations WHERE invite_code = $1`, code)
}

func (r *OrganizationRepository) getOne(ctx context.Context, query string, arg any) (*domain.Organization, error) {
	var o domain.Organization
	var plan string
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&o.ID.UUID, &o.Name, &o.Credits, &plan, &o.Seats, &o.InviteCode,
		&o.APIEnabled, &o.RPM, &o.DailyJobs, &o.MaxAPIKeys, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	o.Plan = domain.PlanTier(plan)
	return &o, nil
}

func (r *OrganizationRepository) AddMember(ctx context.Context, orgID domain.OrganizationID, accountID domain.AccountID, role string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO org_members (org_id, account_id, role) VALUES ($1, $2, $3)
		 ON CONFLICT (org_id, account_id) DO NOTHING`,
		orgID.UUID, accountID.UUID, role,
	)
	return err
}

func (r *OrganizationRepository) GetMemberRole(ctx context.Context, orgID domain.OrganizationID, accountID domain.AccountID) (string, error) {
	var role string
	err := r.pool.QueryRow(ctx,
		`SELECT role FROM org_members WHERE org_id = $1 AND account_id = $2`,
		orgID.UUID, accountID.UUID,
	).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return role, nil
}

func (r *OrganizationRepository) AddSeats(ctx context.Context, orgID domain.OrganizationID, delta int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE organizations SET seats = seats + $2, updated_at = now() WHERE id = $1`,
		orgID.UUID, delta,
	)
	return err
}

// EnableAPI never downgrades: ceilings only move up, so re-applying an
// entitlement on a higher tier is harmless.
func (r *OrganizationRepository) EnableAPI(ctx context.Context, orgID domain.OrganizationID, plan domain.PlanTier, limits domain.PlanLimits) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE organizations SET
			api_enabled = true,
			plan = $2,
			rpm = GREATEST(rpm, $3),
			daily_jobs = GREATEST(daily_jobs, $4),
			max_api_keys = GREATEST(max_api_keys, $5),
			updated_at = now()
		 WHERE id = $1`,
		orgID.UUID, string(plan), limits.RPM, limits.DailyJobs, limits.MaxAPIKeys,
	)
	return err
}
