package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gautam2117/cliplingua/internal/application/ports"
	"github.com/Gautam2117/cliplingua/internal/domain"
	domerrors "github.com/Gautam2117/cliplingua/internal/domain/errors"
)

// Ledger is the postgres adapter for balances and rate counters. Every
// mutation is a single conditional statement (or one transaction for the
// two-counter upsert), so concurrent requests against the same scope are
// totally ordered by the database — there is no application-side
// read-modify-write anywhere in this file.
type Ledger struct {
	pool *pgxpool.Pool
}

var _ ports.Ledger = (*Ledger)(nil)

// NewLedger creates the adapter.
func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

func (l *Ledger) ReserveAccountCredits(ctx context.Context, accountID domain.AccountID, amount int64) (int64, error) {
	return l.reserve(ctx, "accounts", accountID.UUID, amount, "account")
}

func (l *Ledger) RefundAccountCredits(ctx context.Context, accountID domain.AccountID, amount int64) (int64, error) {
	return l.refund(ctx, "accounts", accountID.UUID, amount)
}

func (l *Ledger) ReserveOrgCredits(ctx context.Context, orgID domain.OrganizationID, amount int64) (int64, error) {
	return l.reserve(ctx, "organizations", orgID.UUID, amount, "org")
}

func (l *Ledger) RefundOrgCredits(ctx context.Context, orgID domain.OrganizationID, amount int64) (int64, error) {
	return l.refund(ctx, "organizations", orgID.UUID, amount)
}

// reserve decrements only if the result stays non-negative. A no-row result
// means either a shortfall or a missing row; one probe distinguishes them.
func (l *Ledger) reserve(ctx context.Context, table string, id uuid.UUID, amount int64, scope string) (int64, error) {
	var balance int64
	err := l.pool.QueryRow(ctx,
		fmt.Sprintf(`UPDATE %s SET credits = credits - $2, updated_at = now()
			WHERE id = $1 AND credits >= $2
			RETURNING credits`, table),
		id, amount,
	).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		var current int64
		err = l.pool.QueryRow(ctx,
			fmt.Sprintf(`SELECT credits FROM %s WHERE id = $1`, table), id,
		).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domerrors.ErrProfileMissing
		}
		if err != nil {
			return 0, fmt.Errorf("reserve probe: %w", err)
		}
		return 0, &domerrors.InsufficientFundsError{Scope: scope, Needed: amount, Balance: current}
	}
	if err != nil {
		return 0, fmt.Errorf("reserve: %w", err)
	}
	return balance, nil
}

func (l *Ledger) refund(ctx context.Context, table string, id uuid.UUID, amount int64) (int64, error) {
	var balance int64
	err := l.pool.QueryRow(ctx,
		fmt.Sprintf(`UPDATE %s SET credits = credits + $2, updated_at = now()
			WHERE id = $1
			RETURNING credits`, table),
		id, amount,
	).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domerrors.ErrProfileMissing
	}
	if err != nil {
		return 0, fmt.Errorf("refund: %w", err)
	}
	return balance, nil
}

// ConsumeRateLimit upserts both counters in one statement inside a
// transaction. Bucket staleness is decided by comparing the stored bucket
// start with the one derived from now, so past buckets are logically zero
// without any background reset job. A ceiling breach rolls the transaction
// back: the rejected attempt is not retained.
func (l *Ledger) ConsumeRateLimit(ctx context.Context, orgID domain.OrganizationID, now time.Time, n, rpm, daily int64) error {
	now = now.UTC()
	minute := now.Truncate(time.Minute)
	day := now.Truncate(24 * time.Hour)

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("rate limit begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var minuteCount, dayCount int64
	err = tx.QueryRow(ctx, `
		INSERT INTO usage_counters AS u (org_id, minute_start, minute_count, day_start, day_count, updated_at)
		VALUES ($1, $2, $3, $4, $3, now())
		ON CONFLICT (org_id) DO UPDATE SET
			minute_count = CASE WHEN u.minute_start = EXCLUDED.minute_start
				THEN u.minute_count + EXCLUDED.minute_count ELSE EXCLUDED.minute_count END,
			minute_start = EXCLUDED.minute_start,
			day_count = CASE WHEN u.day_start = EXCLUDED.day_start
				THEN u.day_count + EXCLUDED.day_count ELSE EXCLUDED.day_count END,
			day_start = EXCLUDED.day_start,
			updated_at = now()
		RETURNING minute_count, day_count`,
		orgID.UUID, minute, n, day,
	).Scan(&minuteCount, &dayCount)
	if err != nil {
		return fmt.Errorf("rate limit consume: %w", err)
	}
	if rpm > 0 && minuteCount > rpm {
		return &domerrors.RateLimitError{Window: domerrors.WindowMinute, Limit: rpm}
	}
	if daily > 0 && dayCount > daily {
		return &domerrors.RateLimitError{Window: domerrors.WindowDay, Limit: daily}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("rate limit commit: %w", err)
	}
	return nil
}

func (l *Ledger) Balance(ctx context.Context, scope domain.Scope) (int64, error) {
	table := "accounts"
	if scope.Kind == domain.ScopeOrg {
		table = "organizations"
	}
	var balance int64
	err := l.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT credits FROM %s WHERE id = $1`, table), scope.ID,
	).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domerrors.ErrProfileMissing
	}
	if err != nil {
		return 0, fmt.Errorf("balance: %w", err)
	}
	return balance, nil
}

// Usage is read-only; stale buckets read as zero without being rewritten.
func (l *Ledger) Usage(ctx context.Context, orgID domain.OrganizationID, now time.Time) (domain.Usage, error) {
	now = now.UTC()
	minute := now.Truncate(time.Minute)
	day := now.Truncate(24 * time.Hour)

	var u domain.Usage
	var minuteStart, dayStart time.Time
	var minuteCount, dayCount int64
	err := l.pool.QueryRow(ctx,
		`SELECT minute_start, minute_count, day_start, day_count FROM usage_counters WHERE org_id = $1`,
		orgID.UUID,
	).Scan(&minuteStart, &minuteCount, &dayStart, &dayCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, nil
	}
	if err != nil {
		return u, fmt.Errorf("usage: %w", err)
	}
	if minuteStart.Equal(minute) {
		u.MinuteCount = minuteCount
	}
	if dayStart.Equal(day) {
		u.DayCount = dayCount
	}
	return u, nil
}
