// Package quota provides an in-memory Ledger for single-node deployments and
// tests. Multi-instance deployments use the postgres adapter; the contract is
// identical.
package quota

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Gautam2117/cliplingua/internal/application/ports"
	"github.com/Gautam2117/cliplingua/internal/domain"
	domerrors "github.com/Gautam2117/cliplingua/internal/domain/errors"
)

type counter struct {
	minuteStart time.Time
	minuteCount int64
	day         time.Time
	dayCount    int64
}

// MemoryLedger keeps balances and rate counters under one mutex, which gives
// the same total ordering per scope that the postgres adapter gets from
// row-level atomicity.
type MemoryLedger struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]int64
	orgs     map[uuid.UUID]int64
	counters map[uuid.UUID]*counter
}

var _ ports.Ledger = (*MemoryLedger)(nil)

// NewMemoryLedger creates an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		accounts: make(map[uuid.UUID]int64),
		orgs:     make(map[uuid.UUID]int64),
		counters: make(map[uuid.UUID]*counter),
	}
}

// SetAccountBalance seeds (or resets) an account balance row.
func (l *MemoryLedger) SetAccountBalance(id domain.AccountID, balance int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[id.UUID] = balance
}

// SetOrgBalance seeds (or resets) an organization balance row.
func (l *MemoryLedger) SetOrgBalance(id domain.OrganizationID, balance int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.orgs[id.UUID] = balance
}

func (l *MemoryLedger) ReserveAccountCredits(_ context.Context, accountID domain.AccountID, amount int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return reserve(l.accounts, accountID.UUID, amount, "account")
}

func (l *MemoryLedger) RefundAccountCredits(_ context.Context, accountID domain.AccountID, amount int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return refund(l.accounts, accountID.UUID, amount)
}

func (l *MemoryLedger) ReserveOrgCredits(_ context.Context, orgID domain.OrganizationID, amount int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return reserve(l.orgs, orgID.UUID, amount, "org")
}

func (l *MemoryLedger) RefundOrgCredits(_ context.Context, orgID domain.OrganizationID, amount int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return refund(l.orgs, orgID.UUID, amount)
}

func reserve(balances map[uuid.UUID]int64, id uuid.UUID, amount int64, scope string) (int64, error) {
	balance, ok := balances[id]
	if !ok {
		return 0, domerrors.ErrProfileMissing
	}
	if balance < amount {
		return 0, &domerrors.InsufficientFundsError{Scope: scope, Needed: amount, Balance: balance}
	}
	balances[id] = balance - amount
	return balances[id], nil
}

func refund(balances map[uuid.UUID]int64, id uuid.UUID, amount int64) (int64, error) {
	balance, ok := balances[id]
	if !ok {
		return 0, domerrors.ErrProfileMissing
	}
	balances[id] = balance + amount
	return balances[id], nil
}

// ConsumeRateLimit increments both counters by n, deriving bucket freshness
// from now. A breach rolls the whole increment back; the rejected attempt is
// not charged against either window.
func (l *MemoryLedger) ConsumeRateLimit(_ context.Context, orgID domain.OrganizationID, now time.Time, n, rpm, daily int64) error {
	now = now.UTC()
	minute := now.Truncate(time.Minute)
	day := now.Truncate(24 * time.Hour)

	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.counters[orgID.UUID]
	if !ok {
		c = &counter{}
		l.counters[orgID.UUID] = c
	}
	if !c.minuteStart.Equal(minute) {
		c.minuteStart = minute
		c.minuteCount = 0
	}
	if !c.day.Equal(day) {
		c.day = day
		c.dayCount = 0
	}
	c.minuteCount += n
	c.dayCount += n
	if rpm > 0 && c.minuteCount > rpm {
		c.minuteCount -= n
		c.dayCount -= n
		return &domerrors.RateLimitError{Window: domerrors.WindowMinute, Limit: rpm}
	}
	if daily > 0 && c.dayCount > daily {
		c.minuteCount -= n
		c.dayCount -= n
		return &domerrors.RateLimitError{Window: domerrors.WindowDay, Limit: daily}
	}
	return nil
}

func (l *MemoryLedger) Balance(_ context.Context, scope domain.Scope) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	balances := l.accounts
	if scope.Kind == domain.ScopeOrg {
		balances = l.orgs
	}
	balance, ok := balances[scope.ID]
	if !ok {
		return 0, domerrors.ErrProfileMissing
	}
	return balance, nil
}

// Usage reads the counters, treating stale buckets as zero without writing.
func (l *MemoryLedger) Usage(_ context.Context, orgID domain.OrganizationID, now time.Time) (domain.Usage, error) {
	now = now.UTC()
	minute := now.Truncate(time.Minute)
	day := now.Truncate(24 * time.Hour)

	l.mu.Lock()
	defer l.mu.Unlock()

	var u domain.Usage
	c, ok := l.counters[orgID.UUID]
	if !ok {
		return u, nil
	}
	if c.minuteStart.Equal(minute) {
		u.MinuteCount = c.minuteCount
	}
	if c.day.Equal(day) {
		u.DayCount = c.dayCount
	}
	return u, nil
}
