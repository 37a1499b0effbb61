package credits

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gautam2117/cliplingua/internal/domain"
	domerrors "github.com/Gautam2117/cliplingua/internal/domain/errors"
	"github.com/Gautam2117/cliplingua/internal/infrastructure/quota"
)

var errWorkFailed = errors.New("work failed")

type recordingEnqueuer struct {
	scopes  []domain.Scope
	amounts []int64
	reasons []string
	err     error
}

func (r *recordingEnqueuer) EnqueueRefundRetry(_ context.Context, scope domain.Scope, amount int64, reason string) error {
	r.scopes = append(r.scopes, scope)
	r.amounts = append(r.amounts, amount)
	r.reasons = append(r.reasons, reason)
	return r.err
}

// brokenRefundLedger reserves normally but fails every refund.
type brokenRefundLedger struct {
	*quota.MemoryLedger
}

func (b *brokenRefundLedger) RefundOrgCredits(context.Context, domain.OrganizationID, int64) (int64, error) {
	return 0, errors.New("connection reset")
}

func (b *brokenRefundLedger) RefundAccountCredits(context.Context, domain.AccountID, int64) (int64, error) {
	return 0, errors.New("connection reset")
}

func TestWithReservationKeepsDebitOnSuccess(t *testing.T) {
	ledger := quota.NewMemoryLedger()
	orgID := domain.NewOrganizationID(uuid.New())
	ledger.SetOrgBalance(orgID, 10)
	queue := &recordingEnqueuer{}
	reserver := NewReserver(ledger, queue, zerolog.Nop())

	err := reserver.WithReservation(context.Background(), domain.OrgScope(orgID), 4, func(context.Context) error {
		return nil
	})
	require.NoError(t, err)

	balance, _ := ledger.Balance(context.Background(), domain.OrgScope(orgID))
	assert.Equal(t, int64(6), balance)
	assert.Empty(t, queue.scopes)
}

func TestWithReservationRefundsOnWorkFailure(t *testing.T) {
	ledger := quota.NewMemoryLedger()
	orgID := domain.NewOrganizationID(uuid.New())
	ledger.SetOrgBalance(orgID, 10)
	reserver := NewReserver(ledger, &recordingEnqueuer{}, zerolog.Nop())

	err := reserver.WithReservation(context.Background(), domain.OrgScope(orgID), 4, func(context.Context) error {
		return errWorkFailed
	})
	assert.True(t, errors.Is(err, errWorkFailed))

	balance, _ := ledger.Balance(context.Background(), domain.OrgScope(orgID))
	assert.Equal(t, int64(10), balance)
}

func TestWithReservationSkipsWorkWhenBroke(t *testing.T) {
	ledger := quota.NewMemoryLedger()
	orgID := domain.NewOrganizationID(uuid.New())
	ledger.SetOrgBalance(orgID, 1)
	reserver := NewReserver(ledger, &recordingEnqueuer{}, zerolog.Nop())

	invoked := false
	err := reserver.WithReservation(context.Background(), domain.OrgScope(orgID), 5, func(context.Context) error {
		invoked = true
		return nil
	})
	var insufficient *domerrors.InsufficientFundsError
	require.True(t, errors.As(err, &insufficient))
	assert.False(t, invoked)
}

func TestRefundFailureHandsOffToQueue(t *testing.T) {
	inner := quota.NewMemoryLedger()
	orgID := domain.NewOrganizationID(uuid.New())
	inner.SetOrgBalance(orgID, 10)
	queue := &recordingEnqueuer{}
	reserver := NewReserver(&brokenRefundLedger{MemoryLedger: inner}, queue, zerolog.Nop())

	err := reserver.WithReservation(context.Background(), domain.OrgScope(orgID), 4, func(context.Context) error {
		return errWorkFailed
	})
	assert.True(t, errors.Is(err, errWorkFailed))

	require.Len(t, queue.scopes, 1)
	assert.Equal(t, domain.OrgScope(orgID), queue.scopes[0])
	assert.Equal(t, int64(4), queue.amounts[0])
	assert.Contains(t, queue.reasons[0], "work failed")
}
