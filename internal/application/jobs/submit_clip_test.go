package jobs

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

func TestSubmitClipHappyPath(t *testing.T) {
	ledger := quota.NewMemoryLedger()
	accountID := domain.NewAccountID(uuid.New())
	ledger.SetAccountBalance(accountID, 10)
	worker := &fakeWorker{}
	repo := newFakeJobRepo()
	uc := NewSubmitClip(worker, repo, newTestReserver(ledger), zerolog.Nop())

	job, err := uc.Execute(context.Background(), SubmitClipInput{
		AccountID: &accountID,
		OrgID:     domain.NewOrganizationID(uuid.New()),
		Scope:     domain.AccountScope(accountID),
		URL:       "https://example.com/v.mp4",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.JobSubmitted, job.Status)
	assert.Equal(t, ClipCost, job.CreditsSpent)
	assert.NotEmpty(t, job.WorkerJobID)
	assert.Equal(t, 1, repo.count())

	balance, err := ledger.Balance(context.Background(), domain.AccountScope(accountID))
	require.NoError(t, err)
	assert.Equal(t, int64(9), balance)
}

func TestSubmitClipWorkerFailureChargesNothing(t *testing.T) {
	ledger := quota.NewMemoryLedger()
	accountID := domain.NewAccountID(uuid.New())
	ledger.SetAccountBalance(accountID, 10)
	worker := &fakeWorker{createErr: domerrors.ErrWorkerUnavailable}
	repo := newFakeJobRepo()
	uc := NewSubmitClip(worker, repo, newTestReserver(ledger), zerolog.Nop())

	_, err := uc.Execute(context.Background(), SubmitClipInput{
		AccountID: &accountID,
		OrgID:     domain.NewOrganizationID(uuid.New()),
		Scope:     domain.AccountScope(accountID),
		URL:       "https://example.com/v.mp4",
	})
	assert.True(t, errors.Is(err, domerrors.ErrWorkerUnavailable))
	assert.Equal(t, 0, repo.count())

	balance, _ := ledger.Balance(context.Background(), domain.AccountScope(accountID))
	assert.Equal(t, int64(10), balance)
}

func TestSubmitClipInsufficientFunds(t *testing.T) {
	ledger := quota.NewMemoryLedger()
	accountID := domain.NewAccountID(uuid.New())
	ledger.SetAccountBalance(accountID, 0)
	worker := &fakeWorker{}
	repo := newFakeJobRepo()
	uc := NewSubmitClip(worker, repo, newTestReserver(ledger), zerolog.Nop())

	_, err := uc.Execute(context.Background(), SubmitClipInput{
		AccountID: &accountID,
		OrgID:     domain.NewOrganizationID(uuid.New()),
		Scope:     domain.AccountScope(accountID),
		URL:       "https://example.com/v.mp4",
	})
	assert.True(t, errors.Is(err, domerrors.ErrInsufficientFunds))
	// The worker job was created before the reservation failed; that leak is
	// accepted, but no record and no charge may exist.
	assert.Equal(t, 0, repo.count())
	balance, _ := ledger.Balance(context.Background(), domain.AccountScope(accountID))
	assert.Equal(t, int64(0), balance)
}

func TestSubmitClipPersistFailureRefunds(t *testing.T) {
	ledger := quota.NewMemoryLedger()
	accountID := domain.NewAccountID(uuid.New())
	ledger.SetAccountBalance(accountID, 10)
	worker := &fakeWorker{}
	repo := newFakeJobRepo()
	repo.createErr = errBoom
	uc := NewSubmitClip(worker, repo, newTestReserver(ledger), zerolog.Nop())

	_, err := uc.Execute(context.Background(), SubmitClipInput{
		AccountID: &accountID,
		OrgID:     domain.NewOrganizationID(uuid.New()),
		Scope:     domain.AccountScope(accountID),
		URL:       "https://example.com/v.mp4",
	})
	assert.True(t, errors.Is(err, errBoom))

	balance, _ := ledger.Balance(context.Background(), domain.AccountScope(accountID))
	assert.Equal(t, int64(10), balance)
}

func TestSubmitClipOrgScope(t *testing.T) {
	ledger := quota.NewMemoryLedger()
	orgID := domain.NewOrganizationID(uuid.New())
	ledger.SetOrgBalance(orgID, 5)
	worker := &fakeWorker{}
	repo := newFakeJobRepo()
	uc := NewSubmitClip(worker, repo, newTestReserver(ledger), zerolog.Nop())

	job, err := uc.Execute(context.Background(), SubmitClipInput{
		OrgID: orgID,
		Scope: domain.OrgScope(orgID),
		URL:   "https://example.com/v.mp4",
	})
	require.NoError(t, err)
	assert.Nil(t, job.AccountID)

	balance, _ := ledger.Balance(context.Background(), domain.OrgScope(orgID))
	assert.Equal(t, int64(4), balance)
}
