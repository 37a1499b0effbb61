package ports

import (
	"context"

	"github.com/Gautam2117/cliplingua/internal/domain"
)

// AccountRepository defines persistence for accounts. Credit balances are
// owned by the Ledger; repositories never touch them after creation.
type AccountRepository interface {
	// GetOrCreate returns the account, creating it with the signup credit
	// grant on first authenticated use. The bool reports whether a row was
	// created.
	GetOrCreate(ctx context.Context, id domain.AccountID, signupCredits int64) (*domain.Account, bool, error)
	GetByID(ctx context.Context, id domain.AccountID) (*domain.Account, error)
	SetActiveOrg(ctx context.Context, id domain.AccountID, orgID domain.OrganizationID) error
}

// OrganizationRepository defines persistence for organizations and memberships.
type OrganizationRepository interface {
	Create(ctx context.Context, org *domain.Organization) error
	GetByID(ctx context.Context, id domain.OrganizationID) (*domain.Organization, error)
	GetByInviteCode(ctx context.Context, code string) (*domain.Organization, error)
	AddMember(ctx context.Context, orgID domain.OrganizationID, accountID domain.AccountID, role string) error
	GetMemberRole(ctx context.Context, orgID domain.OrganizationID, accountID domain.AccountID) (string, error)
	// AddSeats applies a paid seat entitlement.
	AddSeats(ctx context.Context, orgID domain.OrganizationID, delta int) error
	// EnableAPI applies a paid api-enable entitlement: flips the flag, sets
	// the plan tier and its ceilings.
	EnableAPI(ctx context.Context, orgID domain.OrganizationID, plan domain.PlanTier, limits domain.PlanLimits) error
}

// APIKeyRepository defines persistence for org API keys.
type APIKeyRepository interface {
	Create(ctx context.Context, key *domain.APIKey) error
	GetByPrefix(ctx context.Context, prefix string) (*domain.APIKey, error)
	ListByOrg(ctx context.Context, orgID domain.OrganizationID) ([]*domain.APIKey, error)
	CountActive(ctx context.Context, orgID domain.OrganizationID) (int, error)
	Revoke(ctx context.Context, orgID domain.OrganizationID, keyID domain.APIKeyID) error
}

// JobRepository defines persistence for job records.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	GetByID(ctx context.Context, id domain.JobID) (*domain.Job, error)
	UpdateStatus(ctx context.Context, id domain.JobID, status domain.JobStatus, workerError string) error
}

// OrderRepository defines persistence for billing orders.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByProviderOrderID(ctx context.Context, providerOrderID string) (*domain.Order, error)
	// MarkPaid transitions created->paid. It reports false when the order was
	// already paid, which is how entitlement application stays idempotent.
	MarkPaid(ctx context.Context, id domain.OrderID, paymentID string) (bool, error)
}
