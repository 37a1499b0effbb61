package orgs

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/Gautam2117/cliplingua/internal/application/ports"
	"github.com/Gautam2117/cliplingua/internal/domain"
)

// BootstrapInput identifies the authenticated account.
type BootstrapInput struct {
	AccountID domain.AccountID
	OrgName   string
}

// Bootstrap returns the account's active organization, creating one lazily on
// first use: free tier, a fresh invite code, the caller as owner, and the
// active-org pointer set.
type Bootstrap struct {
	accounts ports.AccountRepository
	orgs     ports.OrganizationRepository
}

// NewBootstrap builds the use case.
func NewBootstrap(accounts ports.AccountRepository, orgs ports.OrganizationRepository) *Bootstrap {
	return &Bootstrap{accounts: accounts, orgs: orgs}
}

// Execute resolves or creates the active organization.
func (uc *Bootstrap) Execute(ctx context.Context, input BootstrapInput) (*domain.Organization, error) {
	account, err := uc.accounts.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}
	if account != nil && account.ActiveOrgID != nil {
		org, err := uc.orgs.GetByID(ctx, *account.ActiveOrgID)
		if err != nil {
			return nil, err
		}
		if org != nil {
			return org, nil
		}
	}

	code, err := generateInviteCode()
	if err != nil {
		return nil, err
	}
	name := input.OrgName
	if name == "" {
		name = "My Workspace"
	}
	now := time.Now()
	org := &domain.Organization{
		ID:         domain.NewOrganizationID(uuid.New()),
		Name:       name,
		Plan:       domain.PlanFree,
		Seats:      1,
		InviteCode: code,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.orgs.Create(ctx, org); err != nil {
		return nil, err
	}
	if err := uc.orgs.AddMember(ctx, org.ID, input.AccountID, domain.RoleOwner); err != nil {
		return nil, err
	}
	if err := uc.accounts.SetActiveOrg(ctx, input.AccountID, org.ID); err != nil {
		return nil, err
	}
	return org, nil
}

func generateInviteCode() (string, error) {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
