package orgs

import (
	"context"

	"github.com/Gautam2117/cliplingua/internal/application/ports"
	"github.com/Gautam2117/cliplingua/internal/domain"
	domerrors "github.com/Gautam2117/cliplingua/internal/domain/errors"
)

// Join adds the account to the organization matching an invite code and makes
// it the active one.
type Join struct {
	accounts ports.AccountRepository
	orgs     ports.OrganizationRepository
}

// NewJoin builds the use case.
func NewJoin(accounts ports.AccountRepository, orgs ports.OrganizationRepository) *Join {
	return &Join{accounts: accounts, orgs: orgs}
}

// Execute joins by invite code. Joining an org the account already belongs to
// just switches the active pointer.
func (uc *Join) Execute(ctx context.Context, accountID domain.AccountID, inviteCode string) (*domain.Organization, error) {
	org, err := uc.orgs.GetByInviteCode(ctx, inviteCode)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domerrors.ErrOrgNotFound
	}
	role, err := uc.orgs.GetMemberRole(ctx, org.ID, accountID)
	if err != nil {
		return nil, err
	}
	if role == "" {
		if err := uc.orgs.AddMember(ctx, org.ID, accountID, domain.RoleMember); err != nil {
			return nil, err
		}
	}
	if err := uc.accounts.SetActiveOrg(ctx, accountID, org.ID); err != nil {
		return nil, err
	}
	return org, nil
}

// SetActive switches the account's active organization. The account must be a
// member of the target org.
type SetActive struct {
	accounts ports.AccountRepository
	orgs     ports.OrganizationRepository
}

// NewSetActive builds the use case.
func NewSetActive(accounts ports.AccountRepository, orgs ports.OrganizationRepository) *SetActive {
	return &SetActive{accounts: accounts, orgs: orgs}
}

// Execute validates membership and moves the pointer.
func (uc *SetActive) Execute(ctx context.Context, accountID domain.AccountID, orgID domain.OrganizationID) error {
	role, err := uc.orgs.GetMemberRole(ctx, orgID, accountID)
	if err != nil {
		return err
	}
	if role == "" {
		return domerrors.ErrForbidden
	}
	return uc.accounts.SetActiveOrg(ctx, accountID, orgID)
}
