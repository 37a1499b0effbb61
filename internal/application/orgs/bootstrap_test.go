package orgs

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gautam2117/cliplingua/internal/domain"
	domerrors "github.com/Gautam2117/cliplingua/internal/domain/errors"
)

func TestBootstrapCreatesFreeOrgOnFirstUse(t *testing.T) {
	accounts := newFakeAccountRepo()
	orgRepo := newFakeOrgRepo()
	accountID := domain.NewAccountID(uuid.New())
	_, _, err := accounts.GetOrCreate(context.Background(), accountID, 30)
	require.NoError(t, err)
	uc := NewBootstrap(accounts, orgRepo)

	org, err := uc.Execute(context.Background(), BootstrapInput{AccountID: accountID})
	require.NoError(t, err)
	assert.Equal(t, domain.PlanFree, org.Plan)
	assert.Equal(t, 1, org.Seats)
	assert.False(t, org.APIEnabled)
	assert.NotEmpty(t, org.InviteCode)
	assert.Equal(t, "My Workspace", org.Name)

	role, err := orgRepo.GetMemberRole(context.Background(), org.ID, accountID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, role)

	account, err := accounts.GetByID(context.Background(), accountID)
	require.NoError(t, err)
	require.NotNil(t, account.ActiveOrgID)
	assert.Equal(t, org.ID, *account.ActiveOrgID)
}

func TestBootstrapIsIdempotent(t *testing.T) {
	accounts := newFakeAccountRepo()
	orgRepo := newFakeOrgRepo()
	accountID := domain.NewAccountID(uuid.New())
	_, _, err := accounts.GetOrCreate(context.Background(), accountID, 30)
	require.NoError(t, err)
	uc := NewBootstrap(accounts, orgRepo)

	first, err := uc.Execute(context.Background(), BootstrapInput{AccountID: accountID})
	require.NoError(t, err)
	second, err := uc.Execute(context.Background(), BootstrapInput{AccountID: accountID})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, orgRepo.orgs, 1)
}

func TestJoinByInviteCodeAddsMemberAndSwitchesActive(t *testing.T) {
	accounts := newFakeAccountRepo()
	orgRepo := newFakeOrgRepo()
	owner := domain.NewAccountID(uuid.New())
	joiner := domain.NewAccountID(uuid.New())
	_, _, err := accounts.GetOrCreate(context.Background(), joiner, 30)
	require.NoError(t, err)

	bootstrap := NewBootstrap(accounts, orgRepo)
	_, _, err = accounts.GetOrCreate(context.Background(), owner, 30)
	require.NoError(t, err)
	home, err := bootstrap.Execute(context.Background(), BootstrapInput{AccountID: owner})
	require.NoError(t, err)

	join := NewJoin(accounts, orgRepo)
	joined, err := join.Execute(context.Background(), joiner, home.InviteCode)
	require.NoError(t, err)
	assert.Equal(t, home.ID, joined.ID)

	role, _ := orgRepo.GetMemberRole(context.Background(), home.ID, joiner)
	assert.Equal(t, domain.RoleMember, role)

	account, _ := accounts.GetByID(context.Background(), joiner)
	require.NotNil(t, account.ActiveOrgID)
	assert.Equal(t, home.ID, *account.ActiveOrgID)
}

func TestJoinTwiceKeepsExistingRole(t *testing.T) {
	accounts := newFakeAccountRepo()
	orgRepo := newFakeOrgRepo()
	owner := domain.NewAccountID(uuid.New())
	_, _, err := accounts.GetOrCreate(context.Background(), owner, 30)
	require.NoError(t, err)
	home, err := NewBootstrap(accounts, orgRepo).Execute(context.Background(), BootstrapInput{AccountID: owner})
	require.NoError(t, err)

	// The owner re-joining their own org must not be demoted to member.
	_, err = NewJoin(accounts, orgRepo).Execute(context.Background(), owner, home.InviteCode)
	require.NoError(t, err)
	role, _ := orgRepo.GetMemberRole(context.Background(), home.ID, owner)
	assert.Equal(t, domain.RoleOwner, role)
}

func TestJoinUnknownInviteCode(t *testing.T) {
	uc := NewJoin(newFakeAccountRepo(), newFakeOrgRepo())
	_, err := uc.Execute(context.Background(), domain.NewAccountID(uuid.New()), "nope")
	assert.True(t, errors.Is(err, domerrors.ErrOrgNotFound))
}

func TestSetActiveRequiresMembership(t *testing.T) {
	accounts := newFakeAccountRepo()
	orgRepo := newFakeOrgRepo()
	member := domain.NewAccountID(uuid.New())
	stranger := domain.NewAccountID(uuid.New())
	orgID := domain.NewOrganizationID(uuid.New())
	require.NoError(t, orgRepo.Create(context.Background(), &domain.Organization{ID: orgID}))
	require.NoError(t, orgRepo.AddMember(context.Background(), orgID, member, domain.RoleMember))
	uc := NewSetActive(accounts, orgRepo)

	require.NoError(t, uc.Execute(context.Background(), member, orgID))
	account, _ := accounts.GetByID(context.Background(), member)
	require.NotNil(t, account.ActiveOrgID)
	assert.Equal(t, orgID, *account.ActiveOrgID)

	err := uc.Execute(context.Background(), stranger, orgID)
	assert.True(t, errors.Is(err, domerrors.ErrForbidden))
}
