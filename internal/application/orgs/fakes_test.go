package orgs

import (
	"context"
	"sync"
	"time"

	"github.com/Gautam2117/cliplingua/internal/domain"
)

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[domain.AccountID]*domain.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[domain.AccountID]*domain.Account)}
}

func (f *fakeAccountRepo) GetOrCreate(_ context.Context, id domain.AccountID, signupCredits int64) (*domain.Account, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if account, ok := f.accounts[id]; ok {
		copied := *account
		return &copied, false, nil
	}
	account := &domain.Account{ID: id, Credits: signupCredits}
	f.accounts[id] = account
	copied := *account
	return &copied, true, nil
}

func (f *fakeAccountRepo) GetByID(_ context.Context, id domain.AccountID) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return nil, nil
	}
	copied := *account
	return &copied, nil
}

func (f *fakeAccountRepo) SetActiveOrg(_ context.Context, id domain.AccountID, orgID domain.OrganizationID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		account = &domain.Account{ID: id}
		f.accounts[id] = account
	}
	account.ActiveOrgID = &orgID
	return nil
}

type fakeOrgRepo struct {
	mu    sync.Mutex
	orgs  map[domain.OrganizationID]*domain.Organization
	roles map[string]string
}

func newFakeOrgRepo() *fakeOrgRepo {
	return &fakeOrgRepo{
		orgs:  make(map[domain.OrganizationID]*domain.Organization),
		roles: make(map[string]string),
	}
}

func (f *fakeOrgRepo) Create(_ context.Context, org *domain.Organization) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *org
	f.orgs[org.ID] = &copied
	return nil
}

func (f *fakeOrgRepo) GetByID(_ context.Context, id domain.OrganizationID) (*domain.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	org, ok := f.orgs[id]
	if !ok {
		return nil, nil
	}
	copied := *org
	return &copied, nil
}

func (f *fakeOrgRepo) GetByInviteCode(_ context.Context, code string) (*domain.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, org := range f.orgs {
		if org.InviteCode == code {
			copied := *org
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeOrgRepo) AddMember(_ context.Context, orgID domain.OrganizationID, accountID domain.AccountID, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := orgID.String() + "/" + accountID.String()
	if _, ok := f.roles[key]; !ok {
		f.roles[key] = role
	}
	return nil
}

func (f *fakeOrgRepo) GetMemberRole(_ context.Context, orgID domain.OrganizationID, accountID domain.AccountID) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roles[orgID.String()+"/"+accountID.String()], nil
}

func (f *fakeOrgRepo) AddSeats(_ context.Context, orgID domain.OrganizationID, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if org, ok := f.orgs[orgID]; ok {
		org.Seats += delta
	}
	return nil
}

func (f *fakeOrgRepo) EnableAPI(_ context.Context, orgID domain.OrganizationID, plan domain.PlanTier, limits domain.PlanLimits) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if org, ok := f.orgs[orgID]; ok {
		org.APIEnabled = true
		org.Plan = plan
		org.RPM = limits.RPM
		org.DailyJobs = limits.DailyJobs
		org.MaxAPIKeys = limits.MaxAPIKeys
	}
	return nil
}

type fakeKeyRepo struct {
	mu   sync.Mutex
	keys map[domain.APIKeyID]*domain.APIKey
}

func newFakeKeyRepo() *fakeKeyRepo {
	return &fakeKeyRepo{keys: make(map[domain.APIKeyID]*domain.APIKey)}
}

func (f *fakeKeyRepo) Create(_ context.Context, key *domain.APIKey) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *key
	f.keys[key.ID] = &copied
	return nil
}

func (f *fakeKeyRepo) GetByPrefix(_ context.Context, prefix string) (*domain.APIKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range f.keys {
		if key.Prefix == prefix {
			copied := *key
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeKeyRepo) ListByOrg(_ context.Context, orgID domain.OrganizationID) ([]*domain.APIKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.APIKey
	for _, key := range f.keys {
		if key.OrgID == orgID {
			copied := *key
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeKeyRepo) CountActive(_ context.Context, orgID domain.OrganizationID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, key := range f.keys {
		if key.OrgID == orgID && key.RevokedAt == nil {
			n++
		}
	}
	return n, nil
}

func (f *fakeKeyRepo) Revoke(_ context.Context, orgID domain.OrganizationID, keyID domain.APIKeyID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if key, ok := f.keys[keyID]; ok && key.OrgID == orgID && key.RevokedAt == nil {
		now := time.Now()
		key.RevokedAt = &now
	}
	return nil
}

// plainHasher keeps test tokens readable; the real adapter is Argon2id.
type plainHasher struct{}

func (plainHasher) Hash(secret string) (string, error) { return "h:" + secret, nil }
func (plainHasher) Verify(secret, hash string) bool    { return hash == "h:"+secret }
