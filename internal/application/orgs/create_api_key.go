package orgs

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/Gautam2117/cliplingua/internal/application/ports"
	"github.com/Gautam2117/cliplingua/internal/domain"
	domerrors "github.com/Gautam2117/cliplingua/internal/domain/errors"
)

// CreateAPIKeyInput carries the caller (for role checks) and the key label.
type CreateAPIKeyInput struct {
	AccountID domain.AccountID
	OrgID     domain.OrganizationID
	Label     string
}

// CreateAPIKeyResult returns the created key and the plain token, the only
// time it is visible.
type CreateAPIKeyResult struct {
	Key   *domain.APIKey
	Token string
}

// CreateAPIKey issues an org API key. Requires owner or admin role, an
// API-enabled org, and headroom under the org's max-keys ceiling (counted
// against non-revoked keys only).
type CreateAPIKey struct {
	orgs   ports.OrganizationRepository
	keys   ports.APIKeyRepository
	hasher ports.SecretHasher
}

// NewCreateAPIKey builds the use case.
func NewCreateAPIKey(orgs ports.OrganizationRepository, keys ports.APIKeyRepository, hasher ports.SecretHasher) *CreateAPIKey {
	return &CreateAPIKey{orgs: orgs, keys: keys, hasher: hasher}
}

// Execute creates the key and returns the plain token once.
func (uc *CreateAPIKey) Execute(ctx context.Context, input CreateAPIKeyInput) (*CreateAPIKeyResult, error) {
	role, err := uc.orgs.GetMemberRole(ctx, input.OrgID, input.AccountID)
	if err != nil {
		return nil, err
	}
	if !domain.CanManageKeys(role) {
		return nil, domerrors.ErrForbidden
	}
	org, err := uc.orgs.GetByID(ctx, input.OrgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domerrors.ErrOrgNotFound
	}
	if !org.APIEnabled {
		return nil, domerrors.ErrAPIDisabled
	}
	active, err := uc.keys.CountActive(ctx, input.OrgID)
	if err != nil {
		return nil, err
	}
	if active >= org.MaxAPIKeys {
		return nil, domerrors.ErrKeyLimitReached
	}

	token, prefix, err := generateAPIKeyToken()
	if err != nil {
		return nil, err
	}
	hash, err := uc.hasher.Hash(token)
	if err != nil {
		return nil, err
	}
	key := &domain.APIKey{
		ID:        domain.NewAPIKeyID(uuid.New()),
		OrgID:     input.OrgID,
		Prefix:    prefix,
		TokenHash: hash,
		Label:     input.Label,
		CreatedAt: time.Now(),
	}
	if err := uc.keys.Create(ctx, key); err != nil {
		return nil, err
	}
	return &CreateAPIKeyResult{Key: key, Token: token}, nil
}

// generateAPIKeyToken returns a clp_<prefix>_<secret> token and its prefix.
func generateAPIKeyToken() (token, prefix string, err error) {
	pb := make([]byte, 4)
	if _, err := rand.Read(pb); err != nil {
		return "", "", err
	}
	sb := make([]byte, 24)
	if _, err := rand.Read(sb); err != nil {
		return "", "", err
	}
	prefix = domain.APIKeyTokenPrefix + "_" + hex.EncodeToString(pb)
	return prefix + "_" + hex.EncodeToString(sb), prefix, nil
}
