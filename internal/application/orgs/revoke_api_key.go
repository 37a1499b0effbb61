package orgs

import (
	"context"

	"github.com/Gautam2117/cliplingua/internal/application/ports"
	"github.com/Gautam2117/cliplingua/internal/domain"
	domerrors "github.com/Gautam2117/cliplingua/internal/domain/errors"
)

// RevokeAPIKey revokes an org API key. Requires owner or admin role.
// Revocation is a tombstone (revoked_at), not a delete, so the audit trail
// for past usage survives.
type RevokeAPIKey struct {
	orgs ports.OrganizationRepository
	keys ports.APIKeyRepository
}

// NewRevokeAPIKey builds the use case.
func NewRevokeAPIKey(orgs ports.OrganizationRepository, keys ports.APIKeyRepository) *RevokeAPIKey {
	return &RevokeAPIKey{orgs: orgs, keys: keys}
}

// Execute revokes the key.
func (uc *RevokeAPIKey) Execute(ctx context.Context, accountID domain.AccountID, orgID domain.OrganizationID, keyID domain.APIKeyID) error {
	role, err := uc.orgs.GetMemberRole(ctx, orgID, accountID)
	if err != nil {
		return err
	}
	if !domain.CanManageKeys(role) {
		return domerrors.ErrForbidden
	}
	return uc.keys.Revoke(ctx, orgID, keyID)
}
