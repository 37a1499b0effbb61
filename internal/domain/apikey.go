package domain

import (
	"time"

	"github.com/google/uuid"
)

// APIKeyID is a value object for API key identity.
type APIKeyID struct{ uuid.UUID }

// NewAPIKeyID creates a new APIKeyID from uuid.
func NewAPIKeyID(id uuid.UUID) APIKeyID { return APIKeyID{UUID: id} }

// String returns the canonical string form.
func (k APIKeyID) String() string { return k.UUID.String() }

// APIKey is an org-scoped credential. The plaintext token is shown once at
// creation; only the prefix (for lookup) and a salted hash are stored.
type APIKey struct {
	ID        APIKeyID
	OrgID     OrganizationID
	Prefix    string
	TokenHash string
	Label     string
	CreatedAt time.Time
	RevokedAt *time.Time
}

// Valid reports whether the key is usable (not revoked).
func (k *APIKey) Valid() bool { return k.RevokedAt == nil }

// APIKeyTokenPrefix is the leading tag on every issued token.
const APIKeyTokenPrefix = "clp"

// APIKeyPrefixOf extracts the indexable prefix ("clp_xxxxxxxx") from a
// presented token of the form clp_<prefix>_<secret>. The bool is false for
// malformed tokens.
func APIKeyPrefixOf(token string) (string, bool) {
	if len(token) < len(APIKeyTokenPrefix)+2 || token[:len(APIKeyTokenPrefix)+1] != APIKeyTokenPrefix+"_" {
		return "", false
	}
	rest := token[len(APIKeyTokenPrefix)+1:]
	for i := 0; i < len(rest); i++ {
		if rest[i] == '_' {
			if i == 0 || i == len(rest)-1 {
				return "", false
			}
			return token[:len(APIKeyTokenPrefix)+1+i], true
		}
	}
	return "", false
}
