package middleware

import (
	"net/http"
	"strings"

	"github.com/Gautam2117/cliplingua/internal/application/ports"
	"github.com/Gautam2117/cliplingua/internal/domain"
)

// APIKeyResolver authenticates /v1 requests by org API key. The token arrives
// as "Authorization: Bearer clp_..." or in X-API-Key. Lookup goes through the
// stored prefix; the full token is then verified against the salted hash, so
// the plaintext never has to exist server-side.
type APIKeyResolver struct {
	keys   ports.APIKeyRepository
	orgs   ports.OrganizationRepository
	hasher ports.SecretHasher
}

func NewAPIKeyResolver(keys ports.APIKeyRepository, orgs ports.OrganizationRepository, hasher ports.SecretHasher) *APIKeyResolver {
	return &APIKeyResolver{keys: keys, orgs: orgs, hasher: hasher}
}

func (m *APIKeyResolver) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			writeErr(w, http.StatusUnauthorized, "invalid_api_key", "missing API key")
			return
		}
		prefix, ok := domain.APIKeyPrefixOf(token)
		if !ok {
			writeErr(w, http.StatusUnauthorized, "invalid_api_key", "malformed API key")
			return
		}
		key, err := m.keys.GetByPrefix(r.Context(), prefix)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "internal_error", "internal error")
			return
		}
		if key == nil || !key.Valid() || !m.hasher.Verify(token, key.TokenHash) {
			writeErr(w, http.StatusUnauthorized, "invalid_api_key", "invalid or revoked API key")
			return
		}
		org, err := m.orgs.GetByID(r.Context(), key.OrgID)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "internal_error", "internal error")
			return
		}
		if org == nil {
			writeErr(w, http.StatusUnauthorized, "invalid_api_key", "invalid or revoked API key")
			return
		}
		// Revoking API access invalidates existing keys immediately.
		if !org.APIEnabled {
			writeErr(w, http.StatusForbidden, "api_disabled", "API access not enabled for this organization")
			return
		}
		ctx := WithOrg(r.Context(), org)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func tokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return r.Header.Get("X-API-Key")
}
