package middleware

import (
	"net/http"
	"strings"

	"github.com/Gautam2117/cliplingua/internal/domain"
)

// DualAuth accepts either a session JWT or an org API key on the same route.
// API key tokens are self-identifying by their "clp_" tag, so dispatch needs
// no second parse.
type DualAuth struct {
	jwt *AuthValidator
	key *APIKeyResolver
}

func NewDualAuth(jwt *AuthValidator, key *APIKeyResolver) *DualAuth {
	return &DualAuth{jwt: jwt, key: key}
}

func (m *DualAuth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if strings.HasPrefix(token, domain.APIKeyTokenPrefix+"_") {
			m.key.Handler(next).ServeHTTP(w, r)
			return
		}
		m.jwt.Handler(next).ServeHTTP(w, r)
	})
}
