package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Gautam2117/cliplingua/internal/application/ports"
	"github.com/Gautam2117/cliplingua/internal/domain"
)

// AuthValidator validates the JWT, resolves the account (creating it with the
// signup grant on first authenticated use), and sets it in context.
type AuthValidator struct {
	verifier      ports.TokenVerifier
	accounts      ports.AccountRepository
	signupCredits int64
}

func NewAuthValidator(verifier ports.TokenVerifier, accounts ports.AccountRepository, signupCredits int64) *AuthValidator {
	return &AuthValidator{verifier: verifier, accounts: accounts, signupCredits: signupCredits}
}

func (m *AuthValidator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			writeErr(w, http.StatusUnauthorized, "unauthorized", "missing or invalid authorization")
			return
		}
		tokenString := strings.TrimPrefix(auth, "Bearer ")
		subject, err := m.verifier.VerifyAccessToken(tokenString)
		if err != nil {
			writeErr(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}
		subjectID, err := uuid.Parse(subject)
		if err != nil {
			writeErr(w, http.StatusUnauthorized, "unauthorized", "invalid token subject")
			return
		}
		account, _, err := m.accounts.GetOrCreate(r.Context(), domain.NewAccountID(subjectID), m.signupCredits)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "internal_error", "internal error")
			return
		}
		ctx := WithAccount(r.Context(), account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
