package handlers

import (
	"net/http"
	"time"

	"github.com/Gautam2117/cliplingua/internal/application/ports"
	"github.com/Gautam2117/cliplingua/internal/domain"
	"github.com/Gautam2117/cliplingua/internal/infrastructure/http/middleware"
)

// AccountsHandler handles GET /me. Requires JWT auth.
type AccountsHandler struct {
	ledger ports.Ledger
}

func NewAccountsHandler(ledger ports.Ledger) *AccountsHandler {
	return &AccountsHandler{ledger: ledger}
}

// MeResponse is the JSON shape for GET /me.
type MeResponse struct {
	ID          string `json:"id"`
	Credits     int64  `json:"credits"`
	ActiveOrgID string `json:"active_org_id,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// Me returns the current account. The balance comes from the ledger rather
// than the row loaded at auth time, so a submission in the same session is
// already reflected.
func (h *AccountsHandler) Me(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())
	if account == nil {
		writeErr(w, http.StatusUnauthorized, ErrCodeUnauthorized, "unauthorized")
		return
	}
	credits := account.Credits
	if balance, err := h.ledger.Balance(r.Context(), domain.AccountScope(account.ID)); err == nil {
		credits = balance
	}
	resp := MeResponse{
		ID:        account.ID.String(),
		Credits:   credits,
		CreatedAt: account.CreatedAt.Format(time.RFC3339),
	}
	if account.ActiveOrgID != nil {
		resp.ActiveOrgID = account.ActiveOrgID.String()
	}
	writeJSON(w, http.StatusOK, resp)
}
