package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Gautam2117/cliplingua/internal/application/orgs"
	"github.com/Gautam2117/cliplingua/internal/application/ports"
	"github.com/Gautam2117/cliplingua/internal/domain"
	"github.com/Gautam2117/cliplingua/internal/infrastructure/http/middleware"
)

// OrgsHandler handles /orgs/* (JWT surface): the active workspace, invites,
// and API key management.
type OrgsHandler struct {
	bootstrap *orgs.Bootstrap
	join      *orgs.Join
	setActive *orgs.SetActive
	createKey *orgs.CreateAPIKey
	revokeKey *orgs.RevokeAPIKey
	keys      ports.APIKeyRepository
	ledger    ports.Ledger
	validate  *validator.Validate
}

func NewOrgsHandler(bootstrap *orgs.Bootstrap, join *orgs.Join, setActive *orgs.SetActive, createKey *orgs.CreateAPIKey, revokeKey *orgs.RevokeAPIKey, keys ports.APIKeyRepository, ledger ports.Ledger) *OrgsHandler {
	return &OrgsHandler{
		bootstrap: bootstrap,
		join:      join,
		setActive: setActive,
		createKey: createKey,
		revokeKey: revokeKey,
		keys:      keys,
		ledger:    ledger,
		validate:  validator.New(),
	}
}

// OrgResponse is the JSON shape of an organization for its members.
type OrgResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Plan       string `json:"plan"`
	Seats      int    `json:"seats"`
	InviteCode string `json:"invite_code"`
	APIEnabled bool   `json:"api_enabled"`
	Credits    int64  `json:"credits"`
}

func (h *OrgsHandler) orgResponse(r *http.Request, org *domain.Organization) OrgResponse {
	credits := org.Credits
	if balance, err := h.ledger.Balance(r.Context(), domain.OrgScope(org.ID)); err == nil {
		credits = balance
	}
	return OrgResponse{
		ID:         org.ID.String(),
		Name:       org.Name,
		Plan:       string(org.Plan),
		Seats:      org.Seats,
		InviteCode: org.InviteCode,
		APIEnabled: org.APIEnabled,
		Credits:    credits,
	}
}

// Current handles GET /orgs/current, creating the workspace lazily.
func (h *OrgsHandler) Current(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())
	if account == nil {
		writeErr(w, http.StatusUnauthorized, ErrCodeUnauthorized, "unauthorized")
		return
	}
	org, err := h.bootstrap.Execute(r.Context(), orgs.BootstrapInput{AccountID: account.ID})
	if err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, h.orgResponse(r, org))
}

// Join handles POST /orgs/join.
func (h *OrgsHandler) Join(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())
	if account == nil {
		writeErr(w, http.StatusUnauthorized, ErrCodeUnauthorized, "unauthorized")
		return
	}
	var body struct {
		InviteCode string `json:"invite_code" validate:"required,max=32"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}
	org, err := h.join.Execute(r.Context(), account.ID, body.InviteCode)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.orgResponse(r, org))
}

// SetActive handles POST /orgs/active.
func (h *OrgsHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())
	if account == nil {
		writeErr(w, http.StatusUnauthorized, ErrCodeUnauthorized, "unauthorized")
		return
	}
	var body struct {
		OrgID string `json:"org_id" validate:"required,uuid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}
	orgID, err := uuid.Parse(body.OrgID)
	if err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid org id")
		return
	}
	if err := h.setActive.Execute(r.Context(), account.ID, domain.NewOrganizationID(orgID)); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// KeyResponse is the JSON shape of an API key. Token is present only in the
// creation response.
type KeyResponse struct {
	ID        string `json:"id"`
	Prefix    string `json:"prefix"`
	Label     string `json:"label,omitempty"`
	Token     string `json:"token,omitempty"`
	CreatedAt string `json:"created_at"`
	RevokedAt string `json:"revoked_at,omitempty"`
}

func keyResponse(key *domain.APIKey, token string) KeyResponse {
	resp := KeyResponse{
		ID:        key.ID.String(),
		Prefix:    key.Prefix,
		Label:     key.Label,
		Token:     token,
		CreatedAt: key.CreatedAt.Format(time.RFC3339),
	}
	if key.RevokedAt != nil {
		resp.RevokedAt = key.RevokedAt.Format(time.RFC3339)
	}
	return resp
}

// ListKeys handles GET /orgs/keys.
func (h *OrgsHandler) ListKeys(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())
	if account == nil {
		writeErr(w, http.StatusUnauthorized, ErrCodeUnauthorized, "unauthorized")
		return
	}
	org, err := h.bootstrap.Execute(r.Context(), orgs.BootstrapInput{AccountID: account.ID})
	if err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	keys, err := h.keys.ListByOrg(r.Context(), org.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	items := make([]KeyResponse, 0, len(keys))
	for _, k := range keys {
		items = append(items, keyResponse(k, ""))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"keys": items})
}

// CreateKey handles POST /orgs/keys.
func (h *OrgsHandler) CreateKey(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())
	if account == nil {
		writeErr(w, http.StatusUnauthorized, ErrCodeUnauthorized, "unauthorized")
		return
	}
	var body struct {
		Label string `json:"label" validate:"omitempty,max=64"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}
	org, err := h.bootstrap.Execute(r.Context(), orgs.BootstrapInput{AccountID: account.ID})
	if err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	result, err := h.createKey.Execute(r.Context(), orgs.CreateAPIKeyInput{
		AccountID: account.ID,
		OrgID:     org.ID,
		Label:     body.Label,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, keyResponse(result.Key, result.Token))
}

// RevokeKey handles DELETE /orgs/keys/{id}.
func (h *OrgsHandler) RevokeKey(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())
	if account == nil {
		writeErr(w, http.StatusUnauthorized, ErrCodeUnauthorized, "unauthorized")
		return
	}
	keyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid key id")
		return
	}
	org, err := h.bootstrap.Execute(r.Context(), orgs.BootstrapInput{AccountID: account.ID})
	if err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	if err := h.revokeKey.Execute(r.Context(), account.ID, org.ID, domain.NewAPIKeyID(keyID)); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
