package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Gautam2117/cliplingua/internal/application/jobs"
	"github.com/Gautam2117/cliplingua/internal/application/orgs"
	"github.com/Gautam2117/cliplingua/internal/application/ports"
	"github.com/Gautam2117/cliplingua/internal/domain"
	"github.com/Gautam2117/cliplingua/internal/infrastructure/http/middleware"
)

// JobsHandler handles the session (JWT) job surface plus the routes shared
// with key auth: submit, bulk submit, dub, and status.
type JobsHandler struct {
	submitClip *jobs.SubmitClip
	submitBulk *jobs.SubmitBulk
	submitDub  *jobs.SubmitDub
	getStatus  *jobs.GetStatus
	bootstrap  *orgs.Bootstrap
	ledger     ports.Ledger
	validate   *validator.Validate
	log        zerolog.Logger
}

func NewJobsHandler(submitClip *jobs.SubmitClip, submitBulk *jobs.SubmitBulk, submitDub *jobs.SubmitDub, getStatus *jobs.GetStatus, bootstrap *orgs.Bootstrap, ledger ports.Ledger, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		submitClip: submitClip,
		submitBulk: submitBulk,
		submitDub:  submitDub,
		getStatus:  getStatus,
		bootstrap:  bootstrap,
		ledger:     ledger,
		validate:   validator.New(),
		log:        log,
	}
}

// caller is the resolved payer: either a session account with its active org,
// or a key-authenticated org alone.
type caller struct {
	account *domain.Account
	org     *domain.Organization
}

// accountID returns the session account id, nil under key auth.
func (c *caller) accountID() *domain.AccountID {
	if c.account == nil {
		return nil
	}
	id := c.account.ID
	return &id
}

// resolveCaller reads identity from context and, for session callers, resolves
// (lazily creating) the active organization. Writes the error response itself
// on failure.
func (h *JobsHandler) resolveCaller(w http.ResponseWriter, r *http.Request) (*caller, bool) {
	if org := middleware.OrgFromContext(r.Context()); org != nil {
		return &caller{org: org}, true
	}
	account := middleware.AccountFromContext(r.Context())
	if account == nil {
		writeErr(w, http.StatusUnauthorized, ErrCodeUnauthorized, "unauthorized")
		return nil, false
	}
	org, err := h.bootstrap.Execute(r.Context(), orgs.BootstrapInput{AccountID: account.ID})
	if err != nil {
		h.log.Error().Err(err).Msg("active org resolution failed")
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return nil, false
	}
	return &caller{account: account, org: org}, true
}

// scopeFor picks the paying balance. Session callers default to their personal
// balance and may opt into the org's; key callers always pay from the org.
func (c *caller) scopeFor(requested string) domain.Scope {
	if c.account == nil || requested == "org" {
		return domain.OrgScope(c.org.ID)
	}
	return domain.AccountScope(c.account.ID)
}

// JobResponse is the JSON shape of a job on every surface.
type JobResponse struct {
	ID           string `json:"id"`
	Kind         string `json:"kind"`
	URL          string `json:"url"`
	DubLang      string `json:"dub_lang,omitempty"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
	CreditsSpent int64  `json:"credits_spent"`
	CreatedAt    string `json:"created_at"`
}

func jobResponse(job *domain.Job) JobResponse {
	return JobResponse{
		ID:           job.ID.String(),
		Kind:         string(job.Kind),
		URL:          job.URL,
		DubLang:      job.DubLang,
		Status:       string(job.Status),
		Error:        job.WorkerError,
		CreditsSpent: job.CreditsSpent,
		CreatedAt:    job.CreatedAt.Format(time.RFC3339),
	}
}

// Submit handles POST /jobs.
func (h *JobsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	c, ok := h.resolveCaller(w, r)
	if !ok {
		return
	}
	var body struct {
		URL   string `json:"url" validate:"required,url,max=2048"`
		Scope string `json:"scope" validate:"omitempty,oneof=account org"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}
	job, err := h.submitClip.Execute(r.Context(), jobs.SubmitClipInput{
		AccountID: c.accountID(),
		OrgID:     c.org.ID,
		Scope:     c.scopeFor(body.Scope),
		URL:       body.URL,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, jobResponse(job))
}

// SubmitBulk handles POST /jobs/bulk.
func (h *JobsHandler) SubmitBulk(w http.ResponseWriter, r *http.Request) {
	c, ok := h.resolveCaller(w, r)
	if !ok {
		return
	}
	var body struct {
		URLs  []string `json:"urls" validate:"required,min=1,dive,url,max=2048"`
		Scope string   `json:"scope" validate:"omitempty,oneof=account org"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}
	result, err := h.submitBulk.Execute(r.Context(), jobs.SubmitBulkInput{
		AccountID: c.accountID(),
		Org:       c.org,
		Scope:     c.scopeFor(body.Scope),
		URLs:      body.URLs,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Get handles GET /jobs/{id} under either auth.
func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.resolveCaller(w, r)
	if !ok {
		return
	}
	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid job id")
		return
	}
	job, err := h.getStatus.Execute(r.Context(), c.org.ID, domain.NewJobID(jobID))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobResponse(job))
}

// Dub handles POST /jobs/{id}/dub under either auth. Key callers consume one
// unit of the org quota before the charge, same as /v1 submissions.
func (h *JobsHandler) Dub(w http.ResponseWriter, r *http.Request) {
	c, ok := h.resolveCaller(w, r)
	if !ok {
		return
	}
	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid job id")
		return
	}
	var body struct {
		Lang         string `json:"lang" validate:"required,max=8"`
		CaptionStyle string `json:"caption_style" validate:"omitempty,max=64"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}
	if c.account == nil {
		if err := h.ledger.ConsumeRateLimit(r.Context(), c.org.ID, time.Now().UTC(), 1, c.org.RPM, c.org.DailyJobs); err != nil {
			writeDomainErr(w, err)
			return
		}
	}
	dub, err := h.submitDub.Execute(r.Context(), jobs.SubmitDubInput{
		AccountID:    c.accountID(),
		OrgID:        c.org.ID,
		Scope:        c.scopeFor(""),
		JobID:        domain.NewJobID(jobID),
		Lang:         body.Lang,
		CaptionStyle: body.CaptionStyle,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, jobResponse(dub))
}
