package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Gautam2117/cliplingua/internal/application/jobs"
	"github.com/Gautam2117/cliplingua/internal/application/ports"
	"github.com/Gautam2117/cliplingua/internal/domain"
	"github.com/Gautam2117/cliplingua/internal/infrastructure/http/middleware"
)

// ClipsHandler handles the /v1 programmatic surface. All routes require key
// auth, pay from the org balance, and count against the org quota.
type ClipsHandler struct {
	submitClip *jobs.SubmitClip
	submitBulk *jobs.SubmitBulk
	ledger     ports.Ledger
	validate   *validator.Validate
}

func NewClipsHandler(submitClip *jobs.SubmitClip, submitBulk *jobs.SubmitBulk, ledger ports.Ledger) *ClipsHandler {
	return &ClipsHandler{
		submitClip: submitClip,
		submitBulk: submitBulk,
		ledger:     ledger,
		validate:   validator.New(),
	}
}

// Create handles POST /v1/clips. Quota consumption precedes the charge so a
// rate-limited request costs nothing.
func (h *ClipsHandler) Create(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFromContext(r.Context())
	if org == nil {
		writeErr(w, http.StatusUnauthorized, ErrCodeInvalidAPIKey, "missing API key")
		return
	}
	var body struct {
		URL string `json:"url" validate:"required,url,max=2048"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}
	if err := h.ledger.ConsumeRateLimit(r.Context(), org.ID, time.Now().UTC(), 1, org.RPM, org.DailyJobs); err != nil {
		writeDomainErr(w, err)
		return
	}
	job, err := h.submitClip.Execute(r.Context(), jobs.SubmitClipInput{
		OrgID: org.ID,
		Scope: domain.OrgScope(org.ID),
		URL:   body.URL,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, jobResponse(job))
}

// CreateBulk handles POST /v1/clips/bulk. The batch use case does its own
// quota consume for the whole count.
func (h *ClipsHandler) CreateBulk(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFromContext(r.Context())
	if org == nil {
		writeErr(w, http.StatusUnauthorized, ErrCodeInvalidAPIKey, "missing API key")
		return
	}
	var body struct {
		URLs []string `json:"urls" validate:"required,min=1,dive,url,max=2048"`
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
		Org:   org,
		Scope: domain.OrgScope(org.ID),
		URLs:  body.URLs,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// UsageResponse is the JSON shape for GET /v1/usage.
type UsageResponse struct {
	Minute UsageWindow `json:"minute"`
	Day    UsageWindow `json:"day"`
	Plan   string      `json:"plan"`
}

// UsageWindow is one window's count versus ceiling.
type UsageWindow struct {
	Used  int64 `json:"used"`
	Limit int64 `json:"limit"`
}

// Usage handles GET /v1/usage.
func (h *ClipsHandler) Usage(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFromContext(r.Context())
	if org == nil {
		writeErr(w, http.StatusUnauthorized, ErrCodeInvalidAPIKey, "missing API key")
		return
	}
	usage, err := h.ledger.Usage(r.Context(), org.ID, time.Now().UTC())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, UsageResponse{
		Minute: UsageWindow{Used: usage.MinuteCount, Limit: org.RPM},
		Day:    UsageWindow{Used: usage.DayCount, Limit: org.DailyJobs},
		Plan:   string(org.Plan),
	})
}
