package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobID is a value object for job identity.
type JobID struct{ uuid.UUID }

// NewJobID creates a new JobID from uuid.
func NewJobID(id uuid.UUID) JobID { return JobID{UUID: id} }

// String returns the canonical string form.
func (j JobID) String() string { return j.UUID.String() }

// JobStatus is the fixed lifecycle enum. Worker status strings are normalized
// into this set at the boundary; anything else is rejected there.
type JobStatus string

const (
	JobSubmitted JobStatus = "submitted"
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobDone      JobStatus = "done"
	JobError     JobStatus = "error"
)

// JobKind distinguishes clip submissions from dub requests. Both charge one
// credit and both leave a job record as the audit trail for the spend.
type JobKind string

const (
	JobKindClip JobKind = "clip"
	JobKindDub  JobKind = "dub"
)

// Job is the audit trail tying a ledger debit to a unit of work. For every
// reservation that is retained, a job record with CreditsSpent > 0 exists.
type Job struct {
	ID           JobID
	Kind         JobKind
	AccountID    *AccountID // nil for key-authenticated submissions
	OrgID        OrganizationID
	URL          string
	WorkerJobID  string
	DubLang      string // set for dub jobs
	Status       JobStatus
	WorkerError  string
	CreditsSpent int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// WorkerJob is the normalized view of the external worker's job state.
type WorkerJob struct {
	ID     string
	Status JobStatus
	Error  string
}

// ScopeKind selects which balance a reservation debits.
type ScopeKind string

const (
	ScopeAccount ScopeKind = "account"
	ScopeOrg     ScopeKind = "org"
)

// Scope identifies the ledger entity being debited.
type Scope struct {
	Kind ScopeKind
	ID   uuid.UUID
}

// AccountScope builds an account-scoped ledger target.
func AccountScope(id AccountID) Scope { return Scope{Kind: ScopeAccount, ID: id.UUID} }

// OrgScope builds an organization-scoped ledger target.
func OrgScope(id OrganizationID) Scope { return Scope{Kind: ScopeOrg, ID: id.UUID} }

// SupportedDubLangs mirrors the worker's SUPPORTED_DUB_LANGS set.
var SupportedDubLangs = map[string]bool{"hi": true, "en": true, "es": true}
