package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrganizationID is a value object for organization identity.
type OrganizationID struct{ uuid.UUID }

// NewOrganizationID creates a new OrganizationID from uuid.
func NewOrganizationID(id uuid.UUID) OrganizationID { return OrganizationID{UUID: id} }

// String returns the canonical string form.
func (o OrganizationID) String() string { return o.UUID.String() }

// PlanTier is the billing plan of an organization.
type PlanTier string

const (
	PlanFree       PlanTier = "free"
	PlanCreator    PlanTier = "creator"
	PlanAgency     PlanTier = "agency"
	PlanAgencyPlus PlanTier = "agency_plus"
)

// PlanLimits are the API ceilings that come with a plan tier.
type PlanLimits struct {
	RPM        int64
	DailyJobs  int64
	MaxAPIKeys int
}

// LimitsFor returns the API ceilings for a plan tier. The free tier has API
// access disabled entirely, so all ceilings are zero.
func LimitsFor(tier PlanTier) PlanLimits {
	switch tier {
	case PlanCreator:
		return PlanLimits{RPM: 30, DailyJobs: 100, MaxAPIKeys: 2}
	case PlanAgency:
		return PlanLimits{RPM: 120, DailyJobs: 1000, MaxAPIKeys: 5}
	case PlanAgencyPlus:
		return PlanLimits{RPM: 300, DailyJobs: 5000, MaxAPIKeys: 10}
	default:
		return PlanLimits{}
	}
}

// Organization is created lazily on first org-scoped use ("bootstrap").
// Credits are mutated only through the ledger; plan fields only through
// billing entitlement application.
type Organization struct {
	ID         OrganizationID
	Name       string
	Credits    int64
	Plan       PlanTier
	Seats      int
	InviteCode string
	APIEnabled bool
	RPM        int64
	DailyJobs  int64
	MaxAPIKeys int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Membership roles.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Membership links an account to an organization with a role.
type Membership struct {
	OrganizationID OrganizationID
	AccountID      AccountID
	Role           string
	CreatedAt      time.Time
}

// CanManageKeys reports whether the role may create or revoke API keys and
// start billing checkouts.
func CanManageKeys(role string) bool {
	return role == RoleOwner || role == RoleAdmin
}

// Usage is the read projection of an organization's rate-limit counters.
// Counts for stale buckets read as zero; callers never see raw bucket rows.
type Usage struct {
	MinuteCount int64
	MinuteLimit int64
	DayCount    int64
	DayLimit    int64
}
