package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountID is a value object for account identity. It equals the identity
// provider's subject id, so an account row is created lazily at first
// authenticated use.
type AccountID struct{ uuid.UUID }

// NewAccountID creates a new AccountID from uuid.
func NewAccountID(id uuid.UUID) AccountID { return AccountID{UUID: id} }

// String returns the canonical string form.
func (a AccountID) String() string { return a.UUID.String() }

// Account holds per-user state. Credits are mutated only through the ledger.
type Account struct {
	ID          AccountID
	Credits     int64
	ActiveOrgID *OrganizationID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
