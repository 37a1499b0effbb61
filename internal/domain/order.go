package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderID is a value object for billing order identity.
type OrderID struct{ uuid.UUID }

// NewOrderID creates a new OrderID from uuid.
func NewOrderID(id uuid.UUID) OrderID { return OrderID{UUID: id} }

// String returns the canonical string form.
func (o OrderID) String() string { return o.UUID.String() }

// OrderKind is what the checkout buys.
type OrderKind string

const (
	OrderSeats     OrderKind = "seats"
	OrderAPIEnable OrderKind = "api-enable"
)

// OrderStatus transitions created -> paid exactly once.
type OrderStatus string

const (
	OrderCreated OrderStatus = "created"
	OrderPaid    OrderStatus = "paid"
)

// Order is a billing checkout. Entitlements are applied on the created->paid
// transition only, which makes re-verification a no-op.
type Order struct {
	ID              OrderID
	OrgID           OrganizationID
	Kind            OrderKind
	SeatDelta       int
	AmountCents     int64
	ProviderOrderID string
	Status          OrderStatus
	PaymentID       string
	PaidAt          *time.Time
	CreatedAt       time.Time
}
