package billing

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Gautam2117/cliplingua/internal/application/ports"
	"github.com/Gautam2117/cliplingua/internal/domain"
	domerrors "github.com/Gautam2117/cliplingua/internal/domain/errors"
)

// Pricing in cents. Seat price is per seat; api-enable is a flat unlock that
// puts the org on the creator tier.
const (
	SeatPriceCents      int64 = 900
	APIEnablePriceCents int64 = 2900
)

// CreateOrderInput starts a checkout for the caller's organization.
type CreateOrderInput struct {
	AccountID domain.AccountID
	OrgID     domain.OrganizationID
	Kind      domain.OrderKind
	SeatDelta int
}

// CreateOrder records a checkout in status "created". The payment provider
// settles it out of band; entitlements apply only after signature-verified
// confirmation.
type CreateOrder struct {
	orgs   ports.OrganizationRepository
	orders ports.OrderRepository
}

// NewCreateOrder builds the use case.
func NewCreateOrder(orgs ports.OrganizationRepository, orders ports.OrderRepository) *CreateOrder {
	return &CreateOrder{orgs: orgs, orders: orders}
}

// Execute creates the order. Requires owner or admin role.
func (uc *CreateOrder) Execute(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	role, err := uc.orgs.GetMemberRole(ctx, input.OrgID, input.AccountID)
	if err != nil {
		return nil, err
	}
	if !domain.CanManageKeys(role) {
		return nil, domerrors.ErrForbidden
	}

	var amount int64
	switch input.Kind {
	case domain.OrderSeats:
		if input.SeatDelta < 1 {
			return nil, fmt.Errorf("seat orders need a positive seat count")
		}
		amount = int64(input.SeatDelta) * SeatPriceCents
	case domain.OrderAPIEnable:
		input.SeatDelta = 0
		amount = APIEnablePriceCents
	default:
		return nil, fmt.Errorf("unknown order kind %q", input.Kind)
	}

	providerOrderID, err := generateProviderOrderID()
	if err != nil {
		return nil, err
	}
	order := &domain.Order{
		ID:              domain.NewOrderID(uuid.New()),
		OrgID:           input.OrgID,
		Kind:            input.Kind,
		SeatDelta:       input.SeatDelta,
		AmountCents:     amount,
		ProviderOrderID: providerOrderID,
		Status:          domain.OrderCreated,
		CreatedAt:       time.Now(),
	}
	if err := uc.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func generateProviderOrderID() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "order_" + hex.EncodeToString(b), nil
}
