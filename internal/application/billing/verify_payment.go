package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/rs/zerolog"

	"github.com/Gautam2117/cliplingua/internal/application/ports"
	"github.com/Gautam2117/cliplingua/internal/domain"
	domerrors "github.com/Gautam2117/cliplingua/internal/domain/errors"
)

// VerifyPaymentInput is the provider's confirmation callback payload.
type VerifyPaymentInput struct {
	ProviderOrderID string
	PaymentID       string
	Signature       string // hex HMAC-SHA256 over "order_id|payment_id"
}

// VerifyPayment checks the provider signature and applies the order's
// entitlement exactly once. Re-verifying an already-paid order is a no-op
// success; the created->paid transition is the idempotency guard.
type VerifyPayment struct {
	orders ports.OrderRepository
	orgs   ports.OrganizationRepository
	secret []byte
	log    zerolog.Logger
}

// NewVerifyPayment builds the use case with the provider's shared secret.
func NewVerifyPayment(orders ports.OrderRepository, orgs ports.OrganizationRepository, secret string, log zerolog.Logger) *VerifyPayment {
	return &VerifyPayment{orders: orders, orgs: orgs, secret: []byte(secret), log: log}
}

// Execute verifies and settles the order.
func (uc *VerifyPayment) Execute(ctx context.Context, input VerifyPaymentInput) (*domain.Order, error) {
	order, err := uc.orders.GetByProviderOrderID(ctx, input.ProviderOrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domerrors.ErrOrderMismatch
	}
	if !uc.signatureValid(input.ProviderOrderID, input.PaymentID, input.Signature) {
		return nil, domerrors.ErrInvalidSignature
	}

	applied, err := uc.orders.MarkPaid(ctx, order.ID, input.PaymentID)
	if err != nil {
		return nil, err
	}
	order.Status = domain.OrderPaid
	order.PaymentID = input.PaymentID
	if !applied {
		// Already paid; the entitlement was applied on the first verify.
		return order, nil
	}

	switch order.Kind {
	case domain.OrderSeats:
		err = uc.orgs.AddSeats(ctx, order.OrgID, order.SeatDelta)
	case domain.OrderAPIEnable:
		err = uc.orgs.EnableAPI(ctx, order.OrgID, domain.PlanCreator, domain.LimitsFor(domain.PlanCreator))
	}
	if err != nil {
		// The order is paid; a failed entitlement write needs operator eyes,
		// not a retryable client error.
		uc.log.Error().Err(err).
			Str("order_id", order.ID.String()).
			Str("kind", string(order.Kind)).
			Msg("entitlement apply failed for paid order")
		return nil, err
	}
	return order, nil
}

func (uc *VerifyPayment) signatureValid(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, uc.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign computes the provider signature for an order/payment pair. Exported
// for tests and for local provider emulation.
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
