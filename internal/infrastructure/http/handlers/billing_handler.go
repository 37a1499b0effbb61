package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/Gautam2117/cliplingua/internal/application/billing"
	"github.com/Gautam2117/cliplingua/internal/application/orgs"
	"github.com/Gautam2117/cliplingua/internal/domain"
	"github.com/Gautam2117/cliplingua/internal/infrastructure/http/middleware"
)

// BillingHandler handles /billing/* (JWT surface).
type BillingHandler struct {
	createOrder   *billing.CreateOrder
	verifyPayment *billing.VerifyPayment
	bootstrap     *orgs.Bootstrap
	validate      *validator.Validate
	log           zerolog.Logger
}

func NewBillingHandler(createOrder *billing.CreateOrder, verifyPayment *billing.VerifyPayment, bootstrap *orgs.Bootstrap, log zerolog.Logger) *BillingHandler {
	return &BillingHandler{
		createOrder:   createOrder,
		verifyPayment: verifyPayment,
		bootstrap:     bootstrap,
		validate:      validator.New(),
		log:           log,
	}
}

// OrderResponse is the JSON shape of a billing order.
type OrderResponse struct {
	ID              string `json:"id"`
	Kind            string `json:"kind"`
	SeatDelta       int    `json:"seat_delta,omitempty"`
	AmountCents     int64  `json:"amount_cents"`
	ProviderOrderID string `json:"provider_order_id"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at"`
}

func orderResponse(order *domain.Order) OrderResponse {
	return OrderResponse{
		ID:              order.ID.String(),
		Kind:            string(order.Kind),
		SeatDelta:       order.SeatDelta,
		AmountCents:     order.AmountCents,
		ProviderOrderID: order.ProviderOrderID,
		Status:          string(order.Status),
		CreatedAt:       order.CreatedAt.Format(time.RFC3339),
	}
}

// CreateOrder handles POST /billing/orders.
func (h *BillingHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())
	if account == nil {
		writeErr(w, http.StatusUnauthorized, ErrCodeUnauthorized, "unauthorized")
		return
	}
	var body struct {
		Kind      string `json:"kind" validate:"required,oneof=seats api-enable"`
		SeatDelta int    `json:"seat_delta" validate:"omitempty,min=1,max=500"`
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
	order, err := h.createOrder.Execute(r.Context(), billing.CreateOrderInput{
		AccountID: account.ID,
		OrgID:     org.ID,
		Kind:      domain.OrderKind(body.Kind),
		SeatDelta: body.SeatDelta,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, orderResponse(order))
}

// VerifyOrder handles POST /billing/orders/verify: the provider's signed
// confirmation relayed by the client after checkout.
func (h *BillingHandler) VerifyOrder(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())
	if account == nil {
		writeErr(w, http.StatusUnauthorized, ErrCodeUnauthorized, "unauthorized")
		return
	}
	var body struct {
		OrderID   string `json:"order_id" validate:"required,max=64"`
		PaymentID string `json:"payment_id" validate:"required,max=64"`
		Signature string `json:"signature" validate:"required,len=64,hexadecimal"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}
	order, err := h.verifyPayment.Execute(r.Context(), billing.VerifyPaymentInput{
		ProviderOrderID: body.OrderID,
		PaymentID:       body.PaymentID,
		Signature:       body.Signature,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponse(order))
}
