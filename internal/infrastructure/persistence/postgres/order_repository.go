package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gautam2117/cliplingua/internal/application/ports"
	"github.com/Gautam2117/cliplingua/internal/domain"
)

// OrderRepository persists billing orders.
type OrderRepository struct {
	pool *pgxpool.Pool
}

var _ ports.OrderRepository = (*OrderRepository)(nil)

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO orders (id, org_id, kind, seat_delta, amount_cents, provider_order_id, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		order.ID.UUID, order.OrgID.UUID, string(order.Kind), order.SeatDelta,
		order.AmountCents, order.ProviderOrderID, string(order.Status), order.CreatedAt,
	)
	return err
}

func (r *OrderRepository) GetByProviderOrderID(ctx context.Context, providerOrderID string) (*domain.Order, error) {
	var o domain.Order
	var kind, status string
	err := r.pool.QueryRow(ctx,
		`SELECT id, org_id, kind, seat_delta, amount_cents, provider_order_id, status, payment_id, paid_at, created_at
		 FROM orders WHERE provider_order_id = $1`,
		providerOrderID,
	).Scan(&o.ID.UUID, &o.OrgID.UUID, &kind, &o.SeatDelta, &o.AmountCents,
		&o.ProviderOrderID, &status, &o.PaymentID, &o.PaidAt, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	o.Kind = domain.OrderKind(kind)
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

// MarkPaid is the idempotency guard for entitlement application: the
// conditional UPDATE succeeds for exactly one verify call per order.
func (r *OrderRepository) MarkPaid(ctx context.Context, id domain.OrderID, paymentID string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = 'paid', payment_id = $2, paid_at = now()
		 WHERE id = $1 AND status = 'created'`,
		id.UUID, paymentID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
