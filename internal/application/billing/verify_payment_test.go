package billing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gautam2117/cliplingua/internal/domain"
	domerrors "github.com/Gautam2117/cliplingua/internal/domain/errors"
)

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*domain.Order)}
}

func (f *fakeOrderRepo) Create(_ context.Context, order *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *order
	f.orders[order.ProviderOrderID] = &copied
	return nil
}

func (f *fakeOrderRepo) GetByProviderOrderID(_ context.Context, providerOrderID string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[providerOrderID]
	if !ok {
		return nil, nil
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrderRepo) MarkPaid(_ context.Context, id domain.OrderID, paymentID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, order := range f.orders {
		if order.ID == id {
			if order.Status != domain.OrderCreated {
				return false, nil
			}
			order.Status = domain.OrderPaid
			order.PaymentID = paymentID
			return true, nil
		}
	}
	return false, nil
}

type fakeOrgRepo struct {
	mu         sync.Mutex
	orgs       map[domain.OrganizationID]*domain.Organization
	roles      map[string]string
	seatsAdded int
}

func newFakeOrgRepo() *fakeOrgRepo {
	return &fakeOrgRepo{
		orgs:  make(map[domain.OrganizationID]*domain.Organization),
		roles: make(map[string]string),
	}
}

func (f *fakeOrgRepo) Create(_ context.Context, org *domain.Organization) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *org
	f.orgs[org.ID] = &copied
	return nil
}

func (f *fakeOrgRepo) GetByID(_ context.Context, id domain.OrganizationID) (*domain.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	org, ok := f.orgs[id]
	if !ok {
		return nil, nil
	}
	copied := *org
	return &copied, nil
}

func (f *fakeOrgRepo) GetByInviteCode(_ context.Context, code string) (*domain.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, org := range f.orgs {
		if org.InviteCode == code {
			copied := *org
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeOrgRepo) AddMember(_ context.Context, orgID domain.OrganizationID, accountID domain.AccountID, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := orgID.String() + "/" + accountID.String()
	if _, ok := f.roles[key]; !ok {
		f.roles[key] = role
	}
	return nil
}

func (f *fakeOrgRepo) GetMemberRole(_ context.Context, orgID domain.OrganizationID, accountID domain.AccountID) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roles[orgID.String()+"/"+accountID.String()], nil
}

func (f *fakeOrgRepo) AddSeats(_ context.Context, orgID domain.OrganizationID, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if org, ok := f.orgs[orgID]; ok {
		org.Seats += delta
	}
	f.seatsAdded += delta
	return nil
}

func (f *fakeOrgRepo) EnableAPI(_ context.Context, orgID domain.OrganizationID, plan domain.PlanTier, limits domain.PlanLimits) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if org, ok := f.orgs[orgID]; ok {
		org.APIEnabled = true
		org.Plan = plan
		org.RPM = limits.RPM
		org.DailyJobs = limits.DailyJobs
		org.MaxAPIKeys = limits.MaxAPIKeys
	}
	return nil
}

const testSecret = "test-payment-secret"

func seedOrder(t *testing.T, orders *fakeOrderRepo, kind domain.OrderKind, seatDelta int) *domain.Order {
	t.Helper()
	order := &domain.Order{
		ID:              domain.NewOrderID(uuid.New()),
		OrgID:           domain.NewOrganizationID(uuid.New()),
		Kind:            kind,
		SeatDelta:       seatDelta,
		AmountCents:     int64(seatDelta) * SeatPriceCents,
		ProviderOrderID: "order_abc123",
		Status:          domain.OrderCreated,
	}
	require.NoError(t, orders.Create(context.Background(), order))
	return order
}

func TestVerifyPaymentAppliesSeats(t *testing.T) {
	orders := newFakeOrderRepo()
	orgs := newFakeOrgRepo()
	order := seedOrder(t, orders, domain.OrderSeats, 3)
	require.NoError(t, orgs.Create(context.Background(), &domain.Organization{ID: order.OrgID, Seats: 1}))
	uc := NewVerifyPayment(orders, orgs, testSecret, zerolog.Nop())

	verified, err := uc.Execute(context.Background(), VerifyPaymentInput{
		ProviderOrderID: order.ProviderOrderID,
		PaymentID:       "pay_1",
		Signature:       Sign(testSecret, order.ProviderOrderID, "pay_1"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPaid, verified.Status)

	org, _ := orgs.GetByID(context.Background(), order.OrgID)
	assert.Equal(t, 4, org.Seats)
}

func TestVerifyPaymentIsIdempotent(t *testing.T) {
	orders := newFakeOrderRepo()
	orgs := newFakeOrgRepo()
	order := seedOrder(t, orders, domain.OrderSeats, 2)
	require.NoError(t, orgs.Create(context.Background(), &domain.Organization{ID: order.OrgID, Seats: 1}))
	uc := NewVerifyPayment(orders, orgs, testSecret, zerolog.Nop())

	sig := Sign(testSecret, order.ProviderOrderID, "pay_1")
	input := VerifyPaymentInput{ProviderOrderID: order.ProviderOrderID, PaymentID: "pay_1", Signature: sig}

	_, err := uc.Execute(context.Background(), input)
	require.NoError(t, err)
	verified, err := uc.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPaid, verified.Status)

	// Seats applied exactly once.
	assert.Equal(t, 2, orgs.seatsAdded)
}

func TestVerifyPaymentRejectsBadSignature(t *testing.T) {
	orders := newFakeOrderRepo()
	orgs := newFakeOrgRepo()
	order := seedOrder(t, orders, domain.OrderSeats, 1)
	uc := NewVerifyPayment(orders, orgs, testSecret, zerolog.Nop())

	_, err := uc.Execute(context.Background(), VerifyPaymentInput{
		ProviderOrderID: order.ProviderOrderID,
		PaymentID:       "pay_1",
		Signature:       Sign("wrong-secret", order.ProviderOrderID, "pay_1"),
	})
	assert.True(t, errors.Is(err, domerrors.ErrInvalidSignature))
	assert.Equal(t, 0, orgs.seatsAdded)
}

func TestVerifyPaymentUnknownOrder(t *testing.T) {
	uc := NewVerifyPayment(newFakeOrderRepo(), newFakeOrgRepo(), testSecret, zerolog.Nop())

	_, err := uc.Execute(context.Background(), VerifyPaymentInput{
		ProviderOrderID: "order_missing",
		PaymentID:       "pay_1",
		Signature:       Sign(testSecret, "order_missing", "pay_1"),
	})
	assert.True(t, errors.Is(err, domerrors.ErrOrderMismatch))
}

func TestVerifyPaymentEnablesAPI(t *testing.T) {
	orders := newFakeOrderRepo()
	orgs := newFakeOrgRepo()
	order := &domain.Order{
		ID:              domain.NewOrderID(uuid.New()),
		OrgID:           domain.NewOrganizationID(uuid.New()),
		Kind:            domain.OrderAPIEnable,
		AmountCents:     APIEnablePriceCents,
		ProviderOrderID: "order_api",
		Status:          domain.OrderCreated,
	}
	require.NoError(t, orders.Create(context.Background(), order))
	require.NoError(t, orgs.Create(context.Background(), &domain.Organization{ID: order.OrgID, Plan: domain.PlanFree}))
	uc := NewVerifyPayment(orders, orgs, testSecret, zerolog.Nop())

	_, err := uc.Execute(context.Background(), VerifyPaymentInput{
		ProviderOrderID: order.ProviderOrderID,
		PaymentID:       "pay_2",
		Signature:       Sign(testSecret, order.ProviderOrderID, "pay_2"),
	})
	require.NoError(t, err)

	org, _ := orgs.GetByID(context.Background(), order.OrgID)
	assert.True(t, org.APIEnabled)
	assert.Equal(t, domain.PlanCreator, org.Plan)
	assert.Equal(t, int64(30), org.RPM)
	assert.Equal(t, int64(100), org.DailyJobs)
	assert.Equal(t, 2, org.MaxAPIKeys)
}
