package http

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/medusa"
	"github.com/fjod/go_cart/storefront/internal/session"
)

type MockCartService struct {
	mu sync.Mutex

	Cart     *domain.Cart
	Err      error
	Order    *cart.PlaceOrderResult
	Redirect string
	Payment  *domain.PaymentCollection
	Approval *domain.Approval

	Calls []string
	Args  map[string][]any
}

func (m *MockCartService) record(name string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, name)
	if m.Args == nil {
		m.Args = make(map[string][]any)
	}
	m.Args[name] = args
}

func (m *MockCartService) ArgsOf(name string) []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Args[name]
}

func (m *MockCartService) result() (*domain.Cart, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Cart, nil
}

func (m *MockCartService) RetrieveCart(ctx context.Context, sess *session.Session, id string) *domain.Cart {
	m.record("RetrieveCart", id)
	return m.Cart
}

func (m *MockCartService) GetOrSetCart(ctx context.Context, sess *session.Session, countryCode string) (*domain.Cart, error) {
	m.record("GetOrSetCart", countryCode)
	return m.result()
}

func (m *MockCartService) UpdateCart(ctx context.Context, sess *session.Session, in medusa.UpdateCartInput) (*domain.Cart, error) {
	m.record("UpdateCart", in)
	return m.result()
}

func (m *MockCartService) AddToCart(ctx context.Context, sess *session.Session, countryCode, variantID string, quantity int) (*domain.Cart, error) {
	m.record("AddToCart", countryCode, variantID, quantity)
	return m.result()
}

func (m *MockCartService) AddToCartBulk(ctx context.Context, sess *session.Session, countryCode string, items []medusa.LineItemInput) (*domain.Cart, error) {
	m.record("AddToCartBulk", countryCode, items)
	return m.result()
}

func (m *MockCartService) UpdateLineItem(ctx context.Context, sess *session.Session, lineID string, quantity int) (*domain.Cart, error) {
	m.record("UpdateLineItem", lineID, quantity)
	return m.result()
}

func (m *MockCartService) DeleteLineItem(ctx context.Context, sess *session.Session, cartID, lineID string) (*domain.Cart, error) {
	m.record("DeleteLineItem", cartID, lineID)
	return m.result()
}

func (m *MockCartService) EmptyCart(ctx context.Context, sess *session.Session) error {
	m.record("EmptyCart")
	return m.Err
}

func (m *MockCartService) SetShippingMethod(ctx context.Context, sess *session.Session, cartID, optionID string) (*domain.Cart, error) {
	m.record("SetShippingMethod", cartID, optionID)
	return m.result()
}

func (m *MockCartService) InitiatePaymentSession(ctx context.Context, sess *session.Session, in medusa.PaymentSessionInput) (*domain.PaymentCollection, error) {
	m.record("InitiatePaymentSession", in)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Payment, nil
}

func (m *MockCartService) ApplyPromotions(ctx context.Context, sess *session.Session, codes []string) (*domain.Cart, error) {
	m.record("ApplyPromotions", codes)
	return m.result()
}

func (m *MockCartService) SetShippingAddress(ctx context.Context, sess *session.Session, addr domain.Address, email string) (*domain.Cart, error) {
	m.record("SetShippingAddress", addr, email)
	return m.result()
}

func (m *MockCartService) SetBillingAddress(ctx context.Context, sess *session.Session, addr domain.Address) (*domain.Cart, error) {
	m.record("SetBillingAddress", addr)
	return m.result()
}

func (m *MockCartService) SetContactDetails(ctx context.Context, sess *session.Session, d cart.ContactDetails) (*domain.Cart, error) {
	m.record("SetContactDetails", d)
	return m.result()
}

func (m *MockCartService) PlaceOrder(ctx context.Context, sess *session.Session, cartID string) (*cart.PlaceOrderResult, error) {
	m.record("PlaceOrder", cartID)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Order, nil
}

func (m *MockCartService) UpdateRegion(ctx context.Context, sess *session.Session, countryCode, currentPath string) (string, error) {
	m.record("UpdateRegion", countryCode, currentPath)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Redirect, nil
}

func (m *MockCartService) CreateCartApproval(ctx context.Context, sess *session.Session, cartID string) (*domain.Approval, error) {
	m.record("CreateCartApproval", cartID)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Approval, nil
}

type MockEvents struct {
	Events  []domain.Event
	RSVPRes *medusa.RSVPResult
	RSVPErr error
}

func (m *MockEvents) List(ctx context.Context) []domain.Event { return m.Events }

func (m *MockEvents) Get(ctx context.Context, id string) *domain.Event {
	for i := range m.Events {
		if m.Events[i].ID == id {
			return &m.Events[i]
		}
	}
	return nil
}

func (m *MockEvents) RSVP(ctx context.Context, eventID string, rsvp domain.RSVP) (*medusa.RSVPResult, error) {
	if m.RSVPErr != nil {
		return nil, m.RSVPErr
	}
	return m.RSVPRes, nil
}

type MockCustomers struct {
	Customer *domain.Customer
	Err      error
}

func (m *MockCustomers) RetrieveCustomer(ctx context.Context) (*domain.Customer, error) {
	return m.Customer, m.Err
}

type MockAuth struct {
	Token string
	Err   error
}

func (m *MockAuth) Login(ctx context.Context, email, password string) (string, error) {
	return m.Token, m.Err
}
