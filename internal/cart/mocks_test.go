package cart

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/medusa"
	"github.com/fjod/go_cart/storefront/internal/session"
)

type MockBackend struct {
	mu sync.Mutex

	carts        map[string]*domain.Cart
	nextID       int
	RetrieveErrs []error // returned, in order, before carts are consulted
	HideCreated  bool    // created carts cannot be retrieved
	CreateErr    error
	CreateHook   func()
	UpdateErr    error
	Complete     *domain.CompleteResult

	// queued onto RetrieveErrs once an update succeeds
	RetrieveErrsAfterUpdate []error

	RetrieveCalls int
	Created       []medusa.CreateCartInput
	Updates       []medusa.UpdateCartInput
	Calls         []string
}

func NewMockBackend(carts ...*domain.Cart) *MockBackend {
	m := &MockBackend{carts: make(map[string]*domain.Cart)}
	for _, c := range carts {
		m.carts[c.ID] = c
	}
	return m
}

func (m *MockBackend) record(call string) {
	m.Calls = append(m.Calls, call)
}

func (m *MockBackend) lookup(cartID string) (*domain.Cart, error) {
	c, ok := m.carts[cartID]
	if !ok {
		return nil, &medusa.APIError{Status: http.StatusNotFound, Message: "cart not found"}
	}
	cp := *c
	return &cp, nil
}

func (m *MockBackend) RetrieveCart(_ context.Context, cartID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RetrieveCalls++
	if len(m.RetrieveErrs) > 0 {
		err := m.RetrieveErrs[0]
		m.RetrieveErrs = m.RetrieveErrs[1:]
		return nil, err
	}
	return m.lookup(cartID)
}

func (m *MockBackend) CreateCart(_ context.Context, in medusa.CreateCartInput) (*domain.Cart, error) {
	if m.CreateHook != nil {
		m.CreateHook()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Created = append(m.Created, in)
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.nextID++
	c := &domain.Cart{ID: fmt.Sprintf("cart_%d", m.nextID), RegionID: in.RegionID, Metadata: in.Metadata}
	if !m.HideCreated {
		m.carts[c.ID] = c
	}
	cp := *c
	return &cp, nil
}

func (m *MockBackend) UpdateCart(_ context.Context, cartID string, in medusa.UpdateCartInput) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Updates = append(m.Updates, in)
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	c, ok := m.carts[cartID]
	if !ok {
		return nil, &medusa.APIError{Status: http.StatusNotFound, Message: "cart not found"}
	}
	if in.RegionID != "" {
		c.RegionID = in.RegionID
		c.Region = nil
	}
	if in.Email != "" {
		c.Email = in.Email
	}
	m.RetrieveErrs = append(m.RetrieveErrs, m.RetrieveErrsAfterUpdate...)
	m.RetrieveErrsAfterUpdate = nil
	return m.lookup(cartID)
}

func (m *MockBackend) AddLineItem(_ context.Context, cartID string, in medusa.LineItemInput) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("add:" + cartID + ":" + in.VariantID)
	c, err := m.lookup(cartID)
	if err != nil {
		return nil, err
	}
	m.carts[cartID].Items = append(m.carts[cartID].Items, domain.LineItem{ID: "li_" + in.VariantID, VariantID: in.VariantID, Quantity: in.Quantity})
	return c, nil
}

func (m *MockBackend) AddLineItemsBulk(_ context.Context, cartID string, items []medusa.LineItemInput) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(fmt.Sprintf("bulk:%s:%d", cartID, len(items)))
	return m.lookup(cartID)
}

func (m *MockBackend) UpdateLineItem(_ context.Context, cartID, lineID string, quantity int) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(fmt.Sprintf("update-line:%s:%s:%d", cartID, lineID, quantity))
	return m.lookup(cartID)
}

func (m *MockBackend) DeleteLineItem(_ context.Context, cartID, lineID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("delete-line:" + cartID + ":" + lineID)
	return m.lookup(cartID)
}

func (m *MockBackend) AddShippingMethod(_ context.Context, cartID, optionID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("shipping:" + cartID + ":" + optionID)
	return m.lookup(cartID)
}

func (m *MockBackend) InitiatePaymentSession(_ context.Context, cart *domain.Cart, in medusa.PaymentSessionInput) (*domain.PaymentCollection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("payment:" + cart.ID + ":" + in.ProviderID)
	return &domain.PaymentCollection{ID: "pay_col_1"}, nil
}

func (m *MockBackend) CompleteCart(_ context.Context, cartID string) (*domain.CompleteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("complete:" + cartID)
	return m.Complete, nil
}

func (m *MockBackend) CreateApproval(_ context.Context, cartID string) (*domain.Approval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("approval:" + cartID)
	return &domain.Approval{ID: "appr_1", CartID: cartID, Status: domain.ApprovalPending}, nil
}

func (m *MockBackend) CreatedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Created)
}

func (m *MockBackend) CallsWithPrefix(prefix string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, c := range m.Calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

type MockRegions struct {
	Regions map[string]*domain.Region
	Err     error
}

func (m *MockRegions) Region(_ context.Context, _ string, countryCode string) (*domain.Region, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Regions[strings.ToLower(countryCode)], nil
}

type MockCustomers struct {
	Customer *domain.Customer
	Err      error
}

func (m *MockCustomers) RetrieveCustomer(context.Context) (*domain.Customer, error) {
	return m.Customer, m.Err
}

type MockInvalidator struct {
	mu   sync.Mutex
	Tags []string
}

func (m *MockInvalidator) Revalidate(_ context.Context, tags ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tags = append(m.Tags, tags...)
	return nil
}

func (m *MockInvalidator) Revalidated() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Tags...)
}

type MockTracker struct {
	mu     sync.Mutex
	Events []string
	Props  []map[string]any
}

func (m *MockTracker) Track(_ context.Context, event string, props map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	m.Props = append(m.Props, props)
	return nil
}

type recordingSleep struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingSleep) Sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return nil
}

func (r *recordingSleep) Delays() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

var (
	regionEU = &domain.Region{ID: "reg_eu", CurrencyCode: "eur", Countries: []domain.Country{{ISO2: "dk"}}}
	regionUS = &domain.Region{ID: "reg_us", CurrencyCode: "usd", Countries: []domain.Country{{ISO2: "us"}}}
)

func testRegions() *MockRegions {
	return &MockRegions{Regions: map[string]*domain.Region{"dk": regionEU, "us": regionUS}}
}

type fixture struct {
	backend   *MockBackend
	regions   *MockRegions
	customers *MockCustomers
	cache     *MockInvalidator
	tracker   *MockTracker
	sleep     *recordingSleep
	service   *Service
}

func newFixture(guard CreationGuard, backend *MockBackend) *fixture {
	f := &fixture{
		backend:   backend,
		regions:   testRegions(),
		customers: &MockCustomers{},
		cache:     &MockInvalidator{},
		tracker:   &MockTracker{},
		sleep:     &recordingSleep{},
	}
	f.service = NewService(f.backend, f.regions, f.customers, f.cache, guard, logger.Nop(),
		WithSleep(f.sleep.Sleep),
		WithTracker(f.tracker),
	)
	return f
}

// browser builds the session of one request carrying the given cookies.
func browser(cookies map[string]string) (*session.Session, *httptest.ResponseRecorder) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.AddCookie(&http.Cookie{Name: session.CookieCacheID, Value: "abc"})
	for name, value := range cookies {
		r.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	w := httptest.NewRecorder()
	return session.New(w, r, false), w
}

func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	var found *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			found = c
		}
	}
	return found
}
