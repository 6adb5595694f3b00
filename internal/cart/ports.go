package cart

import (
	"context"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/medusa"
	"github.com/fjod/go_cart/storefront/internal/session"
)

// Backend is the slice of the commerce API the cart flows need.
type Backend interface {
	RetrieveCart(ctx context.Context, cartID string) (*domain.Cart, error)
	CreateCart(ctx context.Context, in medusa.CreateCartInput) (*domain.Cart, error)
	UpdateCart(ctx context.Context, cartID string, in medusa.UpdateCartInput) (*domain.Cart, error)
	AddLineItem(ctx context.Context, cartID string, in medusa.LineItemInput) (*domain.Cart, error)
	AddLineItemsBulk(ctx context.Context, cartID string, items []medusa.LineItemInput) (*domain.Cart, error)
	UpdateLineItem(ctx context.Context, cartID, lineID string, quantity int) (*domain.Cart, error)
	DeleteLineItem(ctx context.Context, cartID, lineID string) (*domain.Cart, error)
	AddShippingMethod(ctx context.Context, cartID, optionID string) (*domain.Cart, error)
	InitiatePaymentSession(ctx context.Context, cart *domain.Cart, in medusa.PaymentSessionInput) (*domain.PaymentCollection, error)
	CompleteCart(ctx context.Context, cartID string) (*domain.CompleteResult, error)
	CreateApproval(ctx context.Context, cartID string) (*domain.Approval, error)
}

type RegionResolver interface {
	Region(ctx context.Context, cacheID, countryCode string) (*domain.Region, error)
}

type CustomerSource interface {
	RetrieveCustomer(ctx context.Context) (*domain.Customer, error)
}

type Invalidator interface {
	Revalidate(ctx context.Context, tags ...string) error
}

type Tracker interface {
	Track(ctx context.Context, event string, props map[string]any) error
}

// CreationGuard marks "cart creation in progress" for one browser session.
//
// Acquire reports false only when another request owns the lock. Publish
// hands the created cart id to requests that found the lock held, and Lookup
// returns it ("" when nothing was published).
type CreationGuard interface {
	Held(ctx context.Context, s *session.Session) (bool, error)
	Acquire(ctx context.Context, s *session.Session, token string) (bool, error)
	Release(ctx context.Context, s *session.Session, token string) error
	Publish(ctx context.Context, s *session.Session, cartID string) error
	Lookup(ctx context.Context, s *session.Session) (string, error)
}
