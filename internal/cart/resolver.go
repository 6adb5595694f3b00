package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/medusa"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/google/uuid"
)

// GetOrSetCart returns the session's cart for countryCode, moving it to the
// country's region when needed, or creates one.
func (s *Service) GetOrSetCart(ctx context.Context, sess *session.Session, countryCode string) (*domain.Cart, error) {
	cart := s.retrieveWithRetry(ctx, sess.CartID(), s.retryAttempts)

	region, err := s.regions.Region(ctx, sess.CacheID(), countryCode)
	if err != nil {
		return nil, fmt.Errorf("resolve region for %s: %w", countryCode, err)
	}
	if region == nil {
		return nil, fmt.Errorf("%w: %s", ErrRegionNotFound, countryCode)
	}

	customer := s.customer(ctx)

	if cart != nil {
		if cart.EffectiveRegionID() != region.ID {
			cart = s.moveToRegion(ctx, sess, cart, region.ID)
		}
		return cart, nil
	}

	return s.createWithLock(ctx, sess, region.ID, customer)
}

func (s *Service) customer(ctx context.Context) *domain.Customer {
	customer, err := s.customers.RetrieveCustomer(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "retrieve customer failed, continuing anonymously", "error", err)
		return nil
	}
	return customer
}

// moveToRegion issues one region update. A failed update keeps the stale cart.
func (s *Service) moveToRegion(ctx context.Context, sess *session.Session, cart *domain.Cart, regionID string) *domain.Cart {
	s.log.InfoContext(ctx, "updating cart region", "cart_id", cart.ID, "from", cart.EffectiveRegionID(), "to", regionID)

	updated, err := s.backend.UpdateCart(ctx, cart.ID, medusa.UpdateCartInput{RegionID: regionID})
	if err != nil {
		s.log.ErrorContext(ctx, "failed to update cart region", "cart_id", cart.ID, "error", err)
		return cart
	}
	s.revalidate(ctx, sess, "carts")

	if fresh := s.retrieveWithRetry(ctx, cart.ID, s.retryAttempts); fresh != nil {
		return fresh
	}
	if updated != nil {
		return updated
	}
	return cart
}

func (s *Service) createWithLock(ctx context.Context, sess *session.Session, regionID string, customer *domain.Customer) (*domain.Cart, error) {
	token := uuid.NewString()
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if err := s.guard.Release(releaseCtx, sess, token); err != nil {
			s.log.WarnContext(ctx, "release cart creation lock failed", "error", err)
		}
	}()

	held, err := s.guard.Held(ctx, sess)
	if err != nil {
		s.log.WarnContext(ctx, "check cart creation lock failed", "error", err)
	}
	if held {
		s.log.InfoContext(ctx, "cart creation already in progress, waiting")
		if existing := s.awaitConcurrentCart(ctx, sess); existing != nil {
			s.log.InfoContext(ctx, "found cart created by concurrent request", "cart_id", existing.ID)
			return existing, nil
		}
	} else if existing := s.publishedCart(ctx, sess, regionID); existing != nil {
		s.log.InfoContext(ctx, "adopting cart published by earlier request", "cart_id", existing.ID)
		return existing, nil
	}

	acquired, err := s.guard.Acquire(ctx, sess, token)
	switch {
	case err != nil:
		s.log.ErrorContext(ctx, "failed to set cart creation lock", "error", err)
	case !acquired:
		if existing := s.awaitConcurrentCart(ctx, sess); existing != nil {
			s.log.InfoContext(ctx, "found cart created by concurrent request", "cart_id", existing.ID)
			return existing, nil
		}
		return nil, ErrCreationInProgress
	}

	s.log.InfoContext(ctx, "creating new cart", "region_id", regionID)

	in := medusa.CreateCartInput{RegionID: regionID}
	if companyID := customer.CompanyID(); companyID != "" {
		in.Metadata = map[string]any{"company_id": companyID}
	}
	created, err := s.backend.CreateCart(ctx, in)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to create new cart", "region_id", regionID, "error", err)
		return nil, fmt.Errorf("create cart: %w", err)
	}
	if created == nil || created.ID == "" {
		return nil, errors.New("create cart: backend returned no cart")
	}

	if !sess.SetCartID(created.ID) {
		s.log.ErrorContext(ctx, "failed to set cart id cookie", "cart_id", created.ID)
	}
	sess.SetRegionID(regionID)
	if customer != nil && customer.ID != "" {
		sess.SetCustomerID(customer.ID)
	}
	if err = s.guard.Publish(ctx, sess, created.ID); err != nil {
		s.log.WarnContext(ctx, "publish created cart failed", "cart_id", created.ID, "error", err)
	}
	s.revalidate(ctx, sess, "carts")

	cart, err := s.backend.RetrieveCart(ctx, created.ID)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrCartVerification, created.ID, err)
	}

	s.log.InfoContext(ctx, "created and verified new cart", "cart_id", cart.ID)
	return cart, nil
}

// awaitConcurrentCart waits once for the request holding the lock and adopts
// the cart it published.
func (s *Service) awaitConcurrentCart(ctx context.Context, sess *session.Session) *domain.Cart {
	if err := s.sleep(ctx, s.contentionWait); err != nil {
		return nil
	}

	cartID, err := s.guard.Lookup(ctx, sess)
	if err != nil {
		s.log.WarnContext(ctx, "lookup concurrent cart failed", "error", err)
	}
	if cartID == "" {
		cartID = sess.CartID()
	}

	cart := s.retrieveWithRetry(ctx, cartID, 1)
	if cart == nil {
		return nil
	}
	if sess.CartID() != cart.ID {
		sess.SetCartID(cart.ID)
	}
	return cart
}

// publishedCart adopts a cart that a finished request from the same browser
// published after this request read its cookies. Completed carts and the id
// already in the cookie are ignored.
func (s *Service) publishedCart(ctx context.Context, sess *session.Session, regionID string) *domain.Cart {
	cartID, err := s.guard.Lookup(ctx, sess)
	if err != nil {
		s.log.WarnContext(ctx, "lookup published cart failed", "error", err)
		return nil
	}
	if cartID == "" || cartID == sess.CartID() {
		return nil
	}

	cart := s.retrieveWithRetry(ctx, cartID, 1)
	if cart == nil || cart.CompletedAt != nil {
		return nil
	}
	sess.SetCartID(cart.ID)
	if cart.EffectiveRegionID() != regionID {
		cart = s.moveToRegion(ctx, sess, cart, regionID)
	}
	return cart
}
