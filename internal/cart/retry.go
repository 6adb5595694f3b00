package cart

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/medusa"
	"github.com/fjod/go_cart/storefront/internal/session"
)

// retrieveWithRetry fetches cartID up to attempts times, waiting 2^(n-1)
// seconds after failed attempt n. A cart the backend does not know is not
// retried. It returns nil once attempts are exhausted.
func (s *Service) retrieveWithRetry(ctx context.Context, cartID string, attempts int) *domain.Cart {
	if cartID == "" {
		s.log.DebugContext(ctx, "no cart id in cookies")
		return nil
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		s.log.DebugContext(ctx, "retrieving cart", "cart_id", cartID, "attempt", attempt, "max_attempts", attempts)

		cart, err := s.backend.RetrieveCart(ctx, cartID)
		if err == nil {
			return cart
		}
		if errors.Is(err, medusa.ErrNotFound) {
			s.log.InfoContext(ctx, "cart not found on backend", "cart_id", cartID)
			return nil
		}

		lastErr = err
		s.log.WarnContext(ctx, "cart retrieval attempt failed", "cart_id", cartID, "attempt", attempt, "error", err)

		if attempt < attempts {
			delay := time.Duration(1<<(attempt-1)) * time.Second
			if errSleep := s.sleep(ctx, delay); errSleep != nil {
				lastErr = errSleep
				break
			}
		}
	}

	s.log.ErrorContext(ctx, "all cart retrieval attempts failed", "cart_id", cartID, "error", lastErr)
	return nil
}

// RetrieveCart returns the cart with the given id, or the session's cart when
// id is empty. Missing carts and backend failures both yield nil.
func (s *Service) RetrieveCart(ctx context.Context, sess *session.Session, id string) *domain.Cart {
	if id == "" {
		id = sess.CartID()
	}
	if id == "" {
		return nil
	}

	cart, err := s.backend.RetrieveCart(ctx, id)
	if err != nil {
		if !errors.Is(err, medusa.ErrNotFound) {
			s.log.WarnContext(ctx, "retrieve cart failed", "cart_id", id, "error", err)
		}
		return nil
	}
	return cart
}
