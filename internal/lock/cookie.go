package lock

import (
	"context"

	"github.com/fjod/go_cart/storefront/internal/session"
)

// CookieGuard keeps the creation lock in the browser's lock cookie. It is a
// check-then-set over request-scoped cookies: two parallel requests from one
// browser both see the lock free and both acquire it.
type CookieGuard struct{}

func NewCookieGuard() *CookieGuard { return &CookieGuard{} }

func (CookieGuard) Held(_ context.Context, s *session.Session) (bool, error) {
	return s.CreationLock() != "", nil
}

func (CookieGuard) Acquire(_ context.Context, s *session.Session, token string) (bool, error) {
	s.SetCreationLock(token)
	return true, nil
}

func (CookieGuard) Release(_ context.Context, s *session.Session, _ string) error {
	s.RemoveCreationLock()
	return nil
}

// Publish is a no-op: the cart cookie written by the creator is the hand-off.
func (CookieGuard) Publish(context.Context, *session.Session, string) error {
	return nil
}

func (CookieGuard) Lookup(_ context.Context, s *session.Session) (string, error) {
	return s.CartID(), nil
}
