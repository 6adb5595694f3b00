package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Cookie names shared with the rendering layer.
const (
	CookieAuthToken        = "_medusa_jwt"
	CookieCartID           = "_medusa_cart_id"
	CookieCartCreationLock = "_medusa_cart_creation_lock"
	CookieRegionID         = "_medusa_region_id"
	CookieCustomerID       = "_medusa_customer_id"
	CookieCacheID          = "_medusa_cache_id"
)

const (
	authTokenMaxAge    = 7 * 24 * time.Hour
	cartIDMaxAge       = 7 * 24 * time.Hour
	CreationLockMaxAge = 30 * time.Second
	regionIDMaxAge     = 30 * 24 * time.Hour
	customerIDMaxAge   = 7 * 24 * time.Hour
	cacheIDMaxAge      = 24 * time.Hour
)

// Session is the storefront's view of one request's cookie jar. Reads see the
// request cookies overlaid with whatever this request has already written, so
// a value set earlier in the request is visible to later reads.
type Session struct {
	mu      sync.Mutex
	r       *http.Request
	w       http.ResponseWriter
	secure  bool
	written map[string]*string // nil value: removed in this request
}

func New(w http.ResponseWriter, r *http.Request, secure bool) *Session {
	return &Session{
		r:       r,
		w:       w,
		secure:  secure,
		written: make(map[string]*string),
	}
}

type ctxKey struct{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the request's session or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

func (s *Session) get(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.written[name]; ok {
		if v == nil {
			return ""
		}
		return *v
	}
	c, err := s.r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func (s *Session) set(name, value string, maxAge time.Duration, sameSite http.SameSite) {
	s.mu.Lock()
	defer s.mu.Unlock()

	http.SetCookie(s.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: sameSite,
	})
	s.written[name] = &value
}

func (s *Session) remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	http.SetCookie(s.w, &http.Cookie{
		Name:   name,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	s.written[name] = nil
}

func (s *Session) AuthToken() string { return s.get(CookieAuthToken) }

func (s *Session) SetAuthToken(token string) {
	s.set(CookieAuthToken, token, authTokenMaxAge, http.SameSiteStrictMode)
}

func (s *Session) RemoveAuthToken() { s.remove(CookieAuthToken) }

func (s *Session) CartID() string { return s.get(CookieCartID) }

// SetCartID writes the cart cookie and reports whether it reads back.
// Lax so the cart follows the customer across subdomains.
func (s *Session) SetCartID(cartID string) bool {
	if cartID == "" {
		return false
	}
	s.set(CookieCartID, cartID, cartIDMaxAge, http.SameSiteLaxMode)
	return s.CartID() == cartID
}

func (s *Session) RemoveCartID() bool {
	s.remove(CookieCartID)
	return s.CartID() == ""
}

func (s *Session) CreationLock() string { return s.get(CookieCartCreationLock) }

func (s *Session) SetCreationLock(token string) {
	s.set(CookieCartCreationLock, token, CreationLockMaxAge, http.SameSiteStrictMode)
}

func (s *Session) RemoveCreationLock() { s.remove(CookieCartCreationLock) }

func (s *Session) RegionID() string { return s.get(CookieRegionID) }

func (s *Session) SetRegionID(regionID string) {
	s.set(CookieRegionID, regionID, regionIDMaxAge, http.SameSiteStrictMode)
}

func (s *Session) CustomerID() string { return s.get(CookieCustomerID) }

func (s *Session) SetCustomerID(customerID string) {
	s.set(CookieCustomerID, customerID, customerIDMaxAge, http.SameSiteStrictMode)
}

func (s *Session) RemoveCustomerID() { s.remove(CookieCustomerID) }

func (s *Session) CacheID() string { return s.get(CookieCacheID) }

// EnsureCacheID issues a cache id for browsers that do not carry one yet.
func (s *Session) EnsureCacheID() string {
	if id := s.CacheID(); id != "" {
		return id
	}
	id := uuid.NewString()
	s.set(CookieCacheID, id, cacheIDMaxAge, http.SameSiteLaxMode)
	return id
}

// Key identifies the browser session across concurrent requests.
func (s *Session) Key() string { return s.CacheID() }

// CacheTag scopes a cache partition name to this browser, e.g. "carts-<cache id>".
// It is empty when the browser has no cache id.
func (s *Session) CacheTag(name string) string {
	cacheID := s.CacheID()
	if cacheID == "" {
		return ""
	}
	return name + "-" + cacheID
}
