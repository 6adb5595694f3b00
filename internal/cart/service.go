package cart

import (
	"context"
	"log/slog"
	"time"

	"github.com/fjod/go_cart/storefront/internal/session"
)

const (
	defaultRetryAttempts  = 3
	defaultContentionWait = 2 * time.Second
	releaseTimeout        = 5 * time.Second
)

// Service resolves and mutates the browser's cart on the commerce backend.
type Service struct {
	backend   Backend
	regions   RegionResolver
	customers CustomerSource
	cache     Invalidator
	guard     CreationGuard
	tracker   Tracker
	log       *slog.Logger

	retryAttempts  int
	contentionWait time.Duration
	sleep          func(ctx context.Context, d time.Duration) error
}

type Option func(*Service)

func WithRetryAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.retryAttempts = n
		}
	}
}

func WithContentionWait(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.contentionWait = d
		}
	}
}

func WithTracker(t Tracker) Option {
	return func(s *Service) { s.tracker = t }
}

// WithSleep replaces the timer used for retry backoff and lock contention.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Service) { s.sleep = fn }
}

func NewService(
	backend Backend,
	regions RegionResolver,
	customers CustomerSource,
	cache Invalidator,
	guard CreationGuard,
	log *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		backend:        backend,
		regions:        regions,
		customers:      customers,
		cache:          cache,
		guard:          guard,
		log:            log,
		retryAttempts:  defaultRetryAttempts,
		contentionWait: defaultContentionWait,
		sleep:          sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// revalidate drops the browser's cache partitions; failures are logged only.
func (s *Service) revalidate(ctx context.Context, sess *session.Session, names ...string) {
	tags := make([]string, 0, len(names))
	for _, name := range names {
		tags = append(tags, sess.CacheTag(name))
	}
	if err := s.cache.Revalidate(ctx, tags...); err != nil {
		s.log.WarnContext(ctx, "cache revalidation failed", "tags", names, "error", err)
	}
}

func (s *Service) track(ctx context.Context, event string, props map[string]any) {
	if s.tracker == nil {
		return
	}
	if err := s.tracker.Track(ctx, event, props); err != nil {
		s.log.WarnContext(ctx, "analytics event dropped", "event", event, "error", err)
	}
}
