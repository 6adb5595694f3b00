package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/medusa"
)

// Tag is shared by every browser; an RSVP changes counts for everyone.
const Tag = "events"

// ttl bounds how long edits made on the backend stay invisible.
const ttl = time.Minute

var ErrInvalidRSVP = errors.New("invalid rsvp")

type Backend interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
	RetrieveEvent(ctx context.Context, id string) (*domain.Event, error)
	SubmitRSVP(ctx context.Context, eventID string, rsvp domain.RSVP) (*medusa.RSVPResult, error)
}

type Service struct {
	backend Backend
	cache   cache.Store
	log     *slog.Logger
}

func NewService(backend Backend, store cache.Store, log *slog.Logger) *Service {
	return &Service{backend: backend, cache: store, log: log}
}

// List returns upcoming events. Failures are logged and yield an empty list.
func (s *Service) List(ctx context.Context) []domain.Event {
	const key = "events:list"

	var list []domain.Event
	err := s.cache.Get(ctx, key, &list)
	if err == nil {
		return list
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.WarnContext(ctx, "cache get error", "key", key, "error", err)
	}

	list, err = s.backend.ListEvents(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to fetch events", "error", err)
		return []domain.Event{}
	}
	if list == nil {
		list = []domain.Event{}
	}

	if errSet := s.cache.SetTTL(ctx, key, list, ttl, Tag); errSet != nil {
		s.log.WarnContext(ctx, "cache set error", "key", key, "error", errSet)
	}
	return list
}

// Get returns the event or nil when it does not exist or cannot be fetched.
func (s *Service) Get(ctx context.Context, id string) *domain.Event {
	key := "events:" + id

	var event domain.Event
	err := s.cache.Get(ctx, key, &event)
	if err == nil {
		return &event
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.WarnContext(ctx, "cache get error", "key", key, "error", err)
	}

	found, err := s.backend.RetrieveEvent(ctx, id)
	if errors.Is(err, medusa.ErrNotFound) {
		s.log.InfoContext(ctx, "event not found", "event_id", id)
		return nil
	}
	if err != nil {
		s.log.ErrorContext(ctx, "failed to fetch event", "event_id", id, "error", err)
		return nil
	}

	if errSet := s.cache.SetTTL(ctx, key, found, ttl, Tag); errSet != nil {
		s.log.WarnContext(ctx, "cache set error", "key", key, "error", errSet)
	}
	return found
}

func (s *Service) RSVP(ctx context.Context, eventID string, rsvp domain.RSVP) (*medusa.RSVPResult, error) {
	rsvp.Name = strings.TrimSpace(rsvp.Name)
	rsvp.Email = strings.TrimSpace(rsvp.Email)
	if eventID == "" {
		return nil, fmt.Errorf("%w: missing event id", ErrInvalidRSVP)
	}
	if rsvp.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidRSVP)
	}
	if _, err := mail.ParseAddress(rsvp.Email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", ErrInvalidRSVP)
	}

	res, err := s.backend.SubmitRSVP(ctx, eventID, rsvp)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to submit rsvp", "event_id", eventID, "error", err)
		return nil, fmt.Errorf("submit rsvp for %s: %w", eventID, err)
	}

	if err = s.cache.Revalidate(ctx, Tag); err != nil {
		s.log.WarnContext(ctx, "cache revalidation failed", "tag", Tag, "error", err)
	}
	return res, nil
}
