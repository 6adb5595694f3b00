package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/medusa"
	"github.com/go-chi/chi/v5"
)

type EventService interface {
	List(ctx context.Context) []domain.Event
	Get(ctx context.Context, id string) *domain.Event
	RSVP(ctx context.Context, eventID string, rsvp domain.RSVP) (*medusa.RSVPResult, error)
}

type EventsHandler struct {
	events  EventService
	timeout time.Duration
}

func NewEventsHandler(events EventService, timeout time.Duration) *EventsHandler {
	return &EventsHandler{events: events, timeout: timeout}
}

// GET /api/events
func (h *EventsHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	respondJSON(w, http.StatusOK, map[string]any{"events": h.events.List(ctx)})
}

// GET /api/events/{eventID}
func (h *EventsHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	event := h.events.Get(ctx, chi.URLParam(r, "eventID"))
	if event == nil {
		respondError(w, http.StatusNotFound, "not_found", "event not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"event": event})
}

// POST /api/events/{eventID}/rsvp
func (h *EventsHandler) SubmitRSVP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req domain.RSVP
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	res, err := h.events.RSVP(ctx, chi.URLParam(r, "eventID"), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, res)
}
