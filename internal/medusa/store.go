package medusa

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type regionsResponse struct {
	Regions []domain.Region `json:"regions"`
}

func (c *Client) ListRegions(ctx context.Context) ([]domain.Region, error) {
	var resp regionsResponse
	q := url.Values{"fields": {"*countries"}}
	if err := c.do(ctx, http.MethodGet, "/store/regions", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Regions, nil
}

type customerResponse struct {
	Customer *domain.Customer `json:"customer"`
}

// RetrieveCustomer returns the logged-in customer, or nil for anonymous
// sessions and expired tokens.
func (c *Client) RetrieveCustomer(ctx context.Context) (*domain.Customer, error) {
	if authToken(ctx) == "" {
		return nil, nil
	}

	var resp customerResponse
	q := url.Values{"fields": {"*employee, *orders"}}
	err := c.do(ctx, http.MethodGet, "/store/customers/me", q, nil, &resp)
	if errors.Is(err, ErrUnauthorized) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return resp.Customer, nil
}

// Login exchanges email/password for a session JWT.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	in := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password}
	if err := c.do(ctx, http.MethodPost, "/auth/customer/emailpass", nil, in, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", ErrUnauthorized
	}
	return resp.Token, nil
}

type eventsResponse struct {
	Events []domain.Event `json:"events"`
}

type eventResponse struct {
	Event *domain.Event `json:"event"`
}

// RSVPResult is the backend's acknowledgement of an RSVP.
type RSVPResult struct {
	Message string         `json:"message,omitempty"`
	RSVP    map[string]any `json:"rsvp,omitempty"`
	Event   *domain.Event  `json:"event,omitempty"`
}

func (c *Client) ListEvents(ctx context.Context) ([]domain.Event, error) {
	var resp eventsResponse
	if err := c.do(ctx, http.MethodGet, "/store/events", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

func (c *Client) RetrieveEvent(ctx context.Context, id string) (*domain.Event, error) {
	var resp eventResponse
	if err := c.do(ctx, http.MethodGet, "/store/events/"+url.PathEscape(id), nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Event == nil {
		return nil, ErrNotFound
	}
	return resp.Event, nil
}

func (c *Client) SubmitRSVP(ctx context.Context, eventID string, rsvp domain.RSVP) (*RSVPResult, error) {
	var resp RSVPResult
	path := "/store/events/" + url.PathEscape(eventID) + "/rsvp"
	if err := c.do(ctx, http.MethodPost, path, nil, rsvp, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
