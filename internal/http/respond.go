package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/events"
	"github.com/fjod/go_cart/storefront/internal/medusa"
)

var errInvalidBody = errors.New("invalid JSON body")

const backendPendingApprovalMessage = "Cart is pending approval"


type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// ActionResult is the envelope of every cart mutation.
type ActionResult struct {
	Success      bool          `json:"success"`
	Error        string        `json:"error,omitempty"`
	Message      string        `json:"message,omitempty"`
	Cart         *domain.Cart  `json:"cart,omitempty"`
	Order        *domain.Order `json:"order,omitempty"`
	RedirectPath string        `json:"redirect_path,omitempty"`
	Data         any           `json:"data,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
}

// classify maps service and backend errors onto an HTTP status, a stable code
// and the message shown to the shopper.
func classify(err error) (int, string, string) {
	var apiErr *medusa.APIError

	switch {
	case errors.Is(err, cart.ErrPendingApproval), backendPendingApproval(err):
		return http.StatusConflict, "pending_approval", "Cart is locked for approval"
	case errors.Is(err, cart.ErrCreationInProgress):
		return http.StatusConflict, "creation_in_progress", err.Error()
	case errors.Is(err, cart.ErrRegionNotFound):
		return http.StatusNotFound, "region_not_found", err.Error()
	case errors.Is(err, cart.ErrNoCart):
		return http.StatusNotFound, "cart_not_found", err.Error()
	case errors.Is(err, medusa.ErrNotFound):
		return http.StatusNotFound, "not_found", err.Error()
	case errors.Is(err, errInvalidBody):
		return http.StatusBadRequest, "invalid_request", err.Error()
	case errors.Is(err, cart.ErrMissingVariant),
		errors.Is(err, cart.ErrMissingLineItem),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, events.ErrInvalidRSVP):
		return http.StatusBadRequest, "invalid_argument", err.Error()
	case errors.Is(err, medusa.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthenticated", "authentication required"
	case errors.Is(err, medusa.ErrUnavailable):
		return http.StatusServiceUnavailable, "service_unavailable", "commerce backend unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout", "request timed out"
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		return apiErr.Status, "backend_rejected", apiErr.Message
	default:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	}
}

// backendPendingApproval reports the backend's own refusal to touch a cart
// that awaits approval.
func backendPendingApproval(err error) bool {
	var apiErr *medusa.APIError
	return errors.As(err, &apiErr) && apiErr.Message == backendPendingApprovalMessage
}

func handleServiceError(w http.ResponseWriter, err error) {
	status, code, message := classify(err)
	respondError(w, status, code, message)
}

// respondActionError reports a failed cart mutation in the action envelope.
func respondActionError(w http.ResponseWriter, err error) {
	status, _, message := classify(err)
	respondJSON(w, status, ActionResult{Success: false, Error: message})
}
