package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type CustomerSource interface {
	RetrieveCustomer(ctx context.Context) (*domain.Customer, error)
}

type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

type CustomerHandler struct {
	customers CustomerSource
	auth      Authenticator
	log       *slog.Logger
	timeout   time.Duration
}

func NewCustomerHandler(customers CustomerSource, auth Authenticator, log *slog.Logger, timeout time.Duration) *CustomerHandler {
	return &CustomerHandler{
		customers: customers,
		auth:      auth,
		log:       log,
		timeout:   timeout,
	}
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GET /api/customer
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	customer, err := h.customers.RetrieveCustomer(ctx)
	if err != nil {
		h.log.ErrorContext(ctx, "error fetching customer", "error", err)
		respondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve customer"})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"customer": customer})
}

// POST /api/auth/login
func (h *CustomerHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LoginRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_argument", "email and password are required")
		return
	}

	token, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.log.WarnContext(ctx, "login failed", "error", err)
		handleServiceError(w, err)
		return
	}

	s := sessionFrom(w, r)
	s.SetAuthToken(token)
	respondJSON(w, http.StatusOK, ActionResult{Success: true, Message: "Logged in"})
}

// POST /api/auth/logout
func (h *CustomerHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(w, r)
	s.RemoveAuthToken()
	s.RemoveCustomerID()
	respondJSON(w, http.StatusOK, ActionResult{Success: true, Message: "Logged out"})
}
