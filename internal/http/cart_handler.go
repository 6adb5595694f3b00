package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/medusa"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/go-chi/chi/v5"
)

type CartService interface {
	RetrieveCart(ctx context.Context, sess *session.Session, id string) *domain.Cart
	GetOrSetCart(ctx context.Context, sess *session.Session, countryCode string) (*domain.Cart, error)
	UpdateCart(ctx context.Context, sess *session.Session, in medusa.UpdateCartInput) (*domain.Cart, error)
	AddToCart(ctx context.Context, sess *session.Session, countryCode, variantID string, quantity int) (*domain.Cart, error)
	AddToCartBulk(ctx context.Context, sess *session.Session, countryCode string, items []medusa.LineItemInput) (*domain.Cart, error)
	UpdateLineItem(ctx context.Context, sess *session.Session, lineID string, quantity int) (*domain.Cart, error)
	DeleteLineItem(ctx context.Context, sess *session.Session, cartID, lineID string) (*domain.Cart, error)
	EmptyCart(ctx context.Context, sess *session.Session) error
	SetShippingMethod(ctx context.Context, sess *session.Session, cartID, optionID string) (*domain.Cart, error)
	InitiatePaymentSession(ctx context.Context, sess *session.Session, in medusa.PaymentSessionInput) (*domain.PaymentCollection, error)
	ApplyPromotions(ctx context.Context, sess *session.Session, codes []string) (*domain.Cart, error)
	SetShippingAddress(ctx context.Context, sess *session.Session, addr domain.Address, email string) (*domain.Cart, error)
	SetBillingAddress(ctx context.Context, sess *session.Session, addr domain.Address) (*domain.Cart, error)
	SetContactDetails(ctx context.Context, sess *session.Session, d cart.ContactDetails) (*domain.Cart, error)
	PlaceOrder(ctx context.Context, sess *session.Session, cartID string) (*cart.PlaceOrderResult, error)
	UpdateRegion(ctx context.Context, sess *session.Session, countryCode, currentPath string) (string, error)
	CreateCartApproval(ctx context.Context, sess *session.Session, cartID string) (*domain.Approval, error)
}

type CartHandler struct {
	carts          CartService
	log            *slog.Logger
	timeout        time.Duration
	defaultCountry string
}

func NewCartHandler(carts CartService, log *slog.Logger, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		log:     log,
		timeout: timeout,
	}
}

// WithDefaultCountry sets the country used by routes without a country code.
func (h *CartHandler) WithDefaultCountry(countryCode string) *CartHandler {
	h.defaultCountry = strings.ToLower(countryCode)
	return h
}

type LineItemDTO struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

type BulkAddRequestDTO struct {
	LineItems []LineItemDTO `json:"line_items"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type PromotionsRequestDTO struct {
	Codes []string `json:"codes"`
}

type ShippingMethodRequestDTO struct {
	CartID   string `json:"cart_id,omitempty"`
	OptionID string `json:"option_id"`
}

type PaymentSessionRequestDTO struct {
	ProviderID string         `json:"provider_id"`
	Context    map[string]any `json:"context,omitempty"`
}

type ShippingAddressRequestDTO struct {
	Address domain.Address `json:"shipping_address"`
	Email   string         `json:"email"`
}

type BillingAddressRequestDTO struct {
	Address domain.Address `json:"billing_address"`
}

type CartRefRequestDTO struct {
	CartID string `json:"cart_id,omitempty"`
}

type RegionRequestDTO struct {
	CountryCode string `json:"country_code"`
	CurrentPath string `json:"current_path"`
}

// GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	c := h.carts.RetrieveCart(ctx, sessionFrom(w, r), r.URL.Query().Get("id"))
	respondJSON(w, http.StatusOK, map[string]any{"cart": c})
}

// POST /api/{countryCode}/cart
// POST /api/cart
func (h *CartHandler) GetOrSetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	c, err := h.carts.GetOrSetCart(ctx, sessionFrom(w, r), h.countryCode(r))
	if err != nil {
		h.log.ErrorContext(ctx, "get or set cart failed", "error", err)
		respondActionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ActionResult{Success: true, Cart: c})
}

// POST /api/{countryCode}/cart/line-items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LineItemDTO
	if err := decodeJSON(r, &req); err != nil {
		respondActionError(w, err)
		return
	}

	c, err := h.carts.AddToCart(ctx, sessionFrom(w, r), h.countryCode(r), req.VariantID, req.Quantity)
	if err != nil {
		h.log.ErrorContext(ctx, "add to cart failed", "variant_id", req.VariantID, "error", err)
		respondActionError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, ActionResult{Success: true, Message: "Item added to cart", Cart: c})
}

// POST /api/{countryCode}/cart/line-items/bulk
func (h *CartHandler) AddItemsBulk(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req BulkAddRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondActionError(w, err)
		return
	}
	if len(req.LineItems) == 0 {
		respondActionError(w, fmt.Errorf("%w: no line items", cart.ErrMissingVariant))
		return
	}

	items := make([]medusa.LineItemInput, 0, len(req.LineItems))
	for _, li := range req.LineItems {
		items = append(items, medusa.LineItemInput{VariantID: li.VariantID, Quantity: li.Quantity})
	}

	h.log.InfoContext(ctx, "adding items to cart", "item_count", len(items), "country_code", h.countryCode(r))
	c, err := h.carts.AddToCartBulk(ctx, sessionFrom(w, r), h.countryCode(r), items)
	if err != nil {
		h.log.ErrorContext(ctx, "add to cart failed", "error", err)
		respondActionError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, ActionResult{
		Success: true,
		Message: fmt.Sprintf("Added %d item(s) to cart", len(items)),
		Cart:    c,
	})
}

// PATCH /api/cart/line-items/{lineID}
func (h *CartHandler) UpdateLineItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdateQuantityRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondActionError(w, err)
		return
	}

	c, err := h.carts.UpdateLineItem(ctx, sessionFrom(w, r), chi.URLParam(r, "lineID"), req.Quantity)
	if err != nil {
		h.log.ErrorContext(ctx, "update line item failed", "error", err)
		respondActionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ActionResult{Success: true, Message: "Cart updated successfully", Cart: c})
}

// DELETE /api/cart/line-items/{lineID}
func (h *CartHandler) RemoveLineItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	c, err := h.carts.DeleteLineItem(ctx, sessionFrom(w, r), r.URL.Query().Get("cart_id"), chi.URLParam(r, "lineID"))
	if err != nil {
		h.log.ErrorContext(ctx, "remove line item failed", "error", err)
		respondActionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ActionResult{Success: true, Message: "Item removed from cart", Cart: c})
}

// DELETE /api/cart/line-items
func (h *CartHandler) EmptyCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.carts.EmptyCart(ctx, sessionFrom(w, r)); err != nil {
		h.log.ErrorContext(ctx, "empty cart failed", "error", err)
		respondActionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ActionResult{Success: true, Message: "Cart emptied successfully"})
}

// PATCH /api/cart
func (h *CartHandler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req medusa.UpdateCartInput
	if err := decodeJSON(r, &req); err != nil {
		respondActionError(w, err)
		return
	}

	c, err := h.carts.UpdateCart(ctx, sessionFrom(w, r), req)
	if err != nil {
		h.log.ErrorContext(ctx, "update cart failed", "error", err)
		respondActionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ActionResult{Success: true, Message: "Cart updated successfully", Cart: c})
}

// POST /api/cart/promotions
func (h *CartHandler) ApplyPromotions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req PromotionsRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondActionError(w, err)
		return
	}

	c, err := h.carts.ApplyPromotions(ctx, sessionFrom(w, r), req.Codes)
	if err != nil {
		respondActionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ActionResult{Success: true, Cart: c})
}

// POST /api/cart/shipping-methods
func (h *CartHandler) SetShippingMethod(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ShippingMethodRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondActionError(w, err)
		return
	}
	if req.OptionID == "" {
		respondActionError(w, fmt.Errorf("%w: option_id is required", errInvalidBody))
		return
	}

	c, err := h.carts.SetShippingMethod(ctx, sessionFrom(w, r), req.CartID, req.OptionID)
	if err != nil {
		respondActionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ActionResult{Success: true, Cart: c})
}

// POST /api/cart/payment-sessions
func (h *CartHandler) InitiatePaymentSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req PaymentSessionRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondActionError(w, err)
		return
	}
	if req.ProviderID == "" {
		respondActionError(w, fmt.Errorf("%w: provider_id is required", errInvalidBody))
		return
	}

	pc, err := h.carts.InitiatePaymentSession(ctx, sessionFrom(w, r), medusa.PaymentSessionInput{
		ProviderID: req.ProviderID,
		Context:    req.Context,
	})
	if err != nil {
		respondActionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ActionResult{Success: true, Data: pc})
}

// PUT /api/cart/shipping-address
func (h *CartHandler) SetShippingAddress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ShippingAddressRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondActionError(w, err)
		return
	}

	c, err := h.carts.SetShippingAddress(ctx, sessionFrom(w, r), req.Address, req.Email)
	if err != nil {
		respondActionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ActionResult{Success: true, Cart: c})
}

// PUT /api/cart/billing-address
func (h *CartHandler) SetBillingAddress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req BillingAddressRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondActionError(w, err)
		return
	}

	c, err := h.carts.SetBillingAddress(ctx, sessionFrom(w, r), req.Address)
	if err != nil {
		respondActionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ActionResult{Success: true, Cart: c})
}

// PUT /api/cart/contact
func (h *CartHandler) SetContactDetails(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req cart.ContactDetails
	if err := decodeJSON(r, &req); err != nil {
		respondActionError(w, err)
		return
	}

	c, err := h.carts.SetContactDetails(ctx, sessionFrom(w, r), req)
	if err != nil {
		respondActionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ActionResult{Success: true, Cart: c})
}

// POST /api/cart/complete
func (h *CartHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CartRefRequestDTO
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondActionError(w, err)
			return
		}
	}

	res, err := h.carts.PlaceOrder(ctx, sessionFrom(w, r), req.CartID)
	if err != nil {
		h.log.ErrorContext(ctx, "place order failed", "error", err)
		respondActionError(w, err)
		return
	}
	if res.Order == nil {
		respondJSON(w, http.StatusUnprocessableEntity, ActionResult{Success: false, Error: res.Error, Cart: res.Cart})
		return
	}
	respondJSON(w, http.StatusOK, ActionResult{Success: true, Order: res.Order, RedirectPath: res.RedirectPath})
}

// POST /api/cart/region
func (h *CartHandler) UpdateRegion(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req RegionRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondActionError(w, err)
		return
	}
	req.CountryCode = strings.ToLower(strings.TrimSpace(req.CountryCode))
	if req.CountryCode == "" {
		respondActionError(w, fmt.Errorf("%w: country_code is required", errInvalidBody))
		return
	}

	path, err := h.carts.UpdateRegion(ctx, sessionFrom(w, r), req.CountryCode, req.CurrentPath)
	if err != nil {
		respondActionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ActionResult{Success: true, RedirectPath: path})
}

// POST /api/cart/approvals
func (h *CartHandler) CreateApproval(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CartRefRequestDTO
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondActionError(w, err)
			return
		}
	}

	approval, err := h.carts.CreateCartApproval(ctx, sessionFrom(w, r), req.CartID)
	if err != nil {
		respondActionError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, ActionResult{Success: true, Data: approval})
}

func (h *CartHandler) countryCode(r *http.Request) string {
	if cc := chi.URLParam(r, "countryCode"); cc != "" {
		return strings.ToLower(cc)
	}
	return h.defaultCountry
}
