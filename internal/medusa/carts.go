package medusa

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// cartFields expands everything the B2B storefront renders from a cart.
const cartFields = "*items, *region, *items.product, *items.variant, +items.thumbnail, +items.metadata, " +
	"*promotions, *company, *company.approval_settings, *customer, *approvals, +completed_at, *approval_status"

type CreateCartInput struct {
	RegionID string         `json:"region_id"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type UpdateCartInput struct {
	RegionID        string          `json:"region_id,omitempty"`
	Email           string          `json:"email,omitempty"`
	PromoCodes      []string        `json:"promo_codes,omitempty"`
	ShippingAddress *domain.Address `json:"shipping_address,omitempty"`
	BillingAddress  *domain.Address `json:"billing_address,omitempty"`
	Metadata        map[string]any  `json:"metadata,omitempty"`
}

type LineItemInput struct {
	VariantID string         `json:"variant_id"`
	Quantity  int            `json:"quantity"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type cartResponse struct {
	Cart *domain.Cart `json:"cart"`
}

type lineItemDeleteResponse struct {
	ID      string       `json:"id"`
	Deleted bool         `json:"deleted"`
	Parent  *domain.Cart `json:"parent"`
}

type approvalResponse struct {
	Approval *domain.Approval `json:"approval"`
}

func cartPath(cartID string, rest ...string) string {
	p := "/store/carts/" + url.PathEscape(cartID)
	for _, r := range rest {
		p += "/" + url.PathEscape(r)
	}
	return p
}

func (c *Client) RetrieveCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	var resp cartResponse
	q := url.Values{"fields": {cartFields}}
	if err := c.do(ctx, http.MethodGet, cartPath(cartID), q, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Cart == nil {
		return nil, ErrNotFound
	}
	return resp.Cart, nil
}

func (c *Client) CreateCart(ctx context.Context, in CreateCartInput) (*domain.Cart, error) {
	var resp cartResponse
	if err := c.do(ctx, http.MethodPost, "/store/carts", nil, in, &resp); err != nil {
		return nil, err
	}
	return resp.Cart, nil
}

func (c *Client) UpdateCart(ctx context.Context, cartID string, in UpdateCartInput) (*domain.Cart, error) {
	var resp cartResponse
	if err := c.do(ctx, http.MethodPost, cartPath(cartID), nil, in, &resp); err != nil {
		return nil, err
	}
	return resp.Cart, nil
}

func (c *Client) AddLineItem(ctx context.Context, cartID string, in LineItemInput) (*domain.Cart, error) {
	var resp cartResponse
	if err := c.do(ctx, http.MethodPost, cartPath(cartID, "line-items"), nil, in, &resp); err != nil {
		return nil, err
	}
	return resp.Cart, nil
}

// AddLineItemsBulk uses the B2B bulk route so an order form lands in one call.
func (c *Client) AddLineItemsBulk(ctx context.Context, cartID string, items []LineItemInput) (*domain.Cart, error) {
	var resp cartResponse
	in := struct {
		LineItems []LineItemInput `json:"line_items"`
	}{items}
	if err := c.do(ctx, http.MethodPost, cartPath(cartID, "line-items", "bulk"), nil, in, &resp); err != nil {
		return nil, err
	}
	return resp.Cart, nil
}

func (c *Client) UpdateLineItem(ctx context.Context, cartID, lineID string, quantity int) (*domain.Cart, error) {
	var resp cartResponse
	in := struct {
		Quantity int `json:"quantity"`
	}{quantity}
	if err := c.do(ctx, http.MethodPost, cartPath(cartID, "line-items", lineID), nil, in, &resp); err != nil {
		return nil, err
	}
	return resp.Cart, nil
}

func (c *Client) DeleteLineItem(ctx context.Context, cartID, lineID string) (*domain.Cart, error) {
	var resp lineItemDeleteResponse
	if err := c.do(ctx, http.MethodDelete, cartPath(cartID, "line-items", lineID), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Parent, nil
}

func (c *Client) AddShippingMethod(ctx context.Context, cartID, optionID string) (*domain.Cart, error) {
	var resp cartResponse
	in := struct {
		OptionID string `json:"option_id"`
	}{optionID}
	if err := c.do(ctx, http.MethodPost, cartPath(cartID, "shipping-methods"), nil, in, &resp); err != nil {
		return nil, err
	}
	return resp.Cart, nil
}

func (c *Client) CompleteCart(ctx context.Context, cartID string) (*domain.CompleteResult, error) {
	var resp domain.CompleteResult
	if err := c.do(ctx, http.MethodPost, cartPath(cartID, "complete"), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreateApproval(ctx context.Context, cartID string) (*domain.Approval, error) {
	var resp approvalResponse
	if err := c.do(ctx, http.MethodPost, cartPath(cartID, "approvals"), nil, struct{}{}, &resp); err != nil {
		return nil, err
	}
	return resp.Approval, nil
}
