package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/medusa"
	"github.com/fjod/go_cart/storefront/internal/session"
)

// optimisticPrefix marks line items the browser rendered before the server
// confirmed them.
const optimisticPrefix = "__optimistic__"

// ContactDetails are the B2B checkout fields stored on cart metadata.
type ContactDetails struct {
	Email             string `json:"email"`
	InvoiceRecipient  string `json:"invoice_recipient"`
	CostCenter        string `json:"cost_center"`
	RequisitionNumber string `json:"requisition_number"`
	DoorCode          string `json:"door_code"`
	Notes             string `json:"notes"`
}

// PlaceOrderResult is either a placed order with the page to redirect to, or
// the cart the backend refused to complete.
type PlaceOrderResult struct {
	Order        *domain.Order `json:"order,omitempty"`
	Cart         *domain.Cart  `json:"cart,omitempty"`
	Error        string        `json:"error,omitempty"`
	RedirectPath string        `json:"redirect_path,omitempty"`
}

func (s *Service) UpdateCart(ctx context.Context, sess *session.Session, in medusa.UpdateCartInput) (*domain.Cart, error) {
	cartID := sess.CartID()
	if cartID == "" {
		return nil, ErrNoCart
	}

	cart, err := s.backend.UpdateCart(ctx, cartID, in)
	if err != nil {
		return nil, fmt.Errorf("update cart %s: %w", cartID, err)
	}
	s.revalidate(ctx, sess, "fulfillment", "carts")
	return cart, nil
}

func (s *Service) AddToCart(ctx context.Context, sess *session.Session, countryCode, variantID string, quantity int) (*domain.Cart, error) {
	if variantID == "" {
		return nil, ErrMissingVariant
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}

	cart, err := s.writableCart(ctx, sess, countryCode)
	if err != nil {
		return nil, err
	}

	updated, err := s.backend.AddLineItem(ctx, cart.ID, medusa.LineItemInput{VariantID: variantID, Quantity: quantity})
	if err != nil {
		return nil, fmt.Errorf("add line item to %s: %w", cart.ID, err)
	}
	s.revalidate(ctx, sess, "fulfillment", "carts")
	return updated, nil
}

func (s *Service) AddToCartBulk(ctx context.Context, sess *session.Session, countryCode string, items []medusa.LineItemInput) (*domain.Cart, error) {
	for _, item := range items {
		if item.VariantID == "" {
			return nil, ErrMissingVariant
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: %d for %s", ErrInvalidQuantity, item.Quantity, item.VariantID)
		}
	}

	cart, err := s.writableCart(ctx, sess, countryCode)
	if err != nil {
		return nil, err
	}

	updated, err := s.backend.AddLineItemsBulk(ctx, cart.ID, items)
	if err != nil {
		return nil, fmt.Errorf("bulk add to %s: %w", cart.ID, err)
	}
	s.revalidate(ctx, sess, "fulfillment", "carts")
	return updated, nil
}

// writableCart resolves the cart and refuses it while an approval is open.
func (s *Service) writableCart(ctx context.Context, sess *session.Session, countryCode string) (*domain.Cart, error) {
	cart, err := s.GetOrSetCart(ctx, sess, countryCode)
	if err != nil {
		return nil, err
	}
	if cart.PendingApproval() {
		return nil, ErrPendingApproval
	}
	return cart, nil
}

func (s *Service) UpdateLineItem(ctx context.Context, sess *session.Session, lineID string, quantity int) (*domain.Cart, error) {
	if lineID == "" {
		return nil, ErrMissingLineItem
	}
	if quantity < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	cartID := sess.CartID()
	if cartID == "" {
		return nil, ErrNoCart
	}

	cart, err := s.backend.UpdateLineItem(ctx, cartID, lineID, quantity)
	if err != nil {
		return nil, fmt.Errorf("update line item %s: %w", lineID, err)
	}
	s.revalidate(ctx, sess, "fulfillment", "carts")
	return cart, nil
}

// DeleteLineItem removes lineID from cartID, or from the session's cart when
// cartID is empty. Optimistic ids are acknowledged without a backend call.
func (s *Service) DeleteLineItem(ctx context.Context, sess *session.Session, cartID, lineID string) (*domain.Cart, error) {
	if lineID == "" {
		return nil, ErrMissingLineItem
	}
	if strings.HasPrefix(lineID, optimisticPrefix) {
		s.log.DebugContext(ctx, "skipping optimistic line item", "line_id", lineID)
		return nil, nil
	}
	if cartID == "" {
		cartID = sess.CartID()
	}
	if cartID == "" {
		return nil, ErrNoCart
	}

	cart, err := s.backend.DeleteLineItem(ctx, cartID, lineID)
	if err != nil {
		return nil, fmt.Errorf("delete line item %s: %w", lineID, err)
	}
	s.revalidate(ctx, sess, "fulfillment", "carts")
	return cart, nil
}

func (s *Service) EmptyCart(ctx context.Context, sess *session.Session) error {
	cart := s.RetrieveCart(ctx, sess, "")
	if cart == nil {
		return ErrNoCart
	}

	for _, item := range cart.Items {
		if _, err := s.DeleteLineItem(ctx, sess, cart.ID, item.ID); err != nil {
			return err
		}
	}
	s.revalidate(ctx, sess, "carts")
	return nil
}

func (s *Service) SetShippingMethod(ctx context.Context, sess *session.Session, cartID, optionID string) (*domain.Cart, error) {
	if cartID == "" {
		cartID = sess.CartID()
	}
	if cartID == "" {
		return nil, ErrNoCart
	}

	cart, err := s.backend.AddShippingMethod(ctx, cartID, optionID)
	if err != nil {
		return nil, fmt.Errorf("add shipping method to %s: %w", cartID, err)
	}
	s.revalidate(ctx, sess, "carts")
	return cart, nil
}

func (s *Service) InitiatePaymentSession(ctx context.Context, sess *session.Session, in medusa.PaymentSessionInput) (*domain.PaymentCollection, error) {
	cart := s.RetrieveCart(ctx, sess, "")
	if cart == nil {
		return nil, ErrNoCart
	}

	pc, err := s.backend.InitiatePaymentSession(ctx, cart, in)
	if err != nil {
		return nil, fmt.Errorf("initiate payment session for %s: %w", cart.ID, err)
	}
	s.revalidate(ctx, sess, "carts")
	return pc, nil
}

func (s *Service) ApplyPromotions(ctx context.Context, sess *session.Session, codes []string) (*domain.Cart, error) {
	return s.UpdateCart(ctx, sess, medusa.UpdateCartInput{PromoCodes: codes})
}

// SetShippingAddress stores the address and the logged-in customer's email,
// falling back to the submitted one for guests.
func (s *Service) SetShippingAddress(ctx context.Context, sess *session.Session, addr domain.Address, email string) (*domain.Cart, error) {
	if sess.CartID() == "" {
		return nil, ErrNoCart
	}
	if customer := s.customer(ctx); customer != nil && customer.Email != "" {
		email = customer.Email
	}
	addr.Address2 = ""
	return s.UpdateCart(ctx, sess, medusa.UpdateCartInput{ShippingAddress: &addr, Email: email})
}

func (s *Service) SetBillingAddress(ctx context.Context, sess *session.Session, addr domain.Address) (*domain.Cart, error) {
	addr.Address2 = ""
	return s.UpdateCart(ctx, sess, medusa.UpdateCartInput{BillingAddress: &addr})
}

func (s *Service) SetContactDetails(ctx context.Context, sess *session.Session, d ContactDetails) (*domain.Cart, error) {
	return s.UpdateCart(ctx, sess, medusa.UpdateCartInput{
		Email: d.Email,
		Metadata: map[string]any{
			"invoice_recipient":  d.InvoiceRecipient,
			"cost_center":        d.CostCenter,
			"requisition_number": d.RequisitionNumber,
			"door_code":          d.DoorCode,
			"notes":              d.Notes,
		},
	})
}

// PlaceOrder completes cartID (or the session's cart). When the backend
// returns a cart instead of an order nothing is revalidated or cleared.
func (s *Service) PlaceOrder(ctx context.Context, sess *session.Session, cartID string) (*PlaceOrderResult, error) {
	if cartID == "" {
		cartID = sess.CartID()
	}
	if cartID == "" {
		return nil, ErrNoCart
	}

	res, err := s.backend.CompleteCart(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("complete cart %s: %w", cartID, err)
	}

	if res.Type != domain.CompletionOrder || res.Order == nil {
		out := &PlaceOrderResult{Cart: res.Cart}
		if res.Error != nil {
			out.Error = res.Error.Message
		}
		return out, nil
	}

	order := res.Order
	s.track(ctx, "order_completed", map[string]any{"order_id": order.ID})
	s.revalidate(ctx, sess, "carts", "orders", "approvals")
	sess.RemoveCartID()

	countryCode := ""
	if order.ShippingAddress != nil {
		countryCode = strings.ToLower(order.ShippingAddress.CountryCode)
	}
	return &PlaceOrderResult{
		Order:        order,
		RedirectPath: fmt.Sprintf("/%s/order/confirmed/%s", countryCode, order.ID),
	}, nil
}

// UpdateRegion moves the session's cart (if any) to countryCode's region and
// returns the path to redirect to.
func (s *Service) UpdateRegion(ctx context.Context, sess *session.Session, countryCode, currentPath string) (string, error) {
	region, err := s.regions.Region(ctx, sess.CacheID(), countryCode)
	if err != nil {
		return "", fmt.Errorf("resolve region for %s: %w", countryCode, err)
	}
	if region == nil {
		return "", fmt.Errorf("%w: %s", ErrRegionNotFound, countryCode)
	}

	if sess.CartID() != "" {
		if _, err = s.UpdateCart(ctx, sess, medusa.UpdateCartInput{RegionID: region.ID}); err != nil {
			return "", err
		}
	}
	s.revalidate(ctx, sess, "regions", "products")

	return "/" + countryCode + currentPath, nil
}

func (s *Service) CreateCartApproval(ctx context.Context, sess *session.Session, cartID string) (*domain.Approval, error) {
	if cartID == "" {
		cartID = sess.CartID()
	}
	if cartID == "" {
		return nil, ErrNoCart
	}

	approval, err := s.backend.CreateApproval(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("request approval for %s: %w", cartID, err)
	}
	s.revalidate(ctx, sess, "carts", "approvals")
	return approval, nil
}
