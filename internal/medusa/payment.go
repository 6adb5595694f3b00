package medusa

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type PaymentSessionInput struct {
	ProviderID string         `json:"provider_id"`
	Context    map[string]any `json:"context,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}

type paymentCollectionResponse struct {
	PaymentCollection *domain.PaymentCollection `json:"payment_collection"`
}

// InitiatePaymentSession creates the cart's payment collection when it has none
// and opens a session with the given provider on it.
func (c *Client) InitiatePaymentSession(ctx context.Context, cart *domain.Cart, in PaymentSessionInput) (*domain.PaymentCollection, error) {
	collectionID := ""
	if cart.PaymentCollection != nil {
		collectionID = cart.PaymentCollection.ID
	}

	if collectionID == "" {
		var created paymentCollectionResponse
		body := struct {
			CartID string `json:"cart_id"`
		}{cart.ID}
		if err := c.do(ctx, http.MethodPost, "/store/payment-collections", nil, body, &created); err != nil {
			return nil, err
		}
		if created.PaymentCollection == nil {
			return nil, fmt.Errorf("payment collection for cart %s was not created", cart.ID)
		}
		collectionID = created.PaymentCollection.ID
	}

	var resp paymentCollectionResponse
	path := "/store/payment-collections/" + url.PathEscape(collectionID) + "/payment-sessions"
	if err := c.do(ctx, http.MethodPost, path, nil, in, &resp); err != nil {
		return nil, err
	}
	return resp.PaymentCollection, nil
}
