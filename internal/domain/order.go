package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID              string          `json:"id"`
	DisplayID       int64           `json:"display_id,omitempty"`
	Email           string          `json:"email,omitempty"`
	CurrencyCode    string          `json:"currency_code,omitempty"`
	Total           decimal.Decimal `json:"total"`
	Items           []LineItem      `json:"items,omitempty"`
	ShippingAddress *Address        `json:"shipping_address,omitempty"`
	CreatedAt       *time.Time      `json:"created_at,omitempty"`
}

// CompletionType is the discriminator of a cart completion response.
type CompletionType string

const (
	CompletionOrder CompletionType = "order"
	CompletionCart  CompletionType = "cart"
)

// CompleteResult is returned by cart completion. When Type is CompletionCart
// the order was not placed and Error explains why.
type CompleteResult struct {
	Type  CompletionType `json:"type"`
	Cart  *Cart          `json:"cart,omitempty"`
	Order *Order         `json:"order,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Name    string `json:"name,omitempty"`
		Type    string `json:"type,omitempty"`
	} `json:"error,omitempty"`
}

type ApprovalState string

const (
	ApprovalPending  ApprovalState = "pending"
	ApprovalApproved ApprovalState = "approved"
	ApprovalRejected ApprovalState = "rejected"
)

type ApprovalStatus struct {
	ID     string        `json:"id"`
	Status ApprovalState `json:"status"`
}

type Approval struct {
	ID        string        `json:"id"`
	CartID    string        `json:"cart_id"`
	Type      string        `json:"type"`
	Status    ApprovalState `json:"status"`
	CreatedBy string        `json:"created_by,omitempty"`
	HandledBy string        `json:"handled_by,omitempty"`
	CreatedAt *time.Time    `json:"created_at,omitempty"`
}
