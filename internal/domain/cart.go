package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID                string             `json:"id"`
	RegionID          string             `json:"region_id,omitempty"`
	Region            *Region            `json:"region,omitempty"`
	CurrencyCode      string             `json:"currency_code,omitempty"`
	Email             string             `json:"email,omitempty"`
	CustomerID        string             `json:"customer_id,omitempty"`
	Customer          *Customer          `json:"customer,omitempty"`
	Company           *Company           `json:"company,omitempty"`
	Items             []LineItem         `json:"items"`
	Promotions        []Promotion        `json:"promotions,omitempty"`
	ShippingAddress   *Address           `json:"shipping_address,omitempty"`
	BillingAddress    *Address           `json:"billing_address,omitempty"`
	PaymentCollection *PaymentCollection `json:"payment_collection,omitempty"`
	Approvals         []Approval         `json:"approvals,omitempty"`
	ApprovalStatus    *ApprovalStatus    `json:"approval_status,omitempty"`
	Metadata          map[string]any     `json:"metadata,omitempty"`

	Total         decimal.Decimal `json:"total"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxTotal      decimal.Decimal `json:"tax_total"`
	ShippingTotal decimal.Decimal `json:"shipping_total"`
	DiscountTotal decimal.Decimal `json:"discount_total"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type LineItem struct {
	ID        string          `json:"id"`
	Title     string          `json:"title,omitempty"`
	VariantID string          `json:"variant_id"`
	ProductID string          `json:"product_id,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
	Thumbnail string          `json:"thumbnail,omitempty"`
	Metadata  map[string]any  `json:"metadata,omitempty"`
}

type Promotion struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	IsAutomatic bool   `json:"is_automatic,omitempty"`
}

type Address struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Address1    string `json:"address_1,omitempty"`
	Address2    string `json:"address_2"`
	Company     string `json:"company,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	City        string `json:"city,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	Province    string `json:"province,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

type PaymentCollection struct {
	ID              string           `json:"id"`
	Amount          decimal.Decimal  `json:"amount"`
	PaymentSessions []PaymentSession `json:"payment_sessions,omitempty"`
}

type PaymentSession struct {
	ID         string         `json:"id"`
	ProviderID string         `json:"provider_id"`
	Status     string         `json:"status,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}

type Company struct {
	ID               string            `json:"id"`
	Name             string            `json:"name,omitempty"`
	ApprovalSettings *ApprovalSettings `json:"approval_settings,omitempty"`
}

type ApprovalSettings struct {
	RequiresAdminApproval bool `json:"requires_admin_approval"`
}

// EffectiveRegionID prefers the expanded region over the flat region_id.
func (c *Cart) EffectiveRegionID() string {
	if c.Region != nil && c.Region.ID != "" {
		return c.Region.ID
	}
	return c.RegionID
}

// PendingApproval reports whether the cart is locked while an approval is open.
func (c *Cart) PendingApproval() bool {
	return c.ApprovalStatus != nil && c.ApprovalStatus.Status == ApprovalPending
}
