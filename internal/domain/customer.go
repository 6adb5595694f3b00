package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Region struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CurrencyCode string    `json:"currency_code"`
	Countries    []Country `json:"countries,omitempty"`
}

type Country struct {
	ISO2        string `json:"iso_2"`
	DisplayName string `json:"display_name,omitempty"`
}

// HasCountry matches an ISO 3166-1 alpha-2 code case-insensitively.
func (r *Region) HasCountry(code string) bool {
	for _, c := range r.Countries {
		if strings.EqualFold(c.ISO2, code) {
			return true
		}
	}
	return false
}

type Customer struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name,omitempty"`
	LastName    string    `json:"last_name,omitempty"`
	CompanyName string    `json:"company_name,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Employee    *Employee `json:"employee,omitempty"`
}

type Employee struct {
	ID            string          `json:"id"`
	CompanyID     string          `json:"company_id"`
	SpendingLimit decimal.Decimal `json:"spending_limit"`
	IsAdmin       bool            `json:"is_admin"`
}

// CompanyID returns the wholesale company the customer buys for, if any.
func (c *Customer) CompanyID() string {
	if c == nil || c.Employee == nil {
		return ""
	}
	return c.Employee.CompanyID
}
