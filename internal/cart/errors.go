package cart

import "errors"

var (
	ErrRegionNotFound     = errors.New("region not found for country code")
	ErrNoCart             = errors.New("no existing cart found")
	ErrCartVerification   = errors.New("failed to retrieve newly created cart")
	ErrCreationInProgress = errors.New("cart creation already in progress")
	ErrPendingApproval    = errors.New("cart is pending approval")
	ErrMissingVariant     = errors.New("missing variant id")
	ErrMissingLineItem    = errors.New("missing line item id")
	ErrInvalidQuantity    = errors.New("invalid quantity")
)
