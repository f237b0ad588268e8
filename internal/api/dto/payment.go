package dto

// CheckoutRequest starts a subscription purchase
type CheckoutRequest struct {
	Plan string `json:"plan" validate:"required,oneof=m y"`
}

// CheckoutResponse carries the gateway redirect for the payer
type CheckoutResponse struct {
	RedirectURL   string `json:"redirectUrl"`
	CommerceOrder string `json:"commerceOrder"`
}
