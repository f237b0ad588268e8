package client

import "context"

// CheckoutResponse carries the gateway redirect for the payer
type CheckoutResponse struct {
	RedirectURL   string `json:"redirectUrl"`
	CommerceOrder string `json:"commerceOrder"`
}

// CreateCheckout registers a payment order for the given plan ("m" or "y")
// and returns the gateway redirect URL
func (c *Client) CreateCheckout(ctx context.Context, plan string) (*CheckoutResponse, error) {
	var resp CheckoutResponse
	if err := c.doRequest(ctx, "POST", "/api/v1/payments/order", map[string]string{"plan": plan}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
