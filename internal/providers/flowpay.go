package providers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Payment status codes returned by the gateway
const (
	PaymentStatusPending  = 1
	PaymentStatusPaid     = 2
	PaymentStatusRejected = 3
	PaymentStatusVoided   = 4
)

// FlowClient talks to the Flow-compatible payment gateway. All requests carry
// an HMAC-SHA256 signature over the alphabetically sorted parameters.
type FlowClient struct {
	baseURL   string
	apiKey    string
	secretKey string
	http      *http.Client
}

// NewFlowClient creates a payment gateway client
func NewFlowClient(baseURL, apiKey, secretKey string) *FlowClient {
	return &FlowClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		secretKey: secretKey,
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

// OrderParams describes a payment order to create
type OrderParams struct {
	CommerceOrder string
	Subject       string
	Amount        int64
	Currency      string
	Email         string
	ConfirmURL    string
	ReturnURL     string
}

// Order is the gateway's created-order response
type Order struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

// RedirectURL is where the payer should be sent
func (o Order) RedirectURL() string {
	return o.URL + "?token=" + o.Token
}

// PaymentStatus is the authoritative state of a payment
type PaymentStatus struct {
	Status        int    `json:"status"`
	CommerceOrder string `json:"commerceOrder"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	PayerEmail    string `json:"payer"`
}

// Paid reports whether the payment was confirmed
func (p PaymentStatus) Paid() bool {
	return p.Status == PaymentStatusPaid
}

// CreateOrder registers a new payment order with the gateway
func (c *FlowClient) CreateOrder(ctx context.Context, p OrderParams) (*Order, error) {
	params := map[string]string{
		"apiKey":          c.apiKey,
		"commerceOrder":   p.CommerceOrder,
		"subject":         p.Subject,
		"amount":          fmt.Sprintf("%d", p.Amount),
		"currency":        p.Currency,
		"email":           p.Email,
		"urlConfirmation": p.ConfirmURL,
		"urlReturn":       p.ReturnURL,
	}

	var order Order
	if err := c.post(ctx, "/payment/create", params, &order); err != nil {
		return nil, err
	}
	if order.Token == "" {
		return nil, fmt.Errorf("payment gateway returned empty token")
	}
	return &order, nil
}

// GetStatus exchanges a webhook token for the authoritative payment status
func (c *FlowClient) GetStatus(ctx context.Context, token string) (*PaymentStatus, error) {
	params := map[string]string{
		"apiKey": c.apiKey,
		"token":  token,
	}

	values := c.signed(params)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/payment/getStatus?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment gateway status %d", resp.StatusCode)
	}

	var status PaymentStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decoding payment status: %w", err)
	}
	return &status, nil
}

func (c *FlowClient) post(ctx context.Context, path string, params map[string]string, out interface{}) error {
	values := c.signed(params)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+path, strings.NewReader(values.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("payment gateway status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// signed returns params as url.Values with the signature parameter appended
func (c *FlowClient) signed(params map[string]string) url.Values {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	values.Set("s", Sign(params, c.secretKey))
	return values
}

// Sign computes the gateway signature: hex HMAC-SHA256 over the parameters
// sorted by key and concatenated as key=value pairs.
func Sign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(params[k])
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(sb.String()))
	return hex.EncodeToString(mac.Sum(nil))
}
