package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rvalenzuelab/voznote/internal/api/middleware"
	"github.com/rvalenzuelab/voznote/internal/config"
	"github.com/rvalenzuelab/voznote/internal/domain/settings"
	"github.com/rvalenzuelab/voznote/internal/pkg/validator"
	"github.com/rvalenzuelab/voznote/internal/providers"
	"github.com/rvalenzuelab/voznote/internal/services"
	"github.com/rvalenzuelab/voznote/internal/testutil"
)

// stubGateway implements services.Gateway for handler tests
type stubGateway struct {
	status    *providers.PaymentStatus
	statusErr error
}

func (g *stubGateway) CreateOrder(ctx context.Context, p providers.OrderParams) (*providers.Order, error) {
	return &providers.Order{URL: "https://pay.example.com/checkout", Token: "tok123"}, nil
}

func (g *stubGateway) GetStatus(ctx context.Context, token string) (*providers.PaymentStatus, error) {
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	return g.status, nil
}

func newPaymentFixture(gateway services.Gateway) (*PaymentHandler, *testutil.MockSettingsRepository) {
	log := testutil.NewTestLogger()
	local := testutil.NewMockSettingsRepository()
	store := services.NewSettingsStore(local, nil, settings.DefaultCredits, log)
	svc := services.NewPaymentService(gateway, store, config.PaymentConfig{
		BaseURL:     "https://pay.example.com",
		APIKey:      "ak",
		SecretKey:   "sk",
		OrderPrefix: "vz",
	}, log)
	return NewPaymentHandler(svc, log, validator.New()), local
}

func authedRequest(r *http.Request, userID, email string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
	ctx = context.WithValue(ctx, middleware.UserEmailKey, email)
	return r.WithContext(ctx)
}

func postWebhook(h *PaymentHandler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.Webhook(w, req)
	return w
}

func TestPaymentHandler_WebhookUpgrade(t *testing.T) {
	handler, local := newPaymentFixture(&stubGateway{status: &providers.PaymentStatus{
		Status:        providers.PaymentStatusPaid,
		CommerceOrder: "vz-m-abc123-1757900000000",
	}})

	w := postWebhook(handler, url.Values{"token": {"tok123"}})

	if w.Code != http.StatusOK {
		t.Fatalf("Webhook() status = %d, want 200", w.Code)
	}
	stored, ok := local.Records["abc123"]
	if !ok || !stored.IsPro {
		t.Error("Webhook() did not apply the upgrade")
	}
}

func TestPaymentHandler_WebhookGatewayErrorReturns500(t *testing.T) {
	handler, _ := newPaymentFixture(&stubGateway{statusErr: fmt.Errorf("gateway timeout")})

	w := postWebhook(handler, url.Values{"token": {"tok123"}})

	// 5xx tells the gateway to retry the notification
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Webhook() status = %d, want 500", w.Code)
	}
}

func TestPaymentHandler_WebhookMalformedOrderAcknowledged(t *testing.T) {
	handler, local := newPaymentFixture(&stubGateway{status: &providers.PaymentStatus{
		Status:        providers.PaymentStatusPaid,
		CommerceOrder: "not-a-real-order-id-at-all",
	}})

	w := postWebhook(handler, url.Values{"token": {"tok123"}})

	// Retrying cannot fix a bad id, so the notification is acknowledged
	if w.Code != http.StatusOK {
		t.Errorf("Webhook() status = %d, want 200", w.Code)
	}
	if len(local.Records) != 0 {
		t.Error("Webhook() must not touch settings for a malformed order")
	}
}

func TestPaymentHandler_WebhookMissingToken(t *testing.T) {
	handler, _ := newPaymentFixture(&stubGateway{})

	w := postWebhook(handler, url.Values{})

	if w.Code != http.StatusBadRequest {
		t.Errorf("Webhook() status = %d, want 400", w.Code)
	}
}

func TestPaymentHandler_CreateOrder(t *testing.T) {
	handler, _ := newPaymentFixture(&stubGateway{})

	body := strings.NewReader(`{"plan":"m"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/order", body)
	req = authedRequest(req, "abc123", "user@example.com")
	w := httptest.NewRecorder()
	handler.CreateOrder(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("CreateOrder() status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			RedirectURL   string `json:"redirectUrl"`
			CommerceOrder string `json:"commerceOrder"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Success {
		t.Error("CreateOrder() success = false")
	}
	if resp.Data.RedirectURL == "" || !strings.HasPrefix(resp.Data.CommerceOrder, "vz-m-abc123-") {
		t.Errorf("CreateOrder() data = %+v", resp.Data)
	}
}

func TestPaymentHandler_CreateOrderInvalidPlan(t *testing.T) {
	handler, _ := newPaymentFixture(&stubGateway{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/order",
		strings.NewReader(`{"plan":"weekly"}`))
	req = authedRequest(req, "abc123", "user@example.com")
	w := httptest.NewRecorder()
	handler.CreateOrder(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("CreateOrder() status = %d, want 400", w.Code)
	}
}

func TestPaymentHandler_CreateOrderUnauthenticated(t *testing.T) {
	handler, _ := newPaymentFixture(&stubGateway{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/order",
		strings.NewReader(`{"plan":"m"}`))
	w := httptest.NewRecorder()
	handler.CreateOrder(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("CreateOrder() status = %d, want 401", w.Code)
	}
}
