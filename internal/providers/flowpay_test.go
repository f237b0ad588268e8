package providers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSign(t *testing.T) {
	params := map[string]string{
		"token":  "tok123",
		"apiKey": "ak",
	}

	// Keys are concatenated in sorted order regardless of map order
	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte("apiKey=aktoken=tok123"))
	want := hex.EncodeToString(mac.Sum(nil))

	if got := Sign(params, "secret"); got != want {
		t.Errorf("Sign() = %q, want %q", got, want)
	}
}

func TestSign_SecretChangesSignature(t *testing.T) {
	params := map[string]string{"apiKey": "ak"}
	if Sign(params, "one") == Sign(params, "two") {
		t.Error("Sign() should depend on the secret")
	}
}

func TestFlowClient_CreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payment/create" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parsing form: %v", err)
		}

		if got := r.PostFormValue("commerceOrder"); got != "vz-m-abc123-1757900000000" {
			t.Errorf("commerceOrder = %q", got)
		}
		if got := r.PostFormValue("amount"); got != "4990" {
			t.Errorf("amount = %q", got)
		}
		if r.PostFormValue("s") == "" {
			t.Error("request is unsigned")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"url":"https://pay.example.com/checkout","token":"tok123"}`))
	}))
	defer srv.Close()

	client := NewFlowClient(srv.URL, "ak", "sk")
	order, err := client.CreateOrder(context.Background(), OrderParams{
		CommerceOrder: "vz-m-abc123-1757900000000",
		Subject:       "VozNote Pro (monthly)",
		Amount:        4990,
		Currency:      "CLP",
		Email:         "user@example.com",
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	if order.RedirectURL() != "https://pay.example.com/checkout?token=tok123" {
		t.Errorf("RedirectURL() = %q", order.RedirectURL())
	}
}

func TestFlowClient_CreateOrderEmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"url":"https://pay.example.com/checkout","token":""}`))
	}))
	defer srv.Close()

	client := NewFlowClient(srv.URL, "ak", "sk")
	if _, err := client.CreateOrder(context.Background(), OrderParams{}); err == nil {
		t.Error("CreateOrder() expected error for empty token")
	}
}

func TestFlowClient_GetStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payment/getStatus" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("token") != "tok123" {
			t.Errorf("token = %q", q.Get("token"))
		}
		if q.Get("apiKey") != "ak" {
			t.Errorf("apiKey = %q", q.Get("apiKey"))
		}
		want := Sign(map[string]string{"apiKey": "ak", "token": "tok123"}, "sk")
		if q.Get("s") != want {
			t.Errorf("signature = %q, want %q", q.Get("s"), want)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":2,"commerceOrder":"vz-m-abc123-1757900000000","amount":"4990","currency":"CLP","payer":"user@example.com"}`))
	}))
	defer srv.Close()

	client := NewFlowClient(srv.URL, "ak", "sk")
	status, err := client.GetStatus(context.Background(), "tok123")
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}

	if !status.Paid() {
		t.Error("Paid() = false for status 2")
	}
	if status.CommerceOrder != "vz-m-abc123-1757900000000" {
		t.Errorf("CommerceOrder = %q", status.CommerceOrder)
	}
}

func TestFlowClient_GetStatusHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewFlowClient(srv.URL, "ak", "sk")
	if _, err := client.GetStatus(context.Background(), "tok123"); err == nil {
		t.Error("GetStatus() expected error for HTTP 502")
	}
}

func TestPaymentStatus_Paid(t *testing.T) {
	for status, want := range map[int]bool{
		PaymentStatusPending:  false,
		PaymentStatusPaid:     true,
		PaymentStatusRejected: false,
		PaymentStatusVoided:   false,
	} {
		if got := (PaymentStatus{Status: status}).Paid(); got != want {
			t.Errorf("Paid() with status %d = %v, want %v", status, got, want)
		}
	}
}
