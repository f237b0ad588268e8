package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rvalenzuelab/voznote/internal/api/dto"
	"github.com/rvalenzuelab/voznote/internal/domain/settings"
	"github.com/rvalenzuelab/voznote/internal/services"
	"github.com/rvalenzuelab/voznote/internal/testutil"
)

func newSettingsFixture() (*SettingsHandler, *testutil.MockSettingsRepository) {
	log := testutil.NewTestLogger()
	local := testutil.NewMockSettingsRepository()
	store := services.NewSettingsStore(local, nil, settings.DefaultCredits, log)
	return NewSettingsHandler(store, log), local
}

func decodeSettings(t *testing.T, w *httptest.ResponseRecorder) dto.SettingsDTO {
	t.Helper()

	var resp struct {
		Success bool            `json:"success"`
		Data    dto.SettingsDTO `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Success {
		t.Fatalf("response success = false, body = %s", w.Body.String())
	}
	return resp.Data
}

func TestSettingsHandler_GetNewUser(t *testing.T) {
	handler, _ := newSettingsFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
	req = authedRequest(req, "u1", "user@example.com")
	w := httptest.NewRecorder()
	handler.Get(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Get() status = %d, body = %s", w.Code, w.Body.String())
	}

	got := decodeSettings(t, w)
	if got.IsPro || got.PlanSelected {
		t.Error("Get() new user should start on the free plan")
	}
	if got.AICredits != settings.DefaultCredits {
		t.Errorf("Get() credits = %d, want %d", got.AICredits, settings.DefaultCredits)
	}
}

func TestSettingsHandler_Plan(t *testing.T) {
	handler, _ := newSettingsFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings/plan", nil)
	req = authedRequest(req, "u1", "user@example.com")
	w := httptest.NewRecorder()
	handler.Plan(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Plan() status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool        `json:"success"`
		Data    dto.PlanDTO `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Data.Plan != "free" {
		t.Errorf("Plan() plan = %q, want free", resp.Data.Plan)
	}
	if resp.Data.AICredits != settings.DefaultCredits {
		t.Errorf("Plan() credits = %d, want %d", resp.Data.AICredits, settings.DefaultCredits)
	}
}

func TestSettingsHandler_GetUnauthenticated(t *testing.T) {
	handler, _ := newSettingsFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
	w := httptest.NewRecorder()
	handler.Get(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Get() status = %d, want 401", w.Code)
	}
}

func TestSettingsHandler_Update(t *testing.T) {
	handler, local := newSettingsFixture()

	req := httptest.NewRequest(http.MethodPut, "/api/v1/settings",
		strings.NewReader(`{"planSelected":true,"cloudSyncEnabled":true}`))
	req = authedRequest(req, "u1", "user@example.com")
	w := httptest.NewRecorder()
	handler.Update(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Update() status = %d, body = %s", w.Code, w.Body.String())
	}

	got := decodeSettings(t, w)
	if !got.PlanSelected || !got.CloudSyncEnabled {
		t.Errorf("Update() result = %+v", got)
	}
	if got.AutoCloudSync {
		t.Error("Update() changed a field the request omitted")
	}

	stored := local.Records["u1"]
	if stored == nil || !stored.PlanSelected || !stored.CloudSyncEnabled {
		t.Error("Update() did not persist the toggles")
	}
}

func TestSettingsHandler_UpdateCannotGrantPro(t *testing.T) {
	handler, local := newSettingsFixture()

	// Subscription state is not a user-adjustable field; unknown members of
	// the body are ignored.
	req := httptest.NewRequest(http.MethodPut, "/api/v1/settings",
		strings.NewReader(`{"isPro":true,"aiCredits":999}`))
	req = authedRequest(req, "u1", "user@example.com")
	w := httptest.NewRecorder()
	handler.Update(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Update() status = %d", w.Code)
	}
	stored := local.Records["u1"]
	if stored == nil {
		t.Fatal("Update() did not persist a record")
	}
	if stored.IsPro || stored.AICredits != settings.DefaultCredits {
		t.Errorf("Update() let the client set subscription state: %+v", stored)
	}
}

func TestSettingsHandler_UpdateInvalidBody(t *testing.T) {
	handler, _ := newSettingsFixture()

	req := httptest.NewRequest(http.MethodPut, "/api/v1/settings", strings.NewReader(`{`))
	req = authedRequest(req, "u1", "user@example.com")
	w := httptest.NewRecorder()
	handler.Update(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Update() status = %d, want 400", w.Code)
	}
}
