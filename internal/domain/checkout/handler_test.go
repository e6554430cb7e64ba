package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hamsterhub/hamsterhub-api/internal/middleware"
)

type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func doCheckout(h *Handler, userID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/shop/checkout", strings.NewReader(body))
	if userID != "" {
		ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
		ctx = context.WithValue(ctx, middleware.UsernameKey, "alice")
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	h.Checkout(rec, req)
	return rec
}

func cartBody(t *testing.T, req *Request) string {
	t.Helper()
	raw, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal cart: %v", err)
	}
	return string(raw)
}

func TestCheckoutHandlerRequiresAuth(t *testing.T) {
	f := newFixture(100)
	h := NewHandler(f.svc)

	rec := doCheckout(h, "", `{"items":[{"id":"x"}],"total_amount":1,"currency":"primary"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestCheckoutHandlerBadJSON(t *testing.T) {
	f := newFixture(100)
	h := NewHandler(f.svc)

	rec := doCheckout(h, "u1", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCheckoutHandlerEmptyCart(t *testing.T) {
	f := newFixture(100)
	h := NewHandler(f.svc)

	rec := doCheckout(h, "u1", `{"items":[],"total_amount":0,"currency":"primary"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success {
		t.Error("success = true on error response")
	}
}

func TestCheckoutHandlerSuccess(t *testing.T) {
	sword := simpleItem("Sword", 100)
	f := newFixture(150, sword)
	h := NewHandler(f.svc)

	rec := doCheckout(h, "u1", cartBody(t, cartFor("primary", sword)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Success bool   `json:"success"`
		Data    Result `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success {
		t.Error("success = false")
	}
	if body.Data.NewBalance != 50 {
		t.Errorf("new balance = %d, want 50", body.Data.NewBalance)
	}
	if len(body.Data.Purchases) != 1 || body.Data.Purchases[0].ItemName != "Sword" {
		t.Errorf("purchases = %+v", body.Data.Purchases)
	}
}

func TestCheckoutHandlerHidesStorageKeys(t *testing.T) {
	guide := simpleItem("Strategy Guide", 40)
	guide.ContentType = "file"
	guide.FileURL = "items/secret-key/files/guide.pdf"
	guide.FileName = "guide.pdf"
	f := newFixture(100, guide)
	h := NewHandler(f.svc)

	rec := doCheckout(h, "u1", cartBody(t, cartFor("primary", guide)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	body := rec.Body.String()
	if strings.Contains(body, "secret-key") {
		t.Errorf("response leaks the storage key: %s", body)
	}
	if !strings.Contains(body, `"has_file":true`) || !strings.Contains(body, "guide.pdf") {
		t.Errorf("response missing file descriptors: %s", body)
	}
}

func TestCheckoutHandlerInsufficientFunds(t *testing.T) {
	sword := simpleItem("Sword", 100)
	f := newFixture(25, sword)
	h := NewHandler(f.svc)

	rec := doCheckout(h, "u1", cartBody(t, cartFor("primary", sword)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "INSUFFICIENT_FUNDS" {
		t.Errorf("code = %s, want INSUFFICIENT_FUNDS", body.Error.Code)
	}
	if body.Error.Details["current_balance"] != "25" || body.Error.Details["required_amount"] != "100" {
		t.Errorf("details = %v", body.Error.Details)
	}
}

func TestCheckoutHandlerRoleRequired(t *testing.T) {
	vip := simpleItem("VIP Lounge", 50)
	vip.RequiresRole = true
	vip.RequiredRoleID = "role-1"
	vip.RequiredRoleName = "VIP"
	f := newFixture(500, vip)
	h := NewHandler(f.svc)

	rec := doCheckout(h, "u1", cartBody(t, cartFor("primary", vip)))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "ROLE_REQUIRED" {
		t.Errorf("code = %s, want ROLE_REQUIRED", body.Error.Code)
	}
	if body.Error.Details["required_role"] != "VIP" {
		t.Errorf("required_role = %s, want VIP", body.Error.Details["required_role"])
	}
}

func TestCheckoutHandlerUnknownItem(t *testing.T) {
	f := newFixture(500)
	h := NewHandler(f.svc)

	rec := doCheckout(h, "u1",
		`{"items":[{"id":"3f0c8dc2-6f2e-4a52-9c4b-0f2f58a1a111"}],"total_amount":0,"currency":"primary"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "ITEM_NOT_FOUND" {
		t.Errorf("code = %s, want ITEM_NOT_FOUND", body.Error.Code)
	}
}

func TestCheckoutHandlerAlreadyOwned(t *testing.T) {
	badge := simpleItem("Founder Badge", 10)
	badge.AllowMultiplePurchases = false
	f := newFixture(500, badge)
	f.ownership.owned[badge.ID] = true
	h := NewHandler(f.svc)

	rec := doCheckout(h, "u1", cartBody(t, cartFor("primary", badge)))
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}
