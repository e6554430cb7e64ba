package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hamsterhub/hamsterhub-api/internal/domain/balance"
	"github.com/hamsterhub/hamsterhub-api/internal/middleware"
	"github.com/hamsterhub/hamsterhub-api/internal/pkg/discord"
	"github.com/hamsterhub/hamsterhub-api/internal/pkg/jwt"
)

type fakeOAuth struct {
	user        *discord.User
	exchangeErr error
}

func (f *fakeOAuth) AuthorizeURL(state string) string {
	return "https://discord.com/oauth2/authorize?state=" + state
}

func (f *fakeOAuth) ExchangeCode(context.Context, string) (string, error) {
	if f.exchangeErr != nil {
		return "", f.exchangeErr
	}
	return "access-token", nil
}

func (f *fakeOAuth) CurrentUser(context.Context, string) (*discord.User, error) {
	return f.user, nil
}

type fakeAccounts struct {
	ensured map[string][]balance.Currency
}

func (f *fakeAccounts) Ensure(_ context.Context, userID string, c balance.Currency) error {
	if f.ensured == nil {
		f.ensured = map[string][]balance.Currency{}
	}
	f.ensured[userID] = append(f.ensured[userID], c)
	return nil
}

type fakeAdmin struct{ admin bool }

func (f fakeAdmin) IsAdmin(context.Context, string) (bool, error) { return f.admin, nil }

func newAuthHandler(oauth *fakeOAuth, accounts *fakeAccounts, admin bool) *Handler {
	return NewHandler(oauth, jwt.NewService("test-secret", time.Hour), accounts, fakeAdmin{admin: admin})
}

func TestLoginRedirectsWithState(t *testing.T) {
	h := newAuthHandler(&fakeOAuth{}, &fakeAccounts{}, false)

	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", rec.Code)
	}

	var state string
	for _, c := range rec.Result().Cookies() {
		if c.Name == stateCookie {
			state = c.Value
		}
	}
	if state == "" {
		t.Fatal("no state cookie set")
	}
	if loc := rec.Header().Get("Location"); loc != "https://discord.com/oauth2/authorize?state="+state {
		t.Errorf("redirect = %s, state cookie = %s", loc, state)
	}
}

func TestCallbackIssuesToken(t *testing.T) {
	oauth := &fakeOAuth{user: &discord.User{ID: "42", Username: "alice", GlobalName: "Alice"}}
	accounts := &fakeAccounts{}
	h := newAuthHandler(oauth, accounts, false)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: stateCookie, Value: "s1"})
	rec := httptest.NewRecorder()
	h.Callback(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Token string            `json:"token"`
			User  map[string]string `json:"user"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Token == "" {
		t.Error("no session token issued")
	}
	if body.Data.User["username"] != "Alice" {
		t.Errorf("username = %s, want display name Alice", body.Data.User["username"])
	}

	// Both wallets seeded on login.
	if got := accounts.ensured["42"]; len(got) != 2 {
		t.Errorf("ensured currencies = %v, want both", got)
	}

	// The issued token round-trips through the validator.
	claims, err := jwt.NewService("test-secret", time.Hour).ValidateToken(body.Data.Token)
	if err != nil {
		t.Fatalf("validate issued token: %v", err)
	}
	if claims.UserID != "42" {
		t.Errorf("claims user id = %s, want 42", claims.UserID)
	}
}

func TestCallbackRejectsBadState(t *testing.T) {
	h := newAuthHandler(&fakeOAuth{user: &discord.User{ID: "42"}}, &fakeAccounts{}, false)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc&state=evil", nil)
	req.AddCookie(&http.Cookie{Name: stateCookie, Value: "s1"})
	rec := httptest.NewRecorder()
	h.Callback(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCallbackMissingCode(t *testing.T) {
	h := newAuthHandler(&fakeOAuth{}, &fakeAccounts{}, false)

	rec := httptest.NewRecorder()
	h.Callback(rec, httptest.NewRequest(http.MethodGet, "/auth/callback", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCallbackExchangeFailure(t *testing.T) {
	oauth := &fakeOAuth{exchangeErr: errors.New("discord is down")}
	h := newAuthHandler(oauth, &fakeAccounts{}, false)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: stateCookie, Value: "s1"})
	rec := httptest.NewRecorder()
	h.Callback(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestMe(t *testing.T) {
	h := newAuthHandler(&fakeOAuth{}, &fakeAccounts{}, true)

	rec := httptest.NewRecorder()
	h.Me(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, "42")
	ctx = context.WithValue(ctx, middleware.UsernameKey, "alice")
	rec = httptest.NewRecorder()
	h.Me(rec, req.WithContext(ctx))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Data struct {
			ID       string `json:"id"`
			Username string `json:"username"`
			IsAdmin  bool   `json:"is_admin"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.ID != "42" || body.Data.Username != "alice" || !body.Data.IsAdmin {
		t.Errorf("me = %+v", body.Data)
	}
}
