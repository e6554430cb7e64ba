package discord

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:      baseURL,
		BotToken:     "bot-token",
		GuildID:      "guild-1",
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		RedirectURL:  "http://localhost:8080/auth/callback",
		Timeout:      time.Second,
		UserAgent:    "HamsterHub/1.0 shop-api",
	}
}

func TestMemberRolesSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/guilds/guild-1/members/user-1" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("invalid path"))
			return
		}
		if r.Header.Get("Authorization") != "Bot bot-token" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("invalid auth"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"roles":["r1","r2"],"user":{"id":"user-1"}}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(testConfig(server.URL))
	roles, err := client.MemberRoles(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(roles) != 2 || roles[0] != "r1" || roles[1] != "r2" {
		t.Fatalf("unexpected roles: %v", roles)
	}
}

func TestMemberRolesUnknownMember(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Unknown Member","code":10007}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(testConfig(server.URL))
	_, err := client.MemberRoles(context.Background(), "stranger")
	if err != ErrUnknownMember {
		t.Fatalf("expected ErrUnknownMember, got %v", err)
	}
}

func TestMemberRolesHTTPErrorIncludesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("missing access"))
	}))
	t.Cleanup(server.Close)

	client := NewClient(testConfig(server.URL))
	_, err := client.MemberRoles(context.Background(), "user-1")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "status=403") || !strings.Contains(err.Error(), "body=missing access") {
		t.Fatalf("expected status and body in error, got %v", err)
	}
}

func TestExchangeCodeSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth2/token" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.PostForm.Get("grant_type") != "authorization_code" || r.PostForm.Get("code") != "abc" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("invalid form"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-123","token_type":"Bearer","expires_in":604800}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(testConfig(server.URL))
	token, err := client.ExchangeCode(context.Background(), "abc")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token != "tok-123" {
		t.Fatalf("unexpected token: %s", token)
	}
}

func TestCurrentUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"42","username":"hamster","global_name":"Hamster"}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(testConfig(server.URL))
	user, err := client.CurrentUser(context.Background(), "tok-123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.ID != "42" || user.DisplayName() != "Hamster" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

type staticRoles struct {
	roles []string
	err   error
}

func (s *staticRoles) MemberRoles(ctx context.Context, userID string) ([]string, error) {
	return s.roles, s.err
}

func TestOracleHasRole(t *testing.T) {
	oracle := NewOracle(&staticRoles{roles: []string{"a", "b"}}, "b")

	ok, err := oracle.HasRole(context.Background(), "u", "a")
	if err != nil || !ok {
		t.Fatalf("expected role a held, got ok=%v err=%v", ok, err)
	}

	ok, err = oracle.HasRole(context.Background(), "u", "z")
	if err != nil || ok {
		t.Fatalf("expected role z not held, got ok=%v err=%v", ok, err)
	}

	ok, err = oracle.IsAdmin(context.Background(), "u")
	if err != nil || !ok {
		t.Fatalf("expected admin, got ok=%v err=%v", ok, err)
	}
}

func TestOracleUnknownMemberHasNoRoles(t *testing.T) {
	oracle := NewOracle(&staticRoles{err: ErrUnknownMember}, "admin")

	ok, err := oracle.HasRole(context.Background(), "u", "a")
	if err != nil {
		t.Fatalf("expected no error for unknown member, got %v", err)
	}
	if ok {
		t.Fatal("expected unknown member to hold no roles")
	}
}
