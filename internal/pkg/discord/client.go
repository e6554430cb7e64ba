package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// ErrUnknownMember is returned when the user is not a member of the guild.
var ErrUnknownMember = errors.New("unknown guild member")

// Config holds Discord client settings.
type Config struct {
	BaseURL      string
	BotToken     string
	GuildID      string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Timeout      time.Duration
	UserAgent    string
}

// Client is a minimal Discord REST client covering guild member lookups
// (role entitlements) and the OAuth2 code flow (session issuance).
type Client struct {
	baseURL      string
	botToken     string
	guildID      string
	clientID     string
	clientSecret string
	redirectURL  string
	ua           string
	http         *http.Client
}

// User represents the subset of a Discord user we care about.
type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name"`
	Avatar     string `json:"avatar"`
}

// member mirrors the guild member payload.
type member struct {
	Roles []string `json:"roles"`
}

// tokenResponse mirrors the OAuth2 token payload.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// NewClient creates a new Discord client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		botToken:     cfg.BotToken,
		guildID:      cfg.GuildID,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURL:  cfg.RedirectURL,
		ua:           cfg.UserAgent,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// MemberRoles returns the role ids the user holds in the configured guild.
// Returns ErrUnknownMember if the user is not in the guild.
func (c *Client) MemberRoles(ctx context.Context, userID string) ([]string, error) {
	if c == nil || c.http == nil {
		return nil, fmt.Errorf("discord member request error: client is nil")
	}
	if strings.TrimSpace(c.botToken) == "" {
		return nil, fmt.Errorf("discord config error: bot token is empty")
	}
	if strings.TrimSpace(c.guildID) == "" {
		return nil, fmt.Errorf("discord config error: guild id is empty")
	}

	endpoint := fmt.Sprintf("%s/guilds/%s/members/%s", c.baseURL, c.guildID, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("discord member request error: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.botToken)
	if c.ua != "" {
		req.Header.Set("User-Agent", c.ua)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discord member request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrUnknownMember
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("discord member http error: status=%d body=%s", resp.StatusCode, string(body))
	}

	var m member
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, fmt.Errorf("discord member decode error: %w", err)
	}
	return m.Roles, nil
}

// AuthorizeURL returns the OAuth2 authorize URL for the given state.
func (c *Client) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("redirect_uri", c.redirectURL)
	q.Set("response_type", "code")
	q.Set("scope", "identify")
	q.Set("state", state)
	return c.baseURL + "/oauth2/authorize?" + q.Encode()
}

// ExchangeCode exchanges an OAuth2 authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	if strings.TrimSpace(c.clientID) == "" || strings.TrimSpace(c.clientSecret) == "" {
		return "", fmt.Errorf("discord config error: oauth client credentials are empty")
	}

	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.redirectURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("discord token request error: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.ua != "" {
		req.Header.Set("User-Agent", c.ua)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("discord token request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("discord token http error: status=%d body=%s", resp.StatusCode, string(body))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("discord token decode error: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("discord token error: empty access token")
	}
	return tok.AccessToken, nil
}

// CurrentUser fetches the user behind an OAuth2 access token.
func (c *Client) CurrentUser(ctx context.Context, accessToken string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/@me", nil)
	if err != nil {
		return nil, fmt.Errorf("discord user request error: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if c.ua != "" {
		req.Header.Set("User-Agent", c.ua)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discord user request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("discord user http error: status=%d body=%s", resp.StatusCode, string(body))
	}

	var u User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("discord user decode error: %w", err)
	}
	if u.ID == "" {
		return nil, fmt.Errorf("discord user error: empty user id")
	}
	return &u, nil
}

// DisplayName returns the member-facing name for a user.
func (u *User) DisplayName() string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}
