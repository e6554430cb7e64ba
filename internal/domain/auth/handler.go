package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/hamsterhub/hamsterhub-api/internal/domain/balance"
	"github.com/hamsterhub/hamsterhub-api/internal/middleware"
	"github.com/hamsterhub/hamsterhub-api/internal/pkg/discord"
	"github.com/hamsterhub/hamsterhub-api/internal/pkg/errorhandler"
	"github.com/hamsterhub/hamsterhub-api/internal/pkg/jwt"
	"github.com/hamsterhub/hamsterhub-api/internal/pkg/response"
)

const stateCookie = "oauth_state"

// Accounts seeds a user's wallets on first login.
type Accounts interface {
	Ensure(ctx context.Context, userID string, currency balance.Currency) error
}

// OAuth is the slice of the Discord client the login flow needs.
type OAuth interface {
	AuthorizeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (string, error)
	CurrentUser(ctx context.Context, accessToken string) (*discord.User, error)
}

// AdminChecker reports guild admin status for /auth/me.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// Handler handles the Discord OAuth login flow and session introspection.
type Handler struct {
	oauth    OAuth
	jwt      *jwt.Service
	accounts Accounts
	admin    AdminChecker
}

// NewHandler creates auth handler
func NewHandler(oauth OAuth, jwtService *jwt.Service, accounts Accounts, admin AdminChecker) *Handler {
	return &Handler{oauth: oauth, jwt: jwtService, accounts: accounts, admin: admin}
}

// Login handles GET /auth/login. Issues a state cookie and redirects to
// Discord's consent screen.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"INTERNAL_ERROR", "Failed to start login", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.oauth.AuthorizeURL(state), http.StatusTemporaryRedirect)
}

// Callback handles GET /auth/callback. Exchanges the code, identifies the
// user, seeds their wallets and returns a session token.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	code := q.Get("code")
	if code == "" {
		response.BadRequest(w, "Missing authorization code")
		return
	}

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != q.Get("state") {
		response.BadRequest(w, "Invalid OAuth state")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/auth", MaxAge: -1})

	accessToken, err := h.oauth.ExchangeCode(r.Context(), code)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusBadGateway,
			"DISCORD_ERROR", "Failed to exchange authorization code", err)
		return
	}

	user, err := h.oauth.CurrentUser(r.Context(), accessToken)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusBadGateway,
			"DISCORD_ERROR", "Failed to load Discord profile", err)
		return
	}

	for _, c := range balance.Currencies() {
		if err := h.accounts.Ensure(r.Context(), user.ID, c); err != nil {
			errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
				"INTERNAL_ERROR", "Failed to initialize balances", err)
			return
		}
	}

	token, err := h.jwt.GenerateToken(user.ID, user.DisplayName())
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"INTERNAL_ERROR", "Failed to issue session token", err)
		return
	}

	log.Info().Str("user_id", user.ID).Msg("user logged in")

	response.OK(w, map[string]interface{}{
		"token": token,
		"user": map[string]string{
			"id":       user.ID,
			"username": user.DisplayName(),
			"avatar":   user.Avatar,
		},
	})
}

// Me handles GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	isAdmin, err := h.admin.IsAdmin(r.Context(), userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("admin check failed")
		isAdmin = false
	}

	response.OK(w, map[string]interface{}{
		"id":       userID,
		"username": middleware.GetUsername(r.Context()),
		"is_admin": isAdmin,
	})
}

func randomState() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Routes returns auth routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/login", h.Login)
	r.Get("/callback", h.Callback)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/me", h.Me)
	})
	return r
}
