package balance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hamsterhub/hamsterhub-api/internal/middleware"
	"github.com/hamsterhub/hamsterhub-api/internal/pkg/response"
	"github.com/hamsterhub/hamsterhub-api/internal/pkg/validator"
)

// AdminChecker gates administrative operations.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// Handler handles balance HTTP requests
type Handler struct {
	svc   *Service
	admin AdminChecker
}

// GrantRequest credits coins to a member's account
type GrantRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	Currency string `json:"currency" validate:"required,currency"`
	Amount   int64  `json:"amount" validate:"required,min=1"`
}

// NewHandler creates balance handler
func NewHandler(svc *Service, admin AdminChecker) *Handler {
	return &Handler{svc: svc, admin: admin}
}

// Balances handles GET /shop/balance
func (h *Handler) Balances(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	accounts, err := h.svc.GetBalances(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	out := make(map[string]Account, len(accounts))
	for _, acc := range accounts {
		out[string(acc.Currency)] = acc
	}
	response.OK(w, out)
}

// Grant handles POST /shop/admin/balance/grant
func (h *Handler) Grant(w http.ResponseWriter, r *http.Request) {
	adminID := middleware.GetUserID(r.Context())
	if adminID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	isAdmin, err := h.admin.IsAdmin(r.Context(), adminID)
	if err != nil {
		response.InternalError(w)
		return
	}
	if !isAdmin {
		response.Forbidden(w, "Admin role required")
		return
	}

	var req GrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	newBalance, err := h.svc.Grant(r.Context(), req.UserID, Currency(req.Currency), req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidCurrency):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, map[string]interface{}{
		"user_id":     req.UserID,
		"currency":    req.Currency,
		"new_balance": newBalance,
	})
}

// Routes returns balance routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/", h.Balances)
	return r
}

// AdminRoutes returns admin balance routes
func (h *Handler) AdminRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/grant", h.Grant)
	return r
}
