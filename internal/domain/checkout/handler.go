package checkout

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hamsterhub/hamsterhub-api/internal/middleware"
	"github.com/hamsterhub/hamsterhub-api/internal/pkg/errorhandler"
	"github.com/hamsterhub/hamsterhub-api/internal/pkg/response"
	"github.com/hamsterhub/hamsterhub-api/internal/pkg/validator"
)

// Handler handles checkout HTTP requests
type Handler struct {
	svc *Service
}

// NewHandler creates checkout handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Checkout handles POST /shop/checkout
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}
	username := middleware.GetUsername(r.Context())

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if len(req.Items) == 0 {
		response.BadRequest(w, "Cart is empty")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.svc.Checkout(r.Context(), userID, username, &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.OK(w, result)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound     *ItemNotFoundError
		roleRequired *RoleRequiredError
		noFunds      *InsufficientFundsError
		mismatch     *TotalMismatchError
		unavailable  *ItemUnavailableError
		owned        *AlreadyOwnedError
	)

	switch {
	case errors.Is(err, ErrEmptyCart):
		response.BadRequest(w, "Cart is empty")
	case errors.Is(err, ErrInvalidCurrency):
		response.BadRequest(w, "Currency must be 'primary' or 'secondary'")
	case errors.As(err, &notFound):
		response.ErrorWithDetails(w, http.StatusBadRequest, "ITEM_NOT_FOUND",
			"Cart references an unknown item", map[string]string{
				"item_id": notFound.ItemID,
			})
	case errors.As(err, &roleRequired):
		requiredRole := roleRequired.RoleName
		if requiredRole == "" {
			requiredRole = roleRequired.RoleID
		}
		response.ErrorWithDetails(w, http.StatusForbidden, "ROLE_REQUIRED",
			"A guild role is required to purchase this item", map[string]string{
				"item_name":     roleRequired.ItemName,
				"required_role": requiredRole,
			})
	case errors.As(err, &noFunds):
		response.ErrorWithDetails(w, http.StatusBadRequest, "INSUFFICIENT_FUNDS",
			"Not enough coins for this cart", map[string]string{
				"current_balance": strconv.FormatInt(noFunds.CurrentBalance, 10),
				"required_amount": strconv.FormatInt(noFunds.RequiredAmount, 10),
			})
	case errors.As(err, &mismatch):
		response.ErrorWithDetails(w, http.StatusBadRequest, "TOTAL_MISMATCH",
			"Cart total does not match catalog prices", map[string]string{
				"submitted": strconv.FormatInt(mismatch.Submitted, 10),
				"actual":    strconv.FormatInt(mismatch.Actual, 10),
			})
	case errors.As(err, &unavailable):
		response.Conflict(w, "Item is out of stock: "+unavailable.ItemName)
	case errors.As(err, &owned):
		response.Conflict(w, "Item already purchased: "+owned.ItemName)
	default:
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"INTERNAL_ERROR", "Failed to process checkout", err)
	}
}

// Routes returns checkout routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/", h.Checkout)
	return r
}
