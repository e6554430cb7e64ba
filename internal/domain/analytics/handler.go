package analytics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hamsterhub/hamsterhub-api/internal/middleware"
	"github.com/hamsterhub/hamsterhub-api/internal/pkg/errorhandler"
	"github.com/hamsterhub/hamsterhub-api/internal/pkg/response"
)

// AdminChecker gates the report behind guild admin status.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// Handler handles analytics HTTP requests
type Handler struct {
	svc   *Service
	admin AdminChecker
}

// NewHandler creates analytics handler
func NewHandler(svc *Service, admin AdminChecker) *Handler {
	return &Handler{svc: svc, admin: admin}
}

// Report handles GET /shop/analytics
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}
	isAdmin, err := h.admin.IsAdmin(r.Context(), userID)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"INTERNAL_ERROR", "Failed to verify admin status", err)
		return
	}
	if !isAdmin {
		response.Forbidden(w, "Admin access required")
		return
	}

	filters := parseFilters(r)
	report, err := h.svc.Report(r.Context(), filters)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"INTERNAL_ERROR", "Failed to build analytics report", err)
		return
	}

	response.OK(w, report)
}

func parseFilters(r *http.Request) Filters {
	q := r.URL.Query()
	f := Filters{
		TimeRange:   q.Get("time_range"),
		Currency:    q.Get("currency"),
		Category:    q.Get("category"),
		ContentType: q.Get("content_type"),
	}
	if v := q.Get("min_price"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.MinPrice = &n
		}
	}
	if v := q.Get("max_price"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.MaxPrice = &n
		}
	}
	return f
}

// Routes returns analytics routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/", h.Report)
	return r
}
