package purchase

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hamsterhub/hamsterhub-api/internal/middleware"
	"github.com/hamsterhub/hamsterhub-api/internal/pkg/response"
	"github.com/hamsterhub/hamsterhub-api/internal/pkg/storage"
)

// Store is the persistence surface the handler needs.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	ListByUser(ctx context.Context, userID string) ([]Entry, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]Order, error)
	RecordDownload(ctx context.Context, id uuid.UUID) error
}

// Handler handles purchase-history HTTP requests
type Handler struct {
	store Store
	files storage.Storage
}

// ContentResponse is the deliverable view of a purchase.
type ContentResponse struct {
	PurchaseID  uuid.UUID `json:"purchase_id"`
	ItemID      uuid.UUID `json:"item_id"`
	ItemName    string    `json:"item_name"`
	Image       string    `json:"image,omitempty"`
	ContentType string    `json:"content_type"`
	TextContent string    `json:"text_content,omitempty"`
	LinkURL     string    `json:"link_url,omitempty"`
	YouTubeURL  string    `json:"youtube_url,omitempty"`
	HasFile     bool      `json:"has_file"`
	FileName    string    `json:"file_name,omitempty"`
}

// NewHandler creates purchase handler
func NewHandler(store Store, files storage.Storage) *Handler {
	return &Handler{store: store, files: files}
}

// ListMine handles GET /shop/purchases
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	entries, err := h.store.ListByUser(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, entries)
}

// ListOrders handles GET /shop/orders
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	orders, err := h.store.ListOrdersByUser(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, orders)
}

// GetContent handles GET /shop/purchases/{id}
// Serves the snapshotted deliverable, owner-only.
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.ownedEntry(w, r)
	if !ok {
		return
	}

	response.OK(w, ContentResponse{
		PurchaseID:  entry.ID,
		ItemID:      entry.ItemID,
		ItemName:    entry.ItemName,
		Image:       entry.ImageURL,
		ContentType: string(entry.ContentType),
		TextContent: entry.TextContent,
		LinkURL:     entry.LinkURL,
		YouTubeURL:  entry.YouTubeURL,
		HasFile:     entry.HasFile(),
		FileName:    entry.FileName,
	})
}

// Download handles GET /shop/purchases/{id}/download
// Streams the snapshotted file and records the download.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.ownedEntry(w, r)
	if !ok {
		return
	}
	if !entry.HasFile() {
		response.BadRequest(w, "Purchase has no downloadable file")
		return
	}

	file, err := h.files.Get(r.Context(), entry.FileURL)
	if err != nil {
		log.Error().Err(err).Str("purchase_id", entry.ID.String()).Msg("failed to open purchased file")
		response.InternalError(w)
		return
	}
	defer file.Close()

	if err := h.store.RecordDownload(r.Context(), entry.ID); err != nil {
		log.Warn().Err(err).Str("purchase_id", entry.ID.String()).Msg("failed to record download")
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+entry.FileName+`"`)
	if _, err := io.Copy(w, file); err != nil {
		log.Warn().Err(err).Str("purchase_id", entry.ID.String()).Msg("download stream interrupted")
	}
}

func (h *Handler) ownedEntry(w http.ResponseWriter, r *http.Request) (*Entry, bool) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid purchase id")
		return nil, false
	}

	entry, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPurchaseNotFound) {
			response.NotFound(w, "Purchase not found")
			return nil, false
		}
		response.InternalError(w)
		return nil, false
	}
	if entry.UserID != userID {
		response.Forbidden(w, "Purchase belongs to another user")
		return nil, false
	}
	return entry, true
}

// Routes returns purchase routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/", h.ListMine)
	r.Get("/{id}", h.GetContent)
	r.Get("/{id}/download", h.Download)
	return r
}

// OrderRoutes returns order-header routes
func (h *Handler) OrderRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/", h.ListOrders)
	return r
}
