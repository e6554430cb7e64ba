package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hamsterhub/hamsterhub-api/internal/middleware"
	"github.com/hamsterhub/hamsterhub-api/internal/pkg/imaging"
	"github.com/hamsterhub/hamsterhub-api/internal/pkg/response"
	"github.com/hamsterhub/hamsterhub-api/internal/pkg/storage"
	"github.com/hamsterhub/hamsterhub-api/internal/pkg/validator"
)

const MaxUploadSize = 20 * 1024 * 1024 // multipart: 20 MB

// AdminChecker gates administrative catalog operations.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// Handler handles catalog HTTP requests
type Handler struct {
	repo      *Repository
	admin     AdminChecker
	files     storage.Storage
	processor *imaging.Processor
}

// NewHandler creates catalog handler
func NewHandler(repo *Repository, admin AdminChecker, files storage.Storage, processor *imaging.Processor) *Handler {
	return &Handler{repo: repo, admin: admin, files: files, processor: processor}
}

// List handles GET /shop/items
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		response.InternalError(w)
		return
	}

	out := make([]PublicItem, 0, len(items))
	for i := range items {
		out = append(out, items[i].Public())
	}
	response.OK(w, out)
}

// Get handles GET /shop/items/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid item id")
		return
	}

	item, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			response.NotFound(w, "Item not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, item.Public())
}

// Create handles POST /shop/admin/items
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	contentType := ContentType(req.ContentType)
	if contentType == "" {
		contentType = ContentNone
	}
	inStock := true
	if req.InStock != nil {
		inStock = *req.InStock
	}

	item := &Item{
		Name:                   req.Name,
		Description:            req.Description,
		Price:                  req.Price,
		Category:               req.Category,
		ContentType:            contentType,
		TextContent:            req.TextContent,
		LinkURL:                req.LinkURL,
		YouTubeURL:             req.YouTubeURL,
		InStock:                inStock,
		AllowMultiplePurchases: req.AllowMultiplePurchases,
		RequiresRole:           req.RequiresRole,
		RequiredRoleID:         req.RequiredRoleID,
		RequiredRoleName:       req.RequiredRoleName,
	}

	if err := h.repo.Create(r.Context(), item); err != nil {
		response.InternalError(w)
		return
	}
	response.Created(w, item)
}

// Update handles PATCH /shop/admin/items/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid item id")
		return
	}

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	item, err := h.repo.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			response.NotFound(w, "Item not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, item)
}

// Delete handles DELETE /shop/admin/items/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid item id")
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			response.NotFound(w, "Item not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.NoContent(w)
}

// UploadFile handles POST /shop/admin/items/{id}/file
// Stores the deliverable file and switches the item to file content.
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid item id")
		return
	}
	if _, err := h.repo.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			response.NotFound(w, "Item not found")
			return
		}
		response.InternalError(w)
		return
	}

	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		response.BadRequest(w, "File too large or malformed form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "Missing file field")
		return
	}
	defer file.Close()

	key := fmt.Sprintf("items/%s/files/%s", id, sanitizeFilename(header.Filename))
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := h.files.Put(r.Context(), key, file, contentType); err != nil {
		response.InternalError(w)
		return
	}
	if err := h.repo.SetFile(r.Context(), id, key, header.Filename); err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]string{
		"file_name": header.Filename,
		"file_url":  h.files.URL(key),
	})
}

// UploadImage handles POST /shop/admin/items/{id}/image
// Resizes the image, generates a thumbnail and stores both.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid item id")
		return
	}
	if _, err := h.repo.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			response.NotFound(w, "Item not found")
			return
		}
		response.InternalError(w)
		return
	}

	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		response.BadRequest(w, "File too large or malformed form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "Missing file field")
		return
	}
	defer file.Close()

	processed, err := h.processor.Process(file)
	if err != nil {
		response.BadRequest(w, "Unsupported or corrupt image")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	imageKey := fmt.Sprintf("items/%s/image%s", id, ext)
	thumbKey := fmt.Sprintf("items/%s/thumb%s", id, ext)

	if err := h.files.Put(r.Context(), imageKey, bytes.NewReader(processed.Original), processed.ContentType); err != nil {
		response.InternalError(w)
		return
	}
	if err := h.files.Put(r.Context(), thumbKey, bytes.NewReader(processed.Thumbnail), processed.ContentType); err != nil {
		response.InternalError(w)
		return
	}

	imageURL := h.files.URL(imageKey)
	thumbURL := h.files.URL(thumbKey)
	if err := h.repo.SetImage(r.Context(), id, imageURL, thumbURL); err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]string{
		"image_url":     imageURL,
		"thumbnail_url": thumbURL,
	})
}

func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return false
	}
	isAdmin, err := h.admin.IsAdmin(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return false
	}
	if !isAdmin {
		response.Forbidden(w, "Admin role required")
		return false
	}
	return true
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}

// Routes returns public catalog routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	return r
}

// AdminRoutes returns admin catalog routes
func (h *Handler) AdminRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/", h.Create)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/file", h.UploadFile)
	r.Post("/{id}/image", h.UploadImage)
	return r
}
