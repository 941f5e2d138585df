package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/text/language"

	"github.com/erazemk/stvari/internal/auth"
	"github.com/erazemk/stvari/internal/browse"
	"github.com/erazemk/stvari/internal/cache"
	"github.com/erazemk/stvari/internal/catalog"
	"github.com/erazemk/stvari/internal/imaging"
	"github.com/erazemk/stvari/internal/metrics"
	"github.com/erazemk/stvari/internal/model"
	"github.com/erazemk/stvari/internal/store"
	"github.com/erazemk/stvari/internal/vocab"
)

// ItemsHandler handles catalog endpoints.
type ItemsHandler struct {
	DB    *sql.DB
	Vocab *vocab.Vocabulary
	Cache cache.Cache
	Lang  language.Tag
}

func (h *ItemsHandler) browser() *browse.Browser {
	return &browse.Browser{DB: h.DB, Cache: h.Cache, Lang: h.Lang}
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	h.view(w, r, browse.Own)
}

// Gallery handles GET /api/gallery.
func (h *ItemsHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	h.view(w, r, browse.Gallery)
}

// Facets handles GET /api/items/facets.
func (h *ItemsHandler) Facets(w http.ResponseWriter, r *http.Request) {
	h.panel(w, r, browse.Own)
}

// GalleryFacets handles GET /api/gallery/facets.
func (h *ItemsHandler) GalleryFacets(w http.ResponseWriter, r *http.Request) {
	h.panel(w, r, browse.Gallery)
}

func (h *ItemsHandler) view(w http.ResponseWriter, r *http.Request, scope browse.Scope) {
	claims := GetClaims(r.Context())

	sel, err := catalog.DecodeSelection(r.URL.Query())
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid selection")
		return
	}

	b := h.browser()
	items, err := b.Load(r.Context(), claims.UserID, scope)
	if err != nil {
		slog.Error("failed to load items", "user", claims.Username, "scope", scope, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	jsonResponse(w, http.StatusOK, b.View(items, sel, scope))
}

func (h *ItemsHandler) panel(w http.ResponseWriter, r *http.Request, scope browse.Scope) {
	claims := GetClaims(r.Context())

	sel, err := catalog.DecodeSelection(r.URL.Query())
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid selection")
		return
	}

	b := h.browser()
	items, err := b.Load(r.Context(), claims.UserID, scope)
	if err != nil {
		slog.Error("failed to load items", "user", claims.Username, "scope", scope, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	panel, err := b.Panel(r.Context(), items, sel, scope)
	if err != nil {
		slog.Error("failed to compute facets", "user", claims.Username, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to compute facets")
		return
	}
	jsonResponse(w, http.StatusOK, panel)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var item model.Item
	if err := decodeJSON(w, r, &item); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.validate(w, &item) {
		return
	}

	created, err := store.CreateItem(r.Context(), h.DB, claims.UserID, &item)
	if err != nil {
		slog.Error("failed to create item", "user", claims.Username, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	slog.Info("item created", "user", claims.Username, "item", created.ItemName, "id", created.ID)
	jsonResponse(w, http.StatusCreated, created)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, ok := h.owned(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.owned(w, r)
	if !ok {
		return
	}

	var item model.Item
	if err := decodeJSON(w, r, &item); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	item.ID = existing.ID
	if !h.validate(w, &item) {
		return
	}

	claims := GetClaims(r.Context())
	if err := store.UpdateItem(r.Context(), h.DB, &item); err != nil {
		slog.Error("failed to update item", "user", claims.Username, "id", item.ID, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	updated, err := store.GetItem(r.Context(), h.DB, item.ID)
	if err != nil || updated == nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}

	slog.Info("item updated", "user", claims.Username, "item", updated.ItemName, "id", updated.ID)
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item, ok := h.owned(w, r)
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	if err := store.DeleteItem(r.Context(), h.DB, item.ID); err != nil {
		slog.Error("failed to delete item", "user", claims.Username, "id", item.ID, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	slog.Info("item deleted", "user", claims.Username, "item", item.ItemName, "id", item.ID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// UploadPhoto handles PUT /api/items/{id}/photo.
func (h *ItemsHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	item, ok := h.owned(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		metrics.PhotoUploads.WithLabelValues("rejected").Inc()
		jsonError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, _, err := r.FormFile("photo")
	if err != nil {
		metrics.PhotoUploads.WithLabelValues("rejected").Inc()
		jsonError(w, http.StatusBadRequest, "photo file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	if err != nil {
		metrics.PhotoUploads.WithLabelValues("rejected").Inc()
		switch {
		case errors.Is(err, imaging.ErrTooLarge):
			jsonError(w, http.StatusRequestEntityTooLarge, err.Error())
		default:
			jsonError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	claims := GetClaims(r.Context())
	if err := store.SetItemPhoto(r.Context(), h.DB, item.ID, photo.Data, photo.MIME); err != nil {
		slog.Error("failed to store photo", "user", claims.Username, "id", item.ID, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to store photo")
		return
	}
	metrics.PhotoUploads.WithLabelValues("ok").Inc()

	slog.Info("item photo uploaded", "user", claims.Username, "item", item.ItemName, "width", photo.Width, "height", photo.Height)
	jsonResponse(w, http.StatusOK, map[string]string{"mainPhoto": store.PhotoURL(item.ID)})
}

// GetPhoto handles GET /api/items/{id}/photo. Other users only see photos of
// items that are public with public photos.
func (h *ItemsHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	item, err := store.GetItem(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil || (!canEdit(GetClaims(r.Context()), item) && item.HidesPhotos()) {
		jsonError(w, http.StatusNotFound, "photo not found")
		return
	}

	data, mime, err := store.GetItemPhoto(r.Context(), h.DB, item.ID)
	if err != nil {
		slog.Error("failed to get photo", "id", item.ID, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get photo")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "photo not found")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.Write(data)
}

// Vocabulary handles GET /api/vocabulary.
func (h *ItemsHandler) Vocabulary(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, h.Vocab)
}

// owned loads the item named in the path and checks the caller may edit it.
// It writes the error response itself.
func (h *ItemsHandler) owned(w http.ResponseWriter, r *http.Request) (*model.Item, bool) {
	item, err := store.GetItem(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return nil, false
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return nil, false
	}
	if !canEdit(GetClaims(r.Context()), item) {
		jsonError(w, http.StatusForbidden, "not your item")
		return nil, false
	}
	return item, true
}

func (h *ItemsHandler) validate(w http.ResponseWriter, item *model.Item) bool {
	if err := h.Vocab.ValidateItem(item); err != nil {
		if errors.Is(err, vocab.ErrInvalidItem) {
			jsonError(w, http.StatusBadRequest, err.Error())
		} else {
			jsonError(w, http.StatusInternalServerError, "failed to validate item")
		}
		return false
	}
	return true
}

func canEdit(claims *auth.Claims, item *model.Item) bool {
	return claims != nil && (claims.UserID == item.UserID || claims.Role == model.RoleAdmin)
}
