package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/stvari/internal/browse"
	"github.com/erazemk/stvari/internal/catalog"
	"github.com/erazemk/stvari/internal/imaging"
	"github.com/erazemk/stvari/internal/metrics"
	"github.com/erazemk/stvari/internal/model"
	"github.com/erazemk/stvari/internal/store"
	"github.com/erazemk/stvari/internal/vocab"
)

// browsePage is the data of the items and gallery pages.
type browsePage struct {
	PageData
	Base      string
	Selection catalog.Selection
	Items     []model.Item
	Total     int
	Groups    []ChipGroup
	Sorts     []SortOption
	Clear     string
	Hidden    []HiddenField
	Vocab     *vocab.Vocabulary
	Form      *model.Item
	Materials []model.Material
}

// ItemsPage handles GET /items.
func (s *Server) ItemsPage(w http.ResponseWriter, r *http.Request) {
	s.browse(w, r, browse.Own, "/items", "items.html", "Moje stvari")
}

// GalleryPage handles GET /gallery.
func (s *Server) GalleryPage(w http.ResponseWriter, r *http.Request) {
	s.browse(w, r, browse.Gallery, "/gallery", "gallery.html", "Galerija")
}

func (s *Server) browse(w http.ResponseWriter, r *http.Request, scope browse.Scope, base, page, title string) {
	claims := GetWebClaims(r.Context())

	sel, err := catalog.DecodeSelection(r.URL.Query())
	if err != nil {
		http.Error(w, "invalid filter", http.StatusBadRequest)
		return
	}

	data, err := s.browseData(r, scope, base, sel)
	if err != nil {
		slog.Error("failed to build view", "user", claims.Username, "scope", scope, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	data.Title = title
	s.Templates.Render(w, page, data)
}

func (s *Server) browseData(r *http.Request, scope browse.Scope, base string, sel catalog.Selection) (*browsePage, error) {
	claims := GetWebClaims(r.Context())

	items, err := s.Browser.Load(r.Context(), claims.UserID, scope)
	if err != nil {
		return nil, err
	}
	panel, err := s.Browser.Panel(r.Context(), items, sel, scope)
	if err != nil {
		return nil, err
	}
	view := s.Browser.View(items, sel, scope)

	return &browsePage{
		PageData:  PageData{User: claims},
		Base:      base,
		Selection: sel,
		Items:     view.Items,
		Total:     view.Total,
		Groups:    chipGroups(s.Vocab, base, panel, sel),
		Sorts:     sortOptions(base, sel),
		Clear:     link(base, catalog.Selection{Sort: sel.Sort}),
		Hidden:    hiddenFields(sel),
		Vocab:     s.Vocab,
		Form:      &model.Item{},
		Materials: materialRows(nil, 3),
	}, nil
}

// ItemCreateSubmit handles POST /items. Invalid input re-renders the items
// page with the form filled in.
func (s *Server) ItemCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	item, err := decodeItemForm(r.PostForm)
	if err == nil {
		err = s.Vocab.ValidateItem(item)
	}
	if err != nil {
		data, derr := s.browseData(r, browse.Own, "/items", catalog.Selection{Sort: catalog.SortNewest})
		if derr != nil {
			slog.Error("failed to build view", "user", claims.Username, "error", derr)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		data.Title = "Moje stvari"
		data.Error = formError(err)
		if item != nil {
			data.Form = item
			data.Materials = materialRows(item.Materials, 1)
		}
		s.Templates.RenderStatus(w, http.StatusBadRequest, "items.html", data)
		return
	}

	created, err := store.CreateItem(r.Context(), s.DB, claims.UserID, item)
	if err != nil {
		slog.Error("failed to create item", "user", claims.Username, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	slog.Info("item created", "user", claims.Username, "item", created.ItemName, "id", created.ID)
	http.Redirect(w, r, "/items/"+created.ID, http.StatusSeeOther)
}

type detailPage struct {
	PageData
	Item      *model.Item
	Form      *model.Item
	Vocab     *vocab.Vocabulary
	Materials []model.Material
}

// ItemDetailPage handles GET /items/{id}.
func (s *Server) ItemDetailPage(w http.ResponseWriter, r *http.Request) {
	item, ok := s.ownedItem(w, r)
	if !ok {
		return
	}
	s.Templates.Render(w, "item_detail.html", &detailPage{
		PageData:  PageData{Title: item.ItemName, User: GetWebClaims(r.Context()), Success: r.URL.Query().Get("ok")},
		Item:      item,
		Form:      item,
		Vocab:     s.Vocab,
		Materials: materialRows(item.Materials, 2),
	})
}

// ItemUpdateSubmit handles POST /items/{id}.
func (s *Server) ItemUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	existing, ok := s.ownedItem(w, r)
	if !ok {
		return
	}
	claims := GetWebClaims(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	item, err := decodeItemForm(r.PostForm)
	if err == nil {
		err = s.Vocab.ValidateItem(item)
	}
	if err != nil {
		form := existing
		if item != nil {
			item.ID = existing.ID
			item.CreatedAt = existing.CreatedAt
			item.MainPhoto = existing.MainPhoto
			form = item
		}
		s.Templates.RenderStatus(w, http.StatusBadRequest, "item_detail.html", &detailPage{
			PageData:  PageData{Title: existing.ItemName, User: claims, Error: formError(err)},
			Item:      existing,
			Form:      form,
			Vocab:     s.Vocab,
			Materials: materialRows(form.Materials, 1),
		})
		return
	}

	item.ID = existing.ID
	if err := store.UpdateItem(r.Context(), s.DB, item); err != nil {
		slog.Error("failed to update item", "user", claims.Username, "id", item.ID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	slog.Info("item updated", "user", claims.Username, "item", item.ItemName, "id", item.ID)
	http.Redirect(w, r, "/items/"+item.ID+"?ok=Shranjeno.", http.StatusSeeOther)
}

// ItemDeleteSubmit handles POST /items/{id}/delete.
func (s *Server) ItemDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	item, ok := s.ownedItem(w, r)
	if !ok {
		return
	}
	claims := GetWebClaims(r.Context())

	if err := store.DeleteItem(r.Context(), s.DB, item.ID); err != nil {
		slog.Error("failed to delete item", "user", claims.Username, "id", item.ID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	slog.Info("item deleted", "user", claims.Username, "item", item.ItemName, "id", item.ID)
	http.Redirect(w, r, "/items", http.StatusSeeOther)
}

// ItemPhotoSubmit handles POST /items/{id}/photo.
func (s *Server) ItemPhotoSubmit(w http.ResponseWriter, r *http.Request) {
	item, ok := s.ownedItem(w, r)
	if !ok {
		return
	}
	claims := GetWebClaims(r.Context())

	reject := func(msg string) {
		metrics.PhotoUploads.WithLabelValues("rejected").Inc()
		s.Templates.RenderStatus(w, http.StatusBadRequest, "item_detail.html", &detailPage{
			PageData:  PageData{Title: item.ItemName, User: claims, Error: msg},
			Item:      item,
			Form:      item,
			Vocab:     s.Vocab,
			Materials: materialRows(item.Materials, 2),
		})
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		reject("Datoteka je prevelika.")
		return
	}
	file, _, err := r.FormFile("photo")
	if err != nil {
		reject("Izberite fotografijo.")
		return
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	if err != nil {
		switch {
		case errors.Is(err, imaging.ErrTooLarge):
			reject("Datoteka je prevelika.")
		case errors.Is(err, imaging.ErrUnsupported):
			reject("Podprti sta le formata JPEG in PNG.")
		default:
			reject("Fotografije ni bilo mogoče prebrati.")
		}
		return
	}

	if err := store.SetItemPhoto(r.Context(), s.DB, item.ID, photo.Data, photo.MIME); err != nil {
		slog.Error("failed to store photo", "user", claims.Username, "id", item.ID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	metrics.PhotoUploads.WithLabelValues("ok").Inc()

	slog.Info("item photo uploaded", "user", claims.Username, "item", item.ItemName, "width", photo.Width, "height", photo.Height)
	http.Redirect(w, r, "/items/"+item.ID, http.StatusSeeOther)
}

// ItemPhotoGet handles GET /items/{id}/photo. Other users only see photos of
// public items with public photos.
func (s *Server) ItemPhotoGet(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	item, err := store.GetItem(r.Context(), s.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if item == nil || (!canEdit(claims.UserID, claims.Role, item) && item.HidesPhotos()) {
		http.NotFound(w, r)
		return
	}

	data, mime, err := store.GetItemPhoto(r.Context(), s.DB, item.ID)
	if err != nil {
		slog.Error("failed to get photo", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, max-age=300")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write photo response", "error", err)
	}
}

// ownedItem loads the item in the path for its owner or an admin.
func (s *Server) ownedItem(w http.ResponseWriter, r *http.Request) (*model.Item, bool) {
	claims := GetWebClaims(r.Context())

	item, err := store.GetItem(r.Context(), s.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, false
	}
	if item == nil || !canEdit(claims.UserID, claims.Role, item) {
		http.NotFound(w, r)
		return nil, false
	}
	return item, true
}

func canEdit(userID int64, role string, item *model.Item) bool {
	return userID == item.UserID || role == model.RoleAdmin
}

func formError(err error) string {
	return "Neveljaven vnos: " + strings.TrimPrefix(err.Error(), vocab.ErrInvalidItem.Error()+": ")
}
