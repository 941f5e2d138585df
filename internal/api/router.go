package api

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/text/language"

	"github.com/erazemk/stvari/internal/cache"
	"github.com/erazemk/stvari/internal/model"
	"github.com/erazemk/stvari/internal/vocab"
)

// Config holds the dependencies of the API router.
type Config struct {
	DB        *sql.DB
	JWTSecret string
	Vocab     *vocab.Vocabulary
	Cache     cache.Cache
	Lang      language.Tag
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(cfg Config) http.Handler {
	if cfg.Vocab == nil {
		cfg.Vocab = vocab.Default()
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.NewMemory()
	}

	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: cfg.DB, JWTSecret: cfg.JWTSecret}
	usersHandler := &UsersHandler{DB: cfg.DB}
	itemsHandler := &ItemsHandler{DB: cfg.DB, Vocab: cfg.Vocab, Cache: cfg.Cache, Lang: cfg.Lang}

	authMW := AuthMiddleware(cfg.JWTSecret, cfg.DB)
	requireAdmin := RequireRole(model.RoleAdmin)

	// Public.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.UpdateRole))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Own catalog.
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("GET /api/items/facets", authMW(http.HandlerFunc(itemsHandler.Facets)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PUT /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))
	mux.Handle("PUT /api/items/{id}/photo", authMW(http.HandlerFunc(itemsHandler.UploadPhoto)))
	mux.Handle("GET /api/items/{id}/photo", authMW(http.HandlerFunc(itemsHandler.GetPhoto)))

	// Community gallery.
	mux.Handle("GET /api/gallery", authMW(http.HandlerFunc(itemsHandler.Gallery)))
	mux.Handle("GET /api/gallery/facets", authMW(http.HandlerFunc(itemsHandler.GalleryFacets)))

	mux.Handle("GET /api/vocabulary", authMW(http.HandlerFunc(itemsHandler.Vocabulary)))

	return mux
}
