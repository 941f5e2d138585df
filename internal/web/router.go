package web

import (
	"database/sql"
	"net/http"

	"golang.org/x/text/language"

	"github.com/erazemk/stvari/internal/browse"
	"github.com/erazemk/stvari/internal/cache"
	"github.com/erazemk/stvari/internal/vocab"
	webembed "github.com/erazemk/stvari/web"
)

// Config holds the dependencies of the page router.
type Config struct {
	DB        *sql.DB
	JWTSecret string
	Vocab     *vocab.Vocabulary
	Cache     cache.Cache
	Lang      language.Tag
}

// NewRouter creates the web page router with all page routes registered.
func NewRouter(cfg Config) (http.Handler, error) {
	if cfg.Vocab == nil {
		cfg.Vocab = vocab.Default()
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.NewMemory()
	}

	templates, err := LoadTemplates(cfg.Vocab)
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:        cfg.DB,
		Templates: templates,
		JWTSecret: cfg.JWTSecret,
		Vocab:     cfg.Vocab,
		Browser:   &browse.Browser{DB: cfg.DB, Cache: cfg.Cache, Lang: cfg.Lang},
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(cfg.JWTSecret, cfg.DB)

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("POST /logout", s.Logout)

	// Authenticated routes.
	mux.Handle("GET /{$}", cookieAuth(http.RedirectHandler("/items", http.StatusSeeOther)))

	mux.Handle("GET /items", cookieAuth(http.HandlerFunc(s.ItemsPage)))
	mux.Handle("POST /items", cookieAuth(http.HandlerFunc(s.ItemCreateSubmit)))
	mux.Handle("GET /items/{id}", cookieAuth(http.HandlerFunc(s.ItemDetailPage)))
	mux.Handle("POST /items/{id}", cookieAuth(http.HandlerFunc(s.ItemUpdateSubmit)))
	mux.Handle("POST /items/{id}/delete", cookieAuth(http.HandlerFunc(s.ItemDeleteSubmit)))
	mux.Handle("POST /items/{id}/photo", cookieAuth(http.HandlerFunc(s.ItemPhotoSubmit)))
	mux.Handle("GET /items/{id}/photo", cookieAuth(http.HandlerFunc(s.ItemPhotoGet)))

	mux.Handle("GET /gallery", cookieAuth(http.HandlerFunc(s.GalleryPage)))

	mux.Handle("GET /settings", cookieAuth(http.HandlerFunc(s.SettingsPage)))
	mux.Handle("POST /settings", cookieAuth(http.HandlerFunc(s.SettingsSubmit)))

	return mux, nil
}
