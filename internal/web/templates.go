package web

import (
	"bytes"
	"database/sql"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/stvari/internal/auth"
	"github.com/erazemk/stvari/internal/browse"
	"github.com/erazemk/stvari/internal/model"
	"github.com/erazemk/stvari/internal/vocab"
	webembed "github.com/erazemk/stvari/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap(v *vocab.Vocabulary) template.FuncMap {
	return template.FuncMap{
		"categoryLabel":    v.Label,
		"sourceLabel":      v.SourceLabel,
		"hasSubcategories": model.HasSubcategories,
		"hasMaterials":     model.HasMaterials,
		"roleName": func(role string) string {
			switch role {
			case model.RoleAdmin:
				return "Administrator"
			case model.RoleUser:
				return "Uporabnik"
			default:
				return role
			}
		},
		"subcategories": func() []string {
			c, _ := v.Category(model.CategoryClothing)
			return c.Subcategories
		},
		"pct": func(p *int) string {
			if p == nil {
				return ""
			}
			return strconv.Itoa(*p)
		},
		"date": func(s string) string {
			if len(s) >= 10 {
				return s[:10]
			}
			return s
		},
	}
}

// LoadTemplates parses all page templates with the layout and shared partials.
func LoadTemplates(v *vocab.Vocabulary) (*Templates, error) {
	tfs := webembed.TemplatesFS()

	shared := []string{"layout.html", "partials.html"}
	pages := []string{
		"login.html",
		"items.html",
		"item_detail.html",
		"gallery.html",
		"settings.html",
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		tmpl := template.New(page).Funcs(FuncMap(v))
		for _, name := range append(shared, page) {
			data, err := fs.ReadFile(tfs, name)
			if err != nil {
				return nil, fmt.Errorf("reading template %s: %w", name, err)
			}
			if tmpl, err = tmpl.Parse(string(data)); err != nil {
				return nil, fmt.Errorf("parsing %s for %s: %w", name, page, err)
			}
		}
		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data. Output is buffered so a
// failing template never sends a half-written page.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	ts.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus is Render with an explicit status code.
func (ts *Templates) RenderStatus(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title   string
	User    *auth.Claims
	Error   string
	Success string
}

// Server holds all dependencies for page handlers.
type Server struct {
	DB        *sql.DB
	Templates *Templates
	JWTSecret string
	Vocab     *vocab.Vocabulary
	Browser   *browse.Browser
}
