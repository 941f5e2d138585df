package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/stvari/internal/auth"
	"github.com/erazemk/stvari/internal/store"
)

const loginTitle = "Prijava"

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "login.html", &PageData{Title: loginTitle})
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	fail := func(status int, msg string) {
		s.Templates.RenderStatus(w, status, "login.html", &PageData{Title: loginTitle, Error: msg})
	}

	if username == "" || password == "" {
		fail(http.StatusBadRequest, "Vnesite uporabniško ime in geslo.")
		return
	}

	user, err := store.GetUserByUsername(r.Context(), s.DB, username)
	if err != nil {
		slog.Error("failed to look up user", "error", err)
		fail(http.StatusInternalServerError, "Napaka pri prijavi.")
		return
	}
	if user == nil || user.DeletedAt != nil || auth.CheckPassword(user.PasswordHash, password) != nil {
		slog.Warn("login failed", "username", username, "remote", r.RemoteAddr)
		fail(http.StatusUnauthorized, "Napačno uporabniško ime ali geslo.")
		return
	}

	token, err := auth.GenerateToken(s.JWTSecret, user.ID, user.Username, user.Role)
	if err != nil {
		slog.Error("failed to generate token", "error", err)
		fail(http.StatusInternalServerError, "Napaka pri prijavi.")
		return
	}

	setAuthCookie(w, token)
	slog.Info("user logged in", "user", user.Username, "via", "web")
	http.Redirect(w, r, "/items", http.StatusSeeOther)
}

// Logout handles POST /logout. The session token is revoked, not just dropped.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	claims, err := sessionClaims(r, s.JWTSecret, s.DB)
	if err != nil {
		slog.Error("failed to check session", "error", err)
	}
	if claims != nil {
		if err := store.RevokeToken(r.Context(), s.DB, claims.ID, claims.Expiry()); err != nil {
			slog.Error("failed to revoke token", "user", claims.Username, "error", err)
		} else {
			slog.Info("user logged out", "user", claims.Username)
		}
	}

	clearAuthCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// SettingsPage handles GET /settings.
func (s *Server) SettingsPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "settings.html", &PageData{Title: "Nastavitve", User: GetWebClaims(r.Context())})
}

// SettingsSubmit handles POST /settings (change own password).
func (s *Server) SettingsSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	data := &PageData{Title: "Nastavitve", User: claims}

	current := r.FormValue("current_password")
	next := r.FormValue("new_password")
	if next != r.FormValue("confirm_password") {
		data.Error = "Gesli se ne ujemata."
		s.Templates.RenderStatus(w, http.StatusBadRequest, "settings.html", data)
		return
	}

	user, err := store.GetUser(r.Context(), s.DB, claims.UserID)
	if err != nil || user == nil {
		slog.Error("failed to get user", "user", claims.Username, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, current); err != nil {
		if !errors.Is(err, auth.ErrBadPassword) {
			slog.Error("failed to check password", "user", claims.Username, "error", err)
		}
		data.Error = "Trenutno geslo ni pravilno."
		s.Templates.RenderStatus(w, http.StatusUnauthorized, "settings.html", data)
		return
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		data.Error = "Geslo mora imeti vsaj 8 znakov."
		s.Templates.RenderStatus(w, http.StatusBadRequest, "settings.html", data)
		return
	}

	if err := store.UpdateUserPassword(r.Context(), s.DB, claims.UserID, hash); err != nil {
		slog.Error("failed to update password", "user", claims.Username, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	slog.Info("user changed own password", "user", claims.Username, "via", "web")
	data.Success = "Geslo je spremenjeno."
	s.Templates.Render(w, "settings.html", data)
}
