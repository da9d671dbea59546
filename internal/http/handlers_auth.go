package http

import (
	"log/slog"
	"net/http"
	"time"

	"iuran/internal/auth"
	applog "iuran/internal/log"
)

type loginView struct {
	Error string
}

// handleLogin renders the login form and processes credential submissions.
// Failures always carry the same message regardless of which field was wrong.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := sessionFromContext(r.Context()); ok {
			http.Redirect(w, r, auth.PageDashboard.Path, http.StatusSeeOther)
			return
		}
		s.render(w, r, "login.html", loginView{})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			s.render(w, r, "login.html", loginView{Error: "Format permintaan tidak valid"})
			return
		}
		username := sanitizeInput(r.Form.Get("username"))
		password := r.Form.Get("password")

		token, sess, err := s.sessions.Login(r.Context(), username, password)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			s.render(w, r, "login.html", loginView{Error: "Username atau password salah"})
			return
		}
		setSessionCookie(w, token, cookieMaxAge(sess))
		http.Redirect(w, r, auth.PageDashboard.Path, http.StatusSeeOther)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleGuestLogin creates a read-only session without credentials.
func (s *Server) handleGuestLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	token, sess, err := s.sessions.LoginAsGuest(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Guest login failed", applog.FieldError, err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}
	setSessionCookie(w, token, cookieMaxAge(sess))
	http.Redirect(w, r, auth.PageDashboard.Path, http.StatusSeeOther)
}

// handleLogout destroys the session and clears the cookie. Logging out with
// no live session still lands on the login form.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := s.sessions.Logout(r.Context(), cookie.Value); err != nil {
			slog.WarnContext(r.Context(), "Logout failed", applog.FieldError, err)
		}
	}
	clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func cookieMaxAge(sess auth.Session) int {
	if sess.Expiry.IsZero() {
		return 0
	}
	return int(time.Until(sess.Expiry).Seconds())
}
