package web

import (
	"errors"
	"net/http"
	"strings"

	"tutelliv/internal"
	"tutelliv/internal/client"
	"tutelliv/pkg/types"
)

type LoginPageData struct {
	Title string
	Next  string
	Error string
}

func landingFor(role types.Role) string {
	if role == types.RoleDeliverer {
		return "/courier/dashboard"
	}
	return "/dashboard"
}

// safeNext only accepts same-site relative paths for the post-login
// redirect.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return ""
}

func (s *Service) handleGetLogin(w http.ResponseWriter, r *http.Request) {
	if session := sessionFromContext(r.Context()); session != nil {
		http.Redirect(w, r, landingFor(session.Role), http.StatusSeeOther)
		return
	}

	data := LoginPageData{
		Title: "Connexion",
		Next:  safeNext(r.URL.Query().Get("next")),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "page.login", data); err != nil {
		s.logger.WithError(err).Error("failed to render login page")
		s.internalServerError(w)
	}
}

func (s *Service) handlePostLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.internalServerError(w)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	next := safeNext(r.FormValue("next"))

	result, err := s.api.Login(r.Context(), email, password)
	if err != nil {
		message := "Connexion au serveur impossible"
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			message = "Identifiants invalides"
		} else {
			s.logger.WithError(err).Error("login request failed")
		}

		data := LoginPageData{Title: "Connexion", Next: next, Error: message}
		w.WriteHeader(http.StatusUnauthorized)
		if err := s.templates.ExecuteTemplate(w, "page.login", data); err != nil {
			s.logger.WithError(err).Error("failed to render login page")
		}
		return
	}

	encoded, err := s.cookie.Encode(internal.COOKIE_TOKEN_NAME, result.Token)
	if err != nil {
		s.logger.WithError(err).Error("failed to encode token cookie")
		s.internalServerError(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_TOKEN_NAME,
		Value:    encoded,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   s.config.CookieMaxAgeSec,
		Path:     "/",
	})
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ROLE_NAME,
		Value:    string(result.User.Role),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   s.config.CookieMaxAgeSec,
		Path:     "/",
	})

	s.refresher.Adopt(result.Token)
	s.refresher.Kick()

	if next != "" {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, landingFor(result.User.Role), http.StatusSeeOther)
}

func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	if session := sessionFromContext(r.Context()); session != nil {
		// tokens are stateless, this is best effort
		if err := s.api.WithToken(session.Token).Logout(r.Context()); err != nil {
			s.logger.WithError(err).Debug("logout call failed")
		}
	}

	for _, name := range []string{internal.COOKIE_TOKEN_NAME, internal.COOKIE_ROLE_NAME} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
			Path:     "/",
		})
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
