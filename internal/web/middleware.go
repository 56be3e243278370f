package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"tutelliv/internal"
	"tutelliv/pkg/types"

	"github.com/sirupsen/logrus"
)

type contextKey string

const contextKeySession contextKey = "session"

// Session is the decoded cookie pair for one request.
type Session struct {
	Token string
	Role  types.Role
}

func sessionFromContext(ctx context.Context) *Session {
	session, _ := ctx.Value(contextKeySession).(*Session)
	return session
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// ResolveSession decodes the token and role cookies into a Session on
// the context. Requests without valid cookies pass through anonymous;
// the gate decides what that means per path.
func (s *Service) ResolveSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(internal.COOKIE_TOKEN_NAME)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		var token string
		if err := s.cookie.Decode(internal.COOKIE_TOKEN_NAME, cookie.Value, &token); err != nil {
			s.logger.WithError(err).Debug("failed to decode token cookie")
			next.ServeHTTP(w, r)
			return
		}

		session := &Session{Token: token}
		if roleCookie, err := r.Cookie(internal.COOKIE_ROLE_NAME); err == nil {
			session.Role = types.Role(roleCookie.Value)
		}

		// background reloads reuse the freshest session token
		s.refresher.Adopt(token)

		ctx := context.WithValue(r.Context(), contextKeySession, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Gate applies the access rules to every request ahead of the handlers.
func (s *Service) Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())

		var role types.Role
		if session != nil {
			role = session.Role
		}

		decision := Decide(r.URL.Path, session != nil, role)
		if !decision.Allow {
			http.Redirect(w, r, decision.RedirectTo, http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path != "/" && strings.HasSuffix(path, "/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")
			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}
