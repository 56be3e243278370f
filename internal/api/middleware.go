package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"tutelliv/internal"
	"tutelliv/internal/token"
	"tutelliv/pkg/types"

	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const contextKeyClaims contextKey = "claims"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
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

// bearerToken finds the request's token. Search order: query string
// (PDF links on plain anchors cannot set headers), Authorization
// header, then the session cookie.
func bearerToken(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}

	if h := r.Header.Get("Authorization"); h != "" {
		if strings.HasPrefix(strings.ToLower(h), "bearer ") {
			return strings.TrimSpace(h[len("bearer "):])
		}
	}

	if cookie, err := r.Cookie(internal.COOKIE_TOKEN_NAME); err == nil {
		return cookie.Value
	}

	return ""
}

// RequireAuth verifies the bearer token and stores its claims on the
// request context.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			s.respondDetail(w, http.StatusUnauthorized, "Missing token")
			return
		}

		claims, err := s.signer.Verify(raw)
		if err != nil {
			s.logger.WithError(err).Debug("rejected bearer token")
			s.respondDetail(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyClaims, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Service) claimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(contextKeyClaims).(*token.Claims)
	return claims, ok
}

// requireDeliverer guards the handlers only couriers may call.
func (s *Service) requireDeliverer(w http.ResponseWriter, r *http.Request) (*token.Claims, bool) {
	claims, ok := s.claimsFromContext(r.Context())
	if !ok {
		s.respondDetail(w, http.StatusUnauthorized, "Missing token")
		return nil, false
	}
	if claims.Role != types.RoleDeliverer {
		s.respondDetail(w, http.StatusForbidden, "Deliverer role required")
		return nil, false
	}
	return claims, true
}
