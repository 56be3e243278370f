package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"tutelliv/pkg/types"

	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userOut struct {
	ID    string     `json:"id"`
	Email string     `json:"email"`
	Role  types.Role `json:"role"`
	Name  string     `json:"name"`
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := s.users.UserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			s.respondDetail(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		s.logger.WithError(err).Error("failed to look up user for login")
		s.internalServerError(w)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.respondDetail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	signed, err := s.signer.Issue(user)
	if err != nil {
		s.logger.WithError(err).Error("failed to issue token")
		s.internalServerError(w)
		return
	}

	s.logger.WithFields(map[string]any{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("user logged in")

	s.respondJSON(w, http.StatusOK, map[string]any{
		"token": signed,
		"user": userOut{
			ID:    user.ID,
			Email: user.Email,
			Role:  user.Role,
			Name:  user.Name,
		},
	})
}

func (s *Service) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.claimsFromContext(r.Context())
	if !ok {
		s.respondDetail(w, http.StatusUnauthorized, "Missing token")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"user": userOut{
			ID:    claims.UserID,
			Email: claims.Email,
			Role:  claims.Role,
			Name:  claims.Name,
		},
	})
}

// Tokens are stateless, so logout is client-side cookie clearing; the
// endpoint exists so clients have something to call.
func (s *Service) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
