package api

import (
	"encoding/json"
	"net/http"
)

func (s *Service) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("failed to encode response body")
	}
}

// respondDetail writes the {detail} error shape every consumer of this
// API unwraps.
func (s *Service) respondDetail(w http.ResponseWriter, status int, detail string) {
	s.respondJSON(w, status, map[string]string{"detail": detail})
}

func (s *Service) internalServerError(w http.ResponseWriter) {
	s.respondDetail(w, http.StatusInternalServerError, "internal server error")
}
