package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"tutelliv/pkg/types"

	"github.com/alexedwards/flow"
)

func (s *Service) handleListBeneficiaries(w http.ResponseWriter, r *http.Request) {
	beneficiaries, err := s.beneficiaries.Beneficiaries(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to list beneficiaries")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, beneficiaries)
}

func (s *Service) handleGetBeneficiary(w http.ResponseWriter, r *http.Request) {
	beneficiaryID := flow.Param(r.Context(), "id")

	beneficiary, err := s.beneficiaries.Beneficiary(r.Context(), beneficiaryID)
	if err != nil {
		if errors.Is(err, types.ErrBeneficiaryNotFound) {
			s.respondDetail(w, http.StatusNotFound, "Beneficiary not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch beneficiary")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, beneficiary)
}

func (s *Service) handleCreateBeneficiary(w http.ResponseWriter, r *http.Request) {
	var beneficiary types.Beneficiary
	if err := json.NewDecoder(r.Body).Decode(&beneficiary); err != nil {
		s.respondDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	beneficiary.FirstName = strings.TrimSpace(beneficiary.FirstName)
	beneficiary.LastName = strings.TrimSpace(beneficiary.LastName)
	beneficiary.Address = strings.TrimSpace(beneficiary.Address)

	if beneficiary.FirstName == "" || beneficiary.LastName == "" {
		s.respondDetail(w, http.StatusBadRequest, "First and last name are required")
		return
	}
	if beneficiary.Address == "" {
		s.respondDetail(w, http.StatusBadRequest, "Address is required")
		return
	}

	beneficiary.IsActive = true

	if err := s.beneficiaries.CreateBeneficiary(r.Context(), &beneficiary); err != nil {
		s.logger.WithError(err).Error("failed to create beneficiary")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, &beneficiary)
}
