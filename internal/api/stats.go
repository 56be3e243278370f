package api

import (
	"net/http"
	"time"

	"tutelliv/pkg/types"
)

const activeBeneficiaryWindow = 30 * 24 * time.Hour

func (s *Service) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	missionsInProgress, err := s.missions.MissionsInProgressCount(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to count missions in progress")
		s.internalServerError(w)
		return
	}

	beneficiariesActive, err := s.beneficiaries.ActiveBeneficiaryCount(ctx, activeBeneficiaryWindow)
	if err != nil {
		s.logger.WithError(err).Error("failed to count active beneficiaries")
		s.internalServerError(w)
		return
	}

	invoicesPending, err := s.invoices.PendingInvoiceCount(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to count pending invoices")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, types.Stats{
		MissionsInProgress:  missionsInProgress,
		BeneficiariesActive: beneficiariesActive,
		InvoicesPending:     invoicesPending,
		GeneratedAt:         time.Now().UTC(),
	})
}
