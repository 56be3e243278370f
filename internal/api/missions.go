package api

import (
	"encoding/json"
	"errors"
	"maps"
	"net/http"
	"slices"
	"time"

	"tutelliv/internal/events"
	"tutelliv/internal/workflow"
	"tutelliv/pkg/types"

	"github.com/alexedwards/flow"
)

// missionRequest is the write payload for both create and update. The
// legacy single category/comment shape is accepted and folded in.
type missionRequest struct {
	BeneficiaryID      string                           `json:"beneficiary_id"`
	Categories         []types.MissionCategory          `json:"categories"`
	CommentsByCategory map[types.MissionCategory]string `json:"comments_by_category"`
	GeneralComment     *string                          `json:"general_comment"`
	Category           *types.MissionCategory           `json:"category"`
	Comment            *string                          `json:"comment"`
	Status             types.MissionStatus              `json:"status"`
	CalendarStart      *time.Time                       `json:"calendar_start"`
	CalendarEnd        *time.Time                       `json:"calendar_end"`
}

func (req *missionRequest) toMission() *types.Mission {
	mission := &types.Mission{
		BeneficiaryID:      req.BeneficiaryID,
		Categories:         req.Categories,
		CommentsByCategory: req.CommentsByCategory,
		GeneralComment:     req.GeneralComment,
		Category:           req.Category,
		Comment:            req.Comment,
		Status:             req.Status,
		CalendarStart:      req.CalendarStart,
		CalendarEnd:        req.CalendarEnd,
	}
	mission.Normalize()
	return mission
}

// missionOut re-emits the legacy fields so older consumers keep working.
func missionOut(mission *types.Mission) *types.Mission {
	out := *mission
	out.Denormalize()
	return &out
}

func (s *Service) handleListMissions(w http.ResponseWriter, r *http.Request) {
	missions, err := s.missions.Missions(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to list missions")
		s.internalServerError(w)
		return
	}

	out := make([]*types.Mission, 0, len(missions))
	for _, mission := range missions {
		out = append(out, missionOut(mission))
	}

	s.respondJSON(w, http.StatusOK, out)
}

func (s *Service) handleGetMission(w http.ResponseWriter, r *http.Request) {
	missionID := flow.Param(r.Context(), "id")

	mission, err := s.missions.Mission(r.Context(), missionID)
	if err != nil {
		if errors.Is(err, types.ErrMissionNotFound) {
			s.respondDetail(w, http.StatusNotFound, "Mission not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch mission")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, missionOut(mission))
}

func (s *Service) handleCreateMission(w http.ResponseWriter, r *http.Request) {
	var req missionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	mission := req.toMission()
	if mission.Status == "" {
		mission.Status = types.MissionStatusPending
	}

	if err := workflow.ValidateCategories(mission.Categories); err != nil {
		s.respondDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	if mission.BeneficiaryID == "" {
		s.respondDetail(w, http.StatusBadRequest, "A beneficiary is required")
		return
	}

	if err := s.missions.CreateMission(r.Context(), mission); err != nil {
		s.logger.WithError(err).Error("failed to create mission")
		s.internalServerError(w)
		return
	}

	// Every mission gets a linked invoice, parked in editing until the
	// courier finalizes it at delivery.
	invoice := &types.Invoice{
		MissionID: mission.ID,
		Amount:    0,
		Status:    types.InvoiceStatusEditing,
	}
	if err := s.invoices.CreateInvoice(r.Context(), invoice); err != nil {
		s.logger.WithError(err).WithField("mission_id", mission.ID).Error("failed to create linked invoice")
		s.internalServerError(w)
		return
	}

	s.publish(events.TypeMissionCreated, missionOut(mission))

	s.respondJSON(w, http.StatusOK, missionOut(mission))
}

func (s *Service) handleUpdateMission(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.claimsFromContext(r.Context())
	if !ok {
		s.respondDetail(w, http.StatusUnauthorized, "Missing token")
		return
	}

	missionID := flow.Param(r.Context(), "id")

	current, err := s.missions.Mission(r.Context(), missionID)
	if err != nil {
		if errors.Is(err, types.ErrMissionNotFound) {
			s.respondDetail(w, http.StatusNotFound, "Mission not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch mission for update")
		s.internalServerError(w)
		return
	}

	var req missionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	update := req.toMission()
	if update.Status == "" {
		update.Status = current.Status
	}

	statusChanged := update.Status != current.Status
	if statusChanged {
		if claims.Role != types.RoleDeliverer {
			s.respondDetail(w, http.StatusForbidden, "Only deliverers can change a mission's status")
			return
		}
		if !workflow.CanTransition(current.Status, update.Status) {
			s.respondDetail(w, http.StatusConflict, "Illegal status transition")
			return
		}
	}

	if contentChanged(current, update) {
		if err := workflow.ValidateEdit(current); err != nil {
			s.respondDetail(w, http.StatusConflict, "Only pending missions can be edited")
			return
		}
	}

	if err := workflow.ValidateCategories(update.Categories); err != nil {
		s.respondDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	update.ID = current.ID
	update.CreatedAt = current.CreatedAt

	if err := s.missions.UpdateMission(r.Context(), missionID, update); err != nil {
		s.logger.WithError(err).Error("failed to update mission")
		s.internalServerError(w)
		return
	}

	// Delivery flips the linked invoice to pending (awaiting payment)
	// even before the courier's detailed finalization lands.
	if statusChanged && update.Status == types.MissionStatusDelivered {
		s.bumpInvoiceToPending(w, r, missionID)
	}

	s.publish(events.TypeMissionUpdated, missionOut(update))

	s.respondJSON(w, http.StatusOK, missionOut(update))
}

func (s *Service) bumpInvoiceToPending(_ http.ResponseWriter, r *http.Request, missionID string) {
	invoice, err := s.invoices.InvoiceByMission(r.Context(), missionID)
	if err != nil {
		// A mission without an invoice is a degraded path, not a failure.
		if !errors.Is(err, types.ErrInvoiceNotFound) {
			s.logger.WithError(err).WithField("mission_id", missionID).Error("failed to locate invoice for delivered mission")
		} else {
			s.logger.WithField("mission_id", missionID).Warn("delivered mission has no invoice")
		}
		return
	}

	invoice.Status = types.InvoiceStatusPending
	if err := s.invoices.UpdateInvoice(r.Context(), invoice.ID, invoice); err != nil {
		s.logger.WithError(err).WithField("invoice_id", invoice.ID).Error("failed to bump invoice to pending")
		return
	}

	s.publish(events.TypeInvoiceUpdated, invoice)
}

func (s *Service) handleDeleteMission(w http.ResponseWriter, r *http.Request) {
	missionID := flow.Param(r.Context(), "id")

	if _, err := s.missions.Mission(r.Context(), missionID); err != nil {
		if errors.Is(err, types.ErrMissionNotFound) {
			s.respondDetail(w, http.StatusNotFound, "Mission not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch mission for delete")
		s.internalServerError(w)
		return
	}

	// Linked invoice goes with the mission.
	if invoice, err := s.invoices.InvoiceByMission(r.Context(), missionID); err == nil {
		if err := s.invoices.DeleteInvoice(r.Context(), invoice.ID); err != nil {
			s.logger.WithError(err).WithField("invoice_id", invoice.ID).Error("failed to delete linked invoice")
		}
	}

	if err := s.missions.DeleteMission(r.Context(), missionID); err != nil {
		s.logger.WithError(err).Error("failed to delete mission")
		s.internalServerError(w)
		return
	}

	s.publish(events.TypeMissionDeleted, map[string]string{"id": missionID})

	s.respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func contentChanged(current, update *types.Mission) bool {
	return !slices.Equal(current.Categories, update.Categories) ||
		!maps.Equal(current.CommentsByCategory, update.CommentsByCategory) ||
		!equalStringPtr(current.GeneralComment, update.GeneralComment)
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
