package web

import (
	"errors"
	"net/http"

	"tutelliv/internal/workflow"
	"tutelliv/pkg/types"

	"github.com/alexedwards/flow"
)

type CourierPageData struct {
	pageBase
	Pending    []MissionView
	InProgress []MissionView
	Delivered  []MissionView
}

func (s *Service) handleCourierDashboard(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshotFor(r)

	byStatus := func(status types.MissionStatus) []MissionView {
		return missionViews(snap, func(m *types.Mission) bool { return m.Status == status })
	}

	data := CourierPageData{
		pageBase:   s.base(r, "Tournée", snap),
		Pending:    byStatus(types.MissionStatusPending),
		InProgress: byStatus(types.MissionStatusInProgress),
		Delivered:  byStatus(types.MissionStatusDelivered),
	}
	if len(data.Delivered) > 5 {
		data.Delivered = data.Delivered[:5]
	}

	s.render(w, "page.courier-dashboard", data)
}

func (s *Service) handlePostAccept(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	missionID := flow.Param(r.Context(), "id")
	api := s.api.WithToken(session.Token)

	mission, err := api.Mission(r.Context(), missionID)
	if err != nil {
		redirectWithError(w, r, "/courier/dashboard", userMessage(err))
		return
	}

	if _, err := workflow.Accept(r.Context(), api, mission); err != nil {
		redirectWithError(w, r, "/courier/dashboard", acceptMessage(err))
		return
	}

	s.refresher.Kick()
	redirectWithNotice(w, r, "/courier/dashboard", "Mission acceptée")
}

type deliverForm struct {
	Amounts     map[string]string `form:"amounts"`
	Notes       map[string]string `form:"notes"`
	DeliveryFee string            `form:"delivery_fee"`
	Note        string            `form:"note"`
}

func (s *Service) handlePostDeliver(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	missionID := flow.Param(r.Context(), "id")
	api := s.api.WithToken(session.Token)

	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/courier/dashboard", "Formulaire invalide")
		return
	}

	var form deliverForm
	if err := decoder.Decode(&form, r.Form); err != nil {
		s.logger.WithError(err).Error("failed to decode delivery form")
		redirectWithError(w, r, "/courier/dashboard", "Formulaire invalide")
		return
	}

	mission, err := api.Mission(r.Context(), missionID)
	if err != nil {
		redirectWithError(w, r, "/courier/dashboard", userMessage(err))
		return
	}

	// one line per mission category, absent inputs validate as empty
	lines := make(map[types.MissionCategory]workflow.LineInput, len(mission.Categories))
	for _, category := range mission.Categories {
		lines[category] = workflow.LineInput{
			Amount: form.Amounts[string(category)],
			Note:   form.Notes[string(category)],
		}
	}

	fin, err := workflow.ParseFinalization(lines, form.DeliveryFee, form.Note)
	if err != nil {
		redirectWithError(w, r, "/courier/dashboard", acceptMessage(err))
		return
	}

	_, finalized, err := workflow.Deliver(r.Context(), api, mission, fin)
	if err != nil {
		redirectWithError(w, r, "/courier/dashboard", acceptMessage(err))
		return
	}

	notice := "Mission livrée, facture transmise"
	if !finalized {
		s.logger.WithField("mission_id", missionID).Warn("delivered mission has no invoice")
		notice = "Mission livrée (aucune facture liée)"
	}

	s.refresher.Kick()
	redirectWithNotice(w, r, "/courier/dashboard", notice)
}

// acceptMessage keeps validation messages verbatim and folds transport
// failures into the generic one.
func acceptMessage(err error) string {
	var validation *workflow.ValidationError
	if errors.As(err, &validation) {
		return validation.Error()
	}
	return userMessage(err)
}
