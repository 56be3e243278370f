package web

import (
	"net/http"
	"sort"

	"tutelliv/internal/workflow"
	"tutelliv/pkg/types"

	"github.com/alexedwards/flow"
)

const editGuardMessage = "Seules les missions en attente peuvent être modifiées"

// MissionView pairs a mission with its resolved beneficiary for the
// list templates.
type MissionView struct {
	Mission     *types.Mission
	Beneficiary *types.Beneficiary
}

// InvoiceView pairs an invoice with its mission context and download
// link.
type InvoiceView struct {
	Invoice     *types.Invoice
	Mission     *types.Mission
	Beneficiary *types.Beneficiary
	PDFURL      string
}

func beneficiaryIndex(snap Snapshot) map[string]*types.Beneficiary {
	index := make(map[string]*types.Beneficiary, len(snap.Beneficiaries))
	for _, b := range snap.Beneficiaries {
		index[b.ID] = b
	}
	return index
}

func missionIndex(snap Snapshot) map[string]*types.Mission {
	index := make(map[string]*types.Mission, len(snap.Missions))
	for _, m := range snap.Missions {
		index[m.ID] = m
	}
	return index
}

func missionViews(snap Snapshot, keep func(*types.Mission) bool) []MissionView {
	index := beneficiaryIndex(snap)

	views := make([]MissionView, 0, len(snap.Missions))
	for _, mission := range snap.Missions {
		if keep != nil && !keep(mission) {
			continue
		}
		views = append(views, MissionView{Mission: mission, Beneficiary: index[mission.BeneficiaryID]})
	}

	sort.Slice(views, func(i, j int) bool {
		return views[i].Mission.CreatedAt.After(views[j].Mission.CreatedAt)
	})
	return views
}

func (s *Service) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

type DashboardPageData struct {
	pageBase
	Stats    *types.Stats
	Recent   []MissionView
	Upcoming []MissionView
}

func (s *Service) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshotFor(r)

	open := func(m *types.Mission) bool {
		return m.Status == types.MissionStatusPending || m.Status == types.MissionStatusInProgress
	}

	data := DashboardPageData{
		pageBase: s.base(r, "Tableau de bord", snap),
		Stats:    snap.Stats,
		Recent:   missionViews(snap, nil),
		Upcoming: missionViews(snap, open),
	}
	if len(data.Recent) > 8 {
		data.Recent = data.Recent[:8]
	}

	s.render(w, "page.dashboard", data)
}

type MissionsPageData struct {
	pageBase
	Missions []MissionView
}

func (s *Service) handleMissions(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshotFor(r)

	data := MissionsPageData{
		pageBase: s.base(r, "Missions", snap),
		Missions: missionViews(snap, nil),
	}

	s.render(w, "page.missions", data)
}

type MissionFormPageData struct {
	pageBase
	Mission       *types.Mission
	Beneficiaries []*types.Beneficiary
	Categories    []types.MissionCategory
	FormError     string
}

func (s *Service) handleGetMissionNew(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshotFor(r)

	data := MissionFormPageData{
		pageBase:      s.base(r, "Nouvelle mission", snap),
		Mission:       &types.Mission{},
		Beneficiaries: snap.Beneficiaries,
		Categories:    types.MissionCategories,
	}

	s.render(w, "page.mission-new", data)
}

func (s *Service) handlePostMission(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())

	mission, formErr := s.missionFromForm(r)
	if formErr == "" {
		if _, err := s.api.WithToken(session.Token).CreateMission(r.Context(), mission); err != nil {
			formErr = userMessage(err)
		}
	}

	if formErr != "" {
		snap := s.refresher.Snapshot()
		data := MissionFormPageData{
			pageBase:      s.base(r, "Nouvelle mission", snap),
			Mission:       mission,
			Beneficiaries: snap.Beneficiaries,
			Categories:    types.MissionCategories,
			FormError:     formErr,
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, "page.mission-new", data)
		return
	}

	s.refresher.Kick()
	redirectWithNotice(w, r, "/missions", "Mission créée")
}

func (s *Service) handleGetMissionEdit(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	missionID := flow.Param(r.Context(), "id")

	mission, err := s.api.WithToken(session.Token).Mission(r.Context(), missionID)
	if err != nil {
		redirectWithError(w, r, "/missions", userMessage(err))
		return
	}
	if err := workflow.ValidateEdit(mission); err != nil {
		redirectWithError(w, r, "/missions", editGuardMessage)
		return
	}

	snap := s.refresher.EnsureLoaded(r.Context())
	data := MissionFormPageData{
		pageBase:      s.base(r, "Modifier la mission", snap),
		Mission:       mission,
		Beneficiaries: snap.Beneficiaries,
		Categories:    types.MissionCategories,
	}

	s.render(w, "page.mission-edit", data)
}

func (s *Service) handlePostMissionEdit(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	missionID := flow.Param(r.Context(), "id")
	api := s.api.WithToken(session.Token)

	current, err := api.Mission(r.Context(), missionID)
	if err != nil {
		redirectWithError(w, r, "/missions", userMessage(err))
		return
	}

	mission, formErr := s.missionFromForm(r)
	if formErr == "" {
		// reject stale edits locally, before the mutation goes out
		if err := workflow.ValidateEdit(current); err != nil {
			formErr = editGuardMessage
		}
	}
	if formErr == "" {
		mission.ID = current.ID
		mission.Status = current.Status
		if _, err := api.UpdateMission(r.Context(), mission); err != nil {
			formErr = userMessage(err)
		}
	}

	if formErr != "" {
		snap := s.refresher.Snapshot()
		mission.ID = missionID
		data := MissionFormPageData{
			pageBase:      s.base(r, "Modifier la mission", snap),
			Mission:       mission,
			Beneficiaries: snap.Beneficiaries,
			Categories:    types.MissionCategories,
			FormError:     formErr,
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, "page.mission-edit", data)
		return
	}

	s.refresher.Kick()
	redirectWithNotice(w, r, "/missions", "Mission mise à jour")
}

func (s *Service) handlePostMissionDelete(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	missionID := flow.Param(r.Context(), "id")

	if err := s.api.WithToken(session.Token).DeleteMission(r.Context(), missionID); err != nil {
		redirectWithError(w, r, "/missions", userMessage(err))
		return
	}

	s.refresher.Kick()
	redirectWithNotice(w, r, "/missions", "Mission supprimée")
}

type BeneficiariesPageData struct {
	pageBase
	Beneficiaries []*types.Beneficiary
}

func (s *Service) handleBeneficiaries(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshotFor(r)

	data := BeneficiariesPageData{
		pageBase:      s.base(r, "Bénéficiaires", snap),
		Beneficiaries: snap.Beneficiaries,
	}

	s.render(w, "page.beneficiaries", data)
}

type BeneficiaryFormPageData struct {
	pageBase
	Beneficiary *types.Beneficiary
	FormError   string
	HasPhotos   bool
}

func (s *Service) handleGetBeneficiaryNew(w http.ResponseWriter, r *http.Request) {
	snap := s.refresher.EnsureLoaded(r.Context())

	data := BeneficiaryFormPageData{
		pageBase:    s.base(r, "Nouveau bénéficiaire", snap),
		Beneficiary: &types.Beneficiary{},
		HasPhotos:   s.photos != nil,
	}

	s.render(w, "page.beneficiary-new", data)
}

type BeneficiaryDetailPageData struct {
	pageBase
	Beneficiary *types.Beneficiary
	Missions    []MissionView
}

func (s *Service) handleBeneficiaryDetail(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	beneficiaryID := flow.Param(r.Context(), "id")

	beneficiary, err := s.api.WithToken(session.Token).Beneficiary(r.Context(), beneficiaryID)
	if err != nil {
		redirectWithError(w, r, "/beneficiaries", userMessage(err))
		return
	}

	snap := s.refresher.EnsureLoaded(r.Context())
	ours := func(m *types.Mission) bool { return m.BeneficiaryID == beneficiaryID }

	data := BeneficiaryDetailPageData{
		pageBase:    s.base(r, beneficiary.FullName(), snap),
		Beneficiary: beneficiary,
		Missions:    missionViews(snap, ours),
	}

	s.render(w, "page.beneficiary-detail", data)
}

type InvoicesPageData struct {
	pageBase
	Invoices []InvoiceView
}

func (s *Service) handleInvoices(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	snap := s.snapshotFor(r)

	missions := missionIndex(snap)
	beneficiaries := beneficiaryIndex(snap)
	api := s.api.WithToken(session.Token)

	views := make([]InvoiceView, 0, len(snap.Invoices))
	for _, invoice := range snap.Invoices {
		view := InvoiceView{
			Invoice: invoice,
			Mission: missions[invoice.MissionID],
			PDFURL:  api.InvoicePDFURL(invoice.ID),
		}
		if view.Mission != nil {
			view.Beneficiary = beneficiaries[view.Mission.BeneficiaryID]
		}
		views = append(views, view)
	}
	sort.Slice(views, func(i, j int) bool {
		return views[i].Invoice.CreatedAt.After(views[j].Invoice.CreatedAt)
	})

	data := InvoicesPageData{
		pageBase: s.base(r, "Factures", snap),
		Invoices: views,
	}

	s.render(w, "page.invoices", data)
}

type SettingsPageData struct {
	pageBase
	Email      string
	Name       string
	APIBaseURL string
}

func (s *Service) handleSettings(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	snap := s.refresher.EnsureLoaded(r.Context())

	data := SettingsPageData{
		pageBase:   s.base(r, "Paramètres", snap),
		APIBaseURL: s.config.APIBaseURL,
	}
	if user, err := s.api.WithToken(session.Token).Me(r.Context()); err == nil {
		data.Email = user.Email
		data.Name = user.Name
	}

	s.render(w, "page.settings", data)
}
