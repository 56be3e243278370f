package web

import (
	"net/http"
	"net/url"

	"tutelliv/pkg/types"
)

// Banner is the dismissible error strip rendered above page content.
type Banner struct {
	Message    string
	RetryURL   string
	DismissURL string
}

type pageBase struct {
	Title   string
	Role    types.Role
	Notice  string
	Banner  *Banner
	Loading bool
}

// base assembles the chrome every page shares: role for the nav, a
// banner when the snapshot is in an error state or the previous action
// redirected with ?error=, and the loading flag for a never-populated
// snapshot.
func (s *Service) base(r *http.Request, title string, snap Snapshot) pageBase {
	b := pageBase{
		Title:  title,
		Notice: r.URL.Query().Get("notice"),
	}
	if session := sessionFromContext(r.Context()); session != nil {
		b.Role = session.Role
	}

	path := r.URL.Path

	if msg := r.URL.Query().Get("error"); msg != "" {
		b.Banner = &Banner{Message: msg, DismissURL: path, RetryURL: path}
		return b
	}

	if snap.Err != nil {
		b.Banner = &Banner{
			Message:    "Impossible de charger les données: " + snap.Err.Error(),
			RetryURL:   path + "?refresh=1",
			DismissURL: path,
		}
	}
	b.Loading = snap.LoadedAt.IsZero() && snap.Err == nil

	return b
}

func (s *Service) render(w http.ResponseWriter, templateName string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, templateName, data); err != nil {
		s.logger.WithError(err).WithField("template", templateName).Error("failed to render page")
		s.internalServerError(w)
	}
}

func (s *Service) internalServerError(w http.ResponseWriter) {
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// snapshotFor serves the cached snapshot, reloading synchronously for
// first view or an explicit ?refresh=1.
func (s *Service) snapshotFor(r *http.Request) Snapshot {
	if r.URL.Query().Get("refresh") == "1" {
		s.refresher.Reload(r.Context(), reloadAll())
		return s.refresher.Snapshot()
	}
	return s.refresher.EnsureLoaded(r.Context())
}

func redirectWithError(w http.ResponseWriter, r *http.Request, path, msg string) {
	v := url.Values{}
	v.Set("error", msg)
	http.Redirect(w, r, path+"?"+v.Encode(), http.StatusSeeOther)
}

func redirectWithNotice(w http.ResponseWriter, r *http.Request, path, notice string) {
	v := url.Values{}
	v.Set("notice", notice)
	http.Redirect(w, r, path+"?"+v.Encode(), http.StatusSeeOther)
}
