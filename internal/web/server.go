// Package web serves the TutelLiv dashboard: server-rendered pages over
// the REST API, with a role gate splitting the management and courier
// surfaces.
package web

import (
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"tutelliv/internal/client"
	"tutelliv/internal/storage"
	"tutelliv/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

//go:embed templates static
var uiFS embed.FS
var decoder = form.NewDecoder()

type Service struct {
	logger    *logrus.Logger
	config    *types.Config
	api       *client.Client
	refresher *Refresher
	photos    *storage.PhotoStorage
	templates *template.Template

	cookie *securecookie.SecureCookie

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	api *client.Client,
	refresher *Refresher,
	photos *storage.PhotoStorage,
) (*Service, error) {
	mux := flow.New()

	hashKey, _ := base64.StdEncoding.DecodeString(config.CookieHashKey)
	blockKey, _ := base64.StdEncoding.DecodeString(config.CookieBlockKey)

	s := &Service{
		logger:    logger,
		config:    config,
		api:       api,
		refresher: refresher,
		photos:    photos,
		cookie:    securecookie.New(hashKey, blockKey),

		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.WebPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = templates

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)
	r.Use(s.ResolveSession)
	r.Use(s.Gate)

	r.HandleFunc("/login", s.handleGetLogin, http.MethodGet)
	r.HandleFunc("/login", s.handlePostLogin, http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout, http.MethodPost)

	r.HandleFunc("/", s.handleRoot, http.MethodGet)
	r.HandleFunc("/dashboard", s.handleDashboard, http.MethodGet)

	r.HandleFunc("/missions", s.handleMissions, http.MethodGet)
	r.HandleFunc("/missions/new", s.handleGetMissionNew, http.MethodGet)
	r.HandleFunc("/missions", s.handlePostMission, http.MethodPost)
	r.HandleFunc("/missions/:id/edit", s.handleGetMissionEdit, http.MethodGet)
	r.HandleFunc("/missions/:id/edit", s.handlePostMissionEdit, http.MethodPost)
	r.HandleFunc("/missions/:id/delete", s.handlePostMissionDelete, http.MethodPost)

	r.HandleFunc("/beneficiaries", s.handleBeneficiaries, http.MethodGet)
	r.HandleFunc("/beneficiaries/new", s.handleGetBeneficiaryNew, http.MethodGet)
	r.HandleFunc("/beneficiaries", s.handlePostBeneficiary, http.MethodPost)
	r.HandleFunc("/beneficiaries/:id", s.handleBeneficiaryDetail, http.MethodGet)

	r.HandleFunc("/invoices", s.handleInvoices, http.MethodGet)
	r.HandleFunc("/settings", s.handleSettings, http.MethodGet)

	r.HandleFunc("/courier/dashboard", s.handleCourierDashboard, http.MethodGet)
	r.HandleFunc("/courier/missions/:id/accept", s.handlePostAccept, http.MethodPost)
	r.HandleFunc("/courier/missions/:id/deliver", s.handlePostDeliver, http.MethodPost)

	staticRoot, err := fs.Sub(uiFS, "static")
	if err != nil {
		s.logger.WithError(err).Fatal("failed to mount static assets")
	}
	r.Handle("/static/...", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))), http.MethodGet)
}

var categoryLabels = map[types.MissionCategory]string{
	types.CategoryFood:           "Courses alimentaires",
	types.CategoryHygiene:        "Hygiène",
	types.CategoryTobaccoMandate: "Mandat tabac",
	types.CategoryCashDelivery:   "Remise d'espèces",
	types.CategoryOther:          "Autre",
}

var missionStatusLabels = map[types.MissionStatus]string{
	types.MissionStatusPending:    "En attente",
	types.MissionStatusInProgress: "En cours",
	types.MissionStatusDelivered:  "Livrée",
	types.MissionStatusCanceled:   "Annulée",
}

var invoiceStatusLabels = map[types.InvoiceStatus]string{
	types.InvoiceStatusEditing: "En édition",
	types.InvoiceStatusPending: "À payer",
	types.InvoiceStatusPaid:    "Payée",
}

func loadTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"money": func(amount float64) string {
			return fmt.Sprintf("%.2f €", amount)
		},
		"categoryLabel": func(c types.MissionCategory) string {
			if label, ok := categoryLabels[c]; ok {
				return label
			}
			return string(c)
		},
		"statusLabel": func(s types.MissionStatus) string {
			if label, ok := missionStatusLabels[s]; ok {
				return label
			}
			return string(s)
		},
		"invoiceStatusLabel": func(s types.InvoiceStatus) string {
			if label, ok := invoiceStatusLabels[s.DisplayBucket()]; ok {
				return label
			}
			return string(s)
		},
		"shortDate": func(t time.Time) string {
			return t.Format("02/01/2006")
		},
	}

	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(uiFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		data, err := fs.ReadFile(uiFS, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}

		if _, err := t.Parse(string(data)); err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}
