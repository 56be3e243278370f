// Package api implements the TutelLiv REST API: authentication,
// beneficiary/mission/invoice CRUD, dashboard stats, invoice PDFs and the
// SSE change feed.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"tutelliv/internal/events"
	"tutelliv/internal/token"
	"tutelliv/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/sirupsen/logrus"
)

// Store interfaces are the slices of internal/store the handlers touch,
// narrow enough to fake in tests.

type UserStore interface {
	UserByEmail(ctx context.Context, email string) (*types.User, error)
}

type BeneficiaryStore interface {
	Beneficiary(ctx context.Context, beneficiaryID string) (*types.Beneficiary, error)
	Beneficiaries(ctx context.Context) ([]*types.Beneficiary, error)
	CreateBeneficiary(ctx context.Context, beneficiary *types.Beneficiary) error
	ActiveBeneficiaryCount(ctx context.Context, window time.Duration) (int, error)
}

type MissionStore interface {
	Mission(ctx context.Context, missionID string) (*types.Mission, error)
	Missions(ctx context.Context) ([]*types.Mission, error)
	CreateMission(ctx context.Context, mission *types.Mission) error
	UpdateMission(ctx context.Context, missionID string, mission *types.Mission) error
	DeleteMission(ctx context.Context, missionID string) error
	MissionsInProgressCount(ctx context.Context) (int, error)
}

type InvoiceStore interface {
	Invoice(ctx context.Context, invoiceID string) (*types.Invoice, error)
	InvoiceByMission(ctx context.Context, missionID string) (*types.Invoice, error)
	Invoices(ctx context.Context) ([]*types.Invoice, error)
	CreateInvoice(ctx context.Context, invoice *types.Invoice) error
	UpdateInvoice(ctx context.Context, invoiceID string, invoice *types.Invoice) error
	DeleteInvoice(ctx context.Context, invoiceID string) error
	PendingInvoiceCount(ctx context.Context) (int, error)
}

type Service struct {
	logger *logrus.Logger
	config *types.Config
	signer *token.Signer
	hub    *events.Hub

	users         UserStore
	beneficiaries BeneficiaryStore
	missions      MissionStore
	invoices      InvoiceStore

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	signer *token.Signer,
	hub *events.Hub,
	users UserStore,
	beneficiaries BeneficiaryStore,
	missions MissionStore,
	invoices InvoiceStore,
) *Service {
	mux := flow.New()

	s := &Service{
		logger: logger,
		config: config,
		signer: signer,
		hub:    hub,

		users:         users,
		beneficiaries: beneficiaries,
		missions:      missions,
		invoices:      invoices,

		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.APIPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/health", s.handleHealth, http.MethodGet)
	r.HandleFunc("/auth/login", s.handleLogin, http.MethodPost)
	r.HandleFunc("/auth/logout", s.handleLogout, http.MethodPost)
	r.HandleFunc("/estimate", s.handleEstimate, http.MethodPost)

	// The change feed has no auth of its own: it carries ids, not
	// entity contents, and browsers cannot set headers on EventSource.
	r.HandleFunc("/events", s.handleEvents, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/auth/me", s.handleMe, http.MethodGet)
		r.HandleFunc("/stats", s.handleStats, http.MethodGet)

		r.HandleFunc("/beneficiaries", s.handleListBeneficiaries, http.MethodGet)
		r.HandleFunc("/beneficiaries", s.handleCreateBeneficiary, http.MethodPost)
		r.HandleFunc("/beneficiaries/:id", s.handleGetBeneficiary, http.MethodGet)

		r.HandleFunc("/missions", s.handleListMissions, http.MethodGet)
		r.HandleFunc("/missions", s.handleCreateMission, http.MethodPost)
		r.HandleFunc("/missions/:id", s.handleGetMission, http.MethodGet)
		r.HandleFunc("/missions/:id", s.handleUpdateMission, http.MethodPut)
		r.HandleFunc("/missions/:id", s.handleDeleteMission, http.MethodDelete)

		r.HandleFunc("/invoices", s.handleListInvoices, http.MethodGet)
		r.HandleFunc("/invoices/:id", s.handleGetInvoice, http.MethodGet)
		r.HandleFunc("/invoices/:id", s.handleUpdateInvoice, http.MethodPut)
		r.HandleFunc("/invoices/:id", s.handleDeleteInvoice, http.MethodDelete)
		r.HandleFunc("/invoices/:id/pdf", s.handleInvoicePDF, http.MethodGet)
	})
}

// Handler exposes the router for tests.
func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) publish(eventType string, payload any) {
	msg, err := events.NewMessage(eventType, payload)
	if err != nil {
		s.logger.WithError(err).WithField("event_type", eventType).Error("failed to encode event")
		return
	}
	s.hub.Publish(msg)
}
