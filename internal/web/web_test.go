package web

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"tutelliv/internal"
	"tutelliv/internal/client"
	"tutelliv/internal/events"
	"tutelliv/internal/utils"
	"tutelliv/pkg/types"

	"github.com/sirupsen/logrus"
)

func TestSafeNext(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/missions", "/missions"},
		{"/courier/dashboard", "/courier/dashboard"},
		{"", ""},
		{"https://evil.example", ""},
		{"//evil.example", ""},
		{"no-slash", ""},
	}
	for _, tc := range cases {
		if got := safeNext(tc.in); got != tc.want {
			t.Errorf("safeNext(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func sampleSnapshot() Snapshot {
	comment := "Sonner deux fois"
	fee := 5.0
	return Snapshot{
		Missions: []*types.Mission{
			{
				ID:            "m-1",
				BeneficiaryID: "b-1",
				Categories:    []types.MissionCategory{types.CategoryFood, types.CategoryOther},
				CommentsByCategory: map[types.MissionCategory]string{
					types.CategoryFood: "Liste sur le frigo",
				},
				GeneralComment: &comment,
				Status:         types.MissionStatusInProgress,
				CreatedAt:      time.Now(),
			},
			{
				ID:            "m-2",
				BeneficiaryID: "b-1",
				Categories:    []types.MissionCategory{types.CategoryHygiene},
				Status:        types.MissionStatusPending,
				CreatedAt:     time.Now(),
			},
		},
		Beneficiaries: []*types.Beneficiary{
			{
				ID: "b-1", FirstName: "Jeanne", LastName: "Martin",
				Address: "12 rue des Lilas", City: utils.StringPtr("Lyon"),
				PhotoURL: utils.StringPtr("https://photos.example/b-1.jpg"),
			},
		},
		Invoices: []*types.Invoice{
			{
				ID: "inv-1", MissionID: "m-1", Amount: 57.5,
				Status: types.InvoiceStatusPending, DeliveryFee: &fee,
				CreatedAt: time.Now(),
			},
		},
		Stats:    &types.Stats{MissionsInProgress: 1, BeneficiariesActive: 1, InvoicesPending: 1},
		LoadedAt: time.Now(),
	}
}

// Every page template must execute against its page data without
// error; a missing field fails here instead of at request time.
func TestTemplatesRender(t *testing.T) {
	templates, err := loadTemplates()
	if err != nil {
		t.Fatalf("loadTemplates: %v", err)
	}

	snap := sampleSnapshot()
	base := pageBase{Title: "Test", Role: types.RoleMJPM}
	beneficiaries := beneficiaryIndex(snap)

	pages := map[string]any{
		"page.login": LoginPageData{Title: "Connexion", Next: "/missions", Error: "Identifiants invalides"},
		"page.dashboard": DashboardPageData{
			pageBase: base,
			Stats:    snap.Stats,
			Recent:   missionViews(snap, nil),
			Upcoming: missionViews(snap, nil),
		},
		"page.missions": MissionsPageData{pageBase: base, Missions: missionViews(snap, nil)},
		"page.mission-new": MissionFormPageData{
			pageBase:      base,
			Mission:       &types.Mission{},
			Beneficiaries: snap.Beneficiaries,
			Categories:    types.MissionCategories,
		},
		"page.mission-edit": MissionFormPageData{
			pageBase:      base,
			Mission:       snap.Missions[0],
			Beneficiaries: snap.Beneficiaries,
			Categories:    types.MissionCategories,
			FormError:     "Au moins une catégorie est requise",
		},
		"page.beneficiaries":   BeneficiariesPageData{pageBase: base, Beneficiaries: snap.Beneficiaries},
		"page.beneficiary-new": BeneficiaryFormPageData{pageBase: base, Beneficiary: &types.Beneficiary{}, HasPhotos: true},
		"page.beneficiary-detail": BeneficiaryDetailPageData{
			pageBase:    base,
			Beneficiary: snap.Beneficiaries[0],
			Missions:    missionViews(snap, nil),
		},
		"page.invoices": InvoicesPageData{
			pageBase: base,
			Invoices: []InvoiceView{{
				Invoice:     snap.Invoices[0],
				Mission:     snap.Missions[0],
				Beneficiary: beneficiaries["b-1"],
				PDFURL:      "http://127.0.0.1:8001/invoices/inv-1/pdf?token=x",
			}},
		},
		"page.settings": SettingsPageData{pageBase: base, Email: "mjpm@example.com", Name: "Marie", APIBaseURL: "http://127.0.0.1:8001"},
		"page.courier-dashboard": CourierPageData{
			pageBase:   pageBase{Title: "Tournée", Role: types.RoleDeliverer},
			Pending:    missionViews(snap, nil),
			InProgress: missionViews(snap, nil),
			Delivered:  missionViews(snap, nil),
		},
	}

	for name, data := range pages {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
				t.Errorf("execute %s: %v", name, err)
			}
			if buf.Len() == 0 {
				t.Errorf("%s rendered empty", name)
			}
		})
	}
}

type staticSubscriber struct {
	ch chan events.Message
}

func (s *staticSubscriber) Events() <-chan events.Message { return s.ch }
func (s *staticSubscriber) Close()                        {}

func newFakeAPI(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	respond := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(v); err != nil {
			t.Errorf("encode: %v", err)
		}
	}
	mux.HandleFunc("/missions", func(w http.ResponseWriter, r *http.Request) {
		respond(w, []*types.Mission{{ID: "m-1", BeneficiaryID: "b-1", Status: types.MissionStatusPending}})
	})
	mux.HandleFunc("/beneficiaries", func(w http.ResponseWriter, r *http.Request) {
		respond(w, []*types.Beneficiary{{ID: "b-1", FirstName: "Jeanne", LastName: "Martin"}})
	})
	mux.HandleFunc("/invoices", func(w http.ResponseWriter, r *http.Request) {
		respond(w, []*types.Invoice{{ID: "inv-1", MissionID: "m-1", Status: types.InvoiceStatusEditing}})
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		respond(w, &types.Stats{MissionsInProgress: 1})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestRefresher(t *testing.T, baseURL string) *Refresher {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	sub := &staticSubscriber{ch: make(chan events.Message)}
	return NewRefresher(logger, client.New(baseURL), sub, time.Hour)
}

func TestRefresherReload(t *testing.T) {
	srv := newFakeAPI(t)
	r := newTestRefresher(t, srv.URL)
	ctx := context.Background()

	// no token yet, reload is a no-op
	r.Reload(ctx, reloadAll())
	if snap := r.Snapshot(); !snap.LoadedAt.IsZero() {
		t.Fatal("reload without a token must not populate the snapshot")
	}

	r.Adopt("tok")
	r.Reload(ctx, reloadAll())

	snap := r.Snapshot()
	if snap.Err != nil {
		t.Fatalf("unexpected snapshot error: %v", snap.Err)
	}
	if snap.LoadedAt.IsZero() {
		t.Fatal("snapshot not marked loaded")
	}
	if len(snap.Missions) != 1 || len(snap.Beneficiaries) != 1 || len(snap.Invoices) != 1 {
		t.Fatalf("snapshot incomplete: %+v", snap)
	}
	if snap.Stats == nil || snap.Stats.MissionsInProgress != 1 {
		t.Fatalf("stats not loaded: %+v", snap.Stats)
	}
}

func TestRefresherKeepsDataOnFailure(t *testing.T) {
	srv := newFakeAPI(t)
	r := newTestRefresher(t, srv.URL)
	ctx := context.Background()

	r.Adopt("tok")
	r.Reload(ctx, reloadAll())
	if snap := r.Snapshot(); snap.Err != nil || len(snap.Missions) == 0 {
		t.Fatalf("initial load failed: %+v", snap)
	}

	srv.Close()
	r.Reload(ctx, reloadAll())

	snap := r.Snapshot()
	if snap.Err == nil {
		t.Fatal("expected an error after the API went away")
	}
	if len(snap.Missions) == 0 {
		t.Fatal("previous data must survive a failed reload")
	}
}

func TestEnsureLoaded(t *testing.T) {
	srv := newFakeAPI(t)
	r := newTestRefresher(t, srv.URL)
	r.Adopt("tok")

	snap := r.EnsureLoaded(context.Background())
	if snap.LoadedAt.IsZero() {
		t.Fatal("EnsureLoaded must populate a fresh snapshot")
	}

	// second call serves the cache
	again := r.EnsureLoaded(context.Background())
	if !again.LoadedAt.Equal(snap.LoadedAt) {
		t.Error("EnsureLoaded reloaded a populated snapshot")
	}
}

// newTestService wires a full Service against a fake API so handler
// tests can go through the real middleware chain.
func newTestService(t *testing.T, apiURL string) *Service {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &types.Config{
		WebPort:         0,
		ReadTimeoutSec:  1,
		WriteTimeoutSec: 1,
		APIBaseURL:      apiURL,
		CookieMaxAgeSec: 3600,
		CookieHashKey:   base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("h"), 32)),
		CookieBlockKey:  base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("b"), 16)),
	}

	svc, err := New(cfg, logger, client.New(apiURL), newTestRefresher(t, apiURL), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc
}

func sessionCookies(t *testing.T, svc *Service, role types.Role) []*http.Cookie {
	t.Helper()

	encoded, err := svc.cookie.Encode(internal.COOKIE_TOKEN_NAME, "tok")
	if err != nil {
		t.Fatalf("encode cookie: %v", err)
	}
	return []*http.Cookie{
		{Name: internal.COOKIE_TOKEN_NAME, Value: encoded},
		{Name: internal.COOKIE_ROLE_NAME, Value: string(role)},
	}
}

func TestMissionEditGuardedOutsidePending(t *testing.T) {
	var putCalls int

	mux := http.NewServeMux()
	mux.HandleFunc("GET /missions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(&types.Mission{
			ID:            "m-1",
			BeneficiaryID: "b-1",
			Categories:    []types.MissionCategory{types.CategoryFood},
			Status:        types.MissionStatusInProgress,
		})
	})
	mux.HandleFunc("PUT /missions/{id}", func(w http.ResponseWriter, r *http.Request) {
		putCalls++
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	svc := newTestService(t, srv.URL)
	cookies := sessionCookies(t, svc, types.RoleMJPM)

	form := url.Values{}
	form.Set("beneficiary_id", "b-1")
	form.Add("categories", string(types.CategoryFood))

	req := httptest.NewRequest(http.MethodPost, "/missions/m-1/edit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	svc.server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	if putCalls != 0 {
		t.Fatalf("the update must not reach the API, got %d calls", putCalls)
	}
	if !strings.Contains(rec.Body.String(), editGuardMessage) {
		t.Error("form error missing from the rendered page")
	}

	// the edit form itself is gated the same way
	req = httptest.NewRequest(http.MethodGet, "/missions/m-1/edit", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	svc.server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("GET status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/missions?error=") {
		t.Errorf("redirect = %q, want /missions?error=...", loc)
	}
}
