package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tutelliv/pkg/types"
)

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]*types.Mission{})
	}))
	defer srv.Close()

	c := New(srv.URL).WithToken("abc123")
	if _, err := c.Missions(context.Background()); err != nil {
		t.Fatalf("Missions: %v", err)
	}
	if gotAuth != "Bearer abc123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer abc123")
	}
}

func TestClientNoTokenNoHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	if err := New(srv.URL).Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("unexpected Authorization header %q", gotAuth)
	}
}

func TestClientUnwrapsDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"detail":"only pending missions can be edited"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).UpdateMission(context.Background(), &types.Mission{ID: "m-1"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusConflict {
		t.Errorf("StatusCode = %d, want 409", apiErr.StatusCode)
	}
	if apiErr.Detail != "only pending missions can be edited" {
		t.Errorf("Detail = %q", apiErr.Detail)
	}
}

func TestClientFallsBackToStatusLine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>nope</html>"))
	}))
	defer srv.Close()

	err := New(srv.URL).Health(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Detail != "502 Bad Gateway" {
		t.Errorf("Detail = %q, want status line", apiErr.Detail)
	}
}

func TestClientNormalizesLegacyMissionShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"m-1","beneficiary_id":"b-1","category":"FOOD","comment":"ring twice","status":"pending","created_at":"2026-01-01T00:00:00Z"}]`))
	}))
	defer srv.Close()

	missions, err := New(srv.URL).Missions(context.Background())
	if err != nil {
		t.Fatalf("Missions: %v", err)
	}
	if len(missions) != 1 {
		t.Fatalf("got %d missions", len(missions))
	}

	m := missions[0]
	if len(m.Categories) != 1 || m.Categories[0] != types.CategoryFood {
		t.Errorf("Categories = %v, want [FOOD]", m.Categories)
	}
	if m.GeneralComment == nil || *m.GeneralComment != "ring twice" {
		t.Errorf("GeneralComment = %v, want legacy comment folded in", m.GeneralComment)
	}
	if m.Category != nil || m.Comment != nil {
		t.Error("legacy fields should be cleared after normalization")
	}
}

func TestInvoiceByMission(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]*types.Invoice{
			{ID: "inv-1", MissionID: "m-1"},
			{ID: "inv-2", MissionID: "m-2"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)

	invoice, err := c.InvoiceByMission(context.Background(), "m-2")
	if err != nil {
		t.Fatalf("InvoiceByMission: %v", err)
	}
	if invoice.ID != "inv-2" {
		t.Errorf("ID = %q, want inv-2", invoice.ID)
	}

	if _, err := c.InvoiceByMission(context.Background(), "m-404"); !errors.Is(err, types.ErrInvoiceNotFound) {
		t.Errorf("expected ErrInvoiceNotFound, got %v", err)
	}
}

func TestInvoicePDFURL(t *testing.T) {
	c := New("http://api.local").WithToken("tok en")
	got := c.InvoicePDFURL("inv-1")
	want := "http://api.local/invoices/inv-1/pdf?token=tok+en"
	if got != want {
		t.Errorf("InvoicePDFURL = %q, want %q", got, want)
	}

	if got := New("http://api.local").InvoicePDFURL("inv-1"); got != "http://api.local/invoices/inv-1/pdf" {
		t.Errorf("tokenless URL = %q", got)
	}
}
