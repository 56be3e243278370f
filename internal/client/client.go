// Package client is the Go consumer of the TutelLiv API: it attaches the
// bearer token to every call, decodes JSON bodies, and unwraps the
// server's {detail} error shape into APIError values.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"tutelliv/pkg/types"
)

// APIError is a non-2xx response. Detail carries the server-provided
// message when the body had one, otherwise the HTTP status line.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return e.Detail
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// WithToken returns a shallow copy bound to a bearer token. The client
// itself stays stateless so one instance serves every session.
func (c *Client) WithToken(token string) *Client {
	copied := *c
	copied.token = token
	return &copied
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiErrorFromResponse(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func apiErrorFromResponse(resp *http.Response) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Detail:     fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}

	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Detail != "" {
		apiErr.Detail = body.Detail
	}

	return apiErr
}

// --- Auth ---

type LoginResult struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*types.User, error) {
	var out struct {
		User types.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// --- Health / stats ---

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) Stats(ctx context.Context) (*types.Stats, error) {
	var out types.Stats
	if err := c.do(ctx, http.MethodGet, "/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Beneficiaries ---

func (c *Client) Beneficiaries(ctx context.Context) ([]*types.Beneficiary, error) {
	out := make([]*types.Beneficiary, 0)
	if err := c.do(ctx, http.MethodGet, "/beneficiaries", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Beneficiary(ctx context.Context, id string) (*types.Beneficiary, error) {
	var out types.Beneficiary
	if err := c.do(ctx, http.MethodGet, "/beneficiaries/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateBeneficiary(ctx context.Context, beneficiary *types.Beneficiary) (*types.Beneficiary, error) {
	var out types.Beneficiary
	if err := c.do(ctx, http.MethodPost, "/beneficiaries", beneficiary, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Missions ---

func (c *Client) Missions(ctx context.Context) ([]*types.Mission, error) {
	out := make([]*types.Mission, 0)
	if err := c.do(ctx, http.MethodGet, "/missions", nil, &out); err != nil {
		return nil, err
	}
	for _, mission := range out {
		mission.Normalize()
	}
	return out, nil
}

func (c *Client) Mission(ctx context.Context, id string) (*types.Mission, error) {
	var out types.Mission
	if err := c.do(ctx, http.MethodGet, "/missions/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	out.Normalize()
	return &out, nil
}

func (c *Client) CreateMission(ctx context.Context, mission *types.Mission) (*types.Mission, error) {
	var out types.Mission
	if err := c.do(ctx, http.MethodPost, "/missions", mission, &out); err != nil {
		return nil, err
	}
	out.Normalize()
	return &out, nil
}

func (c *Client) UpdateMission(ctx context.Context, mission *types.Mission) (*types.Mission, error) {
	var out types.Mission
	if err := c.do(ctx, http.MethodPut, "/missions/"+url.PathEscape(mission.ID), mission, &out); err != nil {
		return nil, err
	}
	out.Normalize()
	return &out, nil
}

func (c *Client) DeleteMission(ctx context.Context, missionID string) error {
	return c.do(ctx, http.MethodDelete, "/missions/"+url.PathEscape(missionID), nil, nil)
}

// --- Invoices ---

func (c *Client) Invoices(ctx context.Context) ([]*types.Invoice, error) {
	out := make([]*types.Invoice, 0)
	if err := c.do(ctx, http.MethodGet, "/invoices", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// InvoiceByMission scans the invoice listing for the one referencing the
// mission. Returns types.ErrInvoiceNotFound when no invoice matches.
func (c *Client) InvoiceByMission(ctx context.Context, missionID string) (*types.Invoice, error) {
	invoices, err := c.Invoices(ctx)
	if err != nil {
		return nil, err
	}
	for _, invoice := range invoices {
		if invoice.MissionID == missionID {
			return invoice, nil
		}
	}
	return nil, types.ErrInvoiceNotFound
}

func (c *Client) UpdateInvoice(ctx context.Context, invoiceID string, invoice *types.Invoice) (*types.Invoice, error) {
	var out types.Invoice
	if err := c.do(ctx, http.MethodPut, "/invoices/"+url.PathEscape(invoiceID), invoice, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InvoicePDFURL builds the direct download link. The token travels as a
// query parameter because a plain anchor navigation cannot set headers.
func (c *Client) InvoicePDFURL(invoiceID string) string {
	u := c.baseURL + "/invoices/" + url.PathEscape(invoiceID) + "/pdf"
	if c.token != "" {
		u += "?token=" + url.QueryEscape(c.token)
	}
	return u
}
