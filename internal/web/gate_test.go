package web

import (
	"testing"

	"tutelliv/pkg/types"
)

func TestDecide(t *testing.T) {
	cases := []struct {
		name     string
		path     string
		hasToken bool
		role     types.Role
		allow    bool
		redirect string
	}{
		{name: "login is public", path: "/login", allow: true},
		{name: "static is public", path: "/static/styles.css", allow: true},
		{name: "favicon is public", path: "/favicon.ico", allow: true},
		{name: "api passthrough is public", path: "/api/health", allow: true},
		{name: "api passthrough for courier", path: "/api/missions", hasToken: true, role: types.RoleDeliverer, allow: true},

		{name: "anonymous root", path: "/", redirect: "/login?next=%2F"},
		{name: "anonymous missions", path: "/missions", redirect: "/login?next=%2Fmissions"},
		{name: "anonymous courier", path: "/courier/dashboard", redirect: "/login?next=%2Fcourier%2Fdashboard"},

		{name: "mjpm root", path: "/", hasToken: true, role: types.RoleMJPM, allow: true},
		{name: "mjpm dashboard", path: "/dashboard", hasToken: true, role: types.RoleMJPM, allow: true},
		{name: "mjpm mission edit", path: "/missions/abc/edit", hasToken: true, role: types.RoleMJPM, allow: true},
		{name: "mjpm courier space", path: "/courier/dashboard", hasToken: true, role: types.RoleMJPM, redirect: "/dashboard"},
		{name: "mjpm courier root", path: "/courier", hasToken: true, role: types.RoleMJPM, redirect: "/dashboard"},

		{name: "courier own dashboard", path: "/courier/dashboard", hasToken: true, role: types.RoleDeliverer, allow: true},
		{name: "courier root", path: "/", hasToken: true, role: types.RoleDeliverer, redirect: "/courier/dashboard"},
		{name: "courier mjpm dashboard", path: "/dashboard", hasToken: true, role: types.RoleDeliverer, redirect: "/courier/dashboard"},
		{name: "courier missions", path: "/missions", hasToken: true, role: types.RoleDeliverer, redirect: "/courier/dashboard"},
		{name: "courier invoices", path: "/invoices", hasToken: true, role: types.RoleDeliverer, redirect: "/courier/dashboard"},

		// prefix matching must not swallow lookalike paths
		{name: "missions-export is not missions", path: "/missions-export", hasToken: true, role: types.RoleDeliverer, allow: true},
		{name: "courierette is not courier", path: "/courierette", hasToken: true, role: types.RoleMJPM, allow: true},

		{name: "logout passes for courier", path: "/logout", hasToken: true, role: types.RoleDeliverer, allow: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Decide(tc.path, tc.hasToken, tc.role)
			if got.Allow != tc.allow {
				t.Errorf("Decide(%q) allow = %v, want %v", tc.path, got.Allow, tc.allow)
			}
			if got.RedirectTo != tc.redirect {
				t.Errorf("Decide(%q) redirect = %q, want %q", tc.path, got.RedirectTo, tc.redirect)
			}
		})
	}
}
