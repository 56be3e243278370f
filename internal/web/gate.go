package web

import (
	"net/url"
	"strings"

	"tutelliv/pkg/types"
)

// Decision is the outcome of the access gate for one request path.
// Either Allow is true or RedirectTo carries the target.
type Decision struct {
	Allow      bool
	RedirectTo string
}

var publicPrefixes = []string{
	"/login",
	"/static",
	"/api",
	"/favicon.ico",
}

// mjpmPrefixes is the management space a courier account gets bounced
// out of.
var mjpmPrefixes = []string{
	"/dashboard",
	"/missions",
	"/beneficiaries",
	"/invoices",
	"/settings",
}

func hasPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func courierPath(path string) bool {
	return path == "/courier" || strings.HasPrefix(path, "/courier/")
}

// Decide evaluates the access rules for a path. It is pure: cookie
// reading and the redirect itself happen in the middleware around it.
func Decide(path string, hasToken bool, role types.Role) Decision {
	if hasPrefix(path, publicPrefixes) {
		return Decision{Allow: true}
	}

	if !hasToken {
		return Decision{RedirectTo: "/login?next=" + url.QueryEscape(path)}
	}

	if courierPath(path) && role != types.RoleDeliverer {
		return Decision{RedirectTo: "/dashboard"}
	}

	if role == types.RoleDeliverer && (path == "/" || hasPrefix(path, mjpmPrefixes)) {
		return Decision{RedirectTo: "/courier/dashboard"}
	}

	return Decision{Allow: true}
}
