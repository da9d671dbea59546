// Package auth holds the session state machine: login, guest bypass, logout,
// restore-on-start with expiry, and the role-gated page set consumed by the
// navigation layer.
package auth

import (
	"time"

	"iuran/internal/core"
)

// Session is the authenticated identity. Sessions are replace-only: they are
// created at login and never mutated afterwards.
type Session struct {
	Username string
	Name     string
	Role     core.Role
	Expiry   time.Time // zero means no expiry
}

func (s Session) IsAdmin() bool {
	return s.Role == core.RoleAdmin
}

func (s Session) Expired(now time.Time) bool {
	return !s.Expiry.IsZero() && now.After(s.Expiry)
}

// Page is a navigable view of the dashboard.
type Page struct {
	Title string
	Path  string
}

var (
	PageDashboard = Page{Title: "Dashboard", Path: "/dashboard"}
	PageReports   = Page{Title: "Laporan Iuran", Path: "/reports"}
	PageEdit      = Page{Title: "Edit Laporan", Path: "/reports/edit"}
)

// PagesFor is the capability gate: a pure function from session to the pages
// that session may reach. Navigation and routing both consume it, so the two
// can never disagree.
func PagesFor(s Session) []Page {
	switch s.Role {
	case core.RoleAdmin:
		return []Page{PageDashboard, PageReports, PageEdit}
	case core.RoleGuest:
		return []Page{PageDashboard, PageReports}
	default:
		return nil
	}
}

// Allowed reports whether the session may reach the given path.
func Allowed(s Session, path string) bool {
	for _, p := range PagesFor(s) {
		if p.Path == path {
			return true
		}
	}
	return false
}
