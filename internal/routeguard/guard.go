// Package routeguard decides which view a navigation request resolves to.
// Resolve is a pure function so the redirect rules are testable without a
// rendered view; it is re-evaluated on every navigation and every session
// change.
package routeguard

import (
	"medical-gallery-portal/internal/gallery"
	"medical-gallery-portal/internal/session"
)

// Known top-level paths.
const (
	PathLanding           = "/"
	PathLogin             = "/login"
	PathRegister          = "/register"
	PathPatientDashboard  = "/patient-dashboard"
	PathHospitalDashboard = "/hospital-dashboard"
)

// Target is the outcome of a navigation request.
type Target struct {
	// Deferred is true while the session is still restoring; no decision
	// is made so the caller renders a loading placeholder instead of
	// flash-redirecting to login.
	Deferred bool
	// Path is the resolved destination. Empty when Deferred.
	Path string
	// Redirected is true when Path differs from the requested path.
	Redirected bool
}

// DashboardPath returns the default dashboard for a user type.
func DashboardPath(userType gallery.UserType) string {
	if userType == gallery.UserTypeHospital {
		return PathHospitalDashboard
	}
	return PathPatientDashboard
}

// Resolve maps a requested path and session snapshot to a target.
func Resolve(requestedPath string, snap session.Snapshot) Target {
	if snap.Restoring {
		return Target{Deferred: true}
	}

	switch requestedPath {
	case PathPatientDashboard, PathHospitalDashboard:
		if snap.Identity == nil {
			return redirect(PathLogin)
		}
		// Wrong-role requests land on the identity's own dashboard, never
		// on an error page.
		own := DashboardPath(snap.Identity.UserType)
		if requestedPath != own {
			return redirect(own)
		}
		return allow(requestedPath)

	case PathLogin, PathRegister:
		if snap.Identity != nil {
			return redirect(DashboardPath(snap.Identity.UserType))
		}
		return allow(requestedPath)

	case PathLanding:
		return allow(requestedPath)

	default:
		return redirect(PathLanding)
	}
}

func allow(path string) Target {
	return Target{Path: path}
}

func redirect(path string) Target {
	return Target{Path: path, Redirected: true}
}
