// Package guard implements the navigation access-control chain: an ordered
// sequence of gates evaluated against a session snapshot before any page of
// the client application is rendered.
//
// The chain is pure with respect to the snapshot it is given; it performs no
// I/O and has no side effects, which keeps every gate combination testable.
package guard

import (
	"strings"

	"bloggazers/internal/models"
)

// Action is the kind of decision the chain produces for a navigation.
type Action int

const (
	// Allow renders the requested page.
	Allow Action = iota
	// Loading renders a placeholder because identity resolution has not
	// finished; no redirect is issued.
	Loading
	// Redirect sends the client to Decision.Target instead.
	Redirect
	// Deny renders an access-denied view in place (admin gate only).
	Deny
)

// String returns the wire name of the action.
func (a Action) String() string {
	switch a {
	case Allow:
		return "allow"
	case Loading:
		return "loading"
	case Redirect:
		return "redirect"
	case Deny:
		return "deny"
	}
	return "unknown"
}

// Decision is the outcome of evaluating the chain for one navigation.
type Decision struct {
	Action Action `json:"action"`
	// Target is the redirect destination when Action == Redirect.
	Target string `json:"target,omitempty"`
	// PrincipalID and Role carry diagnostics for the access-denied view.
	PrincipalID uint            `json:"principal_id,omitempty"`
	Role        models.UserRole `json:"role,omitempty"`
}

// Snapshot is the session state the chain is evaluated against. Principal is
// nil for unauthenticated sessions. Resolving is true while identity
// resolution is still in flight.
type Snapshot struct {
	Resolving bool
	Principal *models.User
}

// Routes describes the application's route table as the chain sees it.
type Routes struct {
	SignIn             string
	FinishRegistration string
	Profile            string
	// Protected prefixes require an authenticated principal.
	Protected []string
	// AdminPrefix marks the admin panel subtree.
	AdminPrefix string
}

// DefaultRoutes returns the application's route table.
func DefaultRoutes() Routes {
	return Routes{
		SignIn:             "/login",
		FinishRegistration: "/finish-profile",
		Profile:            "/profile",
		Protected: []string{
			"/create-blog",
			"/profile",
			"/edit-blog",
			"/bookmarks",
			"/finish-profile",
		},
		AdminPrefix: "/admin",
	}
}

// IsProtected reports whether path requires authentication.
func (r Routes) IsProtected(path string) bool {
	for _, p := range r.Protected {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// IsAdmin reports whether path belongs to the admin panel subtree.
func (r Routes) IsAdmin(path string) bool {
	return path == r.AdminPrefix || strings.HasPrefix(path, r.AdminPrefix+"/")
}

// Evaluate runs the gates in their fixed order for one navigation to path.
//
// The order matters: the registration gate runs before the authentication
// gate, so a pending principal attempting a protected route is redirected to
// finish-registration rather than bounced to sign-in (they are, by
// definition, already authenticated at that point).
func Evaluate(s Snapshot, path string, r Routes) Decision {
	// The sign-in route is exempt from the whole chain.
	if path == r.SignIn {
		return Decision{Action: Allow}
	}

	// Gate 1: identity resolution in flight.
	if s.Resolving {
		return Decision{Action: Loading}
	}

	// Gate 2: registration completeness.
	if p := s.Principal; p != nil {
		if p.Status == models.StatusPending && path != r.FinishRegistration {
			return Decision{Action: Redirect, Target: r.FinishRegistration}
		}
		if p.Status == models.StatusActive && path == r.FinishRegistration {
			return Decision{Action: Redirect, Target: r.Profile}
		}
	}

	// Gate 3: authentication.
	if r.IsProtected(path) && s.Principal == nil {
		return Decision{Action: Redirect, Target: r.SignIn}
	}

	// Gate 4: admin. Denies in place, never redirects, and carries the
	// principal's id and role for the diagnostic view.
	if r.IsAdmin(path) {
		p := s.Principal
		if p == nil {
			return Decision{Action: Deny}
		}
		if p.Role != models.RoleAdmin {
			return Decision{Action: Deny, PrincipalID: p.ID, Role: p.Role}
		}
	}

	return Decision{Action: Allow}
}
