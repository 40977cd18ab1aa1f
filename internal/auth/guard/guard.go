package guard

import (
	"encoding/json"
	"strings"

	"github.com/themilan1337/nerdie/pkg/logger"
)

// SessionReader is the read-only view of the persisted session store that
// guards evaluate. Guards never consult the live auth facade, since they may
// run before its first identity notification.
type SessionReader interface {
	IDToken() (string, bool)
	RawUserData() (string, bool)
	Clear()
}

// Decision is the outcome of a guard: allow the navigation, or redirect.
type Decision struct {
	Redirect string
}

func (d Decision) Allowed() bool {
	return d.Redirect == ""
}

var allow = Decision{}

// Guards are pure synchronous predicates evaluated before a navigation
// commits. A nil SessionReader means no persisted storage is available and
// every guard skips entirely.
type Guards struct {
	repo            SessionReader
	signInRoute     string
	dashboardRoute  string
	dashboardPrefix string
}

func New(repo SessionReader, routes Routes) *Guards {
	return &Guards{
		repo:            repo,
		signInRoute:     routes.SignIn,
		dashboardRoute:  routes.Dashboard,
		dashboardPrefix: routes.DashboardPrefix,
	}
}

type Routes struct {
	SignIn          string
	Dashboard       string
	DashboardPrefix string
}

// RequireAuthenticated redirects to the sign-in route unless a complete,
// parseable session is stored. A corrupted or partial record is actively
// cleared before redirecting.
func (g *Guards) RequireAuthenticated() Decision {
	if g.repo == nil {
		return allow
	}
	if g.sessionValid() {
		return allow
	}
	g.clearCorrupted()
	return Decision{Redirect: g.signInRoute}
}

// RequireGuest redirects an authenticated user to the dashboard. Unlike
// RequireAuthenticated it never clears storage: a corrupted-but-present
// record is simply treated as not authenticated.
func (g *Guards) RequireGuest() Decision {
	if g.repo == nil {
		return allow
	}
	if g.sessionValid() {
		return Decision{Redirect: g.dashboardRoute}
	}
	return allow
}

// GuardedPath reports whether a path falls under the dashboard prefix.
func (g *Guards) GuardedPath(path string) bool {
	return strings.HasPrefix(path, g.dashboardPrefix)
}

// DashboardPrefix applies the authenticated predicate to any path under the
// dashboard prefix, independent of per-page guard placement.
func (g *Guards) DashboardPrefix(path string) Decision {
	if !g.GuardedPath(path) {
		return allow
	}
	return g.RequireAuthenticated()
}

type storedUserData struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// sessionValid is the strict positive predicate: id-token present AND the
// stored record parses with a non-empty uid and email. It never panics
// outward; any failure reads as not authenticated.
func (g *Guards) sessionValid() (valid bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Guard predicate panicked:", r)
			valid = false
		}
	}()

	if _, ok := g.repo.IDToken(); !ok {
		return false
	}
	raw, ok := g.repo.RawUserData()
	if !ok {
		return false
	}

	var parsed storedUserData
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return false
	}
	return parsed.UID != "" && parsed.Email != ""
}

// clearCorrupted removes a partial or unparseable session trio. A fully
// absent session needs no cleanup.
func (g *Guards) clearCorrupted() {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Guard cleanup panicked:", r)
		}
	}()

	_, hasToken := g.repo.IDToken()
	_, hasData := g.repo.RawUserData()
	if hasToken || hasData {
		logger.Warn("Clearing corrupted session storage")
		g.repo.Clear()
	}
}
