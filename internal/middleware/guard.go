package middleware

import (
	"net/http"
	"time"

	"github.com/bluele/gcache"
	"github.com/labstack/echo/v4"

	"github.com/themilan1337/nerdie/internal/auth/guard"
)

var (
	guards *guard.Guards
	// Positive guard decisions are cached briefly, keyed by the stored
	// id-token, so hot dashboard routes do not re-parse the record on every
	// request.
	decisionCache = gcache.New(128).LRU().Expiration(time.Minute).Build()
)

func InitGuardMiddleware(g *guard.Guards) {
	guards = g
}

func InvalidateGuardCache(idToken string) {
	decisionCache.Remove(idToken)
}

// PurgeGuardCache drops every cached decision. Used when the session storage
// changes underneath the server and the old token is no longer known.
func PurgeGuardCache() {
	decisionCache.Purge()
}

// DashboardGuardMiddleware enforces the dashboard-prefix guard on the local
// UI server. Requests outside the guarded prefix pass through without
// consulting or populating the cache, so only decisions made by the strict
// predicate are ever cached.
func DashboardGuardMiddleware(sessions guard.SessionReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if guards == nil || !guards.GuardedPath(c.Request().URL.Path) {
				return next(c)
			}

			token, hasToken := sessions.IDToken()
			if hasToken {
				if _, err := decisionCache.Get(token); err == nil {
					return next(c)
				}
			}

			decision := guards.RequireAuthenticated()
			if !decision.Allowed() {
				return c.Redirect(http.StatusFound, decision.Redirect)
			}
			if hasToken {
				_ = decisionCache.Set(token, struct{}{})
			}
			return next(c)
		}
	}
}
