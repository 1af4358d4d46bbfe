package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/litspark/portalauth"
)

type snapshotContextKey struct{}

// SnapshotFromContext returns the session snapshot a [Guard] stored on the
// request context when it admitted the request.
func SnapshotFromContext(ctx context.Context) (portalauth.Snapshot, bool) {
	snap, ok := ctx.Value(snapshotContextKey{}).(portalauth.Snapshot)
	return snap, ok
}

// Guard returns middleware enforcing req against the manager's current
// session. A pending session answers 503 with Retry-After so the client
// re-requests once restore settles; redirect decisions answer 302 with the
// originally-requested path carried in the "from" query parameter of the
// login target.
func Guard(m *portalauth.Manager, req portalauth.Requirements) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m == nil {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}

			snap := m.Snapshot()
			decision := portalauth.Decide(snap, req, r.URL.RequestURI())

			switch decision.Outcome {
			case portalauth.OutcomePending:
				w.Header().Set("Retry-After", "1")
				http.Error(w, "session loading", http.StatusServiceUnavailable)
			case portalauth.OutcomeRedirect:
				http.Redirect(w, r, redirectTarget(decision), http.StatusFound)
			case portalauth.OutcomeRender:
				ctx := context.WithValue(r.Context(), snapshotContextKey{}, snap)
				next.ServeHTTP(w, r.WithContext(ctx))
			default:
				http.Error(w, "access denied", http.StatusForbidden)
			}
		})
	}
}

// RequireAuth guards a route that only needs a signed-in user.
func RequireAuth(m *portalauth.Manager) func(http.Handler) http.Handler {
	return Guard(m, portalauth.Requirements{})
}

// RequireRoles guards a route restricted to the given roles. Verification
// is also required, matching the portal's role-gated areas.
func RequireRoles(m *portalauth.Manager, roles ...string) func(http.Handler) http.Handler {
	return Guard(m, portalauth.Requirements{
		AllowedRoles:    roles,
		RequireVerified: true,
	})
}

func redirectTarget(d portalauth.Decision) string {
	if d.From == "" || d.Target != portalauth.PathLogin {
		return d.Target
	}
	return d.Target + "?from=" + url.QueryEscape(d.From)
}
