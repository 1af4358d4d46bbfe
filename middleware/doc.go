// Package middleware adapts portalauth route-guard decisions to net/http.
//
// # Guards
//
//   - [Guard] — evaluates a route's requirements against the manager's
//     current session snapshot on every request.
//   - [RequireAuth] — shorthand for a route with no role or verification
//     requirements beyond being signed in.
//   - [RequireRoles] — shorthand for a role-restricted route.
//
// Each guard snapshots the session, calls portalauth.Decide, and either
// admits the request (injecting the snapshot into the request context),
// redirects, or asks the client to retry while the session is loading.
//
// # Architecture boundaries
//
// This package translates guard decisions into HTTP semantics. It does NOT
// make authorization decisions itself — ordering and outcomes are owned by
// portalauth.Decide.
//
// # What this package must NOT do
//
//   - Inspect tokens or call the upstream API.
//   - Mutate the session (read-only snapshots).
//   - Reorder or add decision rules beyond what Decide produces.
package middleware
