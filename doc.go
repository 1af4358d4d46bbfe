// Package portalauth provides the client-side authentication engine for the
// LitSpark portal: session restore, login/registration, token refresh with
// retry-once semantics, and the route-guard decision function consumed by
// the view layer.
//
// The package is designed for a single [Manager] per process, built through
// [Builder.Build] and shared by the routing layer and views. Manager methods
// are safe to call from multiple goroutines; concurrent mutating operations
// are last-write-wins on the session, not serialized.
//
// # Architecture boundaries
//
// portalauth is the public surface. It exposes [Manager], [Builder],
// [Config], the [Decide] route guard, and value types (Snapshot,
// Requirements, AuditEvent, MetricsSnapshot). HTTP transport lives in api/,
// durable persistence in session/, and the http.Handler adaptation in
// middleware/.
//
// # What this package must NOT do
//
//   - Expose the Redis client or storage key layout in its public API.
//   - Validate or interpret token contents beyond optional expiry
//     inspection; tokens are opaque credentials minted by the server.
//   - Retry any request except the single refresh-then-replay path.
package portalauth
