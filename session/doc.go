// Package session provides durable persistence for the portal's client
// session: the signed-in user record and the access/refresh token pair.
//
// # Storage layout
//
// A session is stored as three independent string entries under a common
// key prefix: the user record as a JSON document, and the two tokens as
// opaque strings. Writes are pipelined but not atomic; a crash mid-save can
// leave a partial session, which Load reports rather than repairs.
//
// # Architecture boundaries
//
// This package owns the [Store] (Redis operations) and the [Session] model.
// It does NOT call the remote authentication API, refresh tokens, or make
// routing decisions — those responsibilities belong to the Manager.
//
// # What this package must NOT do
//
//   - Import portalauth or api (no upward imports).
//   - Interpret token contents.
//   - Silently discard a corrupt stored user record.
package session
