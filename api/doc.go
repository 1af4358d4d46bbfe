// Package api implements the typed HTTP client for the portal's remote
// authentication API.
//
// # Wire format
//
// All endpoints exchange JSON over HTTP. Authenticated calls carry an
// "Authorization: Bearer <access token>" header; every request carries an
// X-Request-ID header for correlation with server-side logs.
//
// # Error contract
//
// A non-2xx response decodes into [*Error] carrying the HTTP status and
// the server's "message" field when one is present, or a generic fallback
// otherwise. Transport failures wrap [ErrUnreachable]. Callers branch on
// status via [IsStatus]; the Manager's refresh protocol keys off
// [IsStatus](err, http.StatusUnauthorized).
//
// # What this package must NOT do
//
//   - Hold or mutate session state.
//   - Retry requests; the retry-once-after-refresh contract lives in the
//     Manager.
package api
