package portalauth

import (
	"context"
	"net/http"
	"time"

	"github.com/litspark/portalauth/api"
)

// AuthedRequest performs one attempt of an authenticated API call using
// the supplied access token. It is invoked at most twice per
// [Manager.CallAuthenticated]: once with the current token and, after a
// successful refresh, once more with the rotated token.
type AuthedRequest func(ctx context.Context, accessToken string) error

// CallAuthenticated runs an authenticated request under the refresh
// protocol:
//
//  1. The request runs with the current access token.
//  2. Any outcome other than HTTP 401 is returned as-is.
//  3. On 401 with no refresh token held, the original error is returned.
//  4. Otherwise the refresh endpoint is called; on success the rotated
//     tokens are persisted and the request is replayed exactly once.
//  5. A refresh failure clears the session (logout semantics) and the
//     refresh error — not the original 401 — is returned.
//  6. A second 401 from the replay is returned without another refresh.
//
// Concurrent callers hitting 401 share a single refresh; see Config for
// the optional pre-flight expiry inspection that refreshes before sending
// a request with a token already past its exp claim.
func (m *Manager) CallAuthenticated(ctx context.Context, fn AuthedRequest) error {
	if m == nil || m.api == nil {
		return ErrManagerNotReady
	}

	if m.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() {
			m.metrics.Observe(MetricAuthedCallLatency, time.Since(start))
		}()
	}

	access, refresh := m.currentTokens()
	if access == "" {
		return ErrNotAuthenticated
	}

	if m.config.Session.InspectTokenExpiry && refresh != "" &&
		tokenExpired(access, m.config.Session.ExpirySkew) {
		rotated, err := m.refreshSession(ctx)
		if err != nil {
			return err
		}
		access = rotated
	}

	err := fn(ctx, access)
	if err == nil || !api.IsStatus(err, http.StatusUnauthorized) {
		return err
	}

	if _, refresh = m.currentTokens(); refresh == "" {
		// Nothing to refresh with; the original 401 stands.
		return err
	}

	rotated, refreshErr := m.refreshSession(ctx)
	if refreshErr != nil {
		return refreshErr
	}

	m.metricInc(MetricAuthedCallRetry)
	return fn(ctx, rotated)
}

// refreshSession exchanges the held refresh token for a new token pair and
// returns the new access token. Concurrent calls collapse into a single
// upstream exchange whose result every caller shares.
func (m *Manager) refreshSession(ctx context.Context) (string, error) {
	done := m.trackRefresh()
	defer done()

	result, err, shared := m.refreshGroup.Do("refresh", func() (any, error) {
		return m.doRefresh(ctx)
	})
	if shared {
		m.metricInc(MetricRefreshDeduped)
	}
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (m *Manager) doRefresh(ctx context.Context) (string, error) {
	_, refresh := m.currentTokens()
	if refresh == "" {
		return "", ErrNoRefreshToken
	}

	userID := m.currentUserID()

	pair, err := m.api.RefreshToken(ctx, refresh)
	if err != nil {
		// An unusable refresh token invalidates the whole session.
		m.clearSession(ctx)
		m.metricInc(MetricRefreshFailure)
		m.metricInc(MetricLogout)
		m.emitAudit(ctx, auditEventRefreshFailure, false, userID, err, nil)
		return "", err
	}
	if pair.Token == "" {
		m.clearSession(ctx)
		m.metricInc(MetricRefreshFailure)
		m.metricInc(MetricLogout)
		m.emitAudit(ctx, auditEventRefreshFailure, false, userID, errIncompletePayload, nil)
		return "", errIncompletePayload
	}

	sess := m.heldSession()
	if sess.User == nil {
		// Session was cleared while the exchange was in flight (logout
		// race). Do not resurrect tokens without a user.
		return "", ErrNotAuthenticated
	}
	sess.AccessToken = pair.Token
	sess.RefreshToken = pair.RefreshToken

	if err := m.commit(ctx, sess); err != nil {
		// The exchanged refresh token is already consumed server-side; a
		// rotation that cannot be persisted leaves no session to recover.
		m.clearSession(ctx)
		m.metricInc(MetricRefreshFailure)
		m.metricInc(MetricLogout)
		m.emitAudit(ctx, auditEventRefreshFailure, false, userID, err, nil)
		return "", err
	}

	m.metricInc(MetricRefreshSuccess)
	m.emitAudit(ctx, auditEventRefreshSuccess, true, userID, nil, nil)

	return pair.Token, nil
}
