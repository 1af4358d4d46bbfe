package portalauth

import (
	"context"
	"log"
)

// Logout ends the session. The server is notified best-effort when an
// access token is held; local and durable state are cleared regardless of
// whether that notification succeeds. Logout never reports an error and is
// idempotent — a second call with an empty session is a no-op beyond the
// audit event.
func (m *Manager) Logout(ctx context.Context) {
	if m == nil {
		return
	}

	done := m.beginOp()
	defer done()

	userID := m.currentUserID()
	access, _ := m.currentTokens()
	if access != "" && m.api != nil {
		if err := m.api.Logout(ctx, access); err != nil {
			log.Print("portalauth: server logout notification failed")
		}
	}

	m.clearSession(ctx)

	m.metricInc(MetricLogout)
	m.emitAudit(ctx, auditEventLogout, true, userID, nil, nil)
}
