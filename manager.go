package portalauth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/litspark/portalauth/api"
	"github.com/litspark/portalauth/session"
)

const genericFailureMessage = "request failed; please try again"

// Manager orchestrates the portal's client session: restore at startup,
// login/registration, logout, the verification and password flows, and the
// refresh-on-401 protocol for authenticated calls. It is the only component
// permitted to mutate the session.
//
// Manager instances are built through [Builder.Build] and are safe for
// concurrent use. Concurrent mutating operations are not serialized; the
// last writer wins on the session fields.
type Manager struct {
	config  Config
	api     *api.Client
	store   *session.Store
	audit   *auditDispatcher
	metrics *Metrics

	mu       sync.RWMutex
	sess     session.Session
	inflight int
	lastErr  string

	refreshGroup singleflight.Group
}

// Snapshot returns a copy of the current session state. The copy shares no
// pointers with the manager and is safe to hold across navigations.
func (m *Manager) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return Snapshot{
		User:         m.sess.User.Clone(),
		AccessToken:  m.sess.AccessToken,
		RefreshToken: m.sess.RefreshToken,
		Loading:      m.inflight > 0,
		Err:          m.lastErr,
	}
}

// IsAuthenticated reports whether a user record and access token are held.
func (m *Manager) IsAuthenticated() bool {
	if m == nil {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess.Authenticated()
}

// Close stops the audit dispatcher after draining queued events.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	if m.audit != nil {
		m.audit.Close()
	}
}

// AuditDropped returns the number of audit events dropped because the
// dispatch buffer was full.
func (m *Manager) AuditDropped() uint64 {
	if m == nil || m.audit == nil {
		return 0
	}
	return m.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all metrics.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	if m == nil || m.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return m.metrics.Snapshot()
}

func (m *Manager) metricInc(id MetricID) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.Inc(id)
}

// restore hydrates the session from durable storage. A stored token is
// trusted without server validation; the first 401 drives the refresh or
// logout path. A corrupt or partial stored session is cleared and startup
// proceeds anonymous.
func (m *Manager) restore(ctx context.Context) error {
	sess, err := m.store.Load(ctx)
	if err != nil {
		if errors.Is(err, session.ErrSessionCorrupt) {
			if clearErr := m.store.Clear(ctx); clearErr != nil {
				log.Print("portalauth: clearing corrupt session failed")
			}
			m.metricInc(MetricSessionRestoreCorrupt)
			m.emitAudit(ctx, auditEventSessionRestore, false, "", err, nil)
			return nil
		}
		return err
	}

	switch {
	case sess.Authenticated():
		m.mu.Lock()
		m.sess = sess
		m.mu.Unlock()
		m.metricInc(MetricSessionRestored)
		m.emitAudit(ctx, auditEventSessionRestore, true, sess.User.ID, nil, nil)
	case sess.IsEmpty():
		m.metricInc(MetricSessionRestoreEmpty)
	default:
		// Partial session (user without token or vice versa), most likely
		// a crash mid-save. Treat as corrupt.
		if clearErr := m.store.Clear(ctx); clearErr != nil {
			log.Print("portalauth: clearing partial session failed")
		}
		m.metricInc(MetricSessionRestoreCorrupt)
		m.emitAudit(ctx, auditEventSessionRestore, false, "", session.ErrSessionCorrupt, nil)
	}

	return nil
}

// beginOp marks the start of an authentication-affecting operation: the
// last error is cleared and the loading flag raised until the returned
// func runs.
func (m *Manager) beginOp() func() {
	m.mu.Lock()
	m.inflight++
	m.lastErr = ""
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		m.inflight--
		m.mu.Unlock()
	}
}

// trackRefresh raises the loading flag for the duration of a refresh
// exchange. Unlike beginOp it leaves the last error untouched — a refresh
// is not a caller-initiated attempt, so a message from a previous
// operation stays visible.
func (m *Manager) trackRefresh() func() {
	m.mu.Lock()
	m.inflight++
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		m.inflight--
		m.mu.Unlock()
	}
}

// recordFailure stores the server's error message, or a generic fallback,
// as the session's last error. Overwrites any previous message.
func (m *Manager) recordFailure(err error) {
	msg := genericFailureMessage
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		msg = apiErr.Message
	}

	m.mu.Lock()
	m.lastErr = msg
	m.mu.Unlock()
}

// commit persists the session and only then makes it visible in memory.
// Durability precedes visibility on every state-mutating success path.
func (m *Manager) commit(ctx context.Context, sess session.Session) error {
	if err := m.store.Save(ctx, sess); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionPersist, err)
	}

	m.mu.Lock()
	m.sess = sess
	m.mu.Unlock()
	return nil
}

// clearSession resets the in-memory session unconditionally and clears the
// durable store best-effort. Local clearing never depends on the store.
func (m *Manager) clearSession(ctx context.Context) {
	m.mu.Lock()
	m.sess = session.Session{}
	m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		log.Print("portalauth: durable session clear failed")
	}
}

func (m *Manager) currentTokens() (access, refresh string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess.AccessToken, m.sess.RefreshToken
}

func (m *Manager) currentUserID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sess.User == nil {
		return ""
	}
	return m.sess.User.ID
}

func (m *Manager) heldSession() session.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess.Clone()
}
