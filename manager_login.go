package portalauth

import (
	"context"
	"errors"

	"github.com/litspark/portalauth/api"
	"github.com/litspark/portalauth/session"
)

var errIncompletePayload = errors.New("auth api returned an incomplete payload")

// Login exchanges credentials for a session. On success the user record
// and token pair are persisted before the call returns; on failure the
// session is left untouched, the error message is recorded, and the error
// is returned for the caller to react to.
func (m *Manager) Login(ctx context.Context, email, password string) (*User, error) {
	if m == nil || m.api == nil {
		return nil, ErrManagerNotReady
	}

	done := m.beginOp()
	defer done()

	payload, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.recordFailure(err)
		m.metricInc(MetricLoginFailure)
		m.emitAudit(ctx, auditEventLoginFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"email": email,
			}
		})
		return nil, err
	}

	if err := m.adoptAuthPayload(ctx, payload); err != nil {
		m.recordFailure(err)
		m.metricInc(MetricLoginFailure)
		m.emitAudit(ctx, auditEventLoginFailure, false, "", err, nil)
		return nil, err
	}

	m.metricInc(MetricLoginSuccess)
	m.emitAudit(ctx, auditEventLoginSuccess, true, payload.User.ID, nil, nil)

	return payload.User.Clone(), nil
}

// Register creates a new portal account. The server signs the account in
// immediately; success and failure semantics match [Manager.Login].
func (m *Manager) Register(ctx context.Context, input api.RegisterInput) (*User, error) {
	if m == nil || m.api == nil {
		return nil, ErrManagerNotReady
	}

	done := m.beginOp()
	defer done()

	payload, err := m.api.Register(ctx, input)
	if err != nil {
		m.recordFailure(err)
		m.metricInc(MetricRegisterFailure)
		m.emitAudit(ctx, auditEventRegisterFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"email": input.Email,
			}
		})
		return nil, err
	}

	if err := m.adoptAuthPayload(ctx, payload); err != nil {
		m.recordFailure(err)
		m.metricInc(MetricRegisterFailure)
		m.emitAudit(ctx, auditEventRegisterFailure, false, "", err, nil)
		return nil, err
	}

	m.metricInc(MetricRegisterSuccess)
	m.emitAudit(ctx, auditEventRegisterSuccess, true, payload.User.ID, nil, nil)

	return payload.User.Clone(), nil
}

// adoptAuthPayload installs a freshly-minted session. User and access
// token arrive (and are committed) together, upholding the invariant that
// neither is ever held alone.
func (m *Manager) adoptAuthPayload(ctx context.Context, payload *api.AuthPayload) error {
	if payload == nil || payload.User == nil || payload.Token == "" {
		return errIncompletePayload
	}

	return m.commit(ctx, session.Session{
		User:         payload.User.Clone(),
		AccessToken:  payload.Token,
		RefreshToken: payload.RefreshToken,
	})
}
