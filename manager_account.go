package portalauth

import (
	"context"
)

// VerifyEmail redeems an email verification token. When a user is
// currently held, its verified flag is patched in memory and in the
// durable store; the server's confirmation message is returned either way.
func (m *Manager) VerifyEmail(ctx context.Context, token string) (string, error) {
	if m == nil || m.api == nil {
		return "", ErrManagerNotReady
	}

	done := m.beginOp()
	defer done()

	msg, err := m.api.VerifyEmail(ctx, token)
	if err != nil {
		m.recordFailure(err)
		m.metricInc(MetricEmailVerificationFailure)
		m.emitAudit(ctx, auditEventEmailVerificationConfirm, false, m.currentUserID(), err, nil)
		return "", err
	}

	sess := m.heldSession()
	if sess.User != nil && !sess.User.EmailVerified {
		sess.User.EmailVerified = true
		if err := m.commit(ctx, sess); err != nil {
			m.recordFailure(err)
			m.metricInc(MetricEmailVerificationFailure)
			m.emitAudit(ctx, auditEventEmailVerificationConfirm, false, sess.User.ID, err, nil)
			return "", err
		}
	}

	m.metricInc(MetricEmailVerificationSuccess)
	m.emitAudit(ctx, auditEventEmailVerificationConfirm, true, m.currentUserID(), nil, nil)

	return msg.Message, nil
}

// ForgotPassword asks the server to send a password-reset email. The
// session is not touched; the server's message is returned for display.
func (m *Manager) ForgotPassword(ctx context.Context, email string) (string, error) {
	if m == nil || m.api == nil {
		return "", ErrManagerNotReady
	}

	done := m.beginOp()
	defer done()

	msg, err := m.api.ForgotPassword(ctx, email)
	if err != nil {
		m.recordFailure(err)
		m.metricInc(MetricPasswordResetFailure)
		m.emitAudit(ctx, auditEventPasswordResetRequest, false, "", err, func() map[string]string {
			return map[string]string{
				"email": email,
			}
		})
		return "", err
	}

	m.metricInc(MetricPasswordResetRequested)
	m.emitAudit(ctx, auditEventPasswordResetRequest, true, "", nil, nil)

	return msg.Message, nil
}

// ResetPassword redeems a reset token and sets a new password. The session
// is not touched — the caller must still log in with the new password.
func (m *Manager) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	if m == nil || m.api == nil {
		return "", ErrManagerNotReady
	}

	done := m.beginOp()
	defer done()

	msg, err := m.api.ResetPassword(ctx, token, newPassword)
	if err != nil {
		m.recordFailure(err)
		m.metricInc(MetricPasswordResetFailure)
		m.emitAudit(ctx, auditEventPasswordResetConfirm, false, "", err, nil)
		return "", err
	}

	m.metricInc(MetricPasswordResetConfirmed)
	m.emitAudit(ctx, auditEventPasswordResetConfirm, true, "", nil, nil)

	return msg.Message, nil
}

// UpdateProfile applies a partial profile update through the refresh
// protocol and replaces the held user with the server's representation.
// The token pair is untouched.
func (m *Manager) UpdateProfile(ctx context.Context, fields map[string]any) (*User, error) {
	if m == nil || m.api == nil {
		return nil, ErrManagerNotReady
	}

	done := m.beginOp()
	defer done()

	userID := m.currentUserID()
	if userID == "" {
		m.recordFailure(ErrNotAuthenticated)
		m.metricInc(MetricProfileUpdateFailure)
		return nil, ErrNotAuthenticated
	}

	var updated *User
	err := m.CallAuthenticated(ctx, func(ctx context.Context, accessToken string) error {
		u, err := m.api.UpdateUser(ctx, accessToken, userID, fields)
		if err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		m.recordFailure(err)
		m.metricInc(MetricProfileUpdateFailure)
		m.emitAudit(ctx, auditEventProfileUpdate, false, userID, err, nil)
		return nil, err
	}
	if updated == nil {
		m.recordFailure(errIncompletePayload)
		m.metricInc(MetricProfileUpdateFailure)
		m.emitAudit(ctx, auditEventProfileUpdate, false, userID, errIncompletePayload, nil)
		return nil, errIncompletePayload
	}

	sess := m.heldSession()
	if sess.User == nil {
		// Signed out while the update was in flight; do not resurrect.
		return updated.Clone(), nil
	}
	sess.User = updated.Clone()
	if err := m.commit(ctx, sess); err != nil {
		m.recordFailure(err)
		m.metricInc(MetricProfileUpdateFailure)
		m.emitAudit(ctx, auditEventProfileUpdate, false, userID, err, nil)
		return nil, err
	}

	m.metricInc(MetricProfileUpdateSuccess)
	m.emitAudit(ctx, auditEventProfileUpdate, true, userID, nil, nil)

	return updated.Clone(), nil
}
