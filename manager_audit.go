package portalauth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/litspark/portalauth/api"
	"github.com/litspark/portalauth/session"
)

const (
	auditEventSessionRestore           = "session_restore"
	auditEventLoginSuccess             = "login_success"
	auditEventLoginFailure             = "login_failure"
	auditEventRegisterSuccess          = "register_success"
	auditEventRegisterFailure          = "register_failure"
	auditEventLogout                   = "logout"
	auditEventRefreshSuccess           = "refresh_success"
	auditEventRefreshFailure           = "refresh_failure"
	auditEventEmailVerificationConfirm = "email_verification_confirm"
	auditEventPasswordResetRequest     = "password_reset_request"
	auditEventPasswordResetConfirm     = "password_reset_confirm"
	auditEventProfileUpdate            = "profile_update"
)

// AuditErrorCode is the coarse error classification carried on audit
// events instead of raw error strings.
type AuditErrorCode string

const (
	auditErrUnauthorized AuditErrorCode = "unauthorized"
	auditErrForbidden    AuditErrorCode = "forbidden"
	auditErrRejected     AuditErrorCode = "rejected"
	auditErrUnreachable  AuditErrorCode = "api_unreachable"
	auditErrPersistence  AuditErrorCode = "persistence_failed"
	auditErrCorrupt      AuditErrorCode = "session_corrupt"
	auditErrInternal     AuditErrorCode = "internal_error"
)

func (m *Manager) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if m == nil || m.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		RequestID: api.RequestIDFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	m.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case api.IsStatus(err, http.StatusUnauthorized):
		return auditErrUnauthorized
	case api.IsStatus(err, http.StatusForbidden):
		return auditErrForbidden
	case errors.Is(err, api.ErrUnreachable):
		return auditErrUnreachable
	case errors.Is(err, ErrSessionPersist):
		return auditErrPersistence
	case errors.Is(err, session.ErrSessionCorrupt):
		return auditErrCorrupt
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return auditErrRejected
	}

	return auditErrInternal
}
