package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/vitalit-os/authcore/session"
	"github.com/vitalit-os/authcore/token"
)

const (
	auditEventLoginSuccess         = "login_success"
	auditEventLoginFailure         = "login_failure"
	auditEventLoginLocked          = "login_locked"
	auditEventMFARequired          = "mfa_required"
	auditEventMFASuccess           = "mfa_success"
	auditEventMFAFailure           = "mfa_failure"
	auditEventBackupCodeUsed       = "backup_code_used"
	auditEventBackupCodesGenerated = "backup_codes_generated"
	auditEventRefreshSuccess       = "refresh_success"
	auditEventRefreshInvalid       = "refresh_invalid"
	auditEventLogoutSession        = "logout_session"
	auditEventLogoutAll            = "logout_all"
	auditEventMFAEnrollStarted     = "mfa_enroll_started"
	auditEventMFAEnrollConfirmed   = "mfa_enroll_confirmed"
	auditEventMFADisabled          = "mfa_disabled"
	auditEventPasswordChange       = "password_change"
	auditEventAuthorizeDenied      = "authorize_denied"
)

// AuditErrorCode is the stable, secret-free error tag recorded on audit
// events in place of raw error text.
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrAccountLocked      AuditErrorCode = "account_locked"
	auditErrMFARequired        AuditErrorCode = "mfa_required"
	auditErrMFAInvalid         AuditErrorCode = "mfa_invalid"
	auditErrMFANotEnabled      AuditErrorCode = "mfa_not_enabled"
	auditErrMFAAlreadyEnabled  AuditErrorCode = "mfa_already_enabled"
	auditErrEnrollmentNotFound AuditErrorCode = "enrollment_not_found"
	auditErrInvalidToken       AuditErrorCode = "invalid_token"
	auditErrSessionRevoked     AuditErrorCode = "session_revoked"
	auditErrUnauthenticated    AuditErrorCode = "unauthenticated"
	auditErrForbidden          AuditErrorCode = "forbidden"
	auditErrPasswordPolicy     AuditErrorCode = "password_policy"
	auditErrPasswordReuse      AuditErrorCode = "password_reuse"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	kind string,
	success bool,
	actorID string,
	sessionID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		Kind:      kind,
		ActorID:   actorID,
		SessionID: sessionID,
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrMFARequired):
		return auditErrMFARequired
	case errors.Is(err, ErrInvalidMFACode):
		return auditErrMFAInvalid
	case errors.Is(err, ErrMFANotEnabled):
		return auditErrMFANotEnabled
	case errors.Is(err, ErrMFAAlreadyEnabled):
		return auditErrMFAAlreadyEnabled
	case errors.Is(err, ErrEnrollmentNotFound):
		return auditErrEnrollmentNotFound
	case errors.Is(err, token.ErrExpired),
		errors.Is(err, token.ErrMalformed),
		errors.Is(err, token.ErrBadSignature),
		errors.Is(err, token.ErrWrongKind):
		return auditErrInvalidToken
	case errors.Is(err, ErrSessionRevoked),
		errors.Is(err, session.ErrNotFound):
		return auditErrSessionRevoked
	case errors.Is(err, ErrUnauthenticated):
		return auditErrUnauthenticated
	case errors.Is(err, ErrForbidden):
		return auditErrForbidden
	case errors.Is(err, ErrPasswordPolicy):
		return auditErrPasswordPolicy
	case errors.Is(err, ErrPasswordReuse):
		return auditErrPasswordReuse
	case errors.Is(err, ErrDirectoryUnavailable),
		errors.Is(err, ErrStoreUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
