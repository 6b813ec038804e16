package authcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/vitalit-os/authcore/password"
)

// ChangePassword verifies the current password, installs the new hash, and
// revokes every outstanding session. Outstanding refresh tokens remain
// cryptographically valid but their sessions are gone, so the change forces
// re-login everywhere.
func (e *Engine) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	if err := password.ValidateStrength(newPassword, e.config.Password.MinLength); err != nil {
		e.metricInc(MetricPasswordChangeFailure)
		e.emitAudit(ctx, auditEventPasswordChange, false, accountID, "", ErrPasswordPolicy, nil)
		return fmt.Errorf("%w: %v", ErrPasswordPolicy, err)
	}

	account, err := e.directory.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	if !e.passwords.Verify(oldPassword, account.PasswordHash) {
		e.metricInc(MetricPasswordChangeFailure)
		e.emitAudit(ctx, auditEventPasswordChange, false, accountID, "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{"reason": "old_password_mismatch"}
		})
		return ErrInvalidCredentials
	}

	if newPassword == oldPassword {
		e.metricInc(MetricPasswordChangeFailure)
		e.emitAudit(ctx, auditEventPasswordChange, false, accountID, "", ErrPasswordReuse, nil)
		return ErrPasswordReuse
	}

	newHash, err := e.passwords.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := e.directory.UpdatePasswordHash(ctx, accountID, newHash); err != nil {
		return fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	if err := e.sessions.RevokeAll(ctx, accountID); err != nil {
		e.emitAudit(ctx, auditEventPasswordChange, false, accountID, "", err, func() map[string]string {
			return map[string]string{"reason": "session_revocation_failed"}
		})
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// A fresh credential also clears any accumulated lockout state.
	if err := e.lockouts.RecordSuccess(ctx, accountID); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.metricInc(MetricPasswordChangeSuccess)
	e.metricInc(MetricSessionRevoked)
	e.emitAudit(ctx, auditEventPasswordChange, true, accountID, "", nil, nil)
	return nil
}
