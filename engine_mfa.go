package authcore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vitalit-os/authcore/mfa"
)

// BeginMFAEnrollment generates TOTP enrollment material for the account and
// parks it in a pending-enrollment ticket. Nothing on the account changes
// until [Engine.ConfirmMFAEnrollment] proves possession of the secret; an
// unconfirmed ticket expires after the configured TTL.
//
// The returned secret and backup codes are shown exactly once.
func (e *Engine) BeginMFAEnrollment(ctx context.Context, accountID string) (*MFAEnrollment, error) {
	if !e.ready() || e.enrollments == nil {
		return nil, ErrEngineNotReady
	}

	account, err := e.directory.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	if account.MFAEnabled {
		e.emitAudit(ctx, auditEventMFAEnrollStarted, false, accountID, "", ErrMFAAlreadyEnabled, nil)
		return nil, ErrMFAAlreadyEnabled
	}

	label := account.Username
	if label == "" {
		label = account.ID
	}
	secret, uri, err := e.totp.GenerateSecret(label)
	if err != nil {
		return nil, err
	}
	backupCodes, err := e.totp.NewBackupCodes()
	if err != nil {
		return nil, err
	}

	ticket, err := e.enrollments.Put(ctx, accountID, secret, uri, backupCodes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.metricInc(MetricMFAEnrollStarted)
	e.emitAudit(ctx, auditEventMFAEnrollStarted, true, accountID, "", nil, nil)

	return &MFAEnrollment{
		ID:              ticket,
		Secret:          secret,
		ProvisioningURI: uri,
		BackupCodes:     backupCodes,
	}, nil
}

// ConfirmMFAEnrollment redeems a pending ticket with a live TOTP code. On
// success the secret and hashed backup codes move to the directory and MFA
// becomes mandatory for the account's future logins.
func (e *Engine) ConfirmMFAEnrollment(ctx context.Context, accountID, ticketID, code string) error {
	if !e.ready() || e.enrollments == nil {
		return ErrEngineNotReady
	}

	pending, err := e.enrollments.Get(ctx, ticketID)
	if err != nil {
		if errors.Is(err, errEnrollmentMissing) {
			e.emitAudit(ctx, auditEventMFAEnrollConfirmed, false, accountID, "", ErrEnrollmentNotFound, nil)
			return ErrEnrollmentNotFound
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if pending.AccountID != accountID {
		e.emitAudit(ctx, auditEventMFAEnrollConfirmed, false, accountID, "", ErrEnrollmentNotFound, nil)
		return ErrEnrollmentNotFound
	}

	if !e.totp.VerifyCode(pending.Secret, code, time.Now()) {
		e.metricInc(MetricMFAFailure)
		e.emitAudit(ctx, auditEventMFAEnrollConfirmed, false, accountID, "", ErrInvalidMFACode, nil)
		return ErrInvalidMFACode
	}

	if err := e.directory.EnableMFA(ctx, accountID, pending.Secret); err != nil {
		return fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	if err := e.directory.ReplaceBackupCodes(ctx, accountID, backupCodeRecords(pending.BackupCodeHashes)); err != nil {
		return fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	// Ticket cleanup is best-effort; TTL covers a miss.
	_ = e.enrollments.Delete(ctx, ticketID)

	e.metricInc(MetricMFAEnrollConfirmed)
	e.emitAudit(ctx, auditEventMFAEnrollConfirmed, true, accountID, "", nil, nil)
	return nil
}

// DisableMFA turns the second factor off, gated on a live TOTP code so a
// hijacked session alone cannot strip the account's protection. Backup
// codes are cleared with the secret.
func (e *Engine) DisableMFA(ctx context.Context, accountID, code string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	account, err := e.directory.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	if !account.MFAEnabled {
		return ErrMFANotEnabled
	}

	if !e.totp.VerifyCode(account.MFASecret, code, time.Now()) {
		e.metricInc(MetricMFAFailure)
		e.emitAudit(ctx, auditEventMFADisabled, false, accountID, "", ErrInvalidMFACode, nil)
		return ErrInvalidMFACode
	}

	if err := e.directory.DisableMFA(ctx, accountID); err != nil {
		return fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	if err := e.directory.ReplaceBackupCodes(ctx, accountID, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	e.metricInc(MetricMFADisabled)
	e.emitAudit(ctx, auditEventMFADisabled, true, accountID, "", nil, nil)
	return nil
}

// RegenerateBackupCodes replaces the account's recovery codes with a fresh
// set, gated on a live TOTP code. Codes already consumed stay consumed; the
// old unused ones stop working immediately.
func (e *Engine) RegenerateBackupCodes(ctx context.Context, accountID, code string) ([]string, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	account, err := e.directory.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	if !account.MFAEnabled {
		return nil, ErrMFANotEnabled
	}

	if !e.totp.VerifyCode(account.MFASecret, code, time.Now()) {
		e.metricInc(MetricMFAFailure)
		e.emitAudit(ctx, auditEventBackupCodesGenerated, false, accountID, "", ErrInvalidMFACode, nil)
		return nil, ErrInvalidMFACode
	}

	codes, err := e.totp.NewBackupCodes()
	if err != nil {
		return nil, err
	}

	records := make([]BackupCodeRecord, len(codes))
	for i, c := range codes {
		records[i] = BackupCodeRecord{Hash: mfa.HashBackupCode(c)}
	}
	if err := e.directory.ReplaceBackupCodes(ctx, accountID, records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	e.metricInc(MetricBackupCodeRegenerated)
	e.emitAudit(ctx, auditEventBackupCodesGenerated, true, accountID, "", nil, nil)
	return codes, nil
}

func backupCodeRecords(hashes [][32]byte) []BackupCodeRecord {
	records := make([]BackupCodeRecord, len(hashes))
	for i, h := range hashes {
		records[i] = BackupCodeRecord{Hash: h}
	}
	return records
}
