package authcore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vitalit-os/authcore/internal"
	"github.com/vitalit-os/authcore/mfa"
	"github.com/vitalit-os/authcore/session"
)

// Login authenticates with identifier and password. For accounts with MFA
// enabled it stops after the password step and returns [ErrMFARequired]
// without creating a session; the client completes via [Engine.LoginWithMFA].
//
// Unknown identifier, wrong password, inactive account, and active lockout
// all surface as [ErrInvalidCredentials].
func (e *Engine) Login(ctx context.Context, identifier, passwd string) (*LoginResult, error) {
	account, err := e.verifyPassword(ctx, identifier, passwd)
	if err != nil {
		return nil, err
	}

	if account.MFAEnabled {
		// The pending second factor is a workflow branch, not a failure;
		// the audit event records a successful password step.
		e.metricInc(MetricMFARequired)
		e.emitAudit(ctx, auditEventMFARequired, true, account.ID, "", nil, nil)
		return nil, ErrMFARequired
	}

	if err := e.lockouts.RecordSuccess(ctx, account.ID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return e.issueSession(ctx, account)
}

// LoginWithMFA authenticates identifier, password, and a second factor in
// one call. The code may be a current TOTP code or an unused backup code;
// backup codes are consumed on use.
//
// A rejected second factor returns [ErrInvalidMFACode] and never advances
// the password lockout counter.
func (e *Engine) LoginWithMFA(ctx context.Context, identifier, passwd, code string) (*LoginResult, error) {
	account, err := e.verifyPassword(ctx, identifier, passwd)
	if err != nil {
		return nil, err
	}

	if !account.MFAEnabled {
		e.emitAudit(ctx, auditEventMFAFailure, false, account.ID, "", ErrMFANotEnabled, nil)
		return nil, ErrMFANotEnabled
	}

	if err := e.verifySecondFactor(ctx, account, code); err != nil {
		return nil, err
	}

	if err := e.lockouts.RecordSuccess(ctx, account.ID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.metricInc(MetricMFASuccess)
	e.emitAudit(ctx, auditEventMFASuccess, true, account.ID, "", nil, nil)

	return e.issueSession(ctx, account)
}

// verifyPassword runs the shared first phase of both login entry points:
// directory lookup, active check, lockout check, then the hash compare.
// Check order is fixed; a locked account short-circuits before the compare.
func (e *Engine) verifyPassword(ctx context.Context, identifier, passwd string) (Account, error) {
	if !e.ready() {
		return Account{}, ErrEngineNotReady
	}
	if identifier == "" || passwd == "" {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{"reason": "empty_input"}
		})
		return Account{}, ErrInvalidCredentials
	}

	account, err := e.directory.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLoginFailure, false, "", "", ErrInvalidCredentials, func() map[string]string {
				return map[string]string{"reason": "account_not_found"}
			})
			return Account{}, ErrInvalidCredentials
		}
		return Account{}, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	if !account.Active {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, account.ID, "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{"reason": "account_inactive"}
		})
		return Account{}, ErrInvalidCredentials
	}

	locked, err := e.lockouts.Locked(ctx, account.ID)
	if err != nil {
		return Account{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if locked {
		e.metricInc(MetricLoginLocked)
		e.emitAudit(ctx, auditEventLoginLocked, false, account.ID, "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{"reason": string(auditErrAccountLocked)}
		})
		return Account{}, ErrInvalidCredentials
	}

	if !e.passwords.Verify(passwd, account.PasswordHash) {
		transitioned, recErr := e.lockouts.RecordFailure(ctx, account.ID)
		if recErr != nil {
			return Account{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, recErr)
		}
		e.metricInc(MetricLoginFailure)
		if transitioned {
			e.metricInc(MetricLoginLocked)
		}
		e.emitAudit(ctx, auditEventLoginFailure, false, account.ID, "", ErrInvalidCredentials, func() map[string]string {
			meta := map[string]string{"reason": "password_mismatch"}
			if transitioned {
				meta["locked"] = "true"
			}
			return meta
		})
		return Account{}, ErrInvalidCredentials
	}

	return account, nil
}

// verifySecondFactor accepts a TOTP code first, then falls back to a
// one-time backup code. Second-factor failures are not lockout failures.
func (e *Engine) verifySecondFactor(ctx context.Context, account Account, code string) error {
	if code == "" {
		e.metricInc(MetricMFAFailure)
		e.emitAudit(ctx, auditEventMFAFailure, false, account.ID, "", ErrInvalidMFACode, nil)
		return ErrInvalidMFACode
	}

	if e.totp.VerifyCode(account.MFASecret, code, time.Now()) {
		return nil
	}

	used, err := e.directory.ConsumeBackupCode(ctx, account.ID, mfa.HashBackupCode(code))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	if used {
		e.metricInc(MetricBackupCodeUsed)
		e.emitAudit(ctx, auditEventBackupCodeUsed, true, account.ID, "", nil, nil)
		return nil
	}

	e.metricInc(MetricMFAFailure)
	e.metricInc(MetricBackupCodeFailed)
	e.emitAudit(ctx, auditEventMFAFailure, false, account.ID, "", ErrInvalidMFACode, nil)
	return ErrInvalidMFACode
}

// issueSession creates the session row and signs the token pair.
func (e *Engine) issueSession(ctx context.Context, account Account) (*LoginResult, error) {
	sessionToken, err := internal.NewSessionToken()
	if err != nil {
		return nil, err
	}
	refreshSecret, err := internal.NewRefreshSecret()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expiresAt := now.Add(e.config.Token.RefreshTTL)

	// Sign before persisting: a signing failure must never leave a live
	// session row behind with no tokens in the caller's hands.
	access, err := e.tokens.IssueAccess(account.Username, account.ID, account.Role.String(), sessionToken)
	if err != nil {
		return nil, err
	}
	refresh, err := e.tokens.IssueRefresh(account.Username, account.ID, sessionToken, refreshSecret)
	if err != nil {
		return nil, err
	}

	sess := &session.Session{
		Token:       sessionToken,
		RefreshHash: internal.HashSecret(refreshSecret),
		AccountID:   account.ID,
		Role:        account.Role.String(),
		IP:          clientIPFromContext(ctx),
		UserAgent:   userAgentFromContext(ctx),
		CreatedAt:   now.Unix(),
		ExpiresAt:   expiresAt.Unix(),
		Active:      true,
	}

	if err := e.sessions.Create(ctx, sess); err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, account.ID, sessionToken, err, func() map[string]string {
			return map[string]string{"reason": "session_create_failed"}
		})
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// Last-login bookkeeping is best-effort; a directory hiccup here must
	// not fail an otherwise successful login.
	_ = e.directory.RecordLogin(ctx, account.ID, now)

	e.metricInc(MetricSessionCreated)
	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, account.ID, sessionToken, nil, nil)

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		SessionID:    sessionToken,
		Role:         account.Role,
		ExpiresAt:    expiresAt,
	}, nil
}
