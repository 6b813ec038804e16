package authcore

import (
	"context"
	"fmt"
	"time"
)

// Logout revokes a single session. Idempotent: revoking an unknown or
// already-revoked session succeeds. Access tokens already issued against the
// session stay valid until their short expiry; the refresh path is closed
// immediately.
func (e *Engine) Logout(ctx context.Context, sessionID string) error {
	if e == nil || e.sessions == nil {
		return ErrEngineNotReady
	}

	if err := e.sessions.Revoke(ctx, sessionID); err != nil {
		e.emitAudit(ctx, auditEventLogoutSession, false, "", sessionID, err, nil)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.metricInc(MetricLogout)
	e.metricInc(MetricSessionRevoked)
	e.emitAudit(ctx, auditEventLogoutSession, true, "", sessionID, nil, nil)
	return nil
}

// LogoutAll revokes every session belonging to the account.
func (e *Engine) LogoutAll(ctx context.Context, accountID string) error {
	if e == nil || e.sessions == nil {
		return ErrEngineNotReady
	}

	if err := e.sessions.RevokeAll(ctx, accountID); err != nil {
		e.emitAudit(ctx, auditEventLogoutAll, false, accountID, "", err, nil)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.metricInc(MetricLogoutAll)
	e.metricInc(MetricSessionRevoked)
	e.emitAudit(ctx, auditEventLogoutAll, true, accountID, "", nil, nil)
	return nil
}

// Sessions lists the account's live sessions for "where am I logged in"
// views. Revoked and expired sessions never appear.
func (e *Engine) Sessions(ctx context.Context, accountID string) ([]SessionInfo, error) {
	if e == nil || e.sessions == nil {
		return nil, ErrEngineNotReady
	}

	live, err := e.sessions.ListActive(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	out := make([]SessionInfo, 0, len(live))
	for _, s := range live {
		out = append(out, SessionInfo{
			SessionID: s.Token,
			IP:        s.IP,
			UserAgent: s.UserAgent,
			CreatedAt: time.Unix(s.CreatedAt, 0),
			ExpiresAt: time.Unix(s.ExpiresAt, 0),
		})
	}
	return out, nil
}

// LockState returns the account's failed-attempt counter and lock expiry.
// Intended for authenticated self-service or admin views; the login path
// itself never discloses lockout state to anonymous callers.
func (e *Engine) LockState(ctx context.Context, accountID string) (LockState, error) {
	if e == nil || e.lockouts == nil {
		return LockState{}, ErrEngineNotReady
	}

	state, err := e.lockouts.State(ctx, accountID)
	if err != nil {
		return LockState{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return state, nil
}
