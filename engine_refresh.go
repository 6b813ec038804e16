package authcore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vitalit-os/authcore/internal"
	"github.com/vitalit-os/authcore/rbac"
	"github.com/vitalit-os/authcore/session"
	"github.com/vitalit-os/authcore/token"
)

// Refresh exchanges a valid refresh token for a new access token. The
// session row — not the signature alone — gates the exchange: a revoked or
// expired session fails with [ErrSessionRevoked] even though the token still
// verifies cryptographically. The role claim on the new access token is
// re-resolved from the directory, so role changes take effect here.
//
// Token-shape failures surface the token package sentinels
// ([token.ErrExpired], [token.ErrBadSignature], [token.ErrWrongKind],
// [token.ErrMalformed]). The refresh token itself is returned unchanged;
// refresh tokens are not rotated.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	claims, err := e.tokens.Verify(refreshToken, token.KindRefresh)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, "", "", err, func() map[string]string {
			return map[string]string{"reason": "token_verify_failed"}
		})
		return nil, err
	}

	sess, err := e.sessions.Lookup(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			e.metricInc(MetricRefreshFailure)
			e.emitAudit(ctx, auditEventRefreshInvalid, false, claims.AccountID, claims.SessionID, ErrSessionRevoked, nil)
			return nil, ErrSessionRevoked
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// The embedded secret must hash to the stored value. A mismatch means a
	// forged or stale token referencing a live session; revoke the session
	// rather than leave it usable.
	if !internal.SecretMatchesHash(claims.RefreshSecret, sess.RefreshHash) {
		_ = e.sessions.Revoke(ctx, sess.Token)
		e.metricInc(MetricRefreshFailure)
		e.metricInc(MetricSessionRevoked)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, sess.AccountID, sess.Token, ErrSessionRevoked, func() map[string]string {
			return map[string]string{"reason": "refresh_secret_mismatch"}
		})
		return nil, ErrSessionRevoked
	}

	account, err := e.directory.GetByID(ctx, sess.AccountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			_ = e.sessions.Revoke(ctx, sess.Token)
			e.metricInc(MetricRefreshFailure)
			e.emitAudit(ctx, auditEventRefreshInvalid, false, sess.AccountID, sess.Token, ErrSessionRevoked, func() map[string]string {
				return map[string]string{"reason": "account_gone"}
			})
			return nil, ErrSessionRevoked
		}
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	if !account.Active {
		_ = e.sessions.Revoke(ctx, sess.Token)
		e.metricInc(MetricRefreshFailure)
		e.metricInc(MetricSessionRevoked)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, account.ID, sess.Token, ErrSessionRevoked, func() map[string]string {
			return map[string]string{"reason": "account_inactive"}
		})
		return nil, ErrSessionRevoked
	}

	access, err := e.tokens.IssueAccess(account.Username, account.ID, account.Role.String(), sess.Token)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, account.ID, sess.Token, nil, nil)

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refreshToken,
		SessionID:    sess.Token,
		Role:         account.Role,
		ExpiresAt:    time.Unix(sess.ExpiresAt, 0),
	}, nil
}

// Authenticate verifies an access token and extracts its principal. The
// check is purely computational — no directory or registry round trip — so
// it is safe on every request. Any verification failure collapses to
// [ErrUnauthenticated].
func (e *Engine) Authenticate(ctx context.Context, accessToken string) (Principal, error) {
	if e == nil || e.tokens == nil {
		return Principal{}, ErrEngineNotReady
	}
	if e.metrics != nil && e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() { e.metrics.Observe(MetricAuthenticateLatency, time.Since(start)) }()
	}

	claims, err := e.tokens.Verify(accessToken, token.KindAccess)
	if err != nil {
		return Principal{}, ErrUnauthenticated
	}

	role, err := rbac.Parse(claims.Role)
	if err != nil {
		return Principal{}, ErrUnauthenticated
	}

	return Principal{
		AccountID: claims.AccountID,
		Username:  claims.Subject,
		Role:      role,
		SessionID: claims.SessionID,
	}, nil
}
