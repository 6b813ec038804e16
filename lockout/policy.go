// Package lockout enforces the account-lockout policy: a fixed number of
// consecutive failed password checks temporarily locks the account. State
// lives in an injected durable store keyed by account ID so counter updates
// are atomic across concurrent login attempts and tests can substitute
// backends.
package lockout

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable indicates the lockout backend is unreachable. Retryable
// infrastructure condition, never an authentication outcome.
var ErrUnavailable = errors.New("lockout backend unavailable")

// Config fixes the policy parameters.
type Config struct {
	Threshold int           // failed password checks before locking
	Duration  time.Duration // how long a lock holds
}

// State is the per-account view an already-authenticated caller may query.
// LockedUntil is the zero time when no lock is in effect.
type State struct {
	FailedAttempts int
	LockedUntil    time.Time
}

// Store is the durable backend. IncrFailures must be a single atomic
// read-modify-write: two concurrent failures at count 4 must yield 6,
// never a lost update at 5.
type Store interface {
	IncrFailures(ctx context.Context, accountID string) (int, error)
	Failures(ctx context.Context, accountID string) (int, error)
	ClearFailures(ctx context.Context, accountID string) error
	Lock(ctx context.Context, accountID string, until time.Time) error
	// LockedUntil returns the zero time when the account is not locked or
	// the lock has lapsed.
	LockedUntil(ctx context.Context, accountID string) (time.Time, error)
	Unlock(ctx context.Context, accountID string) error
}

// Policy applies Config against a Store.
type Policy struct {
	store  Store
	config Config
}

// NewPolicy wires a policy to its durable store.
func NewPolicy(store Store, cfg Config) *Policy {
	return &Policy{store: store, config: cfg}
}

// Locked reports whether the account is currently locked. Locks lapse
// lazily: no background timer, the check on the next attempt decides.
func (p *Policy) Locked(ctx context.Context, accountID string) (bool, error) {
	until, err := p.store.LockedUntil(ctx, accountID)
	if err != nil {
		return false, err
	}
	return until.After(time.Now()), nil
}

// RecordFailure counts one failed password check and reports whether the
// account transitioned to locked. MFA-code failures must never be recorded
// here: only password failures count, or an attacker who knows the password
// could lock out the legitimate user with garbage MFA codes.
func (p *Policy) RecordFailure(ctx context.Context, accountID string) (bool, error) {
	count, err := p.store.IncrFailures(ctx, accountID)
	if err != nil {
		return false, err
	}
	if count < p.config.Threshold {
		return false, nil
	}
	if err := p.store.Lock(ctx, accountID, time.Now().Add(p.config.Duration)); err != nil {
		return false, err
	}
	return true, nil
}

// RecordSuccess unconditionally clears the counter and any lock, no matter
// how high the counter had climbed.
func (p *Policy) RecordSuccess(ctx context.Context, accountID string) error {
	if err := p.store.ClearFailures(ctx, accountID); err != nil {
		return err
	}
	return p.store.Unlock(ctx, accountID)
}

// State returns the current counter and lock expiry for the account.
func (p *Policy) State(ctx context.Context, accountID string) (State, error) {
	count, err := p.store.Failures(ctx, accountID)
	if err != nil {
		return State{}, err
	}
	until, err := p.store.LockedUntil(ctx, accountID)
	if err != nil {
		return State{}, err
	}
	if !until.After(time.Now()) {
		until = time.Time{}
	}
	return State{FailedAttempts: count, LockedUntil: until}, nil
}
