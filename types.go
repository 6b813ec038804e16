package authcore

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/vitalit-os/authcore/internal/audit"
	"github.com/vitalit-os/authcore/lockout"
	"github.com/vitalit-os/authcore/rbac"
)

// Account is the engine's view of one user record. It is owned and persisted
// by the caller's [Directory]; the engine never stores accounts itself.
type Account struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         rbac.Role
	Active       bool

	// MFAEnabled and MFASecret flip together when an enrollment is
	// confirmed. A secret without the flag grants nothing.
	MFAEnabled bool
	MFASecret  string

	LastLogin         time.Time
	PasswordChangedAt time.Time
}

// BackupCodeRecord stores the SHA-256 hash of a single backup code.
// The plaintext is never persisted.
type BackupCodeRecord struct {
	Hash [32]byte
}

// Directory is the interface callers implement to integrate authcore with
// their user database. Implementations signal unknown accounts with
// [ErrAccountNotFound]; any other error is treated as a retryable
// infrastructure failure, never as an authentication outcome.
type Directory interface {
	GetByIdentifier(ctx context.Context, identifier string) (Account, error)
	GetByID(ctx context.Context, accountID string) (Account, error)
	UpdatePasswordHash(ctx context.Context, accountID, newHash string) error

	EnableMFA(ctx context.Context, accountID, secret string) error
	DisableMFA(ctx context.Context, accountID string) error
	ReplaceBackupCodes(ctx context.Context, accountID string, codes []BackupCodeRecord) error
	// ConsumeBackupCode atomically marks a matching code as used. It reports
	// false when no unused code matches the hash.
	ConsumeBackupCode(ctx context.Context, accountID string, codeHash [32]byte) (bool, error)

	RecordLogin(ctx context.Context, accountID string, at time.Time) error
}

// LoginResult is returned by [Engine.Login], [Engine.LoginWithMFA], and
// [Engine.Refresh] on success.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	SessionID    string
	Role         rbac.Role
	ExpiresAt    time.Time
}

// Principal is the authenticated identity extracted by
// [Engine.Authenticate], carried by the host application through its
// request-handling path.
type Principal struct {
	AccountID string
	Username  string
	Role      rbac.Role
	SessionID string
}

// MFAEnrollment is the pending-enrollment material returned by
// [Engine.BeginMFAEnrollment]. Secret and BackupCodes are shown exactly
// once; only their hashes survive confirmation.
type MFAEnrollment struct {
	ID              string
	Secret          string
	ProvisioningURI string
	BackupCodes     []string
}

// SessionInfo describes one live session in [Engine.Sessions] output.
type SessionInfo struct {
	SessionID string
	IP        string
	UserAgent string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// LockState is the per-account lockout view an authenticated caller may
// query via [Engine.LockState].
type LockState = lockout.State

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer], one object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
