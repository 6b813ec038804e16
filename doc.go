// Package authcore is the authentication, session, and access-control core
// used by the Vitalit OS services: credential verification, JWT access and
// refresh tokens signed with independent keys, account lockout, TOTP-based
// multi-factor enrollment and login, a Redis-backed session registry with
// single and bulk revocation, and role-set authorization.
//
// The package is designed for concurrent request-serving workloads: Engine
// methods are safe to call from multiple goroutines after initialization
// through [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Builder], [Config],
// the metric counters, and value types (Principal, LoginResult,
// MFAEnrollment, SessionInfo). The audit dispatcher lives under internal/
// and is reached only through the root aliases.
//
// The engine owns no account records. Callers supply a [Directory] (lookup
// by identifier, credential and MFA field updates) and optionally an
// [AuditSink]; the engine's decisions are consumed by the host application's
// request layer, which maps the sentinel errors in errors.go onto its own
// transport.
//
// # What this package must NOT do
//
//   - Log or persist plaintext passwords, tokens, or MFA secrets.
//   - Expose the Redis client, store internals, or encoding details.
//   - Assume any wire protocol; all inputs and outputs are plain Go values.
package authcore
