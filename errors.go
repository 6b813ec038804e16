package authcore

import "errors"

var (
	// ErrInvalidCredentials covers unknown identifier, wrong password,
	// inactive account, and active lockout. The conditions are deliberately
	// indistinguishable to an unauthenticated caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMFARequired signals the intermediate login branch: the password was
	// accepted but a second factor must be supplied via LoginWithMFA. No
	// tokens or session exist yet when this is returned.
	ErrMFARequired = errors.New("mfa required")

	// ErrInvalidMFACode is returned for a rejected second factor. It does not
	// reveal whether the password step succeeded and never advances the
	// password lockout counter.
	ErrInvalidMFACode = errors.New("invalid mfa code")

	// ErrMFANotEnabled is returned by LoginWithMFA and DisableMFA for
	// accounts without a confirmed enrollment.
	ErrMFANotEnabled = errors.New("mfa not enabled")

	// ErrMFAAlreadyEnabled is returned by BeginMFAEnrollment when the account
	// already has a confirmed secret.
	ErrMFAAlreadyEnabled = errors.New("mfa already enabled")

	// ErrEnrollmentNotFound is returned when a confirmation references an
	// expired or unknown enrollment ticket.
	ErrEnrollmentNotFound = errors.New("mfa enrollment not found")

	// ErrUnauthenticated means no valid token was presented at all.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means the caller authenticated but its role is not in the
	// operation's declared role set.
	ErrForbidden = errors.New("forbidden")

	// ErrSessionRevoked is returned on refresh when the token verified
	// cryptographically but its session is no longer active.
	ErrSessionRevoked = errors.New("session revoked or expired")

	// ErrDirectoryUnavailable wraps directory failures other than "account
	// not found". Retryable infrastructure condition, never a credentials
	// failure.
	ErrDirectoryUnavailable = errors.New("user directory unavailable")

	// ErrStoreUnavailable wraps failures of the session/lockout/enrollment
	// backing store. Retryable infrastructure condition.
	ErrStoreUnavailable = errors.New("auth store unavailable")

	// ErrAccountNotFound is the sentinel Directory implementations return for
	// unknown identifiers. The engine maps it to ErrInvalidCredentials on the
	// login path.
	ErrAccountNotFound = errors.New("account not found")

	// ErrPasswordPolicy is returned when a new password fails the strength
	// policy in ChangePassword: minimum length plus at least one uppercase
	// letter, one lowercase letter, one digit, and one special character.
	ErrPasswordPolicy = errors.New("password policy violation")

	// ErrPasswordReuse is returned when ChangePassword is asked to set the
	// password already in place.
	ErrPasswordReuse = errors.New("new password matches current password")

	// ErrEngineNotReady is returned when a dependency was not wired through
	// the Builder.
	ErrEngineNotReady = errors.New("engine not initialized")
)
