package authcore

import (
	"errors"
	"time"
)

// Config is the engine's complete configuration. Treated as immutable after
// Build; the builder deep-copies key material so later mutation of the
// caller's slices cannot reach the engine.
type Config struct {
	Token    TokenConfig
	Session  SessionConfig
	Lockout  LockoutConfig
	MFA      MFAConfig
	Password PasswordConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

// TokenConfig carries the two independent signing keys and token lifetimes.
type TokenConfig struct {
	AccessKey  []byte
	RefreshKey []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
}

// SessionConfig controls the Redis session registry.
type SessionConfig struct {
	RedisPrefix string
}

// LockoutConfig controls the failed-login lockout policy.
type LockoutConfig struct {
	Threshold int
	Duration  time.Duration
}

// MFAConfig controls TOTP enrollment and verification.
type MFAConfig struct {
	Issuer          string
	Period          uint
	Skew            uint
	BackupCodeCount int
	// EnrollmentTTL bounds how long an unconfirmed enrollment ticket stays
	// redeemable.
	EnrollmentTTL time.Duration
}

// PasswordConfig carries the argon2id cost parameters and the change-password
// policy.
type PasswordConfig struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	MinLength   int
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull sheds events under backpressure instead of blocking the
	// authentication path. Drops are counted and exported.
	DropIfFull bool
}

// MetricsConfig controls the in-process metric counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

const maxRefreshTTL = 30 * 24 * time.Hour

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTL:  30 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
			Issuer:     "Vitalit OS",
		},
		Session: SessionConfig{
			RedisPrefix: "ac",
		},
		Lockout: LockoutConfig{
			Threshold: 5,
			Duration:  15 * time.Minute,
		},
		MFA: MFAConfig{
			Issuer:          "Vitalit OS",
			Period:          30,
			Skew:            1,
			BackupCodeCount: 10,
			EnrollmentTTL:   10 * time.Minute,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        2,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
			MinLength:   8,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate performs the startup checks that would otherwise surface as
// runtime authentication failures. Key-length and key-distinctness checks
// are repeated by the token manager; failing here gives a clearer error.
func (c *Config) Validate() error {
	if len(c.Token.AccessKey) < 32 || len(c.Token.RefreshKey) < 32 {
		return errors.New("token keys must be at least 32 bytes")
	}
	if string(c.Token.AccessKey) == string(c.Token.RefreshKey) {
		return errors.New("access and refresh keys must differ")
	}
	if c.Token.AccessTTL <= 0 || c.Token.RefreshTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if c.Token.AccessTTL >= c.Token.RefreshTTL {
		return errors.New("access TTL must be shorter than refresh TTL")
	}
	if c.Token.RefreshTTL > maxRefreshTTL {
		return errors.New("refresh TTL must not exceed 30 days")
	}
	if c.Lockout.Threshold < 1 {
		return errors.New("lockout threshold must be at least 1")
	}
	if c.Lockout.Duration <= 0 {
		return errors.New("lockout duration must be positive")
	}
	if c.MFA.Issuer == "" {
		return errors.New("mfa issuer must be set")
	}
	if c.MFA.EnrollmentTTL <= 0 {
		return errors.New("mfa enrollment TTL must be positive")
	}
	if c.Password.MinLength < 8 {
		return errors.New("password minimum length must be at least 8")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("audit buffer size must be positive when auditing is enabled")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.AccessKey = cloneBytes(cfg.Token.AccessKey)
	out.Token.RefreshKey = cloneBytes(cfg.Token.RefreshKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
