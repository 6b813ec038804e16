package authcore

import (
	"errors"

	"github.com/redis/go-redis/v9"
	internalaudit "github.com/vitalit-os/authcore/internal/audit"
	"github.com/vitalit-os/authcore/lockout"
	"github.com/vitalit-os/authcore/mfa"
	"github.com/vitalit-os/authcore/password"
	"github.com/vitalit-os/authcore/rbac"
	"github.com/vitalit-os/authcore/session"
	"github.com/vitalit-os/authcore/token"
)

// Builder assembles an Engine. One-shot: Build may be called once.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	operations map[string]rbac.Set

	directory Directory
	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with the documented defaults.
func New() *Builder {
	return &Builder{
		config:     defaultConfig(),
		operations: make(map[string]rbac.Set),
	}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis injects the Redis client backing sessions, lockout counters,
// and pending MFA enrollments.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithDirectory injects the caller's user directory.
func (b *Builder) WithDirectory(d Directory) *Builder {
	b.directory = d
	return b
}

// WithAuditSink injects the audit event consumer. Without one, events are
// dropped.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithOperation declares the exhaustive permitted-role set for a named
// operation. There is no role hierarchy: an operation admits exactly the
// roles listed here.
func (b *Builder) WithOperation(name string, roles ...rbac.Role) *Builder {
	b.operations[name] = rbac.NewSet(roles...)
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the Authenticate latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, wires every component, and returns the
// Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.directory == nil {
		return nil, errors.New("directory required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	guard := rbac.NewGuard()
	for name, set := range b.operations {
		guard.Declare(name, set)
	}

	engine := &Engine{
		config:    cfg,
		guard:     guard,
		directory: b.directory,
	}

	engine.sessions = session.NewRegistry(b.redis, cfg.Session.RedisPrefix)
	engine.lockouts = lockout.NewPolicy(
		lockout.NewRedisStore(b.redis, cfg.Session.RedisPrefix),
		lockout.Config{
			Threshold: cfg.Lockout.Threshold,
			Duration:  cfg.Lockout.Duration,
		},
	)
	engine.enrollments = newMFAEnrollmentStore(b.redis, cfg.Session.RedisPrefix, cfg.MFA.EnrollmentTTL)
	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	hasher, err := password.NewHasher(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}
	engine.passwords = hasher

	totp, err := mfa.NewManager(mfa.Config{
		Issuer:          cfg.MFA.Issuer,
		Period:          cfg.MFA.Period,
		Skew:            cfg.MFA.Skew,
		BackupCodeCount: cfg.MFA.BackupCodeCount,
	})
	if err != nil {
		return nil, err
	}
	engine.totp = totp

	tokens, err := token.NewManager(token.Config{
		AccessKey:  cfg.Token.AccessKey,
		RefreshKey: cfg.Token.RefreshKey,
		AccessTTL:  cfg.Token.AccessTTL,
		RefreshTTL: cfg.Token.RefreshTTL,
		Issuer:     cfg.Token.Issuer,
	})
	if err != nil {
		return nil, err
	}
	engine.tokens = tokens

	b.built = true

	return engine, nil
}
