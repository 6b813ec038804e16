package authcore

import (
	internalaudit "github.com/vitalit-os/authcore/internal/audit"
	"github.com/vitalit-os/authcore/lockout"
	"github.com/vitalit-os/authcore/mfa"
	"github.com/vitalit-os/authcore/password"
	"github.com/vitalit-os/authcore/rbac"
	"github.com/vitalit-os/authcore/session"
	"github.com/vitalit-os/authcore/token"
)

// Engine orchestrates credential verification, session issuance, MFA, and
// authorization. Construct it with [New]; all methods are safe for
// concurrent use.
type Engine struct {
	config      Config
	guard       *rbac.Guard
	sessions    *session.Registry
	lockouts    *lockout.Policy
	enrollments *mfaEnrollmentStore
	audit       *internalaudit.Dispatcher
	metrics     *Metrics
	passwords   *password.Hasher
	totp        *mfa.Manager
	tokens      *token.Manager
	directory   Directory
}

// Close drains and stops the audit dispatcher. Call it on shutdown so
// buffered events reach the sink.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were shed under backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all counters for
// exporters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) ready() bool {
	return e != nil &&
		e.directory != nil &&
		e.passwords != nil &&
		e.tokens != nil &&
		e.sessions != nil &&
		e.lockouts != nil &&
		e.totp != nil
}
