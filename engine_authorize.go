package authcore

import (
	"context"
	"errors"

	"github.com/vitalit-os/authcore/rbac"
)

// Authorize checks the principal's role against the role set declared for
// operation via [Builder.WithOperation]. There is no role hierarchy and no
// default: an undeclared operation denies everyone.
//
// Returns [ErrUnauthenticated] for an invalid principal, [ErrForbidden] when
// the role is not in the set.
func (e *Engine) Authorize(ctx context.Context, principal Principal, operation string) error {
	if e == nil || e.guard == nil {
		return ErrEngineNotReady
	}

	if err := e.guard.Require(operation, principal.Role); err != nil {
		e.metricInc(MetricAuthorizeDenied)
		mapped := mapGuardError(err)
		e.emitAudit(ctx, auditEventAuthorizeDenied, false, principal.AccountID, principal.SessionID, mapped, func() map[string]string {
			return map[string]string{"operation": operation}
		})
		return mapped
	}
	return nil
}

// AuthorizeRoles checks a role directly against an explicit required set,
// for callers composing their own operation tables.
func (e *Engine) AuthorizeRoles(role rbac.Role, required rbac.Set) error {
	if err := rbac.Authorize(role, required); err != nil {
		if e != nil {
			e.metricInc(MetricAuthorizeDenied)
		}
		return mapGuardError(err)
	}
	return nil
}

// RequiredRoles exposes the declared set for an operation, for
// introspection and documentation endpoints.
func (e *Engine) RequiredRoles(operation string) ([]rbac.Role, bool) {
	if e == nil || e.guard == nil {
		return nil, false
	}
	set, ok := e.guard.RequiredSet(operation)
	if !ok {
		return nil, false
	}
	return set.Roles(), true
}

func mapGuardError(err error) error {
	switch {
	case errors.Is(err, rbac.ErrUnauthenticated):
		return ErrUnauthenticated
	case errors.Is(err, rbac.ErrForbidden), errors.Is(err, rbac.ErrUnknownOperation):
		return ErrForbidden
	default:
		return err
	}
}
