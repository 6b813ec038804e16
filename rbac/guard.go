package rbac

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrUnauthenticated means no principal was established for the request.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the principal's role is not in the operation's set.
	ErrForbidden = errors.New("forbidden")
	// ErrUnknownOperation is returned for operations never registered with
	// the guard; failing closed beats guessing a default set.
	ErrUnknownOperation = errors.New("operation not registered")
)

// Authorize checks a single role against a required set. An invalid (zero)
// role is an unauthenticated caller, which is a distinct outcome from an
// authenticated caller holding the wrong role.
func Authorize(role Role, required Set) error {
	if !role.Valid() {
		return ErrUnauthenticated
	}
	if !required.Has(role) {
		return ErrForbidden
	}
	return nil
}

// Guard holds the statically declared operation → role-set table. It is
// populated once at startup and read-only afterwards, so it is safe for
// concurrent use without locking.
type Guard struct {
	ops map[string]Set
}

// NewGuard creates an empty guard.
func NewGuard() *Guard {
	return &Guard{ops: make(map[string]Set)}
}

// Declare registers the exhaustive permitted-role set for an operation.
// Re-declaring an operation replaces its set.
func (g *Guard) Declare(operation string, required Set) *Guard {
	g.ops[operation] = required
	return g
}

// Require authorizes role for a registered operation.
func (g *Guard) Require(operation string, role Role) error {
	required, ok := g.ops[operation]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOperation, operation)
	}
	return Authorize(role, required)
}

// RequiredSet returns the declared set for an operation, for introspection.
func (g *Guard) RequiredSet(operation string) (Set, bool) {
	s, ok := g.ops[operation]
	return s, ok
}

// Operations lists the registered operation names in sorted order.
func (g *Guard) Operations() []string {
	out := make([]string, 0, len(g.ops))
	for op := range g.ops {
		out = append(out, op)
	}
	sort.Strings(out)
	return out
}
