// Package rbac declares the closed role set used across Vitalit OS and the
// guard that checks a principal's role against an operation's declared
// role set. There is no implicit hierarchy: an operation open to admins and
// doctors must list both.
package rbac

import (
	"errors"
	"fmt"
)

// Role is one of the fixed account roles. The zero value is invalid so an
// uninitialized principal can never authorize anything.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleAdmin
	RoleDoctor
	RoleNurse
	RoleReceptionist
	RoleStaff

	roleCount
)

var roleNames = [roleCount]string{
	RoleUnknown:      "unknown",
	RoleAdmin:        "admin",
	RoleDoctor:       "doctor",
	RoleNurse:        "nurse",
	RoleReceptionist: "receptionist",
	RoleStaff:        "staff",
}

// ErrUnknownRole is returned by Parse for strings outside the closed set.
var ErrUnknownRole = errors.New("unknown role")

func (r Role) String() string {
	if r == RoleUnknown || r >= roleCount {
		return "unknown"
	}
	return roleNames[r]
}

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	return r > RoleUnknown && r < roleCount
}

// Parse maps a stored role string onto the closed enum. Directory
// implementations use this when hydrating accounts from their own storage.
func Parse(s string) (Role, error) {
	for r := RoleAdmin; r < roleCount; r++ {
		if roleNames[r] == s {
			return r, nil
		}
	}
	return RoleUnknown, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// Set is a bitset over the closed role enum. Sets are declared exhaustively
// per operation; membership is exact, never inherited.
type Set uint8

// NewSet builds a Set from the given roles. Invalid roles are ignored.
func NewSet(roles ...Role) Set {
	var s Set
	for _, r := range roles {
		if r.Valid() {
			s |= 1 << r
		}
	}
	return s
}

// Has reports whether role is an explicit member of the set.
func (s Set) Has(role Role) bool {
	if !role.Valid() {
		return false
	}
	return s&(1<<role) != 0
}

// Roles expands the set back into the roles it contains.
func (s Set) Roles() []Role {
	out := make([]Role, 0, roleCount)
	for r := RoleAdmin; r < roleCount; r++ {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}
