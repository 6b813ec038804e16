package rbac

import (
	"errors"
	"testing"
)

func TestParseRoundTrip(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleDoctor, RoleNurse, RoleReceptionist, RoleStaff} {
		parsed, err := Parse(r.String())
		if err != nil {
			t.Errorf("Parse(%q): %v", r.String(), err)
		}
		if parsed != r {
			t.Errorf("Parse(%q) = %v, want %v", r.String(), parsed, r)
		}
	}
}

func TestParseUnknown(t *testing.T) {
	for _, s := range []string{"", "unknown", "superadmin", "Admin", "DOCTOR"} {
		if _, err := Parse(s); !errors.Is(err, ErrUnknownRole) {
			t.Errorf("Parse(%q): err = %v, want ErrUnknownRole", s, err)
		}
	}
}

func TestRoleString(t *testing.T) {
	if got := RoleUnknown.String(); got != "unknown" {
		t.Errorf("RoleUnknown.String() = %q", got)
	}
	if got := Role(200).String(); got != "unknown" {
		t.Errorf("out-of-range role String() = %q", got)
	}
	if got := RoleNurse.String(); got != "nurse" {
		t.Errorf("RoleNurse.String() = %q", got)
	}
}

func TestRoleValid(t *testing.T) {
	if RoleUnknown.Valid() {
		t.Error("zero role reported valid")
	}
	if Role(200).Valid() {
		t.Error("out-of-range role reported valid")
	}
	if !RoleStaff.Valid() {
		t.Error("RoleStaff reported invalid")
	}
}

func TestSetMembership(t *testing.T) {
	s := NewSet(RoleAdmin, RoleDoctor)

	if !s.Has(RoleAdmin) || !s.Has(RoleDoctor) {
		t.Error("declared members missing")
	}
	if s.Has(RoleNurse) {
		t.Error("undeclared role present")
	}
	if s.Has(RoleUnknown) {
		t.Error("invalid role present")
	}

	roles := s.Roles()
	if len(roles) != 2 {
		t.Errorf("Roles() = %v, want 2 entries", roles)
	}
}

func TestNewSetIgnoresInvalid(t *testing.T) {
	s := NewSet(RoleUnknown, Role(200), RoleNurse)
	if got := s.Roles(); len(got) != 1 || got[0] != RoleNurse {
		t.Errorf("Roles() = %v, want [nurse]", got)
	}
}
