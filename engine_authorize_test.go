package authcore

import (
	"context"
	"errors"
	"testing"

	"github.com/vitalit-os/authcore/rbac"
)

func TestAuthorizeMatrix(t *testing.T) {
	f := newEngineFixture(t, nil, nil)
	ctx := context.Background()

	doctor := Principal{AccountID: "acct-1", Role: rbac.RoleDoctor, SessionID: "s1"}
	nurse := Principal{AccountID: "acct-2", Role: rbac.RoleNurse, SessionID: "s2"}
	admin := Principal{AccountID: "acct-3", Role: rbac.RoleAdmin, SessionID: "s3"}
	anonymous := Principal{}

	if err := f.engine.Authorize(ctx, doctor, "patients.read"); err != nil {
		t.Errorf("doctor on patients.read: %v", err)
	}
	if err := f.engine.Authorize(ctx, nurse, "patients.read"); err != nil {
		t.Errorf("nurse on patients.read: %v", err)
	}
	if err := f.engine.Authorize(ctx, nurse, "admin.only"); !errors.Is(err, ErrForbidden) {
		t.Errorf("nurse on admin.only: err = %v, want ErrForbidden", err)
	}
	if err := f.engine.Authorize(ctx, admin, "admin.only"); err != nil {
		t.Errorf("admin on admin.only: %v", err)
	}
	if err := f.engine.Authorize(ctx, anonymous, "patients.read"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("zero principal: err = %v, want ErrUnauthenticated", err)
	}
}

func TestAuthorizeUndeclaredOperationFailsClosed(t *testing.T) {
	f := newEngineFixture(t, nil, nil)

	admin := Principal{AccountID: "acct-1", Role: rbac.RoleAdmin}
	if err := f.engine.Authorize(context.Background(), admin, "never.declared"); !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestAuthorizeRoles(t *testing.T) {
	f := newEngineFixture(t, nil, nil)
	required := rbac.NewSet(rbac.RoleAdmin, rbac.RoleStaff)

	if err := f.engine.AuthorizeRoles(rbac.RoleStaff, required); err != nil {
		t.Errorf("member role: %v", err)
	}
	if err := f.engine.AuthorizeRoles(rbac.RoleDoctor, required); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-member: err = %v, want ErrForbidden", err)
	}
	if err := f.engine.AuthorizeRoles(rbac.RoleUnknown, required); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("invalid role: err = %v, want ErrUnauthenticated", err)
	}
}

func TestRequiredRoles(t *testing.T) {
	f := newEngineFixture(t, nil, nil)

	roles, ok := f.engine.RequiredRoles("patients.read")
	if !ok {
		t.Fatal("declared operation reported missing")
	}
	if len(roles) != 3 {
		t.Errorf("RequiredRoles = %v, want 3 roles", roles)
	}

	if _, ok := f.engine.RequiredRoles("never.declared"); ok {
		t.Error("undeclared operation reported present")
	}
}
