package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRegistry(client, "test")
}

func liveSession(token, accountID string) *Session {
	now := time.Now()
	return &Session{
		Token:       token,
		RefreshHash: "abc123",
		AccountID:   accountID,
		Role:        "doctor",
		IP:          "192.0.2.1",
		UserAgent:   "test-agent",
		CreatedAt:   now.Unix(),
		ExpiresAt:   now.Add(time.Hour).Unix(),
		Active:      true,
	}
}

func TestCreateAndLookup(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	sess := liveSession("tok-1", "acct-1")
	if err := r.Create(ctx, sess); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := r.Lookup(ctx, "tok-1")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.AccountID != "acct-1" || got.Role != "doctor" || got.RefreshHash != "abc123" {
		t.Errorf("unexpected session row: %+v", got)
	}
	if got.Token != "tok-1" {
		t.Errorf("token = %q, want tok-1", got.Token)
	}
}

func TestLookupUnknown(t *testing.T) {
	r := newTestRegistry(t)

	if _, err := r.Lookup(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateAlreadyExpired(t *testing.T) {
	r := newTestRegistry(t)

	sess := liveSession("tok-1", "acct-1")
	sess.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	if err := r.Create(context.Background(), sess); err == nil {
		t.Error("expired session accepted")
	}
}

func TestRevokeIdempotent(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	if err := r.Create(ctx, liveSession("tok-1", "acct-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := r.Revoke(ctx, "tok-1"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := r.Lookup(ctx, "tok-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("revoked session still visible: err = %v", err)
	}

	// Second revoke and revoking an unknown token must both succeed.
	if err := r.Revoke(ctx, "tok-1"); err != nil {
		t.Errorf("second Revoke: %v", err)
	}
	if err := r.Revoke(ctx, "never-existed"); err != nil {
		t.Errorf("Revoke unknown: %v", err)
	}
}

func TestRevokeAllIsolation(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	for _, tok := range []string{"a1", "a2"} {
		if err := r.Create(ctx, liveSession(tok, "acct-a")); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if err := r.Create(ctx, liveSession("b1", "acct-b")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := r.RevokeAll(ctx, "acct-a"); err != nil {
		t.Fatalf("RevokeAll: %v", err)
	}

	for _, tok := range []string{"a1", "a2"} {
		if _, err := r.Lookup(ctx, tok); !errors.Is(err, ErrNotFound) {
			t.Errorf("session %s survived RevokeAll: err = %v", tok, err)
		}
	}
	if _, err := r.Lookup(ctx, "b1"); err != nil {
		t.Errorf("unrelated account's session revoked: %v", err)
	}
}

func TestListActiveSkipsRevoked(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	if err := r.Create(ctx, liveSession("keep", "acct-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := r.Create(ctx, liveSession("drop", "acct-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := r.Revoke(ctx, "drop"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	live, err := r.ListActive(ctx, "acct-1")
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(live) != 1 || live[0].Token != "keep" {
		t.Errorf("ListActive = %+v, want only keep", live)
	}
}

func TestListActiveEmptyAccount(t *testing.T) {
	r := newTestRegistry(t)

	live, err := r.ListActive(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(live) != 0 {
		t.Errorf("ListActive = %+v, want empty", live)
	}
}

func TestSessionLive(t *testing.T) {
	now := time.Now()

	var nilSess *Session
	if nilSess.Live(now) {
		t.Error("nil session reported live")
	}

	sess := liveSession("tok", "acct")
	if !sess.Live(now) {
		t.Error("active unexpired session reported dead")
	}

	sess.Active = false
	if sess.Live(now) {
		t.Error("inactive session reported live")
	}

	sess.Active = true
	sess.ExpiresAt = now.Add(-time.Second).Unix()
	if sess.Live(now) {
		t.Error("expired session reported live")
	}
}
