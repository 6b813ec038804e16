package authcore

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestBuildRequiresRedisAndDirectory(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	if _, err := New().WithConfig(testEngineConfig()).WithDirectory(newMemDirectory()).Build(); err == nil {
		t.Error("built without a Redis client")
	}
	if _, err := New().WithConfig(testEngineConfig()).WithRedis(client).Build(); err == nil {
		t.Error("built without a directory")
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := testEngineConfig()
	cfg.Token.RefreshKey = cfg.Token.AccessKey

	if _, err := New().WithConfig(cfg).WithRedis(client).WithDirectory(newMemDirectory()).Build(); err == nil {
		t.Error("built with identical signing keys")
	}
}

func TestBuilderIsOneShot(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	b := New().WithConfig(testEngineConfig()).WithRedis(client).WithDirectory(newMemDirectory())

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)

	if _, err := b.Build(); err == nil {
		t.Error("second Build on the same builder succeeded")
	}
}

func TestBuildClonesKeyMaterial(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := testEngineConfig()
	engine, err := New().WithConfig(cfg).WithRedis(client).WithDirectory(newMemDirectory()).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)

	// Scribbling over the caller's key slice must not reach the engine.
	for i := range cfg.Token.AccessKey {
		cfg.Token.AccessKey[i] = 0
	}
	if string(engine.config.Token.AccessKey) == string(cfg.Token.AccessKey) {
		t.Error("engine shares key slice with caller config")
	}
}
