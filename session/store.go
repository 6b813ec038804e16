// Package session is the Redis-backed session registry: it persists issued
// login sessions and makes single or bulk revocation immediately visible to
// every subsequent lookup.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotFound is returned by Lookup when no live session matches:
	// unknown token, revoked, or past expiry.
	ErrNotFound = errors.New("session not found")
	// ErrUnavailable indicates the Redis backend is unreachable. Retryable;
	// callers must not interpret it as an authentication failure.
	ErrUnavailable = errors.New("session store unavailable")
)

// revokeScript flips active to false in place while preserving the row and
// its TTL. Atomic so a concurrent lookup sees either the live or the
// revoked row, never a partial write. Returns 1 only when a live row was
// revoked, making Revoke naturally idempotent.
const revokeScript = `
local data = redis.call("GET", KEYS[1])
if not data then
  return 0
end
local sess = cjson.decode(data)
if sess.active == false then
  return 0
end
sess.active = false
local ttl = redis.call("PTTL", KEYS[1])
if ttl > 0 then
  redis.call("SET", KEYS[1], cjson.encode(sess), "PX", ttl)
else
  redis.call("SET", KEYS[1], cjson.encode(sess))
end
return 1
`

var revokeLua = redis.NewScript(revokeScript)

// Registry stores sessions in Redis under a configurable key prefix.
type Registry struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRegistry creates a Registry backed by the given Redis client.
func NewRegistry(client redis.UniversalClient, prefix string) *Registry {
	if prefix == "" {
		prefix = "ac"
	}
	return &Registry{redis: client, prefix: prefix}
}

func (r *Registry) sessionKey(token string) string {
	return r.prefix + ":s:" + token
}

func (r *Registry) accountKey(accountID string) string {
	return r.prefix + ":a:" + accountID
}

// Create persists a new session row keyed by its token and indexes it under
// the owning account. The row's TTL matches the session expiry so the store
// handles natural cleanup.
func (r *Registry) Create(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	ttl := time.Until(time.Unix(sess.ExpiresAt, 0))
	if ttl <= 0 {
		return errors.New("session already expired")
	}

	_, err = r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.sessionKey(sess.Token), data, ttl)
		pipe.SAdd(ctx, r.accountKey(sess.AccountID), sess.Token)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Lookup returns the session for token only while it is live. Revoked and
// expired sessions report ErrNotFound, indistinguishable from unknown
// tokens.
func (r *Registry) Lookup(ctx context.Context, token string) (*Session, error) {
	data, err := r.redis.Get(ctx, r.sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	sess := &Session{}
	if err := json.Unmarshal(data, sess); err != nil {
		return nil, fmt.Errorf("%w: corrupt session row", ErrUnavailable)
	}
	sess.Token = token

	if !sess.Live(time.Now()) {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Revoke deactivates exactly one session. Idempotent: revoking an unknown
// or already-revoked token is not an error.
func (r *Registry) Revoke(ctx context.Context, token string) error {
	if err := revokeLua.Run(ctx, r.redis, []string{r.sessionKey(token)}).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// RevokeAll deactivates every session owned by the account. This is what
// makes a password change invalidate outstanding refresh tokens even though
// they remain cryptographically valid until their embedded expiry.
func (r *Registry) RevokeAll(ctx context.Context, accountID string) error {
	tokens, err := r.redis.SMembers(ctx, r.accountKey(accountID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	for _, token := range tokens {
		if err := r.Revoke(ctx, token); err != nil {
			return err
		}
	}
	return nil
}

// ListActive returns the account's live sessions, for "list my sessions".
func (r *Registry) ListActive(ctx context.Context, accountID string) ([]*Session, error) {
	tokens, err := r.redis.SMembers(ctx, r.accountKey(accountID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []*Session{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(tokens) == 0 {
		return []*Session{}, nil
	}

	pipe := r.redis.Pipeline()
	cmds := make([]*redis.StringCmd, len(tokens))
	for i, token := range tokens {
		cmds[i] = pipe.Get(ctx, r.sessionKey(token))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	now := time.Now()
	live := make([]*Session, 0, len(tokens))
	for i, cmd := range cmds {
		data, cmdErr := cmd.Bytes()
		if cmdErr != nil {
			if errors.Is(cmdErr, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, cmdErr)
		}
		sess := &Session{}
		if err := json.Unmarshal(data, sess); err != nil {
			continue
		}
		sess.Token = tokens[i]
		if sess.Live(now) {
			live = append(live, sess)
		}
	}
	return live, nil
}

// Ping reports backend availability and round-trip latency.
func (r *Registry) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := r.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return time.Since(start), nil
}
