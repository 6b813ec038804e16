// Package token issues and verifies the short-lived access tokens and
// longer-lived refresh tokens used by the auth engine. The two kinds are
// signed with independent HMAC keys so a leaked refresh key cannot mint
// access tokens, and an access token can never be replayed as a refresh
// token.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind distinguishes the two token families.
type Kind string

const (
	// KindAccess is the short-lived credential presented on ordinary calls.
	KindAccess Kind = "access"
	// KindRefresh is the long-lived credential presented only to refresh.
	KindRefresh Kind = "refresh"
)

var (
	// ErrExpired is returned when signature and shape are valid but the
	// token's expiry has passed. Callers may silently refresh on an expired
	// access token; any refresh-token failure forces re-login.
	ErrExpired = errors.New("token expired")
	// ErrMalformed is returned for tokens that do not parse, lack a subject,
	// or carry an unexpected algorithm.
	ErrMalformed = errors.New("token malformed")
	// ErrBadSignature is returned when the signature does not verify under
	// the key for the expected kind.
	ErrBadSignature = errors.New("token signature invalid")
	// ErrWrongKind is returned when a structurally valid token of one kind
	// is presented where the other kind is expected.
	ErrWrongKind = errors.New("token kind mismatch")
)

const minKeyBytes = 32

// Claims is the payload embedded in both token kinds. Role is present only
// on access tokens: refresh tokens deliberately omit it so a role change
// takes effect at the next refresh without waiting for expiry.
type Claims struct {
	AccountID     string `json:"uid"`
	Role          string `json:"role,omitempty"`
	SessionID     string `json:"sid"`
	RefreshSecret string `json:"rts,omitempty"`
	Kind          Kind   `json:"knd"`
	jwt.RegisteredClaims
}

// Config carries the signing keys and TTLs. Key material is process-wide
// configuration provided at startup, never derived from request data.
type Config struct {
	AccessKey  []byte
	RefreshKey []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
}

// Manager signs and verifies tokens. Verification is purely computational
// and safe for unlimited parallelism.
type Manager struct {
	config Config
	now    func() time.Time
}

// NewManager validates the key material and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.AccessKey) < minKeyBytes || len(cfg.RefreshKey) < minKeyBytes {
		return nil, errors.New("token keys must be >= 256 bits")
	}
	if string(cfg.AccessKey) == string(cfg.RefreshKey) {
		return nil, errors.New("access and refresh keys must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token TTLs must be > 0")
	}
	return &Manager{config: cfg, now: time.Now}, nil
}

// IssueAccess signs an access token carrying subject, account, role, and
// session reference, expiring after the configured access TTL.
func (m *Manager) IssueAccess(subject, accountID, role, sessionID string) (string, error) {
	return m.issue(Claims{
		AccountID: accountID,
		Role:      role,
		SessionID: sessionID,
		Kind:      KindAccess,
	}, subject, m.config.AccessTTL, m.config.AccessKey)
}

// IssueRefresh signs a refresh token. It embeds the session's opaque refresh
// secret so the session registry row — not the signature alone — gates reuse
// after revocation. No role claim: role is re-resolved at refresh time.
func (m *Manager) IssueRefresh(subject, accountID, sessionID, refreshSecret string) (string, error) {
	return m.issue(Claims{
		AccountID:     accountID,
		SessionID:     sessionID,
		RefreshSecret: refreshSecret,
		Kind:          KindRefresh,
	}, subject, m.config.RefreshTTL, m.config.RefreshKey)
}

func (m *Manager) issue(claims Claims, subject string, ttl time.Duration, key []byte) (string, error) {
	now := m.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    m.config.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// Verify checks the token against the key matching expected, then expiry and
// subject presence. Failures are tagged so the caller can distinguish
// prompt-for-re-login from silently-refresh.
func (m *Manager) Verify(tokenStr string, expected Kind) (*Claims, error) {
	key := m.config.AccessKey
	if expected == KindRefresh {
		key = m.config.RefreshKey
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			// A token of the other kind fails here first because the keys
			// are independent; surface the more precise error when the
			// embedded kind disagrees.
			if claims := m.peekClaims(tokenStr); claims != nil && claims.Kind != expected {
				return nil, ErrWrongKind
			}
			return nil, ErrBadSignature
		default:
			return nil, ErrMalformed
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}
	if claims.Subject == "" {
		return nil, ErrMalformed
	}
	if claims.Kind != expected {
		return nil, ErrWrongKind
	}
	return claims, nil
}

// peekClaims decodes the payload without verifying the signature. Used only
// to refine the error kind; never trusted for authorization.
func (m *Manager) peekClaims(tokenStr string) *Claims {
	parsed, _, err := jwt.NewParser().ParseUnverified(tokenStr, &Claims{})
	if err != nil {
		return nil
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil
	}
	return claims
}
