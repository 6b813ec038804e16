package session

import "time"

// Session records one issued login. Rows are marked inactive on revocation,
// never deleted by this package: retention and cleanup belong to the
// operator (the backing store's TTL expires rows at their natural expiry).
type Session struct {
	// Token is the opaque session identifier, also referenced by issued
	// JWT claims. Unguessable, unique.
	Token string `json:"-"`
	// RefreshHash is the SHA-256 (hex) of the session's opaque refresh
	// secret. The plaintext secret lives only inside the refresh token.
	RefreshHash string `json:"refresh_hash"`
	AccountID   string `json:"account_id"`
	Role        string `json:"role"`
	IP          string `json:"ip,omitempty"`
	UserAgent   string `json:"user_agent,omitempty"`
	CreatedAt   int64  `json:"created_at"`
	ExpiresAt   int64  `json:"expires_at"`
	Active      bool   `json:"active"`
}

// Live reports whether the session may still authorize anything: active and
// unexpired. A session failing either check must never pass a lookup.
func (s *Session) Live(now time.Time) bool {
	return s != nil && s.Active && now.Unix() < s.ExpiresAt
}
