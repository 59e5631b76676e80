package auth

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"finbit/internal/store"
)

// DefaultSessionTTL is how long an issued token stays valid.
const DefaultSessionTTL = 24 * time.Hour

type session struct {
	userID    int64
	expiresAt time.Time
}

// Sessions is an in-memory token registry. Tokens are opaque hex strings
// from crypto/rand; expired entries are dropped lazily on lookup.
type Sessions struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time

	tokens map[string]session
}

// NewSessions creates a registry with the given token lifetime.
// A non-positive ttl falls back to DefaultSessionTTL.
func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{
		ttl:    ttl,
		now:    time.Now,
		tokens: make(map[string]session),
	}
}

// Issue creates a session for the user and returns its token.
func (s *Sessions) Issue(userID int64) (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = session{
		userID:    userID,
		expiresAt: s.now().Add(s.ttl),
	}
	return token, nil
}

// Resolve returns the user id behind a token, or ErrNotAuthenticated for
// unknown or expired tokens.
func (s *Sessions) Resolve(token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.tokens[token]
	if !ok {
		return 0, store.ErrNotAuthenticated
	}
	if s.now().After(sess.expiresAt) {
		delete(s.tokens, token)
		return 0, store.ErrNotAuthenticated
	}
	return sess.userID, nil
}

// Revoke drops a token. Revoking an unknown token is a no-op.
func (s *Sessions) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}
