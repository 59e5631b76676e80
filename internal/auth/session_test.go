package auth

import (
	"errors"
	"testing"
	"time"

	"finbit/internal/store"
)

func TestSessions_IssueAndResolve(t *testing.T) {
	s := NewSessions(time.Hour)

	token, err := s.Issue(42)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token == "" {
		t.Fatal("Issue should return a token")
	}

	userID, err := s.Resolve(token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if userID != 42 {
		t.Errorf("Resolve = %d, want 42", userID)
	}
}

func TestSessions_UnknownToken(t *testing.T) {
	s := NewSessions(time.Hour)

	if _, err := s.Resolve("missing"); !errors.Is(err, store.ErrNotAuthenticated) {
		t.Errorf("Resolve unknown = %v, want ErrNotAuthenticated", err)
	}
}

func TestSessions_Expiry(t *testing.T) {
	s := NewSessions(time.Minute)

	token, err := s.Issue(7)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Advance the clock past the TTL.
	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	if _, err := s.Resolve(token); !errors.Is(err, store.ErrNotAuthenticated) {
		t.Errorf("Resolve expired = %v, want ErrNotAuthenticated", err)
	}
}

func TestSessions_Revoke(t *testing.T) {
	s := NewSessions(time.Hour)

	token, err := s.Issue(7)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	s.Revoke(token)

	if _, err := s.Resolve(token); !errors.Is(err, store.ErrNotAuthenticated) {
		t.Errorf("Resolve revoked = %v, want ErrNotAuthenticated", err)
	}

	// Revoking again is a no-op.
	s.Revoke(token)
}
