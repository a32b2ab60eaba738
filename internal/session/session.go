// Package session holds the bearer token attached to API requests.
//
// The token is owned outside pricewatch: it comes from PRICEWATCH_TOKEN, from
// the token file written by `pricewatch -login`, or not at all. Claims are
// read without verifying the signature; they are only used for display.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is a concurrency-safe token holder. It satisfies
// pricewatch.TokenSource.
type Session struct {
	path string

	mu    sync.RWMutex
	token string
}

// Claims is the subset of the access token shown in the header.
type Claims struct {
	Subject   string
	ExpiresAt time.Time // zero when the token carries no exp
}

// Expired reports whether the token's exp is at or before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// ExpiresWithin reports whether the token expires in less than d.
func (c Claims) ExpiresWithin(now time.Time, d time.Duration) bool {
	return !c.ExpiresAt.IsZero() && c.ExpiresAt.Sub(now) < d
}

// Open returns a session backed by the token file at path. A non-blank
// override wins over the file and is never written back.
func Open(path, override string) (*Session, error) {
	s := &Session{path: strings.TrimSpace(path)}

	if tok := strings.TrimSpace(override); tok != "" {
		s.token = tok
		return s, nil
	}
	if s.path == "" {
		return s, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read token file: %w", err)
	}
	s.token = strings.TrimSpace(string(data))
	return s, nil
}

// Token returns the current bearer token, or "" when signed out.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Set replaces the token and persists it with owner-only permissions.
func (s *Session) Set(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token is empty")
	}
	if s.path != "" {
		if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
			return fmt.Errorf("create token dir: %w", err)
		}
		if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
			return fmt.Errorf("write token file: %w", err)
		}
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// Clear forgets the token and removes the token file.
func (s *Session) Clear() error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

// Claims decodes the token payload. ok is false when signed out or when the
// token is not a JWT.
func (s *Session) Claims() (Claims, bool) {
	tok := s.Token()
	if tok == "" {
		return Claims{}, false
	}

	var registered jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &registered); err != nil {
		return Claims{}, false
	}

	out := Claims{Subject: registered.Subject}
	if registered.ExpiresAt != nil {
		out.ExpiresAt = registered.ExpiresAt.Time
	}
	return out, true
}
