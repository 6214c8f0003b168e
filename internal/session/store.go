package session

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/panelkit/authfront/internal/crypto"
	"github.com/panelkit/authfront/internal/profile"
)

// Store owns the mapping from opaque session tokens to profile snapshots.
// The cookie held by the client is a capability reference; all session data
// lives here and dies with the process.
type Store struct {
	c *gocache.Cache
}

// NewStore creates a session store whose entries expire after ttl.
// The cache janitor evicts stale entries in the background; lookups of
// expired entries miss either way.
func NewStore(ttl time.Duration) *Store {
	return &Store{c: gocache.New(ttl, time.Minute)}
}

// Create mints a fresh opaque token bound to profile and returns it for
// cookie issuance. Add is atomic under the cache lock and fails on an
// existing key, so concurrent creates can never overwrite each other.
func (s *Store) Create(p profile.UserProfile) (string, error) {
	for {
		token, err := crypto.GenerateSecureToken()
		if err != nil {
			return "", err
		}
		if err := s.c.Add(token, p, gocache.DefaultExpiration); err == nil {
			return token, nil
		}
		// 256-bit collision: practically unreachable, retry anyway.
	}
}

// Read returns the profile snapshot for token. Missing or expired tokens
// report false; the caller treats that as "not authenticated", not an error.
func (s *Store) Read(token string) (profile.UserProfile, bool) {
	v, ok := s.c.Get(token)
	if !ok {
		return profile.UserProfile{}, false
	}
	return v.(profile.UserProfile), true
}

// Invalidate removes the session. Idempotent: invalidating an unknown
// token is a no-op.
func (s *Store) Invalidate(token string) {
	s.c.Delete(token)
}
