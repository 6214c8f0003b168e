package state

import (
	"sync"
	"time"

	"github.com/panelkit/authfront/internal/crypto"
)

// Record is one outstanding anti-forgery state entry, issued right before
// the provider redirect and consumed exactly once by the callback.
type Record struct {
	Provider string
	IssuedAt time.Time
	Expiry   time.Time
}

// Store holds outstanding state records. Consume is atomic (LoadAndDelete),
// so two racing callbacks presenting the same value can never both validate.
type Store struct {
	ttl     time.Duration
	records sync.Map // state value -> Record
}

// NewStore creates a state store whose records expire after ttl.
func NewStore(ttl time.Duration) *Store {
	return &Store{ttl: ttl}
}

// Issue generates a fresh unguessable state value bound to provider and
// records it for the callback to consume.
func (s *Store) Issue(provider string) (string, error) {
	value, err := crypto.GenerateSecureToken()
	if err != nil {
		return "", err
	}

	now := time.Now()
	s.records.Store(value, Record{
		Provider: provider,
		IssuedAt: now,
		Expiry:   now.Add(s.ttl),
	})
	return value, nil
}

// Consume removes and returns the record for value. Single-use: the record
// is deleted on first call regardless of outcome. Expired records are
// rejected here even if the sweeper hasn't run yet.
func (s *Store) Consume(value string) (Record, bool) {
	v, ok := s.records.LoadAndDelete(value)
	if !ok {
		return Record{}, false
	}
	rec := v.(Record)
	if time.Now().After(rec.Expiry) {
		return Record{}, false
	}
	return rec, true
}

// Sweep drops expired records and returns how many were removed.
// Correctness doesn't depend on it; Consume rejects stale entries anyway.
func (s *Store) Sweep() int {
	now := time.Now()
	removed := 0
	s.records.Range(func(key, value any) bool {
		if now.After(value.(Record).Expiry) {
			if _, loaded := s.records.LoadAndDelete(key); loaded {
				removed++
			}
		}
		return true
	})
	return removed
}
