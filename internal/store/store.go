// Package store owns the in-memory mapping from identity to in-flight
// session. Sessions are deliberately not persisted: an interrupted flow is
// lost and must be restarted.
package store

import (
	"strconv"
	"sync"

	"casebot/internal/domain"
)

// Store maps identities to their single in-flight session. Map access is
// mutex-guarded; mutation of an individual session additionally relies on
// the transport delivering one identity's messages sequentially.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*domain.Session
}

// New creates an empty Store.
func New() *Store {
	return &Store{sessions: make(map[int64]*domain.Session)}
}

// Get returns the session for identity, if one exists.
func (s *Store) Get(identity int64) (*domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[identity]
	return sess, ok
}

// Create starts a fresh session for identity, seeded with the identity id
// and display name. Any existing session for the same identity is
// overwritten unconditionally.
func (s *Store) Create(identity int64, displayName string) *domain.Session {
	sess := &domain.Session{
		Identity:    identity,
		DisplayName: displayName,
		Cursor:      0,
		Answers: map[string]string{
			domain.SeedKeyIdentity:    strconv.FormatInt(identity, 10),
			domain.SeedKeyDisplayName: displayName,
		},
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[identity] = sess
	return sess
}

// Delete removes the session for identity. No-op if absent.
func (s *Store) Delete(identity int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, identity)
}
