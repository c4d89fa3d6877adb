// Package memory provides in-process implementations of the stores, used by
// the simulator and in tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/afritokeni/ussd-engine/internal/model"
)

var _ model.SessionStore = (*SessionStore)(nil)

type storedSession struct {
	payload []byte
	version int64
}

// SessionStore keeps sessions as encoded copies so callers never share state.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]storedSession
}

// NewSessionStore creates new SessionStore instance.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]storedSession),
	}
}

// Get returns a copy of the stored session.
func (s *SessionStore) Get(_ context.Context, id string) (model.Session, error) {
	s.mu.Lock()
	stored, ok := s.sessions[id]
	s.mu.Unlock()

	if !ok {
		return model.Session{}, model.ErrNotFound
	}

	var session model.Session
	if err := json.Unmarshal(stored.payload, &session); err != nil {
		return model.Session{}, fmt.Errorf("failed to decode session: %w", err)
	}
	session.Version = stored.version

	return session, nil
}

// Save stores session, checking its version unless it is zero.
func (s *SessionStore) Save(_ context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.sessions[session.ID]
	if session.Version != 0 && (!ok || current.version != session.Version) {
		return model.ErrVersionConflict
	}

	next := current.version + 1
	candidate := *session
	candidate.Version = next

	payload, err := json.Marshal(candidate)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	s.sessions[session.ID] = storedSession{payload: payload, version: next}
	session.Version = next

	return nil
}

// Delete removes a session.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}
