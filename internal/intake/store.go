package intake

import (
	"context"
	"sync"
	"time"
)

// SessionStore persists intake sessions. Implementations must return copies
// the caller can mutate freely.
type SessionStore interface {
	Create(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	GetActiveByOwner(ctx context.Context, ownerID string) (*Session, error)
	Update(ctx context.Context, session *Session) error
	Complete(ctx context.Context, id string) error
	Abandon(ctx context.Context, id string) error
}

// MemoryStore is the in-process SessionStore used in development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (s *MemoryStore) Create(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = copySession(session)
	return nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return copySession(session), nil
}

// GetActiveByOwner returns the owner's active session, or ErrSessionNotFound
// when they have none. At most one session per owner is ever active.
func (s *MemoryStore) GetActiveByOwner(_ context.Context, ownerID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, session := range s.sessions {
		if session.OwnerID == ownerID && session.Status == StatusActive {
			return copySession(session), nil
		}
	}
	return nil, ErrSessionNotFound
}

func (s *MemoryStore) Update(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; !ok {
		return ErrSessionNotFound
	}
	s.sessions[session.ID] = copySession(session)
	return nil
}

func (s *MemoryStore) Complete(_ context.Context, id string) error {
	return s.transition(id, StatusCompleted)
}

func (s *MemoryStore) Abandon(_ context.Context, id string) error {
	return s.transition(id, StatusAbandoned)
}

func (s *MemoryStore) transition(id string, to Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if session.Status != StatusActive {
		return ErrSessionInactive
	}
	session.Status = to
	session.UpdatedAt = time.Now().UTC()
	return nil
}

func copySession(in *Session) *Session {
	out := *in
	out.Draft = in.Draft.Clone()
	out.Transcript = append([]TranscriptEntry(nil), in.Transcript...)
	return &out
}
