package session

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-process Store used in tests.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	history  map[string][]QARecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		history:  make(map[string][]QARecord),
	}
}

func (s *MemoryStore) Put(_ context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.SessionID] = sess
	return nil
}

func (s *MemoryStore) AppendQA(_ context.Context, sessionID string, rec QARecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return fmt.Errorf("unknown session %s", sessionID)
	}
	s.history[sessionID] = append(s.history[sessionID], rec)
	return nil
}

func (s *MemoryStore) History(_ context.Context, sessionID string) ([]QARecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]QARecord, len(s.history[sessionID]))
	copy(out, s.history[sessionID])
	return out, nil
}

func (s *MemoryStore) Ping(_ context.Context) error { return nil }

// Get returns a stored session, for test assertions.
func (s *MemoryStore) Get(sessionID string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	return sess, ok
}
