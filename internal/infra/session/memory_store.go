package session

import (
	"context"
	"sync"

	"teacher_referral_bot/internal/domain/session"
)

// MemoryStore keeps sessions in process memory, mirroring the original
// bot's in-memory FSM storage. Sessions are copied on the way in and out so
// callers can't mutate stored state without going through Put.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*session.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]*session.Session)}
}

func (s *MemoryStore) Get(_ context.Context, telegramID int64) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.sessions[telegramID]
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return copySession(stored), nil
}

func (s *MemoryStore) Put(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.TelegramID] = copySession(sess)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, telegramID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, telegramID)
	return nil
}

func copySession(src *session.Session) *session.Session {
	dst := &session.Session{
		TelegramID: src.TelegramID,
		Stage:      src.Stage,
		Data:       make(map[string]string, len(src.Data)),
	}
	for k, v := range src.Data {
		dst.Data[k] = v
	}
	return dst
}
