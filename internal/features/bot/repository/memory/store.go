package memory

import (
	"context"
	"sync"
	"time"

	"finance-tracker-backend/internal/features/bot/models"
	"finance-tracker-backend/internal/features/bot/repository"
)

type entry struct {
	session   models.Session
	expiresAt time.Time
}

// SessionStore keeps sessions in process memory. Expired sessions are
// invisible to Get and removed by Purge.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]entry
	ttl      time.Duration
	now      func() time.Time
}

var _ repository.SessionStore = (*SessionStore)(nil)

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *SessionStore) Get(_ context.Context, chatID int64) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[chatID]
	if !ok || !s.now().Before(e.expiresAt) {
		return nil, nil
	}
	session := e.session
	return &session, nil
}

func (s *SessionStore) Save(_ context.Context, chatID int64, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = now.UTC()
	}
	s.sessions[chatID] = entry{session: *session, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *SessionStore) Delete(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, chatID)
	return nil
}

// Purge удаляет истекшие сессии и возвращает их количество
func (s *SessionStore) Purge(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for chatID, e := range s.sessions {
		if !now.Before(e.expiresAt) {
			delete(s.sessions, chatID)
			removed++
		}
	}
	return removed
}

// Len возвращает число сессий, включая еще не вычищенные
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
