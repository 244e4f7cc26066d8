package storage

import (
	"context"
	"sync"

	"repair-bot/internal/domain/entity"
	"repair-bot/internal/domain/port"
)

// MemorySessionStore in-memory хранилище фотографий проверки
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]*entity.Session
	limit    int
}

// NewMemorySessionStore создаёт хранилище. limit ограничивает число снимков каждого вида, 0 без ограничения
func NewMemorySessionStore(limit int) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[int64]*entity.Session),
		limit:    limit,
	}
}

// AddBefore добавляет снимок "до"
func (s *MemorySessionStore) AddBefore(ctx context.Context, userID int64, photo []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(userID)
	sess.Before = s.push(sess.Before, photo)
	return len(sess.Before), nil
}

// AddAfter добавляет снимок "после"
func (s *MemorySessionStore) AddAfter(ctx context.Context, userID int64, photo []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(userID)
	sess.After = s.push(sess.After, photo)
	return len(sess.After), nil
}

// Get возвращает копию сессии
func (s *MemorySessionStore) Get(ctx context.Context, userID int64) (*entity.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return &entity.Session{}, nil
	}
	return &entity.Session{
		Before: append([][]byte(nil), sess.Before...),
		After:  append([][]byte(nil), sess.After...),
	}, nil
}

// Clear удаляет сессию
func (s *MemorySessionStore) Clear(ctx context.Context, userID int64) error {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()

	return nil
}

func (s *MemorySessionStore) session(userID int64) *entity.Session {
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &entity.Session{}
		s.sessions[userID] = sess
	}
	return sess
}

// push добавляет снимок, при переполнении вытесняя самый старый
func (s *MemorySessionStore) push(list [][]byte, photo []byte) [][]byte {
	list = append(list, photo)
	if s.limit > 0 && len(list) > s.limit {
		list = list[len(list)-s.limit:]
	}
	return list
}

// Проверка реализации интерфейса
var _ port.SessionStore = (*MemorySessionStore)(nil)
