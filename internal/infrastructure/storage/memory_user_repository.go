package storage

import (
	"context"
	"sync"

	"repair-bot/internal/domain/entity"
	"repair-bot/internal/domain/port"
)

// MemoryUserRepository in-memory хранилище пользователей
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[int64]entity.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[int64]entity.User),
	}
}

func (r *MemoryUserRepository) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user := r.load(userID, chatID)
	return &user, nil
}

func (r *MemoryUserRepository) Update(ctx context.Context, userID, chatID int64, fn func(*entity.User) error) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user := r.load(userID, chatID)
	if err := fn(&user); err != nil {
		return nil, err
	}
	r.users[userID] = user

	out := user
	return &out, nil
}

func (r *MemoryUserRepository) load(userID, chatID int64) entity.User {
	if user, ok := r.users[userID]; ok {
		return user
	}
	user := *entity.NewUser(userID, chatID)
	r.users[userID] = user
	return user
}

var _ port.UserRepository = (*MemoryUserRepository)(nil)
