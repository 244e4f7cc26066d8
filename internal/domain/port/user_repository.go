package port

import (
	"context"

	"repair-bot/internal/domain/entity"
)

// UserRepository хранилище пользователей. Возвращаемые значения копии,
// изменения сохраняются только через Update.
type UserRepository interface {
	// Get возвращает пользователя, создаёт нового если не найден
	Get(ctx context.Context, userID, chatID int64) (*entity.User, error)

	// Update атомарно применяет fn к пользователю. Если fn вернула ошибку,
	// пользователь не меняется.
	Update(ctx context.Context, userID, chatID int64, fn func(*entity.User) error) (*entity.User, error)
}
