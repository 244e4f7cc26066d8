package port

import (
	"context"

	"repair-bot/internal/domain/entity"
)

// SessionStore хранилище фотографий текущей проверки
type SessionStore interface {
	// AddBefore добавляет снимок "до" и возвращает их количество
	AddBefore(ctx context.Context, userID int64, photo []byte) (int, error)

	// AddAfter добавляет снимок "после" и возвращает их количество
	AddAfter(ctx context.Context, userID int64, photo []byte) (int, error)

	// Get возвращает копию сессии, пустую если её нет
	Get(ctx context.Context, userID int64) (*entity.Session, error)

	// Clear удаляет сессию
	Clear(ctx context.Context, userID int64) error
}
