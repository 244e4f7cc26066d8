package entity

import "time"

// UserState шаг диалога проверки ремонта
type UserState string

const (
	StateMainMenu            UserState = "main_menu"             // В главном меню
	StateAwaitingBeforePhoto UserState = "awaiting_before_photo" // Ожидание фото "до" ремонта
	StateAwaitingAfterPhoto  UserState = "awaiting_after_photo"  // Ожидание фото "после" ремонта
	StateProcessing          UserState = "processing"            // Идёт проверка
)

// User собеседник бота и его текущая проверка
type User struct {
	ID     int64
	ChatID int64
	State  UserState

	CheckStartedAt time.Time // начало текущей проверки, нулевое вне проверки
	LastAnalysisID string    // идентификатор последнего результата
}

func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState переводит пользователя на новый шаг. Возврат в меню завершает проверку.
func (u *User) SetState(state UserState) {
	u.State = state
	switch state {
	case StateMainMenu:
		u.CheckStartedAt = time.Time{}
	case StateAwaitingBeforePhoto:
		u.CheckStartedAt = time.Now()
	}
}

func (u *User) Busy() bool {
	return u.State == StateProcessing
}
