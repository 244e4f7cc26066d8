package app

import (
	"context"
	"errors"
	"fmt"

	"repair-bot/internal/domain/entity"
	"repair-bot/internal/domain/port"
)

var ErrWrongState = errors.New("action is not allowed in the current state")

type UserService struct {
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	return s.repo.Update(ctx, userID, chatID, func(u *entity.User) error {
		u.SetState(state)
		return nil
	})
}

// Transition переводит пользователя из состояния from в to. Если пользователь
// уже в другом состоянии, возвращает ErrWrongState и ничего не меняет.
func (s *UserService) Transition(ctx context.Context, userID, chatID int64, from, to entity.UserState) (*entity.User, error) {
	return s.repo.Update(ctx, userID, chatID, func(u *entity.User) error {
		if u.State != from {
			return fmt.Errorf("%w: %s", ErrWrongState, u.State)
		}
		u.SetState(to)
		return nil
	})
}

// Finish возвращает пользователя в меню и запоминает результат проверки.
func (s *UserService) Finish(ctx context.Context, userID, chatID int64, analysisID string) (*entity.User, error) {
	return s.repo.Update(ctx, userID, chatID, func(u *entity.User) error {
		u.SetState(entity.StateMainMenu)
		if analysisID != "" {
			u.LastAnalysisID = analysisID
		}
		return nil
	})
}

func (s *UserService) BeginCheck(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateAwaitingBeforePhoto)
}

func (s *UserService) AwaitAfter(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.Transition(ctx, userID, chatID, entity.StateAwaitingBeforePhoto, entity.StateAwaitingAfterPhoto)
}

func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateMainMenu)
}
