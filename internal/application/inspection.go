package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"repair-bot/internal/domain/entity"
	"repair-bot/internal/domain/port"
)

// InspectionService ведёт диалог проверки: копит снимки и запускает Verifier.
type InspectionService struct {
	users       *UserService
	sessions    port.SessionStore
	verifier    *Verifier
	highlighter port.Highlighter
	log         logrus.FieldLogger
}

// InspectionOutput содержит результат проверки и снимки "после" с подсветкой.
type InspectionOutput struct {
	Result      *entity.AnalysisResult
	Highlighted []HighlightedPhoto
}

// HighlightedPhoto снимок "после" с областями одного снимка "до",
// для которых он оказался лучшим кандидатом.
type HighlightedPhoto struct {
	Reference int
	Candidate int
	Image     []byte
}

// NewInspectionService создаёт сервис, который управляет проверкой ремонта.
func NewInspectionService(users *UserService, sessions port.SessionStore, verifier *Verifier, highlighter port.Highlighter, log logrus.FieldLogger) *InspectionService {
	return &InspectionService{
		users:       users,
		sessions:    sessions,
		verifier:    verifier,
		highlighter: highlighter,
		log:         log,
	}
}

// BeginCheck очищает прошлые снимки и ждёт фото "до".
func (s *InspectionService) BeginCheck(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	if err := s.sessions.Clear(ctx, userID); err != nil {
		return nil, err
	}
	return s.users.BeginCheck(ctx, userID, chatID)
}

// AcceptBeforePhoto сохраняет фото "до" и возвращает их количество.
func (s *InspectionService) AcceptBeforePhoto(ctx context.Context, userID, chatID int64, photo []byte) (int, error) {
	if err := s.requireState(ctx, userID, chatID, entity.StateAwaitingBeforePhoto); err != nil {
		return 0, err
	}
	return s.sessions.AddBefore(ctx, userID, photo)
}

// FinishBefore переводит пользователя к загрузке фото "после".
func (s *InspectionService) FinishBefore(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	if err := s.requireState(ctx, userID, chatID, entity.StateAwaitingBeforePhoto); err != nil {
		return nil, err
	}
	sess, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(sess.Before) == 0 {
		return nil, entity.ErrNoReference
	}
	return s.users.AwaitAfter(ctx, userID, chatID)
}

// AcceptAfterPhoto сохраняет фото "после" и возвращает их количество.
func (s *InspectionService) AcceptAfterPhoto(ctx context.Context, userID, chatID int64, photo []byte) (int, error) {
	if err := s.requireState(ctx, userID, chatID, entity.StateAwaitingAfterPhoto); err != nil {
		return 0, err
	}
	return s.sessions.AddAfter(ctx, userID, photo)
}

// Verify проверяет накопленные снимки. frames означает, что снимки "после"
// это кадры одной съёмки по порядку. Сессия очищается в любом случае,
// кроме ошибки состояния.
func (s *InspectionService) Verify(ctx context.Context, userID, chatID int64, frames bool) (*InspectionOutput, error) {
	if s.verifier == nil {
		return nil, errors.New("verifier is not configured")
	}
	if _, err := s.users.Transition(ctx, userID, chatID, entity.StateAwaitingAfterPhoto, entity.StateProcessing); err != nil {
		return nil, err
	}

	var analysisID string
	defer func() {
		_ = s.sessions.Clear(ctx, userID)
		if _, err := s.users.Finish(ctx, userID, chatID, analysisID); err != nil {
			s.log.WithError(err).WithField("user", userID).Error("reset user after verification")
		}
	}()

	sess, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !sess.Ready() {
		if len(sess.Before) == 0 {
			return nil, entity.ErrNoReference
		}
		return nil, entity.ErrNoCandidates
	}

	req := Request{FrameSequence: frames}
	if req.References, err = decodeAll(sess.Before, "before"); err != nil {
		return nil, err
	}
	if req.Candidates, err = decodeAll(sess.After, "after"); err != nil {
		return nil, err
	}

	result, err := s.verifier.Verify(ctx, req)
	if err != nil {
		return nil, err
	}
	analysisID = result.ID

	return &InspectionOutput{Result: result, Highlighted: s.highlight(ctx, req, result)}, nil
}

// Cancel прерывает проверку.
func (s *InspectionService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	if err := s.sessions.Clear(ctx, userID); err != nil {
		return nil, err
	}
	return s.users.Cancel(ctx, userID, chatID)
}

// highlight рисует каждую область на том снимке "после", который для неё лучший.
// Области группируются по паре (снимок "до", снимок "после") в порядке появления.
func (s *InspectionService) highlight(ctx context.Context, req Request, result *entity.AnalysisResult) []HighlightedPhoto {
	if s.highlighter == nil || !result.HasDefects() {
		return nil
	}

	type key struct{ reference, candidate int }
	var order []key
	groups := make(map[key][]entity.DefectCandidate)
	for _, d := range result.Defects {
		k := key{d.ReferenceIndex, d.BestCandidate}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], d)
	}

	var out []HighlightedPhoto
	for _, k := range order {
		ref := req.References[k.reference]
		view := s.verifier.View(ctx, ref, req.Candidates[k.candidate], k.candidate)

		img, err := s.highlighter.Highlight(view.Image, groups[k])
		if err != nil {
			s.log.WithError(err).Debug("highlight skipped")
			return nil
		}
		out = append(out, HighlightedPhoto{Reference: k.reference, Candidate: k.candidate, Image: img})
	}
	return out
}

func (s *InspectionService) requireState(ctx context.Context, userID, chatID int64, state entity.UserState) error {
	user, err := s.users.Get(ctx, userID, chatID)
	if err != nil {
		return err
	}
	if user.State != state {
		return fmt.Errorf("%w: %s", ErrWrongState, user.State)
	}
	return nil
}

func decodeAll(photos [][]byte, label string) ([]entity.Image, error) {
	out := make([]entity.Image, 0, len(photos))
	for i, p := range photos {
		img, err := entity.DecodeImage(p)
		if err != nil {
			return nil, fmt.Errorf("%s photo %d: %w", label, i+1, err)
		}
		out = append(out, img)
	}
	return out, nil
}
