package telegram

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	app "repair-bot/internal/application"
	"repair-bot/internal/container"
	"repair-bot/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я бот для проверки ремонта по фотографиям.

📸 Отправьте фото места до ремонта и после, а я скажу, устранены ли дефекты.

📋 Команды:
/check — начать проверку
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ /check и фото «до» ремонта (можно несколько)
2️⃣ /after и фото «после» ремонта (можно несколько)
3️⃣ /verify для отдельных снимков или /frames для кадров одной съёмки по порядку
4️⃣ Вы получите вердикт и фото с подсветкой найденных областей

💡 Рекомендации:
• Снимайте с того же ракурса и расстояния
• Снимайте при хорошем освещении
• Фото должно быть чётким

📋 Команды:
/check — начать проверку
/cancel — отменить операцию`

	msgAwaitingBefore  = "📸 Отправьте фото «до» ремонта. Когда закончите, отправьте /after."
	msgAwaitingAfter   = "📸 Теперь отправьте фото «после» ремонта. Затем /verify или /frames."
	msgBeforeSaved     = "✅ Фото «до» №%d сохранено. Ещё фото или /after."
	msgAfterSaved      = "✅ Фото «после» №%d сохранено. Ещё фото, /verify или /frames."
	msgCancelled       = "❌ Операция отменена. Отправьте /check для новой проверки."
	msgSendPhoto       = "📸 Отправьте /check, чтобы начать проверку ремонта."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Сравниваю снимки, это может занять до минуты..."
	msgBusy            = "⏳ Проверка уже идёт, дождитесь результата."
	msgWrongStep       = "⚠️ Сейчас это действие недоступно. Отправьте /check, чтобы начать заново."
	msgNoBefore        = "⚠️ Сначала отправьте хотя бы одно фото «до» ремонта."
	msgNoAfter         = "⚠️ Сначала отправьте хотя бы одно фото «после» ремонта."
	msgBadPhoto        = "⚠️ Не удалось прочитать одно из фото. Начните заново с /check."
	msgTimeout         = "⌛ Проверка не успела завершиться. Попробуйте отправить меньше снимков."
	msgProcessingError = "⚠️ Не удалось обработать изображения. Попробуйте сделать другие фото."
)

// Bot представляет Telegram-бота
type Bot struct {
	api        *tgbotapi.BotAPI
	users      *app.UserService
	inspection *app.InspectionService
	log        logrus.FieldLogger
	http       *http.Client
}

// NewBot создаёт нового бота
func NewBot(token string, c *container.Container, log logrus.FieldLogger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.WithField("account", api.Self.UserName).Info("Authorized")

	return &Bot{
		api:        api,
		users:      c.UserService,
		inspection: c.InspectionService,
		log:        log,
		http:       http.DefaultClient,
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены контекста
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.users.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.log.WithError(err).Error("get user")
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user)
		return
	}

	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg, user)
		return
	}

	b.sendMessage(msg.Chat.ID, replyForState(user.State))
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	chatID := msg.Chat.ID
	if user.Busy() && msg.Command() != "help" {
		b.sendMessage(chatID, msgBusy)
		return
	}

	switch msg.Command() {
	case "start":
		if _, err := b.inspection.Cancel(ctx, user.ID, chatID); err != nil {
			b.log.WithError(err).Error("reset user")
		}
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "check":
		if _, err := b.inspection.BeginCheck(ctx, user.ID, chatID); err != nil {
			b.replyError(chatID, err)
			return
		}
		b.sendMessage(chatID, msgAwaitingBefore)

	case "after":
		if _, err := b.inspection.FinishBefore(ctx, user.ID, chatID); err != nil {
			b.replyError(chatID, err)
			return
		}
		b.sendMessage(chatID, msgAwaitingAfter)

	case "verify":
		b.startVerification(ctx, user, chatID, false)

	case "frames":
		b.startVerification(ctx, user, chatID, true)

	case "cancel":
		if _, err := b.inspection.Cancel(ctx, user.ID, chatID); err != nil {
			b.log.WithError(err).Error("cancel")
		}
		b.sendMessage(chatID, msgCancelled)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handlePhoto сохраняет фото в текущую проверку
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	chatID := msg.Chat.ID

	var add func(context.Context, int64, int64, []byte) (int, error)
	var reply string
	switch user.State {
	case entity.StateAwaitingBeforePhoto:
		add, reply = b.inspection.AcceptBeforePhoto, msgBeforeSaved
	case entity.StateAwaitingAfterPhoto:
		add, reply = b.inspection.AcceptAfterPhoto, msgAfterSaved
	default:
		b.sendMessage(chatID, replyForState(user.State))
		return
	}

	// Получаем файл с максимальным разрешением
	photo := msg.Photo[len(msg.Photo)-1]

	data, err := b.downloadFile(ctx, photo.FileID)
	if err != nil {
		b.log.WithError(err).Error("download photo")
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	n, err := add(ctx, user.ID, chatID, data)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.sendMessage(chatID, fmt.Sprintf(reply, n))
}

// startVerification запускает проверку в фоне, чтобы не блокировать остальные чаты
func (b *Bot) startVerification(ctx context.Context, user *entity.User, chatID int64, frames bool) {
	if user.State != entity.StateAwaitingAfterPhoto {
		b.sendMessage(chatID, msgWrongStep)
		return
	}

	b.sendMessage(chatID, msgProcessing)
	userID := user.ID

	go func() {
		out, err := b.inspection.Verify(ctx, userID, chatID, frames)
		if err != nil {
			b.log.WithError(err).WithField("user", userID).Warn("verification failed")
			b.replyError(chatID, err)
			return
		}

		b.sendMessage(chatID, FormatResult(out.Result))
		for _, h := range out.Highlighted {
			b.sendPhoto(chatID, h.Image, PhotoCaption(h))
		}
	}()
}

func (b *Bot) replyError(chatID int64, err error) {
	switch {
	case errors.Is(err, app.ErrWrongState):
		b.sendMessage(chatID, msgWrongStep)
	case errors.Is(err, entity.ErrNoReference):
		b.sendMessage(chatID, msgNoBefore)
	case errors.Is(err, entity.ErrNoCandidates):
		b.sendMessage(chatID, msgNoAfter)
	case errors.Is(err, entity.ErrVerificationIncomplete):
		b.sendMessage(chatID, msgTimeout)
	case errors.Is(err, entity.ErrEmptyImage), errors.Is(err, image.ErrFormat):
		b.sendMessage(chatID, msgBadPhoto)
	default:
		b.log.WithError(err).Error("request failed")
		b.sendMessage(chatID, msgProcessingError)
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.WithError(err).Error("send message")
	}
}

func (b *Bot) sendPhoto(chatID int64, jpeg []byte, caption string) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "result.jpg", Bytes: jpeg})
	photo.Caption = caption
	if _, err := b.api.Send(photo); err != nil {
		b.log.WithError(err).Error("send photo")
	}
}

func replyForState(state entity.UserState) string {
	switch state {
	case entity.StateAwaitingBeforePhoto:
		return msgAwaitingBefore
	case entity.StateAwaitingAfterPhoto:
		return msgAwaitingAfter
	case entity.StateProcessing:
		return msgBusy
	default:
		return msgSendPhoto
	}
}
