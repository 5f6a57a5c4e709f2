package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	app "aqua-vision/internal/application"
	"aqua-vision/internal/domain/entity"
	"aqua-vision/internal/logger"
)

const (
	msgStart = `👋 Привет! Я бот для оценки загрязнённости пробы воды по фотографии.

📸 Отправьте мне фото пробы, и я посчитаю пузырьки воздуха и частицы водорослей.

📋 Команды:
/check — начать проверку пробы
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте фото пробы воды
2️⃣ Бот проанализирует изображение
3️⃣ Вы получите результат: оценку PPM + фото с разметкой

💡 Рекомендации:
• Снимайте пробу сверху при равномерном освещении
• Проба должна занимать весь кадр
• Фото должно быть чётким

🔵 синие окружности — пузырьки воздуха
🔴 красные контуры — водоросли

📋 Команды:
/check — начать проверку
/cancel — отменить операцию`

	msgAwaitingPhoto   = "📸 Отправьте фото пробы воды для проверки."
	msgCancelled       = "❌ Операция отменена. Отправьте /check для новой проверки."
	msgSendPhoto       = "📸 Пожалуйста, отправьте фото пробы воды."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgBusy            = "⏳ Предыдущая проба ещё обрабатывается, подождите."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте сделать другое фото."
)

// Bot представляет Telegram-бота
type Bot struct {
	api      *tgbotapi.BotAPI
	users    *app.UserService
	analysis *app.AnalysisService
	slots    chan struct{}
	wg       sync.WaitGroup
}

// NewBot создаёт нового бота
func NewBot(token string, users *app.UserService, analysis *app.AnalysisService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	logger.WithField("account", api.Self.UserName).Info("Telegram bot authorized")

	return &Bot{
		api:      api,
		users:    users,
		analysis: analysis,
		// не больше одного анализа на ядро
		slots: make(chan struct{}, runtime.NumCPU()),
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Обработка фото
	if fileID, ok := imageFileID(msg); ok {
		user, err := b.users.Get(ctx, msg.From.ID, msg.Chat.ID)
		if err != nil {
			logger.WithError(err).Error("Error getting user")
			return
		}
		if user.State == entity.StateProcessing {
			b.sendMessage(msg.Chat.ID, msgBusy)
			return
		}

		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.slots <- struct{}{}
			defer func() { <-b.slots }()
			b.handlePhoto(ctx, msg, fileID)
		}()
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	var err error

	switch msg.Command() {
	case "start":
		_, err = b.users.Cancel(ctx, msg.From.ID, msg.Chat.ID)
		b.sendMessage(msg.Chat.ID, msgStart)

	case "help":
		b.sendMessage(msg.Chat.ID, msgHelp)

	case "check":
		_, err = b.users.BeginCheck(ctx, msg.From.ID, msg.Chat.ID)
		b.sendMessage(msg.Chat.ID, msgAwaitingPhoto)

	case "cancel":
		_, err = b.users.Cancel(ctx, msg.From.ID, msg.Chat.ID)
		b.sendMessage(msg.Chat.ID, msgCancelled)

	default:
		b.sendMessage(msg.Chat.ID, msgUnknownCommand)
	}

	if err != nil {
		logger.WithError(err).WithField("command", msg.Command()).Error("Error updating user state")
	}
}

// handlePhoto скачивает фото пробы, анализирует и отвечает отчётом с разметкой
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, fileID string) {
	b.sendMessage(msg.Chat.ID, msgProcessing)

	imageData, err := b.downloadFile(fileID)
	if err != nil {
		logger.WithError(err).Error("Error downloading photo")
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	out, err := b.analysis.AcceptSample(ctx, msg.From.ID, msg.Chat.ID, imageData)
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"chat_id": msg.Chat.ID,
			"bytes":   len(imageData),
		}).Error("Error analysing sample")
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	photo := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileBytes{Name: "sample" + fileExt(out.ContentType), Bytes: out.Image})
	photo.Caption = formatReport(out.Report)
	if _, err := b.api.Send(photo); err != nil {
		logger.WithError(err).Error("Error sending annotated photo")
		b.sendMessage(msg.Chat.ID, photo.Caption)
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	fileURL := file.Link(b.api.Token)

	resp, err := http.Get(fileURL)
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
		logger.WithError(err).WithField("chat_id", chatID).Error("Error sending message")
	}
}

// imageFileID возвращает файл с максимальным разрешением либо документ-картинку.
func imageFileID(msg *tgbotapi.Message) (string, bool) {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, true
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID, true
	}
	return "", false
}

func fileExt(contentType string) string {
	if contentType == "image/png" {
		return ".png"
	}
	return ".jpg"
}

// formatReport текст отчёта для подписи к фото.
func formatReport(r entity.ImpurityReport) string {
	verdict := "✅ Вода пригодна для питья (Safe)"
	if r.Drinkability != entity.Safe {
		verdict = "⚠️ Вода непригодна для питья (Unsafe)"
	}

	return fmt.Sprintf(`🔬 Результат анализа пробы:

🔵 Пузырьки воздуха: %d
🔴 Водоросли: %d
Σ Всего примесей: %d
📈 Оценка: %.2f ppm

%s`, r.BubbleCount, r.AlgaeCount, r.TotalImpurities, r.PPM, verdict)
}
