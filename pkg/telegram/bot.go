// Package telegram hosts the conversational surface of the assistant. It
// receives updates over long polling, normalizes them into workflow states and
// replies with whatever the turn produced.
package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/jpalomar/gastobot/pkg/filecache"
	"github.com/jpalomar/gastobot/pkg/models"
	"github.com/jpalomar/gastobot/pkg/objectstore"
)

const (
	updateTimeoutSeconds = 60
	turnTimeout          = 2 * time.Minute

	textAckFallback  = "✅ Got it. Thanks!"
	photoAckFallback = "✅ Image received. Thanks!"
	errorReply       = "❌ An error occurred. Please try again later."

	welcomeMessage = `Welcome to the expense assistant! 👋

I can handle:
• 📝 Text messages about your expenses
• 🖼️ Receipt photos (JPG, PNG, WebP)

Send a receipt photo and I'll log the expense, or ask me about the
status of your submitted expenses.

Commands:
/start - Show this message
/help - Get help`

	helpMessage = `How to use this bot:

1. Send a photo of a receipt and I'll extract and log the expense.
2. Ask things like "show my expenses" or "what is pending approval?".
3. Send corrections as text and I'll answer what I can.`
)

// TurnRunner executes one conversational turn. The returned state always
// carries a response text.
type TurnRunner interface {
	Run(ctx context.Context, initial models.WorkflowState) models.WorkflowState
}

type Bot struct {
	api    *tgbotapi.BotAPI
	runner TurnRunner
	store  objectstore.ObjectStore
	cache  *filecache.Cache
	client *http.Client
	logger *slog.Logger
}

func NewBot(logger *slog.Logger, token string, runner TurnRunner, store objectstore.ObjectStore, cache *filecache.Cache) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram api client: %w", err)
	}

	return &Bot{
		api:    api,
		runner: runner,
		store:  store,
		cache:  cache,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger.With("module", "telegram"),
	}, nil
}

// Start runs the long polling loop until the context is canceled. Updates are
// handled sequentially; a failed update never stops the loop.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.InfoContext(ctx, "Starting long polling", "bot_username", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()

			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}

			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	message := update.Message
	if message == nil || message.From == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, turnTimeout)
	defer cancel()

	switch {
	case message.IsCommand():
		b.handleCommand(ctx, message)
	case len(message.Photo) > 0:
		b.handlePhoto(ctx, message)
	case message.Text != "":
		b.handleText(ctx, message)
	}
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.reply(ctx, message.Chat.ID, welcomeMessage)
	case "help":
		b.reply(ctx, message.Chat.ID, helpMessage)
	}
}

func (b *Bot) handleText(ctx context.Context, message *tgbotapi.Message) {
	state := b.initialState(message, message.Text, "")

	logger := b.logger.With("turn_id", state.TurnID, "external_user_id", state.Identity.ExternalID)
	logger.InfoContext(ctx, "Handling text message")

	final := b.runner.Run(ctx, state)

	b.reply(ctx, message.Chat.ID, orFallback(final.ResponseText, textAckFallback))
}

func (b *Bot) handlePhoto(ctx context.Context, message *tgbotapi.Message) {
	state := b.initialState(message, message.Caption, "")

	logger := b.logger.With("turn_id", state.TurnID, "external_user_id", state.Identity.ExternalID)

	// Telegram sends several renditions of the same photo; the last one is
	// the largest.
	photo := message.Photo[len(message.Photo)-1]
	logger.InfoContext(ctx, "Handling photo message", "file_id", photo.FileID, "width", photo.Width, "height", photo.Height)

	fileRef, err := b.ingestPhoto(ctx, state.Identity.ExternalID, photo.FileID)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to ingest photo", "error", err)
		b.reply(ctx, message.Chat.ID, errorReply)

		return
	}

	state.FileRef = fileRef

	final := b.runner.Run(ctx, state)

	b.reply(ctx, message.Chat.ID, orFallback(final.ResponseText, photoAckFallback))
}

// ingestPhoto downloads the photo from Telegram, uploads it to the object
// store under a per-user key and warms the local cache. It returns the object
// key that the rest of the turn uses as file reference.
func (b *Bot) ingestPhoto(ctx context.Context, externalID, fileID string) (string, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return "", fmt.Errorf("failed to resolve telegram file %s: %w", fileID, err)
	}

	data, err := b.download(ctx, file.Link(b.api.Token))
	if err != nil {
		return "", err
	}

	suffix := path.Ext(file.FilePath)
	if suffix == "" {
		suffix = ".jpg"
	}

	contentType := mime.TypeByExtension(suffix)
	if contentType == "" {
		contentType = "image/jpeg"
	}

	timestamp := time.Now().UTC().Format("20060102T150405Z")
	key := fmt.Sprintf("telegram/%s/%s_%s%s", externalID, timestamp, fileID, suffix)

	err = b.store.Put(ctx, key, data, contentType, map[string]string{"file_id": fileID})
	if err != nil {
		return "", fmt.Errorf("failed to upload photo %s: %w", fileID, err)
	}

	if _, err := b.cache.Store(key, data); err != nil {
		b.logger.WarnContext(ctx, "Failed to warm file cache", "key", key, "error", err)
	}

	return key, nil
}

func (b *Bot) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download telegram file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram file download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read telegram file body: %w", err)
	}

	return data, nil
}

func (b *Bot) initialState(message *tgbotapi.Message, userInput, fileRef string) models.WorkflowState {
	from := message.From

	return models.WorkflowState{
		TurnID:    uuid.NewString(),
		UserInput: strings.TrimSpace(userInput),
		FileRef:   fileRef,
		Identity: models.UserIdentity{
			ExternalID: strconv.FormatInt(from.ID, 10),
			Username:   from.UserName,
			FirstName:  from.FirstName,
			LastName:   from.LastName,
		},
	}
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)

	if _, err := b.api.Send(msg); err != nil {
		b.logger.ErrorContext(ctx, "Failed to send reply", "chat_id", chatID, "error", err)
	}
}

func orFallback(text, fallback string) string {
	if strings.TrimSpace(text) == "" {
		return fallback
	}

	return text
}
