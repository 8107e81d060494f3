package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram connects the handler to the Telegram Bot API over long polling.
type Telegram struct {
	api     *tgbotapi.BotAPI
	handler *Handler
	cancel  context.CancelFunc
}

type TelegramConfig struct {
	Token string
	Debug bool
}

func NewTelegram(cfg TelegramConfig) (*Telegram, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	api.Debug = cfg.Debug

	return &Telegram{api: api}, nil
}

// SetHandler installs the command handler. Must be called before Start.
func (t *Telegram) SetHandler(h *Handler) {
	t.handler = h
}

// Start begins consuming updates until ctx is canceled. Each update is
// dispatched on its own goroutine so a slow fetch never blocks polling.
func (t *Telegram) Start(ctx context.Context) error {
	if t.handler == nil {
		return fmt.Errorf("telegram: no handler installed")
	}

	ctx, t.cancel = context.WithCancel(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := t.api.GetUpdatesChan(u)

	go t.consume(ctx, updates)

	slog.Info("telegram connected", slog.String("username", t.api.Self.UserName))
	return nil
}

func (t *Telegram) Stop() {
	if t.cancel != nil {
		t.cancel()
	}
	t.api.StopReceivingUpdates()
}

func (t *Telegram) consume(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update := <-updates:
			switch {
			case update.Message != nil && update.Message.Text != "" && !update.Message.From.IsBot:
				msg := update.Message
				go t.handler.OnTextCommand(ctx, msg.From.ID, msg.Chat.ID, msg.Text)

			case update.CallbackQuery != nil && strings.HasPrefix(update.CallbackQuery.Data, selectionPrefix):
				cb := update.CallbackQuery
				t.answerCallback(cb.ID)
				go t.handler.OnSelection(ctx, cb.From.ID, cb.Message.Chat.ID, cb.Message.MessageID, cb.Data)
			}
		}
	}
}

// answerCallback acknowledges the button press so the client stops showing a
// spinner. Failures are cosmetic.
func (t *Telegram) answerCallback(id string) {
	if _, err := t.api.Request(tgbotapi.NewCallback(id, "")); err != nil {
		slog.Debug("callback ack failed", slog.String("error", err.Error()))
	}
}

func (t *Telegram) SendMessage(chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	sent, err := t.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (t *Telegram) EditMessage(chatID int64, messageID int, text string) error {
	_, err := t.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text))
	return err
}

func (t *Telegram) EditMessageWithList(chatID int64, messageID int, text string, items []ListItem) error {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(items))
	for _, item := range items {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(item.Label, item.Data),
		))
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err := t.api.Send(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup))
	return err
}

func (t *Telegram) SendAudio(chatID int64, audio AudioMessage) error {
	msg := tgbotapi.NewAudio(chatID, tgbotapi.FilePath(audio.Path))
	msg.Title = audio.Title
	msg.Performer = audio.Performer
	msg.Caption = audio.Caption
	_, err := t.api.Send(msg)
	return err
}

func (t *Telegram) DeleteMessage(chatID int64, messageID int) error {
	_, err := t.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}
