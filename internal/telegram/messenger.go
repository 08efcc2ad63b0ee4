package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/travelboss/travelbot/internal/media"
)

// Messenger sends replies to private chats. User IDs are chat IDs in
// decimal.
type Messenger struct {
	bot       *bot.Bot
	log       *slog.Logger
	connected atomic.Bool
}

// NewMessenger creates a Messenger. b may be nil and attached later with
// Bind, since the client needs its update handler at construction.
func NewMessenger(b *bot.Bot, log *slog.Logger) *Messenger {
	return &Messenger{bot: b, log: log.With("component", "telegram_messenger")}
}

// Bind sets the client. It must be called before any send.
func (m *Messenger) Bind(b *bot.Bot) {
	m.bot = b
}

// Connect checks the token with getMe and marks the transport connected.
func (m *Messenger) Connect(ctx context.Context) error {
	me, err := m.bot.GetMe(ctx)
	if err != nil {
		m.connected.Store(false)
		return fmt.Errorf("failed to get bot info: %w", err)
	}
	m.connected.Store(true)
	m.log.Info("Connected to Telegram", "bot_id", me.ID, "bot_username", me.Username)
	return nil
}

// Disconnect marks the transport as down.
func (m *Messenger) Disconnect() {
	m.connected.Store(false)
}

// Connected reports whether the last Connect succeeded and Disconnect has not
// been called since.
func (m *Messenger) Connected() bool {
	return m.connected.Load()
}

// SendText sends a plain text message to the chat identified by to.
func (m *Messenger) SendText(ctx context.Context, to, text string) error {
	chatID, err := parseChatID(to)
	if err != nil {
		return err
	}
	if _, err := m.bot.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		return fmt.Errorf("sendMessage to %d: %w", chatID, err)
	}
	return nil
}

// SendMedia uploads content as a photo with an optional caption.
func (m *Messenger) SendMedia(ctx context.Context, to, name string, content io.Reader, caption string) error {
	chatID, err := parseChatID(to)
	if err != nil {
		return err
	}
	_, err = m.bot.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:  chatID,
		Photo:   &models.InputFileUpload{Filename: name, Data: content},
		Caption: caption,
	})
	if err != nil {
		return fmt.Errorf("sendPhoto %s to %d: %w", name, chatID, err)
	}
	return nil
}

// SendLocation sends loc as a venue so the label is shown with the pin.
func (m *Messenger) SendLocation(ctx context.Context, to string, loc media.Location) error {
	chatID, err := parseChatID(to)
	if err != nil {
		return err
	}
	_, err = m.bot.SendVenue(ctx, &bot.SendVenueParams{
		ChatID:    chatID,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Title:     loc.Label,
		Address:   fmt.Sprintf("%.6f, %.6f", loc.Latitude, loc.Longitude),
	})
	if err != nil {
		return fmt.Errorf("sendVenue to %d: %w", chatID, err)
	}
	return nil
}

func parseChatID(to string) (int64, error) {
	id, err := strconv.ParseInt(to, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chat id %q: %w", to, err)
	}
	return id, nil
}
