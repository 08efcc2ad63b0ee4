package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/travelboss/travelbot/internal/router"
)

type messageHandler struct {
	deps HandlerDeps
}

// NewMessageHandler creates the default handler. Every message update is
// normalized and passed to the router; other update types are ignored.
func NewMessageHandler(deps HandlerDeps) bot.HandlerFunc {
	return messageHandler{deps}.Handle
}

func (h messageHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "message")

	if update == nil || update.Message == nil {
		return
	}
	in, ok := toInbound(update.Message, h.deps.Config.Telegram.AdminID)
	if !ok {
		log.DebugContext(ctx, "Ignoring update without sender or text", "update_id", update.ID)
		return
	}

	h.deps.Router.Handle(ctx, in)
}

// toInbound maps a Telegram message to a router message. The user ID is the
// chat ID so replies go back to the same chat.
func toInbound(msg *models.Message, adminID int64) (router.Inbound, bool) {
	if msg.From == nil {
		return router.Inbound{}, false
	}

	body := msg.Text
	if body == "" {
		body = msg.Caption
	}
	if strings.TrimSpace(body) == "" {
		return router.Inbound{}, false
	}

	return router.Inbound{
		SenderID:   strconv.FormatInt(msg.Chat.ID, 10),
		Body:       body,
		FromSelf:   msg.From.IsBot,
		IsGroup:    string(msg.Chat.Type) != "private",
		IsOperator: adminID != 0 && msg.From.ID == adminID,
	}, true
}
