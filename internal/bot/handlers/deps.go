// Package handlers adapts Telegram updates to the message router.
package handlers

import (
	"context"
	"log/slog"

	"github.com/travelboss/travelbot/internal/config"
	"github.com/travelboss/travelbot/internal/router"
)

// MessageRouter handles one normalized inbound message.
type MessageRouter interface {
	Handle(ctx context.Context, in router.Inbound)
}

// HandlerDeps provides dependencies for Telegram handlers.
type HandlerDeps struct {
	Logger *slog.Logger
	Config *config.Config
	Router MessageRouter
}
