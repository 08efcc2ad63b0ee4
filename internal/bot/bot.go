// Package bot wires the TravelBot components together and manages their
// lifecycle.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Listener receives updates from the messaging transport until ctx is
// cancelled.
type Listener interface {
	Start(ctx context.Context)
}

// Transport tracks whether the messaging connection is up.
type Transport interface {
	Connect(ctx context.Context) error
	Disconnect()
}

// Runner is a background component that runs until ctx is cancelled.
type Runner interface {
	Run(ctx context.Context) error
}

// Components are the parts managed by Bot. HTTP and Recorder are optional.
type Components struct {
	Listener  Listener
	Transport Transport
	Scheduler *Scheduler
	HTTP      Runner
	Recorder  Runner
}

// Bot represents the main application and manages its components' lifecycle.
type Bot struct {
	logger *slog.Logger
	c      Components
}

func NewBot(logger *slog.Logger, c Components) *Bot {
	return &Bot{
		logger: logger.With("component", "bot_orchestrator"),
		c:      c,
	}
}

// Run connects the transport and starts all components. It returns when ctx
// is cancelled or any component fails; the transport is marked disconnected
// on the way out.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	if err := b.c.Transport.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect transport: %w", err)
	}
	defer b.c.Transport.Disconnect()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting Telegram bot listener...")

		b.c.Listener.Start(gCtx)
		b.logger.Info("Telegram bot listener stopped.")

		if gCtx.Err() == nil {
			b.logger.Warn("Telegram bot listener stopped unexpectedly without context cancellation.")
			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		b.logger.Info("Starting scheduler...")
		if err := b.c.Scheduler.Start(); err != nil {
			b.logger.Error("Failed to start scheduler", "error", err)
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")

		if err := b.c.Scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	if b.c.HTTP != nil {
		g.Go(func() error {
			return b.c.HTTP.Run(gCtx)
		})
	}

	if b.c.Recorder != nil {
		g.Go(func() error {
			return b.c.Recorder.Run(gCtx)
		})
	}

	b.logger.Info("Bot orchestrator running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}
