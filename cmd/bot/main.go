// Package main contains the entrypoint for the TravelBot support bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	tgbot "github.com/go-telegram/bot"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/travelboss/travelbot/internal/ai"
	"github.com/travelboss/travelbot/internal/analytics"
	"github.com/travelboss/travelbot/internal/bot"
	"github.com/travelboss/travelbot/internal/bot/handlers"
	"github.com/travelboss/travelbot/internal/bot/tasks"
	"github.com/travelboss/travelbot/internal/config"
	"github.com/travelboss/travelbot/internal/database"
	"github.com/travelboss/travelbot/internal/fallback"
	"github.com/travelboss/travelbot/internal/httpapi"
	"github.com/travelboss/travelbot/internal/intent"
	"github.com/travelboss/travelbot/internal/logger"
	"github.com/travelboss/travelbot/internal/media"
	"github.com/travelboss/travelbot/internal/memory"
	"github.com/travelboss/travelbot/internal/ratelimit"
	"github.com/travelboss/travelbot/internal/router"
	"github.com/travelboss/travelbot/internal/sanitize"
	"github.com/travelboss/travelbot/internal/session"
	"github.com/travelboss/travelbot/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires all components, runs them until ctx is cancelled and returns the
// process exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	for _, w := range cfg.CredentialWarnings() {
		log.Warn("Configuration warning", "warning", w)
	}

	loc, err := time.LoadLocation(cfg.Business.Timezone)
	if err != nil {
		log.Error("Invalid business timezone", "timezone", cfg.Business.Timezone, "error", err)
		return 1
	}

	db, err := database.NewDB(cfg.Database.Path, log)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db, log)
	store := database.NewStore(db, log)
	recorder := database.NewRecorder(store, database.DefaultRecorderBuffer, log)

	provider, err := ai.NewProvider(ctx, cfg.AI, log)
	if err != nil {
		log.Error("Failed to initialize AI provider", "provider", cfg.AI.Provider, "error", err)
		return 1
	}
	provider = ai.WithCircuitBreaker(provider, cfg.AI.Breaker, log)
	responder := fallback.NewResponder(fallback.Facts{
		Address:    cfg.Business.Address,
		Directions: cfg.Business.Directions,
		Hours:      cfg.Business.Hours,
		Phone:      cfg.Business.Phone,
		Email:      cfg.Business.Email,
		MapsURL:    cfg.Business.MapsURL,
	})
	orchestrator := ai.NewOrchestrator(provider, memory.NewStore(cfg.AI.HistoryLimit), responder, cfg.AI, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	stats := analytics.New(reg)

	limiter := ratelimit.New()
	sessions := session.NewRegistry()
	messenger := telegram.NewMessenger(nil, log)

	rt, err := router.New(router.Deps{
		Logger:     log,
		Config:     cfg,
		Limiter:    limiter,
		Sessions:   sessions,
		Classifier: intent.NewClassifier(cfg.Intents),
		AI:         orchestrator,
		Analytics:  stats,
		Media:      media.NewStore(cfg.Media),
		Messenger:  messenger,
		Recorder:   recorder,
		Sanitizer:  sanitize.NewPolicy(),
		Connected:  messenger.Connected,
	})
	if err != nil {
		log.Error("Failed to create message router", "error", err)
		return 1
	}

	hDeps := handlers.HandlerDeps{
		Logger: log,
		Config: cfg,
		Router: rt,
	}
	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewMessageHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}
	messenger.Bind(tg)

	tDeps := tasks.TaskDeps{
		Logger:   log,
		Config:   cfg,
		Limiter:  limiter,
		Sessions: sessions,
		AI:       orchestrator,
		Store:    store,
	}
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps), loc)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	components := bot.Components{
		Listener:  tg,
		Transport: messenger,
		Scheduler: sched,
		Recorder:  recorder,
	}
	if cfg.HTTP.Enabled {
		components.HTTP = httpapi.New(httpapi.Deps{
			Logger:    log,
			Addr:      cfg.HTTP.Addr,
			Name:      cfg.Business.Name,
			Analytics: stats,
			AI:        orchestrator,
			Store:     store,
			Gatherer:  reg,
			Connected: messenger.Connected,
		})
	}

	app := bot.NewBot(log, components)

	log.Info("Starting bot...", "provider", orchestrator.ProviderName())
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		// Allow logs to flush before exiting on error
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
