// Package httpapi serves the health, status and metrics endpoints.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/travelboss/travelbot/internal/ai"
	"github.com/travelboss/travelbot/internal/analytics"
)

const shutdownTimeout = 5 * time.Second

// Pinger reports whether the transcript store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConversationStats reports AI memory usage.
type ConversationStats interface {
	Stats() ai.Stats
}

// Deps holds the server collaborators. Store and Gatherer are optional.
type Deps struct {
	Logger    *slog.Logger
	Addr      string
	Name      string
	Analytics *analytics.Analytics
	AI        ConversationStats
	Store     Pinger
	Gatherer  prometheus.Gatherer
	Connected func() bool
	Now       func() time.Time
}

// Server is the observability HTTP server.
type Server struct {
	deps   Deps
	log    *slog.Logger
	engine *gin.Engine
}

type healthResponse struct {
	Status    string    `json:"status"`
	Connected bool      `json:"connected"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

type statusResponse struct {
	Name      string          `json:"name"`
	Connected bool            `json:"connected"`
	Analytics analytics.Stats `json:"analytics"`
	AI        ai.Stats        `json:"ai"`
	Timestamp time.Time       `json:"timestamp"`
}

func New(deps Deps) *Server {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Connected == nil {
		deps.Connected = func() bool { return false }
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		deps:   deps,
		log:    deps.Logger.With("component", "http_api"),
		engine: gin.New(),
	}
	s.engine.Use(gin.Recovery(), s.requestLogger())

	s.engine.GET("/", s.banner)
	s.engine.GET("/health", s.health)
	s.engine.GET("/status", s.status)
	if deps.Gatherer != nil {
		s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.deps.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", "addr", s.deps.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Error("HTTP server shutdown failed", "error", err)
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.log.Info("HTTP server stopped")
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func (s *Server) banner(c *gin.Context) {
	c.String(http.StatusOK, "%s is running", s.deps.Name)
}

func (s *Server) health(c *gin.Context) {
	resp := healthResponse{
		Status:    "ok",
		Connected: s.deps.Connected(),
		Database:  "disabled",
		Timestamp: s.deps.Now(),
	}
	code := http.StatusOK

	if s.deps.Store != nil {
		resp.Database = "ok"
		if err := s.deps.Store.Ping(c.Request.Context()); err != nil {
			s.log.Warn("Health check: database ping failed", "error", err)
			resp.Database = "error"
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	c.JSON(code, resp)
}

func (s *Server) status(c *gin.Context) {
	c.JSON(http.StatusOK, statusResponse{
		Name:      s.deps.Name,
		Connected: s.deps.Connected(),
		Analytics: s.deps.Analytics.Snapshot(),
		AI:        s.deps.AI.Stats(),
		Timestamp: s.deps.Now(),
	})
}
