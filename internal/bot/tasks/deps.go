// Package tasks implements the scheduled sweeps and maintenance jobs.
package tasks

import (
	"log/slog"
	"time"

	"github.com/travelboss/travelbot/internal/ai"
	"github.com/travelboss/travelbot/internal/config"
	"github.com/travelboss/travelbot/internal/database"
	"github.com/travelboss/travelbot/internal/ratelimit"
	"github.com/travelboss/travelbot/internal/session"
)

// SessionSweeper is the part of the session registry the eviction task uses.
type SessionSweeper interface {
	EvictIdle(now time.Time, timeout time.Duration) []string
	Get(userID string) (session.Session, bool)
	Len() int
}

// TaskDeps contains the dependencies of scheduled tasks. Store may be nil
// when transcripts are disabled.
type TaskDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Limiter  *ratelimit.Limiter
	Sessions SessionSweeper
	AI       *ai.Orchestrator
	Store    database.Store

	// Now defaults to time.Now.
	Now func() time.Time
}

func (d TaskDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
