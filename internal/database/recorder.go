package database

import (
	"context"
	"log/slog"
	"time"
)

// DefaultRecorderBuffer is the number of messages queued before Record starts
// dropping.
const DefaultRecorderBuffer = 256

const saveTimeout = 5 * time.Second

// Recorder writes transcript messages in the background so message handling
// never waits on SQLite. Failures are logged and the message is dropped.
type Recorder struct {
	store  Store
	queue  chan Message
	logger *slog.Logger
}

// NewRecorder creates a Recorder. Run must be started for messages to be
// written.
func NewRecorder(store Store, buffer int, logger *slog.Logger) *Recorder {
	if buffer <= 0 {
		buffer = DefaultRecorderBuffer
	}
	return &Recorder{
		store:  store,
		queue:  make(chan Message, buffer),
		logger: logger.With("component", "transcript_recorder"),
	}
}

// Record queues m. It never blocks.
func (r *Recorder) Record(m Message) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	select {
	case r.queue <- m:
	default:
		r.logger.Warn("Transcript queue full, dropping message", "user_id", m.UserID, "direction", m.Direction)
	}
}

// Run writes queued messages until ctx is done, then flushes what is left.
func (r *Recorder) Run(ctx context.Context) error {
	for {
		select {
		case m := <-r.queue:
			r.save(ctx, m)
		case <-ctx.Done():
			r.flush()
			return nil
		}
	}
}

func (r *Recorder) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	for {
		select {
		case m := <-r.queue:
			r.save(ctx, m)
		default:
			return
		}
	}
}

func (r *Recorder) save(ctx context.Context, m Message) {
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()
	if err := r.store.SaveMessage(saveCtx, &m); err != nil {
		r.logger.Error("Failed to save transcript message", "user_id", m.UserID, "correlation_id", m.CorrelationID, "error", err)
	}
}
