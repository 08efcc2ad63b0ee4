package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store is the transcript data access layer.
type Store interface {
	Ping(ctx context.Context) error

	// SaveMessage inserts message and sets its ID. A zero CreatedAt is
	// replaced by the current time.
	SaveMessage(ctx context.Context, message *Message) error

	// RecentMessages returns up to limit messages of userID, oldest first.
	RecentMessages(ctx context.Context, userID string, limit int) ([]Message, error)

	CountMessages(ctx context.Context) (int64, error)

	// PurgeBefore deletes messages created before cutoff and returns how
	// many were removed.
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// RunSQLMaintenance runs VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore wraps db.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "transcript_store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) SaveMessage(ctx context.Context, message *Message) error {
	if message == nil {
		return errors.New("cannot save nil message")
	}
	if message.UserID == "" {
		return errors.New("message must have a user_id")
	}
	if message.Direction != DirectionInbound && message.Direction != DirectionOutbound {
		return fmt.Errorf("invalid message direction %q", message.Direction)
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	message.CreatedAt = message.CreatedAt.UTC()

	res, err := s.db.NamedExecContext(ctx, `
		INSERT INTO messages (user_id, direction, body, correlation_id, created_at)
		VALUES (:user_id, :direction, :body, :correlation_id, :created_at)`, message)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read message id: %w", err)
	}
	message.ID = id
	return nil
}

func (s *sqlxStore) RecentMessages(ctx context.Context, userID string, limit int) ([]Message, error) {
	if limit <= 0 {
		return nil, nil
	}

	var msgs []Message
	err := s.db.SelectContext(ctx, &msgs, `
		SELECT id, user_id, direction, body, correlation_id, created_at
		FROM (
			SELECT * FROM messages WHERE user_id = ? ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages for user %s: %w", userID, err)
	}
	return msgs, nil
}

func (s *sqlxStore) CountMessages(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM messages"); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return n, nil
}

func (s *sqlxStore) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM messages WHERE created_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge messages: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read purged row count: %w", err)
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "Purged old transcript messages", "count", n, "cutoff", cutoff)
	}
	return n, nil
}

func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)")

	// VACUUM cannot run inside a transaction.
	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed")
	return nil
}
