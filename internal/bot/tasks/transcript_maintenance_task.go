package tasks

import (
	"context"
	"fmt"
	"time"
)

// newTranscriptMaintenanceTask purges transcripts older than the retention
// period and vacuums the database. A zero retention keeps every row.
func newTranscriptMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "transcript_maintenance")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting transcript maintenance")
		startTime := time.Now()

		if retention := deps.Config.Database.Retention; retention > 0 {
			purged, err := deps.Store.PurgeBefore(ctx, deps.now().Add(-retention))
			if err != nil {
				log.ErrorContext(ctx, "Transcript purge failed", "error", err)
				return fmt.Errorf("transcript purge failed: %w", err)
			}
			log.InfoContext(ctx, "Old transcripts purged", "count", purged)
		}

		if err := deps.Store.RunSQLMaintenance(ctx); err != nil {
			log.ErrorContext(ctx, "SQL maintenance failed", "error", err, "duration", time.Since(startTime))
			return fmt.Errorf("sql maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "Transcript maintenance completed", "duration", time.Since(startTime))
		return nil
	}
}
