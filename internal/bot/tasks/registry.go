package tasks

import (
	"context"

	"github.com/travelboss/travelbot/internal/config"
)

// ScheduledTaskFunc is the signature of every scheduled task. The context is
// cancelled when the scheduler shuts down.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks returns the task functions keyed by the names used under
// scheduler.tasks in the configuration.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := map[string]ScheduledTaskFunc{
		config.TaskRateWindowSweep:     newRateWindowSweepTask(deps),
		config.TaskIdleSessionEviction: newIdleSessionEvictionTask(deps),
	}
	if deps.Store != nil {
		tasks[config.TaskTranscriptMaintenance] = newTranscriptMaintenanceTask(deps)
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
