package tasks

import "context"

// newRateWindowSweepTask drops rate-limit timestamps older than the sweep
// retention so idle users stop costing memory.
func newRateWindowSweepTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "rate_window_sweep")

	return func(ctx context.Context) error {
		removed := deps.Limiter.Sweep(deps.Config.RateLimit.SweepRetention)
		log.DebugContext(ctx, "Rate windows swept", "users_removed", removed, "users_tracked", deps.Limiter.Len())
		return nil
	}
}
