package tasks

import "context"

// newIdleSessionEvictionTask removes sessions idle for longer than the
// configured timeout together with their conversation memory. Memory is kept
// for users who came back between the eviction and the clear.
func newIdleSessionEvictionTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "idle_session_eviction")

	return func(ctx context.Context) error {
		evicted := deps.Sessions.EvictIdle(deps.now(), deps.Config.Session.IdleTimeout)
		for _, userID := range evicted {
			if _, back := deps.Sessions.Get(userID); back {
				log.DebugContext(ctx, "User returned during eviction, keeping memory", "user_id", userID)
				continue
			}
			deps.AI.Clear(userID)
		}

		if len(evicted) > 0 {
			log.InfoContext(ctx, "Evicted idle sessions", "count", len(evicted), "remaining", deps.Sessions.Len())
		}
		return nil
	}
}
