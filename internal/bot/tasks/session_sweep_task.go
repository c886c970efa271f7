package tasks

import (
	"context"
	"time"
)

// sessionMaxIdle is how long a session may sit untouched before the sweep
// evicts it. Evicted identities see the menu again on their next message.
const sessionMaxIdle = 24 * time.Hour

// newSessionSweepTask creates the scheduled task evicting idle sessions so
// the in-memory session map does not grow without bound.
func newSessionSweepTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "session_sweep")

	return func(ctx context.Context) error {
		evicted := deps.Sessions.Sweep(sessionMaxIdle)
		if evicted > 0 {
			log.InfoContext(ctx, "Idle sessions evicted", "evicted", evicted, "remaining", deps.Sessions.Len())
		}
		return nil
	}
}
