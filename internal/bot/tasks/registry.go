package tasks

import "context"

// ScheduledTaskFunc is the signature for all scheduled tasks. The context
// provided by the scheduler must be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks returns the map of all registered scheduled tasks. The
// keys match the task names used in the scheduler configuration.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	taskMap := map[string]ScheduledTaskFunc{
		"db_maintenance": newDBMaintenanceTask(deps),
		"session_sweep":  newSessionSweepTask(deps),
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(taskMap))
	return taskMap
}
