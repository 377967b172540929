package tasks

import (
	"context"
)

// ScheduledTaskFunc is the signature of every scheduled task. The context is
// cancelled on shutdown.
type ScheduledTaskFunc func(ctx context.Context) error

// Task names, matching the keys under scheduler.tasks in the configuration.
const (
	SQLMaintenance = "sql_maintenance"
	StorageReport  = "storage_report"
)

// RegisterAllTasks returns every known task keyed by name.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := map[string]ScheduledTaskFunc{
		SQLMaintenance: newSQLMaintenanceTask(deps),
		StorageReport:  newStorageReportTask(deps),
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
