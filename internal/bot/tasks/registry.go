package tasks

import (
	"context"
	"time"
)

// ScheduledTaskFunc is the signature for all scheduled tasks. The context
// provided by the scheduler must be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// ScheduledTask pairs a task function with its run interval.
type ScheduledTask struct {
	Interval time.Duration
	Run      ScheduledTaskFunc
}

// RegisterAllTasks initializes and returns the map of scheduled tasks keyed
// by task name.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTask {
	tasks := make(map[string]ScheduledTask)

	if deps.Config.Probe.Enabled {
		tasks["ai_probe"] = ScheduledTask{
			Interval: deps.Config.Probe.Interval,
			Run:      newAIProbeTask(deps),
		}
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
