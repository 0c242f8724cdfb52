package domain

import "time"

// ScheduledTask is a recurring pipeline run for one source.
type ScheduledTask struct {
	// ID is the task identifier, see TaskIDFor.
	ID string

	// Source is the pipeline the task runs.
	Source SourceType

	// Interval defines how often the task should run.
	Interval time.Duration

	LastRun     time.Time
	NextRun     time.Time
	LastSuccess time.Time

	// LastError contains the last error message, if any.
	LastError string

	Enabled bool
}

// Due reports whether the task should run at now.
func (t *ScheduledTask) Due(now time.Time) bool {
	return t.Enabled && !now.Before(t.NextRun)
}

// TaskResult represents the outcome of a task execution.
type TaskResult struct {
	TaskID    string
	RunID     string
	StartedAt time.Time
	EndedAt   time.Time
	Success   bool
	Error     string

	// ItemsProcessed is the number of records persisted.
	ItemsProcessed int
}

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	// Enabled is the master switch for the scheduler.
	Enabled bool

	// Tasks holds per-source task configuration.
	Tasks map[SourceType]TaskConfig
}

// TaskConfig holds configuration for a single task.
type TaskConfig struct {
	Enabled  bool
	Interval time.Duration
}

// ForSource returns the task configuration for a source.
// Returns a zero TaskConfig if the source is not configured.
func (c *SchedulerConfig) ForSource(source SourceType) TaskConfig {
	if c.Tasks == nil {
		return TaskConfig{}
	}
	return c.Tasks[source]
}

// DefaultSchedulerConfig enables a daily run for every source.
func DefaultSchedulerConfig() SchedulerConfig {
	tasks := make(map[SourceType]TaskConfig, len(AllSources))
	for _, s := range AllSources {
		tasks[s] = TaskConfig{Enabled: true, Interval: DefaultScheduleInterval}
	}
	return SchedulerConfig{Enabled: true, Tasks: tasks}
}

const taskIDPrefix = "run-"

// TaskIDFor returns the scheduled task ID for a source.
func TaskIDFor(source SourceType) string {
	return taskIDPrefix + string(source)
}

// SourceFromTaskID is the inverse of TaskIDFor.
func SourceFromTaskID(id string) (SourceType, error) {
	if len(id) <= len(taskIDPrefix) || id[:len(taskIDPrefix)] != taskIDPrefix {
		return "", ErrUnknownSource
	}
	return ParseSourceType(id[len(taskIDPrefix):])
}
