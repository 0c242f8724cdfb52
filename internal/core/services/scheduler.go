package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/dself/internal/core/domain"
	"github.com/custodia-labs/dself/internal/core/ports/driven"
	"github.com/custodia-labs/dself/internal/core/ports/driving"
	"github.com/custodia-labs/dself/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// historyRetention is how many results are kept per task.
const historyRetention = 100

// errStopped is the cancel cause Stop uses, so Start can tell it apart
// from the caller cancelling.
var errStopped = errors.New("scheduler stopped")

// Scheduler runs source pipelines on their configured intervals.
// Due tasks run one after another, never concurrently.
type Scheduler struct {
	config domain.SchedulerConfig
	store  driven.SchedulerStore
	runner driving.PipelineRunner
	tick   time.Duration
	now    func() time.Time

	mu   sync.Mutex
	stop context.CancelCauseFunc
	done chan struct{}
}

// NewScheduler creates a scheduler that checks for due tasks every minute.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	runner driving.PipelineRunner,
) *Scheduler {
	return &Scheduler{
		config: config,
		store:  store,
		runner: runner,
		tick:   time.Minute,
		now:    time.Now,
	}
}

// Start blocks running due tasks every tick until Stop (nil) or until ctx
// ends (ctx.Err()). Calling Start while it is already running is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()
		return nil
	}
	loop, stop := context.WithCancelCause(ctx)
	done := make(chan struct{})
	s.stop, s.done = stop, done
	s.mu.Unlock()

	defer func() {
		stop(nil)
		s.mu.Lock()
		if s.done == done {
			s.stop, s.done = nil, nil
		}
		s.mu.Unlock()
		close(done)
	}()

	if err := s.initialiseTasks(ctx); err != nil {
		logger.Error("scheduler: initialise tasks: %v", err)
	}

	s.runDueTasks(ctx, loop.Done())

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-loop.Done():
			if errors.Is(context.Cause(loop), errStopped) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			s.runDueTasks(ctx, loop.Done())
		}
	}
}

// Stop ends the loop, letting a task already underway finish first.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.mu.Unlock()
	if stop == nil {
		return nil
	}
	stop(errStopped)
	<-done
	return nil
}

// Tasks implements driving.Scheduler.
func (s *Scheduler) Tasks(ctx context.Context) ([]domain.ScheduledTask, error) {
	if err := s.initialiseTasks(ctx); err != nil {
		return nil, err
	}
	return s.store.ListTasks(ctx)
}

// initialiseTasks makes sure every registered source has a stored task.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	for _, source := range s.runner.Sources() {
		if err := s.ensureTask(ctx, source, s.config.ForSource(source)); err != nil {
			return err
		}
	}
	return nil
}

// ensureTask syncs the stored task for source with cfg. A new task is due
// immediately; a changed interval pushes the next run out by one interval.
func (s *Scheduler) ensureTask(ctx context.Context, source domain.SourceType, cfg domain.TaskConfig) error {
	interval := cfg.Interval
	if interval <= 0 {
		interval = domain.DefaultScheduleInterval
	}

	id := domain.TaskIDFor(source)
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}
	switch {
	case task == nil:
		task = &domain.ScheduledTask{ID: id, Source: source, Interval: interval, NextRun: s.now()}
	case task.Interval != interval:
		task.Interval = interval
		task.NextRun = s.now().Add(interval)
	}
	task.Enabled = cfg.Enabled
	return s.store.SaveTask(ctx, task)
}

// runDueTasks runs due tasks sequentially in store order. No further task
// starts once halt is closed.
func (s *Scheduler) runDueTasks(ctx context.Context, halt <-chan struct{}) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Error("scheduler: list tasks: %v", err)
		return
	}
	for i := range tasks {
		select {
		case <-halt:
			return
		default:
		}
		if ctx.Err() != nil {
			return
		}
		if tasks[i].Due(s.now()) {
			s.runTask(ctx, &tasks[i])
		}
	}
}

// runTask runs one pipeline, then records the outcome on the task and in
// its history.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	started := s.now()
	report, err := s.runner.Run(ctx, task.Source)
	ended := s.now()

	ok, msg := outcome(report, err)
	result := &domain.TaskResult{
		TaskID:         task.ID,
		RunID:          report.ID,
		StartedAt:      started,
		EndedAt:        ended,
		Success:        ok,
		Error:          msg,
		ItemsProcessed: report.Persisted,
	}

	task.LastRun = started
	task.NextRun = ended.Add(task.Interval)
	task.LastError = msg
	if ok {
		task.LastSuccess = ended
	}

	log := logger.WithFields(logger.Fields{"task": task.ID, "state": report.State})
	if ok {
		log.Info("scheduled run finished")
	} else {
		log.Warn("scheduled run failed: " + msg)
	}

	if err := s.store.SaveTask(ctx, task); err != nil {
		log.Warnf("save task: %v", err)
	}
	if err := s.store.RecordResult(ctx, result); err != nil {
		log.Warnf("record result: %v", err)
	}
	if err := s.store.PruneHistory(ctx, historyRetention); err != nil {
		log.Warnf("prune history: %v", err)
	}
}

// outcome reports whether a run counts as a success, and the message to
// keep when it does not.
func outcome(report domain.RunReport, err error) (bool, string) {
	switch {
	case err != nil:
		return false, err.Error()
	case report.Succeeded():
		return true, ""
	case report.Error != "":
		return false, report.Error
	default:
		return false, string(report.State)
	}
}
