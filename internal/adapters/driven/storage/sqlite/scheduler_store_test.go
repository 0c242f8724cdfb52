package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dself/internal/core/domain"
)

func TestSchedulerStore_SaveAndGetTask(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	tasks := store.SchedulerStore()

	now := time.Now().UTC()
	task := &domain.ScheduledTask{
		ID:          domain.TaskIDFor(domain.SourceCalendar),
		Source:      domain.SourceCalendar,
		Interval:    6 * time.Hour,
		LastRun:     now.Add(-time.Hour),
		NextRun:     now.Add(5 * time.Hour),
		LastSuccess: now.Add(-time.Hour),
		Enabled:     true,
	}
	require.NoError(t, tasks.SaveTask(ctx, task))

	got, err := tasks.GetTask(ctx, "run-calendar")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.SourceCalendar, got.Source)
	assert.Equal(t, 6*time.Hour, got.Interval)
	assert.True(t, got.Enabled)
	assert.True(t, task.NextRun.Equal(got.NextRun))
	assert.True(t, task.LastSuccess.Equal(got.LastSuccess))
	assert.Empty(t, got.LastError)
}

func TestSchedulerStore_GetTask_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	got, err := store.SchedulerStore().GetTask(context.Background(), "run-nothing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSchedulerStore_SaveTask_Update(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	tasks := store.SchedulerStore()
	task := &domain.ScheduledTask{ID: "run-gmail", Source: domain.SourceGmail, Interval: time.Hour, Enabled: true}
	require.NoError(t, tasks.SaveTask(ctx, task))

	task.Enabled = false
	task.LastError = "source unreachable"
	require.NoError(t, tasks.SaveTask(ctx, task))

	got, err := tasks.GetTask(ctx, "run-gmail")
	require.NoError(t, err)
	assert.False(t, got.Enabled)
	assert.Equal(t, "source unreachable", got.LastError)
	assert.True(t, got.LastRun.IsZero())
}

func TestSchedulerStore_ListAndDelete(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	tasks := store.SchedulerStore()

	empty, err := tasks.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, s := range []domain.SourceType{domain.SourceWhatsApp, domain.SourceBrowser} {
		require.NoError(t, tasks.SaveTask(ctx, &domain.ScheduledTask{
			ID: domain.TaskIDFor(s), Source: s, Interval: time.Hour, Enabled: true,
		}))
	}

	all, err := tasks.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "run-browser", all[0].ID)

	require.NoError(t, tasks.DeleteTask(ctx, "run-browser"))
	all, err = tasks.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSchedulerStore_NilArguments(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	assert.ErrorIs(t, store.SchedulerStore().SaveTask(ctx, nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.SchedulerStore().RecordResult(ctx, nil), domain.ErrInvalidInput)
}

func TestSchedulerStore_HistoryAndPrune(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	tasks := store.SchedulerStore()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, tasks.RecordResult(ctx, &domain.TaskResult{
			TaskID:         "run-imessage",
			RunID:          string(rune('a' + i)),
			StartedAt:      base.Add(time.Duration(i) * time.Minute),
			EndedAt:        base.Add(time.Duration(i)*time.Minute + time.Second),
			Success:        i%2 == 0,
			Error:          map[bool]string{true: "", false: "remote store unavailable"}[i%2 == 0],
			ItemsProcessed: i,
		}))
	}
	require.NoError(t, tasks.RecordResult(ctx, &domain.TaskResult{
		TaskID: "run-gmail", StartedAt: base, EndedAt: base, Success: true,
	}))

	history, err := tasks.GetTaskHistory(ctx, "run-imessage", 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "e", history[0].RunID)
	assert.Equal(t, 4, history[0].ItemsProcessed)
	assert.False(t, history[1].Success)
	assert.Equal(t, "remote store unavailable", history[1].Error)

	require.NoError(t, tasks.PruneHistory(ctx, 2))

	history, err = tasks.GetTaskHistory(ctx, "run-imessage", 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	gmail, err := tasks.GetTaskHistory(ctx, "run-gmail", 10)
	require.NoError(t, err)
	assert.Len(t, gmail, 1)
}

func TestStamp(t *testing.T) {
	v, err := stamp{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	ts := time.Date(2024, 5, 6, 7, 8, 9, 10, time.UTC)
	v, err = stamp(ts).Value()
	require.NoError(t, err)
	require.IsType(t, "", v)

	var back stamp
	require.NoError(t, back.Scan(v))
	assert.True(t, ts.Equal(time.Time(back)))

	require.NoError(t, back.Scan(nil))
	assert.True(t, time.Time(back).IsZero())

	require.NoError(t, back.Scan([]byte("garbage")))
	assert.True(t, time.Time(back).IsZero())

	assert.Error(t, back.Scan(42))
}

func TestText(t *testing.T) {
	assert.False(t, text("").Valid)
	assert.Equal(t, sql.Null[string]{V: "hello", Valid: true}, text("hello"))
}
