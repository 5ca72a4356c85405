package runtime

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func waitStatus(t *testing.T, tm *TaskManager, name string, want TaskStatus) TaskInfo {
	t.Helper()
	var info TaskInfo
	require.Eventually(t, func() bool {
		info, _ = tm.Get(name)
		return info.Status == want
	}, 2*time.Second, 5*time.Millisecond)
	return info
}

func TestStartRunsToCompletion(t *testing.T) {
	tm := NewTaskManager(context.Background())
	defer tm.StopAll()

	require.NoError(t, tm.Start("ok", func(context.Context) error { return nil }))
	<-tm.Done("ok")
	info := waitStatus(t, tm, "ok", TaskStatusStopped)
	require.Empty(t, info.Error)
}

func TestStartRecordsFailureAndPanic(t *testing.T) {
	tm := NewTaskManager(context.Background())
	defer tm.StopAll()

	require.NoError(t, tm.Start("boom", func(context.Context) error { return errors.New("boom") }))
	require.NoError(t, tm.Start("panic", func(context.Context) error { panic("bad") }))

	require.Equal(t, "boom", waitStatus(t, tm, "boom", TaskStatusFailed).Error)
	require.Contains(t, waitStatus(t, tm, "panic", TaskStatusFailed).Error, "panic: bad")
}

func TestDuplicateRunningTaskRejected(t *testing.T) {
	tm := NewTaskManager(context.Background())
	defer tm.StopAll()

	block := func(ctx context.Context) error { <-ctx.Done(); return ctx.Err() }
	require.NoError(t, tm.Start("loop", block))
	require.Error(t, tm.Start("loop", block))

	require.NoError(t, tm.Stop("loop"))
	waitStatus(t, tm, "loop", TaskStatusCanceled)
	// a finished task name can be reused
	require.NoError(t, tm.Start("loop", block))
	require.Error(t, tm.Stop("missing"))
}

func TestStartPeriodicRunsImmediatelyAndRepeats(t *testing.T) {
	tm := NewTaskManager(context.Background())
	defer tm.StopAll()

	var calls atomic.Int32
	require.NoError(t, tm.StartPeriodic("probe", 10*time.Millisecond, func(context.Context) error {
		if calls.Add(1) == 2 {
			return errors.New("transient")
		}
		return nil
	}))
	require.Eventually(t, func() bool { return calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, tm.Stop("probe"))
	info, ok := tm.Get("probe")
	require.True(t, ok)
	require.Equal(t, TaskStatusCanceled, info.Status)
	require.GreaterOrEqual(t, info.Runs, 3)

	require.Error(t, tm.StartPeriodic("bad", 0, func(context.Context) error { return nil }))
}

func TestListSortedAndStopAll(t *testing.T) {
	tm := NewTaskManager(context.Background())
	block := func(ctx context.Context) error { <-ctx.Done(); return ctx.Err() }
	require.NoError(t, tm.Start("b", block))
	require.NoError(t, tm.Start("a", block))

	list := tm.List()
	require.Len(t, list, 2)
	require.Equal(t, "a", list[0].Name)

	tm.StopAll()
	for _, info := range tm.List() {
		require.Equal(t, TaskStatusCanceled, info.Status)
	}
}
