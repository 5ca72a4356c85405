package storage

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sampleRun(id string, started time.Time, status string) *RunRecord {
	return &RunRecord{
		ID:         id,
		Scenario:   "component_reference",
		Blueprint:  "TestCompRefBP_abc",
		Status:     status,
		StartedAt:  started.UTC(),
		FinishedAt: started.Add(time.Second).UTC(),
		DurationMS: 1000,
		Steps: []StepRecord{
			{Name: "create_blueprint", Command: "create_blueprint", Status: StatusPassed, Result: json.RawMessage(`{"name":"TestCompRefBP_abc"}`)},
		},
	}
}

// exerciseBackend runs the CRUD contract every backend must satisfy.
func exerciseBackend(t *testing.T, backend Backend) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, backend.Health(ctx))
	require.NoError(t, backend.SaveRun(ctx, sampleRun("run-1", base, StatusPassed)))
	require.NoError(t, backend.SaveRun(ctx, sampleRun("run-2", base.Add(time.Minute), StatusFailed)))
	require.NoError(t, backend.SaveRun(ctx, sampleRun("run-3", base.Add(2*time.Minute), StatusPassed)))

	got, err := backend.GetRun(ctx, "run-2")
	require.NoError(t, err)
	require.Equal(t, StatusFailed, got.Status)
	require.Len(t, got.Steps, 1)
	require.JSONEq(t, `{"name":"TestCompRefBP_abc"}`, string(got.Steps[0].Result))

	list, err := backend.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "run-3", list[0].ID)
	require.Equal(t, "run-2", list[1].ID)

	// overwrite keeps a single record
	updated := sampleRun("run-1", base, StatusFailed)
	require.NoError(t, backend.SaveRun(ctx, updated))
	got, err = backend.GetRun(ctx, "run-1")
	require.NoError(t, err)
	require.Equal(t, StatusFailed, got.Status)

	stats, err := backend.GetStorageStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, stats.RunCount)
	require.Equal(t, 1, stats.PassedCount)
	require.Equal(t, 2, stats.FailedCount)
	require.NotNil(t, stats.LastRunAt)

	require.NoError(t, backend.DeleteRun(ctx, "run-1"))
	_, err = backend.GetRun(ctx, "run-1")
	require.True(t, IsNotFound(err))
	require.True(t, IsNotFound(backend.DeleteRun(ctx, "run-1")))

	require.Error(t, backend.SaveRun(ctx, &RunRecord{}))
}
