package storage

import (
	"context"
	"testing"
	"time"

	"unreal-mcp-go/internal/config"
	"unreal-mcp-go/internal/monitoring"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestInstrumentedBackendRecordsOperations(t *testing.T) {
	inner := NewFileBackend(t.TempDir())
	require.NoError(t, inner.Initialize(context.Background()))
	backend := WithInstrumentation(inner, "file_test")

	before := testutil.ToFloat64(monitoring.StorageOperationsTotal.WithLabelValues("file_test", "save_run", "ok"))
	require.NoError(t, backend.SaveRun(context.Background(), sampleRun("i-1", time.Now(), StatusPassed)))
	require.Equal(t, before+1, testutil.ToFloat64(monitoring.StorageOperationsTotal.WithLabelValues("file_test", "save_run", "ok")))

	// not-found lookups count as successful operations
	_, err := backend.GetRun(context.Background(), "missing")
	require.True(t, IsNotFound(err))
	require.Equal(t, 1.0, testutil.ToFloat64(monitoring.StorageOperationsTotal.WithLabelValues("file_test", "get_run", "ok")))

	require.Equal(t, "file", DetectBackendLabel(nil, backend))
	require.Nil(t, WithInstrumentation(nil, "x"))
}

func TestBuildSelectsBackend(t *testing.T) {
	ctx := context.Background()

	cfg := config.Default()
	cfg.Storage.Backend = "none"
	backend, label, err := Build(ctx, cfg)
	require.NoError(t, err)
	require.Nil(t, backend)
	require.Equal(t, "none", label)

	cfg.Storage.Backend = "file"
	cfg.Storage.BaseDir = t.TempDir()
	backend, label, err = Build(ctx, cfg)
	require.NoError(t, err)
	require.Equal(t, "file", label)
	require.NoError(t, backend.Close())
}

func TestBuildFallsBackToFile(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "redis"
	cfg.Storage.RedisAddr = "127.0.0.1:1"
	cfg.Storage.BaseDir = t.TempDir()

	backend, label, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, "file", label)
	require.Equal(t, "file", DetectBackendLabel(nil, backend))
	require.NoError(t, backend.Close())
}
