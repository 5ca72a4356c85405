package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFileBackendContract(t *testing.T) {
	t.Parallel()
	backend := NewFileBackend(t.TempDir())
	require.NoError(t, backend.Initialize(context.Background()))
	exerciseBackend(t, backend)
}

func TestFileBackendReloadsIndex(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	first := NewFileBackend(dir)
	require.NoError(t, first.Initialize(ctx))
	require.NoError(t, first.SaveRun(ctx, sampleRun("persisted", time.Now(), StatusPassed)))
	require.FileExists(t, filepath.Join(dir, "runs", "persisted.json"))

	// garbage next to real records is skipped
	require.NoError(t, os.WriteFile(filepath.Join(dir, "runs", "broken.json"), []byte("{"), 0o644))

	second := NewFileBackend(dir)
	require.NoError(t, second.Initialize(ctx))
	list, err := second.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "persisted", list[0].ID)
}

func TestFileBackendRejectsTraversal(t *testing.T) {
	t.Parallel()
	backend := NewFileBackend(t.TempDir())
	require.NoError(t, backend.Initialize(context.Background()))
	require.Error(t, backend.SaveRun(context.Background(), sampleRun("../evil", time.Now(), StatusPassed)))
	_, err := backend.GetRun(context.Background(), "../evil")
	require.True(t, IsNotFound(err))
}

func TestNormalizeLimit(t *testing.T) {
	require.Equal(t, 50, NormalizeLimit(0))
	require.Equal(t, 7, NormalizeLimit(7))
	require.Equal(t, 1000, NormalizeLimit(5000))
}
