package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileBackend stores one JSON document per run under baseDir/runs.
type FileBackend struct {
	baseDir string
	mu      sync.RWMutex
	index   map[string]RunSummary
}

// NewFileBackend creates a new file-based storage backend
func NewFileBackend(baseDir string) *FileBackend {
	return &FileBackend{
		baseDir: baseDir,
		index:   make(map[string]RunSummary),
	}
}

func (f *FileBackend) runsDir() string {
	return filepath.Join(f.baseDir, "runs")
}

func (f *FileBackend) runPath(id string) string {
	return filepath.Join(f.runsDir(), id+".json")
}

func (f *FileBackend) Initialize(ctx context.Context) error {
	if err := os.MkdirAll(f.runsDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", f.runsDir(), err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loadIndexLocked(); err != nil {
		return fmt.Errorf("failed to load existing runs: %w", err)
	}
	return nil
}

func (f *FileBackend) Close() error { return nil }

func (f *FileBackend) Health(ctx context.Context) error {
	_, err := os.Stat(f.runsDir())
	return err
}

func (f *FileBackend) SaveRun(ctx context.Context, run *RunRecord) error {
	if err := run.Validate(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.writeRun(run); err != nil {
		return err
	}
	f.index[run.ID] = run.Summary()
	return nil
}

func (f *FileBackend) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	probe := RunRecord{ID: id}
	if err := probe.Validate(); err != nil {
		return nil, &ErrNotFound{Key: id}
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	run, err := f.readRun(f.runPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ErrNotFound{Key: id}
		}
		return nil, err
	}
	return run, nil
}

func (f *FileBackend) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	f.mu.RLock()
	list := make([]RunSummary, 0, len(f.index))
	for _, s := range f.index {
		list = append(list, s)
	}
	f.mu.RUnlock()

	sortSummaries(list)
	if n := NormalizeLimit(limit); len(list) > n {
		list = list[:n]
	}
	return list, nil
}

func (f *FileBackend) DeleteRun(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.index[id]; !ok {
		return &ErrNotFound{Key: id}
	}
	delete(f.index, id)
	if err := os.Remove(f.runPath(id)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (f *FileBackend) GetStorageStats(ctx context.Context) (StorageStats, error) {
	f.mu.RLock()
	list := make([]RunSummary, 0, len(f.index))
	for _, s := range f.index {
		list = append(list, s)
	}
	f.mu.RUnlock()

	stats := statsFromSummaries("file", list)
	stats.TotalSize = dirSize(f.runsDir())
	stats.Details = map[string]interface{}{"base_dir": f.baseDir}
	return stats, nil
}
