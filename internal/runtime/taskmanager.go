// Package runtime supervises the bridge daemon's long-running goroutines.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// TaskStatus represents the status of a task
type TaskStatus string

const (
	TaskStatusRunning  TaskStatus = "running"
	TaskStatusStopped  TaskStatus = "stopped"
	TaskStatusFailed   TaskStatus = "failed"
	TaskStatusCanceled TaskStatus = "canceled"
)

// TaskFunc is a function that runs as a background task
type TaskFunc func(ctx context.Context) error

// TaskInfo is a point-in-time view of one task.
type TaskInfo struct {
	Name      string     `json:"name"`
	Status    TaskStatus `json:"status"`
	StartedAt time.Time  `json:"started_at"`
	Runs      int        `json:"runs"`
	Error     string     `json:"error,omitempty"`
}

type task struct {
	info   TaskInfo
	cancel context.CancelFunc
	done   chan struct{}
}

// TaskManager runs named tasks under one parent context.
type TaskManager struct {
	mu     sync.RWMutex
	tasks  map[string]*task
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewTaskManager creates a new task manager
func NewTaskManager(ctx context.Context) *TaskManager {
	ctx, cancel := context.WithCancel(ctx)
	return &TaskManager{
		tasks:  make(map[string]*task),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start runs fn in its own goroutine. A panic marks the task failed instead
// of crashing the daemon.
func (tm *TaskManager) Start(name string, fn TaskFunc) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if t, exists := tm.tasks[name]; exists && t.info.Status == TaskStatusRunning {
		return fmt.Errorf("task %s already running", name)
	}
	taskCtx, taskCancel := context.WithCancel(tm.ctx)
	t := &task{
		info:   TaskInfo{Name: name, Status: TaskStatusRunning, StartedAt: time.Now()},
		cancel: taskCancel,
		done:   make(chan struct{}),
	}
	tm.tasks[name] = t

	tm.wg.Add(1)
	go func() {
		defer tm.wg.Done()
		defer close(t.done)
		entry := log.WithField("task", name)

		err := func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("panic: %v", r)
				}
			}()
			entry.Debug("task started")
			return fn(taskCtx)
		}()

		tm.mu.Lock()
		defer tm.mu.Unlock()
		switch {
		case err == nil:
			t.info.Status = TaskStatusStopped
			entry.Debug("task stopped")
		case taskCtx.Err() != nil && errors.Is(err, context.Canceled):
			t.info.Status = TaskStatusCanceled
		default:
			t.info.Status = TaskStatusFailed
			t.info.Error = err.Error()
			entry.WithError(err).Error("task failed")
		}
	}()
	return nil
}

// StartPeriodic runs fn immediately and then every interval until stopped.
// Errors are logged and do not end the task.
func (tm *TaskManager) StartPeriodic(name string, interval time.Duration, fn TaskFunc) error {
	if interval <= 0 {
		return fmt.Errorf("task %s: interval must be positive", name)
	}
	return tm.Start(name, func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			if err := fn(ctx); err != nil && ctx.Err() == nil {
				log.WithField("task", name).WithError(err).Debug("periodic task iteration failed")
			}
			tm.mu.Lock()
			if t := tm.tasks[name]; t != nil {
				t.info.Runs++
			}
			tm.mu.Unlock()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	})
}

// Stop cancels one task and waits for it to return.
func (tm *TaskManager) Stop(name string) error {
	tm.mu.RLock()
	t, ok := tm.tasks[name]
	tm.mu.RUnlock()
	if !ok {
		return fmt.Errorf("task %s not found", name)
	}
	t.cancel()
	<-t.done
	return nil
}

// StopAll cancels every task and waits for them.
func (tm *TaskManager) StopAll() {
	tm.cancel()
	tm.wg.Wait()
}

// Wait blocks until every task has returned.
func (tm *TaskManager) Wait() {
	tm.wg.Wait()
}

// Done is closed when the named task returns. It is nil for unknown tasks.
func (tm *TaskManager) Done(name string) <-chan struct{} {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	if t, ok := tm.tasks[name]; ok {
		return t.done
	}
	return nil
}

// Get returns a snapshot of one task.
func (tm *TaskManager) Get(name string) (TaskInfo, bool) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	t, ok := tm.tasks[name]
	if !ok {
		return TaskInfo{}, false
	}
	return t.info, true
}

// List returns snapshots of all tasks sorted by name.
func (tm *TaskManager) List() []TaskInfo {
	tm.mu.RLock()
	out := make([]TaskInfo, 0, len(tm.tasks))
	for _, t := range tm.tasks {
		out = append(out, t.info)
	}
	tm.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
