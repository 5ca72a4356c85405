package storage

import (
	"context"
	"time"

	"unreal-mcp-go/internal/monitoring"
	"unreal-mcp-go/internal/monitoring/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// WithInstrumentation wraps a backend with tracing and metrics instrumentation.
func WithInstrumentation(inner Backend, label string) Backend {
	if inner == nil {
		return nil
	}
	if label == "" {
		label = "unknown"
	}
	return &instrumentedBackend{Backend: inner, label: label}
}

type instrumentedBackend struct {
	Backend
	label string
}

// Unwrap returns the wrapped backend.
func (i *instrumentedBackend) Unwrap() Backend { return i.Backend }

func (i *instrumentedBackend) SaveRun(ctx context.Context, run *RunRecord) error {
	return i.instrument(ctx, "save_run", func(ctx context.Context) error {
		return i.Backend.SaveRun(ctx, run)
	})
}

func (i *instrumentedBackend) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	var result *RunRecord
	err := i.instrument(ctx, "get_run", func(ctx context.Context) error {
		var innerErr error
		result, innerErr = i.Backend.GetRun(ctx, id)
		return innerErr
	})
	return result, err
}

func (i *instrumentedBackend) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	var result []RunSummary
	err := i.instrument(ctx, "list_runs", func(ctx context.Context) error {
		var innerErr error
		result, innerErr = i.Backend.ListRuns(ctx, limit)
		return innerErr
	})
	return result, err
}

func (i *instrumentedBackend) DeleteRun(ctx context.Context, id string) error {
	return i.instrument(ctx, "delete_run", func(ctx context.Context) error {
		return i.Backend.DeleteRun(ctx, id)
	})
}

func (i *instrumentedBackend) GetStorageStats(ctx context.Context) (StorageStats, error) {
	var result StorageStats
	err := i.instrument(ctx, "get_storage_stats", func(ctx context.Context) error {
		var innerErr error
		result, innerErr = i.Backend.GetStorageStats(ctx)
		return innerErr
	})
	return result, err
}

func (i *instrumentedBackend) instrument(ctx context.Context, operation string, fn func(context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := tracing.StartSpan(ctx, "storage", i.label+"/"+operation)
	span.SetAttributes(
		attribute.String("storage.backend", i.label),
		attribute.String("storage.operation", operation),
	)
	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)
	// A miss is an answer, not a backend failure.
	recorded := err
	if IsNotFound(err) {
		recorded = nil
	}
	tracing.EndSpan(span, recorded)
	monitoring.RecordStorageOperation(i.label, operation, duration, recorded)
	return err
}
