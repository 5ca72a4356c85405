package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"unreal-mcp-go/internal/migrations"

	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

// PostgresBackend keeps runs in the `runs` table; the full record is stored
// as jsonb next to indexed summary columns.
type PostgresBackend struct {
	db *sql.DB
}

// NewPostgresBackend opens a connection pool; Initialize applies migrations.
func NewPostgresBackend(dsn string) (*PostgresBackend, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Info("Connected to PostgreSQL storage backend")
	return &PostgresBackend{db: db}, nil
}

// Initialize applies pending schema migrations.
func (p *PostgresBackend) Initialize(ctx context.Context) error {
	if err := migrations.PostgresUp(p.db); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	log.Info("PostgreSQL migrations applied")
	return nil
}

// Close closes PostgreSQL connection
func (p *PostgresBackend) Close() error {
	return p.db.Close()
}

// Health checks connectivity.
func (p *PostgresBackend) Health(ctx context.Context) error {
	ctx, cancel := withStorageTimeout(ctx)
	defer cancel()
	return p.db.PingContext(ctx)
}

func (p *PostgresBackend) SaveRun(ctx context.Context, run *RunRecord) error {
	if err := run.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode run %s: %w", run.ID, err)
	}
	ctx, cancel := withStorageTimeout(ctx)
	defer cancel()
	var finished sql.NullTime
	if !run.FinishedAt.IsZero() {
		finished = sql.NullTime{Time: run.FinishedAt, Valid: true}
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO runs (id, scenario, blueprint, status, started_at, finished_at, duration_ms, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			scenario = EXCLUDED.scenario,
			blueprint = EXCLUDED.blueprint,
			status = EXCLUDED.status,
			started_at = EXCLUDED.started_at,
			finished_at = EXCLUDED.finished_at,
			duration_ms = EXCLUDED.duration_ms,
			data = EXCLUDED.data`,
		run.ID, run.Scenario, run.Blueprint, run.Status, run.StartedAt, finished, run.DurationMS, data)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	return nil
}

func (p *PostgresBackend) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	ctx, cancel := withStorageTimeout(ctx)
	defer cancel()
	var data []byte
	err := p.db.QueryRowContext(ctx, `SELECT data FROM runs WHERE id = $1`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &ErrNotFound{Key: id}
		}
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	var run RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to decode run %s: %w", id, err)
	}
	return &run, nil
}

func (p *PostgresBackend) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	ctx, cancel := withStorageTimeout(ctx)
	defer cancel()
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, scenario, blueprint, status, started_at, duration_ms
		FROM runs ORDER BY started_at DESC, id DESC LIMIT $1`, NormalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	out := []RunSummary{}
	for rows.Next() {
		var s RunSummary
		if err := rows.Scan(&s.ID, &s.Scenario, &s.Blueprint, &s.Status, &s.StartedAt, &s.DurationMS); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return out, nil
}

func (p *PostgresBackend) DeleteRun(ctx context.Context, id string) error {
	ctx, cancel := withStorageTimeout(ctx)
	defer cancel()
	res, err := p.db.ExecContext(ctx, `DELETE FROM runs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &ErrNotFound{Key: id}
	}
	return nil
}

// GetStorageStats returns storage statistics
func (p *PostgresBackend) GetStorageStats(ctx context.Context) (StorageStats, error) {
	ctx, cancel := withStorageTimeout(ctx)
	defer cancel()
	stats := StorageStats{Backend: "postgres", Healthy: true}
	var last sql.NullTime
	err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'passed'),
		       COUNT(*) FILTER (WHERE status = 'failed'),
		       MAX(started_at)
		FROM runs`).Scan(&stats.RunCount, &stats.PassedCount, &stats.FailedCount, &last)
	if err != nil {
		stats.Healthy = false
		return stats, fmt.Errorf("failed to read run stats: %w", err)
	}
	if last.Valid {
		t := last.Time
		stats.LastRunAt = &t
	}
	dbStats := p.db.Stats()
	stats.Details = map[string]interface{}{
		"pool_in_use":     dbStats.InUse,
		"pool_idle":       dbStats.Idle,
		"pool_wait_count": dbStats.WaitCount,
	}
	return stats, nil
}
