package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"unreal-mcp-go/internal/constants"
)

// Run and step statuses.
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// RunRecord is the persisted outcome of one scenario run.
type RunRecord struct {
	ID         string       `json:"id"`
	Scenario   string       `json:"scenario"`
	Blueprint  string       `json:"blueprint,omitempty"`
	Address    string       `json:"address,omitempty"`
	Status     string       `json:"status"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	DurationMS int64        `json:"duration_ms"`
	Error      string       `json:"error,omitempty"`
	ErrorKind  string       `json:"error_kind,omitempty"`
	Steps      []StepRecord `json:"steps"`
}

// StepRecord is the outcome of one step.
type StepRecord struct {
	Name       string          `json:"name"`
	Command    string          `json:"command"`
	Status     string          `json:"status"`
	DurationMS int64           `json:"duration_ms"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	ErrorKind  string          `json:"error_kind,omitempty"`
}

// RunSummary is the list view of a run.
type RunSummary struct {
	ID         string    `json:"id"`
	Scenario   string    `json:"scenario"`
	Blueprint  string    `json:"blueprint,omitempty"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
}

// Summary returns the list view of r.
func (r *RunRecord) Summary() RunSummary {
	return RunSummary{
		ID:         r.ID,
		Scenario:   r.Scenario,
		Blueprint:  r.Blueprint,
		Status:     r.Status,
		StartedAt:  r.StartedAt,
		DurationMS: r.DurationMS,
	}
}

// Validate checks the fields every backend keys on.
func (r *RunRecord) Validate() error {
	if r == nil {
		return fmt.Errorf("run record is nil")
	}
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("run record id is required")
	}
	if strings.ContainsAny(r.ID, `/\`) || strings.Contains(r.ID, "..") {
		return fmt.Errorf("invalid run id %q", r.ID)
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (r *RunRecord) Clone() *RunRecord {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Steps = make([]StepRecord, len(r.Steps))
	for i, s := range r.Steps {
		if s.Result != nil {
			s.Result = append(json.RawMessage(nil), s.Result...)
		}
		cp.Steps[i] = s
	}
	return &cp
}

// Passed reports whether the run completed every step.
func (r *RunRecord) Passed() bool {
	return r != nil && r.Status == StatusPassed
}

// NormalizeLimit clamps a list limit to [1, MaxRunListLimit].
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return constants.DefaultRunListLimit
	}
	if limit > constants.MaxRunListLimit {
		return constants.MaxRunListLimit
	}
	return limit
}

// sortSummaries orders newest first, breaking ties by id.
func sortSummaries(list []RunSummary) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].StartedAt.Equal(list[j].StartedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].StartedAt.After(list[j].StartedAt)
	})
}

// statsFromSummaries fills the counters shared by every backend.
func statsFromSummaries(backend string, list []RunSummary) StorageStats {
	stats := StorageStats{Backend: backend, Healthy: true, RunCount: len(list)}
	for i := range list {
		switch list[i].Status {
		case StatusPassed:
			stats.PassedCount++
		case StatusFailed:
			stats.FailedCount++
		}
		started := list[i].StartedAt
		if stats.LastRunAt == nil || started.After(*stats.LastRunAt) {
			stats.LastRunAt = &started
		}
	}
	return stats
}
