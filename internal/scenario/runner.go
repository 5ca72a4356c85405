package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"unreal-mcp-go/internal/blueprint"
	"unreal-mcp-go/internal/constants"
	apperrors "unreal-mcp-go/internal/errors"
	"unreal-mcp-go/internal/events"
	"unreal-mcp-go/internal/logging"
	"unreal-mcp-go/internal/monitoring"
	"unreal-mcp-go/internal/monitoring/tracing"
	"unreal-mcp-go/internal/storage"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Recorder persists finished runs. storage.Backend satisfies it.
type Recorder interface {
	SaveRun(ctx context.Context, run *storage.RunRecord) error
}

// Runner executes scenarios one step at a time.
type Runner struct {
	Caller    blueprint.Caller
	Publisher events.Publisher
	Recorder  Recorder
	// StepTimeout bounds each step when ctx has no deadline of its own.
	// Zero selects constants.ScenarioStepTimeout; negative disables it.
	StepTimeout time.Duration
	// Address is copied into reports for display.
	Address string
}

// StepResult is the outcome of one step.
type StepResult struct {
	Name       string          `json:"name"`
	Command    string          `json:"command"`
	Status     string          `json:"status"`
	DurationMS int64           `json:"duration_ms"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	ErrorKind  string          `json:"error_kind,omitempty"`
}

// Report summarizes a run. It is returned even when the run fails.
type Report struct {
	ID         string            `json:"id"`
	Scenario   string            `json:"scenario"`
	Blueprint  string            `json:"blueprint,omitempty"`
	Address    string            `json:"address,omitempty"`
	Status     string            `json:"status"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	DurationMS int64             `json:"duration_ms"`
	Error      string            `json:"error,omitempty"`
	ErrorKind  string            `json:"error_kind,omitempty"`
	Vars       map[string]string `json:"vars,omitempty"`
	Steps      []StepResult      `json:"steps"`
}

// Passed reports whether every step succeeded.
func (r *Report) Passed() bool {
	return r != nil && r.Status == storage.StatusPassed
}

// Record converts the report into its stored form.
func (r *Report) Record() *storage.RunRecord {
	if r == nil {
		return nil
	}
	rec := &storage.RunRecord{
		ID:         r.ID,
		Scenario:   r.Scenario,
		Blueprint:  r.Blueprint,
		Address:    r.Address,
		Status:     r.Status,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		DurationMS: r.DurationMS,
		Error:      r.Error,
		ErrorKind:  r.ErrorKind,
		Steps:      make([]storage.StepRecord, len(r.Steps)),
	}
	for i, s := range r.Steps {
		rec.Steps[i] = storage.StepRecord{
			Name:       s.Name,
			Command:    s.Command,
			Status:     s.Status,
			DurationMS: s.DurationMS,
			Result:     s.Result,
			Error:      s.Error,
			ErrorKind:  s.ErrorKind,
		}
	}
	return rec
}

// StepEvent is the payload of events.TopicStepFinished.
type StepEvent struct {
	RunID string     `json:"run_id"`
	Index int        `json:"index"`
	Total int        `json:"total"`
	Step  StepResult `json:"step"`
}

// Run executes sc sequentially and stops at the first failing step; the
// remaining steps are reported as skipped. The returned error is the first
// failure, and the report is non-nil whenever sc is valid. sc itself is
// left unchanged.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Report, error) {
	if r == nil || r.Caller == nil {
		return nil, apperrors.New(apperrors.KindInternal, "run", "", "runner has no caller")
	}
	if sc != nil {
		cp := *sc
		cp.Steps = append([]Step(nil), sc.Steps...)
		sc = &cp
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	publisher := r.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	vars := make(map[string]string, len(sc.Vars))
	for k, v := range sc.Vars {
		vars[k] = v
	}
	report := &Report{
		ID:        uuid.NewString(),
		Scenario:  sc.Name,
		Blueprint: vars["blueprint"],
		Address:   r.Address,
		Status:    storage.StatusPassed,
		StartedAt: time.Now().UTC(),
		Steps:     make([]StepResult, 0, len(sc.Steps)),
	}
	entry := log.WithFields(log.Fields{
		"component": "scenario",
		"run_id":    report.ID,
		"scenario":  sc.Name,
	})

	ctx, span := tracing.StartSpan(ctx, "scenario", "scenario.run")
	span.SetAttributes(
		attribute.String("scenario", sc.Name),
		attribute.String("run_id", report.ID),
		attribute.Int("steps", len(sc.Steps)),
	)
	meta := map[string]string{"run_id": report.ID, "scenario": sc.Name}
	publisher.Publish(ctx, events.TopicRunStarted, report.summaryPayload(), meta)
	entry.WithField("blueprint", report.Blueprint).Info("scenario started")

	var runErr error
	for i, step := range sc.Steps {
		if runErr != nil {
			res := StepResult{Name: step.Name, Command: step.Command, Status: storage.StatusSkipped}
			report.Steps = append(report.Steps, res)
			monitoring.StepsTotal.WithLabelValues(step.Command, res.Status).Inc()
			continue
		}

		res, err := r.runStep(ctx, step, vars)
		report.Steps = append(report.Steps, res)
		monitoring.StepsTotal.WithLabelValues(step.Command, res.Status).Inc()

		stepLog := entry.WithFields(log.Fields{
			"step":        step.Name,
			"command":     step.Command,
			"duration_ms": res.DurationMS,
		})
		if err != nil {
			runErr = fmt.Errorf("step %s: %w", step.Name, err)
			report.Status = storage.StatusFailed
			report.Error = err.Error()
			report.ErrorKind = res.ErrorKind
			stepLog.WithError(err).WithField("error_kind", res.ErrorKind).Error("step failed")
		} else {
			stepLog.Info("step passed")
		}
		publisher.Publish(ctx, events.TopicStepFinished, StepEvent{
			RunID: report.ID,
			Index: i,
			Total: len(sc.Steps),
			Step:  res,
		}, meta)
	}

	report.FinishedAt = time.Now().UTC()
	report.DurationMS = report.FinishedAt.Sub(report.StartedAt).Milliseconds()
	report.Vars = vars

	monitoring.RunsTotal.WithLabelValues(sc.Name, report.Status).Inc()
	monitoring.RunDuration.WithLabelValues(sc.Name).Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	span.SetAttributes(attribute.String("status", report.Status))
	tracing.EndSpan(span, runErr)

	r.record(ctx, report, entry)
	publisher.Publish(ctx, events.TopicRunFinished, report.summaryPayload(), meta)
	entry.WithFields(log.Fields{
		"status":      report.Status,
		"duration_ms": report.DurationMS,
	}).Info("scenario finished")

	return report, runErr
}

func (r *Runner) runStep(ctx context.Context, step Step, vars map[string]string) (StepResult, error) {
	res := StepResult{Name: step.Name, Command: step.Command}
	start := time.Now()
	fail := func(err error) (StepResult, error) {
		res.Status = storage.StatusFailed
		res.DurationMS = time.Since(start).Milliseconds()
		res.Error = err.Error()
		res.ErrorKind = logging.ErrorKind(err)
		return res, err
	}

	params, err := Substitute(step.Params, vars)
	if err != nil {
		return fail(err)
	}

	stepCtx := ctx
	if _, has := ctx.Deadline(); !has {
		timeout := r.StepTimeout
		if timeout == 0 {
			timeout = constants.ScenarioStepTimeout
		}
		if timeout > 0 {
			var cancel context.CancelFunc
			stepCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
	}

	resp, err := r.Caller.Call(stepCtx, step.Command, params)
	if resp != nil {
		res.Result = resp.ResultJSON()
	}
	if err != nil {
		return fail(err)
	}

	for name, path := range step.Capture {
		v := resp.Get(path)
		if !v.Exists() || v.String() == "" {
			return fail(apperrors.Newf(apperrors.KindProtocol, "capture", step.Command,
				"result has no %q for variable %q", path, name))
		}
		vars[name] = v.String()
	}

	res.Status = storage.StatusPassed
	res.DurationMS = time.Since(start).Milliseconds()
	return res, nil
}

func (r *Runner) record(ctx context.Context, report *Report, entry *log.Entry) {
	if r.Recorder == nil {
		return
	}
	if err := r.Recorder.SaveRun(context.WithoutCancel(ctx), report.Record()); err != nil {
		entry.WithError(err).Warn("failed to persist run")
	}
}

// RunSummary is the payload of run.started and run.finished events.
type RunSummary struct {
	ID         string `json:"id"`
	Scenario   string `json:"scenario"`
	Blueprint  string `json:"blueprint,omitempty"`
	Status     string `json:"status"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

func (r *Report) summaryPayload() RunSummary {
	return RunSummary{
		ID:         r.ID,
		Scenario:   r.Scenario,
		Blueprint:  r.Blueprint,
		Status:     r.Status,
		DurationMS: r.DurationMS,
		Error:      r.Error,
	}
}
