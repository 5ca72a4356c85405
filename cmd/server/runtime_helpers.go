package main

import (
	"context"

	"unreal-mcp-go/internal/config"
	"unreal-mcp-go/internal/constants"
	"unreal-mcp-go/internal/events"
	"unreal-mcp-go/internal/logging"
	"unreal-mcp-go/internal/monitoring"
	srv "unreal-mcp-go/internal/server"
	store "unreal-mcp-go/internal/storage"
	"unreal-mcp-go/internal/upstream"

	log "github.com/sirupsen/logrus"
)

// runtime holds the long-lived services behind the bridge.
type runtime struct {
	deps   srv.Dependencies
	detach func()
	// reachable is only touched by the probe task
	reachable bool
}

func buildRuntime(ctx context.Context, manager *config.ConfigManager, hub *events.Hub) (*runtime, error) {
	cfg := manager.Get()

	backend, label, err := store.Build(ctx, cfg)
	if err != nil {
		// run history is optional; the bridge still forwards commands
		log.WithError(err).Error("storage unavailable; run history disabled")
		backend, label = nil, "none"
	}
	log.WithField("backend", label).Info("storage ready")

	stream := logging.NewRunStream()
	detach := stream.Attach(hub)

	return &runtime{
		deps: srv.Dependencies{
			Config:       manager,
			Client:       upstream.New(upstream.OptionsFromConfig(cfg.Unreal)),
			Storage:      backend,
			StorageLabel: label,
			Hub:          hub,
			Stream:       stream,
		},
		detach: detach,
	}, nil
}

// probeUnreal dials the editor socket and exports the result as a gauge.
func (r *runtime) probeUnreal(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, constants.HealthProbeTimeout)
	defer cancel()
	err := r.deps.Client.Ping(probeCtx)
	if err != nil {
		monitoring.UnrealReachable.Set(0)
		if r.reachable {
			log.WithError(err).WithField("addr", r.deps.Client.Address()).Warn("unreal editor unreachable")
		}
		r.reachable = false
		return err
	}
	monitoring.UnrealReachable.Set(1)
	if !r.reachable {
		log.WithField("addr", r.deps.Client.Address()).Info("unreal editor reachable")
	}
	r.reachable = true
	return nil
}

func (r *runtime) Close() {
	if r == nil {
		return
	}
	if r.detach != nil {
		r.detach()
	}
	if r.deps.Stream != nil {
		r.deps.Stream.Close()
	}
	if r.deps.Storage != nil {
		if err := r.deps.Storage.Close(); err != nil {
			log.WithError(err).Warn("failed to close storage")
		}
	}
}
