package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"unreal-mcp-go/internal/config"
	"unreal-mcp-go/internal/constants"
	"unreal-mcp-go/internal/events"
	"unreal-mcp-go/internal/logging"
	tracing "unreal-mcp-go/internal/monitoring/tracing"
	bgruntime "unreal-mcp-go/internal/runtime"
	srv "unreal-mcp-go/internal/server"
	"unreal-mcp-go/internal/version"

	log "github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (default: unrealmcp.yaml or ~/.unrealmcp/config.yaml)")
	debug := flag.Bool("debug", false, "Enable debug mode")
	flag.Parse()

	manager, err := config.NewConfigManager(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	defer manager.Close()

	cfg := manager.Get()
	if *debug {
		cfg.Logging.Debug = true
		manager.Set(cfg)
	}
	if err := logging.Setup(cfg, nil); err != nil {
		log.WithError(err).Fatal("failed to configure logging")
	}

	traceShutdown, err := tracing.Init(context.Background())
	if err != nil {
		log.WithError(err).Warn("failed to initialize tracing")
	}
	if traceShutdown != nil {
		defer func() {
			if err := traceShutdown(context.Background()); err != nil {
				log.WithError(err).Warn("failed to shutdown tracing")
			}
		}()
	}

	log.WithFields(log.Fields{
		"version": version.Version,
		"config":  manager.Path(),
		"unreal":  cfg.Unreal.Address(),
	}).Info("starting unreal-mcp bridge")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := events.NewHub()
	manager.SetEventPublisher(hub)
	if cfg.Logging.Debug {
		hub.Subscribe(events.TopicConfigUpdated, func(_ context.Context, evt events.Event) {
			log.WithField("topic", evt.Topic).Debug("config event")
		})
	}

	rt, err := buildRuntime(ctx, manager, hub)
	if err != nil {
		log.WithError(err).Fatal("failed to build runtime")
	}
	defer rt.Close()

	tasks := bgruntime.NewTaskManager(ctx)
	if err := tasks.Start("bridge", srv.New(rt.deps).Run); err != nil {
		log.WithError(err).Fatal("failed to start bridge")
	}
	if err := tasks.StartPeriodic("unreal-probe", constants.UnrealProbeInterval, rt.probeUnreal); err != nil {
		log.WithError(err).Warn("failed to start unreal probe")
	}

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case <-tasks.Done("bridge"):
		if info, _ := tasks.Get("bridge"); info.Error != "" {
			log.WithField("error", info.Error).Error("bridge server stopped")
		}
	}
	tasks.StopAll()
	log.Info("server stopped")
}
