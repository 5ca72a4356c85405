// Package server implements the HTTP bridge: it forwards raw commands to
// the editor, runs scenarios on request, serves run history and streams run
// events over websocket.
package server

import (
	"context"
	"net/http"
	"time"

	"unreal-mcp-go/internal/config"
	"unreal-mcp-go/internal/constants"
	"unreal-mcp-go/internal/events"
	"unreal-mcp-go/internal/logging"
	mw "unreal-mcp-go/internal/middleware"
	"unreal-mcp-go/internal/netutil"
	"unreal-mcp-go/internal/protocol"
	"unreal-mcp-go/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// UnrealClient is the editor connection the bridge forwards to.
// *upstream.Client satisfies it.
type UnrealClient interface {
	Call(ctx context.Context, commandType string, params map[string]any) (*protocol.Response, error)
	Send(ctx context.Context, cmd protocol.Command) (*protocol.Response, error)
	Ping(ctx context.Context) error
	Address() string
	SetAddress(host string, port int)
}

// Dependencies encapsulates runtime services required to build the HTTP engine.
type Dependencies struct {
	Config  *config.ConfigManager
	Client  UnrealClient
	Storage storage.Backend
	// StorageLabel names the active backend in /healthz.
	StorageLabel string
	Hub          *events.Hub
	Stream       *logging.RunStream
}

type handler struct {
	deps Dependencies
}

func (h *handler) cfg() *config.Config {
	if h.deps.Config == nil {
		return config.Default()
	}
	return h.deps.Config.Get()
}

// BuildEngine constructs the bridge's gin engine.
func BuildEngine(deps Dependencies) *gin.Engine {
	if deps.Config == nil {
		deps.Config = config.NewStaticManager(config.Default())
	}
	if deps.Hub == nil {
		deps.Hub = events.NewHub()
	}
	cfg := deps.Config.Get()
	h := &handler{deps: deps}

	engine := gin.New()
	applyStandardEngineSettings(engine, cfg)

	engine.GET("/healthz", h.health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := engine.Group("/v1")
	v1.Use(mw.APIKeyAuth(mw.AuthConfig{
		Required: func() bool { return config.APIKeyRequired(deps.Config.Get()) },
		Validate: config.APIKeyValidator(deps.Config.Get),
	}))
	v1.Use(mw.RateLimiter(cfg.Bridge.RateLimitRPS, cfg.Bridge.RateLimitBurst))

	v1.POST("/commands", h.sendCommand)
	v1.POST("/runs", h.startRun)
	v1.GET("/runs", h.listRuns)
	v1.GET("/runs/stream", h.streamRuns)
	v1.GET("/runs/:id", h.getRun)
	v1.DELETE("/runs/:id", h.deleteRun)
	return engine
}

// Server owns the bridge's http.Server and its hot-reload wiring.
type Server struct {
	deps   Dependencies
	engine *gin.Engine
	http   *http.Server
}

// New builds a Server listening on cfg.Bridge.Listen. Config changes move the
// Unreal client to the new editor address without a restart.
func New(deps Dependencies) *Server {
	if deps.Config == nil {
		deps.Config = config.NewStaticManager(config.Default())
	}
	if deps.Hub == nil {
		deps.Hub = events.NewHub()
	}
	if deps.Client != nil {
		client := deps.Client
		deps.Config.OnChange(func(next *config.Config) {
			prev := client.Address()
			client.SetAddress(next.Unreal.Host, next.Unreal.Port)
			if now := client.Address(); now != prev {
				log.WithFields(log.Fields{"from": prev, "to": now}).Info("unreal address updated")
			}
		})
	}
	if deps.Stream != nil {
		stream := deps.Stream
		applyStreamLimit(stream, deps.Config.Get())
		deps.Config.OnChange(func(next *config.Config) { applyStreamLimit(stream, next) })
	}
	engine := BuildEngine(deps)
	cfg := deps.Config.Get()
	if !netutil.IsLoopbackListen(cfg.Bridge.Listen) && !config.APIKeyRequired(cfg) {
		log.WithField("addr", cfg.Bridge.Listen).Warn("bridge listens beyond loopback without an API key")
	}
	return &Server{
		deps:   deps,
		engine: engine,
		http: &http.Server{
			Addr:              cfg.Bridge.Listen,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func applyStreamLimit(stream *logging.RunStream, cfg *config.Config) {
	if cfg.Bridge.MaxStreamClients > 0 {
		stream.SetMaxConnections(cfg.Bridge.MaxStreamClients)
	}
}

// Handler exposes the gin engine, for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", s.http.Addr).Info("bridge listening")
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ServerShutdownTimeout)
	defer cancel()
	if s.deps.Stream != nil {
		s.deps.Stream.Close()
	}
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
