// Package mcpserver exposes the editor's blueprint commands as Model Context
// Protocol tools.
package mcpserver

import (
	"context"
	"time"

	"unreal-mcp-go/internal/blueprint"
	"unreal-mcp-go/internal/events"
	"unreal-mcp-go/internal/monitoring"
	"unreal-mcp-go/internal/scenario"
	"unreal-mcp-go/internal/version"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"
)

const serverName = "unreal-mcp"

// Dependencies wires the tool handlers to the editor.
type Dependencies struct {
	Caller    blueprint.Caller
	Recorder  scenario.Recorder
	Publisher events.Publisher
	// Address is reported in smoke test results.
	Address string
	// BlueprintPrefix and SuffixLength name smoke test blueprints when the
	// caller does not pick one.
	BlueprintPrefix string
	SuffixLength    int
}

// Server is the MCP tool server.
type Server struct {
	deps   Dependencies
	svc    *blueprint.Service
	server *mcp.Server
}

// New registers every tool on a fresh MCP server.
func New(deps Dependencies) *Server {
	s := &Server{
		deps: deps,
		svc:  blueprint.NewService(deps.Caller),
		server: mcp.NewServer(&mcp.Implementation{
			Name:    serverName,
			Version: version.Version,
		}, nil),
	}
	s.registerTools()
	return s
}

// Run serves one session over transport until ctx is cancelled or the
// client disconnects.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	log.WithField("component", "mcp").Info("mcp server started")
	return s.server.Run(ctx, transport)
}

// Connect starts a session without blocking.
func (s *Server) Connect(ctx context.Context, transport mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, transport, nil)
}

// instrument wraps a tool handler with logging and the tool call counter.
func instrument[I, O any](name string, h mcp.ToolHandlerFor[I, O]) mcp.ToolHandlerFor[I, O] {
	return func(ctx context.Context, req *mcp.CallToolRequest, in I) (*mcp.CallToolResult, O, error) {
		start := time.Now()
		res, out, err := h(ctx, req, in)
		monitoring.ToolCallsTotal.WithLabelValues(name, monitoring.Outcome(err)).Inc()
		entry := log.WithFields(log.Fields{
			"component":   "mcp",
			"tool":        name,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		if err != nil {
			entry.WithError(err).Warn("tool call failed")
		} else {
			entry.Debug("tool call")
		}
		return res, out, err
	}
}

func addTool[I, O any](s *Server, tool *mcp.Tool, h mcp.ToolHandlerFor[I, O]) {
	mcp.AddTool(s.server, tool, instrument(tool.Name, h))
}
