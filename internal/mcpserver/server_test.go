package mcpserver

import (
	"context"
	"encoding/json"
	"net"
	"strconv"
	"testing"
	"time"

	"unreal-mcp-go/internal/engine"
	"unreal-mcp-go/internal/storage"
	"unreal-mcp-go/internal/upstream"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

type memoryRecorder struct {
	runs []*storage.RunRecord
}

func (m *memoryRecorder) SaveRun(_ context.Context, run *storage.RunRecord) error {
	m.runs = append(m.runs, run)
	return nil
}

func connect(t *testing.T, deps Dependencies) (*mcp.ClientSession, *engine.Engine) {
	t.Helper()
	e := engine.New(engine.Options{})
	addr, err := e.Start("127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, _ := strconv.Atoi(portStr)
	opts := upstream.DefaultOptions()
	opts.Host, opts.Port, opts.Retries = host, port, 0
	deps.Caller = upstream.New(opts)
	deps.Address = addr

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	srv := New(deps)
	ss, err := srv.Connect(ctx, serverTransport)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs, e
}

func call(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func decode[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	require.False(t, res.IsError, "tool error: %s", errorText(res))
	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func errorText(res *mcp.CallToolResult) string {
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListToolsCoversEveryCommand(t *testing.T) {
	cs, e := connect(t, Dependencies{})
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	require.True(t, names["run_smoke_test"])
	for _, cmd := range e.Commands() {
		if cmd == "ping" {
			continue
		}
		require.True(t, names[cmd], "missing tool %s", cmd)
	}
}

func TestBuildGraphThroughTools(t *testing.T) {
	cs, e := connect(t, Dependencies{})

	name := decode[NameResult](t, call(t, cs, "create_blueprint", map[string]any{"name": "BP_Tools"}))
	require.Equal(t, "BP_Tools", name.Name)

	decode[NameResult](t, call(t, cs, "add_component_to_blueprint", map[string]any{
		"blueprint_name": "BP_Tools",
		"component_type": "StaticMeshComponent",
		"component_name": "Mesh",
		"location":       []float64{0, 0, 10},
	}))

	ack := decode[Ack](t, call(t, cs, "set_physics_properties", map[string]any{
		"blueprint_name": "BP_Tools",
		"component_name": "Mesh",
		"mass":           2.5,
	}))
	require.True(t, ack.OK)

	event := decode[NodeResult](t, call(t, cs, "add_blueprint_event_node", map[string]any{
		"blueprint_name": "BP_Tools",
		"event_name":     "ReceiveBeginPlay",
	}))
	fn := decode[NodeResult](t, call(t, cs, "add_blueprint_function_node", map[string]any{
		"blueprint_name": "BP_Tools",
		"target":         "Mesh",
		"function_name":  "SetSimulatePhysics",
		"params":         map[string]any{"bSimulate": true},
		"node_position":  []float64{400, 0},
	}))
	decode[Ack](t, call(t, cs, "connect_blueprint_nodes", map[string]any{
		"blueprint_name": "BP_Tools",
		"source_node_id": event.NodeID,
		"source_pin":     "Then",
		"target_node_id": fn.NodeID,
		"target_pin":     "Execute",
	}))

	found := decode[FindNodesResult](t, call(t, cs, "find_blueprint_nodes", map[string]any{
		"blueprint_name": "BP_Tools",
		"node_type":      "Event",
		"event_name":     "ReceiveBeginPlay",
	}))
	require.Equal(t, []string{event.NodeID}, found.NodeGUIDs)

	decode[Ack](t, call(t, cs, "compile_blueprint", map[string]any{"blueprint_name": "BP_Tools"}))
	actor := decode[SpawnResult](t, call(t, cs, "spawn_blueprint_actor", map[string]any{
		"blueprint_name": "BP_Tools",
		"actor_name":     "ToolActor",
		"location":       []float64{1, 2, 3},
	}))
	require.Equal(t, "ToolActor", actor.Name)

	snap := e.Snapshot()
	require.True(t, snap.Blueprints["BP_Tools"].Compiled)
	require.Equal(t, engine.Vec3{1, 2, 3}, snap.Actors["ToolActor"].Location)
}

func TestEditorErrorsBecomeToolErrors(t *testing.T) {
	cs, _ := connect(t, Dependencies{})

	res := call(t, cs, "compile_blueprint", map[string]any{"blueprint_name": "BP_Missing"})
	require.True(t, res.IsError)
	require.Contains(t, errorText(res), "Blueprint not found")

	res = call(t, cs, "spawn_blueprint_actor", map[string]any{
		"blueprint_name": "BP_Missing",
		"actor_name":     "A",
		"location":       []float64{1, 2},
	})
	require.True(t, res.IsError)
	require.Contains(t, errorText(res), "location needs 3 numbers")
}

func TestRunSmokeTestTool(t *testing.T) {
	rec := &memoryRecorder{}
	cs, _ := connect(t, Dependencies{Recorder: rec})

	out := decode[SmokeTestResult](t, call(t, cs, "run_smoke_test", map[string]any{"blueprint_name": "BP_McpSmoke"}))
	require.Equal(t, storage.StatusPassed, out.Status)
	require.Equal(t, "BP_McpSmoke", out.Blueprint)
	require.Len(t, out.Steps, 9)
	require.Len(t, rec.runs, 1)
	require.Equal(t, out.RunID, rec.runs[0].ID)

	// the blueprint now exists, so a second run fails at the first step
	res := call(t, cs, "run_smoke_test", map[string]any{"blueprint_name": "BP_McpSmoke"})
	require.True(t, res.IsError)
	require.Contains(t, errorText(res), "already exists")
}
