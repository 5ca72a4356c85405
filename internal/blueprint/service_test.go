package blueprint

import (
	"context"
	"testing"

	apperrors "unreal-mcp-go/internal/errors"
	"unreal-mcp-go/internal/protocol"

	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	command string
	params  map[string]any
}

type fakeCaller struct {
	calls   []recordedCall
	replies map[string]string
}

func (f *fakeCaller) Call(_ context.Context, command string, params map[string]any) (*protocol.Response, error) {
	f.calls = append(f.calls, recordedCall{command: command, params: params})
	raw, ok := f.replies[command]
	if !ok {
		raw = `{"status":"success","result":{}}`
	}
	resp, err := protocol.Decode([]byte(raw))
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return resp, apperrors.New(apperrors.KindCommand, "call", command, resp.Message())
	}
	return resp, nil
}

func (f *fakeCaller) last() recordedCall { return f.calls[len(f.calls)-1] }

func TestCreateBlueprint(t *testing.T) {
	fc := &fakeCaller{replies: map[string]string{
		CmdCreateBlueprint: `{"status":"success","result":{"name":"BP_X","path":"/Game/Blueprints/BP_X"}}`,
	}}
	name, err := NewService(fc).CreateBlueprint(context.Background(), "BP_X", "")
	require.NoError(t, err)
	require.Equal(t, "BP_X", name)
	require.Equal(t, map[string]any{"name": "BP_X", "parent_class": "Actor"}, fc.last().params)
}

func TestAddComponentDefaultsTransform(t *testing.T) {
	fc := &fakeCaller{}
	name, err := NewService(fc).AddComponent(context.Background(), ComponentSpec{
		Blueprint: "BP",
		Type:      DefaultStaticMeshComponent,
		Name:      "TestMesh",
	})
	require.NoError(t, err)
	require.Equal(t, "TestMesh", name)
	p := fc.last().params
	require.Equal(t, []float64{0, 0, 0}, p["location"])
	require.Equal(t, []float64{0, 0, 0}, p["rotation"])
	require.Equal(t, []float64{1, 1, 1}, p["scale"])
	require.NotContains(t, p, "component_properties")
}

func TestAddComponentKeepsExplicitZeroScale(t *testing.T) {
	fc := &fakeCaller{}
	_, err := NewService(fc).AddComponent(context.Background(), ComponentSpec{
		Blueprint: "BP",
		Type:      DefaultStaticMeshComponent,
		Name:      "Flat",
		Transform: Transform{}.WithScale(Vector{}),
	})
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0, 0}, fc.last().params["scale"])
}

func TestSetPhysicsOptionalFields(t *testing.T) {
	fc := &fakeCaller{}
	svc := NewService(fc)
	require.NoError(t, svc.SetPhysicsProperties(context.Background(), PhysicsSpec{
		Blueprint: "BP", Component: "TestMesh", Simulate: true, Gravity: true,
	}))
	require.Equal(t, map[string]any{
		"blueprint_name":   "BP",
		"component_name":   "TestMesh",
		"simulate_physics": true,
		"gravity_enabled":  true,
	}, fc.last().params)

	mass := 5.0
	require.NoError(t, svc.SetPhysicsProperties(context.Background(), PhysicsSpec{
		Blueprint: "BP", Component: "TestMesh", Mass: &mass,
	}))
	require.Equal(t, 5.0, fc.last().params["mass"])
}

func TestNodeOperationsReturnIDs(t *testing.T) {
	fc := &fakeCaller{replies: map[string]string{
		CmdAddEventNode:    `{"status":"success","result":{"node_id":"EVT"}}`,
		CmdAddFunctionNode: `{"status":"success","result":{"node_id":"FN"}}`,
	}}
	svc := NewService(fc)
	ctx := context.Background()

	evt, err := svc.AddEventNode(ctx, "BP", "ReceiveBeginPlay", Pos(0, 0))
	require.NoError(t, err)
	require.Equal(t, NodeID("EVT"), evt)
	require.Equal(t, []float64{0, 0}, fc.last().params["node_position"])

	fn, err := svc.AddFunctionNode(ctx, FunctionCallSpec{
		Blueprint: "BP",
		Function:  "AddForce",
		Target:    "TestMesh",
		Params:    map[string]any{"Force": Vec(0, 0, 1000)},
		Position:  Pos(400, 0),
	})
	require.NoError(t, err)
	require.Equal(t, NodeID("FN"), fn)
	require.Equal(t, map[string]any{"Force": []float64{0, 0, 1000}}, fc.last().params["params"])
	require.Equal(t, "TestMesh", fc.last().params["target"])

	require.NoError(t, svc.ConnectNodes(ctx, ConnectSpec{
		Blueprint: "BP", SourceNode: evt, SourcePin: "Then", TargetNode: fn, TargetPin: "Execute",
	}))
	require.Equal(t, "EVT", fc.last().params["source_node_id"])
}

func TestMissingNodeIDIsProtocolError(t *testing.T) {
	fc := &fakeCaller{}
	_, err := NewService(fc).AddSelfReference(context.Background(), "BP", Pos(0, 0))
	require.Equal(t, apperrors.KindProtocol, apperrors.KindOf(err))
}

func TestValidationHappensBeforeSend(t *testing.T) {
	fc := &fakeCaller{}
	svc := NewService(fc)
	ctx := context.Background()

	_, err := svc.AddEventNode(ctx, "", "ReceiveBeginPlay", Pos(0, 0))
	require.Equal(t, apperrors.KindInvalidArgument, apperrors.KindOf(err))
	require.Contains(t, err.Error(), "Missing 'blueprint_name' parameter")

	err = svc.AddVariable(ctx, VariableSpec{Blueprint: "BP", Name: "V", Type: "Rotator"})
	require.Contains(t, err.Error(), "Unsupported variable type: Rotator")

	_, err = svc.FindNodes(ctx, "BP", "Event", "")
	require.Contains(t, err.Error(), "Missing 'event_name' parameter")

	require.Empty(t, fc.calls)
}

func TestFindNodes(t *testing.T) {
	fc := &fakeCaller{replies: map[string]string{
		CmdFindNodes: `{"status":"success","result":{"node_guids":["A","B"]}}`,
	}}
	ids, err := NewService(fc).FindNodes(context.Background(), "BP", "Event", "ReceiveBeginPlay")
	require.NoError(t, err)
	require.Equal(t, []NodeID{"A", "B"}, ids)
}

func TestSpawnActor(t *testing.T) {
	fc := &fakeCaller{replies: map[string]string{
		CmdSpawnBlueprintActor: `{"status":"success","result":{"name":"Actor1","location":[0,0,100]}}`,
	}}
	actor, err := NewService(fc).SpawnActor(context.Background(), SpawnSpec{
		Blueprint: "BP",
		ActorName: "Actor1",
		Transform: Transform{Location: Vec(0, 0, 100)},
	})
	require.NoError(t, err)
	require.Equal(t, "Actor1", actor.Name)
	require.Equal(t, []float64{0, 0, 100}, actor.Location)
	require.Equal(t, []float64{1, 1, 1}, fc.last().params["scale"])
}

func TestCommandErrorPropagates(t *testing.T) {
	fc := &fakeCaller{replies: map[string]string{
		CmdCompileBlueprint: `{"status":"error","error":"Blueprint not found: Nope"}`,
	}}
	err := NewService(fc).Compile(context.Background(), "Nope")
	require.Equal(t, apperrors.KindCommand, apperrors.KindOf(err))
	require.Contains(t, err.Error(), "Blueprint not found: Nope")
}
