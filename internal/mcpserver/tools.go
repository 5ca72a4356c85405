package mcpserver

import (
	"context"

	"unreal-mcp-go/internal/blueprint"
	apperrors "unreal-mcp-go/internal/errors"
	"unreal-mcp-go/internal/scenario"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Ack is returned by tools that only report success.
type Ack struct {
	OK bool `json:"ok" jsonschema:"true when the editor accepted the command"`
}

// NodeResult carries the GUID of a created graph node.
type NodeResult struct {
	NodeID string `json:"node_id" jsonschema:"GUID of the created node"`
}

// NameResult carries the name the editor assigned.
type NameResult struct {
	Name string `json:"name" jsonschema:"assigned name"`
}

// CreateBlueprintInput is the create_blueprint argument set.
type CreateBlueprintInput struct {
	Name        string `json:"name" jsonschema:"blueprint name"`
	ParentClass string `json:"parent_class,omitempty" jsonschema:"parent class, Actor when empty"`
}

// AddComponentInput is the add_component_to_blueprint argument set.
type AddComponentInput struct {
	BlueprintName       string         `json:"blueprint_name" jsonschema:"target blueprint"`
	ComponentType       string         `json:"component_type" jsonschema:"component class, e.g. StaticMeshComponent"`
	ComponentName       string         `json:"component_name" jsonschema:"name of the new component"`
	Location            []float64      `json:"location,omitempty" jsonschema:"relative location [x, y, z]"`
	Rotation            []float64      `json:"rotation,omitempty" jsonschema:"relative rotation [pitch, yaw, roll]"`
	Scale               []float64      `json:"scale,omitempty" jsonschema:"relative scale [x, y, z]"`
	ComponentProperties map[string]any `json:"component_properties,omitempty" jsonschema:"extra properties applied to the component"`
}

// StaticMeshInput is the set_static_mesh_properties argument set.
type StaticMeshInput struct {
	BlueprintName string `json:"blueprint_name" jsonschema:"target blueprint"`
	ComponentName string `json:"component_name" jsonschema:"static mesh component"`
	StaticMesh    string `json:"static_mesh,omitempty" jsonschema:"mesh asset path, e.g. /Engine/BasicShapes/Cube.Cube"`
}

// PhysicsInput is the set_physics_properties argument set.
type PhysicsInput struct {
	BlueprintName   string   `json:"blueprint_name" jsonschema:"target blueprint"`
	ComponentName   string   `json:"component_name" jsonschema:"primitive component"`
	SimulatePhysics *bool    `json:"simulate_physics,omitempty" jsonschema:"enable simulation, default true"`
	GravityEnabled  *bool    `json:"gravity_enabled,omitempty" jsonschema:"enable gravity, default true"`
	Mass            *float64 `json:"mass,omitempty" jsonschema:"mass in kg"`
	LinearDamping   *float64 `json:"linear_damping,omitempty"`
	AngularDamping  *float64 `json:"angular_damping,omitempty"`
}

// EventNodeInput is the add_blueprint_event_node argument set.
type EventNodeInput struct {
	BlueprintName string    `json:"blueprint_name" jsonschema:"target blueprint"`
	EventName     string    `json:"event_name" jsonschema:"event, e.g. ReceiveBeginPlay"`
	NodePosition  []float64 `json:"node_position,omitempty" jsonschema:"graph position [x, y]"`
}

// FunctionNodeInput is the add_blueprint_function_node argument set.
type FunctionNodeInput struct {
	BlueprintName string         `json:"blueprint_name" jsonschema:"target blueprint"`
	FunctionName  string         `json:"function_name" jsonschema:"function to call"`
	Target        string         `json:"target,omitempty" jsonschema:"component name or library class; self when empty"`
	Params        map[string]any `json:"params,omitempty" jsonschema:"pin default values by pin name"`
	NodePosition  []float64      `json:"node_position,omitempty" jsonschema:"graph position [x, y]"`
}

// ConnectInput is the connect_blueprint_nodes argument set.
type ConnectInput struct {
	BlueprintName string `json:"blueprint_name" jsonschema:"target blueprint"`
	SourceNodeID  string `json:"source_node_id" jsonschema:"node owning the output pin"`
	SourcePin     string `json:"source_pin" jsonschema:"output pin name"`
	TargetNodeID  string `json:"target_node_id" jsonschema:"node owning the input pin"`
	TargetPin     string `json:"target_pin" jsonschema:"input pin name"`
}

// ComponentReferenceInput is the add_blueprint_get_self_component_reference argument set.
type ComponentReferenceInput struct {
	BlueprintName string    `json:"blueprint_name" jsonschema:"target blueprint"`
	ComponentName string    `json:"component_name" jsonschema:"component to reference"`
	NodePosition  []float64 `json:"node_position,omitempty" jsonschema:"graph position [x, y]"`
}

// SelfReferenceInput is the add_blueprint_self_reference argument set.
type SelfReferenceInput struct {
	BlueprintName string    `json:"blueprint_name" jsonschema:"target blueprint"`
	NodePosition  []float64 `json:"node_position,omitempty" jsonschema:"graph position [x, y]"`
}

// InputActionInput is the add_blueprint_input_action_node argument set.
type InputActionInput struct {
	BlueprintName string    `json:"blueprint_name" jsonschema:"target blueprint"`
	ActionName    string    `json:"action_name" jsonschema:"input action name"`
	NodePosition  []float64 `json:"node_position,omitempty" jsonschema:"graph position [x, y]"`
}

// VariableInput is the add_blueprint_variable argument set.
type VariableInput struct {
	BlueprintName string `json:"blueprint_name" jsonschema:"target blueprint"`
	VariableName  string `json:"variable_name" jsonschema:"new member variable"`
	VariableType  string `json:"variable_type" jsonschema:"Boolean, Integer, Float, String or Vector"`
	IsExposed     bool   `json:"is_exposed,omitempty" jsonschema:"expose on spawn"`
}

// FindNodesInput is the find_blueprint_nodes argument set.
type FindNodesInput struct {
	BlueprintName string `json:"blueprint_name" jsonschema:"target blueprint"`
	NodeType      string `json:"node_type" jsonschema:"node kind, currently Event"`
	EventName     string `json:"event_name,omitempty" jsonschema:"event to match when node_type is Event"`
}

// FindNodesResult lists the nodes find_blueprint_nodes matched.
type FindNodesResult struct {
	NodeGUIDs []string `json:"node_guids" jsonschema:"matching node GUIDs"`
}

// BlueprintInput names a blueprint, for compile_blueprint.
type BlueprintInput struct {
	BlueprintName string `json:"blueprint_name" jsonschema:"target blueprint"`
}

// SpawnInput is the spawn_blueprint_actor argument set.
type SpawnInput struct {
	BlueprintName string    `json:"blueprint_name" jsonschema:"blueprint to instantiate"`
	ActorName     string    `json:"actor_name" jsonschema:"name of the spawned actor"`
	Location      []float64 `json:"location,omitempty" jsonschema:"world location [x, y, z]"`
	Rotation      []float64 `json:"rotation,omitempty" jsonschema:"world rotation [pitch, yaw, roll]"`
	Scale         []float64 `json:"scale,omitempty" jsonschema:"world scale [x, y, z]"`
}

// SpawnResult describes the spawned actor.
type SpawnResult struct {
	Name     string    `json:"name"`
	Class    string    `json:"class,omitempty"`
	Location []float64 `json:"location,omitempty"`
	Rotation []float64 `json:"rotation,omitempty"`
	Scale    []float64 `json:"scale,omitempty"`
}

// SmokeTestInput configures run_smoke_test.
type SmokeTestInput struct {
	BlueprintName string `json:"blueprint_name,omitempty" jsonschema:"blueprint to create; a random name when empty"`
}

// SmokeStep is one step of a smoke run.
type SmokeStep struct {
	Name       string `json:"name"`
	Command    string `json:"command"`
	Status     string `json:"status"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// SmokeTestResult summarizes a smoke run.
type SmokeTestResult struct {
	RunID      string      `json:"run_id"`
	Blueprint  string      `json:"blueprint"`
	Status     string      `json:"status"`
	DurationMS int64       `json:"duration_ms"`
	Steps      []SmokeStep `json:"steps"`
}

func (s *Server) registerTools() {
	addTool(s, &mcp.Tool{
		Name:        blueprint.CmdCreateBlueprint,
		Description: "Creates a blueprint class.",
	}, s.createBlueprint)
	addTool(s, &mcp.Tool{
		Name:        blueprint.CmdAddComponent,
		Description: "Adds a component to a blueprint.",
	}, s.addComponent)
	addTool(s, &mcp.Tool{
		Name:        blueprint.CmdSetStaticMeshProperties,
		Description: "Assigns a mesh asset to a static mesh component.",
	}, s.setStaticMesh)
	addTool(s, &mcp.Tool{
		Name:        blueprint.CmdSetPhysicsProperties,
		Description: "Configures physics on a primitive component.",
	}, s.setPhysics)
	addTool(s, &mcp.Tool{
		Name:        blueprint.CmdAddEventNode,
		Description: "Adds an event node to the blueprint's event graph.",
	}, s.addEventNode)
	addTool(s, &mcp.Tool{
		Name:        blueprint.CmdAddFunctionNode,
		Description: "Adds a function call node to the blueprint's event graph.",
	}, s.addFunctionNode)
	addTool(s, &mcp.Tool{
		Name:        blueprint.CmdConnectNodes,
		Description: "Links an output pin to an input pin.",
	}, s.connectNodes)
	addTool(s, &mcp.Tool{
		Name:        blueprint.CmdAddComponentReference,
		Description: "Adds a getter node for one of the blueprint's components.",
	}, s.addComponentReference)
	addTool(s, &mcp.Tool{
		Name:        blueprint.CmdAddSelfReference,
		Description: "Adds a Get self node.",
	}, s.addSelfReference)
	addTool(s, &mcp.Tool{
		Name:        blueprint.CmdAddInputActionNode,
		Description: "Adds an input action event node.",
	}, s.addInputAction)
	addTool(s, &mcp.Tool{
		Name:        blueprint.CmdAddVariable,
		Description: "Declares a member variable on the blueprint.",
	}, s.addVariable)
	addTool(s, &mcp.Tool{
		Name:        blueprint.CmdFindNodes,
		Description: "Finds nodes in the blueprint's event graph.",
	}, s.findNodes)
	addTool(s, &mcp.Tool{
		Name:        blueprint.CmdCompileBlueprint,
		Description: "Compiles the blueprint.",
	}, s.compile)
	addTool(s, &mcp.Tool{
		Name:        blueprint.CmdSpawnBlueprintActor,
		Description: "Spawns an instance of the blueprint into the level.",
	}, s.spawnActor)
	addTool(s, &mcp.Tool{
		Name:        "run_smoke_test",
		Description: "Builds, compiles and spawns a physics cube blueprint to verify the editor connection end to end.",
	}, s.runSmokeTest)
}

func vector(field string, v []float64, def blueprint.Vector) (blueprint.Vector, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 3:
		return blueprint.Vec(v[0], v[1], v[2]), nil
	default:
		return def, apperrors.Newf(apperrors.KindInvalidArgument, "validate", "", "%s needs 3 numbers, got %d", field, len(v))
	}
}

func position(v []float64) (blueprint.Position, error) {
	switch len(v) {
	case 0:
		return blueprint.Position{}, nil
	case 2:
		return blueprint.Pos(v[0], v[1]), nil
	default:
		return blueprint.Position{}, apperrors.Newf(apperrors.KindInvalidArgument, "validate", "", "node_position needs 2 numbers, got %d", len(v))
	}
}

func transform(loc, rot, scale []float64) (blueprint.Transform, error) {
	var t blueprint.Transform
	var err error
	if t.Location, err = vector("location", loc, blueprint.Vector{}); err != nil {
		return t, err
	}
	if t.Rotation, err = vector("rotation", rot, blueprint.Vector{}); err != nil {
		return t, err
	}
	s, err := vector("scale", scale, blueprint.UnitScale)
	if err != nil {
		return t, err
	}
	return t.WithScale(s), nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func (s *Server) createBlueprint(ctx context.Context, _ *mcp.CallToolRequest, in CreateBlueprintInput) (*mcp.CallToolResult, NameResult, error) {
	name, err := s.svc.CreateBlueprint(ctx, in.Name, in.ParentClass)
	if err != nil {
		return nil, NameResult{}, err
	}
	return nil, NameResult{Name: name}, nil
}

func (s *Server) addComponent(ctx context.Context, _ *mcp.CallToolRequest, in AddComponentInput) (*mcp.CallToolResult, NameResult, error) {
	t, err := transform(in.Location, in.Rotation, in.Scale)
	if err != nil {
		return nil, NameResult{}, err
	}
	name, err := s.svc.AddComponent(ctx, blueprint.ComponentSpec{
		Blueprint:  in.BlueprintName,
		Type:       in.ComponentType,
		Name:       in.ComponentName,
		Transform:  t,
		Properties: in.ComponentProperties,
	})
	if err != nil {
		return nil, NameResult{}, err
	}
	return nil, NameResult{Name: name}, nil
}

func (s *Server) setStaticMesh(ctx context.Context, _ *mcp.CallToolRequest, in StaticMeshInput) (*mcp.CallToolResult, Ack, error) {
	err := s.svc.SetStaticMeshProperties(ctx, blueprint.StaticMeshSpec{
		Blueprint:  in.BlueprintName,
		Component:  in.ComponentName,
		StaticMesh: in.StaticMesh,
	})
	return nil, Ack{OK: err == nil}, err
}

func (s *Server) setPhysics(ctx context.Context, _ *mcp.CallToolRequest, in PhysicsInput) (*mcp.CallToolResult, Ack, error) {
	err := s.svc.SetPhysicsProperties(ctx, blueprint.PhysicsSpec{
		Blueprint:      in.BlueprintName,
		Component:      in.ComponentName,
		Simulate:       boolOr(in.SimulatePhysics, true),
		Gravity:        boolOr(in.GravityEnabled, true),
		Mass:           in.Mass,
		LinearDamping:  in.LinearDamping,
		AngularDamping: in.AngularDamping,
	})
	return nil, Ack{OK: err == nil}, err
}

func (s *Server) addEventNode(ctx context.Context, _ *mcp.CallToolRequest, in EventNodeInput) (*mcp.CallToolResult, NodeResult, error) {
	pos, err := position(in.NodePosition)
	if err != nil {
		return nil, NodeResult{}, err
	}
	id, err := s.svc.AddEventNode(ctx, in.BlueprintName, in.EventName, pos)
	return nil, NodeResult{NodeID: string(id)}, err
}

func (s *Server) addFunctionNode(ctx context.Context, _ *mcp.CallToolRequest, in FunctionNodeInput) (*mcp.CallToolResult, NodeResult, error) {
	pos, err := position(in.NodePosition)
	if err != nil {
		return nil, NodeResult{}, err
	}
	id, err := s.svc.AddFunctionNode(ctx, blueprint.FunctionCallSpec{
		Blueprint: in.BlueprintName,
		Function:  in.FunctionName,
		Target:    in.Target,
		Params:    in.Params,
		Position:  pos,
	})
	return nil, NodeResult{NodeID: string(id)}, err
}

func (s *Server) connectNodes(ctx context.Context, _ *mcp.CallToolRequest, in ConnectInput) (*mcp.CallToolResult, Ack, error) {
	err := s.svc.ConnectNodes(ctx, blueprint.ConnectSpec{
		Blueprint:  in.BlueprintName,
		SourceNode: blueprint.NodeID(in.SourceNodeID),
		SourcePin:  in.SourcePin,
		TargetNode: blueprint.NodeID(in.TargetNodeID),
		TargetPin:  in.TargetPin,
	})
	return nil, Ack{OK: err == nil}, err
}

func (s *Server) addComponentReference(ctx context.Context, _ *mcp.CallToolRequest, in ComponentReferenceInput) (*mcp.CallToolResult, NodeResult, error) {
	pos, err := position(in.NodePosition)
	if err != nil {
		return nil, NodeResult{}, err
	}
	id, err := s.svc.AddComponentReference(ctx, in.BlueprintName, in.ComponentName, pos)
	return nil, NodeResult{NodeID: string(id)}, err
}

func (s *Server) addSelfReference(ctx context.Context, _ *mcp.CallToolRequest, in SelfReferenceInput) (*mcp.CallToolResult, NodeResult, error) {
	pos, err := position(in.NodePosition)
	if err != nil {
		return nil, NodeResult{}, err
	}
	id, err := s.svc.AddSelfReference(ctx, in.BlueprintName, pos)
	return nil, NodeResult{NodeID: string(id)}, err
}

func (s *Server) addInputAction(ctx context.Context, _ *mcp.CallToolRequest, in InputActionInput) (*mcp.CallToolResult, NodeResult, error) {
	pos, err := position(in.NodePosition)
	if err != nil {
		return nil, NodeResult{}, err
	}
	id, err := s.svc.AddInputActionNode(ctx, in.BlueprintName, in.ActionName, pos)
	return nil, NodeResult{NodeID: string(id)}, err
}

func (s *Server) addVariable(ctx context.Context, _ *mcp.CallToolRequest, in VariableInput) (*mcp.CallToolResult, Ack, error) {
	err := s.svc.AddVariable(ctx, blueprint.VariableSpec{
		Blueprint: in.BlueprintName,
		Name:      in.VariableName,
		Type:      in.VariableType,
		Exposed:   in.IsExposed,
	})
	return nil, Ack{OK: err == nil}, err
}

func (s *Server) findNodes(ctx context.Context, _ *mcp.CallToolRequest, in FindNodesInput) (*mcp.CallToolResult, FindNodesResult, error) {
	ids, err := s.svc.FindNodes(ctx, in.BlueprintName, in.NodeType, in.EventName)
	if err != nil {
		return nil, FindNodesResult{}, err
	}
	out := FindNodesResult{NodeGUIDs: make([]string, len(ids))}
	for i, id := range ids {
		out.NodeGUIDs[i] = string(id)
	}
	return nil, out, nil
}

func (s *Server) compile(ctx context.Context, _ *mcp.CallToolRequest, in BlueprintInput) (*mcp.CallToolResult, Ack, error) {
	err := s.svc.Compile(ctx, in.BlueprintName)
	return nil, Ack{OK: err == nil}, err
}

func (s *Server) spawnActor(ctx context.Context, _ *mcp.CallToolRequest, in SpawnInput) (*mcp.CallToolResult, SpawnResult, error) {
	t, err := transform(in.Location, in.Rotation, in.Scale)
	if err != nil {
		return nil, SpawnResult{}, err
	}
	actor, err := s.svc.SpawnActor(ctx, blueprint.SpawnSpec{
		Blueprint: in.BlueprintName,
		ActorName: in.ActorName,
		Transform: t,
	})
	if err != nil {
		return nil, SpawnResult{}, err
	}
	return nil, SpawnResult(actor), nil
}

func (s *Server) runSmokeTest(ctx context.Context, _ *mcp.CallToolRequest, in SmokeTestInput) (*mcp.CallToolResult, SmokeTestResult, error) {
	name := in.BlueprintName
	if name == "" {
		name = scenario.BlueprintName(s.deps.BlueprintPrefix, s.deps.SuffixLength)
	}
	runner := &scenario.Runner{
		Caller:    s.deps.Caller,
		Publisher: s.deps.Publisher,
		Recorder:  s.deps.Recorder,
		Address:   s.deps.Address,
	}
	report, err := runner.Run(ctx, scenario.ComponentReference(name))
	if report == nil {
		return nil, SmokeTestResult{}, err
	}
	out := SmokeTestResult{
		RunID:      report.ID,
		Blueprint:  report.Blueprint,
		Status:     report.Status,
		DurationMS: report.DurationMS,
		Steps:      make([]SmokeStep, len(report.Steps)),
	}
	for i, st := range report.Steps {
		out.Steps[i] = SmokeStep{
			Name:       st.Name,
			Command:    st.Command,
			Status:     st.Status,
			DurationMS: st.DurationMS,
			Error:      st.Error,
		}
	}
	return nil, out, err
}
