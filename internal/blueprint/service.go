// Package blueprint offers typed wrappers around the editor's blueprint and
// graph commands.
package blueprint

import (
	"context"
	"encoding/json"
	"strings"

	apperrors "unreal-mcp-go/internal/errors"
	"unreal-mcp-go/internal/protocol"
)

// Command names understood by the editor plugin.
const (
	CmdCreateBlueprint          = "create_blueprint"
	CmdAddComponent             = "add_component_to_blueprint"
	CmdSetStaticMeshProperties  = "set_static_mesh_properties"
	CmdSetPhysicsProperties     = "set_physics_properties"
	CmdAddEventNode             = "add_blueprint_event_node"
	CmdAddFunctionNode          = "add_blueprint_function_node"
	CmdConnectNodes             = "connect_blueprint_nodes"
	CmdAddComponentReference    = "add_blueprint_get_self_component_reference"
	CmdAddSelfReference         = "add_blueprint_self_reference"
	CmdAddInputActionNode       = "add_blueprint_input_action_node"
	CmdAddVariable              = "add_blueprint_variable"
	CmdFindNodes                = "find_blueprint_nodes"
	CmdCompileBlueprint         = "compile_blueprint"
	CmdSpawnBlueprintActor      = "spawn_blueprint_actor"
	DefaultStaticMeshComponent  = "/Script/Engine.StaticMeshComponent"
	DefaultParentClass          = "Actor"
)

// Caller sends one command and returns the decoded reply; a non-success
// status must be reported as an error. *upstream.Client satisfies it.
type Caller interface {
	Call(ctx context.Context, commandType string, params map[string]any) (*protocol.Response, error)
}

// Service exposes typed blueprint operations.
type Service struct {
	caller Caller
}

// NewService wraps caller.
func NewService(caller Caller) *Service {
	return &Service{caller: caller}
}

func required(command string, fields ...string) error {
	for i := 0; i+1 < len(fields); i += 2 {
		if strings.TrimSpace(fields[i+1]) == "" {
			return apperrors.Newf(apperrors.KindInvalidArgument, "validate", command, "Missing '%s' parameter", fields[i])
		}
	}
	return nil
}

// CreateBlueprint creates a blueprint class and returns its name.
func (s *Service) CreateBlueprint(ctx context.Context, name, parentClass string) (string, error) {
	if err := required(CmdCreateBlueprint, "name", name); err != nil {
		return "", err
	}
	if parentClass == "" {
		parentClass = DefaultParentClass
	}
	resp, err := s.caller.Call(ctx, CmdCreateBlueprint, map[string]any{
		"name":         name,
		"parent_class": parentClass,
	})
	if err != nil {
		return "", err
	}
	if got := resp.String("name"); got != "" {
		return got, nil
	}
	return name, nil
}

// AddComponent adds a component to a blueprint and returns its name.
func (s *Service) AddComponent(ctx context.Context, spec ComponentSpec) (string, error) {
	if err := required(CmdAddComponent,
		"blueprint_name", spec.Blueprint,
		"component_type", spec.Type,
		"component_name", spec.Name,
	); err != nil {
		return "", err
	}
	params := map[string]any{
		"blueprint_name": spec.Blueprint,
		"component_type": spec.Type,
		"component_name": spec.Name,
	}
	spec.Transform.apply(params)
	if len(spec.Properties) > 0 {
		params["component_properties"] = spec.Properties
	}
	resp, err := s.caller.Call(ctx, CmdAddComponent, params)
	if err != nil {
		return "", err
	}
	if got := resp.String("component_name"); got != "" {
		return got, nil
	}
	return spec.Name, nil
}

// SetStaticMeshProperties assigns a mesh asset to a static mesh component.
func (s *Service) SetStaticMeshProperties(ctx context.Context, spec StaticMeshSpec) error {
	if err := required(CmdSetStaticMeshProperties,
		"blueprint_name", spec.Blueprint,
		"component_name", spec.Component,
	); err != nil {
		return err
	}
	params := map[string]any{
		"blueprint_name": spec.Blueprint,
		"component_name": spec.Component,
	}
	if spec.StaticMesh != "" {
		params["static_mesh"] = spec.StaticMesh
	}
	_, err := s.caller.Call(ctx, CmdSetStaticMeshProperties, params)
	return err
}

// SetPhysicsProperties configures physics on a primitive component.
func (s *Service) SetPhysicsProperties(ctx context.Context, spec PhysicsSpec) error {
	if err := required(CmdSetPhysicsProperties,
		"blueprint_name", spec.Blueprint,
		"component_name", spec.Component,
	); err != nil {
		return err
	}
	params := map[string]any{
		"blueprint_name":   spec.Blueprint,
		"component_name":   spec.Component,
		"simulate_physics": spec.Simulate,
		"gravity_enabled":  spec.Gravity,
	}
	if spec.Mass != nil {
		params["mass"] = *spec.Mass
	}
	if spec.LinearDamping != nil {
		params["linear_damping"] = *spec.LinearDamping
	}
	if spec.AngularDamping != nil {
		params["angular_damping"] = *spec.AngularDamping
	}
	_, err := s.caller.Call(ctx, CmdSetPhysicsProperties, params)
	return err
}

// AddEventNode places an event node such as ReceiveBeginPlay.
func (s *Service) AddEventNode(ctx context.Context, bp, event string, pos Position) (NodeID, error) {
	if err := required(CmdAddEventNode, "blueprint_name", bp, "event_name", event); err != nil {
		return "", err
	}
	return s.callNode(ctx, CmdAddEventNode, map[string]any{
		"blueprint_name": bp,
		"event_name":     event,
		"node_position":  pos.params(),
	})
}

// AddFunctionNode places a function call node.
func (s *Service) AddFunctionNode(ctx context.Context, spec FunctionCallSpec) (NodeID, error) {
	if err := required(CmdAddFunctionNode,
		"blueprint_name", spec.Blueprint,
		"function_name", spec.Function,
	); err != nil {
		return "", err
	}
	params := map[string]any{
		"blueprint_name": spec.Blueprint,
		"function_name":  spec.Function,
		"node_position":  spec.Position.params(),
	}
	if spec.Target != "" {
		params["target"] = spec.Target
	}
	if len(spec.Params) > 0 {
		params["params"] = normalizeParams(spec.Params)
	}
	return s.callNode(ctx, CmdAddFunctionNode, params)
}

// ConnectNodes links an output pin to an input pin.
func (s *Service) ConnectNodes(ctx context.Context, spec ConnectSpec) error {
	if err := required(CmdConnectNodes,
		"blueprint_name", spec.Blueprint,
		"source_node_id", string(spec.SourceNode),
		"target_node_id", string(spec.TargetNode),
		"source_pin", spec.SourcePin,
		"target_pin", spec.TargetPin,
	); err != nil {
		return err
	}
	_, err := s.caller.Call(ctx, CmdConnectNodes, map[string]any{
		"blueprint_name": spec.Blueprint,
		"source_node_id": string(spec.SourceNode),
		"source_pin":     spec.SourcePin,
		"target_node_id": string(spec.TargetNode),
		"target_pin":     spec.TargetPin,
	})
	return err
}

// AddComponentReference places a getter node for one of the blueprint's
// components.
func (s *Service) AddComponentReference(ctx context.Context, bp, component string, pos Position) (NodeID, error) {
	if err := required(CmdAddComponentReference, "blueprint_name", bp, "component_name", component); err != nil {
		return "", err
	}
	return s.callNode(ctx, CmdAddComponentReference, map[string]any{
		"blueprint_name": bp,
		"component_name": component,
		"node_position":  pos.params(),
	})
}

// AddSelfReference places a "Get self" node.
func (s *Service) AddSelfReference(ctx context.Context, bp string, pos Position) (NodeID, error) {
	if err := required(CmdAddSelfReference, "blueprint_name", bp); err != nil {
		return "", err
	}
	return s.callNode(ctx, CmdAddSelfReference, map[string]any{
		"blueprint_name": bp,
		"node_position":  pos.params(),
	})
}

// AddInputActionNode places an input action event node.
func (s *Service) AddInputActionNode(ctx context.Context, bp, action string, pos Position) (NodeID, error) {
	if err := required(CmdAddInputActionNode, "blueprint_name", bp, "action_name", action); err != nil {
		return "", err
	}
	return s.callNode(ctx, CmdAddInputActionNode, map[string]any{
		"blueprint_name": bp,
		"action_name":    action,
		"node_position":  pos.params(),
	})
}

// AddVariable declares a member variable on the blueprint.
func (s *Service) AddVariable(ctx context.Context, spec VariableSpec) error {
	if err := required(CmdAddVariable,
		"blueprint_name", spec.Blueprint,
		"variable_name", spec.Name,
		"variable_type", spec.Type,
	); err != nil {
		return err
	}
	valid := false
	for _, t := range VariableTypes {
		if t == spec.Type {
			valid = true
			break
		}
	}
	if !valid {
		return apperrors.Newf(apperrors.KindInvalidArgument, "validate", CmdAddVariable, "Unsupported variable type: %s", spec.Type)
	}
	_, err := s.caller.Call(ctx, CmdAddVariable, map[string]any{
		"blueprint_name": spec.Blueprint,
		"variable_name":  spec.Name,
		"variable_type":  spec.Type,
		"is_exposed":     spec.Exposed,
	})
	return err
}

// FindNodes searches the event graph. nodeType "Event" requires eventName.
func (s *Service) FindNodes(ctx context.Context, bp, nodeType, eventName string) ([]NodeID, error) {
	if err := required(CmdFindNodes, "blueprint_name", bp, "node_type", nodeType); err != nil {
		return nil, err
	}
	if nodeType == "Event" {
		if err := required(CmdFindNodes, "event_name", eventName); err != nil {
			return nil, err
		}
	}
	params := map[string]any{
		"blueprint_name": bp,
		"node_type":      nodeType,
	}
	if eventName != "" {
		params["event_name"] = eventName
	}
	resp, err := s.caller.Call(ctx, CmdFindNodes, params)
	if err != nil {
		return nil, err
	}
	guids := resp.Get("node_guids")
	if !guids.IsArray() {
		return nil, apperrors.New(apperrors.KindProtocol, "decode", CmdFindNodes, "response missing node_guids")
	}
	out := make([]NodeID, 0, len(guids.Array()))
	for _, g := range guids.Array() {
		out = append(out, NodeID(g.String()))
	}
	return out, nil
}

// Compile compiles the blueprint.
func (s *Service) Compile(ctx context.Context, bp string) error {
	if err := required(CmdCompileBlueprint, "blueprint_name", bp); err != nil {
		return err
	}
	_, err := s.caller.Call(ctx, CmdCompileBlueprint, map[string]any{"blueprint_name": bp})
	return err
}

// SpawnActor spawns an instance of the blueprint into the level.
func (s *Service) SpawnActor(ctx context.Context, spec SpawnSpec) (Actor, error) {
	if err := required(CmdSpawnBlueprintActor,
		"blueprint_name", spec.Blueprint,
		"actor_name", spec.ActorName,
	); err != nil {
		return Actor{}, err
	}
	params := map[string]any{
		"blueprint_name": spec.Blueprint,
		"actor_name":     spec.ActorName,
	}
	spec.Transform.apply(params)
	resp, err := s.caller.Call(ctx, CmdSpawnBlueprintActor, params)
	if err != nil {
		return Actor{}, err
	}
	actor := Actor{Name: spec.ActorName}
	if raw := resp.ResultJSON(); len(raw) > 2 {
		if err := json.Unmarshal(raw, &actor); err != nil {
			return Actor{}, apperrors.Wrap(apperrors.KindProtocol, "decode", CmdSpawnBlueprintActor, err)
		}
	}
	if actor.Name == "" {
		actor.Name = spec.ActorName
	}
	return actor, nil
}

func (s *Service) callNode(ctx context.Context, command string, params map[string]any) (NodeID, error) {
	resp, err := s.caller.Call(ctx, command, params)
	if err != nil {
		return "", err
	}
	id := resp.String("node_id")
	if id == "" {
		return "", apperrors.New(apperrors.KindProtocol, "decode", command, "response missing node_id")
	}
	return NodeID(id), nil
}

// normalizeParams converts typed vectors inside function params to the
// array form the editor expects.
func normalizeParams(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		switch tv := v.(type) {
		case Vector:
			out[k] = tv.params()
		case Position:
			out[k] = tv.params()
		default:
			out[k] = v
		}
	}
	return out
}
