package scenario

import (
	"math/rand/v2"

	"unreal-mcp-go/internal/blueprint"
	"unreal-mcp-go/internal/constants"
)

// ComponentReferenceName identifies the built-in smoke scenario.
const ComponentReferenceName = "component_reference"

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomSuffix returns n random ASCII letters and digits.
func RandomSuffix(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = suffixAlphabet[rand.IntN(len(suffixAlphabet))]
	}
	return string(b)
}

// BlueprintName joins prefix with an n-character random suffix.
func BlueprintName(prefix string, n int) string {
	if prefix == "" {
		prefix = constants.DefaultBlueprintPrefix
	}
	return prefix + RandomSuffix(n)
}

// DefaultBlueprintName returns TestCompRefBP_ plus a 3-character suffix so
// repeated runs do not collide.
func DefaultBlueprintName() string {
	return BlueprintName(constants.DefaultBlueprintPrefix, constants.DefaultSuffixLength)
}

// ComponentReference builds the nine-step smoke scenario: create a
// blueprint, give it a physics-enabled cube mesh, wire BeginPlay to an
// AddForce call on that mesh, compile and spawn it.
func ComponentReference(blueprintName string) *Scenario {
	if blueprintName == "" {
		blueprintName = DefaultBlueprintName()
	}
	return &Scenario{
		Name:        ComponentReferenceName,
		Description: "component reference smoke test",
		Vars:        map[string]string{"blueprint": blueprintName},
		Steps: []Step{
			{
				Name:    "create_blueprint",
				Command: blueprint.CmdCreateBlueprint,
				Params: map[string]any{
					"name":         "${blueprint}",
					"parent_class": blueprint.DefaultParentClass,
				},
			},
			{
				Name:    "add_static_mesh_component",
				Command: blueprint.CmdAddComponent,
				Params: map[string]any{
					"blueprint_name": "${blueprint}",
					"component_type": blueprint.DefaultStaticMeshComponent,
					"component_name": "TestMesh",
					"location":       []any{0.0, 0.0, 0.0},
					"rotation":       []any{0.0, 0.0, 0.0},
					"scale":          []any{1.0, 1.0, 1.0},
				},
			},
			{
				Name:    "set_static_mesh",
				Command: blueprint.CmdSetStaticMeshProperties,
				Params: map[string]any{
					"blueprint_name": "${blueprint}",
					"component_name": "TestMesh",
					"static_mesh":    "/Engine/BasicShapes/Cube.Cube",
				},
			},
			{
				Name:    "enable_physics",
				Command: blueprint.CmdSetPhysicsProperties,
				Params: map[string]any{
					"blueprint_name":   "${blueprint}",
					"component_name":   "TestMesh",
					"simulate_physics": true,
					"gravity_enabled":  true,
				},
			},
			{
				Name:    "add_begin_play",
				Command: blueprint.CmdAddEventNode,
				Params: map[string]any{
					"blueprint_name": "${blueprint}",
					"event_name":     "ReceiveBeginPlay",
					"node_position":  []any{0.0, 0.0},
				},
				Capture: map[string]string{"event_node": "node_id"},
			},
			{
				Name:    "add_force_call",
				Command: blueprint.CmdAddFunctionNode,
				Params: map[string]any{
					"blueprint_name": "${blueprint}",
					"function_name":  "AddForce",
					"target":         "TestMesh",
					"params": map[string]any{
						"Force": []any{0.0, 0.0, 1000.0},
					},
					"node_position": []any{400.0, 0.0},
				},
				Capture: map[string]string{"function_node": "node_id"},
			},
			{
				Name:    "connect_nodes",
				Command: blueprint.CmdConnectNodes,
				Params: map[string]any{
					"blueprint_name": "${blueprint}",
					"source_node_id": "${event_node}",
					"source_pin":     "Then",
					"target_node_id": "${function_node}",
					"target_pin":     "Execute",
				},
			},
			{
				Name:    "compile_blueprint",
				Command: blueprint.CmdCompileBlueprint,
				Params: map[string]any{
					"blueprint_name": "${blueprint}",
				},
			},
			{
				Name:    "spawn_actor",
				Command: blueprint.CmdSpawnBlueprintActor,
				Params: map[string]any{
					"blueprint_name": "${blueprint}",
					"actor_name":     "TestCompRefActor",
					"location":       []any{0.0, 0.0, 100.0},
					"rotation":       []any{0.0, 0.0, 0.0},
					"scale":          []any{1.0, 1.0, 1.0},
				},
			},
		},
	}
}
