package blueprint

// Vector is a 3-component engine vector, sent as [x, y, z].
type Vector struct {
	X, Y, Z float64
}

// Position is a graph-editor coordinate, sent as [x, y].
type Position struct {
	X, Y float64
}

// NodeID is the GUID string the editor assigns to a graph node.
type NodeID string

// Vec is shorthand for Vector{x, y, z}.
func Vec(x, y, z float64) Vector { return Vector{X: x, Y: y, Z: z} }

// Pos is shorthand for Position{x, y}.
func Pos(x, y float64) Position { return Position{X: x, Y: y} }

// UnitScale is the identity scale.
var UnitScale = Vector{X: 1, Y: 1, Z: 1}

func (v Vector) params() []float64   { return []float64{v.X, v.Y, v.Z} }
func (p Position) params() []float64 { return []float64{p.X, p.Y} }

// Transform groups location, rotation and scale. A nil Scale sends the
// unit scale.
type Transform struct {
	Location Vector
	Rotation Vector
	Scale    *Vector
}

// IdentityTransform is at the origin with unit scale.
func IdentityTransform() Transform {
	scale := UnitScale
	return Transform{Scale: &scale}
}

// WithScale returns t with an explicit scale, zero included.
func (t Transform) WithScale(s Vector) Transform {
	t.Scale = &s
	return t
}

func (t Transform) apply(params map[string]any) {
	scale := UnitScale
	if t.Scale != nil {
		scale = *t.Scale
	}
	params["location"] = t.Location.params()
	params["rotation"] = t.Rotation.params()
	params["scale"] = scale.params()
}

// ComponentSpec describes add_component_to_blueprint.
type ComponentSpec struct {
	Blueprint string
	Type      string
	Name      string
	Transform Transform
	// Properties are passed through as component_properties when set.
	Properties map[string]any
}

// StaticMeshSpec describes set_static_mesh_properties.
type StaticMeshSpec struct {
	Blueprint  string
	Component  string
	StaticMesh string
}

// PhysicsSpec describes set_physics_properties. Optional fields are omitted
// when nil so the editor keeps its defaults.
type PhysicsSpec struct {
	Blueprint      string
	Component      string
	Simulate       bool
	Gravity        bool
	Mass           *float64
	LinearDamping  *float64
	AngularDamping *float64
}

// FunctionCallSpec describes add_blueprint_function_node.
type FunctionCallSpec struct {
	Blueprint string
	Function  string
	// Target is a component name, a library class such as
	// "GameplayStatics", or empty for self.
	Target   string
	Params   map[string]any
	Position Position
}

// ConnectSpec describes connect_blueprint_nodes.
type ConnectSpec struct {
	Blueprint  string
	SourceNode NodeID
	SourcePin  string
	TargetNode NodeID
	TargetPin  string
}

// VariableSpec describes add_blueprint_variable.
type VariableSpec struct {
	Blueprint string
	Name      string
	Type      string
	Exposed   bool
}

// VariableTypes lists the accepted VariableSpec.Type values.
var VariableTypes = []string{"Boolean", "Integer", "Int", "Float", "String", "Vector"}

// SpawnSpec describes spawn_blueprint_actor.
type SpawnSpec struct {
	Blueprint string
	ActorName string
	Transform Transform
}

// Actor is the editor's description of a spawned actor.
type Actor struct {
	Name     string    `json:"name"`
	Class    string    `json:"class,omitempty"`
	Location []float64 `json:"location,omitempty"`
	Rotation []float64 `json:"rotation,omitempty"`
	Scale    []float64 `json:"scale,omitempty"`
}
