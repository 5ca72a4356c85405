package engine

import (
	"strings"

	"github.com/google/uuid"
)

// Vec3 is a location, rotation or scale triple.
type Vec3 [3]float64

// Vec2 is a graph position.
type Vec2 [2]float64

// PinDirection is the data-flow direction of a pin.
type PinDirection string

const (
	PinInput  PinDirection = "input"
	PinOutput PinDirection = "output"
)

// PinTypeExec marks execution-flow pins.
const PinTypeExec = "exec"

// Node kinds.
const (
	NodeEvent        = "Event"
	NodeFunctionCall = "FunctionCall"
	NodeVariableGet  = "VariableGet"
	NodeSelf         = "Self"
	NodeInputAction  = "InputAction"
)

// PinRef addresses a pin on another node.
type PinRef struct {
	Node string `json:"node"`
	Pin  string `json:"pin"`
}

// Pin is a node connector.
type Pin struct {
	Name      string       `json:"name"`
	Direction PinDirection `json:"direction"`
	Type      string       `json:"type"`
	Default   string       `json:"default,omitempty"`
	LinkedTo  []PinRef     `json:"linked_to,omitempty"`
}

// Node is an event graph node.
type Node struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Title    string `json:"title"`
	Event    string `json:"event,omitempty"`
	Function string `json:"function,omitempty"`
	Target   string `json:"target,omitempty"`
	Position Vec2   `json:"position"`
	Pins     []*Pin `json:"pins"`
}

// Pin finds a pin by name, case-insensitively, optionally filtered by
// direction.
func (n *Node) Pin(name string, dir PinDirection) *Pin {
	for _, p := range n.Pins {
		if strings.EqualFold(p.Name, name) && (dir == "" || p.Direction == dir) {
			return p
		}
	}
	return nil
}

// Component is a construction-script component.
type Component struct {
	Name            string         `json:"name"`
	Class           string         `json:"class"`
	Location        Vec3           `json:"location"`
	Rotation        Vec3           `json:"rotation"`
	Scale           Vec3           `json:"scale"`
	StaticMesh      string         `json:"static_mesh,omitempty"`
	SimulatePhysics bool           `json:"simulate_physics"`
	GravityEnabled  bool           `json:"gravity_enabled"`
	Mass            float64        `json:"mass,omitempty"`
	LinearDamping   float64        `json:"linear_damping,omitempty"`
	AngularDamping  float64        `json:"angular_damping,omitempty"`
	Properties      map[string]any `json:"properties,omitempty"`
}

// Variable is a blueprint member variable.
type Variable struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Exposed bool   `json:"exposed"`
}

// Blueprint is an in-memory blueprint asset.
type Blueprint struct {
	Name        string       `json:"name"`
	Path        string       `json:"path"`
	ParentClass string       `json:"parent_class"`
	Components  []*Component `json:"components"`
	Nodes       []*Node      `json:"nodes"`
	Variables   []Variable   `json:"variables"`
	Compiled    bool         `json:"compiled"`
}

// GeneratedClass is the class name the editor gives the compiled blueprint.
func (b Blueprint) GeneratedClass() string { return b.Name + "_C" }

// Component finds a component by exact name.
func (b Blueprint) Component(name string) *Component {
	for _, c := range b.Components {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Node finds a node by id.
func (b Blueprint) Node(id string) *Node {
	for _, n := range b.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

func (b *Blueprint) addNode(n *Node) *Node {
	n.ID = newNodeID()
	b.Nodes = append(b.Nodes, n)
	b.Compiled = false
	return n
}

// Actor is a spawned blueprint instance.
type Actor struct {
	Name      string `json:"name"`
	Blueprint string `json:"blueprint"`
	Class     string `json:"class"`
	Location  Vec3   `json:"location"`
	Rotation  Vec3   `json:"rotation"`
	Scale     Vec3   `json:"scale"`
}

type state struct {
	blueprints map[string]*Blueprint
	actors     map[string]*Actor
}

func newState() *state {
	return &state{
		blueprints: make(map[string]*Blueprint),
		actors:     make(map[string]*Actor),
	}
}

// newNodeID returns a 32-character uppercase hex GUID like FGuid::ToString.
func newNodeID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// Snapshot is a deep copy of the engine state.
type Snapshot struct {
	Blueprints map[string]Blueprint `json:"blueprints"`
	Actors     map[string]Actor     `json:"actors"`
	Received   []string             `json:"received"`
}

// Snapshot copies the current state for inspection.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := Snapshot{
		Blueprints: make(map[string]Blueprint, len(e.state.blueprints)),
		Actors:     make(map[string]Actor, len(e.state.actors)),
		Received:   append([]string(nil), e.received...),
	}
	for name, bp := range e.state.blueprints {
		snap.Blueprints[name] = bp.clone()
	}
	for name, a := range e.state.actors {
		snap.Actors[name] = *a
	}
	return snap
}

func (b *Blueprint) clone() Blueprint {
	cp := *b
	cp.Components = make([]*Component, len(b.Components))
	for i, c := range b.Components {
		cc := *c
		if c.Properties != nil {
			cc.Properties = make(map[string]any, len(c.Properties))
			for k, v := range c.Properties {
				cc.Properties[k] = v
			}
		}
		cp.Components[i] = &cc
	}
	cp.Nodes = make([]*Node, len(b.Nodes))
	for i, n := range b.Nodes {
		nc := *n
		nc.Pins = make([]*Pin, len(n.Pins))
		for j, p := range n.Pins {
			pc := *p
			pc.LinkedTo = append([]PinRef(nil), p.LinkedTo...)
			nc.Pins[j] = &pc
		}
		cp.Nodes[i] = &nc
	}
	cp.Variables = append([]Variable(nil), b.Variables...)
	return cp
}

// link connects an output pin to an input pin in both directions.
func link(srcNode *Node, src *Pin, dstNode *Node, dst *Pin) {
	src.LinkedTo = append(src.LinkedTo, PinRef{Node: dstNode.ID, Pin: dst.Name})
	dst.LinkedTo = append(dst.LinkedTo, PinRef{Node: srcNode.ID, Pin: src.Name})
}
