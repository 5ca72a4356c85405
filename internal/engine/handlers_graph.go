package engine

import (
	"context"
	"fmt"

	"unreal-mcp-go/internal/blueprint"
)

func (e *Engine) registerGraphHandlers() {
	e.handlers[blueprint.CmdAddEventNode] = e.addEventNode
	e.handlers[blueprint.CmdAddFunctionNode] = e.addFunctionNode
	e.handlers[blueprint.CmdConnectNodes] = e.connectNodes
	e.handlers[blueprint.CmdAddComponentReference] = e.addComponentReference
	e.handlers[blueprint.CmdAddSelfReference] = e.addSelfReference
	e.handlers[blueprint.CmdAddInputActionNode] = e.addInputActionNode
	e.handlers[blueprint.CmdAddVariable] = e.addVariable
	e.handlers[blueprint.CmdFindNodes] = e.findNodes
}

// requireAll checks params in order, blueprint_name first.
func requireAll(p Params, names ...string) error {
	for _, n := range append([]string{"blueprint_name"}, names...) {
		if _, err := p.Require(n); err != nil {
			return err
		}
	}
	return nil
}

func nodeResult(n *Node) map[string]any {
	return map[string]any{"node_id": n.ID}
}

func (e *Engine) addEventNode(_ context.Context, p Params) (any, error) {
	if err := requireAll(p, "event_name"); err != nil {
		return nil, err
	}
	event := p.String("event_name")
	return e.withState(func(s *state) (any, error) {
		bp, err := s.blueprint(p)
		if err != nil {
			return nil, err
		}
		// an event may only appear once per graph
		for _, n := range bp.Nodes {
			if n.Kind == NodeEvent && n.Event == event {
				return nodeResult(n), nil
			}
		}
		n := bp.addNode(&Node{
			Kind:     NodeEvent,
			Title:    event,
			Event:    event,
			Position: p.Position("node_position"),
			Pins:     []*Pin{{Name: "then", Direction: PinOutput, Type: PinTypeExec}},
		})
		return nodeResult(n), nil
	})
}

func (e *Engine) addFunctionNode(_ context.Context, p Params) (any, error) {
	if err := requireAll(p, "function_name"); err != nil {
		return nil, err
	}
	fnName := p.String("function_name")
	target := p.String("target")
	pos := p.Position("node_position")

	return e.withState(func(s *state) (any, error) {
		bp, err := s.blueprint(p)
		if err != nil {
			return nil, err
		}

		// component, then static library class, then self
		var (
			class    string
			static   bool
			targetOf *Component
		)
		if target != "" {
			if c := bp.Component(target); c != nil {
				class, targetOf = c.Class, c
			} else if sc, ok := resolveStaticClass(target); ok {
				class, static = sc, true
			}
		}
		lookupClass, displayClass := class, class
		if class == "" {
			lookupClass, displayClass = bp.ParentClass, bp.GeneratedClass()
		}
		def, ok := findFunction(lookupClass, fnName)
		if !ok {
			return nil, fmt.Errorf("Function not found: %s in target %s", fnName, displayClass)
		}

		fn := &Node{
			Kind:     NodeFunctionCall,
			Title:    fnName,
			Function: fnName,
			Target:   displayClass,
			Position: pos,
		}
		if !def.pure {
			fn.Pins = append(fn.Pins,
				&Pin{Name: "execute", Direction: PinInput, Type: PinTypeExec},
				&Pin{Name: "then", Direction: PinOutput, Type: PinTypeExec},
			)
		}
		if !static {
			fn.Pins = append(fn.Pins, &Pin{Name: "self", Direction: PinInput, Type: "object"})
		}
		for _, in := range def.inputs {
			fn.Pins = append(fn.Pins, &Pin{Name: in.name, Direction: PinInput, Type: in.typ})
		}
		for _, out := range def.outputs {
			fn.Pins = append(fn.Pins, &Pin{Name: out.name, Direction: PinOutput, Type: out.typ})
		}
		bp.addNode(fn)

		if !static {
			getterPos := Vec2{pos[0] - 200, pos[1] + 50}
			var getter *Node
			if targetOf != nil {
				getter = bp.addNode(componentGetter(targetOf.Name, getterPos))
			} else {
				getter = bp.addNode(selfNode(getterPos))
			}
			link(getter, getter.Pins[0], fn, fn.Pin("self", PinInput))
		}

		for name, value := range p.Object("params") {
			pin := fn.Pin(name, PinInput)
			if pin == nil {
				continue
			}
			if dv, ok := pinDefault(value); ok {
				pin.Default = dv
			}
		}
		return nodeResult(fn), nil
	})
}

func componentGetter(component string, pos Vec2) *Node {
	return &Node{
		Kind:     NodeVariableGet,
		Title:    component,
		Target:   component,
		Position: pos,
		Pins:     []*Pin{{Name: component, Direction: PinOutput, Type: "object"}},
	}
}

func selfNode(pos Vec2) *Node {
	return &Node{
		Kind:     NodeSelf,
		Title:    "Self",
		Position: pos,
		Pins:     []*Pin{{Name: "self", Direction: PinOutput, Type: "object"}},
	}
}

func (e *Engine) connectNodes(_ context.Context, p Params) (any, error) {
	if err := requireAll(p, "source_node_id", "target_node_id", "source_pin", "target_pin"); err != nil {
		return nil, err
	}
	srcID, dstID := p.String("source_node_id"), p.String("target_node_id")
	return e.withState(func(s *state) (any, error) {
		bp, err := s.blueprint(p)
		if err != nil {
			return nil, err
		}
		src, dst := bp.Node(srcID), bp.Node(dstID)
		// a node cannot be both ends of a link
		if src == nil || dst == nil || srcID == dstID {
			return nil, fmt.Errorf("Source or target node not found")
		}
		srcPin := src.Pin(p.String("source_pin"), PinOutput)
		dstPin := dst.Pin(p.String("target_pin"), PinInput)
		if srcPin == nil || dstPin == nil || (srcPin.Type == PinTypeExec) != (dstPin.Type == PinTypeExec) {
			return nil, fmt.Errorf("Failed to connect nodes")
		}
		link(src, srcPin, dst, dstPin)
		bp.Compiled = false
		return map[string]any{"source_node_id": srcID, "target_node_id": dstID}, nil
	})
}

func (e *Engine) addComponentReference(_ context.Context, p Params) (any, error) {
	if err := requireAll(p, "component_name"); err != nil {
		return nil, err
	}
	return e.withState(func(s *state) (any, error) {
		bp, err := s.blueprint(p)
		if err != nil {
			return nil, err
		}
		n := bp.addNode(componentGetter(p.String("component_name"), p.Position("node_position")))
		return nodeResult(n), nil
	})
}

func (e *Engine) addSelfReference(_ context.Context, p Params) (any, error) {
	return e.withState(func(s *state) (any, error) {
		bp, err := s.blueprint(p)
		if err != nil {
			return nil, err
		}
		n := bp.addNode(selfNode(p.Position("node_position")))
		return nodeResult(n), nil
	})
}

func (e *Engine) addInputActionNode(_ context.Context, p Params) (any, error) {
	if err := requireAll(p, "action_name"); err != nil {
		return nil, err
	}
	action := p.String("action_name")
	return e.withState(func(s *state) (any, error) {
		bp, err := s.blueprint(p)
		if err != nil {
			return nil, err
		}
		n := bp.addNode(&Node{
			Kind:     NodeInputAction,
			Title:    "InputAction " + action,
			Event:    action,
			Position: p.Position("node_position"),
			Pins: []*Pin{
				{Name: "Pressed", Direction: PinOutput, Type: PinTypeExec},
				{Name: "Released", Direction: PinOutput, Type: PinTypeExec},
				{Name: "Key", Direction: PinOutput, Type: "struct"},
			},
		})
		return nodeResult(n), nil
	})
}

func (e *Engine) addVariable(_ context.Context, p Params) (any, error) {
	if err := requireAll(p, "variable_name", "variable_type"); err != nil {
		return nil, err
	}
	name, typ := p.String("variable_name"), p.String("variable_type")
	return e.withState(func(s *state) (any, error) {
		bp, err := s.blueprint(p)
		if err != nil {
			return nil, err
		}
		supported := false
		for _, t := range blueprint.VariableTypes {
			if t == typ {
				supported = true
				break
			}
		}
		if !supported {
			return nil, fmt.Errorf("Unsupported variable type: %s", typ)
		}
		exists := false
		for _, v := range bp.Variables {
			if v.Name == name {
				exists = true
				break
			}
		}
		// adding an existing member is a silent no-op in the editor
		if !exists {
			bp.Variables = append(bp.Variables, Variable{Name: name, Type: typ, Exposed: p.Bool("is_exposed", false)})
			bp.Compiled = false
		}
		return map[string]any{"variable_name": name, "variable_type": typ}, nil
	})
}

func (e *Engine) findNodes(_ context.Context, p Params) (any, error) {
	if err := requireAll(p, "node_type"); err != nil {
		return nil, err
	}
	nodeType := p.String("node_type")
	return e.withState(func(s *state) (any, error) {
		bp, err := s.blueprint(p)
		if err != nil {
			return nil, err
		}
		guids := []string{}
		if nodeType == NodeEvent {
			event := p.String("event_name")
			if event == "" {
				return nil, fmt.Errorf("Missing 'event_name' parameter for Event node search")
			}
			for _, n := range bp.Nodes {
				if n.Kind == NodeEvent && n.Event == event {
					guids = append(guids, n.ID)
				}
			}
		}
		return map[string]any{"node_guids": guids}, nil
	})
}
