package engine

import (
	"context"
	"fmt"

	"unreal-mcp-go/internal/blueprint"
)

var unitScale = Vec3{1, 1, 1}

func (e *Engine) registerEditorHandlers() {
	e.handlers["ping"] = func(context.Context, Params) (any, error) {
		return map[string]any{"message": "pong"}, nil
	}
	e.handlers[blueprint.CmdCreateBlueprint] = e.createBlueprint
	e.handlers[blueprint.CmdAddComponent] = e.addComponent
	e.handlers[blueprint.CmdSetStaticMeshProperties] = e.setStaticMesh
	e.handlers[blueprint.CmdSetPhysicsProperties] = e.setPhysics
	e.handlers[blueprint.CmdCompileBlueprint] = e.compileBlueprint
	e.handlers[blueprint.CmdSpawnBlueprintActor] = e.spawnActor
}

func (s *state) blueprint(p Params) (*Blueprint, error) {
	name, err := p.Require("blueprint_name")
	if err != nil {
		return nil, err
	}
	bp, ok := s.blueprints[name]
	if !ok {
		return nil, fmt.Errorf("Blueprint not found: %s", name)
	}
	return bp, nil
}

func (e *Engine) createBlueprint(_ context.Context, p Params) (any, error) {
	name, err := p.Require("name")
	if err != nil {
		return nil, err
	}
	return e.withState(func(s *state) (any, error) {
		if _, exists := s.blueprints[name]; exists {
			return nil, fmt.Errorf("Blueprint already exists: %s", name)
		}
		bp := &Blueprint{
			Name:        name,
			Path:        "/Game/Blueprints/" + name,
			ParentClass: resolveParentClass(p.String("parent_class")),
		}
		s.blueprints[name] = bp
		return map[string]any{"name": bp.Name, "path": bp.Path}, nil
	})
}

func (e *Engine) addComponent(_ context.Context, p Params) (any, error) {
	if _, err := p.Require("blueprint_name"); err != nil {
		return nil, err
	}
	typ, err := p.Require("component_type")
	if err != nil {
		return nil, err
	}
	name, err := p.Require("component_name")
	if err != nil {
		return nil, err
	}
	return e.withState(func(s *state) (any, error) {
		bp, err := s.blueprint(p)
		if err != nil {
			return nil, err
		}
		class, ok := resolveComponentClass(typ)
		if !ok {
			return nil, fmt.Errorf("Unknown component type: %s", typ)
		}
		if bp.Component(name) != nil {
			return nil, fmt.Errorf("Component already exists: %s", name)
		}
		bp.Components = append(bp.Components, &Component{
			Name:       name,
			Class:      class,
			Location:   p.Vector("location", Vec3{}),
			Rotation:   p.Vector("rotation", Vec3{}),
			Scale:      p.Vector("scale", unitScale),
			Properties: p.Object("component_properties"),
		})
		bp.Compiled = false
		return map[string]any{"component_name": name, "component_type": class}, nil
	})
}

func (s *state) component(p Params) (*Blueprint, *Component, error) {
	bp, err := s.blueprint(p)
	if err != nil {
		return nil, nil, err
	}
	name, err := p.Require("component_name")
	if err != nil {
		return nil, nil, err
	}
	c := bp.Component(name)
	if c == nil {
		return nil, nil, fmt.Errorf("Component not found: %s", name)
	}
	return bp, c, nil
}

func (e *Engine) setStaticMesh(_ context.Context, p Params) (any, error) {
	return e.withState(func(s *state) (any, error) {
		bp, c, err := s.component(p)
		if err != nil {
			return nil, err
		}
		if !isStaticMesh(c.Class) {
			return nil, fmt.Errorf("Component is not a static mesh component")
		}
		if mesh := p.String("static_mesh"); mesh != "" {
			c.StaticMesh = mesh
		}
		bp.Compiled = false
		return map[string]any{"component": c.Name}, nil
	})
}

func (e *Engine) setPhysics(_ context.Context, p Params) (any, error) {
	return e.withState(func(s *state) (any, error) {
		bp, c, err := s.component(p)
		if err != nil {
			return nil, err
		}
		if !isPrimitive(c.Class) {
			return nil, fmt.Errorf("Component is not a primitive component")
		}
		c.SimulatePhysics = p.Bool("simulate_physics", true)
		c.GravityEnabled = p.Bool("gravity_enabled", true)
		if v, ok := p.Float("mass"); ok {
			c.Mass = v
		}
		if v, ok := p.Float("linear_damping"); ok {
			c.LinearDamping = v
		}
		if v, ok := p.Float("angular_damping"); ok {
			c.AngularDamping = v
		}
		bp.Compiled = false
		return map[string]any{"component": c.Name}, nil
	})
}

func (e *Engine) compileBlueprint(_ context.Context, p Params) (any, error) {
	return e.withState(func(s *state) (any, error) {
		bp, err := s.blueprint(p)
		if err != nil {
			return nil, err
		}
		bp.Compiled = true
		return map[string]any{"name": bp.Name, "compiled": true}, nil
	})
}

func (e *Engine) spawnActor(_ context.Context, p Params) (any, error) {
	if _, err := p.Require("blueprint_name"); err != nil {
		return nil, err
	}
	actorName, err := p.Require("actor_name")
	if err != nil {
		return nil, err
	}
	return e.withState(func(s *state) (any, error) {
		bp, err := s.blueprint(p)
		if err != nil {
			return nil, err
		}
		if _, exists := s.actors[actorName]; exists {
			return nil, fmt.Errorf("Actor already exists: %s", actorName)
		}
		a := &Actor{
			Name:      actorName,
			Blueprint: bp.Name,
			Class:     bp.GeneratedClass(),
			Location:  p.Vector("location", Vec3{}),
			Rotation:  p.Vector("rotation", Vec3{}),
			Scale:     p.Vector("scale", unitScale),
		}
		s.actors[actorName] = a
		return map[string]any{
			"name":     a.Name,
			"class":    a.Class,
			"location": a.Location[:],
			"rotation": a.Rotation[:],
			"scale":    a.Scale[:],
		}, nil
	})
}
