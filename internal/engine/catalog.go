package engine

import "strings"

type pinDef struct {
	name string
	typ  string
}

type functionDef struct {
	pure    bool
	inputs  []pinDef
	outputs []pinDef
}

type classDef struct {
	parent    string
	static    bool
	component bool
	functions map[string]functionDef
}

// classes is the slice of the engine's reflection data the fake editor knows.
var classes = map[string]classDef{
	"Object": {},
	"Actor": {
		parent: "Object",
		functions: map[string]functionDef{
			"K2_SetActorLocation": {
				inputs:  []pinDef{{"NewLocation", "vector"}, {"bSweep", "bool"}, {"bTeleport", "bool"}},
				outputs: []pinDef{{"ReturnValue", "bool"}},
			},
			"K2_GetActorLocation": {pure: true, outputs: []pinDef{{"ReturnValue", "vector"}}},
			"K2_DestroyActor":     {},
			"SetActorHiddenInGame": {
				inputs: []pinDef{{"bNewHidden", "bool"}},
			},
			"SetActorTickEnabled": {
				inputs: []pinDef{{"bEnabled", "bool"}},
			},
		},
	},
	"Pawn": {
		parent: "Actor",
		functions: map[string]functionDef{
			"AddMovementInput": {
				inputs: []pinDef{{"WorldDirection", "vector"}, {"ScaleValue", "float"}, {"bForce", "bool"}},
			},
		},
	},
	"Character": {
		parent: "Pawn",
		functions: map[string]functionDef{
			"Jump":        {},
			"StopJumping": {},
			"LaunchCharacter": {
				inputs: []pinDef{{"LaunchVelocity", "vector"}, {"bXYOverride", "bool"}, {"bZOverride", "bool"}},
			},
		},
	},
	"ActorComponent": {
		parent:    "Object",
		component: true,
		functions: map[string]functionDef{
			"Activate":   {inputs: []pinDef{{"bReset", "bool"}}},
			"Deactivate": {},
		},
	},
	"SceneComponent": {
		parent:    "ActorComponent",
		component: true,
		functions: map[string]functionDef{
			"SetVisibility": {
				inputs: []pinDef{{"bNewVisibility", "bool"}, {"bPropagateToChildren", "bool"}},
			},
			"K2_SetRelativeLocation": {
				inputs: []pinDef{{"NewLocation", "vector"}, {"bSweep", "bool"}, {"bTeleport", "bool"}},
			},
			"K2_GetComponentLocation": {pure: true, outputs: []pinDef{{"ReturnValue", "vector"}}},
		},
	},
	"PrimitiveComponent": {
		parent:    "SceneComponent",
		component: true,
		functions: map[string]functionDef{
			"AddForce": {
				inputs: []pinDef{{"Force", "vector"}, {"BoneName", "name"}, {"bAccelChange", "bool"}},
			},
			"AddImpulse": {
				inputs: []pinDef{{"Impulse", "vector"}, {"BoneName", "name"}, {"bVelChange", "bool"}},
			},
			"AddTorqueInRadians": {
				inputs: []pinDef{{"Torque", "vector"}, {"BoneName", "name"}, {"bAccelChange", "bool"}},
			},
			"SetSimulatePhysics": {inputs: []pinDef{{"bSimulate", "bool"}}},
			"SetEnableGravity":   {inputs: []pinDef{{"bGravityEnabled", "bool"}}},
			"SetMassOverrideInKg": {
				inputs: []pinDef{{"BoneName", "name"}, {"MassInKg", "float"}, {"bOverrideMass", "bool"}},
			},
			"GetMass": {pure: true, outputs: []pinDef{{"ReturnValue", "float"}}},
		},
	},
	"MeshComponent": {parent: "PrimitiveComponent", component: true},
	"StaticMeshComponent": {
		parent:    "MeshComponent",
		component: true,
		functions: map[string]functionDef{
			"SetStaticMesh": {
				inputs:  []pinDef{{"NewMesh", "object"}},
				outputs: []pinDef{{"ReturnValue", "bool"}},
			},
		},
	},
	"SkeletalMeshComponent": {parent: "MeshComponent", component: true},
	"ShapeComponent":        {parent: "PrimitiveComponent", component: true},
	"BoxComponent":          {parent: "ShapeComponent", component: true},
	"SphereComponent":       {parent: "ShapeComponent", component: true},
	"CapsuleComponent":      {parent: "ShapeComponent", component: true},
	"LightComponent": {
		parent:    "SceneComponent",
		component: true,
		functions: map[string]functionDef{
			"SetIntensity": {inputs: []pinDef{{"NewIntensity", "float"}}},
		},
	},
	"PointLightComponent":   {parent: "LightComponent", component: true},
	"SpotLightComponent":    {parent: "LightComponent", component: true},
	"CameraComponent":       {parent: "SceneComponent", component: true},
	"SpringArmComponent":    {parent: "SceneComponent", component: true},
	"GameplayStatics": {
		parent: "Object",
		static: true,
		functions: map[string]functionDef{
			"GetPlayerPawn": {
				pure:    true,
				inputs:  []pinDef{{"PlayerIndex", "int"}},
				outputs: []pinDef{{"ReturnValue", "object"}},
			},
			"GetPlayerController": {
				pure:    true,
				inputs:  []pinDef{{"PlayerIndex", "int"}},
				outputs: []pinDef{{"ReturnValue", "object"}},
			},
			"SetGamePaused": {
				inputs:  []pinDef{{"bPaused", "bool"}},
				outputs: []pinDef{{"ReturnValue", "bool"}},
			},
		},
	},
	"KismetSystemLibrary": {
		parent: "Object",
		static: true,
		functions: map[string]functionDef{
			"PrintString": {
				inputs: []pinDef{{"InString", "string"}, {"bPrintToScreen", "bool"}, {"bPrintToLog", "bool"}, {"TextColor", "color"}, {"Duration", "float"}},
			},
		},
	},
	"KismetMathLibrary": {
		parent: "Object",
		static: true,
		functions: map[string]functionDef{
			"Add_VectorVector": {
				pure:    true,
				inputs:  []pinDef{{"A", "vector"}, {"B", "vector"}},
				outputs: []pinDef{{"ReturnValue", "vector"}},
			},
			"RandomFloatInRange": {
				pure:    true,
				inputs:  []pinDef{{"Min", "float"}, {"Max", "float"}},
				outputs: []pinDef{{"ReturnValue", "float"}},
			},
		},
	},
}

// findFunction walks class and its parents.
func findFunction(class, name string) (functionDef, bool) {
	for class != "" {
		def, ok := classes[class]
		if !ok {
			return functionDef{}, false
		}
		if fn, ok := def.functions[name]; ok {
			return fn, true
		}
		class = def.parent
	}
	return functionDef{}, false
}

// resolveComponentClass maps "/Script/Engine.StaticMeshComponent",
// "UStaticMeshComponent", "StaticMesh" and "StaticMeshComponent" to the
// same class name. ok is false for unknown component types.
func resolveComponentClass(typ string) (string, bool) {
	name := typ
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	candidates := []string{name, name + "Component"}
	if strings.HasPrefix(name, "U") {
		candidates = append(candidates, name[1:], name[1:]+"Component")
	}
	for _, c := range candidates {
		if def, ok := classes[c]; ok && def.component {
			return c, true
		}
	}
	return "", false
}

// resolveStaticClass accepts "GameplayStatics" or "UGameplayStatics".
func resolveStaticClass(name string) (string, bool) {
	for _, c := range []string{name, strings.TrimPrefix(name, "U")} {
		if def, ok := classes[c]; ok && def.static {
			return c, true
		}
	}
	return "", false
}

// resolveParentClass maps "Actor", "AActor" or "/Script/Engine.Pawn" to a
// known actor class, falling back to Actor like the editor does.
func resolveParentClass(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	for _, c := range []string{name, strings.TrimPrefix(name, "A")} {
		if def, ok := classes[c]; ok && !def.component && !def.static && c != "Object" {
			return c
		}
	}
	return "Actor"
}

func isPrimitive(class string) bool {
	for class != "" {
		if class == "PrimitiveComponent" {
			return true
		}
		class = classes[class].parent
	}
	return false
}

func isStaticMesh(class string) bool {
	return class == "StaticMeshComponent"
}
