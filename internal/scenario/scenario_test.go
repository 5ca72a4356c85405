package scenario

import (
	"os"
	"path/filepath"
	"testing"

	apperrors "unreal-mcp-go/internal/errors"

	"github.com/stretchr/testify/require"
)

func TestParseYAMLNamesSteps(t *testing.T) {
	doc := `
name: mini
vars:
  blueprint: BP_A
steps:
  - command: create_blueprint
    params:
      name: ${blueprint}
  - name: compile
    command: compile_blueprint
    params:
      blueprint_name: ${blueprint}
`
	sc, err := Parse([]byte(doc), ".yaml")
	require.NoError(t, err)
	require.Equal(t, "mini", sc.Name)
	require.Equal(t, "1_create_blueprint", sc.Steps[0].Name)
	require.Equal(t, "compile", sc.Steps[1].Name)
}

func TestParseJSON(t *testing.T) {
	sc, err := Parse([]byte(`{"name":"j","steps":[{"command":"ping"}]}`), ".JSON")
	require.NoError(t, err)
	require.Len(t, sc.Steps, 1)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"empty":      `{"name":"x","steps":[]}`,
		"no command": `{"steps":[{"name":"a"}]}`,
		"duplicate":  `{"steps":[{"name":"a","command":"x"},{"name":"a","command":"y"}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc), ".json")
			require.Error(t, err)
			require.True(t, apperrors.Is(err, apperrors.KindInvalidArgument))
		})
	}
}

func TestLoadDefaultsNameToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "my_smoke.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps:\n  - command: ping\n"), 0o644))
	sc, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "my_smoke", sc.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.True(t, apperrors.Is(err, apperrors.KindConfig))
}

func TestSubstitute(t *testing.T) {
	params := map[string]any{
		"blueprint_name": "${bp}",
		"label":          "prefix-${bp}-suffix",
		"nested":         map[string]any{"ids": []any{"${node}", 1.0}},
		"flag":           true,
	}
	out, err := Substitute(params, map[string]string{"bp": "BP_1", "node": "ABC"})
	require.NoError(t, err)
	require.Equal(t, "BP_1", out["blueprint_name"])
	require.Equal(t, "prefix-BP_1-suffix", out["label"])
	require.Equal(t, []any{"ABC", 1.0}, out["nested"].(map[string]any)["ids"])
	require.Equal(t, true, out["flag"])
	// input untouched
	require.Equal(t, "${bp}", params["blueprint_name"])

	_, err = Substitute(map[string]any{"x": "${missing}"}, nil)
	require.True(t, apperrors.Is(err, apperrors.KindInvalidArgument))
}

func TestRandomSuffix(t *testing.T) {
	s := RandomSuffix(3)
	require.Len(t, s, 3)
	for _, c := range s {
		require.Contains(t, suffixAlphabet, string(c))
	}
	require.Empty(t, RandomSuffix(0))

	name := DefaultBlueprintName()
	require.Regexp(t, `^TestCompRefBP_[A-Za-z0-9]{3}$`, name)
}

func TestComponentReferenceShape(t *testing.T) {
	sc := ComponentReference("BP_Fixed")
	require.NoError(t, sc.Validate())
	require.Equal(t, ComponentReferenceName, sc.Name)

	var commands []string
	for _, s := range sc.Steps {
		commands = append(commands, s.Command)
	}
	require.Equal(t, []string{
		"create_blueprint",
		"add_component_to_blueprint",
		"set_static_mesh_properties",
		"set_physics_properties",
		"add_blueprint_event_node",
		"add_blueprint_function_node",
		"connect_blueprint_nodes",
		"compile_blueprint",
		"spawn_blueprint_actor",
	}, commands)
	require.Equal(t, "BP_Fixed", sc.Vars["blueprint"])
	require.Equal(t, "node_id", sc.Steps[4].Capture["event_node"])
	require.Equal(t, "node_id", sc.Steps[5].Capture["function_node"])

	require.Regexp(t, `^TestCompRefBP_`, ComponentReference("").Vars["blueprint"])
}
