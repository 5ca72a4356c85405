// Package scenario runs ordered command sequences against the editor,
// threading identifiers returned by earlier steps into later ones.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "unreal-mcp-go/internal/errors"

	"gopkg.in/yaml.v3"
)

// Scenario is an ordered list of commands.
type Scenario struct {
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Vars        map[string]string `yaml:"vars,omitempty" json:"vars,omitempty"`
	Steps       []Step            `yaml:"steps" json:"steps"`
}

// Step is one command. Capture maps a variable name to a gjson path inside
// the step's result; captured values are visible to later steps as ${name}.
type Step struct {
	Name    string            `yaml:"name" json:"name"`
	Command string            `yaml:"command" json:"command"`
	Params  map[string]any    `yaml:"params,omitempty" json:"params,omitempty"`
	Capture map[string]string `yaml:"capture,omitempty" json:"capture,omitempty"`
}

// Load reads a scenario from a YAML or JSON file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindConfig, "load", "", err)
	}
	sc, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return sc, nil
}

// Parse decodes a scenario document. ext selects JSON for ".json"; anything
// else is read as YAML, which also accepts JSON.
func Parse(data []byte, ext string) (*Scenario, error) {
	var sc Scenario
	var err error
	if strings.EqualFold(ext, ".json") {
		err = json.Unmarshal(data, &sc)
	} else {
		err = yaml.Unmarshal(data, &sc)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindConfig, "parse", "", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate rejects empty scenarios, steps without a command and duplicate
// step names. Unnamed steps are named after their command and position.
func (s *Scenario) Validate() error {
	if s == nil || len(s.Steps) == 0 {
		return apperrors.New(apperrors.KindInvalidArgument, "validate", "", "scenario has no steps")
	}
	seen := make(map[string]struct{}, len(s.Steps))
	for i := range s.Steps {
		step := &s.Steps[i]
		if strings.TrimSpace(step.Command) == "" {
			return apperrors.Newf(apperrors.KindInvalidArgument, "validate", "", "step %d has no command", i+1)
		}
		if step.Name == "" {
			step.Name = fmt.Sprintf("%d_%s", i+1, step.Command)
		}
		if _, dup := seen[step.Name]; dup {
			return apperrors.Newf(apperrors.KindInvalidArgument, "validate", "", "duplicate step name %q", step.Name)
		}
		seen[step.Name] = struct{}{}
	}
	return nil
}
