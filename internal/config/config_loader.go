package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultLocations lists the files searched when no path is given.
func DefaultLocations() []string {
	locations := []string{"unrealmcp.yaml", "unrealmcp.yml", "unrealmcp.json"}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations,
			filepath.Join(home, ".unrealmcp", "config.yaml"),
			filepath.Join(home, ".unrealmcp", "config.yml"),
		)
	}
	return locations
}

// ResolvePath expands ~ and, when path is empty, picks the first existing
// default location. It returns "" when nothing is found.
func ResolvePath(path string) string {
	if path == "" {
		for _, loc := range DefaultLocations() {
			if _, err := os.Stat(loc); err == nil {
				return loc
			}
		}
		return ""
	}
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return path
}

// Load builds a configuration from defaults, the file at path (optional),
// and UNREAL_MCP_* environment overrides, then validates it. A missing file
// is not an error; an unreadable or malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()
	resolved := ResolvePath(path)
	if resolved != "" {
		if err := loadFile(resolved, cfg); err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
			log.WithField("path", resolved).Warn("config file not found; using defaults")
		} else {
			log.WithField("path", resolved).Debug("configuration loaded")
		}
	}
	ApplyEnv(cfg)
	if err := cfg.ExpandPaths(); err != nil {
		return nil, err
	}
	if res := cfg.Validate(); !res.Valid {
		return nil, res.Err()
	}
	return cfg, nil
}

// loadFile decodes path over cfg; keys absent from the file keep their
// current values.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			if err := json.Unmarshal(data, cfg); err != nil {
				return fmt.Errorf("failed to parse config file (tried YAML and JSON)")
			}
		}
	}
	return nil
}

// Save writes cfg to path, choosing the encoding from the extension.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	var (
		data []byte
		err  error
	)
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
