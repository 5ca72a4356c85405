package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation error [%s=%s]: %s", e.Field, e.Value, e.Message)
}

// ValidationResult holds the results of configuration validation
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
	Valid    bool
}

// AddError adds a validation error
func (r *ValidationResult) AddError(field, value, message string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: message})
	r.Valid = false
}

// AddWarning adds a validation warning
func (r *ValidationResult) AddWarning(field, value, message string) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: message})
}

// Err joins every validation error, or returns nil.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	errs := make([]error, 0, len(r.Errors))
	for _, e := range r.Errors {
		errs = append(errs, e)
	}
	return errors.Join(errs...)
}

// StorageBackends lists the accepted storage.backend values.
var StorageBackends = []string{"none", "file", "redis", "postgres", "mongodb"}

// Validate validates the configuration and returns validation results
func (c *Config) Validate() ValidationResult {
	result := ValidationResult{Valid: true}

	if strings.TrimSpace(c.Unreal.Host) == "" {
		result.AddError("unreal.host", c.Unreal.Host, "must not be empty")
	}
	if c.Unreal.Port <= 0 || c.Unreal.Port > 65535 {
		result.AddError("unreal.port", strconv.Itoa(c.Unreal.Port), "must be between 1 and 65535")
	}
	if c.Unreal.DialTimeoutSec < 0 {
		result.AddError("unreal.dial_timeout_sec", strconv.Itoa(c.Unreal.DialTimeoutSec), "must not be negative")
	}
	if c.Unreal.IOTimeoutSec < 0 {
		result.AddError("unreal.io_timeout_sec", strconv.Itoa(c.Unreal.IOTimeoutSec), "must not be negative")
	}
	if c.Unreal.RecvChunkSize <= 0 {
		result.AddError("unreal.recv_chunk_size", strconv.Itoa(c.Unreal.RecvChunkSize), "must be positive")
	}
	if c.Unreal.MaxResponseBytes < 0 {
		result.AddError("unreal.max_response_bytes", strconv.Itoa(c.Unreal.MaxResponseBytes), "must not be negative")
	}
	if c.Unreal.Retries < 0 {
		result.AddError("unreal.retries", strconv.Itoa(c.Unreal.Retries), "must not be negative")
	}
	if c.Unreal.CommandsPerSecond < 0 {
		result.AddError("unreal.commands_per_second", fmt.Sprint(c.Unreal.CommandsPerSecond), "must not be negative")
	}

	if _, err := log.ParseLevel(strings.TrimSpace(c.Logging.Level)); err != nil {
		result.AddError("logging.level", c.Logging.Level, "unknown log level")
	}
	if f := strings.ToLower(c.Logging.Format); f != "" && f != "json" && f != "text" {
		result.AddError("logging.format", c.Logging.Format, "must be json or text")
	}

	backend := strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if backend == "" {
		backend = "file"
	}
	if !contains(StorageBackends, backend) {
		result.AddError("storage.backend", c.Storage.Backend,
			fmt.Sprintf("must be one of: %s", strings.Join(StorageBackends, ", ")))
	}
	switch backend {
	case "redis":
		if c.Storage.RedisAddr == "" {
			result.AddError("storage.redis_addr", c.Storage.RedisAddr, "required when using redis backend")
		}
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			result.AddError("storage.postgres_dsn", "", "required when using postgres backend")
		}
	case "mongodb":
		if c.Storage.MongoURI == "" {
			result.AddError("storage.mongodb_uri", "", "required when using mongodb backend")
		}
	}

	if c.Bridge.RateLimitRPS < 0 {
		result.AddError("bridge.rate_limit_rps", fmt.Sprint(c.Bridge.RateLimitRPS), "must not be negative")
	}
	if c.Bridge.MaxStreamClients < 0 {
		result.AddError("bridge.max_stream_clients", strconv.Itoa(c.Bridge.MaxStreamClients), "must not be negative")
	}
	if c.Bridge.APIKey == "" && c.Bridge.APIKeyHash == "" {
		result.AddWarning("bridge.api_key", "", "bridge API is unauthenticated")
	}

	if c.Scenario.SuffixLength < 0 {
		result.AddError("scenario.suffix_length", strconv.Itoa(c.Scenario.SuffixLength), "must not be negative")
	}

	return result
}

// ExpandPaths expands ~ and environment variables in path-valued fields.
func (c *Config) ExpandPaths() error {
	var err error
	if c.Storage.BaseDir, err = expandPath(c.Storage.BaseDir); err != nil {
		return fmt.Errorf("storage.base_dir: %w", err)
	}
	if c.Logging.File, err = expandPath(c.Logging.File); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}

func expandPath(path string) (string, error) {
	if path == "" {
		return path, nil
	}
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot get home directory: %v", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	path = os.ExpandEnv(path)
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot convert to absolute path: %v", err)
	}
	return absPath, nil
}
