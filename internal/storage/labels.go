package storage

import (
	"strings"

	"unreal-mcp-go/internal/config"
)

// DetectBackendLabel returns a normalized label for the configured backend.
func DetectBackendLabel(cfg *config.Config, backend Backend) string {
	if cfg != nil {
		if raw := strings.TrimSpace(strings.ToLower(cfg.Storage.Backend)); raw != "" {
			return raw
		}
	}
	if w, ok := backend.(interface{ Unwrap() Backend }); ok {
		backend = w.Unwrap()
	}
	switch backend.(type) {
	case *PostgresBackend:
		return "postgres"
	case *MongoDBBackend:
		return "mongodb"
	case *RedisBackend:
		return "redis"
	case *FileBackend:
		return "file"
	default:
		return "unknown"
	}
}
