package storage

import (
	"context"
	"fmt"
	"strings"

	"unreal-mcp-go/internal/config"

	log "github.com/sirupsen/logrus"
)

// Build constructs, initializes and instruments the configured backend. A
// primary backend that fails to come up is replaced by the file backend so
// runs are still recorded. Backend "none" returns (nil, "none", nil).
func Build(ctx context.Context, cfg *config.Config) (Backend, string, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	sc := cfg.Storage
	label := strings.ToLower(strings.TrimSpace(sc.Backend))
	if label == "" {
		label = "file"
	}
	if label == "none" {
		return nil, "none", nil
	}

	primary, err := open(ctx, label, sc)
	if err == nil {
		return WithInstrumentation(primary, label), label, nil
	}
	if label == "file" {
		return nil, label, err
	}

	log.WithError(err).WithField("backend", label).Warn("storage backend unavailable, falling back to file")
	fallback, ferr := open(ctx, "file", sc)
	if ferr != nil {
		return nil, label, fmt.Errorf("storage %s failed (%v) and file fallback failed: %w", label, err, ferr)
	}
	return WithInstrumentation(fallback, "file"), "file", nil
}

func open(ctx context.Context, label string, sc config.StorageConfig) (Backend, error) {
	var (
		backend Backend
		err     error
	)
	switch label {
	case "file":
		backend = NewFileBackend(sc.BaseDir)
	case "redis":
		backend, err = NewRedisBackend(sc.RedisAddr, sc.RedisPassword, sc.RedisDB, sc.RedisPrefix)
	case "postgres":
		backend, err = NewPostgresBackend(sc.PostgresDSN)
	case "mongodb":
		backend, err = NewMongoDBBackend(sc.MongoURI, sc.MongoDatabase)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", label)
	}
	if err != nil {
		return nil, err
	}
	if err := backend.Initialize(ctx); err != nil {
		_ = backend.Close()
		return nil, err
	}
	return backend, nil
}
