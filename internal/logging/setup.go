package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"unreal-mcp-go/internal/config"

	log "github.com/sirupsen/logrus"
)

var (
	logMux        sync.Mutex
	logFileHandle *os.File
)

// Setup configures the global logrus logger using runtime configuration.
// It is idempotent and can be called multiple times; the most recent call wins.
// out replaces stdout as the primary sink when non-nil; the MCP stdio server
// passes os.Stderr so protocol frames on stdout stay clean.
func Setup(cfg *config.Config, out io.Writer) error {
	logMux.Lock()
	defer logMux.Unlock()

	lc := config.LoggingConfig{Level: "info", Format: "json"}
	if cfg != nil {
		lc = cfg.Logging
	}

	var formatter log.Formatter = &log.JSONFormatter{TimestampFormat: time.RFC3339Nano}
	if lc.Debug || strings.EqualFold(lc.Format, "text") {
		formatter = &log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
		}
	}
	log.SetFormatter(formatter)

	level, err := log.ParseLevel(strings.TrimSpace(lc.Level))
	if err != nil {
		level = log.InfoLevel
	}
	if lc.Debug {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	if out == nil {
		out = os.Stdout
	}
	writers := []io.Writer{out}

	if logFileHandle != nil {
		_ = logFileHandle.Close()
		logFileHandle = nil
	}

	if lc.File != "" {
		if err := os.MkdirAll(filepath.Dir(lc.File), 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		file, err := os.OpenFile(lc.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		logFileHandle = file
		writers = append(writers, file)
	}

	log.SetOutput(io.MultiWriter(writers...))
	return nil
}
