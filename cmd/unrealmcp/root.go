package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"unreal-mcp-go/internal/config"
	apperrors "unreal-mcp-go/internal/errors"
	"unreal-mcp-go/internal/logging"
	"unreal-mcp-go/internal/storage"
	"unreal-mcp-go/internal/upstream"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const defaultEnvFile = ".env"

// app carries the persistent flags and the configuration they resolve to.
type app struct {
	configPath string
	envFile    string
	host       string
	port       int
	debug      bool
	logLevel   string

	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "unrealmcp",
		Short:         "Drive the Unreal editor MCP command socket",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default: unrealmcp.yaml or ~/.unrealmcp/config.yaml)")
	pf.StringVar(&a.envFile, "env-file", "", "dotenv file loaded before the config (default: .env when present)")
	pf.StringVar(&a.host, "host", "", "Unreal editor host (overrides config)")
	pf.IntVar(&a.port, "port", 0, "Unreal editor port (overrides config)")
	pf.BoolVar(&a.debug, "debug", false, "debug logging")
	pf.StringVar(&a.logLevel, "log-level", "warn", "log level for CLI commands")

	root.AddCommand(
		newSmokeCmd(a),
		newSendCmd(a),
		newEngineCmd(a),
		newMCPCmd(a),
		newRunsCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	if err := a.loadEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindInternal {
			err = apperrors.Wrap(apperrors.KindConfig, "load", "", err)
		}
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Unreal.Host = a.host
	}
	if flags.Changed("port") {
		cfg.Unreal.Port = a.port
	}
	if !flags.Changed("log-level") && cmd.Name() == "engine" {
		// the fake editor is a long-running server; keep its request log
		a.logLevel = cfg.Logging.Level
	}
	cfg.Logging.Level = a.logLevel
	if a.debug {
		cfg.Logging.Debug = true
	}
	a.cfg = cfg
	// stdout carries command output and, for `mcp`, protocol frames
	return logging.Setup(cfg, a.stderr)
}

func (a *app) loadEnv() error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil {
			return apperrors.Wrap(apperrors.KindConfig, "env", "", err)
		}
		return nil
	}
	if _, err := os.Stat(defaultEnvFile); err == nil {
		if err := godotenv.Load(defaultEnvFile); err != nil {
			return apperrors.Wrap(apperrors.KindConfig, "env", "", err)
		}
	}
	return nil
}

func (a *app) client() *upstream.Client {
	return upstream.New(upstream.OptionsFromConfig(a.cfg.Unreal))
}

// storage opens the configured run-history backend. It fails when the
// backend is "none".
func (a *app) storage(ctx context.Context) (storage.Backend, error) {
	backend, label, err := storage.Build(ctx, a.cfg)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindConfig, "storage", "", err)
	}
	if backend == nil {
		return nil, apperrors.Newf(apperrors.KindConfig, "storage", "", "run history is disabled (storage backend %q)", label)
	}
	return backend, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || apperrors.Is(err, apperrors.KindCanceled)
}
