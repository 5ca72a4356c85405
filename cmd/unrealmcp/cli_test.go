package main

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"unreal-mcp-go/internal/config"
	"unreal-mcp-go/internal/engine"
	apperrors "unreal-mcp-go/internal/errors"

	"github.com/stretchr/testify/require"
)

type cliEnv struct {
	configPath string
	host       string
	port       string
}

func newCLIEnv(t *testing.T) cliEnv {
	t.Helper()
	e := engine.New(engine.Options{})
	addr, err := e.Start("127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "unrealmcp.yaml")
	body := fmt.Sprintf("unreal:\n  retries: 0\nstorage:\n  backend: file\n  base_dir: %s\n", filepath.Join(dir, "runs"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o600))
	return cliEnv{configPath: cfgPath, host: host, port: port}
}

func (c cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	a := newApp(&stdout, &stderr)
	root := newRootCmd(a)
	root.SetArgs(append([]string{"--config", c.configPath, "--host", c.host, "--port", c.port}, args...))
	err := root.Execute()
	return stdout.String(), err
}

func TestSmokeRecordAndList(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "smoke", "--blueprint", "BP_Cli", "--record")
	require.NoError(t, err, out)
	require.Contains(t, out, "PASS")
	require.Contains(t, out, "spawn_blueprint_actor")
	require.Contains(t, out, "blueprint=BP_Cli")

	out, err = env.run(t, "runs", "list")
	require.NoError(t, err)
	require.Contains(t, out, "BP_Cli")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	id := strings.Fields(lines[1])[0]

	out, err = env.run(t, "runs", "show", id)
	require.NoError(t, err)
	require.Contains(t, out, `"command": "create_blueprint"`)

	_, err = env.run(t, "runs", "delete", id)
	require.NoError(t, err)
	_, err = env.run(t, "runs", "show", id)
	require.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestSmokeFailureExitCode(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run(t, "smoke", "--blueprint", "BP_Dup")
	require.NoError(t, err)

	out, err := env.run(t, "smoke", "--blueprint", "BP_Dup")
	require.Error(t, err)
	require.Equal(t, 1, apperrors.ExitCode(apperrors.KindOf(err)))
	require.Contains(t, out, "FAIL")
	require.Contains(t, out, "SKIP")
}

func TestSmokeDialFailureExitCode(t *testing.T) {
	env := newCLIEnv(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, port, _ := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, ln.Close())
	env.port = port

	_, err = env.run(t, "smoke", "--blueprint", "BP_Nowhere")
	require.Error(t, err)
	require.Equal(t, 3, apperrors.ExitCode(apperrors.KindOf(err)))
}

func TestSendPrintsReply(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "send", "ping")
	require.NoError(t, err)
	require.Contains(t, out, `"pong"`)

	out, err = env.run(t, "send", "compile_blueprint", "--params", `{"blueprint_name":"BP_None"}`)
	require.True(t, apperrors.Is(err, apperrors.KindCommand))
	require.Contains(t, out, `"status": "error"`)

	_, err = env.run(t, "send", "ping", "--params", "{not json")
	require.Equal(t, 2, apperrors.ExitCode(apperrors.KindOf(err)))
}

func TestScenarioFile(t *testing.T) {
	env := newCLIEnv(t)
	path := filepath.Join(t.TempDir(), "ping.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: ping\nsteps:\n  - command: ping\n"), 0o600))

	out, err := env.run(t, "smoke", "--scenario", path)
	require.NoError(t, err)
	require.Contains(t, out, "PASS")
}

func TestVersion(t *testing.T) {
	env := newCLIEnv(t)
	out, err := env.run(t, "version")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "unrealmcp "))
}

func TestConfigInitWritesEffectiveConfig(t *testing.T) {
	env := newCLIEnv(t)
	path := filepath.Join(t.TempDir(), "written.yaml")

	out, err := env.run(t, "config", "init", path)
	require.NoError(t, err)
	require.Contains(t, out, path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, env.host, cfg.Unreal.Host)
	require.Equal(t, env.port, strconv.Itoa(cfg.Unreal.Port))
	require.Equal(t, "file", cfg.Storage.Backend)

	_, err = env.run(t, "config", "init", path)
	require.True(t, apperrors.Is(err, apperrors.KindConfig))
	_, err = env.run(t, "config", "init", "--force", path)
	require.NoError(t, err)
}
