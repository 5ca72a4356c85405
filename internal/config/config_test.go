package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"unreal-mcp-go/internal/events"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.Equal(t, "127.0.0.1:55557", cfg.Unreal.Address())
	require.Equal(t, 4096, cfg.Unreal.RecvChunkSize)
	require.Zero(t, cfg.Unreal.Retries)
	require.True(t, cfg.Validate().Valid)
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unrealmcp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
unreal:
  host: 10.0.0.5
  port: 6000
storage:
  backend: none
`), 0o644))
	t.Setenv(EnvPrefix+"PORT", "7000")
	t.Setenv(EnvPrefix+"RETRIES", "2")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "10.0.0.5", cfg.Unreal.Host)
	require.Equal(t, 7000, cfg.Unreal.Port)
	require.Equal(t, 2, cfg.Unreal.Retries)
	require.Equal(t, "none", cfg.Storage.Backend)
	// untouched keys keep their defaults
	require.Equal(t, 4096, cfg.Unreal.RecvChunkSize)
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"unreal":{"port":5000},"storage":{"backend":"none"}}`), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 5000, cfg.Unreal.Port)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, 55557, cfg.Unreal.Port)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("unreal:\n  port: 70000\n"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unreal.port")
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidateBackendRequirements(t *testing.T) {
	cases := []struct {
		backend string
		field   string
	}{
		{"postgres", "storage.postgres_dsn"},
		{"mongodb", "storage.mongodb_uri"},
		{"sqlite", "storage.backend"},
	}
	for _, tc := range cases {
		t.Run(tc.backend, func(t *testing.T) {
			cfg := Default()
			cfg.Storage.Backend = tc.backend
			res := cfg.Validate()
			require.False(t, res.Valid)
			var fields []string
			for _, e := range res.Errors {
				fields = append(fields, e.Field)
			}
			require.Contains(t, fields, tc.field)
		})
	}
}

func TestSaveRoundTripsStreamLimit(t *testing.T) {
	t.Setenv(EnvPrefix+"MAX_STREAM_CLIENTS", "7")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, 7, cfg.Bridge.MaxStreamClients)

	cfg.Bridge.MaxStreamClients = -1
	res := cfg.Validate()
	require.False(t, res.Valid)

	cfg.Bridge.MaxStreamClients = 12
	cfg.Storage.Backend = "none"
	for _, name := range []string{"out.yaml", "out.json"} {
		path := filepath.Join(t.TempDir(), "nested", name)
		require.NoError(t, Save(path, cfg))
		t.Setenv(EnvPrefix+"MAX_STREAM_CLIENTS", "")
		loaded, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, 12, loaded.Bridge.MaxStreamClients)
		require.Equal(t, "none", loaded.Storage.Backend)
	}
}

func TestValidateWarnsWithoutAPIKey(t *testing.T) {
	res := Default().Validate()
	require.True(t, res.Valid)
	require.NotEmpty(t, res.Warnings)
}

func TestCheckAPIKey(t *testing.T) {
	cfg := Default()
	require.False(t, APIKeyRequired(cfg))
	require.False(t, CheckAPIKey(cfg, "anything"))

	cfg.Bridge.APIKey = "plain"
	require.True(t, CheckAPIKey(cfg, "plain"))
	require.False(t, CheckAPIKey(cfg, "other"))
	require.False(t, CheckAPIKey(cfg, "plai"))
	require.False(t, CheckAPIKey(cfg, "plainx"))

	hash, err := bcrypt.GenerateFromPassword([]byte("hashed"), bcrypt.MinCost)
	require.NoError(t, err)
	cfg.Bridge.APIKey = ""
	cfg.Bridge.APIKeyHash = string(hash)
	require.True(t, APIKeyRequired(cfg))
	require.True(t, CheckAPIKey(cfg, "hashed"))
	require.False(t, CheckAPIKey(cfg, ""))

	validate := APIKeyValidator(func() *Config { return cfg })
	require.True(t, validate("hashed"))
}

func TestConfigManagerReloadPublishes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unrealmcp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("unreal:\n  port: 6001\nstorage:\n  backend: none\n"), 0o644))

	cm, err := NewConfigManager(path)
	require.NoError(t, err)
	defer cm.Close()
	require.Equal(t, 6001, cm.Get().Unreal.Port)

	hub := events.NewHub()
	cm.SetEventPublisher(hub)
	published := make(chan ConfigChangeEvent, 4)
	hub.Subscribe(events.TopicConfigUpdated, func(_ context.Context, ev events.Event) {
		published <- ev.Payload.(ConfigChangeEvent)
	})
	var seen atomic.Int64
	cm.OnChange(func(c *Config) { seen.Store(int64(c.Unreal.Port)) })

	require.NoError(t, os.WriteFile(path, []byte("unreal:\n  port: 6002\nstorage:\n  backend: none\n"), 0o644))
	require.NoError(t, cm.Reload())

	select {
	case ev := <-published:
		require.Equal(t, 6002, ev.Config.Unreal.Port)
		require.NotNil(t, ev.Previous)
		require.Equal(t, 6001, ev.Previous.Unreal.Port)
	case <-time.After(2 * time.Second):
		t.Fatal("config change was not published")
	}
	require.Equal(t, 6002, cm.Get().Unreal.Port)
	require.Equal(t, int64(6002), seen.Load())
}

func TestConfigManagerGetReturnsCopy(t *testing.T) {
	cm := NewStaticManager(nil)
	cfg := cm.Get()
	cfg.Unreal.Port = 1
	require.Equal(t, 55557, cm.Get().Unreal.Port)
}
