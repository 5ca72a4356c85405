package config

// EnvPrefix namespaces every environment override.
const EnvPrefix = "UNREAL_MCP_"

// ApplyEnv overlays UNREAL_MCP_* environment variables onto cfg.
func ApplyEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	u := &cfg.Unreal
	setStringFromEnv(EnvPrefix+"HOST", func(v string) { u.Host = v })
	setIntFromEnv(EnvPrefix+"PORT", func(v int) { u.Port = v })
	setIntFromEnv(EnvPrefix+"DIAL_TIMEOUT_SEC", func(v int) { u.DialTimeoutSec = v })
	setIntFromEnv(EnvPrefix+"IO_TIMEOUT_SEC", func(v int) { u.IOTimeoutSec = v })
	setIntFromEnv(EnvPrefix+"RECV_CHUNK_SIZE", func(v int) { u.RecvChunkSize = v })
	setIntFromEnv(EnvPrefix+"MAX_RESPONSE_BYTES", func(v int) { u.MaxResponseBytes = v })
	setIntFromEnv(EnvPrefix+"RETRIES", func(v int) { u.Retries = v })
	setIntFromEnv(EnvPrefix+"RETRY_DELAY_MS", func(v int) { u.RetryDelayMS = v })
	setFloatFromEnv(EnvPrefix+"COMMANDS_PER_SECOND", func(v float64) { u.CommandsPerSecond = v })

	l := &cfg.Logging
	setStringFromEnv(EnvPrefix+"LOG_LEVEL", func(v string) { l.Level = v })
	setStringFromEnv(EnvPrefix+"LOG_FORMAT", func(v string) { l.Format = v })
	setStringFromEnv(EnvPrefix+"LOG_FILE", func(v string) { l.File = v })
	setToggleFromEnv(EnvPrefix+"DEBUG", func(v bool) { l.Debug = v })

	b := &cfg.Bridge
	setStringFromEnv(EnvPrefix+"BRIDGE_LISTEN", func(v string) { b.Listen = v })
	setStringFromEnv(EnvPrefix+"API_KEY", func(v string) { b.APIKey = v })
	setStringFromEnv(EnvPrefix+"API_KEY_HASH", func(v string) { b.APIKeyHash = v })
	setFloatFromEnv(EnvPrefix+"RATE_LIMIT_RPS", func(v float64) { b.RateLimitRPS = v })
	setIntFromEnv(EnvPrefix+"RATE_LIMIT_BURST", func(v int) { b.RateLimitBurst = v })
	setIntFromEnv(EnvPrefix+"MAX_STREAM_CLIENTS", func(v int) { b.MaxStreamClients = v })

	s := &cfg.Storage
	setStringFromEnv(EnvPrefix+"STORAGE_BACKEND", func(v string) { s.Backend = v })
	setStringFromEnv(EnvPrefix+"STORAGE_DIR", func(v string) { s.BaseDir = v })
	setStringFromEnv(EnvPrefix+"REDIS_ADDR", func(v string) { s.RedisAddr = v })
	setStringFromEnv(EnvPrefix+"REDIS_PASSWORD", func(v string) { s.RedisPassword = v })
	setIntFromEnv(EnvPrefix+"REDIS_DB", func(v int) { s.RedisDB = v })
	setStringFromEnv(EnvPrefix+"REDIS_PREFIX", func(v string) { s.RedisPrefix = v })
	setStringFromEnv(EnvPrefix+"POSTGRES_DSN", func(v string) { s.PostgresDSN = v })
	setStringFromEnv(EnvPrefix+"MONGODB_URI", func(v string) { s.MongoURI = v })
	setStringFromEnv(EnvPrefix+"MONGODB_DATABASE", func(v string) { s.MongoDatabase = v })

	sc := &cfg.Scenario
	setStringFromEnv(EnvPrefix+"BLUEPRINT_PREFIX", func(v string) { sc.BlueprintPrefix = v })
	setIntFromEnv(EnvPrefix+"SUFFIX_LENGTH", func(v int) { sc.SuffixLength = v })
	setToggleFromEnv(EnvPrefix+"RECORD", func(v bool) { sc.Record = v })
}
