package config

import (
	"unreal-mcp-go/internal/constants"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Unreal: UnrealConfig{
			Host:             constants.DefaultUnrealHost,
			Port:             constants.DefaultUnrealPort,
			DialTimeoutSec:   int(constants.DefaultDialTimeout.Seconds()),
			IOTimeoutSec:     int(constants.DefaultIOTimeout.Seconds()),
			RecvChunkSize:    constants.RecvChunkSize,
			MaxResponseBytes: constants.MaxResponseBytes,
			Retries:          constants.DefaultMaxRetries,
			RetryDelayMS:     int(constants.DefaultRetryDelay.Milliseconds()),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Bridge: BridgeConfig{
			Listen:           constants.DefaultBridgeListen,
			RateLimitRPS:     constants.DefaultBridgeRPS,
			RateLimitBurst:   constants.DefaultBridgeBurst,
			MaxStreamClients: constants.DefaultStreamClients,
		},
		Storage: StorageConfig{
			Backend:       "file",
			BaseDir:       "~/.unrealmcp/runs",
			RedisAddr:     "localhost:6379",
			RedisPrefix:   "unrealmcp:",
			MongoDatabase: "unrealmcp",
		},
		Scenario: ScenarioConfig{
			BlueprintPrefix: constants.DefaultBlueprintPrefix,
			SuffixLength:    constants.DefaultSuffixLength,
		},
	}
}
