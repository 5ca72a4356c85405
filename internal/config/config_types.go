package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the full runtime configuration shared by the CLI, the bridge
// daemon and the storage utility.
type Config struct {
	Unreal   UnrealConfig   `yaml:"unreal" json:"unreal"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
	Bridge   BridgeConfig   `yaml:"bridge" json:"bridge"`
	Storage  StorageConfig  `yaml:"storage" json:"storage"`
	Scenario ScenarioConfig `yaml:"scenario" json:"scenario"`
}

// UnrealConfig describes how to reach the editor's command socket.
type UnrealConfig struct {
	Host              string  `yaml:"host" json:"host"`
	Port              int     `yaml:"port" json:"port"`
	DialTimeoutSec    int     `yaml:"dial_timeout_sec" json:"dial_timeout_sec"`
	IOTimeoutSec      int     `yaml:"io_timeout_sec" json:"io_timeout_sec"`
	RecvChunkSize     int     `yaml:"recv_chunk_size" json:"recv_chunk_size"`
	MaxResponseBytes  int     `yaml:"max_response_bytes" json:"max_response_bytes"`
	Retries           int     `yaml:"retries" json:"retries"`
	RetryDelayMS      int     `yaml:"retry_delay_ms" json:"retry_delay_ms"`
	CommandsPerSecond float64 `yaml:"commands_per_second" json:"commands_per_second"`
}

// LoggingConfig controls logrus output.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file" json:"file"`
	Debug  bool   `yaml:"debug" json:"debug"`
}

// BridgeConfig controls the HTTP bridge daemon.
type BridgeConfig struct {
	Listen         string  `yaml:"listen" json:"listen"`
	APIKey         string  `yaml:"api_key" json:"api_key,omitempty"`
	APIKeyHash     string  `yaml:"api_key_hash" json:"api_key_hash,omitempty"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps" json:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst" json:"rate_limit_burst"`

	// MaxStreamClients caps concurrent /v1/runs/stream connections.
	MaxStreamClients int `yaml:"max_stream_clients" json:"max_stream_clients"`
}

// StorageConfig selects and configures the run-history backend.
type StorageConfig struct {
	Backend       string `yaml:"backend" json:"backend"`
	BaseDir       string `yaml:"base_dir" json:"base_dir"`
	RedisAddr     string `yaml:"redis_addr" json:"redis_addr"`
	RedisPassword string `yaml:"redis_password" json:"redis_password,omitempty"`
	RedisDB       int    `yaml:"redis_db" json:"redis_db"`
	RedisPrefix   string `yaml:"redis_prefix" json:"redis_prefix"`
	PostgresDSN   string `yaml:"postgres_dsn" json:"postgres_dsn,omitempty"`
	MongoURI      string `yaml:"mongodb_uri" json:"mongodb_uri,omitempty"`
	MongoDatabase string `yaml:"mongodb_database" json:"mongodb_database"`
}

// ScenarioConfig holds defaults for smoke runs.
type ScenarioConfig struct {
	BlueprintPrefix string `yaml:"blueprint_prefix" json:"blueprint_prefix"`
	SuffixLength    int    `yaml:"suffix_length" json:"suffix_length"`
	Record          bool   `yaml:"record" json:"record"`
}

// Address returns host:port of the editor socket.
func (u UnrealConfig) Address() string {
	return net.JoinHostPort(u.Host, strconv.Itoa(u.Port))
}

// DialTimeout returns the dial timeout as a duration.
func (u UnrealConfig) DialTimeout() time.Duration {
	return time.Duration(u.DialTimeoutSec) * time.Second
}

// IOTimeout returns the per-command read/write timeout; zero means none.
func (u UnrealConfig) IOTimeout() time.Duration {
	return time.Duration(u.IOTimeoutSec) * time.Second
}

// RetryDelay returns the base delay between dial attempts.
func (u UnrealConfig) RetryDelay() time.Duration {
	return time.Duration(u.RetryDelayMS) * time.Millisecond
}

// Clone returns a copy safe to hand to another goroutine.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
