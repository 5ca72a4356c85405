package config

import (
	"context"
	"os"
	"sync"
	"time"

	"unreal-mcp-go/internal/events"

	log "github.com/sirupsen/logrus"
)

// ConfigManager owns the active configuration and reloads it when the
// backing file changes.
type ConfigManager struct {
	mu         sync.RWMutex
	config     *Config
	configPath string
	stopCh     chan struct{}
	stopOnce   sync.Once
	onChange   []func(*Config)
	lastMod    time.Time
	publisher  events.Publisher
}

// NewConfigManager loads the configuration at configPath (or the default
// locations when empty) and starts watching it if it exists.
func NewConfigManager(configPath string) (*ConfigManager, error) {
	resolved := ResolvePath(configPath)
	cfg, err := Load(resolved)
	if err != nil {
		return nil, err
	}
	cm := &ConfigManager{
		config:     cfg,
		configPath: resolved,
		stopCh:     make(chan struct{}),
	}
	if resolved != "" {
		if info, err := os.Stat(resolved); err == nil {
			cm.lastMod = info.ModTime()
			cm.startWatcher()
		}
	}
	return cm, nil
}

// NewStaticManager wraps an already built configuration without a watcher.
func NewStaticManager(cfg *Config) *ConfigManager {
	if cfg == nil {
		cfg = Default()
	}
	return &ConfigManager{config: cfg, stopCh: make(chan struct{})}
}

// Path returns the watched file, or "".
func (cm *ConfigManager) Path() string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.configPath
}

// OnChange registers a callback for configuration changes
func (cm *ConfigManager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.onChange = append(cm.onChange, fn)
}

// SetEventPublisher wires the event hub used to broadcast config updates.
func (cm *ConfigManager) SetEventPublisher(p events.Publisher) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.publisher = p
}

// Get returns a copy of the current configuration
func (cm *ConfigManager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if cm.config == nil {
		return Default()
	}
	return cm.config.Clone()
}

// Reload re-reads the backing file and notifies listeners when it parsed.
func (cm *ConfigManager) Reload() error {
	path := cm.Path()
	if path == "" {
		return nil
	}
	next, err := Load(path)
	if err != nil {
		return err
	}
	old := cm.Get()
	cm.mu.Lock()
	cm.config = next
	if info, statErr := os.Stat(path); statErr == nil {
		cm.lastMod = info.ModTime()
	}
	cm.mu.Unlock()

	cm.emitChange(old, next.Clone())
	logConfigChanges(old, next)
	return nil
}

// Set replaces the configuration in memory and notifies listeners. The
// backing file is left untouched.
func (cm *ConfigManager) Set(next *Config) {
	if next == nil {
		return
	}
	old := cm.Get()
	cm.mu.Lock()
	cm.config = next.Clone()
	cm.mu.Unlock()

	cm.emitChange(old, next.Clone())
	logConfigChanges(old, next)
}

// Close stops the configuration manager
func (cm *ConfigManager) Close() {
	cm.stopOnce.Do(func() { close(cm.stopCh) })
}

func (cm *ConfigManager) listenersSnapshot() ([]func(*Config), events.Publisher, string) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	callbacks := make([]func(*Config), len(cm.onChange))
	copy(callbacks, cm.onChange)
	return callbacks, cm.publisher, cm.configPath
}

func (cm *ConfigManager) emitChange(oldCfg, newCfg *Config) {
	callbacks, publisher, path := cm.listenersSnapshot()

	for _, fn := range callbacks {
		fn(newCfg)
	}

	if publisher != nil && newCfg != nil {
		event := ConfigChangeEvent{
			Path:      path,
			UpdatedAt: time.Now().UTC(),
			Config:    *newCfg,
		}
		if oldCfg != nil {
			prev := *oldCfg
			event.Previous = &prev
		}
		publisher.Publish(context.Background(), events.TopicConfigUpdated, event, nil)
	}
}

// ConfigChangeEvent is the payload broadcast when configuration changes.
type ConfigChangeEvent struct {
	Path      string    `json:"path"`
	UpdatedAt time.Time `json:"updated_at"`
	Config    Config    `json:"config"`
	Previous  *Config   `json:"previous,omitempty"`
}

func logConfigChanges(old, next *Config) {
	if old.Unreal.Address() != next.Unreal.Address() {
		log.WithFields(log.Fields{"field": "unreal.address", "old": old.Unreal.Address(), "new": next.Unreal.Address()}).Info("config changed")
	}
	if old.Logging.Level != next.Logging.Level {
		log.WithFields(log.Fields{"field": "logging.level", "old": old.Logging.Level, "new": next.Logging.Level}).Info("config changed")
	}
	if old.Unreal.Retries != next.Unreal.Retries {
		log.WithFields(log.Fields{"field": "unreal.retries", "old": old.Unreal.Retries, "new": next.Unreal.Retries}).Info("config changed")
	}
	if old.Bridge.RateLimitRPS != next.Bridge.RateLimitRPS {
		log.WithFields(log.Fields{"field": "bridge.rate_limit_rps", "old": old.Bridge.RateLimitRPS, "new": next.Bridge.RateLimitRPS}).Info("config changed")
	}
}
