package constants

import "time"

const (
	// ScenarioStepTimeout bounds a single scenario step when the caller has
	// not set a deadline.
	ScenarioStepTimeout = 120 * time.Second
	// StorageOpTimeout bounds run-history reads and writes.
	StorageOpTimeout = 5 * time.Second
	// HealthProbeTimeout bounds the bridge's reachability probe.
	HealthProbeTimeout = 2 * time.Second
	// ServerShutdownTimeout bounds graceful HTTP server shutdown.
	ServerShutdownTimeout = 30 * time.Second
	// ConfigReloadDebounce coalesces bursts of file events.
	ConfigReloadDebounce = 100 * time.Millisecond
	// UnrealProbeInterval paces the bridge's background reachability probe.
	UnrealProbeInterval = 30 * time.Second
	// ConfigPollInterval is used when fsnotify is unavailable.
	ConfigPollInterval = 5 * time.Second
)
