package config

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// CheckAPIKey validates a bridge API key against the plain or bcrypt-hashed
// configured key.
func CheckAPIKey(cfg *Config, candidate string) bool {
	if cfg == nil || candidate == "" {
		return false
	}
	if cfg.Bridge.APIKey != "" && subtle.ConstantTimeCompare([]byte(candidate), []byte(cfg.Bridge.APIKey)) == 1 {
		return true
	}
	if cfg.Bridge.APIKeyHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(cfg.Bridge.APIKeyHash), []byte(candidate)); err == nil {
			return true
		}
	}
	return false
}

// APIKeyRequired reports whether the bridge enforces authentication.
func APIKeyRequired(cfg *Config) bool {
	return cfg != nil && (cfg.Bridge.APIKey != "" || cfg.Bridge.APIKeyHash != "")
}

// APIKeyValidator returns a closure suitable for middleware validation.
func APIKeyValidator(get func() *Config) func(string) bool {
	return func(candidate string) bool {
		return CheckAPIKey(get(), candidate)
	}
}
