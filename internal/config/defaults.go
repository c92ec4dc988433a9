package config

import (
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. STRINGSVC_SERVER_ADDR.
const EnvPrefix = "STRINGSVC"

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.rate_limit", 0.0) // disabled
	v.SetDefault("server.rate_burst", 20)

	// Store defaults
	v.SetDefault("store.backend", BackendMemory)

	// Natural-language parser defaults
	v.SetDefault("nlp.cache_size", 256)

	// Logging defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
