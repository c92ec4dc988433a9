// Package config loads service configuration from defaults, an optional
// file, and STRINGSVC_* environment variables, then validates it against
// an embedded CUE schema.
package config

import (
	"io"
	"log/slog"
	"time"
)

// Config is the complete service configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server" json:"server"`
	Store  StoreConfig  `mapstructure:"store" json:"store"`
	NLP    NLPConfig    `mapstructure:"nlp" json:"nlp"`
	Log    LogConfig    `mapstructure:"log" json:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" json:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" json:"shutdown_timeout"`

	// RateLimit is requests per second across all clients; 0 disables it.
	RateLimit float64 `mapstructure:"rate_limit" json:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst" json:"rate_burst"`
}

// Store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// StoreConfig selects the record store.
type StoreConfig struct {
	Backend string `mapstructure:"backend" json:"backend"`
}

// NLPConfig configures the natural-language parser.
type NLPConfig struct {
	CacheSize int `mapstructure:"cache_size" json:"cache_size"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"`
}

// SlogLevel converts Level. Unknown names fall back to info.
func (c LogConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// NewLogger builds a logger writing to w. verbose forces debug level.
func (c LogConfig) NewLogger(w io.Writer, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
