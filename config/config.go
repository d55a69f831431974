// Package config reads runtime settings from the environment.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	DB        string `env:"NEUROCLICK_DB" envDefault:"neuroclick.db"`
	Addr      string `env:"NEUROCLICK_ADDR" envDefault:"127.0.0.1:8080"`
	LogLevel  string `env:"NEUROCLICK_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"NEUROCLICK_LOG_FORMAT" envDefault:"text"`
	// LogFile receives logs in play mode. Empty discards them.
	LogFile string `env:"NEUROCLICK_LOG_FILE"`
}

// Load parses Config from the environment, applying defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// NewLogger builds a slog logger writing to w. format is "text" or "json".
func NewLogger(level, format string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}
