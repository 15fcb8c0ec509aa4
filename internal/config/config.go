package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/aretw0/annotate/internal/runtime"
)

// Hook is a hook to install when a program is loaded.
type Hook struct {
	Node string `toml:"node"`
	Kind string `toml:"kind"`
}

// Config holds the CLI settings.
type Config struct {
	LogLevel    string
	MaxSteps    int
	MetricsAddr string
	Hooks       []Hook
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:    "info",
		MaxSteps:    runtime.DefaultMaxSteps,
		MetricsAddr: ":2112",
	}
}

type fileConfig struct {
	LogLevel    string `toml:"log_level"`
	MaxSteps    int    `toml:"max_steps"`
	MetricsAddr string `toml:"metrics_addr"`
	Hooks       []Hook `toml:"hook"`
}

// Load overlays the keys defined in a TOML file onto Default.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("max_steps") {
		if raw.MaxSteps <= 0 {
			return Config{}, fmt.Errorf("load config: max_steps must be positive, got %d", raw.MaxSteps)
		}
		cfg.MaxSteps = raw.MaxSteps
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}
	if meta.IsDefined("hook") {
		for i, h := range raw.Hooks {
			h.Node = strings.TrimSpace(h.Node)
			h.Kind = strings.TrimSpace(h.Kind)
			if h.Node == "" || h.Kind == "" {
				return Config{}, fmt.Errorf("load config: hook #%d needs node and kind", i+1)
			}
			cfg.Hooks = append(cfg.Hooks, h)
		}
	}

	return cfg, nil
}
