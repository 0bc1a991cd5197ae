package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// config holds CLI-binary-only defaults. It is never part of the
// mkvtag package's own persisted state — it lives in an optional YAML
// file the user points -config at.
type config struct {
	// DefaultTargetType is the target type the set command uses when
	// the command line gave no -target flag (or -target 0).
	DefaultTargetType uint64 `yaml:"default_target_type"`
	// Verbose enables Info-level structured logging on the
	// mkvtag.Context via WithLogger.
	Verbose bool `yaml:"verbose"`
}

func defaultConfig() config {
	return config{DefaultTargetType: 50}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
