package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// FileName is the config file name looked up in the working directory and
// in ConfigDir.
const FileName = "config.yaml"

// Load loads configuration with priority: defaults < file < flags.
// An explicit -config path must exist; the default locations are optional.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)
	return cfg, nil
}

// findConfigFile returns the first existing default config file: the
// working directory wins over the user config directory.
func findConfigFile() string {
	for _, path := range []string{FileName, UserConfigFile()} {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ConfigDir returns the per-user scenemesh config directory.
func ConfigDir() string {
	const app = "scenemesh"
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", app)
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), app)
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, app)
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", app)
	}
}

// UserConfigFile returns the config file path inside ConfigDir.
func UserConfigFile() string {
	return filepath.Join(ConfigDir(), FileName)
}

// loadFromFile merges the YAML file at path over cfg. Unknown keys are
// rejected so that typos do not silently fall back to defaults. An empty
// file leaves cfg unchanged.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
