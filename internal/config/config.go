// Package config handles meshtool configuration loading and management.
package config

// Config holds all tool settings.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Mesh    MeshConfig    `yaml:"mesh"`
	Logging LoggingConfig `yaml:"logging"`
}

// DataConfig holds document search settings.
type DataConfig struct {
	SearchPaths string `yaml:"search_paths"` // Path list, split like SCENEMESH_DATA
	LoadEnv     bool   `yaml:"load_env"`     // Also read SCENEMESH_DATA
}

// MeshConfig holds mesh extraction settings.
type MeshConfig struct {
	ScaleCorrection bool `yaml:"scale_correction"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			LoadEnv: true,
		},
		Mesh: MeshConfig{
			ScaleCorrection: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
