package config

import "flag"

var (
	flagConfig            = flag.String("config", "", "Path to config file")
	flagDebug             = flag.Bool("debug", false, "Enable debug logging")
	flagData              = flag.String("data", "", "Document search path list")
	flagNoScaleCorrection = flag.Bool("no-scale-correction", false, "Skip the final axis-scale correction of extracted meshes")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagData != "" {
		cfg.Data.SearchPaths = *flagData
	}
	if *flagNoScaleCorrection {
		cfg.Mesh.ScaleCorrection = false
	}
}
