package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config holds every setting the command understands. A YAML file passed
// with --config supplies defaults; flags given on the command line win.
type Config struct {
	Mode        string      `yaml:"mode"`
	Output      string      `yaml:"output"`
	Gzip        *bool       `yaml:"gzip"` // nil sniffs the gzip magic
	CP437       bool        `yaml:"cp437"`
	UnknownRune string      `yaml:"unknown_rune"`
	Debug       DebugConfig `yaml:"debug"`
}

// DebugConfig controls event tracing.
type DebugConfig struct {
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file"`
	Pretty  bool   `yaml:"pretty"`
}

func defaultConfig() Config {
	return Config{
		Mode:        "masked",
		Output:      "text",
		CP437:       true,
		UnknownRune: "?",
	}
}

// loadConfig reads path over the defaults. Keys missing from the file keep
// their default values.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// flagValues are the raw command-line settings.
type flagValues struct {
	mode        string
	output      string
	gzip        bool
	cp437       bool
	unknownRune string
	debug       bool
	debugFile   string
	debugPretty bool
}

// apply overlays every flag the user actually set onto cfg.
func (f *flagValues) apply(fs *pflag.FlagSet, cfg *Config) {
	if fs.Changed("mode") {
		cfg.Mode = f.mode
	}
	if fs.Changed("output") {
		cfg.Output = f.output
	}
	if fs.Changed("gzip") {
		gz := f.gzip
		cfg.Gzip = &gz
	}
	if fs.Changed("cp437") {
		cfg.CP437 = f.cp437
	}
	if fs.Changed("unknown-rune") {
		cfg.UnknownRune = f.unknownRune
	}
	if fs.Changed("debug") {
		cfg.Debug.Enabled = f.debug
	}
	if fs.Changed("debug-file") {
		cfg.Debug.File = f.debugFile
	}
	if fs.Changed("debug-pretty") {
		cfg.Debug.Pretty = f.debugPretty
	}
}
