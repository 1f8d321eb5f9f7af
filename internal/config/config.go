package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/dkoosis/qarun/internal/kv"
	"github.com/dkoosis/qarun/pkg/tui"
)

// FileName is the config file looked up in the working directory and in the
// user config dir.
const FileName = ".qarun.yaml"

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "QARUN"

// Defaults.
const (
	DefaultCatalogue = "catalogue.json"
	DefaultStore     = kv.KindFile
	DefaultOutputDir = "."
	DefaultTheme     = "default"
)

// Source names where a resolved value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceFile    Source = "file"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
)

// Flags holds the values of command-line flags. Empty strings mean the flag
// was not given; the *Set booleans track explicit boolean flags.
type Flags struct {
	ConfigPath   string
	Catalogue    string
	CatalogueKey string
	Store        string
	StorePath    string
	OutputDir    string
	Theme        string
	DevMode      bool
	Debug        bool

	DevModeSet bool
	DebugSet   bool
}

// FileConfig is the shape of .qarun.yaml.
type FileConfig struct {
	Catalogue    string     `yaml:"catalogue"`
	CatalogueKey string     `yaml:"catalogue_key"`
	Store        string     `yaml:"store"`
	StorePath    string     `yaml:"store_path"`
	OutputDir    string     `yaml:"output_dir"`
	Theme        string     `yaml:"theme"`
	DevMode      *bool      `yaml:"dev_mode"`
	Debug        *bool      `yaml:"debug"`
	TUI          *tui.Theme `yaml:"tui"`
}

// envConfig is filled by envconfig from QARUN_* variables.
type envConfig struct {
	Catalogue    string `envconfig:"CATALOGUE"`
	CatalogueKey string `envconfig:"CATALOGUE_KEY"`
	Store        string `envconfig:"STORE"`
	StorePath    string `envconfig:"STORE_PATH"`
	OutputDir    string `envconfig:"OUTPUT_DIR"`
	Theme        string `envconfig:"THEME"`
	DevMode      *bool  `envconfig:"DEV_MODE"`
	Debug        *bool  `envconfig:"DEBUG"`
}

// Config is the resolved configuration.
type Config struct {
	Catalogue    string
	CatalogueKey string
	Store        kv.Kind
	StorePath    string
	OutputDir    string
	Theme        string
	DevMode      bool
	Debug        bool
	NoColor      bool

	// TUI is the wizard and dashboard theme, merged with defaults.
	TUI *tui.Theme

	// ConfigFile is the YAML file that was read, or "".
	ConfigFile string
	// StateDir holds the default store and log files.
	StateDir string
	// Sources records where each setting came from, for debug output.
	Sources map[string]Source
}

// Load resolves the configuration from flags, environment, YAML and defaults.
func Load(fs afero.Fs, flags Flags) (*Config, error) {
	cfg := &Config{
		Catalogue: DefaultCatalogue,
		Store:     DefaultStore,
		OutputDir: DefaultOutputDir,
		Theme:     DefaultTheme,
		StateDir:  stateDir(),
		Sources: map[string]Source{
			"catalogue":     SourceDefault,
			"catalogue_key": SourceDefault,
			"store":         SourceDefault,
			"store_path":    SourceDefault,
			"output_dir":    SourceDefault,
			"theme":         SourceDefault,
			"dev_mode":      SourceDefault,
			"debug":         SourceDefault,
		},
	}

	path := flags.ConfigPath
	if path == "" {
		path = findConfigPath(fs)
	}
	var file FileConfig
	if path != "" {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			// An explicit --config must exist; a discovered one vanished.
			if flags.ConfigPath != "" || !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else {
			if err := yaml.Unmarshal(data, &file); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
			cfg.ConfigFile = path
		}
	}
	cfg.apply(SourceFile, file.Catalogue, file.CatalogueKey, file.Store, file.StorePath, file.OutputDir, file.Theme)
	cfg.applyBools(SourceFile, file.DevMode, file.Debug)

	var env envConfig
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	cfg.apply(SourceEnv, env.Catalogue, env.CatalogueKey, env.Store, env.StorePath, env.OutputDir, env.Theme)
	cfg.applyBools(SourceEnv, env.DevMode, env.Debug)
	if os.Getenv("NO_COLOR") != "" {
		cfg.NoColor = true
	}

	cfg.apply(SourceFlag, flags.Catalogue, flags.CatalogueKey, flags.Store, flags.StorePath, flags.OutputDir, flags.Theme)
	var dev, debug *bool
	if flags.DevModeSet {
		dev = &flags.DevMode
	}
	if flags.DebugSet {
		debug = &flags.Debug
	}
	cfg.applyBools(SourceFlag, dev, debug)

	// NO_COLOR wins over every theme except one chosen on the command line.
	if cfg.NoColor && cfg.Sources["theme"] != SourceFlag {
		cfg.Theme = "mono"
	}
	if cfg.Theme == "mono" {
		cfg.TUI = tui.MonoTheme()
	} else {
		cfg.TUI = tui.MergeDefaults(file.TUI)
	}

	if cfg.StorePath == "" {
		cfg.StorePath = DefaultStorePath(cfg.StateDir, cfg.Store)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) apply(src Source, catalogue, catalogueKey, store, storePath, outputDir, theme string) {
	set := func(name string, dst *string, v string) {
		if v != "" {
			*dst = v
			c.Sources[name] = src
		}
	}
	set("catalogue", &c.Catalogue, catalogue)
	set("catalogue_key", &c.CatalogueKey, catalogueKey)
	storeName := string(c.Store)
	set("store", &storeName, store)
	c.Store = kv.Kind(storeName)
	set("store_path", &c.StorePath, storePath)
	set("output_dir", &c.OutputDir, outputDir)
	set("theme", &c.Theme, theme)
}

func (c *Config) applyBools(src Source, devMode, debug *bool) {
	if devMode != nil {
		c.DevMode = *devMode
		c.Sources["dev_mode"] = src
	}
	if debug != nil {
		c.Debug = *debug
		c.Sources["debug"] = src
	}
}

func (c *Config) validate() error {
	switch c.Store {
	case kv.KindMemory, kv.KindFile, kv.KindSQLite:
	default:
		return fmt.Errorf("invalid store value: %s (must be: memory, file, sqlite)", c.Store)
	}
	if c.Catalogue == "" {
		return errors.New("catalogue path cannot be empty")
	}
	return nil
}

// LogPath returns the file the TUI commands log to.
func (c *Config) LogPath() string {
	return filepath.Join(c.StateDir, "qarun.log")
}

// DefaultStorePath returns the store location used when none is configured.
func DefaultStorePath(dir string, kind kv.Kind) string {
	switch kind {
	case kv.KindSQLite:
		return filepath.Join(dir, "state.db")
	case kv.KindFile:
		return filepath.Join(dir, "state.json")
	default:
		return ""
	}
}

// stateDir is $XDG_CONFIG_HOME/qarun, or .qarun when no user config dir is
// available.
func stateDir() string {
	configHome, err := os.UserConfigDir()
	if err != nil || configHome == "" || configHome == "/" {
		return ".qarun"
	}
	return filepath.Join(configHome, "qarun")
}

// findConfigPath checks the local directory first, then the user config dir.
func findConfigPath(fs afero.Fs) string {
	if _, err := fs.Stat(FileName); err == nil {
		return FileName
	}
	configHome, err := os.UserConfigDir()
	if err != nil || configHome == "" || configHome == "/" {
		return ""
	}
	xdgPath := filepath.Join(configHome, "qarun", FileName)
	if _, err := fs.Stat(xdgPath); err == nil {
		return xdgPath
	}
	return ""
}
