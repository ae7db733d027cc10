package core

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

const (
	// ArchiverDpkgDeb shells out to dpkg-deb --build
	ArchiverDpkgDeb = "dpkg-deb"
	// ArchiverNative writes the .deb in-process
	ArchiverNative = "native"

	// DefaultMaintainer is the project identity written into every control record
	DefaultMaintainer = "Nicolas Gargaud (Jacen) <jacen92gmail.com>"
	// DefaultHomepage is the project URL written into every control record
	DefaultHomepage = "https://maison-gargaud.info"

	// DefaultTimeout bounds each ldd and archiver invocation
	DefaultTimeout = 2 * time.Minute
)

// Config holds debpack configuration
type Config struct {
	OutputDir    string        `yaml:"output_dir"`
	Archiver     string        `yaml:"archiver"`
	ArchiverPath string        `yaml:"archiver_path"`
	LddPath      string        `yaml:"ldd_path"`
	Maintainer   string        `yaml:"maintainer"`
	Homepage     string        `yaml:"homepage"`
	Exclude      []string      `yaml:"exclude"`
	Timeout      time.Duration `yaml:"timeout"`
	Sequential   bool          `yaml:"sequential"`
	Debug        bool          `yaml:"debug"`

	// Logger receives progress output. Nil means a default stderr logger.
	Logger *log.Logger `yaml:"-"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		OutputDir:  getDefaultOutputDir(),
		Archiver:   ArchiverDpkgDeb,
		LddPath:    "ldd",
		Maintainer: DefaultMaintainer,
		Homepage:   DefaultHomepage,
		Timeout:    DefaultTimeout,
	}
}

// LoadConfig loads configuration from file. A missing file yields the defaults;
// keys absent from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = filepath.Join(home, ".config", "debpack", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveConfig saves configuration to file
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		path = filepath.Join(home, ".config", "debpack", "config.yaml")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Validate checks values that cannot be defaulted silently
func (c *Config) Validate() error {
	switch c.Archiver {
	case "", ArchiverDpkgDeb, ArchiverNative:
	default:
		return fmt.Errorf("unknown archiver %q (want %s or %s)", c.Archiver, ArchiverDpkgDeb, ArchiverNative)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}

// ApplyDefaults fills zero values so a hand-built Config behaves like DefaultConfig
func (c *Config) ApplyDefaults() {
	def := DefaultConfig()
	if c.OutputDir == "" {
		c.OutputDir = def.OutputDir
	}
	if c.Archiver == "" {
		c.Archiver = def.Archiver
	}
	if c.LddPath == "" {
		c.LddPath = def.LddPath
	}
	if c.Maintainer == "" {
		c.Maintainer = def.Maintainer
	}
	if c.Homepage == "" {
		c.Homepage = def.Homepage
	}
	if c.Timeout == 0 {
		c.Timeout = def.Timeout
	}
	if c.Logger == nil {
		c.Logger = NewLogger(c.Debug)
	}
}

func getDefaultOutputDir() string {
	if path := os.Getenv("DEBPACK_OUTPUT_DIR"); path != "" {
		return path
	}
	return "."
}
