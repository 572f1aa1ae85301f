// Package config loads imagededup settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"imagededup/utils"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFileName is the configuration file looked up in the working directory
const DefaultFileName = "imagededup.toml"

// Hash backends
const (
	BackendOpenCV = "opencv"
	BackendNative = "native"
)

// Paths contains the locations of the artifacts written by a run.
type Paths struct {
	StorePath    string `toml:"store_path"`
	DatabasePath string `toml:"database_path"`
	LogFile      string `toml:"log_file"`
}

// Scan contains hashing settings.
type Scan struct {
	Workers     int    `toml:"workers"`
	HashBackend string `toml:"hash_backend"`
}

// Logging contains logger settings.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the full imagededup configuration.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Scan    Scan    `toml:"scan"`
	Logging Logging `toml:"logging"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Paths: Paths{
			StorePath: utils.GetDefaultStorePath(),
		},
		Scan: Scan{
			Workers:     runtime.NumCPU(),
			HashBackend: BackendOpenCV,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the configuration at path, or DefaultFileName when path is empty.
// A missing default file is not an error; a missing explicit file is.
// It returns the config, the resolved path and whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	explicit := strings.TrimSpace(path) != ""
	resolved := DefaultFileName
	if explicit {
		resolved = strings.TrimSpace(path)
	}
	if abs, err := filepath.Abs(resolved); err == nil {
		resolved = abs
	}

	cfg := Default()
	data, err := os.ReadFile(resolved)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		cfg.normalize()
		return &cfg, resolved, false, cfg.Validate()
	case err != nil:
		return nil, resolved, false, fmt.Errorf("read config %s: %w", resolved, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, resolved, true, fmt.Errorf("parse config %s: %w", resolved, err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, resolved, true, err
	}
	return &cfg, resolved, true, nil
}

func (c *Config) normalize() {
	c.Paths.StorePath = strings.TrimSpace(c.Paths.StorePath)
	c.Paths.DatabasePath = strings.TrimSpace(c.Paths.DatabasePath)
	c.Paths.LogFile = strings.TrimSpace(c.Paths.LogFile)
	if c.Scan.Workers <= 0 {
		c.Scan.Workers = runtime.NumCPU()
	}
	c.Scan.HashBackend = strings.ToLower(strings.TrimSpace(c.Scan.HashBackend))
	if c.Scan.HashBackend == "" {
		c.Scan.HashBackend = BackendOpenCV
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Paths.StorePath == "" {
		return errors.New("paths.store_path must not be empty")
	}
	switch c.Scan.HashBackend {
	case BackendOpenCV, BackendNative:
	default:
		return fmt.Errorf("scan.hash_backend: unsupported value %q", c.Scan.HashBackend)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "console", "text", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() (string, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(data), nil
}
