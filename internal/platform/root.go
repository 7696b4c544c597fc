package platform

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/drumconv/pkg/drummap"
)

// ConfigFileName is the project configuration file looked up by FindConfig.
const ConfigFileName = "drumconv.yaml"

// ErrConfigNotFound is returned by FindConfig when no directory up to the
// filesystem root holds a config file.
var ErrConfigNotFound = errors.New("config not found")

// Config is the content of a drumconv.yaml file.
type Config struct {
	// Map is a built-in map name or a drum map path relative to the config file.
	Map       string `yaml:"map"`
	Workers   int    `yaml:"workers"`
	Pattern   string `yaml:"pattern"`
	Overwrite *bool  `yaml:"overwrite"`
}

// FindConfig recursively looks upwards from startDir for a drumconv.yaml
// file and returns its absolute path.
func FindConfig(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, ConfigFileName) {
			return filepath.Join(dir, ConfigFileName), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return "", ErrConfigNotFound
}

func hasFile(dir, name string) bool {
	info, err := os.Stat(filepath.Join(dir, name))
	return err == nil && !info.IsDir()
}

// LoadConfig reads a config file. Unknown keys are an error. A relative
// map path is resolved against the directory of the config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.Workers < 0 {
		return nil, fmt.Errorf("parse config %s: workers must not be negative", path)
	}

	if cfg.Map != "" && !slices.Contains(drummap.Names(), cfg.Map) && !filepath.IsAbs(cfg.Map) {
		cfg.Map = filepath.Join(filepath.Dir(path), cfg.Map)
	}
	return &cfg, nil
}

// Options turns the config into functional options. Options given later
// override them.
func (c *Config) Options() []Option {
	var opts []Option
	if c.Map != "" {
		opts = append(opts, WithMap(c.Map))
	}
	if c.Workers > 0 {
		opts = append(opts, WithWorkers(c.Workers))
	}
	if c.Overwrite != nil {
		opts = append(opts, WithOverwrite(*c.Overwrite))
	}
	return opts
}
