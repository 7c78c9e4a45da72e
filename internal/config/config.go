// Package config is the optional YAML configuration file for
// cmd/nxroms: a key-file path override, an output directory, and a
// verbosity flag. Flags passed on the command line override the config
// file, which in turn overrides the package defaults.
//
// Grounded on barnettlynn-nfctools/minter/internal/config/config.go and
// barnettlynn-nfctools/sdmconfig/internal/config/config.go for the
// Load/Validate shape and config-dir-relative path resolution.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the decoded contents of the optional --config YAML file.
type Config struct {
	KeysFile  string `yaml:"keys_file"`
	OutputDir string `yaml:"output_dir"`
	Verbose   bool   `yaml:"verbose"`
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	cfg.resolvePaths(path)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that keys_file, when set, names an existing file;
// output_dir is not checked. Every field is optional, so an empty
// Config is valid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.KeysFile) != "" {
		if info, err := os.Stat(c.KeysFile); err != nil {
			return fmt.Errorf("config.keys_file: %w", err)
		} else if info.IsDir() {
			return fmt.Errorf("config.keys_file must point to a file, got directory")
		}
	}
	return nil
}

func (c *Config) resolvePaths(configPath string) {
	configDir := filepath.Dir(configPath)
	c.KeysFile = resolvePath(configDir, c.KeysFile)
	c.OutputDir = resolvePath(configDir, c.OutputDir)
}

func resolvePath(baseDir, path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || filepath.IsAbs(trimmed) {
		return trimmed
	}
	return filepath.Clean(filepath.Join(baseDir, trimmed))
}
