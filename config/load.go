package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"
)

// Load reads a config file on top of the defaults. The format follows the
// file extension: .toml for TOML, anything else is YAML.
func Load(path string) (Config, error) {
	c := Default()

	f, err := os.Open(path)
	if err != nil {
		return c, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	if isTOML(path) {
		if _, err := toml.NewDecoder(f).Decode(&c); err != nil {
			return c, fmt.Errorf("decode %s: %w", path, err)
		}
	} else {
		if err := yaml.NewDecoder(f).Decode(&c); err != nil {
			return c, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if _, err := c.Params(); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	if _, err := c.Tracker(); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func isConfigFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".toml":
		return true
	}
	return false
}
