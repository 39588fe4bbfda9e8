// Package config loads indentation preferences from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/r9s-ai/smart-indent/indent"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = ".smart-indent.yaml"

// Config holds formatting preferences.
type Config struct {
	TabSize int  `yaml:"tab_size"`
	UseTabs bool `yaml:"use_tabs"`
}

// Default returns four-column indentation with spaces.
func Default() Config {
	return Config{TabSize: 4}
}

// Parse decodes YAML over the defaults. The result is not validated so
// callers can override fields first; see Validate.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return cfg, nil
}

// Validate reports whether the config can render indentation.
func (c Config) Validate() error {
	return c.Options().Validate()
}

// Load reads path. A missing file yields the defaults when optional is set.
func Load(path string, optional bool) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Options converts the config for the indent package.
func (c Config) Options() indent.Options {
	return indent.Options{UseTabs: c.UseTabs, TabSize: c.TabSize}
}
