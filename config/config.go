// Package config decodes the driver-level configuration document (spec
// §6): a nested mapping of data-source options the core never interprets,
// only hands intact to the source registry's builders.
package config

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/wbrown/weaveq/werrors"
)

// Config is the decoded shape of the YAML document: per-type options are
// opaque to the core (spec §6), defined by each source, not by weave.
type Config struct {
	DataSources map[string]map[string]interface{} `yaml:"data_sources"`
}

// Load reads and decodes a config file. werrors.ConfigurationError wraps
// any I/O or decode failure.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, werrors.ConfigurationError("reading config file", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, werrors.ConfigurationError("parsing config file", err)
	}
	return &cfg, nil
}

// OptionsFor returns the opaque option map for a given source type, or nil
// if the type has no configured options.
func (c *Config) OptionsFor(sourceType string) map[string]interface{} {
	if c == nil {
		return nil
	}
	return c.DataSources[sourceType]
}
