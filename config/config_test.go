package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDecodesDataSources(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(`
data_sources:
  kv:
    prefix: "users:"
  csv:
    delimiter: ","
`), 0o644))

	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, "users:", cfg.OptionsFor("kv")["prefix"])
	assert.Equal(t, ",", cfg.OptionsFor("csv")["delimiter"])
	assert.Nil(t, cfg.OptionsFor("missing"))
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestNilConfigOptionsForIsSafe(t *testing.T) {
	var cfg *Config
	assert.Nil(t, cfg.OptionsFor("anything"))
}
