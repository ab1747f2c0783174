package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"recsort/common"
)

const DEFAULT_TEMP_DIR_NAME = "recsort"
const DEFAULT_LOG_LEVEL = "info"
const DEFAULT_LOG_FORMAT = "text"

// Config holds the defaults the CLI falls back to when a flag is not given.
type Config struct {
	TempDir       string `yaml:"temp_dir"`
	ChunkRecords  int    `yaml:"chunk_records"`
	Key           string `yaml:"key"`
	SkipMalformed bool   `yaml:"skip_malformed"`
	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`
}

func Default() *Config {
	return &Config{
		TempDir:      filepath.Join(os.TempDir(), DEFAULT_TEMP_DIR_NAME),
		ChunkRecords: common.DEFAULT_CHUNK_RECORDS,
		LogLevel:     DEFAULT_LOG_LEVEL,
		LogFormat:    DEFAULT_LOG_FORMAT,
	}
}

// Load reads a YAML file on top of the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.NewFileError("read", path, err)
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if cfg.ChunkRecords <= 0 {
		return nil, common.NewConfigError("chunk_records", "must be at least 1")
	}
	return cfg, nil
}
