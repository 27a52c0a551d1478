package logger

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds logging configuration
type Config struct {
	Level          string `yaml:"level"`
	Format         string `yaml:"format"` // "text" or "json"
	FilePath       string `yaml:"file_path"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb"`
	FileMaxBackups int    `yaml:"file_max_backups"`
	FileMaxAgeDays int    `yaml:"file_max_age_days"`
}

type fileConfig struct {
	Logging Config `yaml:"logging"`
}

// DefaultConfig logs INFO as text to stderr only.
func DefaultConfig() Config {
	return Config{
		Level:          "INFO",
		Format:         "text",
		FileMaxSizeMB:  10,
		FileMaxBackups: 5,
		FileMaxAgeDays: 30,
	}
}

// LoadConfig reads the logging section of a YAML file on top of the defaults,
// then applies AWAKEN_LOG_* environment overrides. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			var fc fileConfig
			if err := yaml.Unmarshal(data, &fc); err != nil {
				return cfg, fmt.Errorf("logging config %s: %w", path, err)
			}
			cfg = merge(cfg, fc.Logging)
		case !os.IsNotExist(err):
			return cfg, err
		}
	}

	if v := os.Getenv("AWAKEN_LOG_LEVEL"); v != "" {
		cfg.Level = v
	}
	if v := os.Getenv("AWAKEN_LOG_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("AWAKEN_LOG_FILE"); v != "" {
		cfg.FilePath = v
	}
	return cfg, nil
}

func merge(base, over Config) Config {
	if over.Level != "" {
		base.Level = over.Level
	}
	if over.Format != "" {
		base.Format = over.Format
	}
	if over.FilePath != "" {
		base.FilePath = over.FilePath
	}
	if over.FileMaxSizeMB > 0 {
		base.FileMaxSizeMB = over.FileMaxSizeMB
	}
	if over.FileMaxBackups > 0 {
		base.FileMaxBackups = over.FileMaxBackups
	}
	if over.FileMaxAgeDays > 0 {
		base.FileMaxAgeDays = over.FileMaxAgeDays
	}
	return base
}
