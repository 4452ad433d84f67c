package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		LogsDir: "logs",
		Output: OutputConfig{
			Format:     "csv",
			FilePrefix: "audit_log",
			Timezone:   "UTC",
		},
		Transform: TransformConfig{Workers: 1},
	}
}

// Load reads, parses, and validates configuration from the provided path.
// Keys missing from the file keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path, or validates Default when path is empty.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		if err := Validate(cfg); err != nil {
			return nil, fmt.Errorf("validate config: %w", err)
		}
		return cfg, nil
	}
	return Load(path)
}

// Validate fills derived defaults and checks c.
func Validate(c *Config) error {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Output.Format == "" {
		c.Output.Format = "csv"
	}
	if c.Output.FilePrefix == "" {
		c.Output.FilePrefix = "audit_log"
	}
	if c.Output.Timezone == "" {
		c.Output.Timezone = "UTC"
	}
	if c.Output.Dir == "" {
		c.Output.Dir = c.LogsDir
	}
	if c.Transform.Workers == 0 {
		c.Transform.Workers = 1
	}

	if err := validate.Struct(c); err != nil {
		return err
	}

	if _, err := time.LoadLocation(c.Output.Timezone); err != nil {
		return fmt.Errorf("output.timezone: %w", err)
	}

	return nil
}
