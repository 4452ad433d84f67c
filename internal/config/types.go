package config

import (
	"path/filepath"
	"time"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	LogsDir   string          `yaml:"logs_dir"  validate:"required"`
	Output    OutputConfig    `yaml:"output"`
	Transform TransformConfig `yaml:"transform"`
	Follow    FollowConfig    `yaml:"follow"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// LoggingConfig controls log verbosity and format.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `yaml:"json"`
}

// OutputConfig describes where and how audit lines are written.
type OutputConfig struct {
	Dir        string `yaml:"dir"`                                // defaults to logs_dir
	Format     string `yaml:"format"      validate:"oneof=csv json"`
	FilePrefix string `yaml:"file_prefix" validate:"required,excludesall=/\\"`
	Timezone   string `yaml:"timezone"    validate:"required"` // e.g. "UTC", "Europe/Rome"
}

// TransformConfig tunes the historical batch transform.
type TransformConfig struct {
	Workers int `yaml:"workers" validate:"min=1,max=64"` // days processed in parallel
}

// FollowConfig lists the live log files tailed by the follow command.
type FollowConfig struct {
	HTTPDLog  string `yaml:"httpd_log"`  // e.g. /var/gerrit/logs/httpd_log
	SSHDLog   string `yaml:"sshd_log"`   // e.g. /var/gerrit/logs/sshd_log
	Poll      bool   `yaml:"poll"`       // poll instead of inotify
	FromStart bool   `yaml:"from_start"` // replay existing content before following
}

// MetricsConfig controls the Prometheus endpoint of the follow command.
type MetricsConfig struct {
	Listen string `yaml:"listen,omitempty"` // e.g. ":9090"; empty disables
}

// Location resolves Output.Timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Output.Timezone)
}

// DailyFile is the audit log written for one day, e.g. audit_log.2019-01-19.log.
func (o OutputConfig) DailyFile(day string) string {
	return filepath.Join(o.Dir, o.FilePrefix+"."+day+".log")
}

// LiveFile is the audit log appended to by the follow command.
func (o OutputConfig) LiveFile() string {
	return filepath.Join(o.Dir, o.FilePrefix+".log")
}

// Archive is the compressed per-day log of a source, e.g. httpd_log.2019-01-19.gz.
func (c *Config) Archive(source, day string) string {
	return filepath.Join(c.LogsDir, source+"."+day+".gz")
}
