// Package config provides configuration loading and validation for proclog.
package config

import (
	"time"

	"github.com/ccollicutt/proclog/pkg/analyzer"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// LogSources are file paths or doublestar globs of CSV activity logs.
	LogSources []string `yaml:"log_sources"`

	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Report     ReportConfig     `yaml:"report"`
	Logging    LoggingConfig    `yaml:"logging"`
	Webhooks   []WebhookConfig  `yaml:"webhooks,omitempty" validate:"dive"`
}

// ThresholdsConfig bounds acceptable process durations.
type ThresholdsConfig struct {
	Warning time.Duration `yaml:"warning" validate:"gt=0"`
	Error   time.Duration `yaml:"error" validate:"gt=0"`
}

// Analyzer converts the configured limits for the report generator.
func (t ThresholdsConfig) Analyzer() analyzer.Thresholds {
	return analyzer.Thresholds{Warning: t.Warning, Error: t.Error}
}

// ReportConfig controls where findings are persisted besides stdout.
type ReportConfig struct {
	// LogFile is a strftime pattern for the findings log, e.g. "proclog-%Y%m%d.log".
	// Empty disables the findings log.
	LogFile string `yaml:"log_file,omitempty"`

	// LogFormat is the encoding of the findings log.
	LogFormat string `yaml:"log_format,omitempty" validate:"oneof=json console"`

	// MetricsFile is a Prometheus textfile collector path. Empty disables it.
	MetricsFile string `yaml:"metrics_file,omitempty"`
}

// LoggingConfig controls operational logging on stderr.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnIssues fires only when processes were flagged (default).
	WebhookTriggerOnIssues WebhookTrigger = "on_issues"
	// WebhookTriggerAlways fires after every analysis.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending reports.
type WebhookConfig struct {
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required, http or https).
	URL string `yaml:"url" validate:"required,url"`

	// Token is an optional bearer token. ${VAR} and $VAR are expanded.
	Token string `yaml:"token,omitempty"`

	// Trigger defaults to "on_issues".
	Trigger WebhookTrigger `yaml:"trigger,omitempty" validate:"omitempty,oneof=on_issues always never"`

	// Timeout defaults to 10s.
	Timeout time.Duration `yaml:"timeout,omitempty" validate:"gte=0"`
}
