package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ccollicutt/proclog/pkg/analyzer"
)

// Default values for configuration.
const (
	DefaultWebhookTimeout  = 10 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "console"
	DefaultReportLogFormat = "json"
	DefaultEnvFile         = ".env"
)

// Environment variable names.
const (
	EnvLogSources       = "PROCLOG_LOG_SOURCES"
	EnvWarningThreshold = "PROCLOG_WARNING_THRESHOLD"
	EnvErrorThreshold   = "PROCLOG_ERROR_THRESHOLD"
	EnvLogLevel         = "PROCLOG_LOG_LEVEL"
	EnvReportLogFile    = "PROCLOG_REPORT_LOG_FILE"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	t := analyzer.DefaultThresholds()
	return &Config{
		LogSources: []string{},
		Thresholds: ThresholdsConfig{
			Warning: t.Warning,
			Error:   t.Error,
		},
		Report: ReportConfig{
			LogFormat: DefaultReportLogFormat,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() error {
	if v := os.Getenv(EnvLogSources); v != "" {
		var sources []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				sources = append(sources, s)
			}
		}
		c.LogSources = sources
	}

	if v := os.Getenv(EnvWarningThreshold); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWarningThreshold, err)
		}
		c.Thresholds.Warning = d
	}

	if v := os.Getenv(EnvErrorThreshold); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvErrorThreshold, err)
		}
		c.Thresholds.Error = d
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}

	if v := os.Getenv(EnvReportLogFile); v != "" {
		c.Report.LogFile = v
	}

	return nil
}
