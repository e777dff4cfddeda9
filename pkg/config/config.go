package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/lestrrat-go/strftime"
	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/proclog/pkg/analyzer"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report field paths with their YAML names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// Load reads and validates a configuration file.
// An empty path yields the defaults, still subject to environment overrides.
func Load(_ context.Context, path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := LoadEnvFile(DefaultEnvFile); err != nil {
		return nil, err
	}

	if err := cfg.applyEnvironmentOverrides(); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadEnvFile loads variables from a dotenv file if it exists.
// Variables already present in the environment are left untouched.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Validate checks a configuration for errors and fills in webhook defaults.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if err := analyzer.ValidateThresholds(cfg.Thresholds.Analyzer()); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}

	for i, src := range cfg.LogSources {
		if strings.TrimSpace(src) == "" {
			return fmt.Errorf("log_sources[%d]: empty path", i)
		}
	}

	if cfg.Report.LogFile != "" {
		if _, err := strftime.New(cfg.Report.LogFile); err != nil {
			return fmt.Errorf("report.log_file: invalid strftime pattern: %w", err)
		}
	}

	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

// formatValidationError turns validator output into "field: problem" messages.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		// Drop the root struct name: "Config.logging.level" -> "logging.level".
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}

		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s: is required", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s: %q must be one of [%s]", field, fe.Value(), fe.Param()))
		case "gt", "gte":
			msgs = append(msgs, fmt.Sprintf("%s: must be positive", field))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s: invalid url %q", field, fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s: failed %s validation", field, fe.Tag()))
		}
	}

	return errors.New(strings.Join(msgs, "; "))
}

func validateWebhook(wh *WebhookConfig) error {
	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	wh.Token = expandEnvVar(wh.Token)

	if wh.Trigger == "" {
		wh.Trigger = WebhookTriggerOnIssues
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands a token written as ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}

	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		return os.Getenv(s[1:])
	}

	return s
}
