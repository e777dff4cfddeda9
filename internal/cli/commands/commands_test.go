package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewAnalyzeCommand(t *testing.T) {
	cmd := NewAnalyzeCommand()

	assert.Equal(t, "analyze [log-file ...]", cmd.Use)

	flags := []string{
		"config", "output", "verbose", "quiet", "warning", "error",
		"report-log", "metrics-file", "log-level",
		"webhook-url", "webhook-token", "webhook-trigger",
	}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "missing flag: %s", flag)
	}
	assert.Equal(t, "c", cmd.Flags().Lookup("config").Shorthand)
	assert.Equal(t, "o", cmd.Flags().Lookup("output").Shorthand)
}

func TestNewValidateCommand(t *testing.T) {
	cmd := NewValidateCommand()

	assert.Equal(t, "validate <config-file>", cmd.Use)
	assert.Contains(t, cmd.Long, "Validate")
}

func TestVersionCommand(t *testing.T) {
	cmd := NewVersionCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Equal(t, "proclog "+Version+"\n", buf.String())
}

func TestRunValidate_Success(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := writeFile(t, tmpDir, "jobs.csv", "11:35:23,task,START,1\n")
	configPath := writeFile(t, tmpDir, "config.yaml", `log_sources:
  - `+logPath+`
thresholds:
  warning: 2m
  error: 4m
report:
  log_file: "`+filepath.Join(tmpDir, "proclog-%Y%m%d.log")+`"
`)

	cmd := NewValidateCommand()
	cmd.SetArgs([]string{configPath})
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	require.NoError(t, cmd.ExecuteContext(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "Configuration valid!")
	assert.Contains(t, out, "Warning:     > 2m0s")
	assert.Contains(t, out, "Error:       > 4m0s")
	assert.Contains(t, out, "Log files matched: 1")
	assert.Contains(t, out, logPath)
}

func TestRunValidate_NoSources(t *testing.T) {
	configPath := writeFile(t, t.TempDir(), "config.yaml", "thresholds:\n  warning: 1m\n  error: 2m\n")

	cmd := NewValidateCommand()
	cmd.SetArgs([]string{configPath})
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, buf.String(), "No log sources configured")
}

func TestRunValidate_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "invalid: yaml: content"},
		{"warning above error", "thresholds:\n  warning: 10m\n  error: 5m\n"},
		{"bad log level", "logging:\n  level: verbose\n"},
		{"bad webhook trigger", "webhooks:\n  - url: https://example.com\n    trigger: sometimes\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeFile(t, t.TempDir(), "config.yaml", tt.content)

			cmd := NewValidateCommand()
			cmd.SetArgs([]string{configPath})
			cmd.SetOut(&bytes.Buffer{})

			assert.Error(t, cmd.ExecuteContext(context.Background()))
		})
	}
}

func TestRunValidate_MissingFile(t *testing.T) {
	cmd := NewValidateCommand()
	cmd.SetArgs([]string{"/nonexistent/config.yaml"})
	cmd.SetOut(&bytes.Buffer{})

	assert.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestCreateFormatter(t *testing.T) {
	tests := []struct {
		output  string
		want    string
		wantErr bool
	}{
		{"text", "text", false},
		{"json", "json", false},
		{"invalid", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			cmd := NewAnalyzeCommand()
			cmd.SetOut(&bytes.Buffer{})

			f, err := createFormatter(cmd, &AnalyzeOptions{Output: tt.output})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Name())
		})
	}
}
