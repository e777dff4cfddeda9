package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/proclog/pkg/config"
	"github.com/ccollicutt/proclog/pkg/parser"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a proclog configuration file without running analysis.

Checks:
  - YAML syntax
  - Threshold ordering (warning below error)
  - Report log pattern and formats
  - Webhook URLs and triggers
  - Log source file existence (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Log sources: %d pattern(s)\n", len(cfg.LogSources))
	fmt.Fprintf(w, "  Warning:     > %s\n", cfg.Thresholds.Warning)
	fmt.Fprintf(w, "  Error:       > %s\n", cfg.Thresholds.Error)
	if cfg.Report.LogFile != "" {
		fmt.Fprintf(w, "  Report log:  %s (%s)\n", cfg.Report.LogFile, cfg.Report.LogFormat)
	}
	if cfg.Report.MetricsFile != "" {
		fmt.Fprintf(w, "  Metrics:     %s\n", cfg.Report.MetricsFile)
	}
	fmt.Fprintf(w, "  Webhooks:    %d\n", len(cfg.Webhooks))

	if len(cfg.LogSources) == 0 {
		fmt.Fprintf(w, "\nNo log sources configured; pass log files to analyze.\n")
		return nil
	}

	// Check if log sources exist (warnings only)
	files, err := parser.ExpandGlobs(cfg.LogSources)
	if err != nil {
		fmt.Fprintf(w, "\nWarning: Error expanding log source patterns: %v\n", err)
	} else {
		fmt.Fprintf(w, "\nLog files matched: %d\n", len(files))
		for _, f := range files {
			if _, err := os.Stat(f); err != nil {
				fmt.Fprintf(w, "  - %s (not found)\n", f)
				continue
			}
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}

	return nil
}
