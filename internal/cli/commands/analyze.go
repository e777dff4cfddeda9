package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ccollicutt/proclog/internal/logging"
	"github.com/ccollicutt/proclog/pkg/analyzer"
	"github.com/ccollicutt/proclog/pkg/config"
	"github.com/ccollicutt/proclog/pkg/metrics"
	"github.com/ccollicutt/proclog/pkg/output"
	"github.com/ccollicutt/proclog/pkg/parser"
	"github.com/ccollicutt/proclog/pkg/webhook"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// AnalyzeOptions holds command-line options for the analyze command.
type AnalyzeOptions struct {
	ConfigFile string
	Output     string
	Verbose    bool
	Quiet      bool

	// Zero means "use the configured threshold".
	Warning time.Duration
	Error   time.Duration

	ReportLog   string
	MetricsFile string
	LogLevel    string

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [log-file ...]",
		Short: "Report long-running processes in activity logs",
		Long: `Analyze CSV process activity logs and flag processes that ran too long.

Each line is HH:MM:SS,description,START|END,pid. Every END is paired with the
most recent START of the same pid. Processes running longer than the warning
threshold (default 5m) are reported as WARNING, longer than the error
threshold (default 10m) as ERROR.

Log files given as arguments replace log_sources from the config file.

Exit codes:
  0 - No long-running processes
  1 - At least one process flagged
  2 - Configuration, input or parse error`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show pending processes and run details")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")
	cmd.Flags().DurationVar(&opts.Warning, "warning", 0, "Warning threshold (overrides config)")
	cmd.Flags().DurationVar(&opts.Error, "error", 0, "Error threshold (overrides config)")
	cmd.Flags().StringVar(&opts.ReportLog, "report-log", "", "Findings log path, strftime pattern (overrides config)")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Prometheus textfile output path (overrides config)")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "on_issues", "When to fire webhook (on_issues|always|never)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts *AnalyzeOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	started := time.Now()

	cfg, err := config.Load(ctx, opts.ConfigFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := applyFlagOverrides(cfg, args, opts); err != nil {
		return err
	}

	logLevel := cfg.Logging.Level
	if opts.LogLevel != "" {
		logLevel = opts.LogLevel
	}
	logger, err := logging.New(logLevel, cfg.Logging.Format, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	// Create formatter before doing any work so a bad --output fails fast.
	formatter, err := createFormatter(cmd, opts)
	if err != nil {
		return err
	}

	files, err := parser.ExpandGlobs(cfg.LogSources)
	if err != nil {
		return fmt.Errorf("expanding log sources: %w", err)
	}
	if len(files) == 0 {
		return parser.ErrNoInput
	}

	thresholds := cfg.Thresholds.Analyzer()
	gen := analyzer.NewGenerator(analyzer.WithThresholds(thresholds))

	results := make([]*output.FileResult, 0, len(files))
	for _, file := range files {
		result, err := analyzeFile(ctx, gen, file)
		if err != nil {
			return err
		}
		logger.Debug("analyzed log",
			zap.String("source", file),
			zap.Int("started", result.Report.ProcessesStarted),
			zap.Int("completed", result.Report.ProcessesCompleted),
			zap.Int("flagged", len(result.Report.Flagged)),
		)
		results = append(results, result)
	}

	report := output.NewReport(results, output.Metadata{
		RunID:      output.NewRunID(),
		ConfigFile: opts.ConfigFile,
		Sources:    files,
		Thresholds: thresholds,
		AnalyzedAt: started,
		Duration:   time.Since(started),
	})

	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if err := writeSinks(cfg, report, logger); err != nil {
		return err
	}

	// Send webhooks (errors logged but don't fail analysis)
	sendWebhooks(ctx, cfg, opts, report, logger)

	if report.HasIssues() {
		ExitCode = 1
	}

	return nil
}

// applyFlagOverrides layers command-line values over the loaded config.
func applyFlagOverrides(cfg *config.Config, args []string, opts *AnalyzeOptions) error {
	if len(args) > 0 {
		cfg.LogSources = args
	}
	if opts.Warning != 0 {
		cfg.Thresholds.Warning = opts.Warning
	}
	if opts.Error != 0 {
		cfg.Thresholds.Error = opts.Error
	}
	if err := analyzer.ValidateThresholds(cfg.Thresholds.Analyzer()); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}
	switch config.WebhookTrigger(opts.WebhookTrigger) {
	case "", config.WebhookTriggerOnIssues, config.WebhookTriggerAlways, config.WebhookTriggerNever:
	default:
		return fmt.Errorf("--webhook-trigger: %q must be one of [on_issues always never]", opts.WebhookTrigger)
	}
	if opts.ReportLog != "" {
		cfg.Report.LogFile = opts.ReportLog
	}
	if opts.MetricsFile != "" {
		cfg.Report.MetricsFile = opts.MetricsFile
	}
	return nil
}

func analyzeFile(ctx context.Context, gen *analyzer.Generator, path string) (*output.FileResult, error) {
	raw, err := parser.ReadLog(ctx, path)
	if err != nil {
		return nil, err
	}

	rows, err := parser.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	r, err := gen.Generate(rows)
	if err != nil {
		return nil, fmt.Errorf("generating report for %s: %w", path, err)
	}

	return &output.FileResult{Source: path, Report: r}, nil
}

// writeSinks persists the report to the findings log and metrics textfile when configured.
func writeSinks(cfg *config.Config, report *output.Report, logger *zap.Logger) error {
	if cfg.Report.LogFile != "" {
		path, err := output.WriteFindingsLog(cfg.Report.LogFile, cfg.Report.LogFormat, report)
		if err != nil {
			return fmt.Errorf("writing findings log: %w", err)
		}
		logger.Info("findings log written", zap.String("path", path), zap.String("run_id", report.Metadata.RunID))
	}

	if cfg.Report.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.Report.MetricsFile, report); err != nil {
			return err
		}
		logger.Info("metrics written", zap.String("path", cfg.Report.MetricsFile))
	}

	return nil
}

func createFormatter(cmd *cobra.Command, opts *AnalyzeOptions) (output.Formatter, error) {
	formatOpts := output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
		Color:   output.IsTerminal(cmd.OutOrStdout()),
	}

	switch opts.Output {
	case "text":
		return output.NewTextFormatter(formatOpts), nil
	case "json":
		return output.NewJSONFormatter(formatOpts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
}

// sendWebhooks sends the report to all configured webhooks.
func sendWebhooks(ctx context.Context, cfg *config.Config, opts *AnalyzeOptions, report *output.Report, logger *zap.Logger) {
	webhooks := collectWebhooks(cfg, opts)
	if len(webhooks) == 0 {
		return
	}

	client := webhook.NewClient(Version)

	for _, wh := range webhooks {
		if !shouldFireWebhook(wh.Trigger, report.HasIssues()) {
			continue
		}

		resp := client.Send(ctx, report, webhook.SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
		})

		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		if resp.Success() {
			logger.Info("webhook sent",
				zap.String("webhook", name),
				zap.Int("status", resp.StatusCode),
				zap.Duration("duration", resp.Duration),
			)
		} else {
			logger.Warn("webhook failed", zap.String("webhook", name), zap.Error(resp.Error))
		}
	}
}

// collectWebhooks merges config file webhooks with CLI webhook.
func collectWebhooks(cfg *config.Config, opts *AnalyzeOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		if trigger == "" {
			trigger = config.WebhookTriggerOnIssues
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}

// shouldFireWebhook determines if a webhook should fire based on trigger and issues.
func shouldFireWebhook(trigger config.WebhookTrigger, hasIssues bool) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	default:
		return hasIssues
	}
}
