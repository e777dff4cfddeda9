package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/proclog/pkg/analyzer"
	"github.com/ccollicutt/proclog/pkg/config"
	"github.com/ccollicutt/proclog/pkg/parser"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	ConfigFile string
	Verbose    bool
	MaxErrors  int
}

// Diagnostic statuses.
const (
	statusOK      = "ok"
	statusWarning = "warning"
	statusError   = "error"
)

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose [log-file ...]",
		Short: "Check log files and configuration for problems",
		Long: `Check activity logs and configuration without producing a report.

Unlike analyze, which stops at the first bad line, diagnose lists every
malformed line in each file, then checks START/END pairing and reports
processes that never ended.

Example:
  proclog diagnose logs/*.csv
  proclog diagnose -c proclog.yaml -v`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagnose(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Path to configuration file")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output and check webhook reachability")
	cmd.Flags().IntVar(&opts.MaxErrors, "max-errors", 10, "Maximum bad lines listed per file")

	return cmd
}

func runDiagnose(cmd *cobra.Command, args []string, opts *DiagnoseOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ExitCode = 0

	results := []DiagnosticResult{}

	var cfg *config.Config
	if opts.ConfigFile != "" {
		result := checkConfigExists(opts.ConfigFile)
		results = append(results, result)
		if result.Status == statusError {
			return finishDiagnose(cmd.OutOrStdout(), results, opts)
		}

		var parsed DiagnosticResult
		cfg, parsed = checkConfigParseable(ctx, opts.ConfigFile)
		results = append(results, parsed)
		if parsed.Status == statusError {
			return finishDiagnose(cmd.OutOrStdout(), results, opts)
		}
	} else {
		var err error
		cfg, err = config.Load(ctx, "")
		if err != nil {
			results = append(results, DiagnosticResult{
				Check:    "Environment",
				Status:   statusError,
				Message:  fmt.Sprintf("Failed to load settings: %v", err),
				Suggests: []string{"Check PROCLOG_* variables and the .env file"},
			})
			return finishDiagnose(cmd.OutOrStdout(), results, opts)
		}
	}

	if len(args) > 0 {
		cfg.LogSources = args
	}

	sourceResults, files := checkLogSources(cfg)
	results = append(results, sourceResults...)

	gen := analyzer.NewGenerator(analyzer.WithThresholds(cfg.Thresholds.Analyzer()))
	for _, file := range files {
		results = append(results, checkLogFile(ctx, gen, file, opts)...)
	}

	results = append(results, checkWebhooks(ctx, cfg, opts)...)

	return finishDiagnose(cmd.OutOrStdout(), results, opts)
}

func finishDiagnose(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) error {
	if printDiagnostics(w, results, opts) > 0 {
		ExitCode = 1
	}
	return nil
}

func checkConfigExists(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Config File",
	}

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		result.Status = statusError
		result.Message = fmt.Sprintf("Config file not found: %s", path)
		result.Suggests = []string{"Check the file path is correct"}
	case err != nil:
		result.Status = statusError
		result.Message = fmt.Sprintf("Cannot access config file: %v", err)
		result.Suggests = []string{"Check file permissions"}
	case info.IsDir():
		result.Status = statusError
		result.Message = "Path is a directory, not a file"
	default:
		result.Status = statusOK
		result.Message = fmt.Sprintf("Found: %s (%d bytes)", path, info.Size())
	}

	return result
}

func checkConfigParseable(ctx context.Context, path string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Config Syntax",
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		result.Status = statusError
		result.Message = fmt.Sprintf("Failed to load config: %v", err)
		if strings.Contains(err.Error(), "yaml") {
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		}
		return nil, result
	}

	result.Status = statusOK
	result.Message = "Config file loaded successfully"
	result.Details = []string{
		fmt.Sprintf("Log sources: %d", len(cfg.LogSources)),
		fmt.Sprintf("Thresholds: warning > %s, error > %s", cfg.Thresholds.Warning, cfg.Thresholds.Error),
	}
	return cfg, result
}

// checkLogSources expands the sources and returns the readable files among them.
func checkLogSources(cfg *config.Config) ([]DiagnosticResult, []string) {
	if len(cfg.LogSources) == 0 {
		return []DiagnosticResult{{
			Check:   "Log Sources",
			Status:  statusError,
			Message: "No log files given",
			Suggests: []string{
				"Pass log files as arguments",
				"Or add log_sources to your config, e.g. log_sources: [\"logs/**/*.csv\"]",
			},
		}}, nil
	}

	paths, err := parser.ExpandGlobs(cfg.LogSources)
	if err != nil {
		return []DiagnosticResult{{
			Check:   "Log Sources",
			Status:  statusError,
			Message: err.Error(),
		}}, nil
	}

	results := []DiagnosticResult{}
	files := []string{}
	for _, path := range paths {
		result := DiagnosticResult{
			Check: fmt.Sprintf("Log Source: %s", path),
		}

		info, err := os.Stat(path)
		switch {
		case os.IsNotExist(err):
			result.Status = statusError
			result.Message = "File does not exist"
			result.Suggests = []string{"Check the path or glob pattern"}
		case err != nil:
			result.Status = statusError
			result.Message = fmt.Sprintf("Cannot access file: %v", err)
			result.Suggests = []string{"Check file permissions"}
		case info.IsDir():
			result.Status = statusError
			result.Message = "Path is a directory, not a file"
			result.Suggests = []string{"Use a glob pattern, e.g. logs/**/*.csv"}
		case info.Size() == 0:
			result.Status = statusWarning
			result.Message = "File is empty (0 bytes)"
		default:
			result.Status = statusOK
			result.Message = fmt.Sprintf("File exists (%d bytes)", info.Size())
			files = append(files, path)
		}
		results = append(results, result)
	}

	return results, files
}

// checkLogFile reports every malformed line, then the pairing outcome when the file parses.
func checkLogFile(ctx context.Context, gen *analyzer.Generator, path string, opts *DiagnoseOptions) []DiagnosticResult {
	format := DiagnosticResult{
		Check: fmt.Sprintf("Log Format: %s", path),
	}

	raw, err := parser.ReadLog(ctx, path)
	if err != nil {
		format.Status = statusError
		format.Message = err.Error()
		return []DiagnosticResult{format}
	}

	parseErrs, lines := parser.Check(raw)

	if len(parseErrs) > 0 {
		format.Status = statusError
		format.Message = fmt.Sprintf("%d of %d line(s) invalid", len(parseErrs), lines)
		for i, perr := range parseErrs {
			if opts.MaxErrors > 0 && i >= opts.MaxErrors {
				format.Details = append(format.Details, fmt.Sprintf("... and %d more", len(parseErrs)-i))
				break
			}
			format.Details = append(format.Details, perr.Error())
		}
		format.Suggests = []string{"Each line must be HH:MM:SS,description,START|END,pid"}
		return []DiagnosticResult{format}
	}

	format.Status = statusOK
	format.Message = fmt.Sprintf("%d line(s) valid", lines)

	return []DiagnosticResult{format, checkPairing(gen, path, raw)}
}

func checkPairing(gen *analyzer.Generator, path, raw string) DiagnosticResult {
	result := DiagnosticResult{
		Check: fmt.Sprintf("Pairing: %s", path),
	}

	rows, err := parser.Parse(raw)
	if err != nil {
		result.Status = statusError
		result.Message = err.Error()
		return result
	}

	report, err := gen.Generate(rows)
	if err != nil {
		result.Status = statusError
		result.Message = err.Error()
		var gerr *analyzer.GenerationError
		if errors.As(err, &gerr) {
			result.Suggests = []string{
				fmt.Sprintf("Process %s ends at row %d without an earlier START", gerr.ProcessID, gerr.Position),
			}
		}
		return result
	}

	result.Message = fmt.Sprintf("%d started, %d completed, %d flagged",
		report.ProcessesStarted, report.ProcessesCompleted, len(report.Flagged))

	if len(report.Pending) > 0 {
		result.Status = statusWarning
		result.Message += fmt.Sprintf(", %d without END", len(report.Pending))
		for _, p := range report.Pending {
			result.Details = append(result.Details, fmt.Sprintf("pid=%s started at %s (line %d)",
				p.ProcessID, p.StartTime.Format("15:04:05"), p.Position))
		}
		return result
	}

	result.Status = statusOK
	return result
}

func checkWebhooks(ctx context.Context, cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	if len(cfg.Webhooks) == 0 {
		if opts.Verbose {
			results = append(results, DiagnosticResult{
				Check:   "Webhooks",
				Status:  statusOK,
				Message: "No webhooks configured (optional)",
			})
		}
		return results
	}

	for _, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		result := DiagnosticResult{
			Check:   fmt.Sprintf("Webhook: %s", name),
			Status:  statusOK,
			Message: fmt.Sprintf("Trigger: %s", wh.Trigger),
		}
		if opts.Verbose {
			result.Details = []string{
				fmt.Sprintf("URL: %s", wh.URL),
				fmt.Sprintf("Timeout: %s", wh.Timeout),
			}
			if wh.Token != "" {
				result.Details = append(result.Details, "Token: configured")
			}
		}
		results = append(results, result)

		if opts.Verbose {
			conn := checkWebhookConnectivity(ctx, wh)
			conn.Check = fmt.Sprintf("Webhook Connectivity: %s", name)
			results = append(results, conn)
		}
	}

	return results
}

func checkWebhookConnectivity(ctx context.Context, wh config.WebhookConfig) DiagnosticResult {
	result := DiagnosticResult{}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, wh.URL, nil)
	if err != nil {
		result.Status = statusWarning
		result.Message = fmt.Sprintf("Cannot create request: %v", err)
		return result
	}

	if wh.Token != "" {
		req.Header.Set("Authorization", "Bearer "+wh.Token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		result.Status = statusWarning
		result.Message = fmt.Sprintf("Cannot connect: %v", err)
		result.Suggests = []string{
			"Check if the webhook URL is correct",
			"Verify network connectivity",
		}
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.Status = statusOK
		result.Message = fmt.Sprintf("Reachable (status %d)", resp.StatusCode)
	} else {
		result.Status = statusWarning
		result.Message = fmt.Sprintf("Reachable but returned status %d", resp.StatusCode)
		result.Suggests = []string{
			"The endpoint may only accept POST",
			"Check authentication if using a token",
		}
	}

	return result
}

// printDiagnostics writes the results and returns the number of failed checks.
func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) int {
	fmt.Fprintln(w, "=== proclog Diagnostics ===")
	fmt.Fprintln(w)

	okCount, warnCount, errCount := 0, 0, 0

	for _, r := range results {
		var icon string
		switch r.Status {
		case statusOK:
			icon = "PASS"
			okCount++
		case statusWarning:
			icon = "WARN"
			warnCount++
		case statusError:
			icon = "FAIL"
			errCount++
		}

		fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)

		if opts.Verbose || r.Status != statusOK {
			for _, d := range r.Details {
				fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	switch {
	case errCount > 0:
		fmt.Fprintln(w, "\nFix the errors above before running analysis.")
	case warnCount > 0:
		fmt.Fprintln(w, "\nLogs are usable but have warnings.")
	default:
		fmt.Fprintln(w, "\nEverything looks good!")
	}

	return errCount
}
