package output

import (
	"context"
	"fmt"
	"io"

	"github.com/ccollicutt/proclog/pkg/analyzer"
)

const (
	ansiReset  = "\033[0m"
	ansiYellow = "\033[33m"
	ansiRed    = "\033[31m"
	ansiGray   = "\033[90m"
)

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		_, err := fmt.Fprintf(w, "proclog: %s\n", report.Summary.Line())
		return err
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	fmt.Fprintln(w, "=== proclog Report ===")
	fmt.Fprintln(w)

	for _, result := range report.Results {
		f.formatFileResult(result, w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %s\n", report.Summary.Line())

	if f.opts.Verbose {
		meta := report.Metadata
		fmt.Fprintf(w, "Run: %s\n", meta.RunID)
		fmt.Fprintf(w, "Thresholds: warning > %s, error > %s\n", meta.Thresholds.Warning, meta.Thresholds.Error)
		fmt.Fprintf(w, "Pending: %d\n", report.Summary.Pending)
		fmt.Fprintf(w, "Duration: %s\n", meta.Duration.Round(1e6))
	}

	return nil
}

func (f *TextFormatter) formatFileResult(result *FileResult, w io.Writer) {
	r := result.Report
	fmt.Fprintf(w, "[%s]\n", result.Source)
	fmt.Fprintf(w, "  %d started, %d completed\n", r.ProcessesStarted, r.ProcessesCompleted)

	if !r.HasIssues() {
		fmt.Fprintln(w, "  No long-running processes")
	} else {
		fmt.Fprintf(w, "  Flagged: %d process(es)\n", len(r.Flagged))
		for _, finding := range r.Flagged {
			fmt.Fprintf(w, "  - pid=%s %s %ds\n",
				finding.ProcessID, f.severity(finding.Severity), finding.DurationSeconds)
		}
	}

	if f.opts.Verbose && len(r.Pending) > 0 {
		fmt.Fprintf(w, "  Pending: %d process(es) without END\n", len(r.Pending))
		for _, p := range r.Pending {
			fmt.Fprintf(w, "  %s\n", f.dim(fmt.Sprintf("- pid=%s %q started at %s (line %d)",
				p.ProcessID, p.Description, p.StartTime.Format("15:04:05"), p.Position)))
		}
	}

	fmt.Fprintln(w)
}

func (f *TextFormatter) severity(s analyzer.Severity) string {
	label := fmt.Sprintf("%-7s", s)
	if !f.opts.Color {
		return label
	}

	switch s {
	case analyzer.SeverityError:
		return ansiRed + label + ansiReset
	case analyzer.SeverityWarning:
		return ansiYellow + label + ansiReset
	default:
		return label
	}
}

func (f *TextFormatter) dim(s string) string {
	if !f.opts.Color {
		return s
	}
	return ansiGray + s + ansiReset
}
