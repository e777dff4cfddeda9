// Package output provides formatting and persistence of analysis reports.
package output

import (
	"fmt"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/ccollicutt/proclog/pkg/analyzer"
)

// Report is the complete output of one run over one or more log files.
type Report struct {
	// Summary provides aggregate statistics.
	Summary Summary `json:"summary"`

	// Results holds one report per analyzed file, in analysis order.
	Results []*FileResult `json:"results"`

	// Metadata provides context about the run.
	Metadata Metadata `json:"metadata"`
}

// FileResult is the generator report for a single log file.
type FileResult struct {
	Source string           `json:"source"`
	Report *analyzer.Report `json:"report"`
}

// Summary provides aggregate statistics across all files.
type Summary struct {
	Files              int `json:"files"`
	ProcessesStarted   int `json:"processes_started"`
	ProcessesCompleted int `json:"processes_completed"`
	Pending            int `json:"pending"`
	Warnings           int `json:"warnings"`
	Errors             int `json:"errors"`
}

// Metadata provides context about the run.
type Metadata struct {
	// RunID correlates the formatted report, findings log, metrics and webhook.
	RunID string `json:"run_id"`

	ConfigFile string              `json:"config_file,omitempty"`
	Sources    []string            `json:"sources"`
	Thresholds analyzer.Thresholds `json:"thresholds"`
	AnalyzedAt time.Time           `json:"analyzed_at"`
	Duration   time.Duration       `json:"duration"`
}

// SourcedFinding is a finding tagged with the file it came from.
type SourcedFinding struct {
	Source string `json:"source"`
	analyzer.Finding
}

// NewRunID returns a short unique identifier for a run.
func NewRunID() string {
	return shortuuid.New()
}

// NewReport builds a report and its summary from per-file results.
func NewReport(results []*FileResult, meta Metadata) *Report {
	report := &Report{
		Results:  results,
		Metadata: meta,
	}

	if report.Results == nil {
		report.Results = []*FileResult{}
	}

	report.Summary.Files = len(results)
	for _, r := range results {
		report.Summary.ProcessesStarted += r.Report.ProcessesStarted
		report.Summary.ProcessesCompleted += r.Report.ProcessesCompleted
		report.Summary.Pending += len(r.Report.Pending)
		report.Summary.Warnings += r.Report.Count(analyzer.SeverityWarning)
		report.Summary.Errors += r.Report.Count(analyzer.SeverityError)
	}

	return report
}

// HasIssues returns true if any process was flagged.
func (r *Report) HasIssues() bool {
	return r.Summary.Warnings+r.Summary.Errors > 0
}

// Findings returns every finding in file order, then row order.
func (r *Report) Findings() []SourcedFinding {
	findings := []SourcedFinding{}
	for _, res := range r.Results {
		for _, f := range res.Report.Flagged {
			findings = append(findings, SourcedFinding{Source: res.Source, Finding: f})
		}
	}
	return findings
}

// Line renders the one-line human-readable summary.
func (s Summary) Line() string {
	return fmt.Sprintf("%d file(s), %d started, %d completed, %d warning(s), %d error(s)",
		s.Files, s.ProcessesStarted, s.ProcessesCompleted, s.Warnings, s.Errors)
}
