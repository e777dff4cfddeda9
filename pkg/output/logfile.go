package output

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lestrrat-go/strftime"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ccollicutt/proclog/internal/logging"
	"github.com/ccollicutt/proclog/pkg/analyzer"
)

// FindingsLogPath renders a strftime pattern such as "proclog-%Y%m%d.log" at t.
func FindingsLogPath(pattern string, t time.Time) (string, error) {
	path, err := strftime.Format(pattern, t)
	if err != nil {
		return "", fmt.Errorf("rendering findings log path %q: %w", pattern, err)
	}
	return path, nil
}

// WriteFindingsLog appends one WARN or ERROR entry per finding to the file named
// by pattern, followed by an INFO summary entry. format is "json" or "console".
// It returns the rendered path.
func WriteFindingsLog(pattern, format string, report *Report) (string, error) {
	at := report.Metadata.AnalyzedAt
	if at.IsZero() {
		at = time.Now()
	}

	path, err := FindingsLogPath(pattern, at)
	if err != nil {
		return "", err
	}

	enc, err := logging.NewEncoder(format)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("creating findings log directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644) // #nosec G304 -- path comes from config
	if err != nil {
		return "", fmt.Errorf("opening findings log: %w", err)
	}
	defer f.Close()

	logger := zap.New(zapcore.NewCore(enc, zapcore.AddSync(f), zapcore.InfoLevel)).
		With(zap.String("run_id", report.Metadata.RunID))

	for _, finding := range report.Findings() {
		fields := []zap.Field{
			zap.String("source", finding.Source),
			zap.String("process_id", finding.ProcessID),
			zap.Int64("duration_seconds", finding.DurationSeconds),
		}

		switch finding.Severity {
		case analyzer.SeverityError:
			logger.Error("process exceeded error threshold", fields...)
		default:
			logger.Warn("process exceeded warning threshold", fields...)
		}
	}

	s := report.Summary
	logger.Info("analysis complete",
		zap.Int("files", s.Files),
		zap.Int("processes_started", s.ProcessesStarted),
		zap.Int("processes_completed", s.ProcessesCompleted),
		zap.Int("warnings", s.Warnings),
		zap.Int("errors", s.Errors),
	)

	if err := logger.Sync(); err != nil {
		return "", fmt.Errorf("flushing findings log: %w", err)
	}

	return path, nil
}
