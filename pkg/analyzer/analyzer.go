package analyzer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ccollicutt/proclog/pkg/parser"
)

// Generator builds reports from parsed rows.
// A Generator holds no per-run state and may be reused.
type Generator struct {
	thresholds Thresholds
}

// GeneratorOption configures generator behavior.
type GeneratorOption func(*Generator)

// WithThresholds replaces the default warning and error limits.
func WithThresholds(t Thresholds) GeneratorOption {
	return func(g *Generator) {
		g.thresholds = t
	}
}

// NewGenerator creates a generator. Without options it uses DefaultThresholds.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		thresholds: DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Thresholds returns the limits the generator classifies with.
func (g *Generator) Thresholds() Thresholds {
	return g.thresholds
}

// ValidateThresholds checks that 0 < warning < error.
func ValidateThresholds(t Thresholds) error {
	if t.Warning <= 0 {
		return errors.New("warning threshold must be positive")
	}
	if t.Error <= t.Warning {
		return fmt.Errorf("error threshold %s must be greater than warning threshold %s", t.Error, t.Warning)
	}
	return nil
}

// Generate scans rows with the default thresholds.
func Generate(rows []parser.Row) (*Report, error) {
	return NewGenerator().Generate(rows)
}

// openProcess is the most recent START seen for a process id.
type openProcess struct {
	row      *parser.Row
	position int
	matched  bool
}

// Generate scans rows in order, pairing each END with the latest START for
// the same process id. A later START replaces an earlier one. The first END
// without a START aborts the scan with a *GenerationError.
func (g *Generator) Generate(rows []parser.Row) (*Report, error) {
	report := &Report{
		Flagged: []Finding{},
		Pending: []PendingProcess{},
	}

	open := make(map[string]*openProcess)

	for i := range rows {
		row := &rows[i]
		position := i + 1

		switch row.Status {
		case parser.StatusEnd:
			start, ok := open[row.ProcessID]
			if !ok {
				return nil, &GenerationError{
					Kind:      KindMissingStartLog,
					Position:  position,
					ProcessID: row.ProcessID,
				}
			}
			start.matched = true

			// time.Duration saturates near 292 years; Unix seconds do not.
			seconds := row.Timestamp.Unix() - start.row.Timestamp.Unix()
			if severity, flagged := g.thresholds.Classify(seconds); flagged {
				report.Flagged = append(report.Flagged, Finding{
					ProcessID:       row.ProcessID,
					Severity:        severity,
					DurationSeconds: seconds,
				})
			}

			report.ProcessesCompleted++
		case parser.StatusStart:
			open[row.ProcessID] = &openProcess{row: row, position: position}
			report.ProcessesStarted++
		default:
			// Parse never yields other statuses; hand-built rows are skipped.
		}
	}

	for id, p := range open {
		if p.matched {
			continue
		}
		report.Pending = append(report.Pending, PendingProcess{
			ProcessID:   id,
			Description: p.row.Description,
			StartTime:   p.row.Timestamp,
			Position:    p.position,
		})
	}
	sort.Slice(report.Pending, func(i, j int) bool {
		return report.Pending[i].Position < report.Pending[j].Position
	})

	return report, nil
}
