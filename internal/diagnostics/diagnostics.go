// Package diagnostics holds the editor/linter diagnostics consulted before
// every commit and the gate that vetoes commits touching broken files.
package diagnostics

import (
	"context"
	"path/filepath"

	"github.com/bashhack/gitdoc/internal/config"
)

// Severity follows the LSP numbering: lower is more severe.
type Severity int

const (
	SeverityError       Severity = 1
	SeverityWarning     Severity = 2
	SeverityInformation Severity = 3
	SeverityHint        Severity = 4
)

// String returns the lower-case severity name.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "information"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// Diagnostic is one reported issue. Only the severity matters to the gate.
type Diagnostic struct {
	Severity Severity
	Message  string
}

// FileDiagnostics groups the diagnostics of one file. Path is absolute.
type FileDiagnostics struct {
	Path        string
	Diagnostics []Diagnostic
}

// Table is the current diagnostics state. All is called on every commit
// attempt; implementations must not serve stale results from a cache.
type Table interface {
	All(ctx context.Context) ([]FileDiagnostics, error)
}

// StaticTable is an in-memory Table.
type StaticTable []FileDiagnostics

// All returns the table contents.
func (t StaticTable) All(context.Context) ([]FileDiagnostics, error) {
	return t, nil
}

// Blocks reports whether a diagnostic of severity s vetoes a commit at level.
func Blocks(level config.ValidationLevel, s Severity) bool {
	switch level {
	case config.ValidationError:
		return s == SeverityError
	case config.ValidationWarning:
		return s == SeverityError || s == SeverityWarning
	default:
		return false
	}
}

// Passes applies the validation level to the changed paths. Paths on both
// sides are compared as cleaned absolute paths.
func Passes(level config.ValidationLevel, changed []string, table []FileDiagnostics) bool {
	if level == config.ValidationNone || len(changed) == 0 {
		return true
	}

	set := make(map[string]struct{}, len(changed))
	for _, p := range changed {
		set[normalize(p)] = struct{}{}
	}

	for _, file := range table {
		if _, ok := set[normalize(file.Path)]; !ok {
			continue
		}
		for _, d := range file.Diagnostics {
			if Blocks(level, d.Severity) {
				return false
			}
		}
	}
	return true
}

// Gate reads the table and applies Passes. The table is not consulted at
// level none.
func Gate(ctx context.Context, level config.ValidationLevel, changed []string, table Table) (bool, error) {
	if level == config.ValidationNone || table == nil {
		return true, nil
	}
	all, err := table.All(ctx)
	if err != nil {
		return false, err
	}
	return Passes(level, changed, all), nil
}

func normalize(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
