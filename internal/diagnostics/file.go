package diagnostics

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/bashhack/gitdoc/internal/errors"
)

// FileTable reads diagnostics from a JSON file written by an editor
// integration or a lint run. Two shapes are accepted:
//
//	[{"path": "docs/a.md", "diagnostics": [{"severity": "error", "message": "..."}]}]
//	{"docs/a.md": [{"severity": 1}]}
//
// Severities are LSP numbers or their names. Relative paths resolve against
// BaseDir. A missing file is an empty table.
type FileTable struct {
	Path    string
	BaseDir string
}

// NewFileTable returns a table reading path, resolving entries against baseDir.
func NewFileTable(path, baseDir string) *FileTable {
	return &FileTable{Path: path, BaseDir: baseDir}
}

// All re-reads the file.
func (t *FileTable) All(ctx context.Context) ([]FileDiagnostics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(t.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read diagnostics from %s", t.Path)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(data) {
		return nil, errors.Errorf("diagnostics file %s is not valid JSON", t.Path)
	}

	root := gjson.ParseBytes(data)
	var out []FileDiagnostics

	switch {
	case root.IsArray():
		root.ForEach(func(_, entry gjson.Result) bool {
			out = append(out, FileDiagnostics{
				Path:        t.resolve(entry.Get("path").String()),
				Diagnostics: parseDiagnostics(entry.Get("diagnostics")),
			})
			return true
		})
	case root.IsObject():
		root.ForEach(func(key, list gjson.Result) bool {
			out = append(out, FileDiagnostics{
				Path:        t.resolve(key.String()),
				Diagnostics: parseDiagnostics(list),
			})
			return true
		})
	default:
		return nil, errors.Errorf("diagnostics file %s must hold an array or an object", t.Path)
	}

	return out, nil
}

func (t *FileTable) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(t.BaseDir, filepath.FromSlash(p))
}

func parseDiagnostics(list gjson.Result) []Diagnostic {
	var out []Diagnostic
	list.ForEach(func(_, d gjson.Result) bool {
		out = append(out, Diagnostic{
			Severity: parseSeverity(d.Get("severity")),
			Message:  d.Get("message").String(),
		})
		return true
	})
	return out
}

func parseSeverity(v gjson.Result) Severity {
	if v.Type == gjson.Number {
		return Severity(v.Int())
	}
	switch strings.ToLower(v.String()) {
	case "error":
		return SeverityError
	case "warning", "warn":
		return SeverityWarning
	case "information", "info":
		return SeverityInformation
	case "hint":
		return SeverityHint
	default:
		return 0
	}
}
