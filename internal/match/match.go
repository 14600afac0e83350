// Package match decides which changed paths count toward an auto-commit.
package match

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/bashhack/gitdoc/internal/errors"
)

// Matcher tests repository-relative paths against one glob pattern.
// "**" crosses directory boundaries and dot files are not special.
type Matcher struct {
	pattern string
}

// New compiles pattern. Patterns are validated up front so a typo in the
// settings is reported once instead of silently matching nothing.
func New(pattern string) (*Matcher, error) {
	pattern = strings.TrimPrefix(pattern, "./")
	if pattern == "" || !doublestar.ValidatePattern(pattern) {
		return nil, errors.NewConfigError("file_pattern", pattern,
			errors.Wrap(errors.ErrInvalidConfiguration, "invalid glob pattern"))
	}
	return &Matcher{pattern: pattern}, nil
}

// Pattern returns the compiled pattern.
func (m *Matcher) Pattern() string {
	return m.pattern
}

// Match reports whether the slash-separated relative path p is selected.
func (m *Matcher) Match(p string) bool {
	p = strings.TrimPrefix(path.Clean(p), "./")
	// Pattern was validated in New, so the error is always nil.
	ok, _ := doublestar.Match(m.pattern, p)
	return ok
}

// Filter returns the selected paths in their original order.
func (m *Matcher) Filter(paths []string) []string {
	var out []string
	for _, p := range paths {
		if m.Match(p) {
			out = append(out, p)
		}
	}
	return out
}
