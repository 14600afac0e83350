package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bashhack/gitdoc/internal/errors"
)

func TestMatch(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		pattern  string
		path     string
		expected bool
	}{
		"EverythingTopLevel":   {"**/*", "README.md", true},
		"EverythingNested":     {"**/*", "docs/guide/intro.md", true},
		"DotFile":              {"**/*", ".env", true},
		"DotDirectory":         {"**/*", ".github/workflows/ci.yml", true},
		"ExtensionNested":      {"**/*.md", "notes/2024/jan.md", true},
		"ExtensionMismatch":    {"**/*.md", "main.go", false},
		"SingleStarStaysLocal": {"*.md", "docs/a.md", false},
		"Directory":            {"docs/**", "docs/a/b.txt", true},
		"DirectoryMismatch":    {"docs/**", "src/a.txt", false},
		"Braces":               {"**/*.{md,txt}", "a/b.txt", true},
		"LeadingDotSlash":      {"./docs/*.md", "docs/a.md", true},
		"UncleanPath":          {"docs/*.md", "./docs/a.md", true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			m, err := New(tc.pattern)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, m.Match(tc.path))
		})
	}
}

func TestNewRejectsInvalidPatterns(t *testing.T) {
	t.Parallel()

	for _, pattern := range []string{"", "docs/[a-", "{a,b"} {
		_, err := New(pattern)
		require.Error(t, err, pattern)
		assert.True(t, errors.Is(err, errors.ErrInvalidConfiguration))
	}
}

func TestFilterKeepsOrder(t *testing.T) {
	t.Parallel()

	m, err := New("**/*.md")
	require.NoError(t, err)

	got := m.Filter([]string{"z.md", "main.go", "a/b.md", "c.txt"})
	assert.Equal(t, []string{"z.md", "a/b.md"}, got)
	assert.Empty(t, m.Filter(nil))
}
