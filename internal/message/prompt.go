package message

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const truncationMarker = "\n... (diff truncated)"

// FileDiff is one changed file's diff as sent to the model.
type FileDiff struct {
	Path string
	Diff string
}

// PromptOptions are the settings that shape the prompt text.
type PromptOptions struct {
	UseEmojis           bool
	UseConsistentEmojis bool
	CustomInstructions  string
}

// TruncateDiff cuts diffs longer than max runes and appends a marker.
func TruncateDiff(diff string, max int) string {
	if utf8.RuneCountInString(diff) <= max {
		return diff
	}
	return string([]rune(diff)[:max]) + truncationMarker
}

// BuildPrompt assembles the request: formatting rules, the per-file diffs,
// a footer counting the files left out, and the expected reply format.
func BuildPrompt(diffs []FileDiff, overflow int, opts PromptOptions) string {
	var sb strings.Builder

	sb.WriteString("Create a Git commit message with title and body.\n\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("- Title: Max 50 chars, starts with verb (Update/Fix/Add)\n")
	sb.WriteString("- Body: 2-3 sentences explaining what changed and why\n")
	if opts.UseEmojis && !opts.UseConsistentEmojis {
		sb.WriteString("- Start title with relevant emoji\n")
	}
	for _, line := range strings.Split(opts.CustomInstructions, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			sb.WriteString("- " + line + "\n")
		}
	}

	sections := make([]string, 0, len(diffs)+1)
	for _, d := range diffs {
		sections = append(sections, fmt.Sprintf("## %s\n---\n%s", d.Path, d.Diff))
	}
	if overflow > 0 {
		sections = append(sections, fmt.Sprintf("... and %d more file(s) changed", overflow))
	}

	sb.WriteString("\nChanges:\n")
	sb.WriteString(strings.Join(sections, "\n\n"))
	sb.WriteString("\n\nResponse format:\n")
	sb.WriteString("TITLE: [your title here]\n")
	sb.WriteString("BODY: [your body here]")

	return sb.String()
}
