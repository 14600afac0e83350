package message

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxTitleLength is the longest title, in runes, a generated message keeps.
const MaxTitleLength = 50

const ellipsis = "..."

// Parts is a commit message split into title and body. Body may be empty.
type Parts struct {
	Title string
	Body  string
}

// String joins title and body the way git expects.
func (p Parts) String() string {
	if p.Body == "" {
		return p.Title
	}
	return p.Title + "\n\n" + p.Body
}

// strategy extracts Parts from a model reply, reporting false when the
// reply is not in the shape it understands.
type strategy struct {
	name  string
	parse func(reply string) (Parts, bool)
}

var (
	titleLine   = regexp.MustCompile(`(?i)TITLE:\s*(.+?)(?:\n|$)`)
	bodyBlock   = regexp.MustCompile(`(?i)BODY:\s*([\s\S]+?)(?:\n\n|$)`)
	paragraphs  = regexp.MustCompile(`\n\n+`)
	titlePrefix = regexp.MustCompile(`(?i)^TITLE:\s*`)
	bodyPrefix  = regexp.MustCompile(`(?i)^BODY:\s*`)
)

// strategies run in order; the first that succeeds wins. The last one
// always succeeds, though its title may be empty.
var strategies = []strategy{
	{name: "labelled", parse: parseLabelled},
	{name: "paragraphs", parse: parseParagraphs},
	{name: "first-line", parse: parseFirstLine},
}

// parseLabelled needs both a TITLE: line and a BODY: block.
func parseLabelled(reply string) (Parts, bool) {
	title := titleLine.FindStringSubmatch(reply)
	body := bodyBlock.FindStringSubmatch(reply)
	if title == nil || body == nil {
		return Parts{}, false
	}
	return Parts{
		Title: strings.TrimSpace(title[1]),
		Body:  strings.TrimSpace(body[1]),
	}, true
}

// parseParagraphs treats the first two blank-line separated blocks as title
// and body, dropping any labels.
func parseParagraphs(reply string) (Parts, bool) {
	parts := paragraphs.Split(reply, -1)
	if len(parts) < 2 {
		return Parts{}, false
	}
	first, second := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	return Parts{
		Title: strings.TrimSpace(titlePrefix.ReplaceAllString(first, "")),
		Body:  strings.TrimSpace(bodyPrefix.ReplaceAllString(second, "")),
	}, true
}

// parseFirstLine keeps only the first line as the title; the body is
// discarded.
func parseFirstLine(reply string) (Parts, bool) {
	rest := strings.TrimSpace(titlePrefix.ReplaceAllString(reply, ""))
	title, _, _ := strings.Cut(rest, "\n")
	return Parts{Title: title}, true
}

// Parse runs the strategies over reply and returns the first result along
// with the name of the strategy that produced it.
func Parse(reply string) (Parts, string) {
	for _, s := range strategies {
		if p, ok := s.parse(reply); ok {
			return p, s.name
		}
	}
	return Parts{}, ""
}

// TruncateTitle shortens titles over MaxTitleLength runes to exactly
// MaxTitleLength runes ending in an ellipsis.
func TruncateTitle(title string) string {
	if utf8.RuneCountInString(title) <= MaxTitleLength {
		return title
	}
	runes := []rune(title)
	return string(runes[:MaxTitleLength-len(ellipsis)]) + ellipsis
}
