package message

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CommitType is a conventional commit category used to pick an emoji.
type CommitType string

// DefaultType is used when no keyword matches.
const DefaultType CommitType = "default"

// commitEmojis is scanned in order; the first keyword contained in the
// lower-cased title wins.
var commitEmojis = []struct {
	Type  CommitType
	Emoji string
}{
	{"feat", "✨"},
	{"fix", "🐛"},
	{"docs", "📝"},
	{"style", "💄"},
	{"refactor", "♻️"},
	{"perf", "⚡️"},
	{"test", "✅"},
	{"build", "👷"},
	{"ci", "💚"},
	{"chore", "🔧"},
	{"update", "🔄"},
	{"add", "➕"},
	{"remove", "➖"},
	{"move", "🚚"},
	{"rename", "🏷️"},
	{"security", "🔒"},
	{"ui", "🎨"},
	{"init", "🎉"},
	{"config", "🔧"},
	{"wip", "🚧"},
	{DefaultType, "📦"},
}

// synonyms map action words that are not commit types themselves.
var synonyms = []struct {
	Word string
	Type CommitType
}{
	{"improve", "refactor"},
}

// Classify picks the commit type for title.
func Classify(title string) CommitType {
	lower := strings.ToLower(title)
	for _, e := range commitEmojis {
		if strings.Contains(lower, string(e.Type)) {
			return e.Type
		}
	}
	for _, s := range synonyms {
		if strings.Contains(lower, s.Word) {
			return s.Type
		}
	}
	return DefaultType
}

// EmojiFor returns the emoji of a commit type.
func EmojiFor(t CommitType) string {
	for _, e := range commitEmojis {
		if e.Type == t {
			return e.Emoji
		}
	}
	return EmojiFor(DefaultType)
}

// emojiTable covers the pictographic blocks plus the scattered symbols that
// render as emoji. ASCII digits, '#' and '*' are deliberately absent.
var emojiTable = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x00A9, Hi: 0x00A9, Stride: 1},
		{Lo: 0x00AE, Hi: 0x00AE, Stride: 1},
		{Lo: 0x203C, Hi: 0x203C, Stride: 1},
		{Lo: 0x2049, Hi: 0x2049, Stride: 1},
		{Lo: 0x2122, Hi: 0x2122, Stride: 1},
		{Lo: 0x2139, Hi: 0x2139, Stride: 1},
		{Lo: 0x2194, Hi: 0x2199, Stride: 1},
		{Lo: 0x21A9, Hi: 0x21AA, Stride: 1},
		{Lo: 0x231A, Hi: 0x231B, Stride: 1},
		{Lo: 0x2328, Hi: 0x2328, Stride: 1},
		{Lo: 0x23CF, Hi: 0x23CF, Stride: 1},
		{Lo: 0x23E9, Hi: 0x23F3, Stride: 1},
		{Lo: 0x23F8, Hi: 0x23FA, Stride: 1},
		{Lo: 0x24C2, Hi: 0x24C2, Stride: 1},
		{Lo: 0x25AA, Hi: 0x25AB, Stride: 1},
		{Lo: 0x25B6, Hi: 0x25B6, Stride: 1},
		{Lo: 0x25C0, Hi: 0x25C0, Stride: 1},
		{Lo: 0x25FB, Hi: 0x25FE, Stride: 1},
		{Lo: 0x2600, Hi: 0x27BF, Stride: 1},
		{Lo: 0x2934, Hi: 0x2935, Stride: 1},
		{Lo: 0x2B05, Hi: 0x2B07, Stride: 1},
		{Lo: 0x2B1B, Hi: 0x2B1C, Stride: 1},
		{Lo: 0x2B50, Hi: 0x2B50, Stride: 1},
		{Lo: 0x2B55, Hi: 0x2B55, Stride: 1},
		{Lo: 0x3030, Hi: 0x3030, Stride: 1},
		{Lo: 0x303D, Hi: 0x303D, Stride: 1},
		{Lo: 0x3297, Hi: 0x3297, Stride: 1},
		{Lo: 0x3299, Hi: 0x3299, Stride: 1},
		{Lo: 0xFE0F, Hi: 0xFE0F, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1F000, Hi: 0x1FAFF, Stride: 1},
	},
	LatinOffset: 2,
}

// StartsWithEmoji reports whether the first rune of s is an emoji glyph.
func StartsWithEmoji(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return false
	}
	return unicode.Is(emojiTable, r)
}

// Decorate prefixes title with the emoji of its commit type unless it
// already starts with one.
func Decorate(title string) string {
	if StartsWithEmoji(title) {
		return title
	}
	return EmojiFor(Classify(title)) + " " + title
}
