// Package message resolves the commit message for an auto-commit.
//
// A Resolver returns an explicit message unchanged, renders the date/time
// template (FormatTime, Luxon-style tokens) when AI generation is off, and
// otherwise asks a language model:
//
//   - diffs of the first ai_max_files paths are fetched concurrently and
//     truncated to ai_max_diff_length
//   - BuildPrompt assembles the request
//   - Parse tries the labelled, paragraph and first-line strategies in order
//   - TruncateTitle caps the title at 50 runes and Decorate adds an emoji
//
// Any generation failure degrades to the template message with a warning.
package message
