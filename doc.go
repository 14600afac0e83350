// Package gitdoc turns a git repository into a self-saving document store
//
// gitdoc watches a working tree and commits edits once they have been quiet
// for a short while. It is aimed at notes, drafts and documentation kept in
// git by people who would rather not think about commits at all: every
// pause becomes a version, versions are pushed to the remote, and changes
// made elsewhere are pulled back in.
//
// # Quick Start
//
//	# Navigate to your Git repository
//	cd /path/to/your/notes
//
//	# Start watching (commits 30 seconds after the last edit)
//	gitdoc
//
//	# Press Ctrl+C to stop when finished
//
// # Key Features
//
//   - Debounced Commits: One commit per burst of edits, limited to files matching a glob
//   - Commit Messages: A date/time template, or a summary written by a language model
//   - Diagnostics Gate: Commits are held back while changed files have errors
//   - Sync: Push and pull on commit, on an interval, or when watching starts
//   - Version Commands: Restore a file, squash versions or undo one
//
// # Module Structure
//
// The module is organized into these packages:
//
//   - cmd/gitdoc: Command-line interface
//   - internal/config: Settings, the .gitdoc.toml store and flag/env overlays
//   - internal/git: Repository access, change sets and worktree watching
//   - internal/watcher: Debounced commit orchestration and version commands
//   - internal/message: Template and AI commit messages
//   - internal/llm: Language model backends and the model registry
//   - internal/diagnostics: The commit validation gate
//   - internal/syncer: Push and pull scheduling
//   - internal/status: Shared status flags and the status line
//   - internal/match: File pattern matching
//   - internal/lock: One watch session per repository
//   - internal/logger: Logging facilities
//   - internal/errors: Error handling utilities
//
// # Common Configuration Options
//
//	# Commit ten seconds after the last edit
//	gitdoc --auto-commit-delay 10000
//
//	# Only version Markdown files
//	gitdoc --file-pattern '**/*.md'
//
//	# Let a model write the messages
//	OPENAI_API_KEY=... gitdoc --ai-enabled --ai-model gpt-4o
//
//	# Never talk to the remote
//	gitdoc --auto-push none --auto-pull none
//
// # Implementation Notes
//
// Reads (status, diffs, history) go through go-git. Writes go through the
// git executable so that hooks, credentials and signing behave exactly as
// they do on the command line.
//
// The application handles signals (SIGINT, SIGTERM and SIGHUP) so that a
// pending commit is dropped cleanly and the session lock is released.
package gitdoc
