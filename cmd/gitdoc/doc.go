// Package main implements gitdoc, a git repository that commits itself
//
// gitdoc watches a working tree and, once edits have settled for a moment,
// commits them. Commit messages come from a date/time template or, when
// enabled, from a language model that reads the diffs. Each commit can be
// followed by a push and a pull, and pushes and pulls can also run on a
// fixed interval. The result is a fine-grained history of a document
// repository without anyone having to remember to commit.
//
// # Features
//
//   - Debounced auto-commit of files matching a glob (default: everything)
//   - Commit messages from a date/time template in a configurable time zone
//   - Optional AI-written messages through OpenAI, Anthropic or Gemini
//   - Commits vetoed while changed files carry error or warning diagnostics
//   - Push and pull on commit, on an interval, or when the session starts
//   - Force push offered (once) when the remote rejects a push
//   - Version commands to restore a file, squash or undo versions
//   - One watch session per repository, enforced with a file lock
//
// # Basic Usage
//
//	gitdoc                       # Watch the current repository
//	gitdoc -C ~/notes            # Watch another repository
//	gitdoc --auto-push none      # Commit locally only
//	gitdoc disable               # Pause auto-commit (persists to .gitdoc.toml)
//	gitdoc log notes/today.md    # List the versions of one file
//	gitdoc restore 1a2b3c4 notes/today.md
//	gitdoc squash 1a2b3c4 -m "Draft chapter one"
//	gitdoc undo 1a2b3c4
//
// # Configuration
//
// Every setting can be written to .gitdoc.toml in the repository root, set
// through a GITDOC_* environment variable, or passed as a flag, in
// increasing order of precedence:
//
//	enabled                  --enabled                  GITDOC_ENABLED
//	file_pattern             --file-pattern             GITDOC_FILE_PATTERN
//	commit_message_format    --commit-message-format    GITDOC_COMMIT_MESSAGE_FORMAT
//	commit_validation_level  --commit-validation-level  GITDOC_COMMIT_VALIDATION_LEVEL
//	auto_commit_delay        --auto-commit-delay        GITDOC_AUTO_COMMIT_DELAY
//	auto_push                --auto-push                GITDOC_AUTO_PUSH
//	auto_pull                --auto-pull                GITDOC_AUTO_PULL
//	push_mode                --push-mode                GITDOC_PUSH_MODE
//	ai_enabled               --ai-enabled               GITDOC_AI_ENABLED
//	ai_model                 --ai-model                 GITDOC_AI_MODEL
//
// Run gitdoc --help for the full list. The settings file is re-read while
// watching, so edits to it apply to the next commit.
//
// API keys are read from OPENAI_API_KEY, ANTHROPIC_API_KEY and
// GEMINI_API_KEY. Without a key for the configured model's vendor, commits
// fall back to the template message.
package main
