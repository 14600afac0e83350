package config

import (
	"fmt"
	"time"

	"github.com/bashhack/gitdoc/internal/errors"
)

// FileName is the per-repository settings file, read from the worktree root.
const FileName = ".gitdoc.toml"

// Defaults for the settings whose zero value is not meaningful.
const (
	DefaultFilePattern         = "**/*"
	DefaultCommitMessageFormat = "ff"
	DefaultDelayMillis         = 30000
	DefaultAIModel             = "gpt-4o"
	DefaultAIMaxFiles          = 10
	DefaultAIMaxDiffLength     = 2000
)

// ValidationLevel is the diagnostic severity that blocks a commit.
type ValidationLevel string

const (
	ValidationNone    ValidationLevel = "none"
	ValidationError   ValidationLevel = "error"
	ValidationWarning ValidationLevel = "warning"
)

// PushPolicy decides when commits are pushed.
type PushPolicy string

const (
	PushOnCommit   PushPolicy = "onCommit"
	PushAfterDelay PushPolicy = "afterDelay"
	PushNone       PushPolicy = "none"
)

// PullPolicy decides when the remote is pulled.
type PullPolicy string

const (
	PullOnCommit   PullPolicy = "onCommit"
	PullAfterDelay PullPolicy = "afterDelay"
	PullOnOpen     PullPolicy = "onOpen"
	PullNone       PullPolicy = "none"
)

// PushMode selects how hard a push may overwrite the remote.
type PushMode string

const (
	PushModePush               PushMode = "push"
	PushModeForcePush          PushMode = "forcePush"
	PushModeForcePushWithLease PushMode = "forcePushWithLease"
)

// Settings is a point-in-time snapshot of every user-configurable policy.
// Components receive it by value and never hold on to it across evaluations.
type Settings struct {
	Enabled bool `toml:"enabled"`

	// FilePattern selects the changed paths that count toward a commit.
	// Dot files are matched like any other file.
	FilePattern string `toml:"file_pattern"`

	// CommitMessageFormat is a date/time template, e.g. "yyyy-LL-dd HH:mm".
	CommitMessageFormat   string          `toml:"commit_message_format"`
	CommitValidationLevel ValidationLevel `toml:"commit_validation_level"`

	// Delays are in milliseconds.
	AutoCommitDelay int        `toml:"auto_commit_delay"`
	AutoPush        PushPolicy `toml:"auto_push"`
	AutoPushDelay   int        `toml:"auto_push_delay"`
	PushMode        PushMode   `toml:"push_mode"`
	AutoPull        PullPolicy `toml:"auto_pull"`
	AutoPullDelay   int        `toml:"auto_pull_delay"`
	PullOnOpen      bool       `toml:"pull_on_open"`
	PullBeforePush  bool       `toml:"pull_before_push"`
	NoVerify        bool       `toml:"no_verify"`

	// TimeZone is an IANA zone name used to render the commit message
	// template. Empty means the local zone.
	TimeZone string `toml:"time_zone"`

	AIEnabled             bool   `toml:"ai_enabled"`
	AIModel               string `toml:"ai_model"`
	AIMaxFiles            int    `toml:"ai_max_files"`
	AIMaxDiffLength       int    `toml:"ai_max_diff_length"`
	AIUseEmojis           bool   `toml:"ai_use_emojis"`
	AIUseConsistentEmojis bool   `toml:"ai_use_consistent_emojis"`
	AICustomInstructions  string `toml:"ai_custom_instructions"`

	// DiagnosticsFile is a JSON diagnostics table exported by an editor or
	// linter. Empty disables diagnostics, which makes the gate always pass.
	DiagnosticsFile string `toml:"diagnostics_file"`

	Debug   bool   `toml:"debug"`
	LogFile string `toml:"log_file"`
}

// Defaults returns the settings used when nothing else is configured.
func Defaults() Settings {
	return Settings{
		Enabled:               true,
		FilePattern:           DefaultFilePattern,
		CommitMessageFormat:   DefaultCommitMessageFormat,
		CommitValidationLevel: ValidationError,
		AutoCommitDelay:       DefaultDelayMillis,
		AutoPush:              PushOnCommit,
		AutoPushDelay:         DefaultDelayMillis,
		PushMode:              PushModeForcePush,
		AutoPull:              PullNone,
		AutoPullDelay:         DefaultDelayMillis,
		PullOnOpen:            true,
		PullBeforePush:        true,
		AIModel:               DefaultAIModel,
		AIMaxFiles:            DefaultAIMaxFiles,
		AIMaxDiffLength:       DefaultAIMaxDiffLength,
	}
}

// Validate checks enumerations, delays and the time zone.
func (s Settings) Validate() error {
	switch s.CommitValidationLevel {
	case ValidationNone, ValidationError, ValidationWarning:
	default:
		return invalid("commit_validation_level", s.CommitValidationLevel, "must be none, error or warning")
	}

	switch s.AutoPush {
	case PushOnCommit, PushAfterDelay, PushNone:
	default:
		return invalid("auto_push", s.AutoPush, "must be onCommit, afterDelay or none")
	}

	switch s.AutoPull {
	case PullOnCommit, PullAfterDelay, PullOnOpen, PullNone:
	default:
		return invalid("auto_pull", s.AutoPull, "must be onCommit, afterDelay, onOpen or none")
	}

	switch s.PushMode {
	case PushModePush, PushModeForcePush, PushModeForcePushWithLease:
	default:
		return invalid("push_mode", s.PushMode, "must be push, forcePush or forcePushWithLease")
	}

	if s.FilePattern == "" {
		return invalid("file_pattern", s.FilePattern, "must not be empty")
	}
	if s.CommitMessageFormat == "" {
		return invalid("commit_message_format", s.CommitMessageFormat, "must not be empty")
	}
	if s.AutoCommitDelay < 0 {
		return invalid("auto_commit_delay", s.AutoCommitDelay, "must not be negative")
	}
	if s.AutoPush == PushAfterDelay && s.AutoPushDelay <= 0 {
		return invalid("auto_push_delay", s.AutoPushDelay, "must be greater than 0")
	}
	if s.AutoPull == PullAfterDelay && s.AutoPullDelay <= 0 {
		return invalid("auto_pull_delay", s.AutoPullDelay, "must be greater than 0")
	}
	if s.AIMaxFiles <= 0 {
		return invalid("ai_max_files", s.AIMaxFiles, "must be greater than 0")
	}
	if s.AIMaxDiffLength <= 0 {
		return invalid("ai_max_diff_length", s.AIMaxDiffLength, "must be greater than 0")
	}
	if s.TimeZone != "" {
		if _, err := time.LoadLocation(s.TimeZone); err != nil {
			return errors.NewConfigError("time_zone", s.TimeZone, errors.Wrap(errors.ErrInvalidConfiguration, err.Error()))
		}
	}
	return nil
}

func invalid(key string, value any, reason string) error {
	return errors.NewConfigError(key, value, errors.Wrap(errors.ErrInvalidConfiguration, reason))
}

// CommitDelay is the debounce window.
func (s Settings) CommitDelay() time.Duration {
	return time.Duration(s.AutoCommitDelay) * time.Millisecond
}

// PushInterval is the afterDelay push period.
func (s Settings) PushInterval() time.Duration {
	return time.Duration(s.AutoPushDelay) * time.Millisecond
}

// PullInterval is the afterDelay pull period.
func (s Settings) PullInterval() time.Duration {
	return time.Duration(s.AutoPullDelay) * time.Millisecond
}

// ShouldPullOnOpen reports whether a session pulls once when it starts.
func (s Settings) ShouldPullOnOpen() bool {
	return s.PullOnOpen || s.AutoPull == PullOnOpen
}

// Location returns the display zone for commit message templates.
// An unknown zone falls back to local time; Validate reports it earlier.
func (s Settings) Location() *time.Location {
	if s.TimeZone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

// String renders the settings for debug output.
func (s Settings) String() string {
	return fmt.Sprintf("enabled=%t pattern=%q format=%q validation=%s commit_delay=%dms push=%s/%s pull=%s ai=%t model=%s",
		s.Enabled, s.FilePattern, s.CommitMessageFormat, s.CommitValidationLevel, s.AutoCommitDelay,
		s.AutoPush, s.PushMode, s.AutoPull, s.AIEnabled, s.AIModel)
}
