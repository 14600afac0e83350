package config

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"

	"github.com/bashhack/gitdoc/internal/errors"
)

// EnvPrefix prefixes every environment override, e.g. GITDOC_AUTO_PUSH.
const EnvPrefix = "GITDOC_"

// field binds one settings key to its struct member. Exactly one of the
// accessors is set.
type field struct {
	key     string
	usage   string
	str     func(*Settings) *string
	boolean func(*Settings) *bool
	integer func(*Settings) *int
}

func (f field) flagName() string {
	return strings.ReplaceAll(f.key, "_", "-")
}

func (f field) envName() string {
	return EnvPrefix + strings.ToUpper(f.key)
}

// copy moves this field's value from src into dst.
func (f field) copy(dst, src *Settings) {
	switch {
	case f.str != nil:
		*f.str(dst) = *f.str(src)
	case f.boolean != nil:
		*f.boolean(dst) = *f.boolean(src)
	case f.integer != nil:
		*f.integer(dst) = *f.integer(src)
	}
}

var fields = []field{
	{key: "enabled", usage: "Auto-commit changes", boolean: func(s *Settings) *bool { return &s.Enabled }},
	{key: "file_pattern", usage: "Glob selecting the files that trigger commits", str: func(s *Settings) *string { return &s.FilePattern }},
	{key: "commit_message_format", usage: "Date/time template for commit messages", str: func(s *Settings) *string { return &s.CommitMessageFormat }},
	{key: "commit_validation_level", usage: "Diagnostic severity that blocks a commit (none, error, warning)", str: func(s *Settings) *string { return (*string)(&s.CommitValidationLevel) }},
	{key: "auto_commit_delay", usage: "Milliseconds of quiet before committing", integer: func(s *Settings) *int { return &s.AutoCommitDelay }},
	{key: "auto_push", usage: "When to push (onCommit, afterDelay, none)", str: func(s *Settings) *string { return (*string)(&s.AutoPush) }},
	{key: "auto_push_delay", usage: "Milliseconds between afterDelay pushes", integer: func(s *Settings) *int { return &s.AutoPushDelay }},
	{key: "push_mode", usage: "Push mode (push, forcePush, forcePushWithLease)", str: func(s *Settings) *string { return (*string)(&s.PushMode) }},
	{key: "auto_pull", usage: "When to pull (onCommit, afterDelay, onOpen, none)", str: func(s *Settings) *string { return (*string)(&s.AutoPull) }},
	{key: "auto_pull_delay", usage: "Milliseconds between afterDelay pulls", integer: func(s *Settings) *int { return &s.AutoPullDelay }},
	{key: "pull_on_open", usage: "Pull once when the session starts", boolean: func(s *Settings) *bool { return &s.PullOnOpen }},
	{key: "pull_before_push", usage: "Pull before every push", boolean: func(s *Settings) *bool { return &s.PullBeforePush }},
	{key: "no_verify", usage: "Skip commit hooks", boolean: func(s *Settings) *bool { return &s.NoVerify }},
	{key: "time_zone", usage: "IANA time zone for commit message templates", str: func(s *Settings) *string { return &s.TimeZone }},
	{key: "ai_enabled", usage: "Generate commit messages with a language model", boolean: func(s *Settings) *bool { return &s.AIEnabled }},
	{key: "ai_model", usage: "Model used for commit messages", str: func(s *Settings) *string { return &s.AIModel }},
	{key: "ai_max_files", usage: "Maximum number of file diffs sent to the model", integer: func(s *Settings) *int { return &s.AIMaxFiles }},
	{key: "ai_max_diff_length", usage: "Maximum characters per file diff", integer: func(s *Settings) *int { return &s.AIMaxDiffLength }},
	{key: "ai_use_emojis", usage: "Prefix generated titles with an emoji", boolean: func(s *Settings) *bool { return &s.AIUseEmojis }},
	{key: "ai_use_consistent_emojis", usage: "Pick the emoji from the commit type instead of the model", boolean: func(s *Settings) *bool { return &s.AIUseConsistentEmojis }},
	{key: "ai_custom_instructions", usage: "Extra instructions appended to the prompt", str: func(s *Settings) *string { return &s.AICustomInstructions }},
	{key: "diagnostics_file", usage: "JSON diagnostics table consulted before committing", str: func(s *Settings) *string { return &s.DiagnosticsFile }},
	{key: "debug", usage: "Enable debug logging", boolean: func(s *Settings) *bool { return &s.Debug }},
	{key: "log_file", usage: "Path to the debug log (default: ~/.local/share/gitdoc/logs/gitdoc-{repo-hash}.log)", str: func(s *Settings) *string { return &s.LogFile }},
}

// LoadFile decodes a TOML settings file over base. A missing file leaves
// base untouched.
func LoadFile(path string, base Settings) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return base, errors.NewConfigError("file", path, errors.Wrap(err, "failed to read settings"))
	}

	s := base
	if err := toml.Unmarshal(data, &s); err != nil {
		return base, errors.NewConfigError("file", path, errors.Wrap(errors.ErrInvalidConfiguration, err.Error()))
	}
	return s, nil
}

// ApplyEnvironment overrides s with GITDOC_* variables. Values that do not
// parse are ignored, keeping the previous value.
func ApplyEnvironment(s *Settings, lookup func(string) (string, bool)) {
	for _, f := range fields {
		raw, ok := lookup(f.envName())
		if !ok || raw == "" {
			continue
		}
		switch {
		case f.str != nil:
			*f.str(s) = raw
		case f.boolean != nil:
			if b, err := strconv.ParseBool(raw); err == nil {
				*f.boolean(s) = b
			}
		case f.integer != nil:
			if n, err := strconv.Atoi(raw); err == nil {
				*f.integer(s) = n
			}
		}
	}
}

// Flags holds the command-line overrides. Only flags the user actually set
// are applied, so file and environment values survive unset flags.
type Flags struct {
	fs     *pflag.FlagSet
	values Settings
}

// BindFlags registers one flag per settings key on fs.
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs, values: Defaults()}
	for _, fl := range fields {
		switch {
		case fl.str != nil:
			fs.StringVar(fl.str(&f.values), fl.flagName(), *fl.str(&f.values), fl.usage)
		case fl.boolean != nil:
			fs.BoolVar(fl.boolean(&f.values), fl.flagName(), *fl.boolean(&f.values), fl.usage)
		case fl.integer != nil:
			fs.IntVar(fl.integer(&f.values), fl.flagName(), *fl.integer(&f.values), fl.usage)
		}
	}
	return f
}

// Apply copies every changed flag into s.
func (f *Flags) Apply(s *Settings) {
	if f == nil {
		return
	}
	for _, fl := range fields {
		if flag := f.fs.Lookup(fl.flagName()); flag != nil && flag.Changed {
			fl.copy(s, &f.values)
		}
	}
}

// Overlay returns a function applying environment then flag overrides, the
// order a Store re-applies on every reload.
func Overlay(flags *Flags, lookup func(string) (string, bool)) func(*Settings) {
	return func(s *Settings) {
		ApplyEnvironment(s, lookup)
		flags.Apply(s)
	}
}

// DefaultLogFile follows the XDG base directory layout and names the log
// after a hash of the repository root.
func DefaultLogFile(repoRoot string) string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dataHome = filepath.Join(home, ".local", "share")
		} else {
			dataHome = os.TempDir()
		}
	}

	sum := sha256.Sum256([]byte(repoRoot))
	return filepath.Join(dataHome, "gitdoc", "logs", fmt.Sprintf("gitdoc-%x.log", sum[:8]))
}
