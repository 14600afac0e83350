// Package config provides the settings that drive a gitdoc session.
//
// Settings are layered, later layers winning:
//
//  1. Defaults()
//  2. the repository's .gitdoc.toml file
//  3. GITDOC_* environment variables (GITDOC_AUTO_PUSH, GITDOC_AI_MODEL, ...)
//  4. command-line flags that were explicitly set (--auto-push, --ai-model, ...)
//
// A Store holds the result and implements Source. Components never cache
// Settings: they call Snapshot() when they need a value, and the Store
// re-reads the file when it changed, so edits (and `gitdoc disable` from
// another shell) take effect on the next evaluation. Tests use Static.
//
//	flags := config.BindFlags(cmd.Flags())
//	store, err := config.NewStore(filepath.Join(root, config.FileName),
//	    config.Overlay(flags, os.LookupEnv))
//	if err != nil {
//	    return err
//	}
//	delay := store.Snapshot().CommitDelay()
package config
