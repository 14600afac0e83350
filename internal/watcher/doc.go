// Package watcher turns repository changes into commits.
//
// An Orchestrator debounces state-change notifications per repository. When
// the delay expires it filters the changed paths through the configured
// glob, consults the diagnostics gate, resolves a commit message (template
// or AI) and commits everything with the resolved date. Committed changes
// are then handed to the sync layer.
//
// The same pipeline backs the manual version commands: CommitNow,
// RestoreVersion, SquashVersions and UndoVersion. These ignore the enabled
// flag.
//
// A Session subscribes an Orchestrator to a repository's change events and
// starts the interval-based sync policies for as long as it is open.
package watcher
