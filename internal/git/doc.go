// Package git provides the repository capability gitdoc drives.
//
// Repository is the interface the rest of gitdoc depends on; Repo is its
// implementation for a working tree on disk. The gittest subpackage
// provides an in-memory fake for tests.
//
// # Core Components
//
// - Repository: change detection, commits, sync and history operations
// - Repo: go-git for reads, the git CLI for writes
// - CommandExecutor: Interface for executing Git commands
// - UserInteractor: Interface for confirmations and text prompts
//
// # Change Sets
//
// ChangedPaths reports working-tree changes (untracked files included),
// then paths with merge conflicts, then staged changes. Each group is
// sorted by path. Paths are relative to the worktree root and always use
// forward slashes.
//
// # Commits
//
// Commit stages everything when asked to and passes the commit date to the
// single git child process through GIT_AUTHOR_DATE and GIT_COMMITTER_DATE.
// The gitdoc process environment is never modified.
//
// # State Changes
//
// OnStateChanged watches every worktree directory with fsnotify, plus the
// HEAD, index and MERGE_HEAD files of the git directory. Callbacks may
// arrive in bursts; callers are expected to debounce them.
//
// # Error Handling
//
// Failed git commands return *errors.GitError wrapping
// errors.ErrGitOperationFailed, with the command's stderr in Output and
// the exit status reachable through errors.As. Opening a path outside any
// repository returns an error wrapping errors.ErrNotGitRepository.
//
// # Concurrency Model
//
// Repo is safe for concurrent use. Reads through go-git are serialized;
// CLI commands run concurrently and rely on git's own index locking.
package git
