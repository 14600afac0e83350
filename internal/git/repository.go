package git

import (
	"context"
	"slices"
	"time"
)

// ChangeKind tells which area of the repository a change lives in.
type ChangeKind int

const (
	// ChangeWorkingTree is an unstaged modification, deletion or untracked file.
	ChangeWorkingTree ChangeKind = iota
	// ChangeMerge is a path with unresolved merge conflicts.
	ChangeMerge
	// ChangeIndex is a staged change.
	ChangeIndex
)

// String returns the name of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeWorkingTree:
		return "working tree"
	case ChangeMerge:
		return "merge"
	case ChangeIndex:
		return "index"
	default:
		return "unknown"
	}
}

// Change is one changed path, relative to the worktree root with forward
// slashes.
type Change struct {
	Path string
	Kind ChangeKind
}

// ChangeSet lists pending changes: working-tree changes first, then merge
// changes, then index changes, each group sorted by path. A path appears at
// most once per kind.
type ChangeSet []Change

// NewChangeSet orders and de-duplicates changes.
func NewChangeSet(changes []Change) ChangeSet {
	out := slices.Clone(changes)
	slices.SortStableFunc(out, func(a, b Change) int {
		if a.Kind != b.Kind {
			return int(a.Kind) - int(b.Kind)
		}
		switch {
		case a.Path < b.Path:
			return -1
		case a.Path > b.Path:
			return 1
		}
		return 0
	})
	return slices.Compact(out)
}

// Paths returns every changed path once, in change-set order.
func (cs ChangeSet) Paths() []string {
	seen := make(map[string]bool, len(cs))
	paths := make([]string, 0, len(cs))
	for _, c := range cs {
		if seen[c.Path] {
			continue
		}
		seen[c.Path] = true
		paths = append(paths, c.Path)
	}
	return paths
}

// CommitOptions controls one commit.
type CommitOptions struct {
	// StageAll stages every change, untracked files included, before committing.
	StageAll bool
	// SkipHooks bypasses pre-commit and commit-msg hooks.
	SkipHooks bool
	// Date is used as both author and committer date when non-zero.
	Date time.Time
}

// ForceMode selects how a push may overwrite the remote branch.
type ForceMode int

const (
	ForceModeNone ForceMode = iota
	ForceModeForce
	ForceModeForceWithLease
)

// String returns the git flag for the mode, or "none".
func (m ForceMode) String() string {
	switch m {
	case ForceModeForce:
		return "--force"
	case ForceModeForceWithLease:
		return "--force-with-lease"
	default:
		return "none"
	}
}

// RefType classifies a reference.
type RefType int

const (
	RefHead RefType = iota
	RefRemoteHead
	RefTag
)

// Ref is a named reference.
type Ref struct {
	Name string
	Type RefType
	Hash string
}

// HasRemoteHead reports whether refs contains a remote-tracking branch,
// which is what makes push and pull meaningful.
func HasRemoteHead(refs []Ref) bool {
	return slices.ContainsFunc(refs, func(r Ref) bool {
		return r.Type == RefRemoteHead
	})
}

// LogEntry is one commit in the history.
type LogEntry struct {
	Hash    string
	Message string
	Author  string
	When    time.Time
}

// ShortHash returns the abbreviated commit hash.
func (e LogEntry) ShortHash() string {
	if len(e.Hash) > 7 {
		return e.Hash[:7]
	}
	return e.Hash
}

// Title returns the first line of the commit message.
func (e LogEntry) Title() string {
	for i, r := range e.Message {
		if r == '\n' {
			return e.Message[:i]
		}
	}
	return e.Message
}

// Subscription is a registered state-change listener.
type Subscription interface {
	Close() error
}

// Repository is the version-control capability gitdoc drives. All paths are
// relative to the worktree root.
type Repository interface {
	// ID identifies the repository; it is the absolute worktree root.
	ID() string
	Root() string

	ChangedPaths(ctx context.Context) (ChangeSet, error)
	DiffAgainstHead(ctx context.Context, path string) (string, error)
	Commit(ctx context.Context, message string, opts CommitOptions) error

	Push(ctx context.Context, remote, branch string, mode ForceMode) error
	Pull(ctx context.Context) error
	ListRefs(ctx context.Context) ([]Ref, error)
	HeadBranch(ctx context.Context) (string, error)

	Checkout(ctx context.Context, ref string, paths ...string) error
	// Reset moves HEAD to ref keeping the working tree (a mixed reset).
	Reset(ctx context.Context, ref string) error
	// Revert applies the inverse of ref without committing it.
	Revert(ctx context.Context, ref string) error
	Log(ctx context.Context, max int, path string) ([]LogEntry, error)

	// OnStateChanged calls fn whenever the worktree or index may have
	// changed. fn runs on the watcher's goroutine.
	OnStateChanged(fn func()) (Subscription, error)
}
