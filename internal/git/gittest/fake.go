// Package gittest provides an in-memory git.Repository for tests.
package gittest

import (
	"context"
	"slices"
	"sync"

	"github.com/bashhack/gitdoc/internal/git"
)

// Call is one recorded repository operation.
type Call struct {
	Op   string
	Args []string
}

// Commit is one recorded commit.
type Commit struct {
	Message string
	Options git.CommitOptions
}

// FakeRepository records every operation and answers from its fields.
// Exported fields may be set before use; while the fake is shared with
// running code use the setters.
type FakeRepository struct {
	Path    string
	Branch  string
	Refs    []git.Ref
	Diffs   map[string]string
	Entries []git.LogEntry

	CommitErr error
	DiffErr   error
	PullErr   error
	// PushErrs are returned by successive Push calls; once exhausted pushes
	// succeed.
	PushErrs []error

	// OnOp runs after every recorded operation with the fake unlocked. It
	// may block to simulate slow git commands.
	OnOp func(ctx context.Context, op string, args []string)

	mu        sync.Mutex
	changes   git.ChangeSet
	calls     []Call
	commits   []Commit
	listeners map[int]func()
	nextID    int
}

var _ git.Repository = (*FakeRepository)(nil)

// New returns a fake repository rooted at path on branch main.
func New(path string) *FakeRepository {
	return &FakeRepository{
		Path:      path,
		Branch:    "main",
		Diffs:     map[string]string{},
		listeners: map[int]func(){},
	}
}

// WithRemote adds an origin remote-tracking branch.
func (f *FakeRepository) WithRemote() *FakeRepository {
	f.Refs = append(f.Refs,
		git.Ref{Name: f.Branch, Type: git.RefHead},
		git.Ref{Name: "origin/" + f.Branch, Type: git.RefRemoteHead},
	)
	return f
}

// SetChanges replaces the pending changes.
func (f *FakeRepository) SetChanges(changes ...git.Change) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changes = git.NewChangeSet(changes)
}

// Touch marks paths as modified in the working tree and notifies listeners.
func (f *FakeRepository) Touch(paths ...string) {
	f.mu.Lock()
	changes := slices.Clone(f.changes)
	for _, p := range paths {
		changes = append(changes, git.Change{Path: p, Kind: git.ChangeWorkingTree})
	}
	f.changes = git.NewChangeSet(changes)
	f.mu.Unlock()

	f.Emit()
}

// Emit calls every state-change listener.
func (f *FakeRepository) Emit() {
	f.mu.Lock()
	ids := make([]int, 0, len(f.listeners))
	for id := range f.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, f.listeners[id])
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Calls returns the recorded operations in order.
func (f *FakeRepository) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// Ops returns the names of the recorded operations in order.
func (f *FakeRepository) Ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ops := make([]string, len(f.calls))
	for i, c := range f.calls {
		ops[i] = c.Op
	}
	return ops
}

// Count returns how many times op was called.
func (f *FakeRepository) Count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Commits returns the successful commits in order.
func (f *FakeRepository) Commits() []Commit {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.commits)
}

// Listeners returns the number of active state-change subscriptions.
func (f *FakeRepository) Listeners() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

func (f *FakeRepository) record(ctx context.Context, op string, args ...string) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Op: op, Args: args})
	hook := f.OnOp
	f.mu.Unlock()

	if hook != nil {
		hook(ctx, op, args)
	}
}

// ID implements git.Repository.
func (f *FakeRepository) ID() string { return f.Path }

// Root implements git.Repository.
func (f *FakeRepository) Root() string { return f.Path }

// ChangedPaths implements git.Repository.
func (f *FakeRepository) ChangedPaths(ctx context.Context) (git.ChangeSet, error) {
	f.record(ctx, "status")
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.changes), nil
}

// DiffAgainstHead implements git.Repository.
func (f *FakeRepository) DiffAgainstHead(ctx context.Context, path string) (string, error) {
	f.record(ctx, "diff", path)
	if f.DiffErr != nil {
		return "", f.DiffErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Diffs[path], nil
}

// Commit implements git.Repository. A successful commit clears the pending
// changes.
func (f *FakeRepository) Commit(ctx context.Context, message string, opts git.CommitOptions) error {
	f.record(ctx, "commit", message)
	if f.CommitErr != nil {
		return f.CommitErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commits = append(f.commits, Commit{Message: message, Options: opts})
	f.changes = nil
	return nil
}

// Push implements git.Repository.
func (f *FakeRepository) Push(ctx context.Context, remote, branch string, mode git.ForceMode) error {
	f.record(ctx, "push", remote, branch, mode.String())
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.PushErrs) > 0 {
		err := f.PushErrs[0]
		f.PushErrs = f.PushErrs[1:]
		return err
	}
	return nil
}

// Pull implements git.Repository.
func (f *FakeRepository) Pull(ctx context.Context) error {
	f.record(ctx, "pull")
	return f.PullErr
}

// ListRefs implements git.Repository.
func (f *FakeRepository) ListRefs(ctx context.Context) ([]git.Ref, error) {
	f.record(ctx, "refs")
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.Refs), nil
}

// HeadBranch implements git.Repository.
func (f *FakeRepository) HeadBranch(ctx context.Context) (string, error) {
	f.record(ctx, "head")
	return f.Branch, nil
}

// Checkout implements git.Repository.
func (f *FakeRepository) Checkout(ctx context.Context, ref string, paths ...string) error {
	f.record(ctx, "checkout", append([]string{ref}, paths...)...)
	return nil
}

// Reset implements git.Repository.
func (f *FakeRepository) Reset(ctx context.Context, ref string) error {
	f.record(ctx, "reset", ref)
	return nil
}

// Revert implements git.Repository.
func (f *FakeRepository) Revert(ctx context.Context, ref string) error {
	f.record(ctx, "revert", ref)
	return nil
}

// Log implements git.Repository.
func (f *FakeRepository) Log(ctx context.Context, max int, path string) ([]git.LogEntry, error) {
	f.record(ctx, "log", path)
	entries := slices.Clone(f.Entries)
	if max > 0 && len(entries) > max {
		entries = entries[:max]
	}
	return entries, nil
}

// OnStateChanged implements git.Repository.
func (f *FakeRepository) OnStateChanged(fn func()) (git.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	return subscription(func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.listeners, id)
	}), nil
}

type subscription func()

func (s subscription) Close() error {
	s()
	return nil
}
