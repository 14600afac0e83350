package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/storage/filesystem"

	"github.com/bashhack/gitdoc/internal/errors"
	"github.com/bashhack/gitdoc/internal/logger"
)

// Repo is a Repository backed by a working tree on disk. Reads (status,
// references, history) go through go-git; writes shell out to the git CLI
// so hooks, credentials and merge machinery behave exactly as they do for
// the user.
type Repo struct {
	root     string
	gitDir   string
	logger   logger.Logger
	executor CommandExecutor

	// go-git's repository handle is not safe for concurrent use
	mu   sync.Mutex
	repo *gogit.Repository
}

var _ Repository = (*Repo)(nil)

// Open opens the repository containing path with default dependencies.
func Open(path string, log logger.Logger) (*Repo, error) {
	return OpenWithDeps(path, log, NewExecExecutor())
}

// OpenWithDeps opens the repository containing path with a custom executor.
func OpenWithDeps(path string, log logger.Logger, executor CommandExecutor) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve %s", path)
	}

	repo, err := gogit.PlainOpenWithOptions(abs, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, errors.NewGitError("open", []string{abs}, errors.ErrNotGitRepository, "")
		}
		return nil, errors.NewGitError("open", []string{abs}, errors.Join(errors.ErrGitOperationFailed, err), "")
	}

	wt, err := repo.Worktree()
	if err != nil {
		// bare repositories have nothing to watch
		return nil, errors.NewGitError("open", []string{abs}, errors.Join(errors.ErrNotGitRepository, err), "")
	}

	r := &Repo{
		root:     wt.Filesystem.Root(),
		logger:   log,
		executor: executor,
		repo:     repo,
	}
	if fs, ok := repo.Storer.(*filesystem.Storage); ok {
		r.gitDir = fs.Filesystem().Root()
	}

	log.Info("Opened repository %s (git dir %s)", r.root, r.gitDir)
	return r, nil
}

// ID implements Repository.
func (r *Repo) ID() string { return r.root }

// Root implements Repository.
func (r *Repo) Root() string { return r.root }

// GitDir returns the repository's git directory, or "" when unknown.
func (r *Repo) GitDir() string { return r.gitDir }

// ChangedPaths implements Repository. Untracked files count as working-tree
// changes; files excluded by .gitignore are not reported.
func (r *Repo) ChangedPaths(ctx context.Context) (ChangeSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, errors.NewGitError("status", nil, errors.Join(errors.ErrGitOperationFailed, err), "")
	}
	st, err := wt.Status()
	if err != nil {
		return nil, errors.NewGitError("status", nil, errors.Join(errors.ErrGitOperationFailed, err), "")
	}

	changes := make([]Change, 0, len(st))
	for path, fs := range st {
		path = filepath.ToSlash(path)
		if fs.Staging == gogit.UpdatedButUnmerged || fs.Worktree == gogit.UpdatedButUnmerged {
			changes = append(changes, Change{Path: path, Kind: ChangeMerge})
			continue
		}
		if fs.Worktree != gogit.Unmodified {
			changes = append(changes, Change{Path: path, Kind: ChangeWorkingTree})
		}
		if fs.Staging != gogit.Unmodified && fs.Staging != gogit.Untracked {
			changes = append(changes, Change{Path: path, Kind: ChangeIndex})
		}
	}
	return NewChangeSet(changes), nil
}

// DiffAgainstHead implements Repository.
func (r *Repo) DiffAgainstHead(ctx context.Context, path string) (string, error) {
	return r.runGitCommandWithOutput(ctx, "diff", "HEAD", "--", path)
}

// Commit implements Repository. The date, when set, is passed to the git
// child process only.
func (r *Repo) Commit(ctx context.Context, message string, opts CommitOptions) error {
	if opts.StageAll {
		if err := r.runGitCommand(ctx, "add", "--all"); err != nil {
			return err
		}
	}

	args := []string{"commit", "--quiet", "-m", message}
	if opts.SkipHooks {
		args = append(args, "--no-verify")
	}
	cmd := r.command(ctx, args...)
	if !opts.Date.IsZero() {
		date := opts.Date.UTC().Format(time.RFC3339)
		cmd.Env = append(os.Environ(), "GIT_AUTHOR_DATE="+date, "GIT_COMMITTER_DATE="+date)
	}
	if err := r.executor.Execute(ctx, cmd); err != nil {
		return err
	}

	r.logger.Info("Committed %q in %s", message, r.root)
	return nil
}

// Push implements Repository.
func (r *Repo) Push(ctx context.Context, remote, branch string, mode ForceMode) error {
	args := []string{"push", remote, branch}
	if mode != ForceModeNone {
		args = append(args, mode.String())
	}
	return r.runGitCommand(ctx, args...)
}

// Pull implements Repository.
func (r *Repo) Pull(ctx context.Context) error {
	return r.runGitCommand(ctx, "pull", "--no-edit")
}

// ListRefs implements Repository.
func (r *Repo) ListRefs(ctx context.Context) ([]Ref, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	iter, err := r.repo.References()
	if err != nil {
		return nil, errors.NewGitError("show-ref", nil, errors.Join(errors.ErrGitOperationFailed, err), "")
	}
	defer iter.Close()

	var refs []Ref
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		var t RefType
		switch name := ref.Name(); {
		case name.IsBranch():
			t = RefHead
		case name.IsRemote():
			t = RefRemoteHead
		case name.IsTag():
			t = RefTag
		default:
			return nil
		}
		refs = append(refs, Ref{Name: ref.Name().Short(), Type: t, Hash: ref.Hash().String()})
		return nil
	})
	if err != nil {
		return nil, errors.NewGitError("show-ref", nil, errors.Join(errors.ErrGitOperationFailed, err), "")
	}
	return refs, nil
}

// HeadBranch implements Repository. It works on a branch with no commits
// yet and fails on a detached HEAD.
func (r *Repo) HeadBranch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	head, err := r.repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", errors.NewGitError("symbolic-ref", []string{"HEAD"}, errors.Join(errors.ErrGitOperationFailed, err), "")
	}
	if head.Type() != plumbing.SymbolicReference || !head.Target().IsBranch() {
		return "", errors.NewGitError("symbolic-ref", []string{"HEAD"},
			errors.Wrap(errors.ErrGitOperationFailed, "HEAD is detached"), "")
	}
	return head.Target().Short(), nil
}

// Checkout implements Repository.
func (r *Repo) Checkout(ctx context.Context, ref string, paths ...string) error {
	args := []string{"checkout", ref}
	if len(paths) > 0 {
		args = append(append(args, "--"), paths...)
	}
	return r.runGitCommand(ctx, args...)
}

// Reset implements Repository.
func (r *Repo) Reset(ctx context.Context, ref string) error {
	return r.runGitCommand(ctx, "reset", "--quiet", "--mixed", ref)
}

// Revert implements Repository.
func (r *Repo) Revert(ctx context.Context, ref string) error {
	return r.runGitCommand(ctx, "revert", "--no-commit", ref)
}

// Log implements Repository. It returns at most max entries, newest first,
// limited to commits touching path when path is not empty. A repository
// without commits has an empty log.
func (r *Repo) Log(ctx context.Context, max int, path string) ([]LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	head, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, errors.NewGitError("log", nil, errors.Join(errors.ErrGitOperationFailed, err), "")
	}

	opts := &gogit.LogOptions{From: head.Hash()}
	if path != "" {
		p := filepath.ToSlash(path)
		opts.FileName = &p
	}
	iter, err := r.repo.Log(opts)
	if err != nil {
		return nil, errors.NewGitError("log", nil, errors.Join(errors.ErrGitOperationFailed, err), "")
	}
	defer iter.Close()

	var entries []LogEntry
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		entries = append(entries, LogEntry{
			Hash:    c.Hash.String(),
			Message: c.Message,
			Author:  c.Author.Name,
			When:    c.Author.When,
		})
		if max > 0 && len(entries) >= max {
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return nil, errors.NewGitError("log", nil, errors.Join(errors.ErrGitOperationFailed, err), "")
	}
	return entries, nil
}

func (r *Repo) command(ctx context.Context, args ...string) *exec.Cmd {
	allArgs := append([]string{"-C", r.root}, args...)
	return exec.CommandContext(ctx, "git", allArgs...)
}

// runGitCommand executes a git command in the repository directory with context.
func (r *Repo) runGitCommand(ctx context.Context, args ...string) error {
	return r.executor.Execute(ctx, r.command(ctx, args...))
}

// runGitCommandWithOutput executes a git command and returns its output with context.
func (r *Repo) runGitCommandWithOutput(ctx context.Context, args ...string) (string, error) {
	return r.executor.ExecuteWithOutput(ctx, r.command(ctx, args...))
}
