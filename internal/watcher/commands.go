package watcher

import (
	"context"

	"github.com/bashhack/gitdoc/internal/errors"
	"github.com/bashhack/gitdoc/internal/git"
)

// CommitNow commits the pending changes immediately, whether or not
// auto-commit is enabled. Any pending debounced evaluation is dropped.
func (o *Orchestrator) CommitNow(ctx context.Context, repo git.Repository) (Result, error) {
	o.Cancel(repo.ID())
	return o.commit(ctx, repo, "", modeManual)
}

// RestoreVersion brings path back to its content at ref and commits the
// result.
func (o *Orchestrator) RestoreVersion(ctx context.Context, repo git.Repository, ref, path string) (Result, error) {
	if ref == "" || path == "" {
		return Result{}, errors.Wrap(errors.ErrInvalidConfiguration, "restore needs a version and a path")
	}
	o.Cancel(repo.ID())

	if err := repo.Checkout(ctx, ref, path); err != nil {
		return Result{Outcome: OutcomeFailed}, err
	}
	return o.commit(ctx, repo, "", modeManual)
}

// SquashVersions replaces ref and every later version with a single commit
// carrying message. The working tree is unchanged. The new commit takes
// every change, whatever the file pattern and diagnostics say; if it cannot
// be made, the branch is reset to where it was and an error is returned.
func (o *Orchestrator) SquashVersions(ctx context.Context, repo git.Repository, ref, message string) (Result, error) {
	if ref == "" {
		return Result{}, errors.Wrap(errors.ErrInvalidConfiguration, "squash needs a version")
	}
	if message == "" {
		return Result{}, errors.Wrap(errors.ErrInvalidConfiguration, "squash needs a commit message")
	}
	o.Cancel(repo.ID())

	head, err := repo.Log(ctx, 1, "")
	if err != nil {
		return Result{Outcome: OutcomeFailed}, err
	}
	if len(head) == 0 {
		return Result{Outcome: OutcomeFailed}, errors.Wrap(errors.ErrInvalidConfiguration, "nothing to squash in an empty repository")
	}

	if err := repo.Reset(ctx, ref+"~1"); err != nil {
		return Result{Outcome: OutcomeFailed}, err
	}

	result, err := o.commit(ctx, repo, message, modeRewrite)
	if err == nil && result.Outcome == OutcomeCommitted {
		return result, nil
	}
	if err == nil {
		err = errors.Errorf("squash of %s left nothing to commit", ref)
	}
	if resetErr := repo.Reset(ctx, head[0].Hash); resetErr != nil {
		return Result{Outcome: OutcomeFailed}, errors.Join(err,
			errors.Wrapf(resetErr, "failed to move the branch back to %s", head[0].ShortHash()))
	}
	o.logger.WarningToUser("Squash abandoned, branch restored to %s", head[0].ShortHash())
	return Result{Outcome: OutcomeFailed}, err
}

// UndoVersion commits the inverse of ref.
func (o *Orchestrator) UndoVersion(ctx context.Context, repo git.Repository, ref string) (Result, error) {
	if ref == "" {
		return Result{}, errors.Wrap(errors.ErrInvalidConfiguration, "undo needs a version")
	}
	o.Cancel(repo.ID())

	if err := repo.Revert(ctx, ref); err != nil {
		return Result{Outcome: OutcomeFailed}, err
	}
	return o.commit(ctx, repo, "", modeManual)
}
