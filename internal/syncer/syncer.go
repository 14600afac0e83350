// Package syncer pushes and pulls a repository according to the configured
// sync policies.
package syncer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bashhack/gitdoc/internal/config"
	"github.com/bashhack/gitdoc/internal/git"
	"github.com/bashhack/gitdoc/internal/logger"
	"github.com/bashhack/gitdoc/internal/status"
)

// Remote is the remote every push goes to.
const Remote = "origin"

// Prompt shown when a push is rejected.
const (
	conflictMessage = "Remote repository contains conflicting changes."
	forcePushAction = "Force Push"
)

// ForceModeFor maps the configured push mode to a git force mode.
func ForceModeFor(mode config.PushMode) git.ForceMode {
	switch mode {
	case config.PushModeForcePush:
		return git.ForceModeForce
	case config.PushModeForcePushWithLease:
		return git.ForceModeForceWithLease
	default:
		return git.ForceModeNone
	}
}

// Syncer applies push and pull policies for one watch session. A push never
// overlaps another push and a pull never overlaps another pull. A push
// requested while one is in flight is coalesced into a single follow-up push
// once the current one succeeds; a pull requested during a pull is dropped.
type Syncer struct {
	settings   config.Source
	state      *status.SyncState
	interactor git.UserInteractor
	logger     logger.Logger

	pushing   atomic.Bool
	pushAgain atomic.Bool
	pulling   atomic.Bool
}

// New creates a Syncer. state receives the in-flight flags and interactor
// decides whether a rejected push is retried with force.
func New(settings config.Source, state *status.SyncState, interactor git.UserInteractor, log logger.Logger) *Syncer {
	return &Syncer{
		settings:   settings,
		state:      state,
		interactor: interactor,
		logger:     log,
	}
}

// Push pushes the current branch to origin. It does nothing when the
// repository has no remote-tracking branch. When the push is rejected the
// user may confirm a single retry with --force.
func (s *Syncer) Push(ctx context.Context, repo git.Repository) error {
	hasRemote, err := s.hasRemote(ctx, repo)
	if err != nil || !hasRemote {
		return err
	}

	for {
		if !s.pushing.CompareAndSwap(false, true) {
			// The owner checks pushAgain after clearing pushing, so one of
			// the two sides always sees the other.
			s.pushAgain.Store(true)
			if s.pushing.Load() {
				s.logger.Info("Push already in progress for %s, queued another", repo.ID())
				return nil
			}
			continue
		}

		s.pushAgain.Store(false)
		err := s.push(ctx, repo)
		s.pushing.Store(false)
		if err != nil || !s.pushAgain.Load() {
			return err
		}
		s.logger.Info("Commits arrived during the push, pushing %s again", repo.ID())
	}
}

func (s *Syncer) push(ctx context.Context, repo git.Repository) error {
	settings := s.settings.Snapshot()

	s.state.SetPushing(true)
	defer s.state.SetPushing(false)

	if settings.PullBeforePush {
		if err := s.Pull(ctx, repo); err != nil {
			s.logger.Warning("Pull before push failed, not pushing: %v", err)
			return err
		}
	}

	branch, err := repo.HeadBranch(ctx)
	if err != nil {
		return err
	}

	mode := ForceModeFor(settings.PushMode)
	s.logger.Info("Pushing %s to %s (%s)", branch, Remote, mode)
	err = repo.Push(ctx, Remote, branch, mode)
	if err == nil {
		s.logger.Info("Pushed %s", branch)
		return nil
	}

	s.state.SetPushing(false)
	s.logger.Warning("Push failed: %v", err)

	if s.interactor.Confirm(conflictMessage, forcePushAction) != git.Confirmed {
		return err
	}

	s.state.SetPushing(true)
	s.logger.Info("Retrying push of %s with --force", branch)
	if err := repo.Push(ctx, Remote, branch, git.ForceModeForce); err != nil {
		s.logger.Error("Force push failed: %v", err)
		return err
	}
	s.logger.Success("Force pushed %s", branch)
	return nil
}

// Pull pulls the current branch. It does nothing when the repository has
// no remote-tracking branch.
func (s *Syncer) Pull(ctx context.Context, repo git.Repository) error {
	hasRemote, err := s.hasRemote(ctx, repo)
	if err != nil || !hasRemote {
		return err
	}

	if !s.pulling.CompareAndSwap(false, true) {
		s.logger.Info("Pull already in progress for %s, skipping", repo.ID())
		return nil
	}
	defer s.pulling.Store(false)

	s.state.SetPulling(true)
	defer s.state.SetPulling(false)

	if err := repo.Pull(ctx); err != nil {
		return err
	}
	s.logger.Info("Pulled %s", repo.ID())
	return nil
}

// AfterCommit runs the onCommit policies: push first, then pull. A failed
// push does not prevent the pull.
func (s *Syncer) AfterCommit(ctx context.Context, repo git.Repository) {
	settings := s.settings.Snapshot()

	if settings.AutoPush == config.PushOnCommit {
		if err := s.Push(ctx, repo); err != nil {
			s.logger.Error("Failed to push: %v", err)
		}
	}
	if settings.AutoPull == config.PullOnCommit {
		if err := s.Pull(ctx, repo); err != nil {
			s.logger.Error("Failed to pull: %v", err)
		}
	}
}

// Start runs the session-scoped policies: the afterDelay push and pull
// tickers and the pull on open. The returned stop function cancels them and
// waits for any operation in flight to finish; operations themselves are
// not interrupted by stop.
func (s *Syncer) Start(ctx context.Context, repo git.Repository) (stop func()) {
	settings := s.settings.Snapshot()
	ctx, cancel := context.WithCancel(ctx)
	opCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup

	if settings.ShouldPullOnOpen() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Pull(opCtx, repo); err != nil {
				s.logger.Error("Failed to pull on open: %v", err)
			}
		}()
	}

	if settings.AutoPush == config.PushAfterDelay {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.loop(ctx, settings.PushInterval(), func(current config.Settings) {
				if current.AutoPush != config.PushAfterDelay {
					return
				}
				if err := s.Push(opCtx, repo); err != nil {
					s.logger.Error("Failed to push: %v", err)
				}
			})
		}()
	}

	if settings.AutoPull == config.PullAfterDelay {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.loop(ctx, settings.PullInterval(), func(current config.Settings) {
				if current.AutoPull != config.PullAfterDelay {
					return
				}
				if err := s.Pull(opCtx, repo); err != nil {
					s.logger.Error("Failed to pull: %v", err)
				}
			})
		}()
	}

	return func() {
		cancel()
		wg.Wait()
	}
}

// loop calls op every interval until ctx is done, skipping ticks while the
// session is disabled.
func (s *Syncer) loop(ctx context.Context, interval time.Duration, op func(config.Settings)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			current := s.settings.Snapshot()
			if !current.Enabled {
				continue
			}
			op(current)
		}
	}
}

func (s *Syncer) hasRemote(ctx context.Context, repo git.Repository) (bool, error) {
	refs, err := repo.ListRefs(ctx)
	if err != nil {
		return false, err
	}
	if !git.HasRemoteHead(refs) {
		s.logger.Info("No remote configured for %s, skipping sync", repo.ID())
		return false, nil
	}
	return true, nil
}
