package watcher

import (
	"context"
	"sync"

	"github.com/bashhack/gitdoc/internal/config"
	"github.com/bashhack/gitdoc/internal/git"
	"github.com/bashhack/gitdoc/internal/logger"
	"github.com/bashhack/gitdoc/internal/status"
)

// SessionLabel is the status shown while a session is active and idle.
const SessionLabel = "watching"

// Syncer is the part of the sync layer a session drives.
type Syncer interface {
	AfterCommitter
	Start(ctx context.Context, repo git.Repository) (stop func())
}

// Session ties one repository to an orchestrator for as long as it is
// watched.
type Session struct {
	repo git.Repository
	orch *Orchestrator

	sub         git.Subscription
	stopSync    func()
	unsubscribe func()

	closeOnce sync.Once
	closeErr  error
}

// Watch starts watching repo. Every state change of the repository refreshes
// the enabled flag and schedules a commit evaluation; the session also
// evaluates once right away so changes made while nothing was watching are
// picked up. syncer may be nil.
func Watch(ctx context.Context, repo git.Repository, settings config.Source, orch *Orchestrator, syncer Syncer, state *status.SyncState, log logger.Logger) (*Session, error) {
	state.SetEnabled(settings.Snapshot().Enabled)

	s := &Session{
		repo:     repo,
		orch:     orch,
		stopSync: func() {},
	}

	s.unsubscribe = state.Subscribe(func(snap status.Snapshot) {
		log.StatusMessage("gitdoc: %s", snap.Label(SessionLabel))
	})

	sub, err := repo.OnStateChanged(func() {
		state.SetEnabled(settings.Snapshot().Enabled)
		orch.Notify(ctx, repo)
	})
	if err != nil {
		s.unsubscribe()
		return nil, err
	}
	s.sub = sub

	if syncer != nil {
		s.stopSync = syncer.Start(ctx, repo)
	}

	log.StatusMessage("gitdoc: %s", state.Snapshot().Label(SessionLabel))
	log.Info("Watching %s", repo.Root())
	orch.Notify(ctx, repo)
	return s, nil
}

// Repository returns the watched repository.
func (s *Session) Repository() git.Repository {
	return s.repo
}

// Close stops watching. Pending evaluations of the repository are dropped and
// sync operations in flight are waited for. Close is idempotent.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.sub.Close()
		s.orch.Cancel(s.repo.ID())
		s.stopSync()
		s.unsubscribe()
	})
	return s.closeErr
}
