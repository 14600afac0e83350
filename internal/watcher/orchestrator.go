package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/bashhack/gitdoc/internal/config"
	"github.com/bashhack/gitdoc/internal/diagnostics"
	"github.com/bashhack/gitdoc/internal/git"
	"github.com/bashhack/gitdoc/internal/logger"
	"github.com/bashhack/gitdoc/internal/match"
	"github.com/bashhack/gitdoc/internal/message"
)

// Outcome is how a commit evaluation ended.
type Outcome int

const (
	// OutcomeCommitted means a commit was created.
	OutcomeCommitted Outcome = iota
	// OutcomeDisabled means auto-commit is turned off.
	OutcomeDisabled
	// OutcomeNoChanges means no changed path matched the file pattern.
	OutcomeNoChanges
	// OutcomeGateFailed means diagnostics on a changed file vetoed the commit.
	OutcomeGateFailed
	// OutcomeFailed means git refused the commit.
	OutcomeFailed
)

// String returns a short description of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeCommitted:
		return "committed"
	case OutcomeDisabled:
		return "disabled"
	case OutcomeNoChanges:
		return "no changes"
	case OutcomeGateFailed:
		return "blocked by diagnostics"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result describes one commit evaluation.
type Result struct {
	Outcome Outcome
	// Changed holds the matched repository-relative paths.
	Changed    []string
	Resolution message.Resolution
}

// AfterCommitter runs the post-commit sync policies.
type AfterCommitter interface {
	AfterCommit(ctx context.Context, repo git.Repository)
}

// TableFunc returns the diagnostics table for one evaluation, or nil when
// there is none.
type TableFunc func(s config.Settings, root string) diagnostics.Table

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDiagnostics replaces the table lookup, which by default reads the
// configured diagnostics file.
func WithDiagnostics(fn TableFunc) Option {
	return func(o *Orchestrator) {
		o.table = fn
	}
}

// FileDiagnostics is the default TableFunc. A relative diagnostics_file is
// resolved against the worktree root.
func FileDiagnostics(s config.Settings, root string) diagnostics.Table {
	if s.DiagnosticsFile == "" {
		return nil
	}
	path := s.DiagnosticsFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	return diagnostics.NewFileTable(path, root)
}

type pending struct {
	timer *time.Timer
	seq   uint64
}

// Orchestrator debounces state changes into commits. Each repository has at
// most one pending timer; a new notification stops it and schedules a fresh
// one. Commit evaluations of one repository never run concurrently.
type Orchestrator struct {
	settings config.Source
	resolver *message.Resolver
	after    AfterCommitter
	logger   logger.Logger
	table    TableFunc

	mu      sync.Mutex
	pending map[string]*pending
	locks   map[string]*sync.Mutex
	seq     uint64
	closed  bool
	running sync.WaitGroup
}

// NewOrchestrator creates an Orchestrator. after may be nil when no sync
// policy applies.
func NewOrchestrator(settings config.Source, resolver *message.Resolver, after AfterCommitter, log logger.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		settings: settings,
		resolver: resolver,
		after:    after,
		logger:   log,
		table:    FileDiagnostics,
		pending:  make(map[string]*pending),
		locks:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Notify schedules a commit evaluation of repo after the configured delay,
// replacing any evaluation already pending for it. The evaluation runs on a
// context detached from ctx's cancellation.
func (o *Orchestrator) Notify(ctx context.Context, repo git.Repository) {
	delay := o.settings.Snapshot().CommitDelay()
	id := repo.ID()

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}

	if p, ok := o.pending[id]; ok {
		p.timer.Stop()
	}

	o.seq++
	seq := o.seq
	runCtx := context.WithoutCancel(ctx)

	o.pending[id] = &pending{
		seq: seq,
		timer: time.AfterFunc(delay, func() {
			o.mu.Lock()
			// Only run if this is still the current timer for the repository
			p, ok := o.pending[id]
			if o.closed || !ok || p.seq != seq {
				o.mu.Unlock()
				return
			}
			delete(o.pending, id)
			o.running.Add(1)
			o.mu.Unlock()

			defer o.running.Done()
			o.evaluate(runCtx, repo)
		}),
	}
}

// Pending reports whether an evaluation is scheduled for the repository.
func (o *Orchestrator) Pending(repoID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.pending[repoID]
	return ok
}

// Cancel drops the evaluation pending for the repository, if any.
func (o *Orchestrator) Cancel(repoID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if p, ok := o.pending[repoID]; ok {
		p.timer.Stop()
		delete(o.pending, repoID)
	}
}

// Close stops every pending timer and waits for evaluations already
// running to finish. Later notifications are ignored.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	for id, p := range o.pending {
		p.timer.Stop()
		delete(o.pending, id)
	}
	o.mu.Unlock()

	o.running.Wait()
}

func (o *Orchestrator) evaluate(ctx context.Context, repo git.Repository) {
	result, err := o.Commit(ctx, repo, "")
	if err != nil {
		o.logger.Error("Failed to commit changes: %v", err)
		return
	}
	if result.Outcome != OutcomeCommitted {
		o.logger.Info("No commit for %s: %s", repo.ID(), result.Outcome)
	}
}

// Commit evaluates repo now, honoring the enabled flag. explicit, when not
// empty, is used as the commit message.
func (o *Orchestrator) Commit(ctx context.Context, repo git.Repository, explicit string) (Result, error) {
	return o.commit(ctx, repo, explicit, modeAuto)
}

// commitMode says which checks an evaluation applies.
type commitMode int

const (
	// modeAuto honors the enabled flag, the file pattern and the gate.
	modeAuto commitMode = iota
	// modeManual ignores the enabled flag.
	modeManual
	// modeRewrite commits every change after a history rewrite, skipping
	// the file pattern and the gate.
	modeRewrite
)

func (o *Orchestrator) commit(ctx context.Context, repo git.Repository, explicit string, mode commitMode) (Result, error) {
	result, err := o.commitLocked(ctx, repo, explicit, mode)
	if err != nil || result.Outcome != OutcomeCommitted {
		return result, err
	}

	if o.after != nil {
		o.after.AfterCommit(ctx, repo)
	}
	return result, nil
}

func (o *Orchestrator) commitLocked(ctx context.Context, repo git.Repository, explicit string, mode commitMode) (Result, error) {
	lock := o.repoLock(repo.ID())
	lock.Lock()
	defer lock.Unlock()

	settings := o.settings.Snapshot()
	if !settings.Enabled && mode == modeAuto {
		return Result{Outcome: OutcomeDisabled}, nil
	}

	var matcher *match.Matcher
	if mode != modeRewrite {
		m, err := match.New(settings.FilePattern)
		if err != nil {
			return Result{Outcome: OutcomeFailed}, err
		}
		matcher = m
	}

	changes, err := repo.ChangedPaths(ctx)
	if err != nil {
		return Result{Outcome: OutcomeFailed}, err
	}

	changed := changes.Paths()
	if matcher != nil {
		changed = matcher.Filter(changed)
	}
	if len(changed) == 0 {
		return Result{Outcome: OutcomeNoChanges}, nil
	}

	if mode != modeRewrite && !o.gate(ctx, settings, repo, changed) {
		o.logger.InfoToUser("Not committing: %d changed file(s) have diagnostics at level %s", len(changed), settings.CommitValidationLevel)
		return Result{Outcome: OutcomeGateFailed, Changed: changed}, nil
	}

	res := o.resolver.Resolve(ctx, settings, repo, changed, explicit)
	err = repo.Commit(ctx, res.Message(), git.CommitOptions{
		StageAll:  true,
		SkipHooks: settings.NoVerify,
		Date:      res.Date,
	})
	if err != nil {
		return Result{Outcome: OutcomeFailed, Changed: changed, Resolution: res}, err
	}

	o.logger.Success("Committed %d file(s): %s", len(changed), res.Parts.Title)
	return Result{Outcome: OutcomeCommitted, Changed: changed, Resolution: res}, nil
}

// gate applies the validation level. An unreadable table does not block
// commits.
func (o *Orchestrator) gate(ctx context.Context, s config.Settings, repo git.Repository, changed []string) bool {
	if s.CommitValidationLevel == config.ValidationNone {
		return true
	}
	table := o.table(s, repo.Root())
	if table == nil {
		return true
	}

	abs := make([]string, len(changed))
	for i, p := range changed {
		abs[i] = filepath.Join(repo.Root(), filepath.FromSlash(p))
	}

	ok, err := diagnostics.Gate(ctx, s.CommitValidationLevel, abs, table)
	if err != nil {
		o.logger.Warning("Ignoring diagnostics: %v", err)
		return true
	}
	return ok
}

func (o *Orchestrator) repoLock(id string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.locks[id]
	if !ok {
		l = &sync.Mutex{}
		o.locks[id] = l
	}
	return l
}
