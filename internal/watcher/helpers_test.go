package watcher

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/bashhack/gitdoc/internal/config"
	"github.com/bashhack/gitdoc/internal/git"
	"github.com/bashhack/gitdoc/internal/git/gittest"
	"github.com/bashhack/gitdoc/internal/logger"
	"github.com/bashhack/gitdoc/internal/message"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = time.Date(2024, time.March, 5, 20, 30, 0, 0, time.UTC)

const repoRoot = "/work/notes"

// syncBuffer is written from timer goroutines while tests read it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// source is a config.Source whose settings can change mid-test.
type source struct {
	mu sync.Mutex
	s  config.Settings
}

func (s *source) Snapshot() config.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.s
}

func (s *source) setEnabled(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.s.Enabled = v
}

func newSource(mutate func(*config.Settings)) *source {
	s := config.Defaults()
	s.AutoCommitDelay = 20
	s.CommitMessageFormat = "yyyy-LL-dd"
	s.AutoPush = config.PushNone
	s.AutoPull = config.PullNone
	s.PullOnOpen = false
	if mutate != nil {
		mutate(&s)
	}
	return &source{s: s}
}

type recordingSyncer struct {
	mu      sync.Mutex
	after   []string
	started int
	stopped int
}

func (r *recordingSyncer) AfterCommit(_ context.Context, repo git.Repository) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.after = append(r.after, repo.ID())
}

func (r *recordingSyncer) Start(context.Context, git.Repository) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.stopped++
	}
}

func (r *recordingSyncer) afterCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.after)
}

type fixture struct {
	repo     *gittest.FakeRepository
	settings *source
	syncer   *recordingSyncer
	out      *syncBuffer
	log      logger.Logger
	orch     *Orchestrator
}

func newFixture(t *testing.T, mutate func(*config.Settings), opts ...Option) *fixture {
	t.Helper()

	out := &syncBuffer{}
	log := logger.NewWithOutput(false, "", true, out, out)
	f := &fixture{
		repo:     gittest.New(repoRoot),
		settings: newSource(mutate),
		syncer:   &recordingSyncer{},
		out:      out,
		log:      log,
	}
	resolver := message.NewResolver(nil, log, message.WithClock(func() time.Time { return fixedNow }))
	f.orch = NewOrchestrator(f.settings, resolver, f.syncer, log, opts...)
	t.Cleanup(f.orch.Close)
	return f
}

func modified(paths ...string) []git.Change {
	changes := make([]git.Change, len(paths))
	for i, p := range paths {
		changes[i] = git.Change{Path: p, Kind: git.ChangeWorkingTree}
	}
	return changes
}
