package main

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/bashhack/gitdoc/internal/git"
	"github.com/bashhack/gitdoc/internal/git/gittest"
	"github.com/bashhack/gitdoc/internal/llm"
	"github.com/bashhack/gitdoc/internal/logger"
)

// MockLocker implements the Locker interface for testing
type MockLocker struct {
	AcquireErr    error
	ReleaseErr    error
	AcquireCalled bool
	ReleaseCalled bool
}

func (m *MockLocker) Acquire() error {
	m.AcquireCalled = true
	return m.AcquireErr
}

func (m *MockLocker) Release() error {
	m.ReleaseCalled = true
	return m.ReleaseErr
}

// MockInteractor answers every prompt with its default and records it
type MockInteractor struct {
	mu       sync.Mutex
	Answer   string
	Defaults []string
}

func (m *MockInteractor) Confirm(message, action string) git.Confirmation {
	return git.Declined
}

func (m *MockInteractor) PromptString(question, def string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Defaults = append(m.Defaults, def)
	if m.Answer != "" {
		return m.Answer
	}
	return def
}

// syncBuffer is shared between the test and the watch session's goroutines.
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

type testApp struct {
	*App
	repo       *gittest.FakeRepository
	locker     *MockLocker
	interactor *MockInteractor
	stdout     *syncBuffer
	stderr     *syncBuffer
}

// newTestApp returns an App working on a fake repository rooted in a temp
// dir, with no environment and no AI backends.
func newTestApp(t *testing.T, mutate func(*AppOptions)) *testApp {
	t.Helper()

	ta := &testApp{
		repo:       gittest.New(t.TempDir()),
		locker:     &MockLocker{},
		interactor: &MockInteractor{},
		stdout:     &syncBuffer{},
		stderr:     &syncBuffer{},
	}

	opts := AppOptions{
		Version:      VersionInfo{Version: "1.0.0", Commit: "abc123", Date: "2024-03-05"},
		Logger:       logger.NewWithOutput(false, "", false, ta.stdout, ta.stderr),
		Locker:       ta.locker,
		Interactor:   ta.interactor,
		Stdout:       ta.stdout,
		Stderr:       ta.stderr,
		Exit:         func(int) {},
		ExecLookPath: func(string) (string, error) { return "/usr/bin/git", nil },
		Getwd:        func() (string, error) { return ta.repo.Root(), nil },
		LookupEnv:    func(string) (string, bool) { return "", false },
		OpenRepository: func(string, logger.Logger) (git.Repository, error) {
			return ta.repo, nil
		},
		NewService: func(context.Context, func(string) (string, bool)) (llm.Service, error) {
			return llm.NewRegistry(), nil
		},
	}
	if mutate != nil {
		mutate(&opts)
	}

	ta.App = NewApp(opts)
	return ta
}

func (ta *testApp) run(args ...string) error {
	return ta.Execute(context.Background(), args)
}
