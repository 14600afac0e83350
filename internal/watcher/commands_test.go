package watcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bashhack/gitdoc/internal/config"
	"github.com/bashhack/gitdoc/internal/diagnostics"
	"github.com/bashhack/gitdoc/internal/errors"
	"github.com/bashhack/gitdoc/internal/git"
	"github.com/bashhack/gitdoc/internal/git/gittest"
)

// changesAfter makes the fake report notes.md as modified once op has run,
// the way checkout, reset and revert leave the worktree.
func changesAfter(f *fixture, op string) {
	f.repo.OnOp = func(_ context.Context, name string, _ []string) {
		if name == op {
			f.repo.SetChanges(modified("notes.md")...)
		}
	}
}

func TestCommitNowIgnoresEnabled(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(s *config.Settings) {
		s.Enabled = false
		s.AutoCommitDelay = 60_000
	})
	f.repo.SetChanges(modified("notes.md")...)
	f.orch.Notify(context.Background(), f.repo)

	result, err := f.orch.CommitNow(context.Background(), f.repo)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, result.Outcome)
	assert.Len(t, f.repo.Commits(), 1)
	assert.False(t, f.orch.Pending(repoRoot))
	assert.Equal(t, 1, f.syncer.afterCalls())
}

func TestRestoreVersion(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	changesAfter(f, "checkout")

	result, err := f.orch.RestoreVersion(context.Background(), f.repo, "abc1234", "notes.md")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, result.Outcome)

	calls := f.repo.Calls()
	require.NotEmpty(t, calls)
	assert.Equal(t, gittest.Call{Op: "checkout", Args: []string{"abc1234", "notes.md"}}, calls[0])
	assert.Equal(t, []string{"checkout", "status", "commit"}, f.repo.Ops())
	assert.Equal(t, "2024-03-05", f.repo.Commits()[0].Message)
}

func TestRestoreVersionUnchanged(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	result, err := f.orch.RestoreVersion(context.Background(), f.repo, "HEAD", "notes.md")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoChanges, result.Outcome)
	assert.Empty(t, f.repo.Commits())
}

const headHash = "ffffffffffffffffffffffffffffffffffffffff"

func TestSquashVersions(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(s *config.Settings) { s.Enabled = false })
	f.repo.Entries = []git.LogEntry{{Hash: headHash, Message: "Later\n"}}
	changesAfter(f, "reset")

	result, err := f.orch.SquashVersions(context.Background(), f.repo, "abc1234", "Draft chapter one")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, result.Outcome)

	assert.Equal(t, []string{"log", "reset", "status", "commit"}, f.repo.Ops())
	assert.Equal(t, gittest.Call{Op: "reset", Args: []string{"abc1234~1"}}, f.repo.Calls()[1])

	commits := f.repo.Commits()
	require.Len(t, commits, 1)
	assert.Equal(t, "Draft chapter one", commits[0].Message)
	assert.True(t, commits[0].Options.StageAll)
}

// The squash commit must take everything the reset left behind, or the
// squashed versions would vanish from the branch.
func TestSquashVersionsCommitsEveryChange(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		mutate func(*config.Settings)
	}{
		"PatternExcludesFiles": {
			mutate: func(s *config.Settings) { s.FilePattern = "**/*.txt" },
		},
		"DiagnosticsWouldBlock": {
			mutate: func(s *config.Settings) { s.CommitValidationLevel = config.ValidationError },
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			table := diagnostics.StaticTable{{
				Path:        repoRoot + "/notes.md",
				Diagnostics: []diagnostics.Diagnostic{{Severity: diagnostics.SeverityError, Message: "broken"}},
			}}
			f := newFixture(t, tc.mutate,
				WithDiagnostics(func(config.Settings, string) diagnostics.Table { return table }))
			f.repo.Entries = []git.LogEntry{{Hash: headHash}}
			changesAfter(f, "reset")

			result, err := f.orch.SquashVersions(context.Background(), f.repo, "abc1234", "Draft")
			require.NoError(t, err)
			assert.Equal(t, OutcomeCommitted, result.Outcome)
			assert.Equal(t, []string{"notes.md"}, result.Changed)

			commits := f.repo.Commits()
			require.Len(t, commits, 1)
			assert.Equal(t, "Draft", commits[0].Message)
		})
	}
}

func TestSquashVersionsRestoresBranch(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		commitErr error
	}{
		"NothingToCommit": {},
		"CommitFails":     {commitErr: errors.New("hook rejected")},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, nil)
			f.repo.Entries = []git.LogEntry{{Hash: headHash}}
			f.repo.CommitErr = tc.commitErr
			if tc.commitErr != nil {
				changesAfter(f, "reset")
			}

			result, err := f.orch.SquashVersions(context.Background(), f.repo, "abc1234", "Draft")
			require.Error(t, err)
			assert.Equal(t, OutcomeFailed, result.Outcome)
			assert.Empty(t, f.repo.Commits())

			var resets []gittest.Call
			for _, c := range f.repo.Calls() {
				if c.Op == "reset" {
					resets = append(resets, c)
				}
			}
			require.Len(t, resets, 2)
			assert.Equal(t, []string{"abc1234~1"}, resets[0].Args)
			assert.Equal(t, []string{headHash}, resets[1].Args)
			assert.Contains(t, f.out.String(), "branch restored to fffffff")
		})
	}
}

func TestSquashVersionsEmptyRepository(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	_, err := f.orch.SquashVersions(context.Background(), f.repo, "abc1234", "Draft")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidConfiguration)
	assert.Zero(t, f.repo.Count("reset"))
}

func TestUndoVersion(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	changesAfter(f, "revert")

	result, err := f.orch.UndoVersion(context.Background(), f.repo, "abc1234")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, result.Outcome)
	assert.Equal(t, []string{"revert", "status", "commit"}, f.repo.Ops())
	assert.Equal(t, []string{"abc1234"}, f.repo.Calls()[0].Args)
}

func TestVersionCommandsValidate(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		run func(o *Orchestrator, f *fixture) (Result, error)
	}{
		"RestoreWithoutRef": {
			run: func(o *Orchestrator, f *fixture) (Result, error) {
				return o.RestoreVersion(context.Background(), f.repo, "", "notes.md")
			},
		},
		"RestoreWithoutPath": {
			run: func(o *Orchestrator, f *fixture) (Result, error) {
				return o.RestoreVersion(context.Background(), f.repo, "abc1234", "")
			},
		},
		"SquashWithoutRef": {
			run: func(o *Orchestrator, f *fixture) (Result, error) {
				return o.SquashVersions(context.Background(), f.repo, "", "msg")
			},
		},
		"SquashWithoutMessage": {
			run: func(o *Orchestrator, f *fixture) (Result, error) {
				return o.SquashVersions(context.Background(), f.repo, "abc1234", "")
			},
		},
		"UndoWithoutRef": {
			run: func(o *Orchestrator, f *fixture) (Result, error) {
				return o.UndoVersion(context.Background(), f.repo, "")
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, nil)
			_, err := tc.run(f.orch, f)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidConfiguration)
			assert.Empty(t, f.repo.Ops())
		})
	}
}
