package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bashhack/gitdoc/internal/errors"
	"github.com/bashhack/gitdoc/internal/logger"
)

func TestOpen(t *testing.T) {
	t.Parallel()
	requireGit(t)

	t.Run("NotARepository", func(t *testing.T) {
		t.Parallel()
		_, err := Open(t.TempDir(), logger.Nop())
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrNotGitRepository)
	})

	t.Run("FromSubdirectory", func(t *testing.T) {
		t.Parallel()
		dir := setupTestRepo(t)
		writeFile(t, dir, "pkg/sub/file.go", "package sub\n")

		r, err := Open(filepath.Join(dir, "pkg", "sub"), logger.Nop())
		require.NoError(t, err)
		assert.Equal(t, dir, r.Root())
		assert.Equal(t, r.Root(), r.ID())
		assert.Equal(t, filepath.Join(dir, ".git"), r.GitDir())
	})
}

func TestChangedPaths(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		setup    func(t *testing.T, dir string)
		expected ChangeSet
	}{
		"Clean": {
			setup: func(t *testing.T, dir string) {},
		},
		"ModifiedAndUntracked": {
			setup: func(t *testing.T, dir string) {
				writeFile(t, dir, "README.md", "# changed\n")
				writeFile(t, dir, "notes/todo.txt", "buy milk\n")
			},
			expected: ChangeSet{
				{Path: "README.md", Kind: ChangeWorkingTree},
				{Path: "notes/todo.txt", Kind: ChangeWorkingTree},
			},
		},
		"Staged": {
			setup: func(t *testing.T, dir string) {
				writeFile(t, dir, "a.txt", "a\n")
				runGit(t, dir, "add", "a.txt")
			},
			expected: ChangeSet{{Path: "a.txt", Kind: ChangeIndex}},
		},
		"StagedThenModified": {
			setup: func(t *testing.T, dir string) {
				writeFile(t, dir, "b.txt", "b\n")
				runGit(t, dir, "add", "b.txt")
				writeFile(t, dir, "b.txt", "bb\n")
			},
			expected: ChangeSet{
				{Path: "b.txt", Kind: ChangeWorkingTree},
				{Path: "b.txt", Kind: ChangeIndex},
			},
		},
		"Deleted": {
			setup: func(t *testing.T, dir string) {
				require.NoError(t, os.Remove(filepath.Join(dir, "README.md")))
			},
			expected: ChangeSet{{Path: "README.md", Kind: ChangeWorkingTree}},
		},
		"IgnoredFilesSkipped": {
			setup: func(t *testing.T, dir string) {
				writeFile(t, dir, ".gitignore", "*.log\n")
				writeFile(t, dir, "debug.log", "noise\n")
			},
			expected: ChangeSet{{Path: ".gitignore", Kind: ChangeWorkingTree}},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := setupTestRepo(t)
			tc.setup(t, dir)

			cs, err := openTestRepo(t, dir).ChangedPaths(context.Background())
			require.NoError(t, err)
			if tc.expected == nil {
				assert.Empty(t, cs)
				return
			}
			assert.Equal(t, tc.expected, cs)
		})
	}
}

func TestCommit(t *testing.T) {
	t.Parallel()

	t.Run("StagesAllWithDate", func(t *testing.T) {
		t.Parallel()
		dir := setupTestRepo(t)
		r := openTestRepo(t, dir)
		writeFile(t, dir, "README.md", "# changed\n")
		writeFile(t, dir, "new.txt", "new\n")

		date := time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)
		err := r.Commit(context.Background(), "2024-03-15", CommitOptions{StageAll: true, Date: date})
		require.NoError(t, err)

		unix := strconv.FormatInt(date.Unix(), 10)
		assert.Equal(t, unix+" "+unix+" 2024-03-15", runGit(t, dir, "log", "-1", "--format=%at %ct %s"))

		cs, err := r.ChangedPaths(context.Background())
		require.NoError(t, err)
		assert.Empty(t, cs)
		assert.Empty(t, os.Getenv("GIT_AUTHOR_DATE"))
	})

	t.Run("IndexOnly", func(t *testing.T) {
		t.Parallel()
		dir := setupTestRepo(t)
		r := openTestRepo(t, dir)
		writeFile(t, dir, "a.txt", "a\n")
		runGit(t, dir, "add", "a.txt")
		writeFile(t, dir, "README.md", "# unstaged\n")

		require.NoError(t, r.Commit(context.Background(), "staged only", CommitOptions{}))

		cs, err := r.ChangedPaths(context.Background())
		require.NoError(t, err)
		assert.Equal(t, ChangeSet{{Path: "README.md", Kind: ChangeWorkingTree}}, cs)
	})

	t.Run("NothingToCommit", func(t *testing.T) {
		t.Parallel()
		dir := setupTestRepo(t)

		err := openTestRepo(t, dir).Commit(context.Background(), "empty", CommitOptions{StageAll: true})
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrGitOperationFailed)

		var gitErr *errors.GitError
		require.ErrorAs(t, err, &gitErr)
		assert.Equal(t, "commit", gitErr.Operation)

		var exitErr *exec.ExitError
		assert.ErrorAs(t, err, &exitErr)
	})

	t.Run("SkipHooks", func(t *testing.T) {
		t.Parallel()
		dir := setupTestRepo(t)
		r := openTestRepo(t, dir)
		hook := filepath.Join(dir, ".git", "hooks", "pre-commit")
		require.NoError(t, os.MkdirAll(filepath.Dir(hook), 0o755))
		require.NoError(t, os.WriteFile(hook, []byte("#!/bin/sh\nexit 1\n"), 0o755))
		writeFile(t, dir, "a.txt", "a\n")

		require.Error(t, r.Commit(context.Background(), "blocked", CommitOptions{StageAll: true}))
		require.NoError(t, r.Commit(context.Background(), "allowed", CommitOptions{StageAll: true, SkipHooks: true}))
		assert.Equal(t, "allowed", runGit(t, dir, "log", "-1", "--format=%s"))
	})
}

func TestDiffAgainstHead(t *testing.T) {
	t.Parallel()
	dir := setupTestRepo(t)
	r := openTestRepo(t, dir)
	writeFile(t, dir, "README.md", "# test\nmore\n")

	diff, err := r.DiffAgainstHead(context.Background(), "README.md")
	require.NoError(t, err)
	assert.Contains(t, diff, "+more")
	assert.Contains(t, diff, "README.md")
}

func TestHeadBranchAndRefs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("LocalOnly", func(t *testing.T) {
		t.Parallel()
		dir := setupTestRepo(t)
		runGit(t, dir, "tag", "v1")
		r := openTestRepo(t, dir)

		branch, err := r.HeadBranch(ctx)
		require.NoError(t, err)
		assert.Equal(t, "main", branch)

		refs, err := r.ListRefs(ctx)
		require.NoError(t, err)
		assert.False(t, HasRemoteHead(refs))
		assert.Contains(t, refNames(refs, RefHead), "main")
		assert.Contains(t, refNames(refs, RefTag), "v1")
	})

	t.Run("WithRemote", func(t *testing.T) {
		t.Parallel()
		dir := setupTestRepo(t)
		setupRemote(t, dir)

		refs, err := openTestRepo(t, dir).ListRefs(ctx)
		require.NoError(t, err)
		assert.True(t, HasRemoteHead(refs))
		assert.Contains(t, refNames(refs, RefRemoteHead), "origin/main")
	})

	t.Run("Detached", func(t *testing.T) {
		t.Parallel()
		dir := setupTestRepo(t)
		runGit(t, dir, "checkout", "--quiet", "--detach")

		_, err := openTestRepo(t, dir).HeadBranch(ctx)
		assert.ErrorIs(t, err, errors.ErrGitOperationFailed)
	})

	t.Run("Unborn", func(t *testing.T) {
		t.Parallel()
		requireGit(t)
		dir := t.TempDir()
		runGit(t, dir, "init", "--quiet")
		runGit(t, dir, "symbolic-ref", "HEAD", "refs/heads/trunk")
		r := openTestRepo(t, dir)

		branch, err := r.HeadBranch(ctx)
		require.NoError(t, err)
		assert.Equal(t, "trunk", branch)

		entries, err := r.Log(ctx, 10, "")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func refNames(refs []Ref, typ RefType) []string {
	var names []string
	for _, r := range refs {
		if r.Type == typ {
			names = append(names, r.Name)
		}
	}
	return names
}

func TestPushAndPull(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("Push", func(t *testing.T) {
		t.Parallel()
		dir := setupTestRepo(t)
		remote := setupRemote(t, dir)
		r := openTestRepo(t, dir)

		writeFile(t, dir, "a.txt", "a\n")
		commitAll(t, r, "add a")
		require.NoError(t, r.Push(ctx, "origin", "main", ForceModeNone))
		assert.Equal(t, runGit(t, dir, "rev-parse", "HEAD"), runGit(t, remote, "rev-parse", "main"))
	})

	t.Run("ForceAfterRewrite", func(t *testing.T) {
		t.Parallel()
		dir := setupTestRepo(t)
		remote := setupRemote(t, dir)
		r := openTestRepo(t, dir)

		writeFile(t, dir, "a.txt", "a\n")
		commitAll(t, r, "add a")
		require.NoError(t, r.Push(ctx, "origin", "main", ForceModeNone))

		runGit(t, dir, "commit", "--quiet", "--amend", "-m", "rewritten")
		err := r.Push(ctx, "origin", "main", ForceModeNone)
		require.Error(t, err)
		var gitErr *errors.GitError
		require.ErrorAs(t, err, &gitErr)
		assert.Equal(t, "push", gitErr.Operation)

		require.NoError(t, r.Push(ctx, "origin", "main", ForceModeForce))
		assert.Equal(t, runGit(t, dir, "rev-parse", "HEAD"), runGit(t, remote, "rev-parse", "main"))
	})

	t.Run("Pull", func(t *testing.T) {
		t.Parallel()
		dir := setupTestRepo(t)
		remote := setupRemote(t, dir)

		other := t.TempDir()
		runGit(t, other, "clone", "--quiet", remote, ".")
		runGit(t, other, "config", "user.name", "other")
		runGit(t, other, "config", "user.email", "other@example.com")
		runGit(t, other, "config", "commit.gpgsign", "false")
		writeFile(t, other, "remote.txt", "from elsewhere\n")
		runGit(t, other, "add", "remote.txt")
		runGit(t, other, "commit", "--quiet", "-m", "remote change")
		runGit(t, other, "push", "--quiet", "origin", "main")

		require.NoError(t, openTestRepo(t, dir).Pull(ctx))
		assert.FileExists(t, filepath.Join(dir, "remote.txt"))
	})
}

func TestVersionOperations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("SquashRoundTrip", func(t *testing.T) {
		t.Parallel()
		dir := setupTestRepo(t)
		r := openTestRepo(t, dir)

		writeFile(t, dir, "a.txt", "1\n")
		commitAll(t, r, "v1")
		writeFile(t, dir, "a.txt", "2\n")
		commitAll(t, r, "v2")
		v2 := runGit(t, dir, "rev-parse", "HEAD")
		writeFile(t, dir, "b.txt", "b\n")
		commitAll(t, r, "v3")
		tree := runGit(t, dir, "rev-parse", "HEAD^{tree}")

		require.NoError(t, r.Reset(ctx, v2+"~1"))
		commitAll(t, r, "squashed")

		assert.Equal(t, tree, runGit(t, dir, "rev-parse", "HEAD^{tree}"))
		assert.Equal(t, "squashed\nv1\nInitial commit", runGit(t, dir, "log", "--format=%s"))
	})

	t.Run("Revert", func(t *testing.T) {
		t.Parallel()
		dir := setupTestRepo(t)
		r := openTestRepo(t, dir)

		writeFile(t, dir, "c.txt", "c\n")
		commitAll(t, r, "add c")
		head := runGit(t, dir, "rev-parse", "HEAD")

		require.NoError(t, r.Revert(ctx, head))
		assert.NoFileExists(t, filepath.Join(dir, "c.txt"))
		assert.Equal(t, head, runGit(t, dir, "rev-parse", "HEAD"))

		cs, err := r.ChangedPaths(ctx)
		require.NoError(t, err)
		assert.Equal(t, ChangeSet{{Path: "c.txt", Kind: ChangeIndex}}, cs)
	})

	t.Run("CheckoutPath", func(t *testing.T) {
		t.Parallel()
		dir := setupTestRepo(t)
		r := openTestRepo(t, dir)
		first := runGit(t, dir, "rev-parse", "HEAD")

		writeFile(t, dir, "README.md", "# rewritten\n")
		writeFile(t, dir, "other.txt", "other\n")
		commitAll(t, r, "rewrite")

		require.NoError(t, r.Checkout(ctx, first, "README.md"))
		data, err := os.ReadFile(filepath.Join(dir, "README.md"))
		require.NoError(t, err)
		assert.Equal(t, "# test\n", string(data))
		assert.FileExists(t, filepath.Join(dir, "other.txt"))
	})
}

func TestLog(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := setupTestRepo(t)
	r := openTestRepo(t, dir)

	writeFile(t, dir, "a.txt", "1\n")
	commitAll(t, r, "touch a\n\nwith a body")
	writeFile(t, dir, "b.txt", "1\n")
	commitAll(t, r, "touch b")

	tests := map[string]struct {
		max      int
		path     string
		expected []string
	}{
		"All":     {max: 0, expected: []string{"touch b", "touch a", "Initial commit"}},
		"Limited": {max: 2, expected: []string{"touch b", "touch a"}},
		"ByPath":  {max: 0, path: "a.txt", expected: []string{"touch a"}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			entries, err := r.Log(ctx, tc.max, tc.path)
			require.NoError(t, err)

			titles := make([]string, 0, len(entries))
			for _, e := range entries {
				titles = append(titles, e.Title())
				assert.Len(t, e.ShortHash(), 7)
				assert.Equal(t, "gitdoc test", e.Author)
			}
			assert.Equal(t, tc.expected, titles)
		})
	}
}

func TestOnStateChanged(t *testing.T) {
	t.Parallel()
	dir := setupTestRepo(t)
	r := openTestRepo(t, dir)

	events := make(chan struct{}, 64)
	sub, err := r.OnStateChanged(func() {
		select {
		case events <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)

	wait := func() {
		t.Helper()
		select {
		case <-events:
		case <-time.After(5 * time.Second):
			t.Fatal("no state change reported")
		}
	}
	drain := func() {
		for {
			select {
			case <-events:
			case <-time.After(100 * time.Millisecond):
				return
			}
		}
	}

	writeFile(t, dir, "README.md", "# edited\n")
	wait()

	// directories created after start are picked up
	require.NoError(t, os.Mkdir(filepath.Join(dir, "docs"), 0o755))
	wait()
	drain()
	writeFile(t, dir, "docs/guide.md", "guide\n")
	wait()

	runGit(t, dir, "add", "--all")
	wait()

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())
}
