package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bashhack/gitdoc/internal/logger"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

// runGit runs git in dir and returns its trimmed output.
func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	cmd.Env = append(os.Environ(), "GIT_CONFIG_NOSYSTEM=1")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
	return strings.TrimSpace(string(out))
}

// setupTestRepo creates a repository on branch main with one commit of
// README.md.
func setupTestRepo(t *testing.T) string {
	t.Helper()
	requireGit(t)

	dir := t.TempDir()
	runGit(t, dir, "init", "--quiet")
	runGit(t, dir, "symbolic-ref", "HEAD", "refs/heads/main")
	runGit(t, dir, "config", "user.name", "gitdoc test")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "commit.gpgsign", "false")

	writeFile(t, dir, "README.md", "# test\n")
	runGit(t, dir, "add", "README.md")
	runGit(t, dir, "commit", "--quiet", "-m", "Initial commit")
	return dir
}

// setupRemote adds a bare origin to repo and pushes main to it.
func setupRemote(t *testing.T, repo string) string {
	t.Helper()
	remote := t.TempDir()
	runGit(t, remote, "init", "--quiet", "--bare")
	runGit(t, repo, "remote", "add", "origin", remote)
	runGit(t, repo, "push", "--quiet", "-u", "origin", "main")
	return remote
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func openTestRepo(t *testing.T, dir string) *Repo {
	t.Helper()
	r, err := Open(dir, logger.Nop())
	require.NoError(t, err)
	return r
}

func commitAll(t *testing.T, r *Repo, message string) {
	t.Helper()
	require.NoError(t, r.Commit(context.Background(), message, CommitOptions{StageAll: true}))
}
