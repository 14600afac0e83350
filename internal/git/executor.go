package git

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/bashhack/gitdoc/internal/errors"
)

// CommandExecutor defines an interface for executing commands
type CommandExecutor interface {
	// Execute runs a command and reports whether it succeeded
	Execute(ctx context.Context, cmd *exec.Cmd) error

	// ExecuteWithOutput runs a command and returns its standard output
	ExecuteWithOutput(ctx context.Context, cmd *exec.Cmd) (string, error)
}

// ExecExecutor is the default implementation of CommandExecutor
// that delegates to the os/exec package
type ExecExecutor struct{}

// NewExecExecutor creates a new ExecExecutor
func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{}
}

// Execute implements CommandExecutor.Execute
func (e *ExecExecutor) Execute(ctx context.Context, cmd *exec.Cmd) error {
	_, err := e.ExecuteWithOutput(ctx, cmd)
	return err
}

// ExecuteWithOutput implements CommandExecutor.ExecuteWithOutput
func (e *ExecExecutor) ExecuteWithOutput(ctx context.Context, cmd *exec.Cmd) (string, error) {
	operation, args := splitArgs(cmd.Args)
	if err := ctx.Err(); err != nil {
		return "", errors.NewGitError(operation, args, err, "")
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// Keep the exit status reachable through errors.As
		wrappedErr := errors.Join(errors.ErrGitOperationFailed, err)
		return "", errors.NewGitError(operation, args, wrappedErr, stderr.String())
	}

	return stdout.String(), nil
}

// splitArgs extracts the git subcommand and its arguments, skipping the
// program name and any leading "-C <dir>" or "-c <key=value>" options.
func splitArgs(argv []string) (string, []string) {
	if len(argv) == 0 {
		return "", nil
	}
	rest := argv[1:]
	for len(rest) >= 2 && (rest[0] == "-C" || rest[0] == "-c") {
		rest = rest[2:]
	}
	if len(rest) == 0 {
		return argv[0], nil
	}
	return rest[0], rest[1:]
}
