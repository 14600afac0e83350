package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bashhack/gitdoc/internal/config"
)

// Command builds the command tree. Flags bind to the App, so a fresh tree
// is built for every Execute.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "gitdoc",
		Short: "Automatically commit and sync a git repository",
		Long: `gitdoc watches a git repository and commits its changes after a quiet
period, optionally writing the commit messages with a language model, and
keeps the repository in sync with its remote.

Run without a command to start watching the current repository. Settings are
read from .gitdoc.toml in the repository root, GITDOC_* environment variables
and the flags below, in increasing order of precedence.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWatch(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	a.flags = config.BindFlags(root.PersistentFlags())
	root.PersistentFlags().StringVarP(&a.repoPath, "repo", "C", "", "Repository to operate on (default: the working directory)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Show internal warnings on the terminal")
	root.PersistentFlags().BoolVar(&a.nonInteractive, "non-interactive", false, "Never prompt; decline force pushes and accept default answers")

	root.AddCommand(
		a.watchCmd(),
		a.enableCmd(),
		a.disableCmd(),
		a.commitCmd(),
		a.restoreCmd(),
		a.squashCmd(),
		a.undoCmd(),
		a.logCmd(),
		a.debugCmd(),
		a.versionCmd(),
	)

	root.SetIn(a.Stdin)
	root.SetOut(a.Stdout)
	root.SetErr(a.Stderr)
	return root
}

// Execute runs the command line args and releases the App's resources
// afterwards.
func (a *App) Execute(ctx context.Context, args []string) (err error) {
	defer func() {
		if closeErr := a.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	root := a.Command()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.ShowVersion()
		},
	}
}

// withContext runs fn with a command context and closes it afterwards.
func (a *App) withContext(ctx context.Context, fn func(c *cmdContext) error) error {
	c, err := a.initContext(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}
