package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bashhack/gitdoc/internal/errors"
	"github.com/bashhack/gitdoc/internal/watcher"
)

const squashPrompt = "Enter the name to give to the new squashed version"

func (a *App) enableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable",
		Short: "Turn auto-commit on for the repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.setEnabled(cmd.Context(), true)
		},
	}
}

func (a *App) disableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable",
		Short: "Turn auto-commit off for the repository",
		Long: `Turn auto-commit off. A running watch session picks the change up on the
next repository event and reports itself as paused.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.setEnabled(cmd.Context(), false)
		},
	}
}

func (a *App) setEnabled(ctx context.Context, enabled bool) error {
	return a.withContext(ctx, func(c *cmdContext) error {
		if err := c.Store.SetEnabled(enabled); err != nil {
			return err
		}
		if enabled {
			c.Logger.Success("Auto-commit enabled for %s", c.Repo.Root())
		} else {
			c.Logger.Success("Auto-commit disabled for %s", c.Repo.Root())
		}
		return nil
	})
}

func (a *App) commitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commit",
		Short: "Commit pending changes now",
		Long: `Commit the pending changes immediately, exactly as the watch session
would, even when auto-commit is disabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContext(cmd.Context(), func(c *cmdContext) error {
				result, err := c.Orchestrator.CommitNow(cmd.Context(), c.Repo)
				return a.report(c, result, err)
			})
		},
	}
}

func (a *App) restoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <version> <path>",
		Short: "Restore a file to an earlier version",
		Long: `Bring path back to its content at version and commit the result. The
history is kept: restoring creates a new version.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContext(cmd.Context(), func(c *cmdContext) error {
				path, err := a.repoRelative(c.Repo.Root(), args[1])
				if err != nil {
					return err
				}
				result, err := c.Orchestrator.RestoreVersion(cmd.Context(), c.Repo, args[0], path)
				return a.report(c, result, err)
			})
		},
	}
}

func (a *App) squashCmd() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "squash <version>",
		Short: "Squash a version and everything after it into one",
		Long: `Replace version and every later version with a single commit holding the
current content. Without --message the new version's name is asked for,
defaulting to the message of version.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContext(cmd.Context(), func(c *cmdContext) error {
				ref := args[0]
				msg := message
				if msg == "" {
					msg = a.interactor().PromptString(squashPrompt, a.versionMessage(cmd.Context(), c, ref))
				}
				result, err := c.Orchestrator.SquashVersions(cmd.Context(), c.Repo, ref, strings.TrimSpace(msg))
				return a.report(c, result, err)
			})
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "Message of the squashed version")
	return cmd
}

func (a *App) undoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo <version>",
		Short: "Undo the changes made by a version",
		Long:  `Commit the inverse of version. The version itself stays in the history.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContext(cmd.Context(), func(c *cmdContext) error {
				result, err := c.Orchestrator.UndoVersion(cmd.Context(), c.Repo, args[0])
				return a.report(c, result, err)
			})
		},
	}
}

// versionMessage finds the message of the version ref names, or "" when
// ref is not a hash prefix of a listed version.
func (a *App) versionMessage(ctx context.Context, c *cmdContext, ref string) string {
	entries, err := c.Repo.Log(ctx, 0, "")
	if err != nil {
		c.Logger.Warning("Failed to read history: %v", err)
		return ""
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Hash, ref) {
			return strings.TrimSpace(e.Message)
		}
	}
	return ""
}

// report turns a manual command's result into user output. Commits and gate
// failures were already reported by the orchestrator.
func (a *App) report(c *cmdContext, result watcher.Result, err error) error {
	if err != nil {
		return err
	}
	switch result.Outcome {
	case watcher.OutcomeNoChanges:
		c.Logger.InfoToUser("Nothing to commit")
	case watcher.OutcomeGateFailed:
		return errors.New("commit blocked by diagnostics")
	}
	return nil
}
