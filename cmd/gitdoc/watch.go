package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bashhack/gitdoc/internal/watcher"
)

func (a *App) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the repository and commit changes as they happen",
		Long: `Watch the repository until interrupted. Changes matching file_pattern are
committed auto_commit_delay milliseconds after the last edit, then pushed and
pulled according to auto_push and auto_pull.

Only one watch session may run per repository.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWatch(cmd.Context())
		},
	}
}

// runWatch holds the session lock and watches until ctx is done.
func (a *App) runWatch(ctx context.Context) error {
	return a.withContext(ctx, func(c *cmdContext) error {
		if err := a.acquireLock(c.Repo.Root()); err != nil {
			return err
		}

		session, err := watcher.Watch(ctx, c.Repo, c.Store, c.Orchestrator, c.Syncer, c.State, c.Logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := session.Close(); err != nil {
				c.Logger.Warning("Failed to stop watching: %v", err)
			}
		}()

		settings := c.Store.Snapshot()
		c.Logger.InfoToUser("Watching %s for changes to %s (Ctrl+C to stop)", c.Repo.Root(), settings.FilePattern)
		if !settings.Enabled {
			c.Logger.InfoToUser("Auto-commit is disabled; run 'gitdoc enable' to turn it on")
		}

		<-ctx.Done()
		c.Logger.InfoToUser("Stopping gitdoc...")
		return nil
	})
}
