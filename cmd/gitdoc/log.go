package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bashhack/gitdoc/internal/errors"
)

const logTimeLayout = "Mon Jan 2 15:04:05 2006"

func (a *App) logCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log [path]",
		Short: "List versions, newest first",
		Long: `List the versions of the repository, or of one file when path is given.
The abbreviated hash in the first column is what restore, squash and undo
expect.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContext(cmd.Context(), func(c *cmdContext) error {
				path := ""
				if len(args) == 1 {
					rel, err := a.repoRelative(c.Repo.Root(), args[0])
					if err != nil {
						return err
					}
					path = rel
				}
				return a.printLog(cmd.Context(), c, path, limit)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of versions to list (0 for all)")
	return cmd
}

func (a *App) printLog(ctx context.Context, c *cmdContext, path string, limit int) error {
	entries, err := c.Repo.Log(ctx, limit, path)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(a.Stdout, "No versions yet")
		return nil
	}

	yellow := color.New(color.FgYellow)
	faint := color.New(color.Faint)
	for _, e := range entries {
		_, _ = yellow.Fprintf(a.Stdout, "%s ", e.ShortHash())
		_, _ = faint.Fprintf(a.Stdout, "%s ", e.When.Local().Format(logTimeLayout))
		_, _ = fmt.Fprintln(a.Stdout, e.Title())
	}
	return nil
}

// repoRelative resolves p, given relative to the working directory, to a
// slash-separated path inside root.
func (a *App) repoRelative(root, p string) (string, error) {
	if !filepath.IsAbs(p) {
		wd, err := a.getwd()
		if err != nil {
			return "", errors.Wrap(err, "failed to determine the working directory")
		}
		p = filepath.Join(wd, p)
	}
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Wrapf(errors.ErrInvalidConfiguration, "%s is outside the repository", p)
	}
	return filepath.ToSlash(rel), nil
}
