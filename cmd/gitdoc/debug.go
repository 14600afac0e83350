package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bashhack/gitdoc/internal/llm"
)

func (a *App) debugCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "debug",
		Short: "Show the AI settings and whether the configured model is available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContext(cmd.Context(), func(c *cmdContext) error {
				return a.printDebug(cmd.Context(), c)
			})
		},
	}
}

func (a *App) printDebug(ctx context.Context, c *cmdContext) error {
	s := c.Store.Snapshot()
	vendor := llm.VendorFor(s.AIModel)

	w := a.Stdout
	_, _ = fmt.Fprintln(w, "AI settings:")
	_, _ = fmt.Fprintf(w, "  enabled:                %t\n", s.AIEnabled)
	_, _ = fmt.Fprintf(w, "  model:                  %s (vendor %s)\n", s.AIModel, vendor)
	_, _ = fmt.Fprintf(w, "  max files:              %d\n", s.AIMaxFiles)
	_, _ = fmt.Fprintf(w, "  max diff length:        %d\n", s.AIMaxDiffLength)
	_, _ = fmt.Fprintf(w, "  use emojis:             %t\n", s.AIUseEmojis)
	_, _ = fmt.Fprintf(w, "  use consistent emojis:  %t\n", s.AIUseConsistentEmojis)
	_, _ = fmt.Fprintf(w, "  custom instructions:    %q\n", s.AICustomInstructions)
	_, _ = fmt.Fprintln(w)

	if c.Service == nil {
		_, _ = fmt.Fprintln(w, "No AI backend could be created.")
		return nil
	}

	models, err := c.Service.ListModels(ctx, llm.Filter{Vendor: vendor, Family: s.AIModel})
	if err != nil {
		return err
	}
	if len(models) > 0 {
		m := models[0]
		_, _ = fmt.Fprintln(w, "Model availability:")
		_, _ = fmt.Fprintf(w, "  id:       %s\n", m.ID)
		_, _ = fmt.Fprintf(w, "  vendor:   %s\n", m.Vendor)
		_, _ = fmt.Fprintf(w, "  version:  %s\n", m.Version)
		return nil
	}

	all, err := c.Service.ListModels(ctx, llm.Filter{})
	if err != nil {
		return err
	}
	if len(all) == 0 {
		_, _ = fmt.Fprintf(w, "No models available. Set %s, %s or %s.\n",
			llm.EnvOpenAIKey, llm.EnvAnthropicKey, llm.EnvGeminiKey)
		return nil
	}

	families := make([]string, 0, len(all))
	for _, m := range all {
		families = append(families, m.Family)
	}
	slices.Sort(families)
	families = slices.Compact(families)
	_, _ = fmt.Fprintf(w, "Model %s is not available. Available families: %s\n", s.AIModel, strings.Join(families, ", "))
	return nil
}
