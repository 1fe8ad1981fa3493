package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/eykd/docint/internal/batch"
	"github.com/eykd/docint/internal/tier"
)

func newPlanCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <directory>",
		Short: "Show the tier allocation and sample for a directory without validating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonMode, _ := cmd.Flags().GetBool("json")

			opts, err := a.batchOptions(cmd, args[0])
			if err != nil {
				return err
			}
			_, alloc, err := batch.Plan(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if jsonMode {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(alloc); err != nil {
					return fmt.Errorf("encoding allocation: %w", err)
				}
				return nil
			}
			printAllocation(cmd.OutOrStdout(), alloc)
			return nil
		},
	}

	addRepoRootFlag(cmd)
	cmd.Flags().Bool("full", false, "select every document")
	cmd.Flags().Uint64("seed", 0, "sample seed (default: random)")
	cmd.Flags().Bool("json", false, "output the allocation as JSON")
	return cmd
}

// printAllocation writes the seed, per-tier and per-category counts, and
// the selected paths.
func printAllocation(w io.Writer, alloc tier.Allocation) {
	fmt.Fprintf(w, "seed %d\n", alloc.Seed)
	for _, t := range alloc.Tiers {
		fmt.Fprintf(w, "%s %3.0f%% %d/%d\n", t.Tier, t.Percentage*100, t.Sampled, t.Population)
	}
	for _, c := range alloc.Categories {
		name := c.Category
		if name == "" {
			name = "(uncategorized)"
		}
		fmt.Fprintf(w, "category %s %d/%d\n", sanitizeText(name), c.Sampled, c.Population)
	}
	for _, p := range alloc.Selected {
		fmt.Fprintln(w, sanitizeText(p))
	}
}
