package cmd

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/eykd/docint/internal/batch"
	"github.com/eykd/docint/internal/finding"
	"github.com/eykd/docint/internal/logger"
	"github.com/eykd/docint/internal/report"
)

// DefaultReportDir is where batch-validate writes reports when no
// report_path argument is given.
const DefaultReportDir = "docint-report"

func newBatchValidateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch-validate <directory> [report_path]",
		Short: "Validate a tiered sample of the documents under a directory and write reports",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			reportArg := DefaultReportDir
			if len(args) == 2 {
				reportArg = args[1]
			}
			reportDir, err := a.absPath(reportArg)
			if err != nil {
				return fmt.Errorf("resolving report path: %w", err)
			}
			formats, err := a.cfg.Formats()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("format") {
				names, _ := cmd.Flags().GetStringSlice("format")
				if formats, err = report.ParseFormats(names); err != nil {
					return err
				}
				if len(formats) == 0 {
					return fmt.Errorf("--format: at least one format is required")
				}
			}

			opts, err := a.batchOptions(cmd, args[0])
			if err != nil {
				return err
			}
			opts.ReportDir = reportDir

			rep, err := batch.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if rep.HasErrors() {
				logger.FromContext(cmd.Context()).Warn("error-severity findings present",
					"documents", rep.DocumentsWithFindings,
					"errors", rep.SeverityCounts[finding.SeverityError],
				)
			}

			out := cmd.OutOrStdout()
			if dryRun {
				return report.RenderMarkdown(out, rep)
			}
			written, err := report.Write(a.env.Fs, reportDir, formats, rep)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Scanned %d of %d documents; %d with findings.\n",
				rep.DocumentsScanned, rep.DocumentsDiscovered, rep.DocumentsWithFindings)
			if !opts.Full {
				fmt.Fprintf(out, "Sample seed: %d\n", rep.Sample.Seed)
			}
			for _, p := range written {
				fmt.Fprintf(out, "Wrote %s\n", sanitizeText(p))
			}
			return nil
		},
	}

	addRepoRootFlag(cmd)
	cmd.Flags().Bool("dry-run", false, "print the Markdown report to stdout and write nothing")
	cmd.Flags().Bool("full", false, "validate every document instead of the tier sample")
	cmd.Flags().Uint64("seed", 0, "sample seed (default: random, recorded in the report)")
	cmd.Flags().Int("workers", 0, "concurrent validations (default: configuration, then one per CPU)")
	cmd.Flags().StringSlice("format", nil, "report formats: json, markdown, html (default: configuration)")
	return cmd
}

// batchOptions builds the shared discovery and sampling options for dir
// from the configuration and the --repo-root, --full, --seed and --workers
// flags.
func (a *app) batchOptions(cmd *cobra.Command, dir string) (batch.Options, error) {
	root, err := a.absPath(dir)
	if err != nil {
		return batch.Options{}, fmt.Errorf("resolving directory: %w", err)
	}
	repoFlag, _ := cmd.Flags().GetString("repo-root")
	repoRoot, err := a.repoRoot(repoFlag)
	if err != nil {
		return batch.Options{}, err
	}
	seed, err := seedFlag(cmd)
	if err != nil {
		return batch.Options{}, err
	}
	alloc, err := a.cfg.Allocator(seed)
	if err != nil {
		return batch.Options{}, err
	}
	opts := batch.Options{
		Fs:        a.env.Fs,
		Root:      root,
		RepoRoot:  repoRoot,
		Rules:     a.cfg.Rules(),
		Allocator: alloc,
		Workers:   a.cfg.Batch.Workers,
		Exclude:   a.cfg.Batch.Exclude,
		Now:       a.now,
	}
	opts.Full, _ = cmd.Flags().GetBool("full")
	if cmd.Flags().Changed("workers") {
		workers, _ := cmd.Flags().GetInt("workers")
		if workers < 1 {
			return batch.Options{}, fmt.Errorf("--workers must be at least 1")
		}
		opts.Workers = workers
	}
	return opts, nil
}

func addRepoRootFlag(cmd *cobra.Command) {
	cmd.Flags().String("repo-root", "", "repository root for absolute links and report paths (default: current directory)")
}

// seedFlag returns --seed when given, else a fresh random seed.
func seedFlag(cmd *cobra.Command) (uint64, error) {
	if cmd.Flags().Changed("seed") {
		return cmd.Flags().GetUint64("seed")
	}
	return rand.Uint64(), nil
}

