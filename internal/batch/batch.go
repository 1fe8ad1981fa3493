package batch

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/eykd/docint/internal/check"
	"github.com/eykd/docint/internal/logger"
	"github.com/eykd/docint/internal/report"
	"github.com/eykd/docint/internal/tier"
	"github.com/eykd/docint/internal/validator"
)

// Options configures a batch run.
type Options struct {
	Fs afero.Fs
	// Root is the directory scanned for documents.
	Root string
	// RepoRoot resolves root-absolute links and anchors the document paths
	// in the report. It must contain Root; empty uses Root.
	RepoRoot string
	// ReportDir is never scanned, even when it lies inside Root.
	ReportDir string
	Rules     check.Rules
	Allocator *tier.Allocator
	// Full validates every discovered document instead of the tier sample.
	Full bool
	// Workers bounds concurrent validations; values below 1 use one per CPU.
	Workers int
	Exclude []string
	// Now stamps the report; nil uses time.Now.
	Now func() time.Time
}

func (o Options) repoRoot() string {
	if o.RepoRoot != "" {
		return o.RepoRoot
	}
	return o.Root
}

// scanPrefix returns Root relative to the repository root as a slash path,
// "" when they are the same directory.
func (o Options) scanPrefix() (string, error) {
	rel, err := filepath.Rel(filepath.Clean(o.repoRoot()), filepath.Clean(o.Root))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("directory %s is outside repository root %s", o.Root, o.repoRoot())
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

// Plan discovers the documents under opts.Root and allocates them to tiers
// without validating anything. Returned paths are relative to the
// repository root.
func Plan(ctx context.Context, opts Options) ([]string, tier.Allocation, error) {
	if opts.Allocator == nil {
		return nil, tier.Allocation{}, errors.New("batch: allocator is required")
	}
	prefix, err := opts.scanPrefix()
	if err != nil {
		return nil, tier.Allocation{}, err
	}
	paths, err := Discover(opts.Fs, opts.Root, opts.Exclude, opts.ReportDir)
	if err != nil {
		return nil, tier.Allocation{}, err
	}
	if prefix != "" {
		for i, p := range paths {
			paths[i] = path.Join(prefix, p)
		}
	}
	alloc := opts.Allocator.Allocate(paths, opts.Rules.CategoryOf, opts.Full)
	logger.FromContext(ctx).Info("documents allocated",
		"root", opts.Root,
		"repo_root", opts.repoRoot(),
		"discovered", len(paths),
		"selected", len(alloc.Selected),
		"seed", alloc.Seed,
		"full", opts.Full,
	)
	return paths, alloc, nil
}

// Run validates the planned worklist and accumulates an aggregate report.
// Per-document failures become findings; only a missing or unreadable root,
// or cancellation of ctx, fails the run.
func Run(ctx context.Context, opts Options) (*report.AggregateReport, error) {
	paths, alloc, err := Plan(ctx, opts)
	if err != nil {
		return nil, err
	}
	resolver, err := check.NewResolver(opts.Fs, opts.repoRoot())
	if err != nil {
		return nil, err
	}
	v := validator.New(resolver, opts.Rules)

	rep := report.New(opts.repoRoot())
	rep.Directory, _ = opts.scanPrefix()
	rep.DocumentsDiscovered = len(paths)
	rep.Sample = &alloc

	log := logger.FromContext(ctx)
	workers := opts.workers()
	log.Debug("starting validation", "documents", len(alloc.Selected), "workers", workers)

	results := make(chan validator.DocumentResult, workers)
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for res := range results {
			rep.Add(res)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, p := range alloc.Selected {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res := v.ValidateFile(gctx, p)
			res.Tier = int(alloc.Assignments[p])
			select {
			case results <- res:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	err = g.Wait()
	close(results)
	<-collected
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("batch validation: %w", err)
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	rep.Finalize(now())
	log.Info("batch complete",
		"scanned", rep.DocumentsScanned,
		"with_findings", rep.DocumentsWithFindings,
		"broken_links", rep.BrokenLinks,
	)
	return rep, nil
}
