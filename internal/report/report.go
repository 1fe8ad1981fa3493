// Package report accumulates per-document results into an aggregate report
// and renders it as JSON, Markdown or HTML.
package report

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/eykd/docint/internal/finding"
	"github.com/eykd/docint/internal/tier"
	"github.com/eykd/docint/internal/validator"
)

// AggregateReport holds the totals and findings of one batch run.
type AggregateReport struct {
	RunID       string `json:"run_id"`
	GeneratedAt string `json:"generated_at"`
	// Root is the repository root document paths are relative to.
	Root string `json:"root"`
	// Directory is the scanned directory relative to Root; "" is Root itself.
	Directory string `json:"directory,omitempty"`
	// DocumentsDiscovered counts every Markdown file found in the scanned directory.
	DocumentsDiscovered int `json:"documents_discovered"`
	// DocumentsScanned counts the documents actually validated.
	DocumentsScanned      int `json:"documents_scanned"`
	DocumentsWithFindings int `json:"documents_with_findings"`
	// CategoryCounts has an entry for every finding category, zero included.
	CategoryCounts map[finding.Category]int `json:"category_counts"`
	SeverityCounts map[finding.Severity]int `json:"severity_counts"`
	Links          int                      `json:"links"`
	BrokenLinks    int                      `json:"broken_links"`
	CodeBlocks     int                      `json:"code_blocks"`
	// CodeBlockLanguages totals fenced blocks per language tag.
	CodeBlockLanguages map[string]int `json:"code_block_languages"`
	// Sample is the tier allocation the worklist was drawn from.
	Sample *tier.Allocation `json:"sample,omitempty"`
	// Results lists the documents with findings, sorted by path.
	Results []validator.DocumentResult `json:"results"`
}

// New returns an empty report for a run over root.
func New(root string) *AggregateReport {
	r := &AggregateReport{
		RunID:              uuid.NewString(),
		Root:               root,
		CategoryCounts:     make(map[finding.Category]int, len(finding.Categories)),
		SeverityCounts:     map[finding.Severity]int{finding.SeverityError: 0, finding.SeverityWarning: 0},
		CodeBlockLanguages: map[string]int{},
		Results:            []validator.DocumentResult{},
	}
	for _, c := range finding.Categories {
		r.CategoryCounts[c] = 0
	}
	return r
}

// Add accumulates one document result. It is not safe for concurrent use;
// the batch orchestrator calls it from a single collector.
func (r *AggregateReport) Add(res validator.DocumentResult) {
	r.DocumentsScanned++
	r.Links += res.Links
	r.BrokenLinks += res.BrokenLinks
	r.CodeBlocks += res.CodeBlocks
	for lang, n := range res.CodeBlockLanguages {
		r.CodeBlockLanguages[lang] += n
	}
	if !res.HasFindings() {
		return
	}
	r.DocumentsWithFindings++
	for _, f := range res.Findings {
		r.CategoryCounts[f.Category]++
		r.SeverityCounts[f.Severity]++
	}
	r.Results = append(r.Results, res)
}

// Finalize stamps the report with now and sorts results by path so the
// rendered output does not depend on worker scheduling.
func (r *AggregateReport) Finalize(now time.Time) {
	r.GeneratedAt = FormatTime(now)
	sort.SliceStable(r.Results, func(i, j int) bool {
		return r.Results[i].Path < r.Results[j].Path
	})
}

// HasErrors reports whether any accumulated finding has error severity.
func (r *AggregateReport) HasErrors() bool {
	return r.SeverityCounts[finding.SeverityError] > 0
}

// FormatTime formats t as RFC3339 in UTC with second-level precision and a
// "Z" suffix, e.g. "2006-01-02T15:04:05Z".
func FormatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}
