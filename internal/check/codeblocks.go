package check

import (
	"github.com/eykd/docint/internal/document"
	"github.com/eykd/docint/internal/finding"
)

// CodeBlockStats aggregates the fenced code blocks of a document.
type CodeBlockStats struct {
	Total int `json:"total"`
	// ByLanguage counts blocks per opening-fence tag; untagged blocks count under "".
	ByLanguage map[string]int `json:"by_language"`
}

// CodeBlocks reports untagged opening fences and malformed closing fences,
// and returns per-language counts.
//
// A closing fence carrying a token (a stray "```rust" on the closing line) is
// reported even when the opening fence is correctly tagged. A fence left open
// at end of file is reported as malformed.
func CodeBlocks(doc *document.Document) ([]finding.Finding, CodeBlockStats) {
	stats := CodeBlockStats{ByLanguage: map[string]int{}}
	var findings []finding.Finding
	for _, b := range doc.CodeBlocks {
		stats.Total++
		stats.ByLanguage[b.Language]++

		if b.Language == "" {
			findings = append(findings, finding.New(finding.CodeBlockUntagged, b.StartLine,
				"code block at lines %d-%d has no language tag", b.StartLine, b.EndLine))
		}
		switch {
		case !b.Closed:
			findings = append(findings, finding.New(finding.CodeBlockMalformedFence, b.StartLine,
				"code block opened at line %d is never closed", b.StartLine))
		case b.CloseToken != "":
			findings = append(findings, finding.New(finding.CodeBlockMalformedFence, b.EndLine,
				"closing fence at line %d carries token %q; closing fences must be bare", b.EndLine, b.CloseToken))
		}
	}
	return findings, stats
}
