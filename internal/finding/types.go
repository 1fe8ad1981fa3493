// Package finding defines the diagnostic records produced by the integrity checkers.
package finding

import (
	"fmt"
	"sort"
)

// Category identifies the defect class a Finding reports.
type Category string

const (
	// FrontmatterMissing indicates the document does not begin with a "---" delimited frontmatter block.
	FrontmatterMissing Category = "FrontmatterMissing"
	// FrontmatterFieldMissing indicates a required key is absent from the authoritative frontmatter block.
	FrontmatterFieldMissing Category = "FrontmatterFieldMissing"
	// FrontmatterDuplicate indicates a second "---" delimited block appears after the first one closes.
	FrontmatterDuplicate Category = "FrontmatterDuplicate"
	// StructureSectionMissing indicates a level-2 heading required by the document category is absent.
	StructureSectionMissing Category = "StructureSectionMissing"
	// StructureDuplicateSection indicates the same section heading occurs more than once.
	StructureDuplicateSection Category = "StructureDuplicateSection"
	// LinkBroken indicates an internal link target does not resolve to an existing file.
	LinkBroken Category = "LinkBroken"
	// CodeBlockUntagged indicates an opening code fence carries no language tag.
	CodeBlockUntagged Category = "CodeBlockUntagged"
	// CodeBlockMalformedFence indicates a closing code fence carries a token or a fence is never closed.
	CodeBlockMalformedFence Category = "CodeBlockMalformedFence"
	// DocumentUnreadable indicates the document could not be read or decoded.
	DocumentUnreadable Category = "DocumentUnreadable"
)

// Categories lists every Category in report order.
var Categories = []Category{
	FrontmatterMissing,
	FrontmatterFieldMissing,
	FrontmatterDuplicate,
	StructureSectionMissing,
	StructureDuplicateSection,
	LinkBroken,
	CodeBlockUntagged,
	CodeBlockMalformedFence,
	DocumentUnreadable,
}

// Severity classifies the impact level of a Finding.
type Severity string

const (
	// SeverityError indicates a defect that must be fixed.
	SeverityError Severity = "error"
	// SeverityWarning indicates a defect that should be reviewed.
	SeverityWarning Severity = "warning"
)

// defaultSeverity maps each category to the severity its checker reports.
var defaultSeverity = map[Category]Severity{
	FrontmatterMissing:        SeverityError,
	FrontmatterFieldMissing:   SeverityError,
	FrontmatterDuplicate:      SeverityError,
	StructureSectionMissing:   SeverityWarning,
	StructureDuplicateSection: SeverityWarning,
	LinkBroken:                SeverityError,
	CodeBlockUntagged:         SeverityWarning,
	CodeBlockMalformedFence:   SeverityError,
	DocumentUnreadable:        SeverityError,
}

// SeverityOf returns the severity reported for category c.
func SeverityOf(c Category) Severity {
	if s, ok := defaultSeverity[c]; ok {
		return s
	}
	return SeverityWarning
}

// Finding is a single defect produced by one checker against one document.
type Finding struct {
	// Category is the defect class.
	Category Category `json:"category"`
	// Severity is derived from Category.
	Severity Severity `json:"severity"`
	// Message is a human-readable description of the defect.
	Message string `json:"message"`
	// Line is the 1-based source line, or 0 for document-level findings.
	Line int `json:"line,omitempty"`
	// Target is the raw link target (LinkBroken only).
	Target string `json:"target,omitempty"`
	// Resolved is the candidate path the target resolved to (LinkBroken only).
	Resolved string `json:"resolved,omitempty"`
	// Lines lists every occurrence line (StructureDuplicateSection only).
	Lines []int `json:"lines,omitempty"`
	// TruncateAt is an advisory cut line for trailing duplicated content.
	// Zero means no proposal.
	TruncateAt int `json:"truncate_at,omitempty"`
}

// New constructs a Finding for category c with a formatted message.
func New(c Category, line int, format string, args ...any) Finding {
	return Finding{
		Category: c,
		Severity: SeverityOf(c),
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
	}
}

// Count returns the number of findings in fs with category c.
func Count(fs []Finding, c Category) int {
	n := 0
	for _, f := range fs {
		if f.Category == c {
			n++
		}
	}
	return n
}

// SortByLine orders findings by line, keeping checker order for equal lines.
// Document-level findings (line 0) sort first.
func SortByLine(fs []Finding) {
	sort.SliceStable(fs, func(i, j int) bool {
		return fs[i].Line < fs[j].Line
	})
}
