package check

import (
	"github.com/eykd/docint/internal/document"
	"github.com/eykd/docint/internal/finding"
)

// Frontmatter checks the document's frontmatter blocks against requiredKeys.
//
// A missing block yields a single FrontmatterMissing finding and nothing
// else. Extra blocks yield one FrontmatterDuplicate finding; the first block
// stays authoritative and its keys are still checked.
func Frontmatter(doc *document.Document, requiredKeys []string) []finding.Finding {
	if len(doc.Frontmatter) == 0 {
		return []finding.Finding{
			finding.New(finding.FrontmatterMissing, 0, "document has no frontmatter block"),
		}
	}

	var findings []finding.Finding
	first := doc.Frontmatter[0]

	if len(doc.Frontmatter) > 1 {
		dup := doc.Frontmatter[1]
		findings = append(findings, finding.New(finding.FrontmatterDuplicate, dup.StartLine,
			"duplicate frontmatter block at lines %d-%d; first block at lines %d-%d is authoritative, remove the duplicate manually",
			dup.StartLine, dup.EndLine, first.StartLine, first.EndLine))
	}

	for _, key := range requiredKeys {
		if !first.Has(key) {
			findings = append(findings, finding.New(finding.FrontmatterFieldMissing, first.StartLine,
				"frontmatter is missing required key %q", key))
		}
	}
	return findings
}
