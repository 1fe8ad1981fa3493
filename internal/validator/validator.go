// Package validator composes the integrity checkers into a per-document result.
package validator

import (
	"context"

	"github.com/eykd/docint/internal/check"
	"github.com/eykd/docint/internal/document"
	"github.com/eykd/docint/internal/finding"
	"github.com/eykd/docint/internal/logger"
)

// DocumentResult is the outcome of validating one document.
type DocumentResult struct {
	Path     string            `json:"path"`
	Category string            `json:"category,omitempty"`
	Tier     int               `json:"tier,omitempty"`
	Findings []finding.Finding `json:"findings"`
	// CodeBlocks is the number of fenced code blocks.
	CodeBlocks int `json:"code_blocks"`
	// CodeBlockLanguages counts blocks per language tag ("" for untagged).
	CodeBlockLanguages map[string]int `json:"code_block_languages,omitempty"`
	// Links is the number of internal links checked.
	Links int `json:"links"`
	// BrokenLinks is the number of LinkBroken findings.
	BrokenLinks int `json:"broken_links"`
}

// HasFindings reports whether the result carries any finding.
func (r DocumentResult) HasFindings() bool {
	return len(r.Findings) > 0
}

// Validator validates documents against a repository and a rule set.
// It holds no per-document state and is safe for concurrent use.
type Validator struct {
	resolver *check.Resolver
	rules    check.Rules
}

// New returns a Validator resolving links with resolver and checking rules.
func New(resolver *check.Resolver, rules check.Rules) *Validator {
	return &Validator{resolver: resolver, rules: rules}
}

// Rules returns the validator's rule set.
func (v *Validator) Rules() check.Rules {
	return v.rules
}

// Validate runs every checker against doc and concatenates their findings
// in a fixed order: frontmatter, structure, links, code blocks. Each checker
// reports in source order, so repeated runs over the same document produce
// identical results.
func (v *Validator) Validate(ctx context.Context, doc *document.Document) DocumentResult {
	log := logger.FromContext(ctx)
	category := v.rules.CategoryOf(doc.Path)
	result := DocumentResult{Path: doc.Path, Category: category, Findings: []finding.Finding{}}

	fm := check.Frontmatter(doc, v.rules.RequiredKeys)
	log.Debug("frontmatter checked", "path", doc.Path, "findings", len(fm))

	st := check.Structure(doc, category, v.rules)
	log.Debug("structure checked", "path", doc.Path, "category", category, "findings", len(st))

	ln := check.Links(doc, v.resolver)
	log.Debug("links checked", "path", doc.Path, "links", check.InternalLinkCount(doc), "broken", len(ln))

	cb, stats := check.CodeBlocks(doc)
	log.Debug("code blocks checked", "path", doc.Path, "blocks", stats.Total, "findings", len(cb))

	for _, part := range [][]finding.Finding{fm, st, ln, cb} {
		result.Findings = append(result.Findings, part...)
	}
	result.CodeBlocks = stats.Total
	result.CodeBlockLanguages = stats.ByLanguage
	result.Links = check.InternalLinkCount(doc)
	result.BrokenLinks = len(ln)
	return result
}

// ValidateFile loads the repository-relative path rel and validates it.
// When the file cannot be read the checkers run against an empty document,
// so every required element is reported absent, and a DocumentUnreadable
// finding leads the result.
func (v *Validator) ValidateFile(ctx context.Context, rel string) DocumentResult {
	doc, err := document.Load(v.resolver.Fs(), v.resolver.Root(), rel)
	if err == nil {
		return v.Validate(ctx, doc)
	}

	logger.FromContext(ctx).Warn("document unreadable", "path", rel, "error", err)
	result := v.Validate(ctx, document.Empty(rel))
	unreadable := finding.New(finding.DocumentUnreadable, 0, "cannot read document: %v", err)
	result.Findings = append([]finding.Finding{unreadable}, result.Findings...)
	return result
}
