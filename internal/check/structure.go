package check

import (
	"fmt"
	"sort"
	"strings"

	"github.com/eykd/docint/internal/document"
	"github.com/eykd/docint/internal/finding"
)

// Structure checks required level-2 sections for category and reports
// duplicated section headings.
func Structure(doc *document.Document, category string, rules Rules) []finding.Finding {
	var findings []finding.Finding

	present := make(map[string]bool)
	for _, h := range doc.Headings {
		if h.Level == 2 {
			present[h.Text] = true
		}
	}
	for _, section := range rules.Sections[category] {
		if !present[section] {
			findings = append(findings, finding.New(finding.StructureSectionMissing, 0,
				"required section %q missing for category %q", "## "+section, category))
		}
	}

	return append(findings, duplicateSections(doc.Headings, rules.window())...)
}

// headingGroup collects the lines of one heading text; label carries the
// level of its first occurrence.
type headingGroup struct {
	label string
	lines []int
}

func (g headingGroup) second() int { return g.lines[1] }

// duplicateSections groups level >= 2 headings by case-sensitive text,
// whatever their level, and reports each text seen more than once, in order
// of first occurrence.
//
// When the second occurrence of one duplicate lies within window lines of
// the second occurrence of another, the pair looks like a template block
// appended twice; the finding then proposes truncating just before the
// earliest of those second occurrences.
func duplicateSections(headings []document.Heading, window int) []finding.Finding {
	byText := make(map[string]*headingGroup)
	var order []*headingGroup
	for _, h := range headings {
		if h.Level < 2 {
			continue
		}
		g, ok := byText[h.Text]
		if !ok {
			g = &headingGroup{label: strings.Repeat("#", h.Level) + " " + h.Text}
			byText[h.Text] = g
			order = append(order, g)
		}
		g.lines = append(g.lines, h.Line)
	}

	var dups []*headingGroup
	for _, g := range order {
		if len(g.lines) > 1 {
			dups = append(dups, g)
		}
	}

	seconds := make([]int, len(dups))
	for i, g := range dups {
		seconds[i] = g.second()
	}
	sort.Ints(seconds)

	findings := make([]finding.Finding, 0, len(dups))
	for _, g := range dups {
		f := finding.New(finding.StructureDuplicateSection, g.lines[1],
			"section %q appears %d times at lines %s", g.label, len(g.lines), joinInts(g.lines))
		f.Lines = append([]int(nil), g.lines...)
		if cut := truncationPoint(g.second(), seconds, window); cut > 0 {
			f.TruncateAt = cut
			f.Message += fmt.Sprintf("; trailing duplicate content may be cut after line %d", cut)
		}
		findings = append(findings, f)
	}
	return findings
}

// truncationPoint returns the line before the earliest second occurrence
// clustered with own, or 0 when no other duplicate is within window.
// seconds is sorted and includes own.
func truncationPoint(own int, seconds []int, window int) int {
	earliest := own
	clustered := false
	for _, s := range seconds {
		if s == own {
			continue
		}
		d := s - own
		if d < 0 {
			d = -d
		}
		if d <= window {
			clustered = true
			if s < earliest {
				earliest = s
			}
		}
	}
	if !clustered {
		return 0
	}
	return earliest - 1
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}
