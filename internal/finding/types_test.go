package finding_test

import (
	"testing"

	"github.com/eykd/docint/internal/finding"
)

func TestSeverityOf(t *testing.T) {
	tests := []struct {
		c    finding.Category
		want finding.Severity
	}{
		{finding.FrontmatterMissing, finding.SeverityError},
		{finding.FrontmatterFieldMissing, finding.SeverityError},
		{finding.FrontmatterDuplicate, finding.SeverityError},
		{finding.StructureSectionMissing, finding.SeverityWarning},
		{finding.StructureDuplicateSection, finding.SeverityWarning},
		{finding.LinkBroken, finding.SeverityError},
		{finding.CodeBlockUntagged, finding.SeverityWarning},
		{finding.CodeBlockMalformedFence, finding.SeverityError},
		{finding.DocumentUnreadable, finding.SeverityError},
		{finding.Category("Unknown"), finding.SeverityWarning},
	}
	for _, tt := range tests {
		if got := finding.SeverityOf(tt.c); got != tt.want {
			t.Errorf("SeverityOf(%s) = %s, want %s", tt.c, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	f := finding.New(finding.LinkBroken, 7, "broken link %q", "a.md")
	if f.Category != finding.LinkBroken || f.Severity != finding.SeverityError || f.Line != 7 {
		t.Errorf("New() = %+v", f)
	}
	if f.Message != `broken link "a.md"` {
		t.Errorf("Message = %q", f.Message)
	}
}

func TestCount(t *testing.T) {
	fs := []finding.Finding{
		finding.New(finding.LinkBroken, 1, "a"),
		finding.New(finding.CodeBlockUntagged, 2, "b"),
		finding.New(finding.LinkBroken, 3, "c"),
	}
	if got := finding.Count(fs, finding.LinkBroken); got != 2 {
		t.Errorf("Count(LinkBroken) = %d, want 2", got)
	}
	if got := finding.Count(fs, finding.DocumentUnreadable); got != 0 {
		t.Errorf("Count(DocumentUnreadable) = %d, want 0", got)
	}
}

func TestSortByLine_IsStable(t *testing.T) {
	fs := []finding.Finding{
		finding.New(finding.LinkBroken, 5, "link"),
		finding.New(finding.FrontmatterFieldMissing, 1, "title"),
		finding.New(finding.FrontmatterFieldMissing, 1, "description"),
		finding.New(finding.FrontmatterMissing, 0, "none"),
	}
	finding.SortByLine(fs)
	want := []string{"none", "title", "description", "link"}
	for i, f := range fs {
		if f.Message != want[i] {
			t.Errorf("position %d = %q, want %q", i, f.Message, want[i])
		}
	}
}
