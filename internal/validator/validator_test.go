package validator_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/spf13/afero"

	"github.com/eykd/docint/internal/check"
	"github.com/eykd/docint/internal/document"
	"github.com/eykd/docint/internal/finding"
	"github.com/eykd/docint/internal/validator"
)

const root = "/repo"

func newValidator(t *testing.T, files map[string]string, rules check.Rules) (*validator.Validator, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for p, content := range files {
		if err := afero.WriteFile(fs, root+"/"+p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	r, err := check.NewResolver(fs, root)
	if err != nil {
		t.Fatal(err)
	}
	return validator.New(r, rules), fs
}

const messyDoc = "---\n" +
	"title: Install\n" +
	"---\n" +
	"# Install\n" +
	"## Overview\n" +
	"See [missing](./missing.md) and [ok](./ok.md).\n" +
	"```\n" +
	"plain\n" +
	"```\n" +
	"```rust\n" +
	"fn main() {}\n" +
	"```rust\n" +
	"## Overview\n"

func TestValidate_ComposesCheckers(t *testing.T) {
	rules := check.Rules{
		RequiredKeys: []string{"title", "description"},
		Sections:     map[string][]string{"getting-started": {"Overview", "Installation"}},
	}
	v, _ := newValidator(t, map[string]string{
		"getting-started/install.md": messyDoc,
		"getting-started/ok.md":      "# ok\n",
	}, rules)

	res := v.ValidateFile(context.Background(), "getting-started/install.md")

	want := []finding.Category{
		finding.FrontmatterFieldMissing,
		finding.StructureSectionMissing,
		finding.StructureDuplicateSection,
		finding.LinkBroken,
		finding.CodeBlockUntagged,
		finding.CodeBlockMalformedFence,
	}
	var got []finding.Category
	for _, f := range res.Findings {
		got = append(got, f.Category)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("categories = %v, want %v", got, want)
	}
	if res.Category != "getting-started" {
		t.Errorf("Category = %q", res.Category)
	}
	if res.CodeBlocks != 2 || res.CodeBlockLanguages["rust"] != 1 || res.CodeBlockLanguages[""] != 1 {
		t.Errorf("code block counters = %d %v", res.CodeBlocks, res.CodeBlockLanguages)
	}
	if res.Links != 2 || res.BrokenLinks != 1 {
		t.Errorf("Links = %d, BrokenLinks = %d, want 2 and 1", res.Links, res.BrokenLinks)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	v, fs := newValidator(t, map[string]string{"docs/a.md": messyDoc}, check.DefaultRules())
	ctx := context.Background()

	first, err := document.Load(fs, root, "docs/a.md")
	if err != nil {
		t.Fatal(err)
	}
	a := v.Validate(ctx, first)
	b := v.Validate(ctx, first)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("results differ between runs:\n%+v\n%+v", a, b)
	}
}

func TestValidate_CleanDocument(t *testing.T) {
	rules := check.Rules{RequiredKeys: []string{"title"}, Sections: map[string][]string{"getting-started": {"Overview"}}}
	v, _ := newValidator(t, map[string]string{
		"getting-started/x.md": "---\ntitle: \"X\"\n---\n# X\n## Overview\n",
	}, rules)
	res := v.ValidateFile(context.Background(), "getting-started/x.md")
	if res.HasFindings() {
		t.Errorf("findings = %+v, want none", res.Findings)
	}
	if res.Findings == nil {
		t.Error("Findings should be an empty slice, not nil")
	}
}

func TestValidateFile_Unreadable(t *testing.T) {
	rules := check.Rules{RequiredKeys: []string{"title"}, Sections: map[string][]string{"docs": {"Overview"}}}
	v, _ := newValidator(t, map[string]string{"docs/other.md": "# other\n"}, rules)

	res := v.ValidateFile(context.Background(), "docs/gone.md")

	want := []finding.Category{
		finding.DocumentUnreadable,
		finding.FrontmatterMissing,
		finding.StructureSectionMissing,
	}
	var got []finding.Category
	for _, f := range res.Findings {
		got = append(got, f.Category)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("categories = %v, want %v", got, want)
	}
	if res.Path != "docs/gone.md" {
		t.Errorf("Path = %q", res.Path)
	}
}
