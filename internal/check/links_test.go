package check_test

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/eykd/docint/internal/check"
	"github.com/eykd/docint/internal/document"
	"github.com/eykd/docint/internal/finding"
)

const repoRoot = "/repo"

// newRepo returns a resolver over an in-memory repository containing files.
func newRepo(t *testing.T, files ...string) *check.Resolver {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, f := range files {
		if err := afero.WriteFile(fs, repoRoot+"/"+f, []byte("# x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	r, err := check.NewResolver(fs, repoRoot)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestClassifyTarget(t *testing.T) {
	tests := map[string]check.LinkForm{
		"https://example.com/a.md": check.FormExternal,
		"http://example.com":       check.FormExternal,
		"mailto:dev@example.com":   check.FormExternal,
		"#section":                 check.FormExternal,
		"/docs/a.md":               check.FormAbsolute,
		"../a.md":                  check.FormParentRelative,
		"..":                       check.FormParentRelative,
		"./a.md":                   check.FormSameDirectory,
		"a.md":                     check.FormSameDirectory,
		"sub/a.md#anchor":          check.FormSameDirectory,
	}
	for target, want := range tests {
		if got := check.ClassifyTarget(target); got != want {
			t.Errorf("ClassifyTarget(%q) = %v, want %v", target, got, want)
		}
	}
}

func TestLinks_EquivalentFormsResolve(t *testing.T) {
	r := newRepo(t, "docs/a/b.md", "docs/a/c.md", "docs/x.md", "README.md")
	src := "[1](./c.md) [2](c.md) [3](/docs/a/c.md) [4](../x.md) [5](../../README.md) [6](c.md#usage)\n"
	doc := document.Parse("docs/a/b.md", []byte(src))
	if got := check.Links(doc, r); len(got) != 0 {
		t.Errorf("findings = %+v, want none", got)
	}
}

func TestLinks_ExternalAndAnchorsIgnored(t *testing.T) {
	r := newRepo(t, "docs/a.md")
	src := "[web](https://example.com/missing.md) [plain](http://x) [top](#top) [mail](mailto:a@b)\n"
	doc := document.Parse("docs/a.md", []byte(src))
	if got := check.Links(doc, r); len(got) != 0 {
		t.Errorf("findings = %+v, want none", got)
	}
}

func TestLinks_Broken(t *testing.T) {
	r := newRepo(t, "docs/a/b.md", "docs/a/guide.md", "docs/a/Setup.md", "docs/space doc.md")
	tests := []struct {
		name         string
		target       string
		wantBroken   bool
		wantResolved string
	}{
		{"missing file", "./missing.md", true, "docs/a/missing.md"},
		{"missing extension is not inferred", "guide", true, "docs/a/guide"},
		{"case mismatch", "setup.md", true, "docs/a/setup.md"},
		{"directory is not a file", "../a", true, "docs/a"},
		{"escapes repository root", "../../../outside.md", true, "../outside.md"},
		{"absolute missing", "/docs/nope.md", true, "docs/nope.md"},
		{"percent-encoded target", "../space%20doc.md", false, ""},
		{"collapses nested parents", "../a/../a/guide.md", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := document.Parse("docs/a/b.md", []byte("see [x]("+tt.target+")\n"))
			got := check.Links(doc, r)
			if !tt.wantBroken {
				if len(got) != 0 {
					t.Fatalf("findings = %+v, want none", got)
				}
				return
			}
			if len(got) != 1 {
				t.Fatalf("findings = %+v, want one", got)
			}
			f := got[0]
			if f.Category != finding.LinkBroken || f.Target != tt.target || f.Resolved != tt.wantResolved || f.Line != 1 {
				t.Errorf("finding = %+v, want LinkBroken target %q resolved %q", f, tt.target, tt.wantResolved)
			}
		})
	}
}

func TestLinks_NoLinks(t *testing.T) {
	r := newRepo(t)
	doc := document.Parse("a.md", []byte("# Nothing to see\n"))
	if got := check.Links(doc, r); got != nil {
		t.Errorf("findings = %+v, want nil", got)
	}
	if n := check.InternalLinkCount(doc); n != 0 {
		t.Errorf("InternalLinkCount = %d", n)
	}
}

func TestLinks_MissingScenario(t *testing.T) {
	r := newRepo(t, "docs/a.md")
	doc := document.Parse("docs/a.md", []byte("[x](./missing.md)\n"))
	got := check.Links(doc, r)
	if len(got) != 1 || got[0].Category != finding.LinkBroken || got[0].Target != "./missing.md" {
		t.Errorf("findings = %+v, want one LinkBroken for ./missing.md", got)
	}
}
