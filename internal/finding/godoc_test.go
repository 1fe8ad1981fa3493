package finding_test

import (
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/eykd/docint/internal/finding"
)

// TestCategory_GoDocComments parses types.go so every Category constant
// keeps a doc comment describing the defect it reports.
func TestCategory_GoDocComments(t *testing.T) {
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed to resolve current file path")
	}
	typesFile := filepath.Join(filepath.Dir(thisFile), "types.go")

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, typesFile, nil, parser.ParseComments)
	if err != nil {
		t.Fatalf("failed to parse types.go: %v", err)
	}
	docs := constDocs(f)

	tests := []struct {
		constant string
		wantDoc  string
	}{
		{"FrontmatterMissing", "does not begin with"},
		{"FrontmatterFieldMissing", "required key is absent"},
		{"FrontmatterDuplicate", "second"},
		{"StructureSectionMissing", "level-2 heading required"},
		{"StructureDuplicateSection", "more than once"},
		{"LinkBroken", "does not resolve"},
		{"CodeBlockUntagged", "no language tag"},
		{"CodeBlockMalformedFence", "closing code fence carries a token"},
		{"DocumentUnreadable", "could not be read"},
	}
	if len(tests) != len(finding.Categories) {
		t.Fatalf("%d categories documented here, %d defined", len(tests), len(finding.Categories))
	}

	for _, tt := range tests {
		t.Run(tt.constant, func(t *testing.T) {
			doc, ok := docs[tt.constant]
			if !ok {
				t.Fatalf("constant %s has no doc comment in types.go", tt.constant)
			}
			if !strings.HasPrefix(doc, tt.constant+" indicates") {
				t.Errorf("doc for %s should start with %q, got %q", tt.constant, tt.constant+" indicates", doc)
			}
			if !strings.Contains(doc, tt.wantDoc) {
				t.Errorf("doc for %s = %q, want it to mention %q", tt.constant, strings.TrimSpace(doc), tt.wantDoc)
			}
		})
	}
}

// constDocs maps constant names in f to their doc comment text.
func constDocs(f *ast.File) map[string]string {
	docs := make(map[string]string)
	for _, decl := range f.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.CONST {
			continue
		}
		for _, spec := range genDecl.Specs {
			valSpec, ok := spec.(*ast.ValueSpec)
			if !ok || valSpec.Doc == nil {
				continue
			}
			for _, name := range valSpec.Names {
				docs[name.Name] = valSpec.Doc.Text()
			}
		}
	}
	return docs
}
