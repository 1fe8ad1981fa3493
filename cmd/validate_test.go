package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/eykd/docint/internal/finding"
	"github.com/eykd/docint/internal/validator"
)

func TestValidate_CleanDocumentPrintsNothing(t *testing.T) {
	env := newTestEnv(t, map[string]string{"docs/guide.md": cleanDoc})
	out, _, err := execute(t, env, "validate", "docs/guide.md")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out != "" {
		t.Errorf("stdout = %q, want empty", out)
	}
}

func TestValidate_HumanOutput(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"docs/guide.md": "# Guide\nSee [x](./missing.md).\n```\ncode\n```\n",
	})
	out, _, err := execute(t, env, "validate", "docs/guide.md")
	if err != nil {
		t.Fatalf("Execute() error = %v (findings alone must not fail)", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	want := []string{
		"docs/guide.md FrontmatterMissing error ",
		"docs/guide.md:2 LinkBroken error ",
		"docs/guide.md:3 CodeBlockUntagged warning ",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), out)
	}
	for i, prefix := range want {
		if !strings.HasPrefix(lines[i], prefix) {
			t.Errorf("line %d = %q, want prefix %q", i, lines[i], prefix)
		}
	}
}

func TestValidate_StrictFailsOnFindings(t *testing.T) {
	env := newTestEnv(t, map[string]string{"guide.md": "# no frontmatter\n"})
	_, _, err := execute(t, env, "validate", "--strict", "guide.md")
	if err == nil || !strings.Contains(err.Error(), "1 finding(s)") {
		t.Errorf("Execute() error = %v, want strict failure", err)
	}

	env = newTestEnv(t, map[string]string{"guide.md": cleanDoc})
	if _, _, err := execute(t, env, "validate", "--strict", "guide.md"); err != nil {
		t.Errorf("Execute() on clean document error = %v", err)
	}
}

func TestValidate_JSONOutput(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"repo/docs/a.md": cleanDoc + "[root](/docs/b.md) [gone](/docs/c.md)\n",
		"repo/docs/b.md": cleanDoc,
	})
	out, _, err := execute(t, env, "validate", "--json", "--repo-root", "repo", "repo/docs/a.md")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	var res validator.DocumentResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if res.Path != "docs/a.md" {
		t.Errorf("Path = %q, want docs/a.md", res.Path)
	}
	if res.Links != 2 || res.BrokenLinks != 1 {
		t.Errorf("links/broken = %d/%d, want 2/1", res.Links, res.BrokenLinks)
	}
	if len(res.Findings) != 1 || res.Findings[0].Category != finding.LinkBroken || res.Findings[0].Target != "/docs/c.md" {
		t.Errorf("Findings = %+v, want one LinkBroken for /docs/c.md", res.Findings)
	}
}

func TestValidate_Errors(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"repo/a.md":  cleanDoc,
		"outside.md": cleanDoc,
	})
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing document", []string{"validate", "nope.md"}, "document not found"},
		{"missing root", []string{"validate", "--repo-root", "/gone", "outside.md"}, "repository root"},
		{"root is a file", []string{"validate", "--repo-root", "outside.md", "outside.md"}, "not a directory"},
		{"outside root", []string{"validate", "--repo-root", "repo", "outside.md"}, "outside repository root"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, env, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Execute() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_RequiresOneArg(t *testing.T) {
	out, errOut, err := execute(t, newTestEnv(t, nil), "validate")
	if err == nil {
		t.Fatal("Execute() error = nil, want argument error")
	}
	if !strings.Contains(out+errOut, "Usage:") {
		t.Errorf("argument errors should print usage, got:\n%s%s", out, errOut)
	}
}
