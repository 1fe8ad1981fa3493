package check_test

import (
	"strings"
	"testing"

	"github.com/eykd/docint/internal/check"
	"github.com/eykd/docint/internal/document"
	"github.com/eykd/docint/internal/finding"
)

// parse builds a document at docs/guide.md from src.
func parse(src string) *document.Document {
	return document.Parse("docs/guide.md", []byte(src))
}

// categoriesOf returns the categories of fs in order.
func categoriesOf(fs []finding.Finding) []finding.Category {
	out := make([]finding.Category, len(fs))
	for i, f := range fs {
		out[i] = f.Category
	}
	return out
}

const completeFrontmatter = "---\n" +
	"title: \"Guide\"\n" +
	"description: How to\n" +
	"category: guides\n" +
	"last_updated: 2024-05-01\n" +
	"---\n"

func TestFrontmatter(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		keys     []string
		want     []finding.Category
		wantKeys []string // keys named by FrontmatterFieldMissing, in order
	}{
		{
			name: "complete block has no findings",
			src:  completeFrontmatter + "# Guide\n",
			keys: check.DefaultRequiredKeys,
		},
		{
			name: "missing block stops further checks",
			src:  "# Guide\n",
			keys: check.DefaultRequiredKeys,
			want: []finding.Category{finding.FrontmatterMissing},
		},
		{
			name:     "missing description",
			src:      "---\ntitle: \"X\"\n---\n# X\n## Overview\n",
			keys:     []string{"title", "description"},
			want:     []finding.Category{finding.FrontmatterFieldMissing},
			wantKeys: []string{"description"},
		},
		{
			name:     "missing keys reported in configured order",
			src:      "---\ntitle: X\n---\n",
			keys:     check.DefaultRequiredKeys,
			want:     []finding.Category{finding.FrontmatterFieldMissing, finding.FrontmatterFieldMissing, finding.FrontmatterFieldMissing},
			wantKeys: []string{"description", "category", "last_updated"},
		},
		{
			name: "duplicate block flagged once, first block authoritative",
			src:  completeFrontmatter + "# Guide\n" + "---\ntitle: Other\n---\n" + "---\nfoo: bar\n---\n",
			keys: check.DefaultRequiredKeys,
			want: []finding.Category{finding.FrontmatterDuplicate},
		},
		{
			name:     "duplicate block does not fill keys missing from the first",
			src:      "---\ntitle: X\n---\n---\ndescription: Y\n---\n",
			keys:     []string{"title", "description"},
			want:     []finding.Category{finding.FrontmatterDuplicate, finding.FrontmatterFieldMissing},
			wantKeys: []string{"description"},
		},
		{
			name: "malformed YAML still checks key presence",
			src:  "---\ntitle: [oops\ndescription: d\n---\n",
			keys: []string{"title", "description"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := check.Frontmatter(parse(tt.src), tt.keys)
			if cats := categoriesOf(got); !equalCategories(cats, tt.want) {
				t.Fatalf("categories = %v, want %v", cats, tt.want)
			}
			var keys []string
			for _, f := range got {
				if f.Category != finding.FrontmatterFieldMissing {
					continue
				}
				for _, k := range tt.wantKeys {
					if strings.Contains(f.Message, `"`+k+`"`) {
						keys = append(keys, k)
					}
				}
			}
			if strings.Join(keys, ",") != strings.Join(tt.wantKeys, ",") {
				t.Errorf("missing keys = %v, want %v", keys, tt.wantKeys)
			}
		})
	}
}

func TestFrontmatter_DuplicateNeedsKeys(t *testing.T) {
	tests := []struct {
		body string
		want int
	}{
		{body: "title: X\n", want: 1},
		{body: "title: [unclosed\n", want: 1},
		{body: "", want: 0},
		{body: "plain text\n", want: 0},
		{body: "Part two of the guide.\n\nMore prose.\n", want: 0},
	}
	for _, tt := range tests {
		src := completeFrontmatter + "Intro.\n\n---\n" + tt.body + "---\n"
		got := check.Frontmatter(parse(src), check.DefaultRequiredKeys)
		if n := finding.Count(got, finding.FrontmatterDuplicate); n != tt.want {
			t.Errorf("body %q: FrontmatterDuplicate count = %d, want %d", tt.body, n, tt.want)
		}
	}
}

func equalCategories(a, b []finding.Category) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
