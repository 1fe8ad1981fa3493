// Package check implements the document integrity checkers. Each checker is
// a pure function of a parsed document and its rules; none mutates the
// document.
package check

import (
	"path"
	"strings"
)

// DefaultDuplicateWindow is the line distance within which two duplicated
// headings are treated as one appended block.
const DefaultDuplicateWindow = 20

// DefaultRequiredKeys are the frontmatter keys every document must define.
var DefaultRequiredKeys = []string{"title", "description", "category", "last_updated"}

// Rules configures the frontmatter and structure checkers.
type Rules struct {
	// RequiredKeys lists frontmatter keys that must be present, in report order.
	RequiredKeys []string
	// Sections maps a document category to its required level-2 heading texts.
	Sections map[string][]string
	// DuplicateWindow bounds the distance between duplicated headings that
	// triggers a truncation proposal. Zero uses DefaultDuplicateWindow.
	DuplicateWindow int
}

// DefaultRules returns Rules with the default required keys and no
// category section requirements.
func DefaultRules() Rules {
	return Rules{
		RequiredKeys:    append([]string(nil), DefaultRequiredKeys...),
		Sections:        map[string][]string{},
		DuplicateWindow: DefaultDuplicateWindow,
	}
}

// CategoryOf derives the category of a repository-relative document path:
// the longest category in Sections whose segments appear as consecutive
// directory segments of p ("getting-started" matches
// "docs/getting-started/install.md"). It returns "" when none matches.
func (r Rules) CategoryOf(p string) string {
	dir := "/" + path.Dir(path.Clean(p)) + "/"
	best := ""
	for category := range r.Sections {
		c := strings.Trim(category, "/")
		if c == "" || !strings.Contains(dir, "/"+c+"/") {
			continue
		}
		if len(category) > len(best) || (len(category) == len(best) && category < best) {
			best = category
		}
	}
	return best
}

func (r Rules) window() int {
	if r.DuplicateWindow > 0 {
		return r.DuplicateWindow
	}
	return DefaultDuplicateWindow
}
