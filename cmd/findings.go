package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/eykd/docint/internal/finding"
)

// formatFinding renders f as "path:line CATEGORY severity message"; the
// line is omitted for document-level findings.
func formatFinding(path string, f finding.Finding) string {
	loc := sanitizeText(path)
	if f.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, f.Line)
	}
	return fmt.Sprintf("%s %s %s %s", loc, f.Category, f.Severity, sanitizeText(f.Message))
}

// printFindings writes one line per finding, ordered by line.
func printFindings(w io.Writer, path string, findings []finding.Finding) {
	sorted := append([]finding.Finding(nil), findings...)
	finding.SortByLine(sorted)
	for _, f := range sorted {
		fmt.Fprintln(w, formatFinding(path, f))
	}
}

// sanitizeText masks C0 control bytes and DEL so file names and link targets
// echoed in terminal output cannot carry escape sequences.
func sanitizeText(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r < ' ', r == 0x7F:
			return '?'
		default:
			return r
		}
	}, s)
}
