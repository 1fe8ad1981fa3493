package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/eykd/docint/internal/finding"
)

// Format names a report rendering.
type Format string

const (
	// FormatJSON is the machine-readable report, docint-report.json.
	FormatJSON Format = "json"
	// FormatMarkdown is the summary tables and findings, docint-report.md.
	FormatMarkdown Format = "markdown"
	// FormatHTML is the Markdown report rendered by goldmark, docint-report.html.
	FormatHTML Format = "html"
)

// fileNames maps each format to the file Write produces for it.
var fileNames = map[Format]string{
	FormatJSON:     "docint-report.json",
	FormatMarkdown: "docint-report.md",
	FormatHTML:     "docint-report.html",
}

// ParseFormats validates format names ("md" is accepted for markdown) and
// removes duplicates, keeping the first occurrence.
func ParseFormats(names []string) ([]Format, error) {
	var formats []Format
	seen := map[Format]bool{}
	for _, name := range names {
		f := Format(strings.ToLower(strings.TrimSpace(name)))
		if f == "md" {
			f = FormatMarkdown
		}
		if f == "" {
			continue
		}
		if _, ok := fileNames[f]; !ok {
			return nil, fmt.Errorf("unknown report format %q (want json, markdown or html)", name)
		}
		if !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}
	return formats, nil
}

// Render writes r to w in format f.
func Render(w io.Writer, f Format, r *AggregateReport) error {
	switch f {
	case FormatJSON:
		return RenderJSON(w, r)
	case FormatMarkdown:
		return RenderMarkdown(w, r)
	case FormatHTML:
		return RenderHTML(w, r)
	default:
		return fmt.Errorf("unknown report format %q", f)
	}
}

// RenderJSON writes r as indented JSON.
func RenderJSON(w io.Writer, r *AggregateReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

// RenderMarkdown writes the summary tables followed by per-document findings.
func RenderMarkdown(w io.Writer, r *AggregateReport) error {
	var b strings.Builder

	b.WriteString("# Documentation Integrity Report\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", r.RunID)
	if r.GeneratedAt != "" {
		fmt.Fprintf(&b, "- Generated: %s\n", r.GeneratedAt)
	}
	fmt.Fprintf(&b, "- Root: `%s`\n", r.Root)
	if r.Directory != "" {
		fmt.Fprintf(&b, "- Directory: `%s`\n", r.Directory)
	}
	b.WriteString("\n")

	b.WriteString("## Summary\n\n| Metric | Count |\n| --- | ---: |\n")
	fmt.Fprintf(&b, "| Documents discovered | %d |\n", r.DocumentsDiscovered)
	fmt.Fprintf(&b, "| Documents scanned | %d |\n", r.DocumentsScanned)
	fmt.Fprintf(&b, "| Documents with findings | %d |\n", r.DocumentsWithFindings)
	fmt.Fprintf(&b, "| Internal links checked | %d |\n", r.Links)
	fmt.Fprintf(&b, "| Broken links | %d |\n", r.BrokenLinks)
	fmt.Fprintf(&b, "| Code blocks | %d |\n\n", r.CodeBlocks)

	b.WriteString("## Findings by category\n\n| Category | Count |\n| --- | ---: |\n")
	for _, c := range finding.Categories {
		fmt.Fprintf(&b, "| %s | %d |\n", c, r.CategoryCounts[c])
	}
	b.WriteString("\n")

	if s := r.Sample; s != nil {
		b.WriteString("## Sample\n\n")
		if s.Full {
			b.WriteString("Full validation: every document was selected.\n\n")
		} else {
			fmt.Fprintf(&b, "Seed: `%d` (replay with `--seed %d`)\n\n", s.Seed, s.Seed)
		}
		b.WriteString("| Tier | Percentage | Population | Sampled |\n| --- | ---: | ---: | ---: |\n")
		for _, t := range s.Tiers {
			fmt.Fprintf(&b, "| %s | %.0f%% | %d | %d |\n", t.Tier, t.Percentage*100, t.Population, t.Sampled)
		}
		b.WriteString("\n| Category | Population | Sampled |\n| --- | ---: | ---: |\n")
		for _, c := range s.Categories {
			name := c.Category
			if name == "" {
				name = "(uncategorized)"
			}
			fmt.Fprintf(&b, "| %s | %d | %d |\n", escapeCell(name), c.Population, c.Sampled)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Documents\n\n")
	if len(r.Results) == 0 {
		b.WriteString("No findings.\n")
	}
	for _, res := range r.Results {
		fmt.Fprintf(&b, "### `%s`\n\n| Line | Category | Severity | Message |\n| ---: | --- | --- | --- |\n", res.Path)
		findings := append([]finding.Finding(nil), res.Findings...)
		finding.SortByLine(findings)
		for _, f := range findings {
			line := "-"
			if f.Line > 0 {
				line = fmt.Sprint(f.Line)
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", line, f.Category, f.Severity, escapeCell(f.Message))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// escapeCell keeps a value inside one Markdown table cell.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// RenderHTML renders the Markdown report to a standalone HTML page. Raw
// HTML in finding messages is escaped, not passed through.
func RenderHTML(w io.Writer, r *AggregateReport) error {
	var md bytes.Buffer
	if err := RenderMarkdown(&md, r); err != nil {
		return err
	}
	engine := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
	var body bytes.Buffer
	if err := engine.Convert(md.Bytes(), &body); err != nil {
		return fmt.Errorf("markdown render: %w", err)
	}
	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Documentation Integrity Report</title>\n</head>\n<body>\n%s</body>\n</html>\n", body.Bytes())
	return err
}

// Write renders r in each format into dir on fsys and returns the written
// file paths. dir is created if needed.
func Write(fsys afero.Fs, dir string, formats []Format, r *AggregateReport) ([]string, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}
	var written []string
	for _, f := range formats {
		var buf bytes.Buffer
		if err := Render(&buf, f, r); err != nil {
			return written, err
		}
		p := filepath.Join(dir, fileNames[f])
		if err := afero.WriteFile(fsys, p, buf.Bytes(), 0o644); err != nil {
			return written, fmt.Errorf("writing %s report: %w", f, err)
		}
		written = append(written, p)
	}
	return written, nil
}
