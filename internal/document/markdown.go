package document

import (
	"regexp"
	"strings"
)

var (
	headingRE      = regexp.MustCompile(`^ {0,3}(#{1,6})(?:[ \t]+(.*?))?[ \t]*$`)
	closingHashRE  = regexp.MustCompile(`(?:^|[ \t]+)#+$`)
	inlineLinkRE   = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s"]+)(?:\s+"[^"]*")?\s*\)`)
	inlineCodeSpan = regexp.MustCompile("`+[^`]*`+")
)

// ParseHeadings returns the ATX headings in lines, skipping fenced content.
// A closing sequence of "#" characters is not part of the heading text.
func ParseHeadings(lines []string, fences []bool) []Heading {
	var headings []Heading
	for i, line := range lines {
		if fences[i] {
			continue
		}
		m := headingRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		text := closingHashRE.ReplaceAllString(m[2], "")
		headings = append(headings, Heading{
			Level: len(m[1]),
			Text:  strings.TrimSpace(text),
			Line:  i + 1,
		})
	}
	return headings
}

// ParseCodeBlocks pairs backtick fences in order. A fence line seen while a
// block is open closes it, whatever token it carries.
func ParseCodeBlocks(lines []string) []CodeBlock {
	var blocks []CodeBlock
	var open *CodeBlock
	for i, line := range lines {
		token, ok := fenceLine(line)
		if !ok {
			continue
		}
		if open == nil {
			open = &CodeBlock{Language: token, StartLine: i + 1}
			continue
		}
		open.CloseToken = token
		open.EndLine = i + 1
		open.Closed = true
		blocks = append(blocks, *open)
		open = nil
	}
	if open != nil {
		open.EndLine = len(lines)
		blocks = append(blocks, *open)
	}
	return blocks
}

// ParseLinks returns the inline links in lines, skipping fenced content and
// inline code spans.
func ParseLinks(lines []string, fences []bool) []Link {
	var links []Link
	for i, line := range lines {
		if fences[i] || !strings.Contains(line, "](") {
			continue
		}
		line = blankCodeSpans(line)
		for _, m := range inlineLinkRE.FindAllStringSubmatch(line, -1) {
			links = append(links, Link{Text: m[1], Target: m[2], Line: i + 1})
		}
	}
	return links
}

// blankCodeSpans replaces inline code spans with spaces of equal length so
// link syntax quoted in code is not extracted.
func blankCodeSpans(line string) string {
	return inlineCodeSpan.ReplaceAllStringFunc(line, func(s string) string {
		return strings.Repeat(" ", len(s))
	})
}
