// Package document loads Markdown documents and scans them into typed records.
//
// The scanner is line oriented: it recognizes frontmatter delimiters, ATX
// headings, fenced code blocks and inline links without building a full
// CommonMark tree. Callers never touch raw text; they read the Frontmatter,
// Headings, CodeBlocks and Links slices of a parsed Document.
package document

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"unicode/utf8"

	"github.com/spf13/afero"
)

// MaxSize is the largest document the loader reads; larger files are unreadable.
const MaxSize = 8 * 1024 * 1024

// ErrInvalidUTF8 is returned by Load for content that is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("document contains invalid UTF-8 content")

// Document is an immutable, parsed Markdown file identified by its
// repository-relative slash path.
type Document struct {
	// Path is the repository-relative path using forward slashes.
	Path string
	// Content is the raw file bytes.
	Content []byte
	// Lines holds the source lines without line endings.
	Lines []string
	// Frontmatter lists every "---" delimited block in source order.
	// The first entry is authoritative when present at line 1.
	Frontmatter []FrontmatterBlock
	// Headings lists ATX headings outside fenced code blocks.
	Headings []Heading
	// CodeBlocks lists fenced code blocks in source order.
	CodeBlocks []CodeBlock
	// Links lists inline links outside fenced code blocks.
	Links []Link
}

// Heading is a single ATX heading line.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	Line  int    `json:"line"`
}

// CodeBlock is a fenced code block delimited by triple backticks.
type CodeBlock struct {
	// Language is the token after the opening fence; empty when untagged.
	Language string `json:"language,omitempty"`
	// CloseToken is any token found on the closing fence line.
	CloseToken string `json:"close_token,omitempty"`
	StartLine  int    `json:"start_line"`
	// EndLine is the closing fence line, or the last line for unclosed blocks.
	EndLine int  `json:"end_line"`
	Closed  bool `json:"closed"`
}

// Link is an inline Markdown link [text](target).
type Link struct {
	Text   string `json:"text"`
	Target string `json:"target"`
	Line   int    `json:"line"`
}

// Parse scans content into a Document for the repository-relative path p.
func Parse(p string, content []byte) *Document {
	lines := splitLines(content)
	doc := &Document{
		Path:    path.Clean(filepath.ToSlash(p)),
		Content: content,
		Lines:   lines,
	}
	fences := fenceMask(lines)
	doc.Frontmatter = ParseFrontmatter(lines, fences)

	// Body scanners skip the leading frontmatter block as well as fences.
	skip := append([]bool(nil), fences...)
	if len(doc.Frontmatter) > 0 {
		for i := 0; i < doc.Frontmatter[0].EndLine; i++ {
			skip[i] = true
		}
	}
	doc.Headings = ParseHeadings(lines, skip)
	doc.CodeBlocks = ParseCodeBlocks(lines)
	doc.Links = ParseLinks(lines, skip)
	return doc
}

// Empty returns a placeholder Document with no content for path p.
// Checkers run against it report every required element as absent.
func Empty(p string) *Document {
	return Parse(p, nil)
}

// Load reads the document at the repository-relative path rel under root.
func Load(fsys afero.Fs, root, rel string) (*Document, error) {
	full := filepath.Join(root, filepath.FromSlash(rel))
	info, err := fsys.Stat(full)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", rel, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", rel)
	}
	if info.Size() > MaxSize {
		return nil, fmt.Errorf("%s exceeds %d bytes", rel, MaxSize)
	}
	content, err := afero.ReadFile(fsys, full)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rel, err)
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%s: %w", rel, ErrInvalidUTF8)
	}
	return Parse(rel, content), nil
}
