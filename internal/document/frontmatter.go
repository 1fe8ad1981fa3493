package document

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// FrontmatterBlock is one "---" delimited block of YAML-like metadata.
type FrontmatterBlock struct {
	// StartLine is the 1-based line of the opening delimiter.
	StartLine int `json:"start_line"`
	// EndLine is the 1-based line of the closing delimiter.
	EndLine int `json:"end_line"`
	// Fields holds the top-level keys in source order.
	Fields []Field `json:"fields"`
	// Err records why the block could not be decoded as a YAML mapping.
	// Fields are then recovered by matching unindented "key:" lines.
	Err error `json:"-"`
}

// Field is a single top-level frontmatter key.
type Field struct {
	Key string `json:"key"`
	// Value is a string, a list, or a nested value as decoded by yaml.v3.
	Value any `json:"value,omitempty"`
	Line  int `json:"line"`
}

// Has reports whether the block defines key.
func (b FrontmatterBlock) Has(key string) bool {
	for _, f := range b.Fields {
		if f.Key == key {
			return true
		}
	}
	return false
}

// Get returns the value of key and whether it is present.
func (b FrontmatterBlock) Get(key string) (any, bool) {
	for _, f := range b.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// fieldLineRE matches an unindented "key:" line.
var fieldLineRE = regexp.MustCompile(`^([A-Za-z0-9_][A-Za-z0-9_.-]*)\s*:(?:\s|$)`)

// ParseFrontmatter returns every frontmatter block in lines.
//
// A document has frontmatter only when its first line is a "---" delimiter
// closed by a later delimiter; otherwise the result is empty. After the first
// block closes, each further pair of delimiters outside fenced code blocks
// whose body defines at least one key is returned as an additional block so
// callers can flag duplicates. Pairs around keyless prose are horizontal
// rules and are skipped.
func ParseFrontmatter(lines []string, fences []bool) []FrontmatterBlock {
	if len(lines) == 0 || !isDelimiter(lines[0]) {
		return nil
	}
	closeIdx := -1
	for i := 1; i < len(lines); i++ {
		if isDelimiter(lines[i]) {
			closeIdx = i
			break
		}
	}
	if closeIdx < 0 {
		return nil
	}
	blocks := []FrontmatterBlock{decodeBlock(lines, 0, closeIdx)}

	open := -1
	for i := closeIdx + 1; i < len(lines); i++ {
		if fences[i] || !isDelimiter(lines[i]) {
			continue
		}
		if open < 0 {
			open = i
			continue
		}
		block := decodeBlock(lines, open, i)
		if len(block.Fields) == 0 {
			// Thematic breaks around prose; the closing line may still open a block.
			open = i
			continue
		}
		blocks = append(blocks, block)
		open = -1
	}
	return blocks
}

// decodeBlock decodes the lines strictly between the delimiters at open and
// closing (0-based indices).
func decodeBlock(lines []string, open, closing int) FrontmatterBlock {
	block := FrontmatterBlock{StartLine: open + 1, EndLine: closing + 1}
	body := lines[open+1 : closing]
	if strings.TrimSpace(strings.Join(body, "")) == "" {
		block.Fields = []Field{}
		return block
	}

	fields, err := decodeYAMLFields(strings.Join(body, "\n"), open+1)
	if err == nil {
		block.Fields = fields
		return block
	}

	block.Err = err
	block.Fields = []Field{}
	for i, line := range body {
		if m := fieldLineRE.FindStringSubmatch(line); m != nil {
			value := strings.TrimSpace(line[len(m[0]):])
			block.Fields = append(block.Fields, Field{Key: m[1], Value: value, Line: open + 2 + i})
		}
	}
	return block
}

// decodeYAMLFields decodes src as a YAML mapping, preserving key order. offset
// is the number of source lines preceding src.
func decodeYAMLFields(src string, offset int) ([]Field, error) {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(src), &root); err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, errors.New("frontmatter is empty")
	}
	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, errors.New("frontmatter is not a mapping")
	}

	fields := make([]Field, 0, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, val := mapping.Content[i], mapping.Content[i+1]
		var v any
		if err := val.Decode(&v); err != nil {
			return nil, fmt.Errorf("decode frontmatter key %q: %w", key.Value, err)
		}
		fields = append(fields, Field{Key: key.Value, Value: v, Line: offset + key.Line})
	}
	return fields, nil
}
