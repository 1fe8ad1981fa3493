package document

import (
	"bytes"
	"strings"
)

const utf8BOM = "\xef\xbb\xbf"

// splitLines splits src on "\n", "\r\n" or a lone "\r". A trailing line
// ending does not produce an extra empty line, and a leading UTF-8 BOM is
// dropped.
func splitLines(src []byte) []string {
	src = bytes.TrimPrefix(src, []byte(utf8BOM))
	lines := []string{}
	start := 0
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\n':
			lines = append(lines, string(src[start:i]))
			start = i + 1
		case '\r':
			lines = append(lines, string(src[start:i]))
			if i+1 < len(src) && src[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	if start < len(src) {
		lines = append(lines, string(src[start:]))
	}
	return lines
}

// fenceLine reports whether line is a backtick fence and returns the token
// that follows the fence on the same line. Up to three leading spaces are
// allowed, as in CommonMark.
func fenceLine(line string) (token string, ok bool) {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 || !strings.HasPrefix(trimmed, "```") {
		return "", false
	}
	rest := strings.TrimLeft(trimmed, "`")
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", true
	}
	return fields[0], true
}

// fenceMask returns a per-line flag that is true for fence lines and the
// lines enclosed by them. An unclosed fence masks through end of file.
func fenceMask(lines []string) []bool {
	mask := make([]bool, len(lines))
	inFence := false
	for i, line := range lines {
		if _, ok := fenceLine(line); ok {
			mask[i] = true
			inFence = !inFence
			continue
		}
		mask[i] = inFence
	}
	return mask
}

// isDelimiter reports whether line is a frontmatter delimiter ("---" alone).
func isDelimiter(line string) bool {
	return strings.TrimRight(line, " \t") == "---"
}
