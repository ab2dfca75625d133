package parser

import "strings"

// FrontmatterBounds returns the opening and closing frontmatter line indices.
// It only detects frontmatter when the first line is '---'.
// If frontmatter is present but unclosed, endLine is -1.
func FrontmatterBounds(lines []string) (startLine int, endLine int, ok bool) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return 0, -1, false
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return 0, i, true
		}
	}

	return 0, -1, true
}

// bodyStart returns the first line after closed frontmatter, or 0.
func bodyStart(lines []string) int {
	_, end, ok := FrontmatterBounds(lines)
	if !ok || end < 0 {
		return 0
	}
	return end + 1
}
