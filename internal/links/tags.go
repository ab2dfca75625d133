package links

import "unicode"

// Tag is a #tag occurrence. Name excludes the '#'.
type Tag struct {
	Name  string `json:"name"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// FindTags finds #tags in a single line. A tag must start the line or follow
// whitespace, and may not start with a digit or '/'.
func FindTags(line string) []Tag {
	runes := []rune(line)
	n := len(runes)

	var out []Tag
	for i := 0; i < n; i++ {
		if runes[i] != '#' {
			continue
		}
		if i > 0 && !unicode.IsSpace(runes[i-1]) {
			continue
		}
		start := i + 1
		if start >= n || !isTagFirstRune(runes[start]) {
			continue
		}
		end := start + 1
		for end < n && isTagRune(runes[end]) {
			end++
		}
		for end > start && runes[end-1] == '/' {
			end--
		}
		out = append(out, Tag{Name: string(runes[start:end]), Start: i, End: end})
		i = end - 1
	}
	return out
}

func isTagRune(r rune) bool {
	if r <= 0x20 || unicode.IsSpace(r) {
		return false
	}
	switch r {
	case '\'', '"', '!', '#', '$', '%', '&', '(', ')', '*', '+', ',', '.', ':', ';',
		'<', '=', '>', '?', '@', '^', '{', '|', '}', '~', '[', ']', '\\', '`':
		return false
	}
	return true
}

func isTagFirstRune(r rune) bool {
	return isTagRune(r) && !unicode.IsDigit(r) && r != '/'
}
