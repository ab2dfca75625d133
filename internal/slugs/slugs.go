// Package slugs provides the slugification helpers used when resolving links.
//
// There are two strategies:
//   - Heading slugs: the fragment IDs markdown renderers derive from headings,
//     so "[x](note.md#weekly-standup)" resolves to "## Weekly Standup".
//   - Component slugs: a forgiving key for file names, built on gosimple/slug,
//     so "[[my-project]]" still finds "My Project.md".
package slugs

import (
	"strings"
	"unicode"

	goslug "github.com/gosimple/slug"
)

// HeadingSlug converts a heading text to a URL-friendly slug.
func HeadingSlug(text string) string {
	var result strings.Builder
	prevDash := false

	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			result.WriteRune(r)
			prevDash = false
		case r == ' ' || r == '-' || r == '_' || r == ':':
			if !prevDash && result.Len() > 0 {
				result.WriteRune('-')
				prevDash = true
			}
		}
	}

	return strings.TrimSuffix(result.String(), "-")
}

// ComponentSlug converts a file name or link target to a slug.
func ComponentSlug(s string) string {
	s = strings.TrimSuffix(s, ".md")
	slugged := goslug.Make(s)
	if slugged == "" {
		slugged = strings.ToLower(strings.ReplaceAll(s, " ", "-"))
	}
	return slugged
}

// SameHeading reports whether a link fragment refers to a heading, either by
// its literal text (case-insensitive) or by its slug.
func SameHeading(fragment, heading string) bool {
	if strings.EqualFold(strings.TrimSpace(fragment), strings.TrimSpace(heading)) {
		return true
	}
	s := HeadingSlug(fragment)
	return s != "" && s == HeadingSlug(heading)
}
