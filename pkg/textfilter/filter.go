package textfilter

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Narrative text from the backend may arrive wearing markdown it was
// told not to use. Normalizer strips the decoration while keeping the
// lightweight markup history messages are allowed to carry.
type Normalizer struct {
	fence    *regexp.Regexp
	emphasis *regexp.Regexp
	heading  *regexp.Regexp
	spaces   *regexp.Regexp
	titler   cases.Caser
}

// NewNormalizer creates a normalizer with pre-compiled patterns.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		fence:    regexp.MustCompile("(?s)```[a-z]*\n?(.*?)```"),
		emphasis: regexp.MustCompile(`(\*{1,3}|_{1,3})([^*_]+)` + "(\\*{1,3}|_{1,3})"),
		heading:  regexp.MustCompile(`(?m)^#{1,6}\s+`),
		spaces:   regexp.MustCompile(`[ \t]{2,}`),
		titler:   cases.Title(language.English),
	}
}

// CleanNarrative strips code fences, heading markers and stacked
// emphasis from narrative text, and collapses runaway whitespace.
// Single *emphasis* is left alone; it is part of the allowed markup.
func (n *Normalizer) CleanNarrative(text string) string {
	out := n.fence.ReplaceAllString(text, "$1")
	out = n.heading.ReplaceAllString(out, "")
	out = n.emphasis.ReplaceAllStringFunc(out, func(match string) string {
		sub := n.emphasis.FindStringSubmatch(match)
		if len(sub) == 4 && len(sub[1]) == 1 && sub[1] == sub[3] {
			return match // single emphasis survives
		}
		if len(sub) == 4 {
			return sub[2]
		}
		return match
	})
	out = n.spaces.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// Label renders an identifier-ish string ("open_east", "inspect area")
// as a display label in title case.
func (n *Normalizer) Label(s string) string {
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return n.titler.String(strings.TrimSpace(s))
}

var std = NewNormalizer()

// Label is the package-level shorthand using a shared normalizer.
func Label(s string) string { return std.Label(s) }

// CleanNarrative is the package-level shorthand using a shared
// normalizer.
func CleanNarrative(text string) string { return std.CleanNarrative(text) }
