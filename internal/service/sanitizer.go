package service

import (
	"regexp"
	"strings"
)

var (
	blankLineRuns = regexp.MustCompile(`\n\s*\n`)
	spaceRuns     = regexp.MustCompile(` +`)
)

// Sanitizer strips denylisted branding fragments from user-facing text.
type Sanitizer struct {
	global []*regexp.Regexp
}

func NewSanitizer(denylist []string) *Sanitizer {
	return &Sanitizer{global: compileTerms(denylist)}
}

// Clean removes every case-insensitive occurrence of the global and extra
// denylist terms, then collapses the whitespace left behind. Idempotent.
func (s *Sanitizer) Clean(text string, extra []string) string {
	if text == "" {
		return text
	}
	for _, pattern := range s.global {
		text = removeAll(text, pattern)
	}
	for _, pattern := range compileTerms(extra) {
		text = removeAll(text, pattern)
	}
	text = blankLineRuns.ReplaceAllString(text, "\n\n")
	text = spaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// removeAll deletes matches until none remain, so occurrences spliced
// together by an earlier deletion are caught too.
func removeAll(text string, pattern *regexp.Regexp) string {
	for {
		cleaned := pattern.ReplaceAllString(text, "")
		if cleaned == text {
			return cleaned
		}
		text = cleaned
	}
}

func compileTerms(terms []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(terms))
	for _, term := range terms {
		if term == "" {
			continue
		}
		patterns = append(patterns, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(term)))
	}
	return patterns
}
