// Package moderation gates queries on a configured profanity word list.
package moderation

import (
	"regexp"
	"strings"
)

// Filter flags text containing any configured profane term as a whole word,
// case-insensitive.
type Filter struct {
	patterns []*regexp.Regexp
}

func NewFilter(words []string) *Filter {
	patterns := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		patterns = append(patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(strings.ToLower(w))+`\b`))
	}
	return &Filter{patterns: patterns}
}

func (f *Filter) Flagged(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range f.patterns {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}
