// Package topics maps free text to coarse topic labels via a configured
// keyword dictionary.
package topics

import (
	"regexp"
	"strings"

	"github.com/pathfinder-ai/backend/pkg/config"
)

// GeneralTopic is returned when no configured keyword matches.
const GeneralTopic = "general"

type topicMatcher struct {
	name     string
	patterns []*regexp.Regexp
}

// Extractor tests each configured topic's keywords against query text.
type Extractor struct {
	matchers []topicMatcher
}

// NewExtractor compiles word-boundary patterns for every keyword. Topic order
// follows the configuration and determines multi-topic search order.
func NewExtractor(topics []config.TopicConfig) *Extractor {
	matchers := make([]topicMatcher, 0, len(topics))
	for _, t := range topics {
		m := topicMatcher{name: t.Name}
		for _, kw := range t.Keywords {
			pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(kw)) + `\b`)
			m.patterns = append(m.patterns, pattern)
		}
		matchers = append(matchers, m)
	}
	return &Extractor{matchers: matchers}
}

// Extract returns the topics whose keywords occur in text as whole words,
// case-insensitive. A topic matches on its first matching keyword. With no
// match at all the result is ["general"].
func (e *Extractor) Extract(text string) []string {
	lower := strings.ToLower(text)

	var found []string
	for _, m := range e.matchers {
		for _, p := range m.patterns {
			if p.MatchString(lower) {
				found = append(found, m.name)
				break
			}
		}
	}

	if len(found) == 0 {
		return []string{GeneralTopic}
	}
	return found
}
