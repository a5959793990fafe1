// Package retriever wraps the embedding index with confidence thresholding
// and answer deduplication.
package retriever

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pathfinder-ai/backend/internal/index"
	"github.com/pathfinder-ai/backend/pkg/config"
	"github.com/pathfinder-ai/backend/pkg/logger"
)

// Searcher is the nearest-neighbor lookup the retriever runs on.
type Searcher interface {
	Query(ctx context.Context, text string, k int) ([]index.Result, error)
}

// Sentinel replies are recognized downstream by these substrings rather than
// a separate error channel, for compatibility with the presentation layer.
const (
	noInfoMarker  = "don't have information"
	notSureMarker = "not sure"
)

// IsSentinel reports whether fact is a "no information" / "not sure" reply.
func IsSentinel(fact string) bool {
	lower := strings.ToLower(fact)
	return strings.Contains(lower, noInfoMarker) || strings.Contains(lower, notSureMarker)
}

var stopWords = map[string]bool{
	"is": true, "a": true, "an": true, "the": true, "in": true, "at": true,
	"on": true, "for": true, "to": true, "of": true, "and": true, "or": true,
	"but": true, "it": true, "its": true,
}

type Retriever struct {
	searcher Searcher
	rag      config.RAGConfig
	replies  config.ResponsesConfig
}

func New(searcher Searcher, rag config.RAGConfig, replies config.ResponsesConfig) *Retriever {
	return &Retriever{searcher: searcher, rag: rag, replies: replies}
}

// Search runs a single-topic query and returns one fact. Results above the
// confidence threshold are dropped, then deduplicated by exact normalized
// text and by Jaccard similarity against every previously accepted answer.
// When several distinct answers survive only the top-ranked one is returned,
// to avoid redundant multi-fact replies.
func (r *Retriever) Search(ctx context.Context, query string) (string, error) {
	results, err := r.searcher.Query(ctx, query, r.rag.SearchResults)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return r.replies.NoInformation, nil
	}

	var accepted []string
	seen := make(map[string]bool)

	for i, res := range results {
		if res.Distance > r.rag.ConfidenceThreshold {
			continue
		}

		answer := res.Record.Answer
		normalized := strings.ToLower(strings.TrimSpace(answer))
		if seen[normalized] {
			continue
		}

		similar := false
		for _, existing := range accepted {
			if r.answersSimilar(answer, existing) {
				similar = true
				break
			}
		}
		if similar {
			logger.Debug("Skipping near-duplicate answer", zap.Int("rank", i+1))
			continue
		}

		accepted = append(accepted, answer)
		seen[normalized] = true
		logger.Debug("Answer accepted", zap.Int("rank", i+1), zap.Float64("distance", res.Distance))
	}

	if len(accepted) == 0 {
		return r.replies.NotSure, nil
	}
	return accepted[0], nil
}

// SearchMany fans out one index query per topic, using the topic label itself
// as query text with the looser multi-topic threshold. Exact-text dedup is
// global across the whole accumulated result set; each topic keeps its top
// resultsPerTopic candidates by distance. Topics that yield nothing are
// skipped; an empty overall result is returned as an empty slice.
func (r *Retriever) SearchMany(ctx context.Context, topicList []string, query string, resultsPerTopic int) ([]string, error) {
	var all []string
	seen := make(map[string]bool)

	for _, topic := range topicList {
		results, err := r.searcher.Query(ctx, topic, r.rag.SearchResults)
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			logger.Debug("No results for topic", zap.String("topic", topic))
			continue
		}

		var candidates []index.Result
		for _, res := range results {
			if res.Distance > r.rag.MultiTopicThreshold {
				continue
			}
			text := res.Record.FactText()
			normalized := strings.ToLower(strings.TrimSpace(text))
			if seen[normalized] {
				continue
			}
			seen[normalized] = true
			candidates = append(candidates, res)
		}

		sort.SliceStable(candidates, func(a, b int) bool {
			return candidates[a].Distance < candidates[b].Distance
		})

		if len(candidates) > resultsPerTopic {
			candidates = candidates[:resultsPerTopic]
		}
		for _, c := range candidates {
			all = append(all, c.Record.FactText())
		}
	}

	return all, nil
}

// answersSimilar compares two answers by Jaccard similarity over their
// stop-word-filtered token sets.
func (r *Retriever) answersSimilar(a, b string) bool {
	wordsA := tokenSet(a)
	wordsB := tokenSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return false
	}

	intersection := 0
	for w := range wordsA {
		if wordsB[w] {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection
	if union == 0 {
		return false
	}

	return float64(intersection)/float64(union) >= r.rag.SimilarityThreshold
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(strings.TrimSpace(text))) {
		if !stopWords[w] {
			set[w] = true
		}
	}
	return set
}
