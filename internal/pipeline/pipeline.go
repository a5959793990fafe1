// Package pipeline orchestrates one chat exchange end to end: moderation,
// translation, topic extraction, retrieval, place resolution, and reply
// composition.
package pipeline

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pathfinder-ai/backend/internal/metrics"
	"github.com/pathfinder-ai/backend/internal/places"
	"github.com/pathfinder-ai/backend/internal/retriever"
	"github.com/pathfinder-ai/backend/pkg/config"
	"github.com/pathfinder-ai/backend/pkg/logger"
)

type ModerationFilter interface {
	Flagged(text string) bool
}

type QueryProtector interface {
	Protect(ctx context.Context, text string) string
}

type TopicExtractor interface {
	Extract(text string) []string
}

type FactSearcher interface {
	Search(ctx context.Context, query string) (string, error)
	SearchMany(ctx context.Context, topicList []string, query string, resultsPerTopic int) ([]string, error)
}

type PlaceResolver interface {
	ExtractMentions(text string) []string
	DetectReference(rawQuery string) string
	Resolve(names []string, referenceName string) []places.Place
}

type ReplyComposer interface {
	Compose(ctx context.Context, question, fact string) string
}

// Result is one finished chat exchange.
type Result struct {
	Reply     string
	Places    []places.Place
	Topics    []string
	Flagged   bool
	LatencyMs int64
}

type Pipeline struct {
	filter    ModerationFilter
	protector QueryProtector
	topics    TopicExtractor
	searcher  FactSearcher
	resolver  PlaceResolver
	composer  ReplyComposer
	rag       config.RAGConfig
	replies   config.ResponsesConfig
}

func New(
	filter ModerationFilter,
	protector QueryProtector,
	extractor TopicExtractor,
	searcher FactSearcher,
	resolver PlaceResolver,
	composer ReplyComposer,
	rag config.RAGConfig,
	replies config.ResponsesConfig,
) *Pipeline {
	return &Pipeline{
		filter:    filter,
		protector: protector,
		topics:    extractor,
		searcher:  searcher,
		resolver:  resolver,
		composer:  composer,
		rag:       rag,
		replies:   replies,
	}
}

// Ask runs the full pipeline for one prompt. Flagged prompts get the refusal
// reply without retrieval. Sentinel facts ("don't have information" / "not
// sure") are returned verbatim with no places, so the caller never decorates
// an apology with a map.
func (p *Pipeline) Ask(ctx context.Context, prompt string) (Result, error) {
	start := time.Now()

	if p.filter.Flagged(prompt) {
		logger.Warn("Prompt flagged by moderation")
		return Result{
			Reply:     p.replies.Refusal,
			Places:    []places.Place{},
			Topics:    []string{},
			Flagged:   true,
			LatencyMs: time.Since(start).Milliseconds(),
		}, nil
	}

	query := p.protector.Protect(ctx, prompt)

	topicList := p.topics.Extract(query)
	metrics.TopicsDetected.Observe(float64(len(topicList)))
	logger.Debug("Topics extracted", zap.Strings("topics", topicList))

	fact, err := p.retrieve(ctx, topicList, query)
	if err != nil {
		return Result{}, err
	}

	// Sentinel replies go out verbatim: no generation, no places.
	if retriever.IsSentinel(fact) {
		metrics.PlacesReturned.Observe(0)
		return Result{
			Reply:     fact,
			Places:    []places.Place{},
			Topics:    topicList,
			LatencyMs: time.Since(start).Milliseconds(),
		}, nil
	}

	direct := p.resolver.ExtractMentions(prompt)
	fromFact := p.resolver.ExtractMentions(fact)
	mentions := places.MergeMentions(direct, fromFact)
	reference := p.resolver.DetectReference(prompt)
	resolved := p.resolver.Resolve(mentions, reference)
	metrics.PlacesReturned.Observe(float64(len(resolved)))

	// Composition sees the user's own phrasing, not the translated text.
	reply := p.composer.Compose(ctx, prompt, fact)

	return Result{
		Reply:     reply,
		Places:    resolved,
		Topics:    topicList,
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

// retrieve picks single- or multi-topic search. A query spanning several
// topics fans out one search per topic and joins the facts; when no topic
// yields anything, the joined-topics reply is used as the fact. That reply
// does not carry the sentinel markers, so it still flows through place
// resolution and composition.
func (p *Pipeline) retrieve(ctx context.Context, topicList []string, query string) (string, error) {
	if len(topicList) > 1 {
		facts, err := p.searcher.SearchMany(ctx, topicList, query, p.rag.ResultsPerTopic)
		if err != nil {
			return "", err
		}
		if len(facts) == 0 {
			return p.replies.NoTopicInfo, nil
		}
		return strings.Join(facts, " "), nil
	}
	return p.searcher.Search(ctx, query)
}
