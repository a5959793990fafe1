// Package compose turns a retrieved fact into the final reply, either through
// the LLM when the backend is online or through offline templates.
package compose

import (
	"context"
	"strings"

	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/pathfinder-ai/backend/internal/metrics"
	"github.com/pathfinder-ai/backend/internal/retriever"
	"github.com/pathfinder-ai/backend/pkg/config"
	"github.com/pathfinder-ai/backend/pkg/logger"
)

// Generator produces a natural-language reply from a question and a fact.
type Generator interface {
	MakeNatural(ctx context.Context, question, fact string) (string, error)
}

// ConnectivityChecker reports whether the backend can reach the internet.
type ConnectivityChecker interface {
	Online() bool
}

type Composer struct {
	generator Generator
	probe     ConnectivityChecker
	offline   config.OfflineConfig
}

func New(generator Generator, probe ConnectivityChecker, offline config.OfflineConfig) *Composer {
	return &Composer{generator: generator, probe: probe, offline: offline}
}

// Compose renders the final reply for a fact. Online it asks the generator to
// rephrase the fact; on generation failure or offline it falls back to the
// offline templates. Sentinel facts keep the offline "I'm currently offline"
// framing, ordinary facts use the plainer fallback template. Repeated
// sentences are collapsed in every path.
func (c *Composer) Compose(ctx context.Context, question, fact string) string {
	if c.generator != nil && c.probe.Online() {
		reply, err := c.generator.MakeNatural(ctx, question, fact)
		if err == nil {
			return dedupeSentences(reply)
		}
		logger.Warn("Generation failed, using offline template", zap.Error(err))
		metrics.GenerationFallbacks.Inc()
	}

	template := c.offline.Fallback
	if retriever.IsSentinel(fact) {
		template = c.offline.Message
	}
	reply := strings.ReplaceAll(template, "{fact}", fact)
	return dedupeSentences(reply)
}

// dedupeSentences removes repeated sentences, keeping the first occurrence.
// Comparison is on the trimmed lowercase sentence. If segmentation fails the
// text is returned unchanged.
func dedupeSentences(text string) string {
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		logger.Debug("Sentence segmentation failed", zap.Error(err))
		return text
	}

	seen := make(map[string]bool)
	var kept []string
	for _, s := range doc.Sentences() {
		sentence := strings.TrimSpace(s.Text)
		if sentence == "" {
			continue
		}
		normalized := strings.ToLower(sentence)
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		kept = append(kept, sentence)
	}

	if len(kept) == 0 {
		return text
	}
	return strings.Join(kept, " ")
}
