// Package ingest converts HTML pages into dataset records by pairing each
// heading with the paragraphs that follow it.
package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/pathfinder-ai/backend/internal/corpus"
	"github.com/pathfinder-ai/backend/pkg/logger"
)

// ParseHTML extracts question/answer records from an HTML document. Each
// h1/h2/h3 heading becomes a question; the paragraphs up to the next heading
// become its answer. Headings without any paragraph text are skipped.
func ParseHTML(r io.Reader, topic string) ([]corpus.Record, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var records []corpus.Record

	doc.Find("h1, h2, h3").Each(func(_ int, heading *goquery.Selection) {
		title := strings.TrimSpace(heading.Text())
		if title == "" {
			return
		}

		var paragraphs []string
		for next := heading.Next(); next.Length() > 0; next = next.Next() {
			if next.Is("h1, h2, h3") {
				break
			}
			if !next.Is("p") {
				continue
			}
			text := strings.TrimSpace(next.Text())
			if text != "" {
				paragraphs = append(paragraphs, text)
			}
		}

		if len(paragraphs) == 0 {
			logger.Debug("Skipping heading without paragraphs", zap.String("heading", title))
			return
		}

		records = append(records, corpus.Record{
			Question: toQuestion(title),
			Answer:   strings.Join(paragraphs, " "),
			Title:    title,
			Topic:    topic,
		})
	})

	if len(records) == 0 {
		return nil, fmt.Errorf("no usable heading/paragraph pairs found")
	}

	logger.Info("Parsed HTML document", zap.Int("records", len(records)))
	return records, nil
}

// toQuestion phrases a heading as a question unless it already is one.
func toQuestion(title string) string {
	if strings.HasSuffix(title, "?") {
		return title
	}
	return fmt.Sprintf("What can you tell me about %s?", title)
}
