// Package corpus loads the authored question/answer dataset the assistant
// retrieves from.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/pathfinder-ai/backend/pkg/logger"
	"github.com/pathfinder-ai/backend/pkg/utils"
)

// Record is a single authored Q&A entry. JSON tags match the dataset file
// format produced by the authoring tools.
type Record struct {
	Question       string `json:"input"`
	Answer         string `json:"output"`
	Title          string `json:"title"`
	Topic          string `json:"topic"`
	OfflineSummary string `json:"summary_offline"`
}

// FactText returns the text used for multi-topic fan-out replies: the
// authored offline summary when present, the full answer otherwise.
func (r Record) FactText() string {
	if r.OfflineSummary != "" {
		return r.OfflineSummary
	}
	return r.Answer
}

// Load reads the dataset file. Entries missing a question or answer are
// skipped individually; a missing or malformed file is fatal.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	var raw []Record
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}

	records := make([]Record, 0, len(raw))
	for i, r := range raw {
		if r.Question == "" || r.Answer == "" {
			logger.Warn("Skipping invalid dataset entry", zap.Int("index", i))
			continue
		}
		if r.Title == "" {
			r.Title = "General Info"
		}
		if r.Topic == "" {
			r.Topic = "General"
		}
		records = append(records, r)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("dataset %s contains no usable entries", path)
	}

	logger.Info("Dataset loaded",
		zap.String("path", path),
		zap.Int("records", len(records)),
		zap.Int("skipped", len(raw)-len(records)),
	)

	return records, nil
}

// Hash returns the content hash of the dataset file. Any byte change
// invalidates the persisted index snapshot.
func Hash(path string) (string, error) {
	return utils.HashFile(path)
}
