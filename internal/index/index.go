// Package index implements the in-process embedding index: brute-force
// cosine-distance search over the embedded corpus, with snapshot persistence
// keyed by the dataset content hash.
package index

import (
	"context"
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/pathfinder-ai/backend/internal/corpus"
	"github.com/pathfinder-ai/backend/pkg/logger"
)

// Embedder turns texts into fixed-dimension vectors. Implemented by the LLM
// client; embedding is the one capability the index cannot work without.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Result pairs a corpus record with its cosine distance from the query.
type Result struct {
	Record   corpus.Record
	Distance float64
}

// Index holds the corpus records and their question embeddings in matching
// order. Built or loaded once at startup and read-only afterwards.
type Index struct {
	embedder Embedder
	records  []corpus.Record
	vectors  [][]float32
}

func New(embedder Embedder) *Index {
	return &Index{embedder: embedder}
}

// Len reports the number of indexed records.
func (ix *Index) Len() int {
	return len(ix.records)
}

// Build embeds every record's question and stores the vectors in record
// order. A failure leaves the index unchanged.
func (ix *Index) Build(ctx context.Context, records []corpus.Record) error {
	questions := make([]string, len(records))
	for i, r := range records {
		questions[i] = r.Question
	}

	logger.Info("Embedding corpus", zap.Int("records", len(records)))

	vectors, err := ix.embedder.EmbedBatch(ctx, questions)
	if err != nil {
		return fmt.Errorf("failed to embed corpus: %w", err)
	}
	if len(vectors) != len(records) {
		return fmt.Errorf("embedding count mismatch: got %d, expected %d", len(vectors), len(records))
	}

	ix.records = append([]corpus.Record(nil), records...)
	ix.vectors = vectors

	logger.Info("Index built", zap.Int("records", len(ix.records)))
	return nil
}

// Query embeds text and returns the k nearest records by cosine distance
// (1 - similarity), ascending, ties broken by corpus order. An empty index
// yields an empty result.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]Result, error) {
	if len(ix.records) == 0 {
		return nil, nil
	}

	vectors, err := ix.embedder.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	queryVec := vectors[0]

	distances := make([]float64, len(ix.vectors))
	for i, v := range ix.vectors {
		distances[i] = 1 - cosineSimilarity(v, queryVec)
	}

	order := make([]int, len(distances))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return distances[order[a]] < distances[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}

	results := make([]Result, 0, k)
	for _, idx := range order[:k] {
		results = append(results, Result{Record: ix.records[idx], Distance: distances[idx]})
	}
	return results, nil
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

type snapshot struct {
	Records []corpus.Record
	Vectors [][]float32
}

// SaveSnapshot persists the full index state as an opaque blob.
func (ix *Index) SaveSnapshot(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(snapshot{Records: ix.records, Vectors: ix.vectors}); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	logger.Info("Index snapshot saved", zap.String("path", path), zap.Int("records", len(ix.records)))
	return nil
}

// LoadSnapshot restores a persisted index. It returns false on any read or
// decode failure, signaling the caller to rebuild from source.
func (ix *Index) LoadSnapshot(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		logger.Warn("Could not open index snapshot", zap.String("path", path), zap.Error(err))
		return false
	}
	defer f.Close()

	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		logger.Warn("Could not decode index snapshot", zap.String("path", path), zap.Error(err))
		return false
	}
	if len(snap.Records) != len(snap.Vectors) {
		logger.Warn("Snapshot records/vectors mismatch, ignoring",
			zap.Int("records", len(snap.Records)),
			zap.Int("vectors", len(snap.Vectors)),
		)
		return false
	}

	ix.records = snap.Records
	ix.vectors = snap.Vectors

	logger.Info("Index snapshot loaded", zap.String("path", path), zap.Int("records", len(ix.records)))
	return true
}
