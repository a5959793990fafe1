package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pathfinder-ai/backend/internal/corpus"
	"github.com/pathfinder-ai/backend/internal/metrics"
	"github.com/pathfinder-ai/backend/pkg/logger"
)

const (
	snapshotFile = "index.gob"
	manifestFile = "manifest.json"
)

type manifest struct {
	ContentHash string `json:"content_hash"`
}

// OpenOrBuild returns a ready index for the given corpus. If a snapshot
// exists in dir and its manifest hash matches contentHash, the snapshot is
// loaded; otherwise the index is rebuilt from source and both snapshot and
// manifest are rewritten. At most one rebuild happens per distinct corpus
// content.
func OpenOrBuild(ctx context.Context, embedder Embedder, records []corpus.Record, contentHash, dir string) (*Index, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store dir: %w", err)
	}

	ix := New(embedder)
	snapPath := filepath.Join(dir, snapshotFile)
	manPath := filepath.Join(dir, manifestFile)

	if stored, ok := readManifest(manPath); ok && stored == contentHash {
		if ix.LoadSnapshot(snapPath) {
			return ix, nil
		}
		logger.Warn("Snapshot unreadable despite matching hash, rebuilding")
	}

	if err := ix.Build(ctx, records); err != nil {
		return nil, err
	}
	if err := ix.SaveSnapshot(snapPath); err != nil {
		return nil, err
	}
	if err := writeManifest(manPath, contentHash); err != nil {
		return nil, err
	}

	metrics.IndexRebuilds.Inc()
	logger.Info("Index rebuilt from source", zap.String("content_hash", contentHash))
	return ix, nil
}

func readManifest(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		logger.Warn("Could not parse index manifest", zap.String("path", path), zap.Error(err))
		return "", false
	}
	return m.ContentHash, m.ContentHash != ""
}

func writeManifest(path, contentHash string) error {
	data, err := json.Marshal(manifest{ContentHash: contentHash})
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
