// Command ingest scrapes an HTML page into dataset records and appends them
// to the dataset file consumed by the API server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/pathfinder-ai/backend/internal/corpus"
	"github.com/pathfinder-ai/backend/internal/ingest"
	"github.com/pathfinder-ai/backend/pkg/logger"
)

func main() {
	var (
		url     = flag.String("url", "", "URL of the HTML page to ingest")
		file    = flag.String("file", "", "path to a local HTML file to ingest")
		topic   = flag.String("topic", "General", "topic label for the new records")
		dataset = flag.String("dataset", "./data/dataset.json", "path to the dataset file")
	)
	flag.Parse()

	if err := logger.Init("info", "console", "stdout"); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if (*url == "") == (*file == "") {
		logger.Fatal("Exactly one of -url or -file is required")
	}

	reader, err := openSource(*url, *file)
	if err != nil {
		logger.Fatal("Failed to open source", zap.Error(err))
	}
	defer reader.Close()

	records, err := ingest.ParseHTML(reader, *topic)
	if err != nil {
		logger.Fatal("Failed to parse HTML", zap.Error(err))
	}

	if err := appendToDataset(*dataset, records); err != nil {
		logger.Fatal("Failed to update dataset", zap.Error(err))
	}

	logger.Info("Dataset updated",
		zap.String("path", *dataset),
		zap.Int("new_records", len(records)),
	)
}

func openSource(url, file string) (io.ReadCloser, error) {
	if file != "" {
		return os.Open(file)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d fetching page", resp.StatusCode)
	}
	return resp.Body, nil
}

func appendToDataset(path string, records []corpus.Record) error {
	var existing []corpus.Record

	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, &existing); err != nil {
			return fmt.Errorf("failed to parse existing dataset: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read dataset: %w", err)
	}

	existing = append(existing, records...)

	out, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dataset: %w", err)
	}

	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	return nil
}
