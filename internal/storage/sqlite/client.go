// Package sqlite persists chat history in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/pathfinder-ai/backend/internal/storage/models"
	"github.com/pathfinder-ai/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(path string) (*Client, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	client := &Client{db: db}
	if err := client.migrate(); err != nil {
		return nil, err
	}

	logger.Info("SQLite client initialized", zap.String("path", path))
	return client, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chat_history (
		id TEXT PRIMARY KEY,
		prompt TEXT NOT NULL,
		reply TEXT NOT NULL,
		topics TEXT NOT NULL DEFAULT '[]',
		place_count INTEGER NOT NULL DEFAULT 0,
		flagged INTEGER NOT NULL DEFAULT 0,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_chat_history_created_at ON chat_history(created_at);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (c *Client) InsertChatRecord(ctx context.Context, record models.ChatRecord) error {
	topics, err := json.Marshal(record.Topics)
	if err != nil {
		return fmt.Errorf("failed to marshal topics: %w", err)
	}

	query := `
	INSERT INTO chat_history (id, prompt, reply, topics, place_count, flagged, latency_ms, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = c.db.ExecContext(ctx, query,
		record.ID,
		record.Prompt,
		record.Reply,
		string(topics),
		record.PlaceCount,
		record.Flagged,
		record.LatencyMs,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat record: %w", err)
	}

	return nil
}

// GetRecentChats returns the newest chat records first, up to limit.
func (c *Client) GetRecentChats(ctx context.Context, limit int) ([]models.ChatRecord, error) {
	query := `
	SELECT id, prompt, reply, topics, place_count, flagged, latency_ms, created_at
	FROM chat_history
	ORDER BY created_at DESC
	LIMIT ?
	`

	rows, err := c.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat history: %w", err)
	}
	defer rows.Close()

	var records []models.ChatRecord
	for rows.Next() {
		var record models.ChatRecord
		var topics string
		if err := rows.Scan(
			&record.ID,
			&record.Prompt,
			&record.Reply,
			&topics,
			&record.PlaceCount,
			&record.Flagged,
			&record.LatencyMs,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chat record: %w", err)
		}
		if err := json.Unmarshal([]byte(topics), &record.Topics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal topics: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat records: %w", err)
	}
	return records, nil
}
