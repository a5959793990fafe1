// Package models defines the records persisted by the storage layer.
package models

import "time"

// ChatRecord is one completed chat exchange stored for history queries.
type ChatRecord struct {
	ID         string    `json:"id"`
	Prompt     string    `json:"prompt"`
	Reply      string    `json:"reply"`
	Topics     []string  `json:"topics"`
	PlaceCount int       `json:"place_count"`
	Flagged    bool      `json:"flagged"`
	LatencyMs  int64     `json:"latency_ms"`
	CreatedAt  time.Time `json:"created_at"`
}
