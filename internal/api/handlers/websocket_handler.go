package handlers

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pathfinder-ai/backend/internal/middleware/validation"
	"github.com/pathfinder-ai/backend/internal/pipeline"
	"github.com/pathfinder-ai/backend/pkg/logger"
)

type WebSocketHandler struct {
	pipeline        *pipeline.Pipeline
	maxPromptLength int
}

func NewWebSocketHandler(p *pipeline.Pipeline, maxPromptLength int) *WebSocketHandler {
	return &WebSocketHandler{pipeline: p, maxPromptLength: maxPromptLength}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type   string `json:"type"`
			Prompt string `json:"prompt"`
		}

		err := c.ReadJSON(&msg)
		if err != nil {
			logger.Error("Failed to read WebSocket message", zap.Error(err))
			break
		}

		if msg.Type != "chat" {
			continue
		}

		prompt, err := validation.ValidatePrompt(msg.Prompt, h.maxPromptLength)
		if err != nil {
			h.sendError(c, err.Error())
			continue
		}

		if err := h.streamReply(c, prompt); err != nil {
			logger.Error("Failed to stream reply", zap.Error(err))
			h.sendError(c, "Failed to process chat")
		}
	}
}

func (h *WebSocketHandler) streamReply(c *websocket.Conn, prompt string) error {
	ctx := context.Background()

	if err := h.sendChunk(c, "status", "Thinking..."); err != nil {
		return err
	}

	result, err := h.pipeline.Ask(ctx, prompt)
	if err != nil {
		return err
	}

	words := splitIntoWords(result.Reply)
	for i, word := range words {
		chunk := word
		if i < len(words)-1 {
			chunk += " "
		}
		if err := h.sendChunk(c, "chunk", chunk); err != nil {
			return err
		}
	}

	return c.WriteJSON(map[string]interface{}{
		"type":       "complete",
		"message_id": uuid.New().String(),
		"places":     result.Places,
		"topics":     result.Topics,
		"latency_ms": result.LatencyMs,
	})
}

func (h *WebSocketHandler) sendChunk(c *websocket.Conn, msgType, content string) error {
	return c.WriteJSON(map[string]interface{}{
		"type":    msgType,
		"content": content,
	})
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}

func splitIntoWords(text string) []string {
	words := []string{}
	currentWord := ""

	for _, char := range text {
		if char == ' ' || char == '\n' {
			if currentWord != "" {
				words = append(words, currentWord)
				currentWord = ""
			}
			if char == '\n' {
				words = append(words, "\n")
			}
		} else {
			currentWord += string(char)
		}
	}

	if currentWord != "" {
		words = append(words, currentWord)
	}

	return words
}
