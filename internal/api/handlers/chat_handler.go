package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	rediscache "github.com/pathfinder-ai/backend/internal/cache/redis"
	"github.com/pathfinder-ai/backend/internal/metrics"
	"github.com/pathfinder-ai/backend/internal/middleware/validation"
	"github.com/pathfinder-ai/backend/internal/pipeline"
	"github.com/pathfinder-ai/backend/internal/places"
	"github.com/pathfinder-ai/backend/internal/storage/models"
	"github.com/pathfinder-ai/backend/internal/storage/sqlite"
	"github.com/pathfinder-ai/backend/pkg/logger"
	"github.com/pathfinder-ai/backend/pkg/utils"
)

type ChatHandler struct {
	pipeline        *pipeline.Pipeline
	cache           *rediscache.Client
	store           *sqlite.Client
	maxPromptLength int
}

// NewChatHandler builds the chat handler. cache may be nil to disable the
// reply cache.
func NewChatHandler(p *pipeline.Pipeline, cache *rediscache.Client, store *sqlite.Client, maxPromptLength int) *ChatHandler {
	return &ChatHandler{
		pipeline:        p,
		cache:           cache,
		store:           store,
		maxPromptLength: maxPromptLength,
	}
}

type chatResponse struct {
	ID        string         `json:"id"`
	Reply     string         `json:"reply"`
	Places    []places.Place `json:"places"`
	Topics    []string       `json:"topics"`
	LatencyMs int64          `json:"latency_ms"`
}

func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var req struct {
		Prompt string `json:"prompt"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	prompt, err := validation.ValidatePrompt(req.Prompt, h.maxPromptLength)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	promptHash := utils.HashString(prompt)
	if h.cache != nil {
		var cached chatResponse
		hit, err := h.cache.GetReply(c.Context(), promptHash, &cached)
		if err != nil {
			logger.Warn("Reply cache read failed", zap.Error(err))
		}
		if hit {
			metrics.CacheHits.WithLabelValues("reply").Inc()
			return c.JSON(cached)
		}
		metrics.CacheMisses.WithLabelValues("reply").Inc()
	}

	start := time.Now()
	result, err := h.pipeline.Ask(c.Context(), prompt)
	if err != nil {
		metrics.ChatTotal.WithLabelValues("error").Inc()
		logger.Error("Failed to process chat", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process chat",
		})
	}

	status := "ok"
	if result.Flagged {
		status = "flagged"
	}
	metrics.ChatTotal.WithLabelValues(status).Inc()
	metrics.ChatDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())

	response := chatResponse{
		ID:        uuid.New().String(),
		Reply:     result.Reply,
		Places:    result.Places,
		Topics:    result.Topics,
		LatencyMs: result.LatencyMs,
	}

	record := models.ChatRecord{
		ID:         response.ID,
		Prompt:     prompt,
		Reply:      result.Reply,
		Topics:     result.Topics,
		PlaceCount: len(result.Places),
		Flagged:    result.Flagged,
		LatencyMs:  result.LatencyMs,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.store.InsertChatRecord(c.Context(), record); err != nil {
		logger.Warn("Failed to store chat record", zap.Error(err))
	}

	if h.cache != nil && !result.Flagged {
		if err := h.cache.SetReply(c.Context(), promptHash, response); err != nil {
			logger.Warn("Reply cache write failed", zap.Error(err))
		}
	}

	return c.JSON(response)
}

func (h *ChatHandler) HandleChatHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be between 1 and 100",
		})
	}

	records, err := h.store.GetRecentChats(c.Context(), limit)
	if err != nil {
		logger.Error("Failed to load chat history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load chat history",
		})
	}

	return c.JSON(fiber.Map{
		"history": records,
	})
}
