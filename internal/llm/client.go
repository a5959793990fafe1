// Package llm wraps the OpenAI API for the two external capabilities the
// pipeline consumes: text embedding and natural-language generation.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	rediscache "github.com/pathfinder-ai/backend/internal/cache/redis"
	"github.com/pathfinder-ai/backend/internal/metrics"
	"github.com/pathfinder-ai/backend/pkg/circuitbreaker"
	"github.com/pathfinder-ai/backend/pkg/config"
	"github.com/pathfinder-ai/backend/pkg/logger"
	"github.com/pathfinder-ai/backend/pkg/retry"
	"github.com/pathfinder-ai/backend/pkg/utils"
)

const systemPrompt = `You are Pathfinder, a friendly local tourism guide for Catanduanes.
Rephrase the provided fact into a warm, natural reply to the visitor's question.
Use ONLY the information in the fact. Do not invent places, prices, or schedules.
Keep the reply concise and do not repeat sentences.`

const defaultPromptTemplate = `Question: {question}

Fact: {fact}

Answer the question naturally using only the fact above.`

type Client struct {
	client         *openai.Client
	model          string
	embeddingModel string
	temperature    float32
	maxTokens      int
	timeout        time.Duration
	promptTemplate string
	cache          *rediscache.Client
	cb             *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewClient builds the LLM client. cache may be nil, in which case query
// embeddings are simply not cached.
func NewClient(cfg config.LLMConfig, cache *rediscache.Client) *Client {
	client := openai.NewClient(cfg.APIKey)

	cb := circuitbreaker.NewCircuitBreaker("llm", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	template := cfg.PromptTemplate
	if template == "" {
		template = defaultPromptTemplate
	}

	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	logger.Info("LLM client initialized",
		zap.String("model", cfg.Model),
		zap.String("embedding_model", cfg.EmbeddingModel),
	)

	return &Client{
		client:         client,
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
		temperature:    cfg.Temperature,
		maxTokens:      cfg.MaxTokens,
		timeout:        timeout,
		promptTemplate: template,
		cache:          cache,
		cb:             cb,
		retryConfig:    retryConfig,
	}
}

// MakeNatural rephrases a retrieved fact into a natural reply to the user's
// question using the configured prompt template.
func (c *Client) MakeNatural(ctx context.Context, question, fact string) (string, error) {
	prompt := strings.ReplaceAll(c.promptTemplate, "{question}", question)
	prompt = strings.ReplaceAll(prompt, "{fact}", fact)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var result string

	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			resp, err := c.client.CreateChatCompletion(
				ctx,
				openai.ChatCompletionRequest{
					Model: c.model,
					Messages: []openai.ChatCompletionMessage{
						{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
						{Role: openai.ChatMessageRoleUser, Content: prompt},
					},
					Temperature: c.temperature,
					MaxTokens:   c.maxTokens,
				},
			)
			if err != nil {
				return fmt.Errorf("failed to create completion: %w", err)
			}
			if len(resp.Choices) == 0 {
				return fmt.Errorf("completion returned no choices")
			}

			logger.Debug("Reply generated",
				zap.Int("prompt_tokens", resp.Usage.PromptTokens),
				zap.Int("completion_tokens", resp.Usage.CompletionTokens),
			)

			result = resp.Choices[0].Message.Content
			return nil
		})
	})

	if err != nil {
		return "", err
	}

	return result, nil
}

// EmbedBatch embeds texts in order, consulting the embedding cache per text
// and requesting only the misses from the API in batches.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, len(texts))
	var missIdx []int

	for i, text := range texts {
		if c.cache == nil {
			missIdx = append(missIdx, i)
			continue
		}
		cached, ok, err := c.cache.GetEmbedding(ctx, utils.HashString(text))
		if err != nil {
			logger.Warn("Embedding cache read failed", zap.Error(err))
		}
		if ok {
			metrics.CacheHits.WithLabelValues("embedding").Inc()
			embeddings[i] = cached
			continue
		}
		metrics.CacheMisses.WithLabelValues("embedding").Inc()
		missIdx = append(missIdx, i)
	}

	const batchSize = 100
	for start := 0; start < len(missIdx); start += batchSize {
		end := start + batchSize
		if end > len(missIdx) {
			end = len(missIdx)
		}
		batchIdx := missIdx[start:end]

		batch := make([]string, len(batchIdx))
		for j, idx := range batchIdx {
			batch[j] = texts[idx]
		}

		vectors, err := c.embedBatchAPI(ctx, batch)
		if err != nil {
			return nil, err
		}

		for j, idx := range batchIdx {
			embeddings[idx] = vectors[j]
			if c.cache != nil {
				if err := c.cache.SetEmbedding(ctx, utils.HashString(texts[idx]), vectors[j]); err != nil {
					logger.Warn("Embedding cache write failed", zap.Error(err))
				}
			}
		}
	}

	return embeddings, nil
}

func (c *Client) embedBatchAPI(ctx context.Context, batch []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var vectors [][]float32

	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			resp, err := c.client.CreateEmbeddings(
				ctx,
				openai.EmbeddingRequest{
					Input: batch,
					Model: openai.EmbeddingModel(c.embeddingModel),
				},
			)
			if err != nil {
				return fmt.Errorf("failed to generate embeddings: %w", err)
			}
			if len(resp.Data) != len(batch) {
				return fmt.Errorf("embedding count mismatch: got %d, expected %d", len(resp.Data), len(batch))
			}

			vectors = make([][]float32, 0, len(resp.Data))
			for _, data := range resp.Data {
				vec := make([]float32, len(data.Embedding))
				copy(vec, data.Embedding)
				vectors = append(vectors, vec)
			}
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	logger.Debug("Embeddings generated", zap.Int("count", len(vectors)))
	return vectors, nil
}
