// Package ratelimit provides a per-client token bucket for the chat endpoint.
package ratelimit

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/pathfinder-ai/backend/pkg/logger"
)

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// Limiter refills perMinute tokens per minute per client IP.
type Limiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	perMinute float64
}

func New(perMinute int) *Limiter {
	return &Limiter{
		buckets:   make(map[string]*bucket),
		perMinute: float64(perMinute),
	}
}

func (l *Limiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.perMinute, lastRefill: now}
		l.buckets[key] = b
	}

	elapsed := now.Sub(b.lastRefill).Minutes()
	b.tokens += elapsed * l.perMinute
	if b.tokens > l.perMinute {
		b.tokens = l.perMinute
	}
	b.lastRefill = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Handler rejects over-limit requests with 429.
func (l *Limiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !l.allow(c.IP()) {
			logger.Warn("Rate limit exceeded", zap.String("ip", c.IP()))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded, try again later",
			})
		}
		return c.Next()
	}
}
