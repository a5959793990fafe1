package compose

import (
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/pathfinder-ai/backend/pkg/config"
	"github.com/pathfinder-ai/backend/pkg/logger"
)

// Probe checks internet reachability with a cached HEAD-style GET so every
// chat request does not pay a network round trip.
type Probe struct {
	testURL       string
	client        *http.Client
	cacheDuration time.Duration

	online    atomic.Bool
	checkedAt atomic.Int64 // unix nanos of last check; 0 means never
}

func NewProbe(cfg config.InternetConfig) *Probe {
	return &Probe{
		testURL:       cfg.TestURL,
		client:        &http.Client{Timeout: cfg.Timeout()},
		cacheDuration: cfg.CacheDuration(),
	}
}

// Online reports whether the backend currently has internet access. The
// result is cached for the configured duration; concurrent callers may race
// to refresh it, which is harmless.
func (p *Probe) Online() bool {
	last := p.checkedAt.Load()
	if last != 0 && time.Since(time.Unix(0, last)) < p.cacheDuration {
		return p.online.Load()
	}

	online := p.check()
	p.online.Store(online)
	p.checkedAt.Store(time.Now().UnixNano())
	return online
}

func (p *Probe) check() bool {
	resp, err := p.client.Get(p.testURL)
	if err != nil {
		logger.Debug("Connectivity check failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode < 500
}
