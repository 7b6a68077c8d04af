// Package retry decorates the market data boundary with bounded retries:
// transient provider failures are retried with exponential backoff and
// jitter, everything else fails fast.
package retry

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/eddiefleurent/schrute_spreads/internal/marketdata"
	"github.com/eddiefleurent/schrute_spreads/internal/models"
)

// Config tunes the retry behavior.
type Config struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Timeout        time.Duration
}

// DefaultConfig is used when NewProvider is given no config.
var DefaultConfig = Config{
	MaxRetries:     3,
	InitialBackoff: 1 * time.Second,
	MaxBackoff:     30 * time.Second,
	Timeout:        2 * time.Minute,
}

// Provider wraps a market data provider with retries.
type Provider struct {
	provider marketdata.Provider
	logger   *log.Logger
	config   Config
}

// Ensure Provider implements the market data boundary at compile time.
var _ marketdata.Provider = (*Provider)(nil)

// NewProvider creates a retrying provider. An optional Config overrides
// DefaultConfig.
func NewProvider(provider marketdata.Provider, logger *log.Logger, config ...Config) *Provider {
	cfg := DefaultConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	return &Provider{
		provider: provider,
		logger:   logger,
		config:   cfg,
	}
}

// GetSnapshot fetches a snapshot, retrying transient failures with backoff.
func (p *Provider) GetSnapshot(ctx context.Context, symbol string) (*models.MarketSnapshot, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	var lastErr error
	backoff := p.config.InitialBackoff

	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if fetchCtx.Err() != nil {
			return nil, fmt.Errorf("snapshot fetch timed out after %v: %w", p.config.Timeout, fetchCtx.Err())
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("operation canceled: %w", ctx.Err())
		}

		snap, err := p.provider.GetSnapshot(fetchCtx, symbol)
		if err == nil {
			return snap, nil
		}

		lastErr = err
		p.logger.Printf("Snapshot attempt %d/%d for %s failed: %v",
			attempt+1, p.config.MaxRetries+1, symbol, err)

		if !p.isTransientError(err) || attempt == p.config.MaxRetries {
			break
		}

		p.logger.Printf("Transient error detected, retrying in %v", backoff)
		select {
		case <-time.After(backoff):
			backoff = p.calculateNextBackoff(backoff)
		case <-fetchCtx.Done():
			return nil, fmt.Errorf("snapshot fetch timed out during backoff: %w", fetchCtx.Err())
		case <-ctx.Done():
			return nil, fmt.Errorf("operation canceled during backoff: %w", ctx.Err())
		}
	}

	return nil, fmt.Errorf("failed to fetch snapshot for %s after %d attempt(s): %w",
		symbol, p.config.MaxRetries+1, lastErr)
}

func (p *Provider) calculateNextBackoff(currentBackoff time.Duration) time.Duration {
	backoff := time.Duration(float64(currentBackoff) * 1.5)
	if backoff > p.config.MaxBackoff {
		backoff = p.config.MaxBackoff
	}

	maxJitter := int64(backoff / 4)
	if maxJitter > 0 {
		jitterVal, err := rand.Int(rand.Reader, big.NewInt(maxJitter))
		if err != nil {
			log.Printf("Failed to generate jitter: %v", err)
		} else {
			backoff += time.Duration(jitterVal.Int64())
		}
	}

	return backoff
}

func (p *Provider) isTransientError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	transientPatterns := []string{
		"timeout",
		"connection refused",
		"connection reset",
		"temporary failure",
		"server error",
		"rate limit",
		"429", // HTTP 429 Too Many Requests
		"502", // HTTP 502 Bad Gateway
		"503", // HTTP 503 Service Unavailable
		"504", // HTTP 504 Gateway Timeout
		"network",
		"dns",
		"tcp",
	}

	for _, pattern := range transientPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}
