package speech

import (
	"context"
	"fmt"
	"log/slog"
)

// Chain implements Provider by trying multiple providers in order.
// The first successful provider wins; if all fail, the aggregate error
// is returned and the caller degrades to text-only delivery.
type Chain struct {
	providers []Provider
	logger    *slog.Logger
}

// NewChain creates a provider chain. At least one provider is required.
func NewChain(providers ...Provider) (*Chain, error) {
	if len(providers) == 0 {
		return nil, ErrProviderUnavailable
	}
	return &Chain{
		providers: providers,
		logger:    slog.Default().With("component", "speech.chain"),
	}, nil
}

// Synthesize tries each provider until one succeeds.
func (c *Chain) Synthesize(ctx context.Context, text string) (*Utterance, error) {
	var errs []error

	for i, p := range c.providers {
		u, err := p.Synthesize(ctx, text)
		if err == nil {
			if i > 0 {
				c.logger.Info("fallback provider succeeded", "provider_index", i)
			}
			return u, nil
		}

		errs = append(errs, err)
		c.logger.Warn("provider failed, trying next", "provider_index", i, "error", err)

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, &ChainError{Errors: errs}
}

// Health returns nil if any provider is healthy.
func (c *Chain) Health(ctx context.Context) error {
	var lastErr error
	for _, p := range c.providers {
		if err := p.Health(ctx); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("all %d providers unhealthy: %w", len(c.providers), lastErr)
}

// Close closes all providers.
func (c *Chain) Close() error {
	var lastErr error
	for _, p := range c.providers {
		if err := p.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Verify Chain implements Provider at compile time.
var _ Provider = (*Chain)(nil)
