package ai

import (
	"context"
	"errors"
	"log/slog"

	"github.com/travelboss/travelbot/internal/config"
	errs "github.com/travelboss/travelbot/internal/errors"
	"github.com/travelboss/travelbot/internal/resilience"
)

type breakerProvider struct {
	Provider
	cb *resilience.CircuitBreaker
}

// WithCircuitBreaker wraps p so that after cfg.MaxFailures consecutive
// failures calls are skipped for cfg.OpenTimeout and fail with
// KindUnavailable. It returns p unchanged when p is nil or the breaker is
// disabled.
func WithCircuitBreaker(p Provider, cfg config.BreakerConfig, log *slog.Logger) Provider {
	if p == nil || cfg.MaxFailures <= 0 {
		return p
	}
	return &breakerProvider{
		Provider: p,
		cb: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:        p.Name(),
			MaxFailures: cfg.MaxFailures,
			OpenTimeout: cfg.OpenTimeout,
		}, log),
	}
}

func (b *breakerProvider) Generate(ctx context.Context, req Request) (string, error) {
	var text string
	err := b.cb.Execute(func() error {
		var genErr error
		text, genErr = b.Provider.Generate(ctx, req)
		if genErr == nil && text == "" {
			genErr = errs.NewProviderError(b.Name(), errs.KindMalformed, 0, "empty response", nil)
		}
		return genErr
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return "", errs.NewProviderError(b.Name(), errs.KindUnavailable, 0, "provider temporarily disabled", err)
	}
	return text, err
}
