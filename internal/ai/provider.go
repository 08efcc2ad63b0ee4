// Package ai generates customer replies with one configured LLM provider and
// falls back to the keyword responder whenever the provider fails.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/travelboss/travelbot/internal/config"
	errs "github.com/travelboss/travelbot/internal/errors"
	"github.com/travelboss/travelbot/internal/memory"
)

// Provider names.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderFallback  = "fallback"
)

// SessionContext describes the caller's session when the request is built.
type SessionContext struct {
	State  string
	Active bool
}

// Request is the provider-neutral input of a generation call. History
// already ends with the current user message.
type Request struct {
	System      string
	Annotations []string
	Session     SessionContext
	History     []memory.Turn
}

// Provider turns a Request into reply text. Implementations return
// *errors.ProviderError on failure.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// NewProvider builds the provider selected by cfg.Provider. The fallback
// provider is represented by a nil Provider.
func NewProvider(ctx context.Context, cfg config.AIConfig, log *slog.Logger) (Provider, error) {
	switch cfg.Provider {
	case ProviderGemini:
		p, err := NewGeminiProvider(ctx, cfg.Gemini, cfg.Temperature, log)
		if err != nil {
			return nil, err
		}
		return p, nil
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.OpenAI, cfg.Temperature, log), nil
	case ProviderAnthropic:
		return NewAnthropicProvider(cfg.Anthropic, cfg.Temperature, nil, log), nil
	case ProviderFallback:
		return nil, nil
	default:
		return nil, errs.NewConfigError(fmt.Sprintf("unknown AI provider %q", cfg.Provider), nil)
	}
}

// transportError classifies errors that carry no HTTP status.
func transportError(provider string, err error) error {
	var pErr *errs.ProviderError
	if errors.As(err, &pErr) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return errs.NewProviderError(provider, errs.KindTimeout, 0, "request timed out", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errs.NewProviderError(provider, errs.KindTimeout, 0, "request timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return errs.NewProviderError(provider, errs.KindNetwork, 0, "request cancelled", err)
	}
	return errs.NewProviderError(provider, errs.KindNetwork, 0, "request failed", err)
}

func missingKey(provider string) error {
	return errs.NewProviderError(provider, errs.KindAuth, 0, "API key not configured", nil)
}

func isQuotaMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "quota") ||
		strings.Contains(lower, "resource_exhausted") ||
		strings.Contains(lower, "rate limit")
}
