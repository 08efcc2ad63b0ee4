package ai

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/travelboss/travelbot/internal/config"
	errs "github.com/travelboss/travelbot/internal/errors"
	"github.com/travelboss/travelbot/internal/memory"
)

// OpenAIProvider sends the instruction as a system message followed by the
// history.
type OpenAIProvider struct {
	client      *openai.Client
	log         *slog.Logger
	model       string
	maxTokens   int
	temperature float32
	hasKey      bool
}

func NewOpenAIProvider(cfg config.OpenAIConfig, temperature float32, log *slog.Logger) *OpenAIProvider {
	logger := log.With("component", "openai_provider")

	openAICfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		openAICfg.BaseURL = cfg.BaseURL
	}

	if cfg.APIKey == "" {
		logger.Warn("OpenAI API key not configured")
	} else {
		logger.Info("OpenAI provider initialized", "model", cfg.Model, "base_url", openAICfg.BaseURL)
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(openAICfg),
		log:         logger,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: temperature,
		hasKey:      cfg.APIKey != "",
	}
}

func (p *OpenAIProvider) Name() string { return ProviderOpenAI }

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (string, error) {
	if !p.hasKey {
		return "", missingKey(ProviderOpenAI)
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemWithContext(req),
	})
	for _, turn := range req.History {
		role := openai.ChatMessageRoleUser
		if turn.Role == memory.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", errs.NewProviderError(ProviderOpenAI, errs.KindMalformed, 0, "no choices in response", nil)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errs.NewProviderError(ProviderOpenAI, errs.KindMalformed, 0, "empty response", nil)
	}
	return text, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		kind := errs.KindFromStatus(apiErr.HTTPStatusCode)
		if isQuotaMessage(apiErr.Message) {
			kind = errs.KindQuota
		}
		return errs.NewProviderError(ProviderOpenAI, kind, apiErr.HTTPStatusCode, "API error", err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		kind := errs.KindFromStatus(reqErr.HTTPStatusCode)
		return errs.NewProviderError(ProviderOpenAI, kind, reqErr.HTTPStatusCode, "request error", err)
	}

	return transportError(ProviderOpenAI, err)
}
