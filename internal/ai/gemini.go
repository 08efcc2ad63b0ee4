package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/travelboss/travelbot/internal/config"
	errs "github.com/travelboss/travelbot/internal/errors"
)

// GeminiProvider sends the whole conversation as a single prompt.
type GeminiProvider struct {
	client        *genai.Client
	log           *slog.Logger
	model         string
	contentConfig *genai.GenerateContentConfig
}

// NewGeminiProvider creates the Gemini provider. An empty API key is not an
// error: the provider is built and every call fails with an auth error.
func NewGeminiProvider(ctx context.Context, cfg config.GeminiConfig, temperature float32, log *slog.Logger) (*GeminiProvider, error) {
	logger := log.With("component", "gemini_provider")

	topK := cfg.TopK
	topP := cfg.TopP
	p := &GeminiProvider{
		log:   logger,
		model: cfg.Model,
		contentConfig: &genai.GenerateContentConfig{
			Temperature:     &temperature,
			TopK:            &topK,
			TopP:            &topP,
			MaxOutputTokens: cfg.MaxOutputTokens,
		},
	}

	if cfg.APIKey == "" {
		logger.Warn("Gemini API key not configured")
		return p, nil
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	p.client = client

	logger.Info("Gemini provider initialized", "model", cfg.Model)
	return p, nil
}

func (p *GeminiProvider) Name() string { return ProviderGemini }

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (string, error) {
	if p.client == nil {
		return "", missingKey(ProviderGemini)
	}

	contents := []*genai.Content{genai.NewContentFromText(singlePrompt(req), genai.RoleUser)}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, p.contentConfig)
	if err != nil {
		return "", classifyGeminiError(err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		return "", errs.NewProviderError(ProviderGemini, errs.KindMalformed, 0,
			fmt.Sprintf("prompt blocked: %v", resp.PromptFeedback.BlockReason), nil)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errs.NewProviderError(ProviderGemini, errs.KindMalformed, 0, "empty response", nil)
	}
	return text, nil
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		kind := errs.KindFromStatus(apiErr.Code)
		if isQuotaMessage(apiErr.Status) || isQuotaMessage(apiErr.Message) {
			kind = errs.KindQuota
		}
		return errs.NewProviderError(ProviderGemini, kind, apiErr.Code, "API error", err)
	}
	if isQuotaMessage(err.Error()) {
		return errs.NewProviderError(ProviderGemini, errs.KindQuota, 0, "quota exhausted", err)
	}
	return transportError(ProviderGemini, err)
}
