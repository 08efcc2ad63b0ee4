package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/travelboss/travelbot/internal/config"
	errs "github.com/travelboss/travelbot/internal/errors"
	"github.com/travelboss/travelbot/internal/memory"
)

// AnthropicProvider calls the Messages API, which carries the instruction in
// a separate system field and authenticates with an API-key header.
type AnthropicProvider struct {
	httpClient  *http.Client
	log         *slog.Logger
	baseURL     string
	apiKey      string
	model       string
	version     string
	maxTokens   int
	temperature float32
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float32            `json:"temperature"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type anthropicError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewAnthropicProvider creates the provider. A nil httpClient selects
// http.DefaultClient; call deadlines come from the context.
func NewAnthropicProvider(cfg config.AnthropicConfig, temperature float32, httpClient *http.Client, log *slog.Logger) *AnthropicProvider {
	logger := log.With("component", "anthropic_provider")
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if cfg.APIKey == "" {
		logger.Warn("Anthropic API key not configured")
	} else {
		logger.Info("Anthropic provider initialized", "model", cfg.Model)
	}

	return &AnthropicProvider{
		httpClient:  httpClient,
		log:         logger,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		version:     cfg.Version,
		maxTokens:   cfg.MaxTokens,
		temperature: temperature,
	}
}

func (p *AnthropicProvider) Name() string { return ProviderAnthropic }

func (p *AnthropicProvider) Generate(ctx context.Context, req Request) (string, error) {
	if p.apiKey == "" {
		return "", missingKey(ProviderAnthropic)
	}

	body := anthropicRequest{
		Model:       p.model,
		System:      systemWithContext(req),
		Messages:    anthropicMessages(req.History),
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	}

	var resp anthropicResponse
	if err := p.doRequest(ctx, body, &resp); err != nil {
		return "", err
	}

	for _, block := range resp.Content {
		if block.Type == "text" || block.Type == "" {
			if text := strings.TrimSpace(block.Text); text != "" {
				return text, nil
			}
		}
	}
	return "", errs.NewProviderError(ProviderAnthropic, errs.KindMalformed, 0, "no text content in response", nil)
}

// anthropicMessages maps history to API messages. The conversation must open
// with a user turn, so leading assistant turns left by truncation are dropped.
func anthropicMessages(history []memory.Turn) []anthropicMessage {
	out := make([]anthropicMessage, 0, len(history))
	for _, turn := range history {
		if len(out) == 0 && turn.Role == memory.RoleAssistant {
			continue
		}
		role := "user"
		if turn.Role == memory.RoleAssistant {
			role = "assistant"
		}
		out = append(out, anthropicMessage{Role: role, Content: turn.Content})
	}
	return out
}

func (p *AnthropicProvider) doRequest(ctx context.Context, body any, response any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errs.NewProviderError(ProviderAnthropic, errs.KindProvider, 0, "failed to marshal request body", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return errs.NewProviderError(ProviderAnthropic, errs.KindProvider, 0, "failed to create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", p.version)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return transportError(ProviderAnthropic, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := fmt.Sprintf("API error with status %d", resp.StatusCode)
		var apiErr anthropicError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			msg = fmt.Sprintf("%s: %s", apiErr.Error.Type, apiErr.Error.Message)
		}
		kind := errs.KindFromStatus(resp.StatusCode)
		if isQuotaMessage(msg) {
			kind = errs.KindQuota
		}
		return errs.NewProviderError(ProviderAnthropic, kind, resp.StatusCode, msg, nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
		return errs.NewProviderError(ProviderAnthropic, errs.KindMalformed, resp.StatusCode, "failed to decode response", err)
	}
	return nil
}
