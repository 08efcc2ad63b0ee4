package ai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/travelboss/travelbot/internal/ai"
	"github.com/travelboss/travelbot/internal/config"
	errs "github.com/travelboss/travelbot/internal/errors"
	"github.com/travelboss/travelbot/internal/memory"
)

func chatRequest() ai.Request {
	return ai.Request{
		System:  "SYSTEM",
		Session: ai.SessionContext{State: "active", Active: true},
		History: []memory.Turn{{Role: memory.RoleUser, Content: "quanto custa?"}},
	}
}

func TestOpenAIProvider_Generate(t *testing.T) {
	t.Parallel()

	var got struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  Custa 700.000 KZ. "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	p := ai.NewOpenAIProvider(config.OpenAIConfig{
		APIKey: "sk-test", BaseURL: srv.URL + "/v1", Model: "gpt-test", MaxTokens: 500,
	}, 0.7, discardLogger())

	text, err := p.Generate(context.Background(), chatRequest())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "Custa 700.000 KZ." {
		t.Errorf("Generate() = %q", text)
	}
	if auth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", auth)
	}
	if got.Model != "gpt-test" || got.MaxTokens != 500 {
		t.Errorf("request model/max_tokens = %q/%d", got.Model, got.MaxTokens)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || !strings.HasPrefix(got.Messages[0].Content, "SYSTEM\n\nCONTEXTO:") {
		t.Errorf("messages = %+v", got.Messages)
	}
	if got.Messages[1].Role != "user" || got.Messages[1].Content != "quanto custa?" {
		t.Errorf("history message = %+v", got.Messages[1])
	}
}

func TestOpenAIProvider_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantKind errs.ProviderKind
	}{
		{name: "unauthorized", status: 401, body: `{"error":{"message":"bad key","type":"invalid_request_error"}}`, wantKind: errs.KindAuth},
		{name: "quota", status: 429, body: `{"error":{"message":"You exceeded your current quota","type":"insufficient_quota"}}`, wantKind: errs.KindQuota},
		{name: "server error", status: 500, body: `{"error":{"message":"oops","type":"server_error"}}`, wantKind: errs.KindProvider},
		{name: "no choices", status: 200, body: `{"id":"1","choices":[]}`, wantKind: errs.KindMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := ai.NewOpenAIProvider(config.OpenAIConfig{APIKey: "k", BaseURL: srv.URL, Model: "m", MaxTokens: 10}, 0.7, discardLogger())
			_, err := p.Generate(context.Background(), chatRequest())
			if err == nil {
				t.Fatal("Generate() error = nil")
			}
			if got := errs.Kind(err); got != tt.wantKind {
				t.Errorf("Kind() = %q, want %q (err: %v)", got, tt.wantKind, err)
			}
		})
	}
}

func TestAnthropicProvider_Generate(t *testing.T) {
	t.Parallel()

	var body struct {
		Model     string `json:"model"`
		System    string `json:"system"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	var headers http.Header

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		if r.URL.Path != "/v1/messages" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Olá da Anthropic"}]}`))
	}))
	defer srv.Close()

	p := ai.NewAnthropicProvider(config.AnthropicConfig{
		APIKey: "ak", BaseURL: srv.URL + "/v1/", Model: "claude-test", Version: "2023-06-01", MaxTokens: 500,
	}, 0.7, srv.Client(), discardLogger())

	text, err := p.Generate(context.Background(), chatRequest())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "Olá da Anthropic" {
		t.Errorf("Generate() = %q", text)
	}
	if headers.Get("x-api-key") != "ak" || headers.Get("anthropic-version") != "2023-06-01" {
		t.Errorf("headers = %v", headers)
	}
	if headers.Get("Authorization") != "" {
		t.Error("Anthropic requests must not carry a bearer token")
	}
	if !strings.HasPrefix(body.System, "SYSTEM\n\nCONTEXTO:") || body.MaxTokens != 500 || body.Model != "claude-test" {
		t.Errorf("request body = %+v", body)
	}
	if len(body.Messages) != 1 || body.Messages[0].Role != "user" {
		t.Errorf("messages = %+v", body.Messages)
	}
}

func TestAnthropicProvider_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantKind errs.ProviderKind
	}{
		{name: "auth", status: 401, body: `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`, wantKind: errs.KindAuth},
		{name: "rate limit", status: 429, body: `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`, wantKind: errs.KindQuota},
		{name: "overloaded", status: 529, body: `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`, wantKind: errs.KindProvider},
		{name: "malformed", status: 200, body: `not json`, wantKind: errs.KindMalformed},
		{name: "no text", status: 200, body: `{"content":[]}`, wantKind: errs.KindMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := ai.NewAnthropicProvider(config.AnthropicConfig{
				APIKey: "ak", BaseURL: srv.URL, Model: "m", Version: "v", MaxTokens: 10,
			}, 0.7, srv.Client(), discardLogger())

			_, err := p.Generate(context.Background(), chatRequest())
			if got := errs.Kind(err); err == nil || got != tt.wantKind {
				t.Errorf("Generate() err = %v (kind %q), want kind %q", err, got, tt.wantKind)
			}
		})
	}
}

func TestGeminiProvider_Generate(t *testing.T) {
	t.Parallel()

	var prompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-test:generateContent") {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Contents) == 1 && len(req.Contents[0].Parts) == 1 {
			prompt = req.Contents[0].Parts[0].Text
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Olá do Gemini"}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	p, err := ai.NewGeminiProvider(context.Background(), config.GeminiConfig{
		APIKey: "gk", BaseURL: srv.URL + "/", Model: "gemini-test", TopK: 40, TopP: 0.95, MaxOutputTokens: 1024,
	}, 0.7, discardLogger())
	if err != nil {
		t.Fatalf("NewGeminiProvider() error = %v", err)
	}

	text, err := p.Generate(context.Background(), chatRequest())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "Olá do Gemini" {
		t.Errorf("Generate() = %q", text)
	}
	if !strings.Contains(prompt, "HISTÓRICO DA CONVERSA:\nCliente: quanto custa?\n") || !strings.HasSuffix(prompt, "\nTravelBot:") {
		t.Errorf("prompt = %q", prompt)
	}
}

func TestGeminiProvider_QuotaError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"Resource has been exhausted (e.g. check quota).","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	p, err := ai.NewGeminiProvider(context.Background(), config.GeminiConfig{
		APIKey: "gk", BaseURL: srv.URL + "/", Model: "gemini-test", MaxOutputTokens: 1024,
	}, 0.7, discardLogger())
	if err != nil {
		t.Fatalf("NewGeminiProvider() error = %v", err)
	}

	_, err = p.Generate(context.Background(), chatRequest())
	if got := errs.Kind(err); got != errs.KindQuota {
		t.Errorf("Kind() = %q, want quota (err: %v)", got, err)
	}
}

func TestProviders_MissingKey(t *testing.T) {
	t.Parallel()

	g, err := ai.NewGeminiProvider(context.Background(), config.GeminiConfig{Model: "m"}, 0.7, discardLogger())
	if err != nil {
		t.Fatalf("NewGeminiProvider() error = %v", err)
	}
	providers := []ai.Provider{
		g,
		ai.NewOpenAIProvider(config.OpenAIConfig{BaseURL: "http://127.0.0.1:1", Model: "m"}, 0.7, discardLogger()),
		ai.NewAnthropicProvider(config.AnthropicConfig{BaseURL: "http://127.0.0.1:1", Model: "m"}, 0.7, nil, discardLogger()),
	}

	for _, p := range providers {
		_, err := p.Generate(context.Background(), chatRequest())
		if got := errs.Kind(err); got != errs.KindAuth {
			t.Errorf("%s: Kind() = %q, want auth", p.Name(), got)
		}
	}
}

func TestNewProvider(t *testing.T) {
	t.Parallel()

	cfg := config.AIConfig{Provider: ai.ProviderFallback}
	p, err := ai.NewProvider(context.Background(), cfg, discardLogger())
	if err != nil || p != nil {
		t.Errorf("fallback provider = %v, %v; want nil, nil", p, err)
	}

	cfg.Provider = ai.ProviderAnthropic
	cfg.Anthropic = config.AnthropicConfig{BaseURL: "http://localhost", Model: "m", Version: "v", MaxTokens: 1}
	p, err = ai.NewProvider(context.Background(), cfg, discardLogger())
	if err != nil || p == nil || p.Name() != ai.ProviderAnthropic {
		t.Errorf("anthropic provider = %v, %v", p, err)
	}

	cfg.Provider = "unknown"
	if _, err := ai.NewProvider(context.Background(), cfg, discardLogger()); errs.Code(err) != errs.CodeConfig {
		t.Errorf("unknown provider err = %v, want config error", err)
	}
}
