// Package config defines the configuration structures for TravelBot and
// loads them from defaults, an optional .env file, a YAML file and
// TRAVELBOT_* environment variables.
package config

import (
	"time"

	"github.com/travelboss/travelbot/internal/intent"
)

// Config holds the complete application configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	AI        AIConfig        `mapstructure:"ai"`
	Business  BusinessConfig  `mapstructure:"business"`
	Location  LocationConfig  `mapstructure:"location"`
	Media     MediaConfig     `mapstructure:"media"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Session   SessionConfig   `mapstructure:"session"`
	Database  DatabaseConfig  `mapstructure:"database"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
	Intents   intent.Table    `mapstructure:"intents"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the transport credentials. AdminID identifies the
// operator allowed to run admin commands.
type TelegramConfig struct {
	Token   string `mapstructure:"token" validate:"required"`
	AdminID int64  `mapstructure:"admin_id" validate:"gte=0"`
}

// AIConfig selects and configures the LLM provider.
type AIConfig struct {
	Provider     string          `mapstructure:"provider" validate:"oneof=gemini openai anthropic fallback"`
	Timeout      time.Duration   `mapstructure:"timeout" validate:"min=1s,max=5m"`
	HistoryLimit int             `mapstructure:"history_limit" validate:"min=1,max=100"`
	Temperature  float32         `mapstructure:"temperature" validate:"min=0,max=2"`
	Instruction  string          `mapstructure:"instruction" validate:"required"`
	Gemini       GeminiConfig    `mapstructure:"gemini"`
	OpenAI       OpenAIConfig    `mapstructure:"openai"`
	Anthropic    AnthropicConfig `mapstructure:"anthropic"`
	Breaker      BreakerConfig   `mapstructure:"breaker"`
}

// BreakerConfig guards provider calls. MaxFailures consecutive failures skip
// the provider for OpenTimeout. Zero MaxFailures disables the breaker.
type BreakerConfig struct {
	MaxFailures int           `mapstructure:"max_failures" validate:"min=0"`
	OpenTimeout time.Duration `mapstructure:"open_timeout" validate:"min=0"`
}

// GeminiConfig configures the single-prompt provider.
type GeminiConfig struct {
	APIKey          string  `mapstructure:"api_key"`
	BaseURL         string  `mapstructure:"base_url" validate:"omitempty,url"`
	Model           string  `mapstructure:"model" validate:"required"`
	TopK            float32 `mapstructure:"top_k" validate:"min=0"`
	TopP            float32 `mapstructure:"top_p" validate:"min=0,max=1"`
	MaxOutputTokens int32   `mapstructure:"max_output_tokens" validate:"min=1"`
}

// OpenAIConfig configures the chat provider that carries the instruction as a
// system message.
type OpenAIConfig struct {
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url" validate:"required,url"`
	Model     string `mapstructure:"model" validate:"required"`
	MaxTokens int    `mapstructure:"max_tokens" validate:"min=1"`
}

// AnthropicConfig configures the chat provider that carries the instruction
// in a separate system field.
type AnthropicConfig struct {
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url" validate:"required,url"`
	Model     string `mapstructure:"model" validate:"required"`
	Version   string `mapstructure:"version" validate:"required"`
	MaxTokens int    `mapstructure:"max_tokens" validate:"min=1"`
}

// BusinessConfig holds the agency facts used by replies and templates.
type BusinessConfig struct {
	Name       string `mapstructure:"name" validate:"required"`
	Address    string `mapstructure:"address"`
	Directions string `mapstructure:"directions"`
	Hours      string `mapstructure:"hours"`
	Phone      string `mapstructure:"phone"`
	Email      string `mapstructure:"email"`
	Site       string `mapstructure:"site"`
	MapsURL    string `mapstructure:"maps_url"`
	Timezone   string `mapstructure:"timezone" validate:"required"`
}

// LocationConfig is the fixed point sent for location requests.
type LocationConfig struct {
	Latitude  float64 `mapstructure:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `mapstructure:"longitude" validate:"min=-180,max=180"`
	Label     string  `mapstructure:"label"`
}

// MediaConfig lists the image assets, relative to Dir.
type MediaConfig struct {
	Dir             string        `mapstructure:"dir" validate:"required"`
	Logo            string        `mapstructure:"logo"`
	LogoCaption     string        `mapstructure:"logo_caption"`
	Gallery         []string      `mapstructure:"gallery"`
	GalleryCaption  string        `mapstructure:"gallery_caption"`
	GalleryDelay    time.Duration `mapstructure:"gallery_delay" validate:"min=0"`
	Personal        string        `mapstructure:"personal"`
	PersonalCaption string        `mapstructure:"personal_caption"`
}

// RateLimitConfig bounds inbound messages per user.
type RateLimitConfig struct {
	MaxRequests    int           `mapstructure:"max_requests" validate:"min=1"`
	Window         time.Duration `mapstructure:"window" validate:"min=1s"`
	SweepRetention time.Duration `mapstructure:"sweep_retention" validate:"min=1s"`
}

// SessionConfig controls idle eviction.
type SessionConfig struct {
	IdleTimeout time.Duration `mapstructure:"idle_timeout" validate:"min=1m"`
}

// DatabaseConfig configures the transcript store.
type DatabaseConfig struct {
	Path      string        `mapstructure:"path" validate:"required"`
	Retention time.Duration `mapstructure:"retention" validate:"min=0"`
}

// HTTPConfig configures the observability server.
type HTTPConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr" validate:"required_if=Enabled true"`
}

// SchedulerConfig defines scheduled task settings.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig defines settings for a single scheduled task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// MessagesConfig holds every reply text. Texts may reference the
// placeholders {greeting}, {name}, {address}, {hours}, {phone}, {email},
// {site} and {maps_url}.
type MessagesConfig struct {
	RateLimited       string `mapstructure:"rate_limited"`
	InternalError     string `mapstructure:"internal_error"`
	Stop              string `mapstructure:"stop"`
	FirstGreeting     string `mapstructure:"first_greeting"`
	ReturningGreeting string `mapstructure:"returning_greeting"`
	LogoSent          string `mapstructure:"logo_sent"`
	MediaFailed       string `mapstructure:"media_failed"`
	GalleryIntro      string `mapstructure:"gallery_intro"`
	GallerySent       string `mapstructure:"gallery_sent"`
	GalleryFailed     string `mapstructure:"gallery_failed"`
	LocationIntro     string `mapstructure:"location_intro"`
	LocationSent      string `mapstructure:"location_sent"`
	LocationFailed    string `mapstructure:"location_failed"`
	PersonalSent      string `mapstructure:"personal_sent"`
	AssetMissing      string `mapstructure:"asset_missing"`
	AdminCleared      string `mapstructure:"admin_cleared"`
	AdminInfo         string `mapstructure:"admin_info"`
}

// CredentialWarnings reports configuration that degrades the bot without
// preventing it from starting.
func (c *Config) CredentialWarnings() []string {
	var warnings []string
	switch c.AI.Provider {
	case "gemini":
		if c.AI.Gemini.APIKey == "" {
			warnings = append(warnings, "ai.gemini.api_key is empty; replies will use the fallback responder")
		}
	case "openai":
		if c.AI.OpenAI.APIKey == "" {
			warnings = append(warnings, "ai.openai.api_key is empty; replies will use the fallback responder")
		}
	case "anthropic":
		if c.AI.Anthropic.APIKey == "" {
			warnings = append(warnings, "ai.anthropic.api_key is empty; replies will use the fallback responder")
		}
	}
	if c.Telegram.AdminID == 0 {
		warnings = append(warnings, "telegram.admin_id is not set; admin commands are disabled")
	}
	return warnings
}
