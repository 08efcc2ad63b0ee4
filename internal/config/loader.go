package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	errs "github.com/travelboss/travelbot/internal/errors"
)

// EnvPrefix is the prefix of environment variable overrides, e.g.
// TRAVELBOT_AI_PROVIDER for ai.provider.
const EnvPrefix = "TRAVELBOT"

// legacyEnv maps configuration keys to additional environment variable names
// accepted for compatibility with existing deployments.
var legacyEnv = map[string][]string{
	"ai.provider":          {"AI_PROVIDER"},
	"ai.gemini.api_key":    {"GOOGLE_AI_KEY", "GEMINI_API_KEY"},
	"ai.openai.api_key":    {"OPENAI_API_KEY"},
	"ai.anthropic.api_key": {"ANTHROPIC_API_KEY"},
	"telegram.token":       {"TELEGRAM_BOT_TOKEN"},
	"http.addr":            {"HTTP_ADDR"},
}

// LoadConfig reads configuration in order of increasing precedence: built-in
// defaults, the YAML file at path (optional), and environment variables.
// Variables from envFiles (default ".env") are loaded into the process
// environment first without overriding variables that are already set.
func LoadConfig(path string, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	if err := loadDotEnv(envFiles); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		bind := append([]string{key, EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, names...)
		if err := v.BindEnv(bind...); err != nil {
			return nil, errs.NewConfigError("failed to bind environment variables for "+key, err)
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, errs.NewConfigError(fmt.Sprintf("failed to read config file %s", path), err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, errs.NewConfigError(fmt.Sprintf("failed to stat config file %s", path), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errs.NewConfigError("failed to parse config", err)
	}

	if cfg.AI.Provider == "google" {
		cfg.AI.Provider = "gemini"
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func loadDotEnv(files []string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return errs.NewConfigError(fmt.Sprintf("failed to load env file %s", f), err)
		}
	}
	return nil
}

func validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return errs.NewConfigError("invalid configuration", err)
	}

	if _, err := time.LoadLocation(cfg.Business.Timezone); err != nil {
		return errs.NewConfigError(fmt.Sprintf("invalid business.timezone %q", cfg.Business.Timezone), err)
	}

	for name, task := range cfg.Scheduler.Tasks {
		if task.Enabled && strings.TrimSpace(task.Schedule) == "" {
			return errs.NewConfigError(fmt.Sprintf("scheduler task %q is enabled without a schedule", name), nil)
		}
	}

	return nil
}
