package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/runwhen-contrib/ccblogger/pkg/storage"
	"gopkg.in/yaml.v3"
)

// Config stores generator defaults outside the domain layer. Flags override
// config values, and CCBLOGGER_AI_PROVIDER / CCBLOGGER_AI_MODEL override the
// provider fields at wiring time.
type Config struct {
	Provider        string             `yaml:"provider"`
	Model           string             `yaml:"model"`
	Temperature     float32            `yaml:"temperature"`
	MaxRetries      int                `yaml:"max_retries"`
	TimeoutSeconds  int                `yaml:"timeout_seconds"`
	MaxTokensPerRun int                `yaml:"max_tokens_per_run"`
	Notifications   NotificationConfig `yaml:"notifications"`
}

// NotificationConfig holds optional outbound notification targets. Secrets
// live here and must never be echoed back in command output.
type NotificationConfig struct {
	SlackWebhookURL string `yaml:"slack_webhook_url"`
	WebhookURL      string `yaml:"webhook_url"`
	WebhookSecret   string `yaml:"webhook_secret"`
}

// Default returns the built-in configuration used when no file exists.
func Default() *Config {
	return &Config{
		Provider:       "openai",
		Model:          "gpt-4-turbo-preview",
		Temperature:    0.7,
		MaxRetries:     3,
		TimeoutSeconds: 30,
	}
}

// Load reads the config file under root's app directory. A missing file
// yields the defaults; keys absent from the file keep their default values.
func Load(root string) (*Config, error) {
	repo := storage.NewFilesystemStore(root)
	path, err := repo.ResolvePath(storage.ConfigFile)
	if err != nil {
		return nil, err
	}

	cfg := Default()

	data, err := os.ReadFile(path) // #nosec G304 -- path is resolved against the app directory
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Save writes the config file under root's app directory.
func Save(root string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	repo := storage.NewFilesystemStore(root)
	path, err := repo.ResolvePath(storage.ConfigFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// Set updates a single dotted key, parsing the value per field type.
func (c *Config) Set(key, value string) error {
	switch key {
	case "provider":
		c.Provider = value
	case "model":
		c.Model = value
	case "temperature":
		f, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return fmt.Errorf("invalid temperature %q: %w", value, err)
		}
		c.Temperature = float32(f)
	case "max_retries":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid max_retries %q: %w", value, err)
		}
		c.MaxRetries = n
	case "timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid timeout_seconds %q: %w", value, err)
		}
		c.TimeoutSeconds = n
	case "max_tokens_per_run":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid max_tokens_per_run %q: %w", value, err)
		}
		c.MaxTokensPerRun = n
	case "notifications.slack_webhook_url":
		c.Notifications.SlackWebhookURL = value
	case "notifications.webhook_url":
		c.Notifications.WebhookURL = value
	case "notifications.webhook_secret":
		c.Notifications.WebhookSecret = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
