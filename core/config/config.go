package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	OTel    OTelConfig
	Slack   SlackConfig
	GitHub  GitHubConfig
	GitLab  GitLabConfig
	Relay   RelayConfig
	Env     string
	Port    string
	Debug   bool
	Version string
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

type SlackConfig struct {
	BotToken string
	APIURL   string // Optional: overrides https://slack.com/api/
}

type GitHubConfig struct {
	Token  string
	APIURL string // Optional: GitHub Enterprise or test server
}

type GitLabConfig struct {
	Token   string
	BaseURL string // Optional: self-hosted instance, defaults to https://gitlab.com
}

type RelayConfig struct {
	EmptyThreadRetryDelay time.Duration
	LookupConcurrency     int
}

// Load reads configuration from the environment. In development a .env file
// in the working directory is loaded first when present.
func Load() Config {
	env := getEnv("RELAY_ENV", getEnv("RACK_ENV", "development"))
	if env == "development" {
		_ = godotenv.Load(".env")
	}

	return Config{
		Env:     getEnv("RELAY_ENV", getEnv("RACK_ENV", "development")),
		Port:    getEnv("PORT", "3000"),
		Debug:   getEnvBool("DEBUG", false),
		Version: getEnv("RELAY_VERSION", "dev"),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "threadrelay"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		Slack: SlackConfig{
			BotToken: getEnv("SLACK_BOT_TOKEN", ""),
			APIURL:   getEnv("SLACK_API_URL", ""),
		},
		GitHub: GitHubConfig{
			Token:  getEnv("GITHUB_TOKEN", ""),
			APIURL: getEnv("GITHUB_API_URL", ""),
		},
		GitLab: GitLabConfig{
			Token:   getEnv("GITLAB_TOKEN", ""),
			BaseURL: getEnv("GITLAB_BASE_URL", ""),
		},
		Relay: RelayConfig{
			EmptyThreadRetryDelay: getEnvDuration("RELAY_EMPTY_THREAD_RETRY_DELAY", time.Second),
			LookupConcurrency:     getEnvInt("RELAY_LOOKUP_CONCURRENCY", 8),
		},
	}
}

// MissingCredentials lists the environment variables that must be set before
// the relay endpoints can serve requests.
func (c Config) MissingCredentials() []string {
	var missing []string
	if c.Slack.BotToken == "" {
		missing = append(missing, "SLACK_BOT_TOKEN")
	}
	if c.GitHub.Token == "" {
		missing = append(missing, "GITHUB_TOKEN")
	}
	return missing
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// DebugEnabled is on in development or when DEBUG is set.
func (c Config) DebugEnabled() bool {
	return c.Debug || c.IsDevelopment()
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c GitLabConfig) Enabled() bool {
	return c.Token != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
