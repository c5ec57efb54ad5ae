package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Supported language model backends.
const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// Decode implements envconfig.Decoder for values such as "5/min".
func (r *RateLimitConfig) Decode(value string) error {
	parsed, err := parseRateLimit(value)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Config aggregates application-wide configuration values.
type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	LLMProvider  string `envconfig:"LLM_PROVIDER" default:"groq"`
	LLMModel     string `envconfig:"LLM_MODEL"`
	LLMBaseURL   string `envconfig:"LLM_BASE_URL"`
	GroqAPIKey   string `envconfig:"GROQ_API_KEY"`
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`

	GoogleMapsAPIKey string          `envconfig:"GOOGLE_MAPS_API_KEY"`
	PlacesBaseURL    string          `envconfig:"PLACES_BASE_URL" default:"https://maps.googleapis.com/maps/api/place"`
	PageTokenDelay   time.Duration   `envconfig:"PAGE_TOKEN_DELAY" default:"2s"`
	DetailWorkers    int             `envconfig:"DETAIL_WORKERS" default:"4"`
	DetailRateLimit  RateLimitConfig `envconfig:"DETAIL_RATE_LIMIT" default:"10/s"`
	HTTPTimeout      time.Duration   `envconfig:"HTTP_TIMEOUT" default:"15s"`

	RateLimitSearch RateLimitConfig `envconfig:"RATE_LIMIT_SEARCH" default:"5/min"`
	SessionSecret   string          `envconfig:"SESSION_SECRET" default:"dev-secret"`
	SessionTTL      time.Duration   `envconfig:"SESSION_TTL" default:"24h"`
	SessionCapacity int             `envconfig:"SESSION_CAPACITY" default:"1024"`
	SecureCookies   bool            `envconfig:"SECURE_COOKIES" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL"`
	PhoneRegion string `envconfig:"PHONE_REGION" default:"US"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// ConfigurationError reports settings that make the service unable to run.
type ConfigurationError struct {
	Missing []string
	Reason  string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Missing, ", "))
	}
	return "invalid configuration: " + e.Reason
}

// Load reads configuration from environment variables, applies defaults and validates credentials.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}
	cfg.applyProviderDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LLMAPIKey returns the credential of the selected provider.
func (c *Config) LLMAPIKey() string {
	switch c.LLMProvider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderGemini:
		return c.GeminiAPIKey
	default:
		return c.GroqAPIKey
	}
}

// Validate checks that both credentials are present and that the provider is known.
func (c *Config) Validate() error {
	var missing []string
	switch c.LLMProvider {
	case ProviderGroq:
		if c.GroqAPIKey == "" {
			missing = append(missing, "GROQ_API_KEY")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			missing = append(missing, "GEMINI_API_KEY")
		}
	default:
		return &ConfigurationError{Reason: fmt.Sprintf("unsupported LLM_PROVIDER %q", c.LLMProvider)}
	}
	if c.GoogleMapsAPIKey == "" {
		missing = append(missing, "GOOGLE_MAPS_API_KEY")
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	if c.DetailWorkers <= 0 {
		return &ConfigurationError{Reason: "DETAIL_WORKERS must be positive"}
	}
	if c.PageTokenDelay < 0 {
		return &ConfigurationError{Reason: "PAGE_TOKEN_DELAY must not be negative"}
	}
	return nil
}

func (c *Config) applyProviderDefaults() {
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	switch c.LLMProvider {
	case ProviderGroq:
		if c.LLMBaseURL == "" {
			c.LLMBaseURL = "https://api.groq.com/openai/v1"
		}
		if c.LLMModel == "" {
			c.LLMModel = "llama3-8b-8192"
		}
	case ProviderOpenAI:
		if c.LLMModel == "" {
			c.LLMModel = "gpt-4o-mini"
		}
	case ProviderGemini:
		if c.LLMModel == "" {
			c.LLMModel = "gemini-2.0-flash"
		}
	}
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}
