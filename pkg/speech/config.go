package speech

import (
	"log/slog"
	"time"
)

// DefaultVoice is the voice used when none is configured.
const DefaultVoice = "charlotte"

// Config holds synthesis provider configuration.
// Use functional options (WithXxx) to set these values.
type Config struct {
	// Provider credentials.
	APIKey  string
	BaseURL string

	// Voice configuration.
	VoiceID string
	ModelID string

	// Timeout for synthesis requests.
	Timeout time.Duration

	// Observability.
	Logger *slog.Logger
}

// Option is a functional option for configuring providers.
type Option func(*Config)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithVoice sets the voice ID.
func WithVoice(voiceID string) Option {
	return func(c *Config) { c.VoiceID = voiceID }
}

// WithModel sets the model ID.
func WithModel(modelID string) Option {
	return func(c *Config) { c.ModelID = modelID }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ModelID: "eleven_turbo_v2_5",
		Timeout: 30 * time.Second,
		Logger:  slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrNoAPIKey
	}
	if c.VoiceID == "" {
		return ErrNoVoiceID
	}
	return nil
}
