// Package config provides configuration for the cosmo wellness companion.
//
// Behavioral thresholds (heart-rate window, gate counts, counselor timing)
// live in a YAML file so crews can tune them without rebuilding. API keys
// come from the environment only.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration file structure.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Heart     HeartConfig     `yaml:"heart"`
	Gate      GateConfig      `yaml:"gate"`
	Counselor CounselorConfig `yaml:"counselor"`
	Assistant AssistantConfig `yaml:"assistant"`
}

// ServerConfig configures the dashboard HTTP server.
type ServerConfig struct {
	Port string `yaml:"port"`
	Host string `yaml:"host"`
}

// HeartConfig configures the heart-rate aggregator and bridge.
type HeartConfig struct {
	WindowSize      int     `yaml:"window_size"`
	StressThreshold float64 `yaml:"stress_threshold"`
	StressMinCount  int     `yaml:"stress_min_count"`
	BridgeURL       string  `yaml:"bridge_url"`
}

// GateConfig configures the mood gate and redirect controller.
type GateConfig struct {
	TargetEmotion string `yaml:"target_emotion"`
	RedirectCount int    `yaml:"redirect_count"`
}

// CounselorConfig configures the mood counselor timing.
type CounselorConfig struct {
	TargetEmotion string        `yaml:"target_emotion"`
	Sustain       time.Duration `yaml:"sustain"`
	Cooldown      time.Duration `yaml:"cooldown"`
}

// AssistantConfig configures the voice assistant backend.
type AssistantConfig struct {
	Model       string        `yaml:"model"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
	Temperature float64       `yaml:"temperature"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8090",
			Host: "0.0.0.0",
		},
		Heart: HeartConfig{
			WindowSize:      10,
			StressThreshold: 100,
			StressMinCount:  5,
		},
		Gate: GateConfig{
			TargetEmotion: "sad",
			RedirectCount: 3,
		},
		Counselor: CounselorConfig{
			TargetEmotion: "sad",
			Sustain:       5 * time.Second,
			Cooldown:      75 * time.Second,
		},
		Assistant: AssistantConfig{
			Model:       "gemini-2.0-flash",
			Timeout:     30 * time.Second,
			MaxRetries:  3,
			Temperature: 0.8,
		},
	}
}

// Load reads configuration from a YAML file, layered over defaults.
// A missing file is not an error; defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// GeminiAPIKey returns the generative-language API key from the environment.
func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

// ElevenLabsAPIKey returns the speech synthesis API key from the environment.
func ElevenLabsAPIKey() string {
	return os.Getenv("ELEVENLABS_API_KEY")
}

// ElevenLabsVoiceID returns the voice ID from the environment, or def.
func ElevenLabsVoiceID(def string) string {
	if v := os.Getenv("ELEVENLABS_VOICE_ID"); v != "" {
		return v
	}
	return def
}
