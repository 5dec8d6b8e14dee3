package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/orbitalmind/go-cosmo/internal/httpc"
)

const (
	elevenLabsBaseURL  = "https://api.elevenlabs.io/v1"
	providerElevenLabs = "elevenlabs"

	// elevenLabsSampleRate is the PCM output rate requested below.
	elevenLabsSampleRate = 24000
)

// ElevenLabs implements Provider for the ElevenLabs TTS API.
type ElevenLabs struct {
	config  *Config
	client  *http.Client
	logger  *slog.Logger
	baseURL string
}

// NewElevenLabs creates an ElevenLabs provider.
func NewElevenLabs(opts ...Option) (*ElevenLabs, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = elevenLabsBaseURL
	}

	return &ElevenLabs{
		config:  cfg,
		client:  httpc.NewClient(cfg.Timeout),
		logger:  cfg.Logger.With("component", "speech.elevenlabs"),
		baseURL: baseURL,
	}, nil
}

// Synthesize converts text to a complete audio buffer.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string) (*Utterance, error) {
	start := time.Now()

	url := fmt.Sprintf("%s/text-to-speech/%s?output_format=pcm_24000", e.baseURL, e.config.VoiceID)

	body, err := json.Marshal(map[string]any{
		"text":     text,
		"model_id": e.config.ModelID,
	})
	if err != nil {
		return nil, WrapError(providerElevenLabs, fmt.Errorf("marshal payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, WrapError(providerElevenLabs, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("xi-api-key", e.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, WrapError(providerElevenLabs, fmt.Errorf("synthesis request: %w", err))
	}
	defer resp.Body.Close()

	latency := time.Since(start).Milliseconds()

	if resp.StatusCode != http.StatusOK {
		return nil, e.parseError(resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapError(providerElevenLabs, fmt.Errorf("read response: %w", err))
	}

	e.logger.Debug("synthesized audio",
		"chars", len(text),
		"bytes", len(audio),
		"latency_ms", latency,
	)

	return &Utterance{
		Audio:      audio,
		SampleRate: elevenLabsSampleRate,
		Duration:   pcmDuration(len(audio), elevenLabsSampleRate),
		CharCount:  len(text),
		LatencyMs:  latency,
	}, nil
}

// Health checks API connectivity and API key validity.
func (e *ElevenLabs) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/user", nil)
	if err != nil {
		return WrapError(providerElevenLabs, err)
	}
	req.Header.Set("xi-api-key", e.config.APIKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return WrapError(providerElevenLabs, fmt.Errorf("health check: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return e.parseError(resp)
	}
	return nil
}

// Close releases resources held by the provider.
func (e *ElevenLabs) Close() error {
	e.client.CloseIdleConnections()
	return nil
}

// parseError extracts an APIError from a non-200 response.
func (e *ElevenLabs) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var apiResp struct {
		Detail struct {
			Message string `json:"message"`
		} `json:"detail"`
	}
	msg := string(body)
	if err := json.Unmarshal(body, &apiResp); err == nil && apiResp.Detail.Message != "" {
		msg = apiResp.Detail.Message
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    msg,
		Provider:   providerElevenLabs,
	}
}

// pcmDuration computes playback time for mono 16-bit PCM.
func pcmDuration(byteLen, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	samples := byteLen / 2
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}

// Verify ElevenLabs implements Provider at compile time.
var _ Provider = (*ElevenLabs)(nil)
