package assistant

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
	geminiBaseURL  = "https://generativelanguage.googleapis.com/v1beta"
	providerGemini = "gemini"

	// DefaultModel is the hosted generative-language model.
	DefaultModel = "gemini-2.0-flash"
)

// systemPrompt frames the companion persona for every request.
const systemPrompt = "You are Cosmo, a warm, concise wellness companion aboard a space station. " +
	"Answer in at most three sentences and never give medical diagnoses."

// GeminiConfig configures the Gemini backend.
type GeminiConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
	Logger      *slog.Logger
}

// Gemini implements Provider against the hosted generative-language
// HTTP endpoint (models/{model}:generateContent).
type Gemini struct {
	cfg    GeminiConfig
	client *http.Client
	logger *slog.Logger
}

// NewGemini creates a Gemini provider.
func NewGemini(cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = geminiBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.8
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Gemini{
		cfg:    cfg,
		client: httpc.NewClient(cfg.Timeout),
		logger: cfg.Logger.With("component", "assistant.gemini"),
	}, nil
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate produces a reply for one prompt.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	payload := map[string]any{
		"systemInstruction": map[string]any{
			"parts": []map[string]string{{"text": systemPrompt}},
		},
		"contents": []map[string]any{{
			"role":  "user",
			"parts": []map[string]string{{"text": prompt}},
		}},
		"generationConfig": map[string]any{
			"temperature": g.cfg.Temperature,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", WrapError(providerGemini, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.cfg.BaseURL, g.cfg.Model, g.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", WrapError(providerGemini, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", WrapError(providerGemini, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", g.parseError(resp)
	}

	var result geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", WrapError(providerGemini, fmt.Errorf("decode response: %w", err))
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", WrapError(providerGemini, ErrEmptyResponse)
	}

	g.logger.Debug("reply generated",
		"model", g.cfg.Model,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	return result.Candidates[0].Content.Parts[0].Text, nil
}

// Close releases resources held by the provider.
func (g *Gemini) Close() error {
	g.client.CloseIdleConnections()
	return nil
}

// parseError extracts an APIError from a non-200 response.
func (g *Gemini) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	msg := string(body)
	var apiResp geminiResponse
	if err := json.Unmarshal(body, &apiResp); err == nil && apiResp.Error.Message != "" {
		msg = apiResp.Error.Message
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    msg,
		Provider:   providerGemini,
	}
}

// Verify Gemini implements Provider at compile time.
var _ Provider = (*Gemini)(nil)
