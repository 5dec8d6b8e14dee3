// Package speech provides text-to-speech for the wellness companion.
//
// Synthesis backends implement the Provider interface so the counselor
// and the voice assistant can switch providers without code changes.
// The Speaker type composes a provider with playback pacing and a
// transcript callback; when synthesis is unavailable the callers
// degrade to text-only delivery.
package speech

import (
	"context"
	"time"
)

// Provider converts text into audio.
type Provider interface {
	// Synthesize converts text to a complete audio buffer.
	Synthesize(ctx context.Context, text string) (*Utterance, error)

	// Health checks provider connectivity and API key validity.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// Utterance is one synthesized piece of speech.
type Utterance struct {
	// Audio is the raw audio data.
	Audio []byte

	// SampleRate in Hz.
	SampleRate int

	// Duration is the estimated playback duration.
	Duration time.Duration

	// CharCount is the number of characters synthesized.
	CharCount int

	// LatencyMs is the synthesis time in milliseconds.
	LatencyMs int64
}
