package speech

import (
	"context"
	"sync"
	"time"
)

// Mock implements Provider for testing.
// All methods can be customized via function fields.
type Mock struct {
	// SynthesizeFunc is called when Synthesize is invoked.
	// If nil, returns silent audio paced at roughly natural speech.
	SynthesizeFunc func(ctx context.Context, text string) (*Utterance, error)

	// HealthFunc is called when Health is invoked. If nil, returns nil.
	HealthFunc func(ctx context.Context) error

	// CloseFunc is called when Close is invoked. If nil, returns nil.
	CloseFunc func() error

	mu    sync.Mutex
	calls []string
}

// NewMock creates a mock provider with sensible defaults.
func NewMock() *Mock {
	return &Mock{
		SynthesizeFunc: func(ctx context.Context, text string) (*Utterance, error) {
			// ~20ms of silence per character at 24kHz PCM16.
			silence := make([]byte, len(text)*960)
			return &Utterance{
				Audio:      silence,
				SampleRate: 24000,
				Duration:   time.Duration(len(text)) * 20 * time.Millisecond,
				CharCount:  len(text),
				LatencyMs:  1,
			}, nil
		},
	}
}

// WithError returns a mock whose methods all fail with err.
func WithError(err error) *Mock {
	return &Mock{
		SynthesizeFunc: func(context.Context, string) (*Utterance, error) {
			return nil, err
		},
		HealthFunc: func(context.Context) error {
			return err
		},
	}
}

// Synthesize calls SynthesizeFunc and records the synthesized text.
func (m *Mock) Synthesize(ctx context.Context, text string) (*Utterance, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, text)
	}
	return nil, WrapError("mock", ErrProviderUnavailable)
}

// Health calls HealthFunc.
func (m *Mock) Health(ctx context.Context) error {
	if m.HealthFunc != nil {
		return m.HealthFunc(ctx)
	}
	return nil
}

// Close calls CloseFunc.
func (m *Mock) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Calls returns the texts synthesized so far.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Verify Mock implements Provider at compile time.
var _ Provider = (*Mock)(nil)
