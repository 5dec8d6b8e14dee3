// Package assistant provides the crew-facing voice assistant.
//
// Questions come in as text (the dashboard's speech recognizer runs in
// the browser); replies are generated by a hosted language-model
// backend and spoken through the speech provider. Backend failures
// never crash the assistant: rate limits are retried with exponential
// backoff and exhaustion degrades to a fixed fallback reply.
package assistant

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/orbitalmind/go-cosmo/pkg/bus"
)

// FallbackReply is shown when the language-model backend cannot be
// reached after retries.
const FallbackReply = "I'm having trouble reaching mission support right now, but I'm still here with you."

// Retry policy for rate-limited backend calls.
const (
	DefaultMaxRetries  = 3
	DefaultBackoffBase = time.Second
)

// Provider generates a reply for one prompt.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Close() error
}

// Speaker delivers one utterance, blocking until it completes.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Assistant answers crew questions via the language-model backend.
type Assistant struct {
	provider Provider
	speaker  Speaker

	maxRetries  int
	backoffBase time.Duration

	mu        sync.Mutex
	listening bool

	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error

	// OnReply surfaces each exchange for the dashboard transcript.
	// spoken is false when synthesis failed or no speaker is wired.
	OnReply func(question, reply string, spoken bool)
}

// New creates an assistant. speaker may be nil (text-only replies).
func New(provider Provider, speaker Speaker) *Assistant {
	return &Assistant{
		provider:    provider,
		speaker:     speaker,
		maxRetries:  DefaultMaxRetries,
		backoffBase: DefaultBackoffBase,
		logger:      slog.Default().With("component", "assistant"),
		sleep:       sleepCtx,
	}
}

// SetRetryPolicy overrides the rate-limit retry policy. Non-positive
// values keep the defaults.
func (a *Assistant) SetRetryPolicy(maxRetries int, backoffBase time.Duration) {
	if maxRetries > 0 {
		a.maxRetries = maxRetries
	}
	if backoffBase > 0 {
		a.backoffBase = backoffBase
	}
}

// Bind subscribes the assistant to UI intents on b. The dashboard
// publishes a toggle intent rather than flipping state directly.
func (a *Assistant) Bind(b *bus.Bus) {
	b.Subscribe(bus.TopicIntent, func(evt bus.Event) {
		in, ok := evt.Payload.(bus.Intent)
		if !ok || in.Name != bus.IntentToggleListening {
			return
		}
		a.mu.Lock()
		a.listening = !a.listening
		state := a.listening
		a.mu.Unlock()
		a.logger.Info("listening toggled", "listening", state)
	})
}

// Listening reports whether the assistant is accepting voice input.
func (a *Assistant) Listening() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listening
}

// Ask generates and speaks a reply. The returned string is always
// presentable: on backend failure it is the fixed fallback reply and
// the error describes what went wrong for logging.
func (a *Assistant) Ask(ctx context.Context, question string) (string, error) {
	reply, err := a.generateWithRetry(ctx, question)
	if err != nil {
		a.logger.Warn("backend unavailable, using fallback", "error", err)
		a.surface(question, FallbackReply)
		return FallbackReply, err
	}

	a.surface(question, reply)
	return reply, nil
}

// generateWithRetry retries rate-limited calls with exponential backoff
// (base delay doubling per attempt). Any other failure is immediate.
func (a *Assistant) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	delay := a.backoffBase

	for attempt := 0; ; attempt++ {
		reply, err := a.provider.Generate(ctx, prompt)
		if err == nil {
			return reply, nil
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.IsRateLimited() || attempt >= a.maxRetries {
			return "", err
		}

		a.logger.Info("rate limited, backing off", "attempt", attempt+1, "delay", delay)
		if serr := a.sleep(ctx, delay); serr != nil {
			return "", serr
		}
		delay *= 2
	}
}

// surface speaks the reply and reports the exchange.
func (a *Assistant) surface(question, reply string) {
	spoken := false
	if a.speaker != nil {
		if err := a.speaker.Speak(context.Background(), reply); err != nil {
			a.logger.Warn("speech unavailable, reply is text only", "error", err)
		} else {
			spoken = true
		}
	}
	if a.OnReply != nil {
		a.OnReply(question, reply, spoken)
	}
}

// Close releases the backend provider.
func (a *Assistant) Close() error {
	return a.provider.Close()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
