package speech

import (
	"context"
	"log/slog"
	"time"
)

// Sink plays one utterance to an audio output, blocking until done.
type Sink interface {
	Play(ctx context.Context, u *Utterance) error
}

// Speaker composes a Provider with playback. Speak blocks until the
// utterance has finished playing, which is what sequenced callers like
// the counselor need. Without a sink, playback is simulated by pacing
// on the utterance's estimated duration (headless deployments where the
// dashboard browser renders the audio).
type Speaker struct {
	provider Provider
	sink     Sink
	logger   *slog.Logger
}

// NewSpeaker creates a speaker. sink may be nil.
func NewSpeaker(provider Provider, sink Sink) *Speaker {
	return &Speaker{
		provider: provider,
		sink:     sink,
		logger:   slog.Default().With("component", "speech.speaker"),
	}
}

// Speak synthesizes and plays one utterance.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	u, err := s.provider.Synthesize(ctx, text)
	if err != nil {
		return err
	}

	if s.sink != nil {
		return s.sink.Play(ctx, u)
	}

	select {
	case <-time.After(u.Duration):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
