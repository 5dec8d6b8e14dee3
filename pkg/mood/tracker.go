package mood

import (
	"log/slog"
	"sync"
	"time"

	"github.com/orbitalmind/go-cosmo/pkg/bus"
)

// DefaultClearDelay is how long the tracker waits after losing the face
// before it publishes the absent emotion. A detection arriving within
// the delay cancels the clear, so classification flicker across a frame
// or two does not register as a transition.
const DefaultClearDelay = time.Second

// Tracker consumes raw per-frame emotion classifications and republishes
// only changes as emotionchange events.
type Tracker struct {
	mu         sync.Mutex
	last       Emotion
	clearTimer *time.Timer
	clearDelay time.Duration

	bus    *bus.Bus
	logger *slog.Logger

	now func() time.Time
}

// NewTracker creates a tracker publishing to b.
func NewTracker(b *bus.Bus) *Tracker {
	return &Tracker{
		clearDelay: DefaultClearDelay,
		bus:        b,
		logger:     slog.Default().With("component", "mood.tracker"),
		now:        time.Now,
	}
}

// Current returns the last emitted emotion.
func (t *Tracker) Current() Emotion {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// Observe records one classification attempt. If the value differs from
// the last emitted one, an emotionchange event is published; repeated
// identical observations are silent.
func (t *Tracker) Observe(raw Emotion) {
	t.mu.Lock()
	t.cancelClearLocked()
	changed := raw != t.last
	if changed {
		t.last = raw
	}
	t.mu.Unlock()

	if changed {
		t.publish(raw)
	}
}

// ObserveFrame records the result of one classifier pass over a frame.
// When no face is present the absent transition is not applied
// immediately: it is scheduled after the clear delay and cancelled if a
// later frame finds the face again.
func (t *Tracker) ObserveFrame(raw Emotion, faceFound bool) {
	if faceFound {
		t.Observe(raw)
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == EmotionNone || t.clearTimer != nil {
		return
	}
	t.clearTimer = time.AfterFunc(t.clearDelay, func() {
		t.mu.Lock()
		t.clearTimer = nil
		changed := t.last != EmotionNone
		if changed {
			t.last = EmotionNone
		}
		t.mu.Unlock()

		if changed {
			t.publish(EmotionNone)
		}
	})
}

func (t *Tracker) publish(e Emotion) {
	at := t.now()
	t.logger.Debug("emotion changed", "emotion", e.String())
	t.bus.PublishAt(bus.TopicEmotionChange, at, bus.EmotionChange{
		Emotion: string(e),
		At:      at.UnixMilli(),
	})
}

func (t *Tracker) cancelClearLocked() {
	if t.clearTimer != nil {
		t.clearTimer.Stop()
		t.clearTimer = nil
	}
}
