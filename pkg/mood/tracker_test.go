package mood

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/orbitalmind/go-cosmo/pkg/bus"
)

// collectEmotions subscribes to emotionchange and returns an accessor
// for the emotions seen so far.
func collectEmotions(b *bus.Bus) func() []Emotion {
	var mu sync.Mutex
	var got []Emotion
	b.Subscribe(bus.TopicEmotionChange, func(evt bus.Event) {
		ec := evt.Payload.(bus.EmotionChange)
		mu.Lock()
		got = append(got, Emotion(ec.Emotion))
		mu.Unlock()
	})
	return func() []Emotion {
		mu.Lock()
		defer mu.Unlock()
		return append([]Emotion(nil), got...)
	}
}

func runBus(t *testing.T, b *bus.Bus) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go b.Run(ctx)
}

func TestObserveEdgeTriggered(t *testing.T) {
	b := bus.New()
	events := collectEmotions(b)
	runBus(t, b)

	tr := NewTracker(b)
	for _, e := range []Emotion{
		EmotionNeutral, EmotionNeutral, EmotionNeutral,
		EmotionSad, EmotionSad,
		EmotionHappy,
		EmotionHappy, EmotionHappy,
		EmotionSad,
	} {
		tr.Observe(e)
	}
	b.Drain()

	want := []Emotion{EmotionNeutral, EmotionSad, EmotionHappy, EmotionSad}
	got := events()
	if len(got) != len(want) {
		t.Fatalf("emitted %d events %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestObserveAbsentEmitsOnce(t *testing.T) {
	b := bus.New()
	events := collectEmotions(b)
	runBus(t, b)

	tr := NewTracker(b)
	tr.Observe(EmotionSad)
	tr.Observe(EmotionNone)
	tr.Observe(EmotionNone)
	tr.Observe(EmotionNone)
	b.Drain()

	got := events()
	if len(got) != 2 {
		t.Fatalf("emitted %d events %v, want 2", len(got), got)
	}
	if got[1] != EmotionNone {
		t.Errorf("second event = %q, want absent", got[1])
	}
}

func TestInitialAbsentIsSilent(t *testing.T) {
	b := bus.New()
	events := collectEmotions(b)
	runBus(t, b)

	tr := NewTracker(b)
	tr.Observe(EmotionNone)
	b.Drain()

	if got := events(); len(got) != 0 {
		t.Errorf("emitted %v before any face was seen, want nothing", got)
	}
}

func TestObserveFrameClearDebounce(t *testing.T) {
	b := bus.New()
	events := collectEmotions(b)
	runBus(t, b)

	tr := NewTracker(b)
	tr.clearDelay = 20 * time.Millisecond

	t.Run("detection cancels pending clear", func(t *testing.T) {
		tr.ObserveFrame(EmotionHappy, true)
		tr.ObserveFrame(EmotionNone, false)
		tr.ObserveFrame(EmotionHappy, true) // face came back in time

		time.Sleep(60 * time.Millisecond)
		b.Drain()

		got := events()
		if len(got) != 1 || got[0] != EmotionHappy {
			t.Fatalf("events = %v, want just [happy]", got)
		}
		if tr.Current() != EmotionHappy {
			t.Errorf("Current() = %q, want happy", tr.Current())
		}
	})

	t.Run("sustained loss clears once", func(t *testing.T) {
		tr.ObserveFrame(EmotionNone, false)
		tr.ObserveFrame(EmotionNone, false) // second miss must not re-arm

		time.Sleep(60 * time.Millisecond)
		b.Drain()

		got := events()
		if len(got) != 2 {
			t.Fatalf("events = %v, want [happy, none]", got)
		}
		if got[1] != EmotionNone {
			t.Errorf("clear event = %q, want absent", got[1])
		}
	})
}
