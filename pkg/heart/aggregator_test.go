package heart

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/orbitalmind/go-cosmo/pkg/bus"
)

type captured struct {
	mu     sync.Mutex
	rates  []bus.HeartRate
	stress []bus.StressDetected
}

func capture(b *bus.Bus) *captured {
	c := &captured{}
	b.Subscribe(bus.TopicHeartRate, func(evt bus.Event) {
		c.mu.Lock()
		c.rates = append(c.rates, evt.Payload.(bus.HeartRate))
		c.mu.Unlock()
	})
	b.Subscribe(bus.TopicStressDetected, func(evt bus.Event) {
		c.mu.Lock()
		c.stress = append(c.stress, evt.Payload.(bus.StressDetected))
		c.mu.Unlock()
	})
	return c
}

func (c *captured) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rates), len(c.stress)
}

func runBus(t *testing.T, b *bus.Bus) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go b.Run(ctx)
}

func TestStressScenario(t *testing.T) {
	// Stream [70,72,150,155,160], threshold 100, min count 5:
	// stressdetected first fires at the 5th sample (average ~121.4).
	b := bus.New()
	c := capture(b)
	runBus(t, b)

	a := NewAggregator(b, Config{WindowSize: 10, StressThreshold: 100, StressMinCount: 5})
	for _, bpm := range []int{70, 72, 150, 155, 160} {
		a.Observe(bpm)
	}
	b.Drain()

	rates, stress := c.counts()
	if rates != 5 {
		t.Fatalf("heartrate events = %d, want 5 (one per accepted sample)", rates)
	}
	if stress != 1 {
		t.Fatalf("stressdetected events = %d, want 1 (only the 5th sample qualifies)", stress)
	}

	c.mu.Lock()
	ev := c.stress[0]
	c.mu.Unlock()
	if ev.Type != bus.StressHighHeartRate {
		t.Errorf("stress type = %q, want %q", ev.Type, bus.StressHighHeartRate)
	}
	if ev.Value != 160 {
		t.Errorf("stress value = %d, want most recent sample 160", ev.Value)
	}
	if math.Abs(ev.Average-121.4) > 0.01 {
		t.Errorf("stress average = %.2f, want 121.4", ev.Average)
	}
}

func TestStressIsLevelTriggered(t *testing.T) {
	// While the condition holds, every qualifying sample republishes.
	b := bus.New()
	c := capture(b)
	runBus(t, b)

	a := NewAggregator(b, Config{WindowSize: 10, StressThreshold: 100, StressMinCount: 5})
	for i := 0; i < 8; i++ {
		a.Observe(150)
	}
	b.Drain()

	_, stress := c.counts()
	if stress != 4 {
		t.Errorf("stressdetected events = %d, want 4 (samples 5 through 8)", stress)
	}
}

func TestWindowEvictsOldest(t *testing.T) {
	b := bus.New()
	c := capture(b)
	runBus(t, b)

	a := NewAggregator(b, Config{WindowSize: 3, StressThreshold: 1000, StressMinCount: 100})
	for _, bpm := range []int{10, 20, 30, 60} {
		a.Observe(bpm)
	}
	b.Drain()

	// After inserting 4 samples into a window of 3, the average covers
	// only the last 3.
	c.mu.Lock()
	last := c.rates[len(c.rates)-1]
	c.mu.Unlock()
	want := float64(20+30+60) / 3
	if math.Abs(last.Average-want) > 1e-9 {
		t.Errorf("average = %v, want %v (last 3 samples only)", last.Average, want)
	}

	got := a.Window()
	if len(got) != 3 || got[0] != 20 || got[2] != 60 {
		t.Errorf("Window() = %v, want [20 30 60]", got)
	}
}

func TestNonPositiveSamplesDiscarded(t *testing.T) {
	b := bus.New()
	c := capture(b)
	runBus(t, b)

	a := NewAggregator(b, DefaultConfig())
	a.Observe(0)
	a.Observe(-40)
	b.Drain()

	rates, stress := c.counts()
	if rates != 0 || stress != 0 {
		t.Errorf("events for discarded samples: %d heartrate, %d stress, want none", rates, stress)
	}
	if _, ok := a.Average(); ok {
		t.Error("Average() reports data after only discarded samples")
	}
}

func TestHeartRatePublishedOnEverySample(t *testing.T) {
	b := bus.New()
	c := capture(b)
	runBus(t, b)

	a := NewAggregator(b, DefaultConfig())
	a.Observe(70)
	b.Drain()

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.rates) != 1 {
		t.Fatalf("heartrate events = %d, want 1 from the very first sample", len(c.rates))
	}
	if c.rates[0].Average != 70 {
		t.Errorf("first average = %v, want 70", c.rates[0].Average)
	}
}
