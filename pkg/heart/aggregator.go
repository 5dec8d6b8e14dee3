package heart

import (
	"log/slog"
	"sync"
	"time"

	"github.com/orbitalmind/go-cosmo/pkg/bus"
)

// Aggregator defaults.
const (
	DefaultWindowSize      = 10
	DefaultStressThreshold = 100.0
	DefaultStressMinCount  = 5
)

// Config tunes the aggregator.
type Config struct {
	// WindowSize is the rolling window capacity.
	WindowSize int

	// StressThreshold is the rolling average (bpm) above which stress
	// is reported.
	StressThreshold float64

	// StressMinCount is the minimum number of windowed samples before
	// the stress check is evaluated at all.
	StressMinCount int
}

// DefaultConfig returns the default aggregator tuning.
func DefaultConfig() Config {
	return Config{
		WindowSize:      DefaultWindowSize,
		StressThreshold: DefaultStressThreshold,
		StressMinCount:  DefaultStressMinCount,
	}
}

// Aggregator consumes raw heart-rate samples and publishes heartrate
// events with a running average. While the average holds above the
// stress threshold, every qualifying sample republishes a stress event:
// this is a level check, not an edge, and the event frequency is part
// of the contract downstream consumers rely on.
type Aggregator struct {
	mu  sync.Mutex
	win *window
	cfg Config

	bus    *bus.Bus
	logger *slog.Logger
	now    func() time.Time
}

// NewAggregator creates an aggregator publishing to b.
// Zero config fields fall back to defaults.
func NewAggregator(b *bus.Bus, cfg Config) *Aggregator {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = DefaultWindowSize
	}
	if cfg.StressThreshold <= 0 {
		cfg.StressThreshold = DefaultStressThreshold
	}
	if cfg.StressMinCount <= 0 {
		cfg.StressMinCount = DefaultStressMinCount
	}
	return &Aggregator{
		win:    newWindow(cfg.WindowSize),
		cfg:    cfg,
		bus:    b,
		logger: slog.Default().With("component", "heart.aggregator"),
		now:    time.Now,
	}
}

// Observe records one raw sample. Values that are zero or negative are
// classifier noise (parse failures upstream) and are discarded silently;
// no event is published and no error is surfaced.
func (a *Aggregator) Observe(bpm int) {
	if bpm <= 0 {
		return
	}

	a.mu.Lock()
	a.win.push(bpm)
	avg := a.win.mean()
	count := a.win.len()
	a.mu.Unlock()

	at := a.now()
	ms := at.UnixMilli()
	a.bus.PublishAt(bus.TopicHeartRate, at, bus.HeartRate{
		Value:   bpm,
		Average: avg,
		At:      ms,
	})

	if count >= a.cfg.StressMinCount && avg > a.cfg.StressThreshold {
		a.logger.Warn("sustained high heart rate", "bpm", bpm, "average", avg)
		a.bus.PublishAt(bus.TopicStressDetected, at, bus.StressDetected{
			Type:    bus.StressHighHeartRate,
			Value:   bpm,
			Average: avg,
			At:      ms,
		})
	}
}

// Average returns the current rolling average and whether any samples
// are present.
func (a *Aggregator) Average() (float64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.win.len() == 0 {
		return 0, false
	}
	return a.win.mean(), true
}

// Window returns a copy of the current window contents, oldest first.
func (a *Aggregator) Window() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.win.snapshot()
}
