// Package sim drives the wellness pipeline without a camera or a heart
// rate sensor, for demos and local development. An emotion player feeds
// scripted classifier frames into the mood tracker, and a heart rate
// generator feeds profile-shaped samples into the aggregator.
package sim

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/orbitalmind/go-cosmo/pkg/heart"
	"github.com/orbitalmind/go-cosmo/pkg/mood"
)

// Frame is one scripted classifier observation. Hold is how many ticks
// the frame repeats before the script advances.
type Frame struct {
	Emotion mood.Emotion
	Face    bool
	Hold    int
}

// DefaultScript walks the crew through a full demo arc: settled, a
// sustained low stretch that unlocks the games and triggers the
// counselor, a recovery, and a face-lost gap.
func DefaultScript() []Frame {
	return []Frame{
		{Emotion: mood.EmotionNeutral, Face: true, Hold: 10},
		{Emotion: mood.EmotionHappy, Face: true, Hold: 8},
		{Emotion: mood.EmotionSad, Face: true, Hold: 14},
		{Emotion: mood.EmotionNeutral, Face: true, Hold: 6},
		{Emotion: mood.EmotionSad, Face: true, Hold: 14},
		{Emotion: mood.EmotionHappy, Face: true, Hold: 8},
		{Emotion: mood.EmotionSad, Face: true, Hold: 24},
		{Face: false, Hold: 8},
		{Emotion: mood.EmotionNeutral, Face: true, Hold: 10},
	}
}

// EmotionPlayer replays a script on the classification cadence.
type EmotionPlayer struct {
	tracker   *mood.Tracker
	counselor *mood.Counselor
	script    []Frame
	interval  time.Duration
	logger    *slog.Logger
}

// NewEmotionPlayer builds a player. A nil script plays DefaultScript;
// the interval defaults to 500ms, the webcam classification cadence.
func NewEmotionPlayer(tracker *mood.Tracker, counselor *mood.Counselor, script []Frame, interval time.Duration) *EmotionPlayer {
	if len(script) == 0 {
		script = DefaultScript()
	}
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &EmotionPlayer{
		tracker:   tracker,
		counselor: counselor,
		script:    script,
		interval:  interval,
		logger:    slog.Default().With("component", "sim", "source", "emotion"),
	}
}

// Run loops the script until ctx is cancelled. The counselor's sustain
// check rides the same cadence, exactly as it does with a live
// classifier.
func (p *EmotionPlayer) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	idx, held := 0, 0
	p.logger.Info("emotion script started", "frames", len(p.script))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			frame := p.script[idx]
			p.tracker.ObserveFrame(frame.Emotion, frame.Face)
			if p.counselor != nil {
				p.counselor.Tick()
			}

			held++
			if held >= frame.Hold {
				held = 0
				idx = (idx + 1) % len(p.script)
			}
		}
	}
}

// Heart rate profiles.
const (
	ProfileCalm     = "calm"
	ProfileStressed = "stressed"
)

// HeartGenerator synthesizes bpm samples on a fixed cadence.
type HeartGenerator struct {
	observer heart.Observer
	profile  string
	interval time.Duration
	logger   *slog.Logger
}

// NewHeartGenerator builds a generator; interval defaults to 1s, the
// bridge's notification cadence.
func NewHeartGenerator(observer heart.Observer, profile string, interval time.Duration) *HeartGenerator {
	if profile == "" {
		profile = ProfileCalm
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &HeartGenerator{
		observer: observer,
		profile:  profile,
		interval: interval,
		logger:   slog.Default().With("component", "sim", "source", "heart", "profile", profile),
	}
}

// Run emits samples until ctx is cancelled.
func (g *HeartGenerator) Run(ctx context.Context) {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	tick := 0
	g.logger.Info("heart generator started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick++
			g.observer.Observe(g.sample(tick))
		}
	}
}

// sample shapes a bpm value for the current tick. The calm profile
// drifts around a resting rate; the stressed profile ramps into a
// plateau high enough to cross the stress threshold, then recovers.
func (g *HeartGenerator) sample(tick int) int {
	switch g.profile {
	case ProfileStressed:
		// 60-tick cycle: ramp up, hold elevated, come back down.
		const period = 60
		phase := float64(tick%period) / period
		base := 75.0 + 70.0*math.Sin(phase*math.Pi)
		return int(base) + rand.Intn(8) - 4
	default:
		return 68 + rand.Intn(9) - 4
	}
}
