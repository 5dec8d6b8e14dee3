package mood

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/orbitalmind/go-cosmo/pkg/bus"
)

// ErrGateLocked is returned when a gated action is attempted while the
// current mood does not match the gate's target.
var ErrGateLocked = errors.New("mood: games unlock only while feeling down")

// GateState is a snapshot of the gate and redirect controller.
type GateState struct {
	Unlocked   bool `json:"unlocked"`
	Streak     int  `json:"sad_streak_count"`
	Redirected bool `json:"redirected"`
}

// Gate unlocks an affordance while the current mood equals the target
// and redirects once after a fixed number of transitions into it.
//
// The unlock is a pure projection of the latest emotionchange event.
// The redirect is a one-shot latch: the streak counter increments once
// per edge into the target mood (the upstream stream is already
// edge-triggered) and the redirect side effect fires exactly once.
type Gate struct {
	mu         sync.Mutex
	target     Emotion
	required   int
	current    Emotion
	streak     int
	redirected bool

	// OnRedirect is invoked exactly once, outside the lock, when the
	// streak reaches the required count.
	OnRedirect func()

	logger *slog.Logger
}

// NewGate creates a gate for the target mood. initial is the mood
// already in effect at startup: when it equals the target the streak is
// pre-seeded by one so the initial state counts as a transition.
func NewGate(target Emotion, required int, initial Emotion) *Gate {
	g := &Gate{
		target:   target,
		required: required,
		current:  initial,
		logger:   slog.Default().With("component", "mood.gate"),
	}
	if initial == target {
		g.streak = 1
	}
	return g
}

// Bind subscribes the gate to emotionchange events on b.
func (g *Gate) Bind(b *bus.Bus) {
	b.Subscribe(bus.TopicEmotionChange, func(evt bus.Event) {
		if ec, ok := evt.Payload.(bus.EmotionChange); ok {
			g.OnEmotionChange(ec)
		}
	})
}

// OnEmotionChange applies one edge-triggered emotion transition.
func (g *Gate) OnEmotionChange(ec bus.EmotionChange) {
	g.mu.Lock()
	e := Emotion(ec.Emotion)
	g.current = e

	var redirect func()
	if e == g.target {
		g.streak++
		g.logger.Info("target mood entered", "streak", g.streak, "required", g.required)
		if g.streak >= g.required && !g.redirected {
			g.redirected = true
			redirect = g.OnRedirect
		}
	}
	g.mu.Unlock()

	if redirect != nil {
		g.logger.Info("redirect latched", "target", g.target.String())
		redirect()
	}
}

// Unlocked reports whether the gated affordance is currently open.
func (g *Gate) Unlocked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current == g.target
}

// Authorize checks the unlock condition for a gated action. It mutates
// nothing; a locked gate yields ErrGateLocked for the caller to surface.
func (g *Gate) Authorize() error {
	if !g.Unlocked() {
		return ErrGateLocked
	}
	return nil
}

// State returns a snapshot for the dashboard.
func (g *Gate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return GateState{
		Unlocked:   g.current == g.target,
		Streak:     g.streak,
		Redirected: g.redirected,
	}
}
