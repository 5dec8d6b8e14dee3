package mood

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/orbitalmind/go-cosmo/pkg/bus"
)

// Counselor defaults.
const (
	DefaultSustain  = 5 * time.Second
	DefaultCooldown = 75 * time.Second
)

// DefaultSupportMessages is the spoken support sequence.
var DefaultSupportMessages = []string{
	"Hey, I noticed you seem a little down.",
	"Remember, even in orbit, no one is ever truly alone.",
	"Take a slow breath with me. Mission control believes in you.",
	"Whenever you're ready, the games deck is open for you.",
}

// Speaker delivers one utterance, blocking until it completes.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// CounselorState is a snapshot for the dashboard.
type CounselorState struct {
	StreakActive  bool  `json:"streak_active"`
	Speaking      bool  `json:"speaking"`
	CooldownUntil int64 `json:"cooldown_until"` // epoch-ms, zero if never triggered
}

// Counselor watches for a sustained target mood and, outside a cooldown
// window, speaks an ordered support sequence. The sequence aborts
// cooperatively if the mood moves away from the target mid-delivery.
type Counselor struct {
	target   Emotion
	sustain  time.Duration
	cooldown time.Duration
	messages []string

	mu            sync.Mutex
	streakStart   time.Time // zero when no active streak
	streakID      uint64    // bumped on every reset; speak sequences abort on mismatch
	cooldownUntil time.Time
	speaking      bool

	speaker Speaker
	logger  *slog.Logger
	now     func() time.Time

	// OnMessage surfaces each delivered message for the dashboard
	// transcript. spoken is false when synthesis failed and the
	// message degraded to text only.
	OnMessage func(text string, spoken bool)
}

// NewCounselor creates a counselor for the target mood.
// Zero durations and a nil message list fall back to the defaults.
func NewCounselor(target Emotion, sustain, cooldown time.Duration, speaker Speaker) *Counselor {
	if sustain <= 0 {
		sustain = DefaultSustain
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Counselor{
		target:   target,
		sustain:  sustain,
		cooldown: cooldown,
		messages: DefaultSupportMessages,
		speaker:  speaker,
		logger:   slog.Default().With("component", "mood.counselor"),
		now:      time.Now,
	}
}

// SetMessages replaces the support sequence.
func (c *Counselor) SetMessages(msgs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = msgs
}

// Bind subscribes the counselor to emotionchange events on b.
func (c *Counselor) Bind(b *bus.Bus) {
	b.Subscribe(bus.TopicEmotionChange, func(evt bus.Event) {
		if ec, ok := evt.Payload.(bus.EmotionChange); ok {
			c.OnEmotionChange(ec)
		}
	})
}

// OnEmotionChange starts or resets the streak clock and re-evaluates
// the trigger condition.
func (c *Counselor) OnEmotionChange(ec bus.EmotionChange) {
	c.mu.Lock()
	if Emotion(ec.Emotion) == c.target {
		if c.streakStart.IsZero() {
			c.streakStart = c.now()
		}
	} else {
		// No partial credit: the streak restarts from zero next time.
		c.streakStart = time.Time{}
		c.streakID++
	}
	c.mu.Unlock()

	c.Tick()
}

// Tick re-evaluates the trigger condition against the wall clock.
// The emotion stream is edge-triggered, so the sustain threshold is
// usually crossed between events; callers invoke Tick on the
// classification cadence (irregular intervals are fine).
func (c *Counselor) Tick() {
	c.mu.Lock()
	now := c.now()
	ready := !c.speaking &&
		!c.streakStart.IsZero() &&
		now.Sub(c.streakStart) >= c.sustain &&
		!now.Before(c.cooldownUntil)
	if !ready {
		c.mu.Unlock()
		return
	}

	c.speaking = true
	// Cooldown starts at trigger time, not completion time.
	c.cooldownUntil = now.Add(c.cooldown)
	id := c.streakID
	msgs := append([]string(nil), c.messages...)
	c.mu.Unlock()

	c.logger.Info("support sequence triggered", "messages", len(msgs))
	go c.deliver(id, msgs)
}

// deliver speaks the sequence, checking before each utterance whether
// the streak was reset; if so the rest of the sequence is dropped.
func (c *Counselor) deliver(id uint64, msgs []string) {
	defer func() {
		c.mu.Lock()
		c.speaking = false
		c.mu.Unlock()
	}()

	for _, msg := range msgs {
		c.mu.Lock()
		aborted := c.streakID != id
		c.mu.Unlock()
		if aborted {
			c.logger.Info("support sequence aborted, mood moved on")
			return
		}

		spoken := true
		if c.speaker != nil {
			if err := c.speaker.Speak(context.Background(), msg); err != nil {
				// Degrade to a visible text message; no retry.
				c.logger.Warn("speech unavailable, showing text", "error", err)
				spoken = false
			}
		} else {
			spoken = false
		}
		if c.OnMessage != nil {
			c.OnMessage(msg, spoken)
		}
	}
	c.logger.Info("support sequence complete")
}

// State returns a snapshot for the dashboard.
func (c *Counselor) State() CounselorState {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := CounselorState{
		StreakActive: !c.streakStart.IsZero(),
		Speaking:     c.speaking,
	}
	if !c.cooldownUntil.IsZero() {
		st.CooldownUntil = c.cooldownUntil.UnixMilli()
	}
	return st
}
