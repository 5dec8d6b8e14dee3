package bus

import (
	"encoding/json"
	"time"
)

// EmotionChange is the payload on TopicEmotionChange.
// Emotion is empty when no face is present; it marshals as null to keep
// the dashboard wire contract (`emotion: string|null`).
type EmotionChange struct {
	Emotion string `json:"emotion"`
	At      int64  `json:"at"` // epoch-ms
}

// MarshalJSON emits null for the absent emotion.
func (e EmotionChange) MarshalJSON() ([]byte, error) {
	type wire struct {
		Emotion *string `json:"emotion"`
		At      int64   `json:"at"`
	}
	w := wire{At: e.At}
	if e.Emotion != "" {
		w.Emotion = &e.Emotion
	}
	return json.Marshal(w)
}

// HeartRate is the payload on TopicHeartRate.
type HeartRate struct {
	Value   int     `json:"value"`
	Average float64 `json:"average"`
	At      int64   `json:"at"` // epoch-ms
}

// StressDetected is the payload on TopicStressDetected.
type StressDetected struct {
	Type    string  `json:"type"`
	Value   int     `json:"value"`
	Average float64 `json:"average"`
	At      int64   `json:"at"` // epoch-ms
}

// Stress kinds.
const (
	StressHighHeartRate = "high_heart_rate"
)

// Intent is the payload on TopicIntent.
type Intent struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
	At   int64          `json:"at"` // epoch-ms
}

// NewIntent builds an intent payload stamped with the current time.
func NewIntent(name string, args map[string]any) Intent {
	return Intent{Name: name, Args: args, At: time.Now().UnixMilli()}
}

// Intent names published by the dashboard.
const (
	IntentToggleListening = "toggle_listening"
	IntentClearDataset    = "clear_dataset"
)
