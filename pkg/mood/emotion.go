// Package mood tracks crew emotion state and drives the supportive
// behaviors gated on it.
//
// The package owns the only "current emotion" in the process. Raw
// classifier output enters through the Tracker, which deduplicates it
// into edge-triggered emotionchange events on the bus; the Gate and the
// Counselor consume those events and hold no reference to the tracker.
package mood

// Emotion is a classified facial expression. The zero value means no
// face was detected, which is distinct from every named emotion.
type Emotion string

// Emotions produced by the expression classifier.
const (
	EmotionNone      Emotion = "" // no face detected
	EmotionHappy     Emotion = "happy"
	EmotionSad       Emotion = "sad"
	EmotionAngry     Emotion = "angry"
	EmotionSurprised Emotion = "surprised"
	EmotionNeutral   Emotion = "neutral"
	EmotionFearful   Emotion = "fearful"
	EmotionDisgusted Emotion = "disgusted"
)

// Absent reports whether no face was detected.
func (e Emotion) Absent() bool {
	return e == EmotionNone
}

// Known reports whether e is one of the classifier's emotions or the
// absent value.
func (e Emotion) Known() bool {
	switch e {
	case EmotionNone, EmotionHappy, EmotionSad, EmotionAngry,
		EmotionSurprised, EmotionNeutral, EmotionFearful, EmotionDisgusted:
		return true
	}
	return false
}

// String returns the wire name of the emotion, or "none" when absent.
func (e Emotion) String() string {
	if e.Absent() {
		return "none"
	}
	return string(e)
}
