package dataset

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/orbitalmind/go-cosmo/pkg/bus"
)

func TestRecordAppendsInOrder(t *testing.T) {
	r := NewRecorder("go-cosmo/test")
	r.Record("heartrate", map[string]any{"value": 70})
	r.Record("heartrate", map[string]any{"value": 72})
	r.Record("emotionchange", map[string]any{"emotion": "sad"})

	ex := r.Export()
	if ex.Count != 3 {
		t.Fatalf("Count = %d, want 3", ex.Count)
	}
	if ex.Records[2].Type != "emotionchange" {
		t.Errorf("last record type = %q, want emotionchange", ex.Records[2].Type)
	}
	for i, rec := range ex.Records {
		if rec.ID == "" {
			t.Errorf("record %d has empty ID", i)
		}
		if rec.ISO == "" || rec.LocalDate == "" || rec.LocalTime == "" {
			t.Errorf("record %d missing derived timestamps: %+v", i, rec)
		}
	}
}

func TestExportSnapshotIsIndependent(t *testing.T) {
	r := NewRecorder("go-cosmo/test")
	r.Record("heartrate", nil)

	ex := r.Export()
	r.Record("heartrate", nil)
	r.Record("heartrate", nil)

	if ex.Count != 1 || len(ex.Records) != 1 {
		t.Errorf("earlier snapshot grew: count=%d len=%d", ex.Count, len(ex.Records))
	}
	if r.Count() != 3 {
		t.Errorf("Count() = %d, want 3", r.Count())
	}
}

func TestClearTruncates(t *testing.T) {
	r := NewRecorder("go-cosmo/test")
	for i := 0; i < 5; i++ {
		r.Record("heartrate", nil)
	}
	r.Clear()
	if r.Count() != 0 {
		t.Errorf("Count() = %d after Clear, want 0", r.Count())
	}
}

func TestExportSerializes(t *testing.T) {
	r := NewRecorder("go-cosmo/test")
	r.Record("stressdetected", bus.StressDetected{Type: "high_heart_rate", Value: 150, Average: 121.4, At: 42})

	data, err := json.Marshal(r.Export())
	if err != nil {
		t.Fatalf("marshal export: %v", err)
	}

	var round map[string]any
	if err := json.Unmarshal(data, &round); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	for _, key := range []string{"exportedAt", "userAgent", "count", "records"} {
		if _, ok := round[key]; !ok {
			t.Errorf("export JSON missing key %q", key)
		}
	}
}

func TestBindRecordsWellnessTopics(t *testing.T) {
	b := bus.New()
	r := NewRecorder("go-cosmo/test")
	r.Bind(b)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	now := time.Now()
	b.PublishAt(bus.TopicEmotionChange, now, bus.EmotionChange{Emotion: "sad", At: now.UnixMilli()})
	b.PublishAt(bus.TopicHeartRate, now, bus.HeartRate{Value: 70, Average: 70, At: now.UnixMilli()})
	b.PublishAt(bus.TopicStressDetected, now, bus.StressDetected{Type: "high_heart_rate", At: now.UnixMilli()})
	b.Publish(bus.TopicIntent, bus.Intent{Name: "toggle_listening"})
	b.Drain()

	ex := r.Export()
	if ex.Count != 3 {
		t.Fatalf("recorded %d events, want 3 (intents are not part of the dataset)", ex.Count)
	}
	wantTypes := []string{"emotionchange", "heartrate", "stressdetected"}
	for i, w := range wantTypes {
		if ex.Records[i].Type != w {
			t.Errorf("record %d type = %q, want %q", i, ex.Records[i].Type, w)
		}
	}
}
