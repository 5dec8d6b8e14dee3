// Package dataset collects every wellness event into an append-only
// in-memory log that crews can export for post-mission analysis.
package dataset

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/orbitalmind/go-cosmo/pkg/bus"
)

// Record is one captured event. Records are never mutated after append.
type Record struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	At        int64  `json:"at"` // epoch-ms
	ISO       string `json:"iso"`
	LocalDate string `json:"localDate"`
	LocalTime string `json:"localTime"`
	Payload   any    `json:"payload"`
}

// Export is a serializable snapshot of the log.
type Export struct {
	ExportedAt string   `json:"exportedAt"`
	UserAgent  string   `json:"userAgent"`
	Count      int      `json:"count"`
	Records    []Record `json:"records"`
}

// Recorder is the append-only event log. All operations are synchronous
// and touch nothing but the log itself.
type Recorder struct {
	mu      sync.Mutex
	records []Record

	agent  string
	logger *slog.Logger
	now    func() time.Time
}

// NewRecorder creates a recorder. agent identifies the capturing build
// in exports (the dashboard contract calls this field userAgent).
func NewRecorder(agent string) *Recorder {
	return &Recorder{
		agent:  agent,
		logger: slog.Default().With("component", "dataset.recorder"),
		now:    time.Now,
	}
}

// Bind subscribes the recorder to the three wellness topics on b.
func (r *Recorder) Bind(b *bus.Bus) {
	for _, topic := range []bus.Topic{
		bus.TopicEmotionChange,
		bus.TopicHeartRate,
		bus.TopicStressDetected,
	} {
		topic := topic
		b.Subscribe(topic, func(evt bus.Event) {
			r.Record(string(topic), evt.Payload)
		})
	}
}

// Record appends one entry stamped with the current instant. It never
// rejects a payload.
func (r *Recorder) Record(typ string, payload any) {
	now := r.now()
	rec := Record{
		ID:        uuid.NewString(),
		Type:      typ,
		At:        now.UnixMilli(),
		ISO:       now.UTC().Format(time.RFC3339Nano),
		LocalDate: now.Format("2006-01-02"),
		LocalTime: now.Format("15:04:05"),
		Payload:   payload,
	}

	r.mu.Lock()
	r.records = append(r.records, rec)
	r.mu.Unlock()
}

// Export returns a snapshot of the log. The snapshot is independent of
// later appends.
func (r *Recorder) Export() Export {
	r.mu.Lock()
	records := append([]Record(nil), r.records...)
	r.mu.Unlock()

	return Export{
		ExportedAt: r.now().UTC().Format(time.RFC3339Nano),
		UserAgent:  r.agent,
		Count:      len(records),
		Records:    records,
	}
}

// Clear truncates the log. Only an explicit operator action calls this.
func (r *Recorder) Clear() {
	r.mu.Lock()
	n := len(r.records)
	r.records = nil
	r.mu.Unlock()
	r.logger.Info("dataset cleared", "dropped", n)
}

// Count returns the number of records currently held.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
