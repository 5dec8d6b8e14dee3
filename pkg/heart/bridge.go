package heart

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

// Bridge reconnect tuning.
const (
	bridgeInitialDelay = time.Second
	bridgeMaxDelay     = 30 * time.Second
	bridgeDialTimeout  = 10 * time.Second
)

// Observer receives accepted samples from the bridge.
type Observer interface {
	Observe(bpm int)
}

// jsonSample is the text-frame format some bridges emit instead of raw
// characteristic bytes.
type jsonSample struct {
	BPM int `json:"bpm"`
}

// Bridge is a websocket client for a BLE heart-rate gateway. The
// gateway subscribes to the Heart Rate Measurement characteristic and
// forwards each notification, either as the raw characteristic bytes
// (binary frame) or as a small JSON object (text frame).
type Bridge struct {
	url      string
	observer Observer
	logger   *slog.Logger
}

// NewBridge creates a bridge feeding samples to observer.
func NewBridge(url string, observer Observer) *Bridge {
	return &Bridge{
		url:      url,
		observer: observer,
		logger:   slog.Default().With("component", "heart.bridge"),
	}
}

// Run connects and reads until ctx is cancelled, reconnecting with a
// doubling, capped delay. This should be called in a goroutine.
func (b *Bridge) Run(ctx context.Context) {
	delay := bridgeInitialDelay
	for {
		connected, err := b.readLoop(ctx)
		if connected {
			// A session that made it past the dial starts the
			// next attempt with a fresh backoff.
			delay = bridgeInitialDelay
		}
		if err != nil {
			b.logger.Warn("bridge disconnected", "error", err, "retry_in", delay)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > bridgeMaxDelay {
			delay = bridgeMaxDelay
		}
	}
}

// readLoop dials the bridge and consumes frames until the connection
// drops or ctx ends. connected reports whether the dial succeeded.
func (b *Bridge) readLoop(ctx context.Context) (connected bool, err error) {
	dialer := websocket.Dialer{HandshakeTimeout: bridgeDialTimeout}
	conn, _, err := dialer.DialContext(ctx, b.url, nil)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	b.logger.Info("connected to heart-rate bridge", "url", b.url)

	// Close the connection when the context ends so ReadMessage wakes.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return true, nil
			}
			return true, err
		}

		switch msgType {
		case websocket.BinaryMessage:
			m, err := ParseMeasurement(data)
			if err != nil {
				// Malformed frames are dropped, not fatal.
				b.logger.Debug("unparseable measurement", "error", err)
				continue
			}
			b.observer.Observe(m.BPM)

		case websocket.TextMessage:
			var s jsonSample
			if err := json.Unmarshal(data, &s); err != nil {
				b.logger.Debug("unparseable sample", "error", err)
				continue
			}
			b.observer.Observe(s.BPM)
		}
	}
}
