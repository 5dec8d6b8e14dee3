// Package web serves the wellness dashboard: a REST surface for the
// browser UI and a websocket feed mirroring the event bus.
package web

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/orbitalmind/go-cosmo/pkg/assistant"
	"github.com/orbitalmind/go-cosmo/pkg/bus"
	"github.com/orbitalmind/go-cosmo/pkg/dataset"
	"github.com/orbitalmind/go-cosmo/pkg/games"
	"github.com/orbitalmind/go-cosmo/pkg/heart"
	"github.com/orbitalmind/go-cosmo/pkg/hub"
	"github.com/orbitalmind/go-cosmo/pkg/mood"
)

// Status is the aggregate dashboard snapshot served by /api/status.
type Status struct {
	Emotion      *string             `json:"emotion"`
	Gate         mood.GateState      `json:"gate"`
	Counselor    mood.CounselorState `json:"counselor"`
	HeartAverage *float64            `json:"heart_average"`
	Listening    bool                `json:"listening"`
	RecordCount  int                 `json:"record_count"`
	Clients      int                 `json:"clients"`
}

// TranscriptEntry is one line of the counselor/assistant transcript.
type TranscriptEntry struct {
	Time    string `json:"time"`
	Role    string `json:"role"` // crew, cosmo, counselor
	Message string `json:"message"`
}

// Deps are the wired subsystems the server fronts.
type Deps struct {
	Bus       *bus.Bus
	Tracker   *mood.Tracker
	Gate      *mood.Gate
	Counselor *mood.Counselor
	Heart     *heart.Aggregator
	Recorder  *dataset.Recorder
	Catalog   *games.Catalog
	Assistant *assistant.Assistant
}

// Server is the dashboard HTTP and websocket server.
type Server struct {
	app  *fiber.App
	addr string
	deps Deps

	transcript   []TranscriptEntry
	transcriptMu sync.RWMutex

	events *hub.Hub
	logger *slog.Logger
}

// NewServer builds the fiber app and routes.
func NewServer(addr string, deps Deps) *Server {
	s := &Server{
		addr:       addr,
		deps:       deps,
		transcript: make([]TranscriptEntry, 0, 100),
		events:     hub.New("events"),
		logger:     slog.Default().With("component", "web"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Cosmo Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development.
	app.Use(cors.New())

	app.Static("/", "./web")

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Post("/observe", s.handleObserve)
	api.Post("/heart", s.handleHeartSample)
	api.Get("/games", s.handleListGames)
	api.Post("/games/:id/launch", s.handleLaunchGame)
	api.Get("/dataset/export", s.handleExportDataset)
	api.Post("/dataset/clear", s.handleClearDataset)
	api.Get("/transcript", s.handleGetTranscript)
	api.Post("/assistant/ask", s.handleAsk)
	api.Post("/assistant/listening", s.handleToggleListening)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app
	return s
}

// Bind mirrors every bus event onto the websocket feed. Call before
// the bus starts dispatching.
func (s *Server) Bind(b *bus.Bus) {
	b.SubscribeAll(func(ev bus.Event) {
		frame := fiber.Map{
			"type":    string(ev.Topic),
			"at":      ev.At.UnixMilli(),
			"payload": ev.Payload,
		}
		if err := s.events.BroadcastJSON(frame); err != nil {
			s.logger.Warn("event frame encode failed", "topic", ev.Topic, "error", err)
		}
	})
}

// BroadcastRedirect pushes the one-shot games redirect to the browser.
func (s *Server) BroadcastRedirect(target string) {
	s.events.BroadcastJSON(fiber.Map{
		"type":   "redirect",
		"target": target,
		"at":     time.Now().UnixMilli(),
	})
}

// AddTranscript appends a transcript line, keeping the last 100.
func (s *Server) AddTranscript(role, message string) {
	entry := TranscriptEntry{
		Time:    time.Now().Format("15:04:05"),
		Role:    role,
		Message: message,
	}

	s.transcriptMu.Lock()
	s.transcript = append(s.transcript, entry)
	if len(s.transcript) > 100 {
		s.transcript = s.transcript[1:]
	}
	s.transcriptMu.Unlock()
}

// Start runs the event hub and listens until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	go s.events.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(s.addr)
	}()
	s.logger.Info("dashboard listening", "addr", s.addr)

	select {
	case <-ctx.Done():
		return s.app.Shutdown()
	case err := <-errCh:
		return err
	}
}
