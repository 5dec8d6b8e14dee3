package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/orbitalmind/go-cosmo/pkg/bus"
	"github.com/orbitalmind/go-cosmo/pkg/games"
	"github.com/orbitalmind/go-cosmo/pkg/hub"
	"github.com/orbitalmind/go-cosmo/pkg/mood"
)

// handleStatus returns the aggregate dashboard snapshot.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	st := Status{
		Gate:        s.deps.Gate.State(),
		Counselor:   s.deps.Counselor.State(),
		Listening:   s.deps.Assistant.Listening(),
		RecordCount: s.deps.Recorder.Count(),
		Clients:     s.events.ClientCount(),
	}

	if e := s.deps.Tracker.Current(); !e.Absent() {
		v := string(e)
		st.Emotion = &v
	}
	if avg, ok := s.deps.Heart.Average(); ok {
		st.HeartAverage = &avg
	}

	return c.JSON(st)
}

// ObserveRequest is the request body for /api/observe, one classifier
// pass over a camera frame. A missing face field means a face was in
// view; explicit false reports a frame with no face.
type ObserveRequest struct {
	Emotion string `json:"emotion"`
	Face    *bool  `json:"face"`
}

// handleObserve feeds one classified frame into the mood pipeline and
// advances the counselor. The browser classifier posts here once per
// classification attempt.
func (s *Server) handleObserve(c *fiber.Ctx) error {
	var req ObserveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	e := mood.Emotion(req.Emotion)
	if !e.Known() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown emotion: " + req.Emotion})
	}

	face := req.Face == nil || *req.Face
	s.deps.Tracker.ObserveFrame(e, face)
	s.deps.Counselor.Tick()

	return c.JSON(fiber.Map{"emotion": s.deps.Tracker.Current().String()})
}

// HeartSampleRequest is the request body for /api/heart.
type HeartSampleRequest struct {
	BPM int `json:"bpm"`
}

// handleHeartSample feeds one heart-rate sample into the aggregator,
// for monitors reaching the dashboard without a BLE bridge.
func (s *Server) handleHeartSample(c *fiber.Ctx) error {
	var req HeartSampleRequest
	if err := c.BodyParser(&req); err != nil || req.BPM <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bpm required"})
	}

	s.deps.Heart.Observe(req.BPM)

	resp := fiber.Map{"accepted": true}
	if avg, ok := s.deps.Heart.Average(); ok {
		resp["average"] = avg
	}
	return c.JSON(resp)
}

// handleListGames returns the mini-game catalog.
func (s *Server) handleListGames(c *fiber.Ctx) error {
	return c.JSON(s.deps.Catalog.List())
}

// handleLaunchGame authorizes a gated launch. The gate's own message
// is surfaced so the UI can explain the unlock condition.
func (s *Server) handleLaunchGame(c *fiber.Ctx) error {
	game, err := s.deps.Catalog.Launch(c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, games.ErrUnknownGame):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, mood.ErrGateLocked):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}
	return c.JSON(game)
}

// handleExportDataset returns the full recording as a download.
func (s *Server) handleExportDataset(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="cosmo-dataset.json"`)
	return c.JSON(s.deps.Recorder.Export())
}

// handleClearDataset wipes the recording and announces the intent.
func (s *Server) handleClearDataset(c *fiber.Ctx) error {
	s.deps.Recorder.Clear()
	s.deps.Bus.Publish(bus.TopicIntent, bus.NewIntent(bus.IntentClearDataset, nil))
	return c.JSON(fiber.Map{"cleared": true})
}

// handleGetTranscript returns recent transcript lines.
func (s *Server) handleGetTranscript(c *fiber.Ctx) error {
	s.transcriptMu.RLock()
	defer s.transcriptMu.RUnlock()
	return c.JSON(s.transcript)
}

// AskRequest is the request body for /api/assistant/ask.
type AskRequest struct {
	Question string `json:"question"`
}

// handleAsk forwards a crew question to the assistant. A provider
// failure still produces a presentable reply, so the response carries
// the reply either way and flags whether it was the fallback.
func (s *Server) handleAsk(c *fiber.Ctx) error {
	var req AskRequest
	if err := c.BodyParser(&req); err != nil || req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "question required"})
	}

	reply, err := s.deps.Assistant.Ask(c.Context(), req.Question)
	if err != nil {
		s.logger.Warn("assistant fell back", "error", err)
	}

	s.AddTranscript("crew", req.Question)
	s.AddTranscript("cosmo", reply)

	return c.JSON(fiber.Map{
		"reply":    reply,
		"fallback": err != nil,
	})
}

// handleToggleListening announces the listening toggle intent.
func (s *Server) handleToggleListening(c *fiber.Ctx) error {
	s.deps.Bus.Publish(bus.TopicIntent, bus.NewIntent(bus.IntentToggleListening, nil))
	return c.JSON(fiber.Map{"listening": !s.deps.Assistant.Listening()})
}

// handleEventsWS attaches a dashboard client to the event feed.
func (s *Server) handleEventsWS(c *websocket.Conn) {
	client := hub.NewClient(s.events, c)
	client.Run()
}
