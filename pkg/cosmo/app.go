// Package cosmo wires the wellness pipeline together: event bus, mood
// tracking, heart-rate monitoring, the games gate, the counselor, the
// dataset recorder, the voice assistant and the dashboard server.
package cosmo

import (
	"context"
	"fmt"
	"net"

	"github.com/orbitalmind/go-cosmo/internal/config"
	"github.com/orbitalmind/go-cosmo/internal/log"
	"github.com/orbitalmind/go-cosmo/pkg/assistant"
	"github.com/orbitalmind/go-cosmo/pkg/bus"
	"github.com/orbitalmind/go-cosmo/pkg/dataset"
	"github.com/orbitalmind/go-cosmo/pkg/games"
	"github.com/orbitalmind/go-cosmo/pkg/heart"
	"github.com/orbitalmind/go-cosmo/pkg/mood"
	"github.com/orbitalmind/go-cosmo/pkg/sim"
	"github.com/orbitalmind/go-cosmo/pkg/speech"
	"github.com/orbitalmind/go-cosmo/pkg/web"
)

// UserAgent stamps dataset exports.
const UserAgent = "go-cosmo/1.0"

// Options are runtime switches from the command line.
type Options struct {
	Demo        bool   // drive the pipeline from scripted generators
	DemoProfile string // heart profile for demo mode: calm or stressed
}

// App owns every subsystem and its lifecycle.
type App struct {
	cfg  *config.Config
	opts Options

	bus       *bus.Bus
	tracker   *mood.Tracker
	gate      *mood.Gate
	counselor *mood.Counselor
	heart     *heart.Aggregator
	recorder  *dataset.Recorder
	catalog   *games.Catalog
	assistant *assistant.Assistant
	server    *web.Server

	bridge   *heart.Bridge
	emotions *sim.EmotionPlayer
	heartGen *sim.HeartGenerator
}

// New builds and wires the application. Nothing runs until Run.
func New(cfg *config.Config, opts Options) (*App, error) {
	a := &App{cfg: cfg, opts: opts, bus: bus.New()}
	logger := log.Component("app")

	a.tracker = mood.NewTracker(a.bus)
	a.heart = heart.NewAggregator(a.bus, heart.Config{
		WindowSize:      cfg.Heart.WindowSize,
		StressThreshold: cfg.Heart.StressThreshold,
		StressMinCount:  cfg.Heart.StressMinCount,
	})

	a.gate = mood.NewGate(mood.Emotion(cfg.Gate.TargetEmotion), cfg.Gate.RedirectCount, a.tracker.Current())
	a.counselor = mood.NewCounselor(
		mood.Emotion(cfg.Counselor.TargetEmotion),
		cfg.Counselor.Sustain,
		cfg.Counselor.Cooldown,
		newSpeaker(),
	)

	a.recorder = dataset.NewRecorder(UserAgent)
	a.catalog = games.NewCatalog(a.gate, nil)

	provider, err := newAssistantProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("assistant backend: %w", err)
	}
	a.assistant = assistant.New(provider, nil)
	a.assistant.SetRetryPolicy(cfg.Assistant.MaxRetries, 0)

	a.server = web.NewServer(net.JoinHostPort(cfg.Server.Host, cfg.Server.Port), web.Deps{
		Bus:       a.bus,
		Tracker:   a.tracker,
		Gate:      a.gate,
		Counselor: a.counselor,
		Heart:     a.heart,
		Recorder:  a.recorder,
		Catalog:   a.catalog,
		Assistant: a.assistant,
	})

	// Subscriptions go in before the bus starts dispatching.
	a.gate.Bind(a.bus)
	a.counselor.Bind(a.bus)
	a.recorder.Bind(a.bus)
	a.assistant.Bind(a.bus)
	a.server.Bind(a.bus)

	a.gate.OnRedirect = func() {
		a.server.BroadcastRedirect("/games")
	}
	a.counselor.OnMessage = func(text string, spoken bool) {
		a.server.AddTranscript("counselor", text)
	}

	switch {
	case opts.Demo:
		a.emotions = sim.NewEmotionPlayer(a.tracker, a.counselor, nil, 0)
		a.heartGen = sim.NewHeartGenerator(a.heart, opts.DemoProfile, 0)
		logger.Info("demo mode, scripted generators wired", "profile", opts.DemoProfile)
	case cfg.Heart.BridgeURL != "":
		a.bridge = heart.NewBridge(cfg.Heart.BridgeURL, a.heart)
		logger.Info("heart-rate bridge wired", "url", cfg.Heart.BridgeURL)
	default:
		logger.Info("no heart-rate bridge, samples come through the dashboard feed")
	}

	return a, nil
}

// Run starts every subsystem and blocks until ctx is cancelled or the
// server fails.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.bus.Run(ctx)
	if a.bridge != nil {
		go a.bridge.Run(ctx)
	}
	if a.emotions != nil {
		go a.emotions.Run(ctx)
	}
	if a.heartGen != nil {
		go a.heartGen.Run(ctx)
	}

	err := a.server.Start(ctx)

	a.bus.Drain()
	if cerr := a.assistant.Close(); cerr != nil {
		log.Warn("assistant close", "error", cerr)
	}
	return err
}

// newSpeaker builds the counselor's speech path: the hosted synthesizer
// when credentials are present, falling back to the silent mock so the
// sequence still paces and surfaces as text.
func newSpeaker() *speech.Speaker {
	providers := []speech.Provider{}
	if key := config.ElevenLabsAPIKey(); key != "" {
		el, err := speech.NewElevenLabs(
			speech.WithAPIKey(key),
			speech.WithVoice(config.ElevenLabsVoiceID(speech.DefaultVoice)),
		)
		if err == nil {
			providers = append(providers, el)
		} else {
			log.Warn("speech provider unavailable", "error", err)
		}
	}
	providers = append(providers, speech.NewMock())

	chain, err := speech.NewChain(providers...)
	if err != nil {
		// Unreachable: the mock is always present.
		return speech.NewSpeaker(speech.NewMock(), nil)
	}
	return speech.NewSpeaker(chain, nil)
}

// newAssistantProvider picks the language-model backend. Without an API
// key the assistant still works, answering from the mock.
func newAssistantProvider(cfg *config.Config) (assistant.Provider, error) {
	key := config.GeminiAPIKey()
	if key == "" {
		log.Warn("GEMINI_API_KEY not set, assistant using canned replies")
		return &assistant.MockProvider{
			GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
				return "Mission support is offline in this build, but I heard you: " + prompt, nil
			},
		}, nil
	}
	return assistant.NewGemini(assistant.GeminiConfig{
		APIKey:      key,
		Model:       cfg.Assistant.Model,
		Timeout:     cfg.Assistant.Timeout,
		Temperature: cfg.Assistant.Temperature,
	})
}
