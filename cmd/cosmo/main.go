// Cosmo - astronaut wellness companion.
// Watches crew mood and heart rate, gates the games deck on feeling
// down, and serves the dashboard.
package main

import (
	"context"
	"flag"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/orbitalmind/go-cosmo/internal/config"
	"github.com/orbitalmind/go-cosmo/internal/log"
	"github.com/orbitalmind/go-cosmo/pkg/cosmo"
	"github.com/orbitalmind/go-cosmo/pkg/sim"
)

func main() {
	cfg, opts := parseFlags()

	app, err := cosmo.New(cfg, opts)
	if err != nil {
		stdlog.Fatalf("startup: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx); err != nil {
		stdlog.Fatalf("runtime: %v", err)
	}
}

// parseFlags parses command line flags and returns configuration.
func parseFlags() (*config.Config, cosmo.Options) {
	configPath := flag.String("config", "cosmo.yaml", "Path to YAML configuration")
	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	port := flag.String("port", "", "Dashboard port (overrides config)")
	bridgeURL := flag.String("bridge", "", "Heart-rate bridge websocket URL (overrides config)")
	demo := flag.Bool("demo", false, "Drive the pipeline from scripted generators")
	demoProfile := flag.String("demo-profile", sim.ProfileStressed, "Demo heart profile: calm, stressed")
	flag.Parse()

	level := "info"
	if *debug {
		level = "debug"
	}
	log.Init(level)

	cfg, err := config.Load(*configPath)
	if err != nil {
		stdlog.Fatalf("config: %v", err)
	}

	if *port != "" {
		cfg.Server.Port = *port
	}
	if *bridgeURL != "" {
		cfg.Heart.BridgeURL = *bridgeURL
	}
	if url := os.Getenv("HEART_BRIDGE_URL"); url != "" && *bridgeURL == "" {
		cfg.Heart.BridgeURL = url
	}

	return cfg, cosmo.Options{
		Demo:        *demo,
		DemoProfile: *demoProfile,
	}
}
