package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/ar-hunt/audio"
	"github.com/lixenwraith/ar-hunt/config"
	"github.com/lixenwraith/ar-hunt/engine"
	"github.com/lixenwraith/ar-hunt/render"
	"github.com/lixenwraith/ar-hunt/tracking"
)

var (
	configFlag   = flag.String("config", "", "TOML file merged over the embedded defaults")
	debugFlag    = flag.Bool("debug", false, "Write logs to the configured log directory")
	headlessFlag = flag.Bool("headless", false, "Run without a terminal UI, driving markers from the simulation script")
	durationFlag = flag.Duration("duration", 15*time.Second, "Headless run length")
)

func main() {
	// Panic Recovery: restore the terminal before printing
	var screen tcell.Screen
	defer func() {
		if r := recover(); r != nil {
			if screen != nil {
				screen.Fini()
			}
			fmt.Fprintf(os.Stderr, "\n\x1b[31mAR-HUNT CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, logFile := setupLogging(*debugFlag, cfg.Log.Dir, cfg.Log.Level)
	if logFile != nil {
		defer logFile.Close()
	}

	if *headlessFlag {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		err := runHeadless(ctx, cfg, logger, *durationFlag, os.Stdout)
		stop()
		if err != nil {
			fmt.Fprintf(os.Stderr, "headless: %v\n", err)
			os.Exit(1)
		}
		return
	}

	screen, err = tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create terminal: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize terminal: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	// Engine goroutines restore the terminal before reporting a crash
	engine.SetCrashHook(screen.Fini)

	newApp(screen, cfg, logger).run()
}

// runHeadless plays the simulation script against a recording renderer and prints a summary
func runHeadless(ctx context.Context, cfg *config.Config, logger zerolog.Logger, d time.Duration, out io.Writer) error {
	cam := tracking.SelectCamera(cfg.Camera.Device)
	sim := tracking.NewSimulator(cfg.TargetBundle, cam, cfg.Simulation.Script, logger)

	s, err := engine.NewSession(engine.Options{
		Config:   cfg,
		Tracker:  sim,
		Camera:   cam,
		Renderer: render.NewRecorder(120, 40, 1),
		Audio:    audio.Silent{},
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	if err := s.Start(ctx); err != nil {
		_ = s.Close()
		return err
	}

	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
	snap := s.Snapshot()
	if err := s.Close(); err != nil {
		return err
	}

	printSummary(out, snap)
	return nil
}

func printSummary(out io.Writer, snap *engine.Snapshot) {
	if snap == nil {
		return
	}
	fmt.Fprintf(out, "frames %d  score %d  treasures %d/%d\n", snap.Frame, snap.Score, snap.Found, snap.Total)
	for _, m := range snap.Markers {
		fmt.Fprintf(out, "  %2d %-12s %-8s %s\n", m.ID, m.Name, m.Kind, m.State)
	}
	for _, c := range snap.Clues {
		fmt.Fprintf(out, "  clue %s points %s\n", c.Name, c.Heading())
	}
	for _, r := range snap.Rewards {
		fmt.Fprintf(out, "  reward %s +%d\n", r.Label, r.Points)
	}
}
