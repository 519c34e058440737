package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/lixenwraith/termwrap/audio"
	"github.com/lixenwraith/termwrap/config"
	"github.com/lixenwraith/termwrap/terminal"
)

var (
	configFlag  = flag.String("config", "", "Path to a TOML config file")
	backendFlag = flag.String("backend", "", "Backend: auto, curses, console")
	debugFlag   = flag.Bool("debug", false, "Write a debug log to logs/termdemo.log")
	soundFlag   = flag.Bool("sound", false, "Play a tone when the dot hits an edge")
)

func main() {
	// Panic Recovery: Ensure terminal is reset even if the demo crashes
	defer func() {
		if r := recover(); r != nil {
			terminal.EmergencyReset(os.Stdout)
			fmt.Fprintf(os.Stderr, "\r\n\x1b[31mTERMDEMO CRASHED: %v\x1b[0m\r\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
			os.Exit(1)
		}
	}()

	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "termdemo: %v\n", err)
		os.Exit(2)
	}

	if logFile := setupLogging(cfg.Debug); logFile != nil {
		defer logFile.Close()
	}

	if err := play(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "termdemo: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig layers the config file and then explicitly set flags over defaults
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if *configFlag != "" {
		var err error
		if cfg, err = config.Load(*configFlag); err != nil {
			return cfg, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.Backend = *backendFlag
		case "debug":
			cfg.Debug = *debugFlag
		case "sound":
			cfg.Sound = *soundFlag
		}
	})
	return cfg, cfg.Validate()
}

func play(cfg config.Config) error {
	tc, err := cfg.Terminal()
	if err != nil {
		return err
	}
	backend, err := terminal.New(tc)
	if err != nil {
		return err
	}

	var sound tonePlayer = silent{}
	if cfg.Sound {
		sm := audio.NewSoundManager()
		if err := sm.Initialize(); err != nil {
			// Non-fatal, the demo runs without sound
			log.Printf("Audio initialization failed: %v", err)
		} else {
			defer sm.Cleanup()
			sound = sm
		}
	}

	s, err := terminal.Open(backend, terminal.WithLogger(log.Default()))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runSession(ctx, s, cfg, rand.New(rand.NewSource(time.Now().UnixNano())), sound)
}

// runSession plays the demo on s and closes it, reporting the first error
func runSession(ctx context.Context, s *terminal.Session, cfg config.Config, rng *rand.Rand, sound tonePlayer) (err error) {
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()

	d, err := newDemo(s, cfg, rng, sound)
	if err != nil {
		return err
	}
	return d.run(ctx)
}
