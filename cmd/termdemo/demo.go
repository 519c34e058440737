package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/lixenwraith/termwrap/config"
	"github.com/lixenwraith/termwrap/terminal"
)

// tonePlayer is the part of audio.SoundManager the demo uses
type tonePlayer interface {
	PlayHit()
	PlayBump()
}

type silent struct{}

func (silent) PlayHit()  {}
func (silent) PlayBump() {}

// demo moves a dot around the screen until a quit key arrives
type demo struct {
	s     *terminal.Session
	cfg   config.Config
	quit  map[terminal.Key]bool
	rng   *rand.Rand
	sound tonePlayer
	x, y  int
}

func newDemo(s *terminal.Session, cfg config.Config, rng *rand.Rand, sound tonePlayer) (*demo, error) {
	quit, err := cfg.QuitKeySet()
	if err != nil {
		return nil, err
	}
	// Escape always leaves
	quit[terminal.KeyEscape] = true
	if sound == nil {
		sound = silent{}
	}
	return &demo{s: s, cfg: cfg, quit: quit, rng: rng, sound: sound}, nil
}

// intro fills the screen and drops the marker at a random cell
func (d *demo) intro() (mx, my int, err error) {
	w, h := d.s.Size()
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("screen has no area: %dx%d", w, h)
	}

	row := strings.Repeat(d.cfg.Fill, w)
	for y := 0; y < h; y++ {
		if err := d.s.Print(0, y, row); err != nil {
			return 0, 0, err
		}
	}

	mx, my = d.rng.Intn(w), d.rng.Intn(h)
	if err := d.s.SetColor(d.cfg.Color()); err != nil {
		return 0, 0, err
	}
	if err := d.s.Print(mx, my, d.cfg.Marker); err != nil {
		return 0, 0, err
	}
	if err := d.s.SetColor(terminal.ColorWhite); err != nil {
		return 0, 0, err
	}
	log.Printf("demo: marker at %d,%d on %dx%d", mx, my, w, h)
	return mx, my, nil
}

// step applies one key, reporting whether the demo should stop
func (d *demo) step(k terminal.Key) (done bool) {
	if d.quit[k] {
		return true
	}
	if !k.IsArrow() {
		d.sound.PlayBump()
		return false
	}

	w, h := d.s.Size()
	nx, ny := d.x, d.y
	switch k {
	case terminal.KeyArrowUp:
		ny--
	case terminal.KeyArrowDown:
		ny++
	case terminal.KeyArrowLeft:
		nx--
	case terminal.KeyArrowRight:
		nx++
	}
	if nx < 0 || ny < 0 || nx >= w || ny >= h {
		d.sound.PlayHit()
		return false
	}
	d.x, d.y = nx, ny
	return false
}

// clamp keeps the dot on screen after a resize
func (d *demo) clamp() {
	w, h := d.s.Size()
	d.x = max(0, min(d.x, w-1))
	d.y = max(0, min(d.y, h-1))
}

func (d *demo) frame() error {
	if err := d.s.Clear(); err != nil {
		return err
	}
	return d.s.Print(d.x, d.y, d.cfg.Dot)
}

// run plays the intro then the movement loop until quit or ctx ends
func (d *demo) run(ctx context.Context) error {
	if _, _, err := d.intro(); err != nil {
		return err
	}
	d.s.Sleep(d.cfg.IntroMs)
	if err := d.s.Clear(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if k := d.s.ReadKey(); k != terminal.KeyNone {
			log.Printf("demo: key %v", k)
			if d.step(k) {
				return nil
			}
		}
		d.clamp()
		if err := d.frame(); err != nil {
			return err
		}
		d.s.Sleep(d.cfg.FrameMs)
	}
}
