// Package audio plays short feedback tones for the demo
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(44100)

	speakerBufferDurationMs = 100

	hitFrequencyHz  = 880.0
	hitDurationMs   = 50
	bumpFrequencyHz = 120.0
	bumpDurationMs  = 120
	bumpAmplitude   = 0.2
	fadeDurationMs  = 5
)

// SoundManager owns the speaker and a mixer all tones play through
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

// NewSoundManager creates a sound manager; nothing plays until Initialize
func NewSoundManager() *SoundManager {
	return &SoundManager{
		mixer: &beep.Mixer{},
	}
}

// Initialize opens the speaker, a second call is a no-op
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*speakerBufferDurationMs))
	if err != nil {
		return err
	}

	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Initialized reports whether tones will be audible
func (sm *SoundManager) Initialized() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.initialized
}

// Cleanup silences everything and closes the speaker
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	sm.initialized = false
}

// PlayHit plays the short high tone for a dot hitting the screen edge
func (sm *SoundManager) PlayHit() {
	sine, err := generators.SineTone(sampleRate, hitFrequencyHz)
	if err != nil {
		return
	}
	sm.add(NewFade(sampleRate, sampleRate.N(time.Millisecond*hitDurationMs), sine))
}

// PlayBump plays a low buzz for a rejected key
func (sm *SoundManager) PlayBump() {
	n := sampleRate.N(time.Millisecond * bumpDurationMs)
	sm.add(NewFade(sampleRate, n, NewBuzzGenerator(sampleRate, bumpFrequencyHz)))
}

func (sm *SoundManager) add(s beep.Streamer) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	speaker.Lock()
	sm.mixer.Add(s)
	speaker.Unlock()
}

// Fade takes length samples from a streamer with linear fade in and out
type Fade struct {
	src    beep.Streamer
	pos    int
	length int
	ramp   int
}

// NewFade limits src to length samples, ramping the edges to avoid clicks
func NewFade(sr beep.SampleRate, length int, src beep.Streamer) *Fade {
	ramp := sr.N(time.Millisecond * fadeDurationMs)
	if ramp*2 > length {
		ramp = length / 2
	}
	return &Fade{src: src, length: length, ramp: ramp}
}

func (f *Fade) Stream(samples [][2]float64) (n int, ok bool) {
	if f.pos >= f.length {
		return 0, false
	}
	if rest := f.length - f.pos; len(samples) > rest {
		samples = samples[:rest]
	}
	n, ok = f.src.Stream(samples)
	for i := 0; i < n; i++ {
		g := f.gain(f.pos)
		samples[i][0] *= g
		samples[i][1] *= g
		f.pos++
	}
	return n, ok || n > 0
}

func (f *Fade) gain(pos int) float64 {
	if f.ramp == 0 {
		return 1
	}
	if pos < f.ramp {
		return float64(pos) / float64(f.ramp)
	}
	if tail := f.length - pos; tail < f.ramp {
		return float64(tail) / float64(f.ramp)
	}
	return 1
}

func (f *Fade) Err() error {
	return f.src.Err()
}

// BuzzGenerator generates a low-pitch buzz with a few harmonics
type BuzzGenerator struct {
	sr   beep.SampleRate
	freq float64
	pos  int
}

// NewBuzzGenerator creates a buzz sound generator
func NewBuzzGenerator(sr beep.SampleRate, freq float64) *BuzzGenerator {
	return &BuzzGenerator{
		sr:   sr,
		freq: freq,
	}
}

func (g *BuzzGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		sample := 0.0
		sample += 0.6 * math.Sin(2*math.Pi*g.freq*t)
		sample += 0.3 * math.Sin(2*math.Pi*g.freq*2*t)
		sample += 0.1 * math.Sin(2*math.Pi*g.freq*3*t)
		sample *= bumpAmplitude

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *BuzzGenerator) Err() error {
	return nil
}
