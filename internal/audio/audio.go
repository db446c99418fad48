// Package audio renders simulation cues as sound: beep streamers mixed into
// a portaudio output stream with a short stereo echo tail.
package audio

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gordonklaus/portaudio"

	"github.com/san-kum/glowfield/internal/cue"
)

const (
	SampleRate = 44100
	BufferSize = 1024

	echoSeconds  = 0.18
	echoFeedback = 0.35
)

// Player is a cue.Sink. Cues become voices on a beep mixer which the
// portaudio callback drains.
type Player struct {
	Stream *portaudio.Stream

	mu     sync.Mutex
	mixer  *beep.Mixer
	volume float64
	buf    [][2]float64

	ambient  beep.Streamer
	binaural beep.Streamer
	pad      [][2]float64

	delay [2][]float64
	head  int

	log    *slog.Logger
	active bool
}

func NewPlayer(volume float64, log *slog.Logger) *Player {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	n := int(SampleRate * echoSeconds)
	return &Player{
		mixer:  &beep.Mixer{},
		volume: volume,
		buf:    make([][2]float64, BufferSize),
		pad:    make([][2]float64, BufferSize),
		delay:  [2][]float64{make([]float64, n), make([]float64, n)},
		log:    log,
	}
}

// Start opens the default output device.
func (p *Player) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("audio: initialize: %w", err)
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, SampleRate, BufferSize, p.ProcessAudio)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("audio: open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("audio: start stream: %w", err)
	}
	p.Stream = stream
	p.active = true
	p.log.Info("audio started", "rate", SampleRate, "buffer", BufferSize)
	return nil
}

func (p *Player) Stop() {
	if !p.active {
		return
	}
	if p.Stream != nil {
		p.Stream.Stop()
		p.Stream.Close()
		p.Stream = nil
	}
	portaudio.Terminate()
	p.active = false
	p.log.Info("audio stopped")
}

func (p *Player) Active() bool { return p.active }

func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	p.volume = math.Max(0, math.Min(1, v))
	p.mu.Unlock()
}

func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetAmbient starts or stops the background pad.
func (p *Player) SetAmbient(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case on && p.ambient == nil:
		p.ambient = newAmbient(SampleRate, rand.New(rand.NewSource(rand.Int63())))
	case !on:
		p.ambient = nil
	}
}

func (p *Player) Ambient() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ambient != nil
}

// SetBinaural starts or stops the binaural beat under the pad.
func (p *Player) SetBinaural(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case on && p.binaural == nil:
		p.binaural = newBinaural(SampleRate)
	case !on:
		p.binaural = nil
	}
}

func (p *Player) Binaural() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.binaural != nil
}

func (p *Player) Play(c cue.Cue) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s := Voice(c, SampleRate, p.volume); s != nil {
		p.mixer.Add(s)
		p.log.Debug("cue", "name", c.String(), "voices", p.mixer.Len())
	}
}

// Voices is the number of cues still sounding.
func (p *Player) Voices() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mixer.Len()
}

// ProcessAudio is the portaudio callback: it mixes live voices and feeds
// them through a ping-pong echo.
func (p *Player) ProcessAudio(in []float32, out [][]float32) {
	n := len(out[0])
	if cap(p.buf) < n {
		p.buf = make([][2]float64, n)
	}
	buf := p.buf[:n]
	for i := range buf {
		buf[i] = [2]float64{}
	}

	p.mu.Lock()
	p.mixer.Stream(buf)
	p.addDrone(buf, p.ambient, AmbientGain*p.volume)
	p.addDrone(buf, p.binaural, AmbientGain*p.volume*0.5)
	p.mu.Unlock()

	for i := 0; i < n; i++ {
		dl := p.delay[0][p.head]
		dr := p.delay[1][p.head]

		l := buf[i][0] + dl*echoFeedback + dr*0.1
		r := buf[i][1] + dr*echoFeedback + dl*0.1

		p.delay[0][p.head] = l * 0.6
		p.delay[1][p.head] = r * 0.6
		p.head = (p.head + 1) % len(p.delay[0])

		out[0][i] = float32(softClip(l))
		out[1][i] = float32(softClip(r))
	}
}

func (p *Player) addDrone(buf [][2]float64, d beep.Streamer, gain float64) {
	if d == nil || gain <= 0 {
		return
	}
	if cap(p.pad) < len(buf) {
		p.pad = make([][2]float64, len(buf))
	}
	pad := p.pad[:len(buf)]
	n, _ := d.Stream(pad)
	for i := 0; i < n; i++ {
		buf[i][0] += pad[i][0] * gain
		buf[i][1] += pad[i][1] * gain
	}
}

func softClip(x float64) float64 {
	return math.Tanh(x)
}
