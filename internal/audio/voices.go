package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/san-kum/glowfield/internal/cue"
)

type Wave int

const (
	Sine Wave = iota
	Triangle
	Square
	Noise
)

type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     Wave
	rate     beep.SampleRate
	rng      *rand.Rand
}

func newOscillator(freq float64, d time.Duration, wave Wave, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(d),
		wave:     wave,
		rate:     rate,
		rng:      rand.New(rand.NewSource(int64(freq*1000) + int64(d))),
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}
		var v float64
		switch o.wave {
		case Sine:
			v = math.Sin(2 * math.Pi * o.phase)
		case Triangle:
			v = 4*math.Abs(o.phase-0.5) - 1
		case Square:
			if o.phase < 0.5 {
				v = 1
			} else {
				v = -1
			}
		case Noise:
			v = o.rng.Float64()*2 - 1
		}
		samples[i][0] = v
		samples[i][1] = v

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope is a linear attack/release gate over a fixed duration.
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

func newEnvelope(s beep.Streamer, d, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer: s,
		attack:   rate.N(attack),
		release:  rate.N(release),
		total:    rate.N(d),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		if e.position >= e.total {
			return i, i > 0
		}
		gain := 1.0
		if e.position < e.attack && e.attack > 0 {
			gain = float64(e.position) / float64(e.attack)
		}
		if start := e.total - e.release; e.position >= start && e.release > 0 {
			gain = math.Max(0, float64(e.total-e.position)/float64(e.release))
		}
		samples[i][0] *= gain
		samples[i][1] *= gain
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume scales linearly; zero or below is silent.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

func tone(freq float64, d, attack, release time.Duration, wave Wave, rate beep.SampleRate) beep.Streamer {
	return newEnvelope(newOscillator(freq, d, wave, rate), d, attack, release, rate)
}

// Voice synthesizes the sound for c at the given linear volume.
func Voice(c cue.Cue, rate beep.SampleRate, vol float64) beep.Streamer {
	ms := time.Millisecond
	var s beep.Streamer
	switch c {
	case cue.Pop:
		s = beep.Mix(
			tone(620, 90*ms, 2*ms, 70*ms, Sine, rate),
			newVolume(tone(1240, 60*ms, 2*ms, 50*ms, Sine, rate), 0.3),
		)
	case cue.SoftPop:
		s = newVolume(tone(420, 70*ms, 4*ms, 55*ms, Sine, rate), 0.5)
	case cue.ModeChange:
		s = beep.Seq(
			tone(523.25, 80*ms, 5*ms, 40*ms, Triangle, rate),
			tone(659.25, 120*ms, 5*ms, 80*ms, Triangle, rate),
		)
	case cue.Whoosh:
		s = newVolume(tone(0, 260*ms, 60*ms, 180*ms, Noise, rate), 0.35)
	case cue.Chime:
		s = beep.Mix(
			newVolume(tone(880, 500*ms, 3*ms, 450*ms, Sine, rate), 0.7),
			newVolume(tone(1760, 500*ms, 3*ms, 250*ms, Sine, rate), 0.3),
		)
	case cue.Resonant:
		s = beep.Mix(
			newVolume(tone(220, 700*ms, 80*ms, 500*ms, Triangle, rate), 0.6),
			newVolume(tone(330, 700*ms, 80*ms, 500*ms, Triangle, rate), 0.4),
		)
	default:
		return nil
	}
	return newVolume(s, vol)
}
