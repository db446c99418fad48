package audio

import (
	"math"
	"math/rand"

	"github.com/gopxl/beep"
)

const (
	// AmbientGain scales the drones against the cue voices.
	AmbientGain = 0.3

	binauralBase = 100.0
	binauralBeat = 6.0
)

// droneFreqs stack perfect fifths on A1 for a warm pad.
var droneFreqs = []float64{55, 82.5, 110, 165}

type partial struct {
	freq, phase float64
	mod, rate   float64
}

// drone is an endless pad of slowly breathing sine partials. It never
// drains, so it is streamed beside the mixer rather than through it.
type drone struct {
	left  []partial
	right []partial
	gain  float64
	rate  beep.SampleRate
	t     float64
}

// newAmbient is the slightly detuned pad, identical in both ears.
func newAmbient(rate beep.SampleRate, rng *rand.Rand) beep.Streamer {
	d := &drone{gain: 0.15, rate: rate}
	for _, f := range droneFreqs {
		p := partial{
			freq: f + rng.Float64() - 0.5,
			mod:  rng.Float64() * 2 * math.Pi,
			rate: 0.1,
		}
		d.left = append(d.left, p)
	}
	d.right = d.left
	return d
}

// newBinaural offsets the right ear by a theta-band beat.
func newBinaural(rate beep.SampleRate) beep.Streamer {
	return &drone{
		left: []partial{
			{freq: binauralBase},
			{freq: binauralBase * 2},
		},
		right: []partial{
			{freq: binauralBase + binauralBeat},
			{freq: (binauralBase + binauralBeat) * 2},
		},
		gain: 0.2,
		rate: rate,
	}
}

func (d *drone) Stream(samples [][2]float64) (int, bool) {
	step := 1 / float64(d.rate)
	for i := range samples {
		samples[i][0] = d.gain * sum(d.left, d.t)
		samples[i][1] = d.gain * sum(d.right, d.t)
		d.t += step
	}
	return len(samples), true
}

func (d *drone) Err() error { return nil }

func sum(ps []partial, t float64) float64 {
	v := 0.0
	for i, p := range ps {
		amp := 1.0
		if p.rate > 0 {
			amp += 0.1 * math.Sin(2*math.Pi*p.rate*t+p.mod)
		}
		// upper partials sit quieter
		if i > 0 && p.rate == 0 {
			amp = 0.25
		}
		v += amp * math.Sin(2*math.Pi*p.freq*t+p.phase)
	}
	return v
}
