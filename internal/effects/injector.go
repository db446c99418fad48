// Package effects perturbs the particle population outside the steady-state
// field rules: bursts, ripples, global kicks, local turbulence and flows.
package effects

import (
	"math"
	"math/rand"

	"github.com/san-kum/glowfield/internal/cue"
	"github.com/san-kum/glowfield/internal/particle"
	"github.com/san-kum/glowfield/internal/spatial"
)

const (
	DefaultWaveRadius    = 300.0
	DefaultWaveK         = 0.05
	DefaultWaveAmplitude = 0.6

	DefaultBoostImpulse   = 2.5
	DefaultBoostLightness = 15.0
	maxLightness          = 90.0

	DefaultChaosRadius = 150.0
	DefaultChaosJitter = 1.5

	burstMinSpeed = 2.0
	burstMaxSpeed = 5.0
)

type Injector struct {
	WaveRadius    float64
	WaveK         float64
	WaveAmplitude float64
	BoostImpulse  float64
	ChaosRadius   float64
	ChaosJitter   float64

	// Palette colours burst particles; nil picks random hues.
	Palette *particle.Palette

	store *particle.Store
	grid  *spatial.Grid
	cues  cue.Sink
	rng   *rand.Rand
}

// NewInjector wires the injector to the store it mutates. grid may be nil.
func NewInjector(store *particle.Store, grid *spatial.Grid, cues cue.Sink) *Injector {
	if cues == nil {
		cues = cue.Nop{}
	}
	return &Injector{
		WaveRadius:    DefaultWaveRadius,
		WaveK:         DefaultWaveK,
		WaveAmplitude: DefaultWaveAmplitude,
		BoostImpulse:  DefaultBoostImpulse,
		ChaosRadius:   DefaultChaosRadius,
		ChaosJitter:   DefaultChaosJitter,
		store:         store,
		grid:          grid,
		cues:          cues,
		rng:           store.Rand(),
	}
}

// SpawnBurst adds count particles at (x, y) flying outward at evenly spaced
// angles. Past the soft capacity the oldest particles are evicted. It reports
// whether anything spawned.
func (in *Injector) SpawnBurst(x, y float64, count int) bool {
	if count <= 0 {
		return false
	}
	capacity := in.store.Capacity()
	for i := 0; i < count; i++ {
		p := particle.NewParticle(x, y, in.rng.Float64()*360, in.rng)
		if in.Palette != nil {
			in.Palette.Pick(in.rng).Apply(&p)
		}
		angle := float64(i) / float64(count) * 2 * math.Pi
		speed := burstMinSpeed + in.rng.Float64()*(burstMaxSpeed-burstMinSpeed)
		p.VX = math.Cos(angle) * speed
		p.VY = math.Sin(angle) * speed
		p.Radius = p.BaseRadius + speed*particle.RadiusGain
		in.store.Push(p, capacity)
	}
	in.cues.Play(cue.Pop)
	return true
}

// Wave pushes particles along the radius from (x, y) by sin(dist·k − t),
// tapering to zero at the wave radius. Call every tick with an advancing t.
func (in *Injector) Wave(x, y, t float64) int {
	r := in.WaveRadius
	affected := 0
	in.visit(x, y, r, func(p *particle.Particle) {
		dx, dy := p.X-x, p.Y-y
		d2 := dx*dx + dy*dy
		if d2 <= 1e-6 || d2 >= r*r {
			return
		}
		dist := math.Sqrt(d2)
		f := math.Sin(dist*in.WaveK-t) * in.WaveAmplitude * (1 - dist/r)
		p.VX += dx / dist * f
		p.VY += dy / dist * f
		affected++
	})
	return affected
}

// EnergyBoost kicks every particle in a random direction and brightens it.
func (in *Injector) EnergyBoost() {
	in.store.Each(func(_ int, p *particle.Particle) {
		p.VX += (in.rng.Float64()*2 - 1) * in.BoostImpulse
		p.VY += (in.rng.Float64()*2 - 1) * in.BoostImpulse
		p.Lightness = math.Min(maxLightness, p.Lightness+DefaultBoostLightness)
	})
	in.cues.Play(cue.Chime)
}

// Chaos jitters velocities and spins hues for particles near (x, y).
func (in *Injector) Chaos(x, y float64) int {
	r := in.ChaosRadius
	affected := 0
	in.visit(x, y, r, func(p *particle.Particle) {
		dx, dy := p.X-x, p.Y-y
		if dx*dx+dy*dy >= r*r {
			return
		}
		p.VX += (in.rng.Float64()*2 - 1) * in.ChaosJitter
		p.VY += (in.rng.Float64()*2 - 1) * in.ChaosJitter
		p.Hue = particle.WrapHue(p.Hue + 5 + in.rng.Float64()*10)
		affected++
	})
	return affected
}

// Flow pushes every particle along (dx, dy). A zero vector does nothing.
func (in *Injector) Flow(dx, dy, strength float64) bool {
	l := math.Hypot(dx, dy)
	if l < 1e-9 || strength == 0 {
		return false
	}
	ux, uy := dx/l*strength, dy/l*strength
	in.store.Each(func(_ int, p *particle.Particle) {
		p.VX += ux
		p.VY += uy
	})
	in.cues.Play(cue.Whoosh)
	return true
}

func (in *Injector) visit(x, y, r float64, fn func(p *particle.Particle)) {
	if in.grid == nil {
		in.store.Each(func(_ int, p *particle.Particle) { fn(p) })
		return
	}
	in.grid.Sync(in.store)
	in.grid.Query(x, y, r, func(i int) { fn(in.store.At(i)) })
}
