package particle

import (
	"math"
	"math/rand"
)

const (
	DefaultFriction = 0.98
	DefaultMaxSpeed = 8.0

	// RadiusGain scales speed into the radius pulse.
	RadiusGain = 0.3

	// WrapMargin is how far past an edge a particle drifts before it
	// reappears on the opposite side.
	WrapMargin = 20.0
)

// Particle is a single simulated point. Hue is in degrees, saturation and
// lightness in percent, alpha and glow in [0, 1].
type Particle struct {
	X, Y       float64
	VX, VY     float64
	BaseRadius float64
	Radius     float64
	Hue        float64
	Saturation float64
	Lightness  float64
	Alpha      float64
	Glow       float64
	HueDrift   float64
	Friction   float64
	MaxSpeed   float64
}

// NewParticle returns a resting particle at (x, y) with the default physical
// constants and randomized cosmetics.
func NewParticle(x, y, hue float64, rng *rand.Rand) Particle {
	p := Particle{
		X:          x,
		Y:          y,
		VX:         (rng.Float64() - 0.5) * 2,
		VY:         (rng.Float64() - 0.5) * 2,
		BaseRadius: 1.5 + rng.Float64()*2,
		Hue:        WrapHue(hue),
		Saturation: 80 + rng.Float64()*20,
		Lightness:  55 + rng.Float64()*15,
		Alpha:      0.8 + rng.Float64()*0.2,
		Glow:       0.5 + rng.Float64()*0.5,
		HueDrift:   0.1 + rng.Float64()*0.4,
		Friction:   DefaultFriction,
		MaxSpeed:   DefaultMaxSpeed,
	}
	p.Radius = p.BaseRadius
	return p
}

func (p *Particle) Speed2() float64 {
	return p.VX*p.VX + p.VY*p.VY
}

func (p *Particle) Speed() float64 {
	return math.Sqrt(p.Speed2())
}

// ClampSpeed rescales the velocity so its magnitude does not exceed MaxSpeed.
func (p *Particle) ClampSpeed() {
	v2 := p.Speed2()
	if v2 <= p.MaxSpeed*p.MaxSpeed || v2 == 0 {
		return
	}
	s := p.MaxSpeed / math.Sqrt(v2)
	p.VX *= s
	p.VY *= s
}

// Refresh advances the hue drift and recomputes the speed-driven radius.
func (p *Particle) Refresh() {
	p.Hue = WrapHue(p.Hue + p.HueDrift)
	p.Radius = p.BaseRadius + p.Speed()*RadiusGain
}

// Wrap moves p to the opposite edge once it is more than margin outside the
// w×h viewport.
func (p *Particle) Wrap(w, h, margin float64) {
	if p.X < -margin {
		p.X = w + margin
	} else if p.X > w+margin {
		p.X = -margin
	}
	if p.Y < -margin {
		p.Y = h + margin
	} else if p.Y > h+margin {
		p.Y = -margin
	}
}

// WrapHue maps any angle in degrees into [0, 360).
func WrapHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	if h >= 360 {
		h = 0
	}
	return h
}
