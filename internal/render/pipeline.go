// Package render paints the particle field onto a Surface in one of two
// tiers. Rendering reads simulation state and never writes it.
package render

import (
	"math"

	"github.com/san-kum/glowfield/internal/field"
	"github.com/san-kum/glowfield/internal/particle"
)

type Tier int

const (
	TierPerformance Tier = iota
	TierQuality
)

func (t Tier) String() string {
	if t == TierQuality {
		return "quality"
	}
	return "performance"
}

const (
	DefaultGlowScale = 4.0

	// BrightnessSteps quantizes the breathing value for the gradient cache.
	BrightnessSteps = 20

	IndicatorRing = 30.0
	IndicatorDot  = 5.0

	// TrailSteps ghosts are drawn behind each moving particle, one frame
	// of travel apart, when trails are on.
	TrailSteps    = 3
	trailMinSpeed = 0.5
	trailAlpha    = 0.35

	centerBoost = 50.0 / 255
)

var (
	BackgroundA = RGB8(13, 2, 33)
	BackgroundB = RGB8(10, 22, 40)

	modeColors = map[field.Mode]Color{
		field.Attract: Hex("#00D4FF"),
		field.Repel:   Hex("#FF006E"),
		field.Swirl:   Hex("#FFB800"),
		field.Neutral: White,
	}
)

// IndicatorColor is the fixed anchor indicator colour for a mode.
func IndicatorColor(m field.Mode) Color {
	if c, ok := modeColors[m]; ok {
		return c
	}
	return White
}

type Pipeline struct {
	GlowScale   float64
	BackgroundA Color
	BackgroundB Color

	performance bool
	indicator   bool
	trails      bool
	gradient    *Gradient
	rebuilds    int
}

func NewPipeline() *Pipeline {
	return &Pipeline{
		GlowScale:   DefaultGlowScale,
		BackgroundA: BackgroundA,
		BackgroundB: BackgroundB,
		indicator:   true,
	}
}

func (p *Pipeline) SetPerformance(on bool) { p.performance = on }
func (p *Pipeline) Performance() bool      { return p.performance }
func (p *Pipeline) SetIndicator(on bool)   { p.indicator = on }
func (p *Pipeline) Indicator() bool        { return p.indicator }
func (p *Pipeline) SetTrails(on bool)      { p.trails = on }
func (p *Pipeline) Trails() bool           { return p.trails }

// Invalidate drops the cached background gradient. Call on resize.
func (p *Pipeline) Invalidate() { p.gradient = nil }

// GradientRebuilds counts how often the background gradient was rebuilt.
func (p *Pipeline) GradientRebuilds() int { return p.rebuilds }

// TierFor reports the tier Render would use for s.
func (p *Pipeline) TierFor(s Surface) Tier {
	if p.performance {
		return TierPerformance
	}
	if _, ok := s.(GlowSurface); !ok {
		return TierPerformance
	}
	return TierQuality
}

// Render paints one frame and returns the tier it used. When hands are
// given, each gets its own indicator in place of the State anchor.
func (p *Pipeline) Render(s Surface, store *particle.Store, st *field.State, hands ...field.Anchor) Tier {
	tier := p.TierFor(s)
	ps := store.Particles()

	if tier == TierQuality {
		gs := s.(GlowSurface)
		gs.FillGradient(p.background(s, st.Breath))

		gs.BeginAdditive()
		for i := range ps {
			q := &ps[i]
			c := particleColor(q)
			gs.GlowCircle(q.X, q.Y, q.Radius*p.GlowScale, c.WithAlpha(c.A*q.Glow*0.8))
		}
		gs.EndAdditive()

		p.renderTrails(s, ps)
		for i := range ps {
			q := &ps[i]
			gs.FillCircle(q.X, q.Y, q.Radius, particleColor(q))
		}
		for i := range ps {
			q := &ps[i]
			gs.FillCircle(q.X, q.Y, math.Max(1, q.Radius/2), particleColor(q).Brighten(centerBoost))
		}
	} else {
		s.Clear(p.flat(st.Breath))
		p.renderTrails(s, ps)
		for i := range ps {
			q := &ps[i]
			s.FillCircle(q.X, q.Y, q.Radius, particleColor(q))
		}
	}

	if p.indicator {
		switch {
		case len(hands) > 0:
			for _, a := range hands {
				drawIndicator(s, a.X, a.Y, a.Mode)
			}
		case st.Active:
			drawIndicator(s, st.AnchorX, st.AnchorY, st.Mode)
		}
	}
	return tier
}

func drawIndicator(s Surface, x, y float64, m field.Mode) {
	c := IndicatorColor(m)
	s.StrokeCircle(x, y, IndicatorRing, 2, c.WithAlpha(0.6))
	s.FillCircle(x, y, IndicatorDot, c.WithAlpha(0.9))
}

// renderTrails steps back along each particle's velocity, fading and
// shrinking the ghost at every step.
func (p *Pipeline) renderTrails(s Surface, ps []particle.Particle) {
	if !p.trails {
		return
	}
	for i := range ps {
		q := &ps[i]
		if q.Speed2() < trailMinSpeed*trailMinSpeed {
			continue
		}
		c := particleColor(q)
		for k := 1; k <= TrailSteps; k++ {
			fade := 1 - float64(k)/(TrailSteps+1)
			x, y := q.X-q.VX*float64(k), q.Y-q.VY*float64(k)
			s.FillCircle(x, y, q.Radius*fade, c.WithAlpha(c.A*trailAlpha*fade))
		}
	}
}

func (p *Pipeline) flat(breath float64) Color {
	return p.BackgroundA.Lerp(p.BackgroundB, breath)
}

func (p *Pipeline) background(s Surface, breath float64) *Gradient {
	w, h := s.Size()
	key := GradientKey{
		Brightness: int(math.Round(breath * BrightnessSteps)),
		Width:      w,
		Height:     h,
	}
	if p.gradient != nil && p.gradient.Key == key {
		return p.gradient
	}

	base := p.flat(float64(key.Brightness) / BrightnessSteps)
	p.gradient = &Gradient{
		CX:     float64(w) / 2,
		CY:     float64(h) / 2,
		Radius: math.Hypot(float64(w), float64(h)) / 2,
		Inner:  base.Brighten(0.04),
		Outer:  base.Lerp(Color{A: 1}, 0.5),
		Key:    key,
	}
	p.rebuilds++
	return p.gradient
}

func particleColor(q *particle.Particle) Color {
	return HSLA(q.Hue, q.Saturation/100, q.Lightness/100, q.Alpha)
}
