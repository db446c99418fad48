// Package field applies the anchor force field to a particle store and
// advances particle kinematics one frame at a time.
package field

import (
	"math"

	"github.com/san-kum/glowfield/internal/particle"
	"github.com/san-kum/glowfield/internal/spatial"
)

const (
	DefaultEpsilon     = 1e-6
	DefaultWrapMargin  = particle.WrapMargin
	DefaultTouchRadius = 50.0

	RepelGain       = 1.5
	SwirlTangential = 0.8
	SwirlRadial     = 0.3
)

// Simulator holds the force-field coefficients. Physics is frame-normalized:
// one call to Integrate is one frame of motion.
type Simulator struct {
	Epsilon         float64
	WrapMargin      float64
	RepelGain       float64
	SwirlTangential float64
	SwirlRadial     float64
	TouchRadius     float64

	grid *spatial.Grid
}

// NewSimulator uses grid for neighbour queries when non-nil; otherwise every
// particle is tested against every anchor.
func NewSimulator(grid *spatial.Grid) *Simulator {
	return &Simulator{
		Epsilon:         DefaultEpsilon,
		WrapMargin:      DefaultWrapMargin,
		RepelGain:       RepelGain,
		SwirlTangential: SwirlTangential,
		SwirlRadial:     SwirlRadial,
		TouchRadius:     DefaultTouchRadius,
		grid:            grid,
	}
}

// ApplyForce adds the anchor's force to the velocity of every particle inside
// its radius. It returns how many were affected and how many sit within
// TouchRadius of the anchor. Call once per anchor.
func (sim *Simulator) ApplyForce(s *particle.Store, a Anchor) (affected, touching int) {
	if a.Mode == Neutral || a.Radius <= 0 {
		return 0, 0
	}
	r2 := a.Radius * a.Radius
	t2 := sim.TouchRadius * sim.TouchRadius

	apply := func(i int) {
		p := s.At(i)
		dx, dy := a.X-p.X, a.Y-p.Y
		d2 := dx*dx + dy*dy
		if d2 >= r2 {
			return
		}
		if d2 < t2 {
			touching++
		}
		if d2 <= sim.Epsilon {
			return
		}
		dist := math.Sqrt(d2)
		force := (1 - dist/a.Radius) * a.Strength
		nx, ny := dx/dist, dy/dist

		switch a.Mode {
		case Attract:
			p.VX += nx * force
			p.VY += ny * force
		case Repel:
			p.VX -= nx * force * sim.RepelGain
			p.VY -= ny * force * sim.RepelGain
		case Swirl:
			// perpendicular of n is (-ny, nx)
			p.VX += -ny*force*sim.SwirlTangential + nx*force*sim.SwirlRadial
			p.VY += nx*force*sim.SwirlTangential + ny*force*sim.SwirlRadial
		}
		affected++
	}

	if sim.grid != nil {
		sim.grid.Sync(s)
		sim.grid.Query(a.X, a.Y, a.Radius, apply)
		return affected, touching
	}
	for i := 0; i < s.Len(); i++ {
		apply(i)
	}
	return affected, touching
}

// Integrate advances every particle by one frame: move, apply friction,
// clamp speed, wrap at the viewport margin, then refresh hue and radius.
func (sim *Simulator) Integrate(s *particle.Store) {
	w, h := s.Bounds()
	m := sim.WrapMargin
	s.Each(func(_ int, p *particle.Particle) {
		p.X += p.VX
		p.Y += p.VY
		p.VX *= p.Friction
		p.VY *= p.Friction
		p.ClampSpeed()
		p.Wrap(w, h, m)
		p.Refresh()
	})
	s.Touch()
}

// Update runs one single-anchor tick and reports the anchor's contact
// counts as ApplyForce does.
func (sim *Simulator) Update(s *particle.Store, st *State) (affected, touching int) {
	if st.Active {
		affected, touching = sim.ApplyForce(s, st.Anchor())
	}
	sim.Integrate(s)
	return affected, touching
}
