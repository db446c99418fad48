package metrics

import (
	"math"

	"github.com/san-kum/glowfield/internal/particle"
)

// KineticEnergy sums ½v² over the population, treating every particle as
// unit mass.
func KineticEnergy(s *particle.Store) float64 {
	e := 0.0
	for _, p := range s.Particles() {
		e += 0.5 * p.Speed2()
	}
	return e
}

func MeanSpeed(s *particle.Store) float64 {
	ps := s.Particles()
	if len(ps) == 0 {
		return 0
	}
	total := 0.0
	for i := range ps {
		total += ps[i].Speed()
	}
	return total / float64(len(ps))
}

// Energy averages per-particle kinetic energy over observations.
type Energy struct {
	name    string
	total   float64
	peak    float64
	samples int
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s *particle.Store) {
	if s.Len() == 0 {
		return
	}
	ke := KineticEnergy(s) / float64(s.Len())
	e.total += ke
	e.peak = math.Max(e.peak, ke)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *Energy) Peak() float64 { return e.peak }

func (e *Energy) Reset() {
	e.total = 0
	e.peak = 0
	e.samples = 0
}
