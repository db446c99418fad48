package metrics

import "github.com/san-kum/glowfield/internal/particle"

// Stability is the fraction of observed ticks in which no more than
// threshold of the population sat at its speed clamp.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(st *particle.Store) {
	s.samples++
	if st.Len() == 0 {
		return
	}
	clamped := 0
	for _, p := range st.Particles() {
		if p.Speed2() >= p.MaxSpeed*p.MaxSpeed*0.999 {
			clamped++
		}
	}
	if float64(clamped)/float64(st.Len()) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
