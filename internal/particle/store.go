package particle

import (
	"math"
	"math/rand"
)

// SoftCapacityFactor bounds the population during burst spawning, relative
// to the nominal count passed to Create.
const SoftCapacityFactor = 1.2

// SpawnRule builds the i-th of count particles inside a w×h viewport.
type SpawnRule func(i, count int, rng *rand.Rand, w, h float64) Particle

// Store is an insertion-ordered particle population. Later particles paint
// over earlier ones.
type Store struct {
	particles []Particle
	width     float64
	height    float64
	nominal   int
	version   uint64
	rng       *rand.Rand
}

func NewStore(width, height float64, seed int64) *Store {
	return &Store{
		width:  width,
		height: height,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Create replaces the population with count particles built by rule and
// records count as the nominal population.
func (s *Store) Create(count int, rule SpawnRule) {
	if count < 0 {
		count = 0
	}
	if rule == nil {
		rule = SpreadHue
	}
	s.particles = make([]Particle, 0, softCap(count))
	for i := 0; i < count; i++ {
		s.particles = append(s.particles, rule(i, count, s.rng, s.width, s.height))
	}
	s.nominal = count
	s.version++
}

// Resize rescales every position proportionally to the new viewport. A
// particle scaled beyond the wrap margin is wrapped back in.
func (s *Store) Resize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	if s.width > 0 && s.height > 0 {
		sx, sy := width/s.width, height/s.height
		for i := range s.particles {
			p := &s.particles[i]
			p.X *= sx
			p.Y *= sy
			p.Wrap(width, height, WrapMargin)
		}
	}
	s.width, s.height = width, height
	s.version++
}

// Push appends p and evicts the oldest particles while the population exceeds
// capacity. It returns the number evicted.
func (s *Store) Push(p Particle, capacity int) int {
	s.version++
	s.particles = append(s.particles, p)
	if capacity <= 0 || len(s.particles) <= capacity {
		return 0
	}
	over := len(s.particles) - capacity
	n := copy(s.particles, s.particles[over:])
	s.particles = s.particles[:n]
	return over
}

// Capacity is the soft cap used by burst spawning.
func (s *Store) Capacity() int {
	return softCap(s.nominal)
}

func softCap(nominal int) int {
	return int(math.Floor(float64(nominal)*SoftCapacityFactor + 1e-9))
}

func (s *Store) Nominal() int { return s.nominal }

// Version changes whenever particles are added, removed or moved, so
// derived indexes know when to rebuild.
func (s *Store) Version() uint64 { return s.version }

// Touch marks positions as changed.
func (s *Store) Touch() { s.version++ }

func (s *Store) Len() int { return len(s.particles) }

func (s *Store) At(i int) *Particle { return &s.particles[i] }

// Particles exposes the backing slice for read-only passes such as rendering.
func (s *Store) Particles() []Particle { return s.particles }

func (s *Store) Each(fn func(i int, p *Particle)) {
	for i := range s.particles {
		fn(i, &s.particles[i])
	}
}

func (s *Store) Bounds() (float64, float64) { return s.width, s.height }

func (s *Store) Rand() *rand.Rand { return s.rng }

// SpreadHue scatters particles uniformly and spreads hue evenly over the
// color wheel by index.
func SpreadHue(i, count int, rng *rand.Rand, w, h float64) Particle {
	hue := 0.0
	if count > 0 {
		hue = float64(i) / float64(count) * 360
	}
	return NewParticle(rng.Float64()*w, rng.Float64()*h, hue, rng)
}
