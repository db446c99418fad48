package field

import (
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"

	"github.com/san-kum/glowfield/internal/particle"
)

const (
	idleCenters    = 3
	idlePull       = 0.02
	idleOrbit      = 0.015
	idleDeadZone   = 50.0
	idleShiftOdds  = 0.001
	idleAngleSpeed = 0.005
	idleWander     = math.Pi / 2
)

// Idle drives the screensaver: a few slowly drifting attractors that pull
// particles into loose orbits while nobody is interacting. Each attractor's
// heading wanders with Perlin noise.
type Idle struct {
	Centers [][2]float64
	angle   float64
	noise   *perlin.Perlin
}

func NewIdle(w, h float64, rng *rand.Rand) *Idle {
	idle := &Idle{
		Centers: make([][2]float64, idleCenters),
		noise:   perlin.NewPerlin(2, 2, 3, rng.Int63()),
	}
	for i := range idle.Centers {
		idle.Centers[i] = randomCenter(w, h, rng)
	}
	return idle
}

// Step drifts the attractors by one frame and applies their pull to s.
func (idle *Idle) Step(s *particle.Store, rng *rand.Rand) {
	w, h := s.Bounds()
	idle.angle += idleAngleSpeed

	for i := range idle.Centers {
		a := idle.angle + float64(i)*2*math.Pi/idleCenters
		a += idle.noise.Noise2D(idle.angle, float64(i)) * idleWander
		c := &idle.Centers[i]
		c[0] = math.Max(w*0.1, math.Min(w*0.9, c[0]+math.Cos(a)*0.5))
		c[1] = math.Max(h*0.1, math.Min(h*0.9, c[1]+math.Sin(a)*0.3))
	}

	for _, c := range idle.Centers {
		s.Each(func(_ int, p *particle.Particle) {
			dx, dy := p.X-c[0], p.Y-c[1]
			dist := math.Sqrt(dx*dx + dy*dy)
			if dist <= idleDeadZone {
				return
			}
			nx, ny := dx/dist, dy/dist
			falloff := dist*0.01 + 1
			pull := idlePull / falloff
			orbit := idleOrbit / falloff
			p.VX += -nx*pull - ny*orbit
			p.VY += -ny*pull + nx*orbit
		})
	}

	if rng.Float64() < idleShiftOdds {
		idle.Centers[rng.Intn(len(idle.Centers))] = randomCenter(w, h, rng)
	}
}

func randomCenter(w, h float64, rng *rand.Rand) [2]float64 {
	return [2]float64{
		w*0.2 + rng.Float64()*w*0.6,
		h*0.2 + rng.Float64()*h*0.6,
	}
}
