package gesture

import "github.com/charmbracelet/harmonica"

const (
	DefaultSmoothing = 6.0
	// critical damping: no overshoot past the detected palm.
	smoothingDamping = 1.0
)

// Smoother damps landmark jitter with one critically damped spring per
// axis per hand slot.
type Smoother struct {
	spring harmonica.Spring
	pos    [][2]float64
	vel    [][2]float64
}

// NewSmoother builds springs stepped at fps. frequency is the angular
// frequency of the spring; higher follows the hand more tightly.
func NewSmoother(fps int, frequency float64) *Smoother {
	if fps <= 0 {
		fps = 60
	}
	if frequency <= 0 {
		frequency = DefaultSmoothing
	}
	return &Smoother{spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, smoothingDamping)}
}

// Smooth moves each hand toward its detected position. Slots that just
// appeared snap to the target.
func (s *Smoother) Smooth(hands []Hand) []Hand {
	if len(hands) != len(s.pos) {
		s.resize(hands)
	}
	out := make([]Hand, len(hands))
	for i, hd := range hands {
		x, vx := s.spring.Update(s.pos[i][0], s.vel[i][0], hd.X)
		y, vy := s.spring.Update(s.pos[i][1], s.vel[i][1], hd.Y)
		s.pos[i] = [2]float64{x, y}
		s.vel[i] = [2]float64{vx, vy}
		hd.X, hd.Y = x, y
		out[i] = hd
	}
	return out
}

func (s *Smoother) Reset() {
	s.pos = nil
	s.vel = nil
}

func (s *Smoother) resize(hands []Hand) {
	pos := make([][2]float64, len(hands))
	vel := make([][2]float64, len(hands))
	for i, hd := range hands {
		if i < len(s.pos) {
			pos[i] = s.pos[i]
			vel[i] = s.vel[i]
			continue
		}
		pos[i] = [2]float64{hd.X, hd.Y}
	}
	s.pos = pos
	s.vel = vel
}
