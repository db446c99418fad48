package field

const (
	DefaultRadius   = 200.0
	DefaultStrength = 0.5

	// DefaultBreathRate is the background oscillator speed in units per second.
	DefaultBreathRate = 0.06
)

// Anchor is one force application: where, which shape, how far, how hard.
type Anchor struct {
	X, Y     float64
	Mode     Mode
	Radius   float64
	Strength float64
}

// State is the process-wide field configuration written by input handlers
// and read once per tick.
type State struct {
	AnchorX, AnchorY float64
	Active           bool
	Mode             Mode
	Radius           float64
	Strength         float64

	// Breath is a triangle wave in [0, 1] that tints the background only.
	Breath     float64
	BreathRate float64
	breathDir  float64
}

func NewState(radius, strength float64) *State {
	if radius <= 0 {
		radius = DefaultRadius
	}
	return &State{
		Mode:       Attract,
		Radius:     radius,
		Strength:   strength,
		BreathRate: DefaultBreathRate,
		breathDir:  1,
	}
}

func (s *State) SetAnchor(x, y float64, active bool) {
	s.AnchorX, s.AnchorY = x, y
	s.Active = active
}

// SetMode reports whether the mode actually changed.
func (s *State) SetMode(m Mode) bool {
	if s.Mode == m {
		return false
	}
	s.Mode = m
	return true
}

// Anchor returns the single-pointer force application for this state.
func (s *State) Anchor() Anchor {
	return Anchor{
		X:        s.AnchorX,
		Y:        s.AnchorY,
		Mode:     s.Mode,
		Radius:   s.Radius,
		Strength: s.Strength,
	}
}

// AdvanceBreath moves the oscillator by dt seconds, reflecting at 0 and 1.
func (s *State) AdvanceBreath(dt float64) {
	if s.breathDir == 0 {
		s.breathDir = 1
	}
	s.Breath += s.breathDir * s.BreathRate * dt
	for s.Breath > 1 || s.Breath < 0 {
		if s.Breath > 1 {
			s.Breath = 2 - s.Breath
			s.breathDir = -1
		} else {
			s.Breath = -s.Breath
			s.breathDir = 1
		}
	}
}
