package gesture

import "math"

// Buttons is the mouse button state for one frame.
type Buttons struct {
	Left, Middle, Right bool
}

func (b Buttons) Any() bool { return b.Left || b.Middle || b.Right }

// Sample is one pointer frame in pixel space. The pointer never picks a
// field mode: a held button anchors the field under whatever mode is set.
type Sample struct {
	X, Y    float64
	Pressed bool

	// Spawn is set on the frame the middle button goes down.
	Spawn bool

	Flowing      bool
	FlowX, FlowY float64
}

// Pointer turns raw mouse or touch input into samples, tracking the
// previous position for sweep velocity.
type Pointer struct {
	FlowThreshold float64
	FlowGain      float64

	prevX, prevY float64
	seen         bool
	middle       bool
}

func NewPointer() *Pointer {
	return &Pointer{
		FlowThreshold: DefaultFlowThreshold,
		FlowGain:      DefaultFlowGain,
	}
}

// Update samples the pointer at pixel (x, y). Left or right anchors, a
// middle press spawns, and an unpressed sweep faster than FlowThreshold
// pixels per frame drags particles along.
func (p *Pointer) Update(x, y float64, b Buttons) Sample {
	s := Sample{X: x, Y: y, Pressed: b.Left || b.Right}

	var vx, vy float64
	if p.seen {
		vx, vy = x-p.prevX, y-p.prevY
	}
	p.prevX, p.prevY = x, y
	p.seen = true

	s.Spawn = b.Middle && !p.middle
	p.middle = b.Middle

	if !b.Any() && math.Hypot(vx, vy) > p.FlowThreshold {
		s.Flowing = true
		s.FlowX = vx * p.FlowGain
		s.FlowY = vy * p.FlowGain
	}
	return s
}
