package gesture

import (
	"math"
	"time"

	"github.com/san-kum/glowfield/internal/field"
)

const (
	MergeStrengthGain  = 1.5
	ExpandStrengthGain = 2.0
	MergeRadiusFactor  = 0.8

	DefaultSpawnCooldown = 500 * time.Millisecond

	// DefaultExitHold is how long both hands must stay closed in fists
	// before the frame asks the frontend to quit.
	DefaultExitHold = 3 * time.Second

	// DefaultFlowThreshold is the hand speed, in pixels per frame, above
	// which an unlabelled hand drags particles along.
	DefaultFlowThreshold = 20.0
	DefaultFlowGain      = 0.1
	DefaultFlowStrength  = 0.5
)

// Burst is a spawn request at a pixel position.
type Burst struct {
	X, Y float64
}

// Frame is everything the hands asked for this tick, in pixel space.
type Frame struct {
	Anchors []field.Anchor
	Bursts  []Burst
	Merged  bool
	Exit    bool

	Flowing  bool
	FlowX    float64
	FlowY    float64
	FlowGain float64
}

// Active reports whether any hand is exerting force.
func (f Frame) Active() bool { return len(f.Anchors) > 0 }

// Mapper turns labelled hands into anchors. It keeps the spawn cooldown
// between frames.
type Mapper struct {
	Radius        float64
	Strength      float64
	SpawnCooldown time.Duration
	FlowThreshold float64
	FlowGain      float64
	FlowStrength  float64
	ExitHold      time.Duration

	lastSpawn time.Duration
	spawned   bool
	fistSince time.Duration
	fisting   bool
}

func NewMapper(radius, strength float64, cooldown time.Duration) *Mapper {
	if cooldown <= 0 {
		cooldown = DefaultSpawnCooldown
	}
	return &Mapper{
		Radius:        radius,
		Strength:      strength,
		SpawnCooldown: cooldown,
		FlowThreshold: DefaultFlowThreshold,
		FlowGain:      DefaultFlowGain,
		FlowStrength:  DefaultFlowStrength,
		ExitHold:      DefaultExitHold,
	}
}

// Reset forgets any exit hold in progress. Call when the hands are lost.
func (m *Mapper) Reset() { m.fisting = false }

// Map resolves hands for a w×h viewport at engine time now. A pair of hands
// carrying Merge or Expand collapses into one anchor at their midpoint; the
// strength change is scoped to that anchor only.
func (m *Mapper) Map(hands []Hand, w, h float64, now time.Duration) Frame {
	var f Frame
	if len(hands) == 0 {
		m.fisting = false
		return f
	}
	f.Exit = m.holdExit(hands, now)

	rest := hands
	if len(hands) >= 2 && (hands[0].Label.TwoHanded() || hands[1].Label.TwoHanded()) {
		a, b := hands[0], hands[1]
		ax, ay := a.X*w, a.Y*h
		bx, by := b.X*w, b.Y*h
		mid := field.Anchor{X: (ax + bx) / 2, Y: (ay + by) / 2, Radius: m.Radius}

		label := a.Label
		if !label.TwoHanded() {
			label = b.Label
		}
		if label == Merge {
			mid.Mode = field.Attract
			f.Merged = true
			mid.Strength = m.Strength * MergeStrengthGain
			if d := math.Hypot(bx-ax, by-ay); d > 0 {
				mid.Radius = d * MergeRadiusFactor
			}
		} else {
			mid.Mode = field.Repel
			mid.Strength = m.Strength * ExpandStrengthGain
		}
		f.Anchors = append(f.Anchors, mid)
		rest = hands[2:]
	}

	for _, hd := range rest {
		x, y := hd.X*w, hd.Y*h
		a := field.Anchor{X: x, Y: y, Radius: m.Radius, Strength: m.Strength}
		switch hd.Label {
		case Palm:
			a.Mode = field.Attract
		case Fist:
			a.Mode = field.Repel
		case Spread:
			a.Mode = field.Swirl
		case Pinch:
			if m.canSpawn(now) {
				f.Bursts = append(f.Bursts, Burst{X: x, Y: y})
				m.lastSpawn = now
				m.spawned = true
			}
			continue
		default:
			vx, vy := hd.VX*w, hd.VY*h
			if math.Hypot(vx, vy) > m.FlowThreshold {
				f.Flowing = true
				f.FlowX += vx * m.FlowGain
				f.FlowY += vy * m.FlowGain
				f.FlowGain = m.FlowStrength
			}
			continue
		}
		f.Anchors = append(f.Anchors, a)
	}
	return f
}

func (m *Mapper) holdExit(hands []Hand, now time.Duration) bool {
	if len(hands) < 2 || hands[0].Label != Fist || hands[1].Label != Fist {
		m.fisting = false
		return false
	}
	if !m.fisting {
		m.fisting = true
		m.fistSince = now
	}
	return now-m.fistSince >= m.ExitHold
}

func (m *Mapper) canSpawn(now time.Duration) bool {
	return !m.spawned || now-m.lastSpawn >= m.SpawnCooldown
}
