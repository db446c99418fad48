// Package cue names the discrete sound signals the simulation emits.
// Rendering them as audio is left to whoever implements Sink.
package cue

type Cue int

const (
	Pop Cue = iota
	SoftPop
	ModeChange
	Whoosh
	Chime
	Resonant
)

var names = [...]string{
	Pop:        "pop",
	SoftPop:    "soft-pop",
	ModeChange: "mode-change",
	Whoosh:     "whoosh",
	Chime:      "chime",
	Resonant:   "resonant",
}

func (c Cue) String() string {
	if c < 0 || int(c) >= len(names) {
		return "unknown"
	}
	return names[c]
}

// All lists every cue in declaration order.
func All() []Cue {
	out := make([]Cue, len(names))
	for i := range names {
		out[i] = Cue(i)
	}
	return out
}

type Sink interface {
	Play(c Cue)
}

// Nop discards every cue.
type Nop struct{}

func (Nop) Play(Cue) {}

// Recorder keeps every cue it receives, in order.
type Recorder struct {
	Cues []Cue
}

func (r *Recorder) Play(c Cue) { r.Cues = append(r.Cues, c) }

func (r *Recorder) Count(c Cue) int {
	n := 0
	for _, x := range r.Cues {
		if x == c {
			n++
		}
	}
	return n
}
