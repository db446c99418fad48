package control

import (
	"strings"

	"github.com/san-kum/glowfield/internal/field"
	"github.com/san-kum/glowfield/internal/sim"
)

type Command int

const (
	None Command = iota
	Attract
	Repel
	Swirl
	CycleMode
	Burst
	Wave
	Boost
	Chaos
	TogglePerformance
	ToggleIndicator
	CyclePalette
	ToggleTrails
	VolumeUp
	VolumeDown
	ToggleAmbient
	ToggleBinaural
	Record
	ToggleHUD
	Quit
)

var commandNames = [...]string{
	None:              "none",
	Attract:           "attract",
	Repel:             "repel",
	Swirl:             "swirl",
	CycleMode:         "cycle-mode",
	Burst:             "burst",
	Wave:              "wave",
	Boost:             "boost",
	Chaos:             "chaos",
	TogglePerformance: "performance",
	ToggleIndicator:   "indicator",
	CyclePalette:      "palette",
	ToggleTrails:      "trails",
	VolumeUp:          "volume-up",
	VolumeDown:        "volume-down",
	ToggleAmbient:     "ambient",
	ToggleBinaural:    "binaural",
	Record:            "record",
	ToggleHUD:         "hud",
	Quit:              "quit",
}

func (c Command) String() string {
	if c < 0 || int(c) >= len(commandNames) {
		return "unknown"
	}
	return commandNames[c]
}

// Keys binds key names to commands. Names follow bubbletea's KeyMsg.String.
var Keys = map[string]Command{
	"1":      Attract,
	"2":      Repel,
	"3":      Swirl,
	"m":      CycleMode,
	"b":      Burst,
	"w":      Wave,
	"e":      Boost,
	"c":      Chaos,
	"p":      TogglePerformance,
	"i":      ToggleIndicator,
	"n":      CyclePalette,
	"t":      ToggleTrails,
	"+":      VolumeUp,
	"=":      VolumeUp,
	"-":      VolumeDown,
	"a":      ToggleAmbient,
	"d":      ToggleBinaural,
	"r":      Record,
	"h":      ToggleHUD,
	"esc":    Quit,
	"q":      Quit,
	"ctrl+c": Quit,
}

func ParseKey(key string) Command {
	return Keys[strings.ToLower(key)]
}

// ParseCommand looks a command up by its String name.
func ParseCommand(name string) (Command, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for c, n := range commandNames {
		if n == name && Command(c) != None {
			return Command(c), true
		}
	}
	return None, false
}

// VolumeStep is one of nine master volume steps.
const VolumeStep = 1.0 / 9

// Mixer is the audio output behind the volume and drone commands.
type Mixer interface {
	Volume() float64
	SetVolume(v float64)
	Ambient() bool
	SetAmbient(on bool)
	Binaural() bool
	SetBinaural(on bool)
}

// Manual applies commands at the last known pointer position. Audio may be
// nil, in which case the audio commands do nothing.
type Manual struct {
	Engine *sim.Engine
	Audio  Mixer
	X, Y   float64

	performance bool
	indicator   bool
	trails      bool
}

func NewManual(e *sim.Engine) *Manual {
	w, h := e.Size()
	return &Manual{
		Engine:      e,
		X:           float64(w) / 2,
		Y:           float64(h) / 2,
		performance: e.Performance(),
		indicator:   e.Pipeline().Indicator(),
		trails:      e.Pipeline().Trails(),
	}
}

// Point records where positional commands land.
func (m *Manual) Point(x, y float64) {
	m.X, m.Y = x, y
}

// Apply runs c on the engine and reports whether it was an engine command.
func (m *Manual) Apply(c Command) bool {
	e := m.Engine
	switch c {
	case Attract:
		e.SetMode(field.Attract)
	case Repel:
		e.SetMode(field.Repel)
	case Swirl:
		e.SetMode(field.Swirl)
	case CycleMode:
		e.SetMode(e.Mode().Next())
	case Burst:
		e.Burst(m.X, m.Y, 0)
	case Wave:
		e.StartWave(m.X, m.Y)
	case Boost:
		e.Boost()
	case Chaos:
		e.StartChaos(m.X, m.Y)
	case TogglePerformance:
		m.performance = !m.performance
		e.SetPerformance(m.performance)
	case ToggleIndicator:
		m.indicator = !m.indicator
		e.SetIndicator(m.indicator)
	case CyclePalette:
		e.CyclePalette()
	case ToggleTrails:
		m.trails = !m.trails
		e.SetTrails(m.trails)
	case VolumeUp, VolumeDown, ToggleAmbient, ToggleBinaural:
		m.audio(c)
	default:
		return false
	}
	return true
}

func (m *Manual) audio(c Command) {
	a := m.Audio
	if a == nil {
		return
	}
	switch c {
	case VolumeUp:
		a.SetVolume(a.Volume() + VolumeStep)
	case VolumeDown:
		a.SetVolume(a.Volume() - VolumeStep)
	case ToggleAmbient:
		a.SetAmbient(!a.Ambient())
	case ToggleBinaural:
		a.SetBinaural(!a.Binaural())
	}
}

// UserPerformance is the user's performance toggle, as opposed to the
// tier the engine ended up in.
func (m *Manual) UserPerformance() bool { return m.performance }
