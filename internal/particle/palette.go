package particle

import (
	"math/rand"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Swatch is an HSV base colour: hue in degrees, saturation and value in [0, 1].
type Swatch struct {
	H, S, V float64
}

type Palette struct {
	Name     string
	Swatches []Swatch
}

var Palettes = map[string]Palette{
	"default": {Name: "default", Swatches: []Swatch{
		{330, 1.0, 1.0},
		{190, 1.0, 0.83},
		{43, 1.0, 1.0},
		{265, 0.77, 0.93},
		{158, 0.97, 1.0},
	}},
	"sunset": {Name: "sunset", Swatches: []Swatch{
		{15, 1.0, 1.0},
		{35, 1.0, 1.0},
		{50, 0.9, 1.0},
		{340, 0.8, 0.9},
		{280, 0.6, 0.8},
	}},
	"ocean": {Name: "ocean", Swatches: []Swatch{
		{200, 1.0, 0.9},
		{180, 0.8, 1.0},
		{160, 0.9, 0.8},
		{220, 0.7, 0.6},
		{190, 0.5, 1.0},
	}},
	"aurora": {Name: "aurora", Swatches: []Swatch{
		{120, 1.0, 0.9},
		{160, 0.9, 1.0},
		{280, 0.8, 0.9},
		{200, 0.7, 1.0},
		{80, 0.6, 1.0},
	}},
	"monochrome": {Name: "monochrome", Swatches: []Swatch{
		{0, 0.0, 1.0},
		{0, 0.0, 0.8},
		{0, 0.0, 0.6},
		{0, 0.0, 0.9},
		{0, 0.0, 0.7},
	}},
}

func GetPalette(name string) (Palette, bool) {
	p, ok := Palettes[name]
	return p, ok
}

func ListPalettes() []string {
	names := make([]string, 0, len(Palettes))
	for name := range Palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NextPalette cycles through ListPalettes order.
func NextPalette(current string) string {
	names := ListPalettes()
	for i, n := range names {
		if n == current {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}

// Pick returns a randomly chosen swatch with ±15° hue jitter and a slight
// saturation/value fade.
func (p Palette) Pick(rng *rand.Rand) Swatch {
	if len(p.Swatches) == 0 {
		return Swatch{H: rng.Float64() * 360, S: 1, V: 1}
	}
	sw := p.Swatches[rng.Intn(len(p.Swatches))]
	return Swatch{
		H: WrapHue(sw.H + (rng.Float64()*30 - 15)),
		S: sw.S * (0.8 + rng.Float64()*0.2),
		V: sw.V * (0.8 + rng.Float64()*0.2),
	}
}

// Apply converts the swatch to HSL percentages and writes it onto p.
func (sw Swatch) Apply(p *Particle) {
	h, s, l := colorful.Hsv(sw.H, sw.S, sw.V).Hsl()
	p.Hue = WrapHue(h)
	p.Saturation = s * 100
	p.Lightness = l * 100
}

// FromPalette spawns at a random position with a colour drawn from pal.
func FromPalette(pal Palette) SpawnRule {
	return func(i, count int, rng *rand.Rand, w, h float64) Particle {
		p := NewParticle(rng.Float64()*w, rng.Float64()*h, 0, rng)
		pal.Pick(rng).Apply(&p)
		return p
	}
}
