package render

import (
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is straight (non-premultiplied) RGBA with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

var White = Color{1, 1, 1, 1}

// HSLA builds a colour from hue in degrees and s, l, a in [0, 1].
func HSLA(h, s, l, a float64) Color {
	c := colorful.Hsl(h, clamp01(s), clamp01(l)).Clamped()
	return Color{c.R, c.G, c.B, clamp01(a)}
}

// Hex parses #rrggbb; malformed input yields opaque white.
func Hex(s string) Color {
	c, err := colorful.Hex(s)
	if err != nil {
		return White
	}
	return Color{c.R, c.G, c.B, 1}
}

func RGB8(r, g, b uint8) Color {
	return Color{float64(r) / 255, float64(g) / 255, float64(b) / 255, 1}
}

func (c Color) WithAlpha(a float64) Color {
	c.A = clamp01(a)
	return c
}

// Brighten adds d to each channel, saturating at 1.
func (c Color) Brighten(d float64) Color {
	return Color{clamp01(c.R + d), clamp01(c.G + d), clamp01(c.B + d), c.A}
}

// Lerp blends toward o by t in [0, 1] in RGB space.
func (c Color) Lerp(o Color, t float64) Color {
	a := colorful.Color{R: c.R, G: c.G, B: c.B}
	b := colorful.Color{R: o.R, G: o.G, B: o.B}
	m := a.BlendRgb(b, clamp01(t))
	return Color{m.R, m.G, m.B, c.A + (o.A-c.A)*clamp01(t)}
}

func (c Color) Hex() string {
	return colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped().Hex()
}

func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: uint8(math.Round(clamp01(c.R) * 255)),
		G: uint8(math.Round(clamp01(c.G) * 255)),
		B: uint8(math.Round(clamp01(c.B) * 255)),
		A: uint8(math.Round(clamp01(c.A) * 255)),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
