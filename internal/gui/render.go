package gui

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/glowfield/internal/render"
)

// Surface draws into the current raylib frame. It supports the glow tier:
// raylib has a true additive blend and radial circle gradients.
type Surface struct{}

func (Surface) Size() (int, int) { return rl.GetScreenWidth(), rl.GetScreenHeight() }

func (Surface) Clear(c render.Color) { rl.ClearBackground(color(c)) }

func (Surface) FillCircle(x, y, r float64, c render.Color) {
	rl.DrawCircleV(rl.NewVector2(float32(x), float32(y)), float32(r), color(c))
}

func (Surface) StrokeCircle(x, y, r, width float64, c render.Color) {
	half := width / 2
	rl.DrawRing(
		rl.NewVector2(float32(x), float32(y)),
		float32(math.Max(0, r-half)), float32(r+half),
		0, 360, 48, color(c),
	)
}

func (Surface) FillGradient(g *render.Gradient) {
	rl.ClearBackground(color(g.Outer))
	rl.DrawCircleGradient(int32(g.CX), int32(g.CY), float32(g.Radius), color(g.Inner), color(g.Outer))
}

func (Surface) GlowCircle(x, y, r float64, c render.Color) {
	rl.DrawCircleGradient(int32(x), int32(y), float32(r), color(c), color(c.WithAlpha(0)))
}

func (Surface) BeginAdditive() { rl.BeginBlendMode(rl.BlendAdditive) }
func (Surface) EndAdditive()   { rl.EndBlendMode() }

func color(c render.Color) rl.Color {
	n := c.NRGBA()
	return rl.NewColor(n.R, n.G, n.B, n.A)
}

// DrawTelemetry plots values as a line strip inside the given box.
func DrawTelemetry(values []float64, x, y, width, height int, col rl.Color) {
	if len(values) < 2 {
		return
	}

	minVal, maxVal := values[0], values[0]
	for _, v := range values {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(values))
	for i, val := range values {
		px := float32(x) + (float32(i)/float32(len(values)-1))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(y+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}
	rl.DrawLineStrip(points, col)
}
