// Package raster renders frames off-screen with gogpu/gg, for snapshots,
// captures and benchmarks.
package raster

import (
	"image"
	"io"

	"github.com/gogpu/gg"

	"github.com/san-kum/glowfield/internal/render"
)

// Canvas is a render.GlowSurface backed by a gg context. The glow pass is
// composited through a Screen layer, the lightening blend gg provides.
type Canvas struct {
	dc     *gg.Context
	layers int
}

func New(width, height int) *Canvas {
	return &Canvas{dc: gg.NewContext(width, height)}
}

func (c *Canvas) Size() (int, int) { return c.dc.Width(), c.dc.Height() }

func (c *Canvas) Clear(col render.Color) {
	c.dc.ClearWithColor(rgba(col))
}

func (c *Canvas) FillCircle(x, y, r float64, col render.Color) {
	c.dc.SetRGBA(col.R, col.G, col.B, col.A)
	c.dc.DrawCircle(x, y, r)
	check("fill", c.dc.Fill())
}

func (c *Canvas) StrokeCircle(x, y, r, width float64, col render.Color) {
	c.dc.SetRGBA(col.R, col.G, col.B, col.A)
	c.dc.SetLineWidth(width)
	c.dc.DrawCircle(x, y, r)
	check("stroke", c.dc.Stroke())
}

func (c *Canvas) FillGradient(g *render.Gradient) {
	brush := gg.NewRadialGradientBrush(g.CX, g.CY, 0, g.Radius).
		AddColorStop(0, rgba(g.Inner)).
		AddColorStop(1, rgba(g.Outer))
	c.dc.SetFillBrush(brush)
	w, h := c.Size()
	c.dc.DrawRectangle(0, 0, float64(w), float64(h))
	check("fill", c.dc.Fill())
}

func (c *Canvas) GlowCircle(x, y, r float64, col render.Color) {
	if r <= 0 {
		return
	}
	edge := col
	edge.A = 0
	brush := gg.NewRadialGradientBrush(x, y, 0, r).
		AddColorStop(0, rgba(col)).
		AddColorStop(1, rgba(edge))
	c.dc.SetFillBrush(brush)
	c.dc.DrawCircle(x, y, r)
	check("fill", c.dc.Fill())
}

func (c *Canvas) BeginAdditive() {
	c.dc.PushLayer(gg.BlendScreen, 1)
	c.layers++
}

func (c *Canvas) EndAdditive() {
	if c.layers == 0 {
		return
	}
	c.dc.PopLayer()
	c.layers--
}

func (c *Canvas) Image() image.Image { return c.dc.Image() }

func (c *Canvas) SavePNG(path string) error { return c.dc.SavePNG(path) }

func (c *Canvas) EncodePNG(w io.Writer) error { return c.dc.EncodePNG(w) }

// Resize reallocates the backing pixmap; contents are discarded.
func (c *Canvas) Resize(width, height int) error {
	for c.layers > 0 {
		c.EndAdditive()
	}
	return c.dc.Resize(width, height)
}

func (c *Canvas) Close() error { return c.dc.Close() }

func rgba(col render.Color) gg.RGBA {
	return gg.RGBA{R: col.R, G: col.G, B: col.B, A: col.A}
}
