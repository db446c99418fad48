package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/glowfield/internal/render"
)

// SVG is a render.GlowSurface that records a frame as an SVG document.
// Glow gradients are shared between circles of the same colour.
type SVG struct {
	width, height int

	defs  strings.Builder
	body  strings.Builder
	glows map[string]string
	next  int
	open  int
}

func NewSVG(width, height int) *SVG {
	return &SVG{width: width, height: height, glows: make(map[string]string)}
}

func (s *SVG) Size() (int, int) { return s.width, s.height }

// Clear discards everything drawn so far and fills the frame with c.
func (s *SVG) Clear(c render.Color) {
	s.defs.Reset()
	s.body.Reset()
	s.glows = make(map[string]string)
	s.next = 0
	s.open = 0
	s.body.WriteString(fmt.Sprintf(`<rect width="100%%" height="100%%" fill="%s"/>
`, c.Hex()))
}

func (s *SVG) FillCircle(x, y, r float64, c render.Color) {
	s.body.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.2f" fill="%s" fill-opacity="%.3f"/>
`, x, y, r, c.Hex(), c.A))
}

func (s *SVG) StrokeCircle(x, y, r, width float64, c render.Color) {
	s.body.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.2f" fill="none" stroke="%s" stroke-opacity="%.3f" stroke-width="%.1f"/>
`, x, y, r, c.Hex(), c.A, width))
}

func (s *SVG) FillGradient(g *render.Gradient) {
	s.Clear(g.Outer)
	id := s.id("bg")
	s.defs.WriteString(fmt.Sprintf(`<radialGradient id="%s" gradientUnits="userSpaceOnUse" cx="%.1f" cy="%.1f" r="%.1f">
<stop offset="0" stop-color="%s"/>
<stop offset="1" stop-color="%s"/>
</radialGradient>
`, id, g.CX, g.CY, g.Radius, g.Inner.Hex(), g.Outer.Hex()))
	s.body.WriteString(fmt.Sprintf(`<rect width="100%%" height="100%%" fill="url(#%s)"/>
`, id))
}

func (s *SVG) GlowCircle(x, y, r float64, c render.Color) {
	key := fmt.Sprintf("%s/%.2f", c.Hex(), c.A)
	id, ok := s.glows[key]
	if !ok {
		id = s.id("glow")
		s.glows[key] = id
		s.defs.WriteString(fmt.Sprintf(`<radialGradient id="%s">
<stop offset="0" stop-color="%s" stop-opacity="%.2f"/>
<stop offset="1" stop-color="%s" stop-opacity="0"/>
</radialGradient>
`, id, c.Hex(), c.A, c.Hex()))
	}
	s.body.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.2f" fill="url(#%s)"/>
`, x, y, r, id))
}

func (s *SVG) BeginAdditive() {
	s.body.WriteString(`<g style="mix-blend-mode:plus-lighter">
`)
	s.open++
}

func (s *SVG) EndAdditive() {
	if s.open == 0 {
		return
	}
	s.body.WriteString("</g>\n")
	s.open--
}

// String returns the complete document.
func (s *SVG) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
`, s.width, s.height, s.width, s.height))
	if s.defs.Len() > 0 {
		sb.WriteString("<defs>\n")
		sb.WriteString(s.defs.String())
		sb.WriteString("</defs>\n")
	}
	sb.WriteString(s.body.String())
	for i := 0; i < s.open; i++ {
		sb.WriteString("</g>\n")
	}
	sb.WriteString("</svg>")
	return sb.String()
}

func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.String())
	return int64(n), err
}

func (s *SVG) id(prefix string) string {
	s.next++
	return fmt.Sprintf("%s%d", prefix, s.next)
}
