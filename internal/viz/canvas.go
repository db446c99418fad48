package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/glowfield/internal/render"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

const (
	// minAlpha is the faintest colour that still lights a dot.
	minAlpha = 0.15
	// minDot keeps sub-dot circles from falling between dot centres.
	minDot = 0.75
)

// Canvas is a braille render.Surface. It reports the world size it was
// fitted to and scales every draw down to (Width*2) x (Height*4) dots. It
// has no glow support, so the pipeline always paints it in performance tier.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Colors        [][]render.Color

	worldW, worldH int
	sx, sy         float64
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{}
	c.Resize(w, h)
	c.Fit(w*2, h*4)
	return c
}

// Resize changes the cell grid and clears it.
func (c *Canvas) Resize(w, h int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	c.Width, c.Height = w, h
	c.Grid = make([][]rune, h)
	c.Colors = make([][]render.Color, h)
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Colors[i] = make([]render.Color, w)
	}
	c.clear()
	c.Fit(c.worldW, c.worldH)
}

// Fit sets the world size that maps onto the full canvas.
func (c *Canvas) Fit(worldW, worldH int) {
	if worldW < 1 || worldH < 1 {
		worldW, worldH = c.Width*2, c.Height*4
	}
	c.worldW, c.worldH = worldW, worldH
	c.sx = float64(c.Width*2) / float64(worldW)
	c.sy = float64(c.Height*4) / float64(worldH)
}

func (c *Canvas) Size() (int, int) { return c.worldW, c.worldH }

// World maps the centre of cell (col, row) back to world coordinates.
func (c *Canvas) World(col, row int) (float64, float64) {
	return (float64(col) + 0.5) * 2 / c.sx, (float64(row) + 0.5) * 4 / c.sy
}

// Clear blanks every cell. Terminal cells keep their own background, so the
// colour is not painted.
func (c *Canvas) Clear(render.Color) { c.clear() }

func (c *Canvas) clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Colors[i][j] = render.Color{}
		}
	}
}

func (c *Canvas) FillCircle(x, y, r float64, col render.Color) {
	if col.A < minAlpha {
		return
	}
	cx, cy := x*c.sx, y*c.sy
	rx, ry := math.Max(r*c.sx, minDot), math.Max(r*c.sy, minDot)
	for py := int(math.Floor(cy - ry)); py <= int(math.Ceil(cy+ry)); py++ {
		for px := int(math.Floor(cx - rx)); px <= int(math.Ceil(cx+rx)); px++ {
			dx := (float64(px) + 0.5 - cx) / rx
			dy := (float64(py) + 0.5 - cy) / ry
			if dx*dx+dy*dy <= 1 {
				c.paint(px, py, col)
			}
		}
	}
}

func (c *Canvas) StrokeCircle(x, y, r, width float64, col render.Color) {
	if col.A < minAlpha {
		return
	}
	cx, cy := x*c.sx, y*c.sy
	rx, ry := r*c.sx, r*c.sy
	steps := int(math.Max(12, 2*math.Pi*math.Max(rx, ry)))
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		c.paint(int(math.Round(cx+rx*math.Cos(a))), int(math.Round(cy+ry*math.Sin(a))), col)
	}
}

func (c *Canvas) paint(x, y int, col render.Color) {
	if c.Set(x, y) {
		c.Colors[y/4][x/2] = col
	}
}

// Set lights the dot at sub-pixel (x, y) and reports whether it was on the
// canvas.
func (c *Canvas) Set(x, y int) bool {
	if x < 0 || y < 0 {
		return false
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return false
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	return true
}

// Unset clears a pixel
func (c *Canvas) Unset(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] &^= rune(pixelMap[y%4][x%2])
	if c.Grid[row][col] < blank {
		c.Grid[row][col] = blank
	}
}

// Lit counts the dots that are on.
func (c *Canvas) Lit() int {
	n := 0
	for _, row := range c.Grid {
		for _, r := range row {
			for bits := r - blank; bits != 0; bits &= bits - 1 {
				n++
			}
		}
	}
	return n
}

// String renders the grid without colour.
func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render colours each run of cells that share a colour.
func (c *Canvas) Render() string {
	var b strings.Builder
	for i, row := range c.Grid {
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && c.Colors[i][j] == c.Colors[i][start] {
				continue
			}
			run := string(row[start:j])
			if c.Colors[i][start].A == 0 {
				b.WriteString(run)
			} else {
				fg := lipgloss.Color(c.Colors[i][start].Hex())
				b.WriteString(lipgloss.NewStyle().Foreground(fg).Render(run))
			}
			start = j
		}
		b.WriteByte('\n')
	}
	return b.String()
}
