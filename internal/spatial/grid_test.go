package spatial

import (
	"math"
	"testing"

	"github.com/san-kum/glowfield/internal/particle"
)

func TestQueryFindsAllWithinRadius(t *testing.T) {
	s := particle.NewStore(800, 600, 11)
	s.Create(500, particle.SpreadHue)

	g := New(800, 600, DefaultCellSize, 20)
	g.Rebuild(s.Particles())

	tests := []struct {
		name    string
		x, y, r float64
	}{
		{"center", 400, 300, 120},
		{"corner", 0, 0, 80},
		{"outside", -500, 900, 100},
		{"large", 400, 300, 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen := make(map[int]bool)
			g.Query(tt.x, tt.y, tt.r, func(i int) {
				if seen[i] {
					t.Errorf("index %d visited twice", i)
				}
				seen[i] = true
			})

			for i, p := range s.Particles() {
				d := math.Hypot(p.X-tt.x, p.Y-tt.y)
				if d < tt.r && !seen[i] {
					t.Errorf("particle %d at distance %f missed", i, d)
				}
			}
		})
	}
}

func TestQueryClampsOutOfBounds(t *testing.T) {
	ps := []particle.Particle{{X: -30, Y: -30}, {X: 5000, Y: 5000}}
	g := New(100, 100, 50, 20)
	g.Rebuild(ps)

	count := 0
	g.Query(50, 50, 1000, func(int) { count++ })
	if count != 2 {
		t.Errorf("expected 2 candidates, got %d", count)
	}
}

func TestResize(t *testing.T) {
	g := New(100, 100, 50, 0)
	if c, r := g.Dims(); c != 2 || r != 2 {
		t.Errorf("expected 2x2 cells, got %dx%d", c, r)
	}

	g.Resize(260, 100)
	if c, r := g.Dims(); c != 6 || r != 2 {
		t.Errorf("expected 6x2 cells, got %dx%d", c, r)
	}

	count := 0
	g.Query(50, 50, 100, func(int) { count++ })
	if count != 0 {
		t.Errorf("expected empty grid after resize, got %d", count)
	}
}

func TestSync(t *testing.T) {
	s := particle.NewStore(200, 200, 5)
	s.Create(20, particle.SpreadHue)
	g := New(200, 200, 50, 20)

	count := func() int {
		n := 0
		g.Query(100, 100, 1000, func(int) { n++ })
		return n
	}

	g.Sync(s)
	if n := count(); n != 20 {
		t.Fatalf("expected 20 after sync, got %d", n)
	}

	s.Push(particle.Particle{X: 10, Y: 10}, 0)
	g.Sync(s)
	if n := count(); n != 21 {
		t.Errorf("expected 21 after push, got %d", n)
	}
}
