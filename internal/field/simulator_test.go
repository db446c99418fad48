package field

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/glowfield/internal/particle"
	"github.com/san-kum/glowfield/internal/spatial"
)

func single(x, y float64) *particle.Store {
	s := particle.NewStore(800, 600, 1)
	s.Create(1, func(int, int, *rand.Rand, float64, float64) particle.Particle {
		return particle.Particle{
			X: x, Y: y, BaseRadius: 2, Radius: 2,
			Friction: particle.DefaultFriction, MaxSpeed: particle.DefaultMaxSpeed,
		}
	})
	return s
}

func TestApplyForce_Modes(t *testing.T) {
	anchor := Anchor{X: 150, Y: 100, Radius: 200, Strength: 0.5}
	// n = (1, 0), dist = 50, falloff = 0.75, force = 0.375
	const force = 0.375

	tests := []struct {
		mode   Mode
		wantVX float64
		wantVY float64
	}{
		{Attract, force, 0},
		{Repel, -force * 1.5, 0},
		{Swirl, force * 0.3, force * 0.8},
		{Neutral, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			s := single(100, 100)
			a := anchor
			a.Mode = tt.mode
			NewSimulator(nil).ApplyForce(s, a)

			p := s.At(0)
			if math.Abs(p.VX-tt.wantVX) > 1e-12 || math.Abs(p.VY-tt.wantVY) > 1e-12 {
				t.Errorf("expected v=(%f, %f), got (%f, %f)", tt.wantVX, tt.wantVY, p.VX, p.VY)
			}
		})
	}
}

func TestUpdate_AttractPullsAndRepelPushesHarder(t *testing.T) {
	sim := NewSimulator(nil)
	along := func(mode Mode) float64 {
		s := single(100, 100)
		st := NewState(200, 0.5)
		st.SetMode(mode)
		st.SetAnchor(100, 160, true)
		sim.Update(s, st)
		// unit vector from particle to anchor is (0, 1)
		return s.At(0).VY
	}

	pull := along(Attract)
	push := along(Repel)
	if pull <= 0 {
		t.Errorf("attract should increase velocity toward anchor, got %f", pull)
	}
	if push >= 0 {
		t.Errorf("repel should decrease velocity toward anchor, got %f", push)
	}
	if math.Abs(math.Abs(push)-1.5*pull) > 1e-12 {
		t.Errorf("expected repel magnitude 1.5x attract: %f vs %f", push, pull)
	}
}

func TestApplyForce_SwirlIsMostlyTangential(t *testing.T) {
	s := single(300, 300)
	a := Anchor{X: 300, Y: 200, Mode: Swirl, Radius: 200, Strength: 1}
	NewSimulator(nil).ApplyForce(s, a)

	p := s.At(0)
	// n = (0, -1), perpendicular = (1, 0)
	tangential := p.VX
	radial := -p.VY
	if tangential <= 0 || radial <= 0 {
		t.Fatalf("expected inward spiral, got tangential=%f radial=%f", tangential, radial)
	}
	if tangential <= radial {
		t.Errorf("tangential %f should exceed radial %f", tangential, radial)
	}
	if math.Abs(radial/tangential-0.3/0.8) > 1e-12 {
		t.Errorf("expected radial/tangential ratio %f, got %f", 0.3/0.8, radial/tangential)
	}
}

func TestApplyForce_Degenerate(t *testing.T) {
	tests := []struct {
		name   string
		px, py float64
	}{
		{"coincident", 400, 300},
		{"on boundary", 600, 300},
		{"outside", 1000, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := single(tt.px, tt.py)
			n, _ := NewSimulator(nil).ApplyForce(s, Anchor{X: 400, Y: 300, Mode: Attract, Radius: 200, Strength: 1})
			p := s.At(0)
			if n != 0 || p.VX != 0 || p.VY != 0 {
				t.Errorf("expected no force, got n=%d v=(%f, %f)", n, p.VX, p.VY)
			}
			if math.IsNaN(p.VX) || math.IsNaN(p.VY) {
				t.Error("NaN velocity")
			}
		})
	}
}

func TestApplyForce_Touching(t *testing.T) {
	tests := []struct {
		name         string
		px           float64
		mode         Mode
		wantAffected int
		wantTouching int
	}{
		{"inside touch radius", 370, Attract, 1, 1},
		{"coincident", 400, Repel, 0, 1},
		{"inside radius only", 300, Attract, 1, 0},
		{"neutral anchor", 390, Neutral, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := single(tt.px, 300)
			a := Anchor{X: 400, Y: 300, Mode: tt.mode, Radius: 200, Strength: 1}
			affected, touching := NewSimulator(nil).ApplyForce(s, a)
			if affected != tt.wantAffected || touching != tt.wantTouching {
				t.Errorf("got affected=%d touching=%d, want %d %d", affected, touching, tt.wantAffected, tt.wantTouching)
			}
		})
	}
}

func TestUpdate_InactiveAnchorOnlyIntegrates(t *testing.T) {
	s := single(100, 100)
	s.At(0).VX = 2
	st := NewState(200, 0.5)
	st.SetAnchor(110, 100, false)

	if n, _ := NewSimulator(nil).Update(s, st); n != 0 {
		t.Errorf("expected no affected particles, got %d", n)
	}
	p := s.At(0)
	if p.X != 102 {
		t.Errorf("expected x=102, got %f", p.X)
	}
	if math.Abs(p.VX-2*particle.DefaultFriction) > 1e-12 {
		t.Errorf("expected friction only, got vx=%f", p.VX)
	}
}

func TestIntegrate_Wrap(t *testing.T) {
	tests := []struct {
		name         string
		x, y, vx, vy float64
		wantX, wantY float64
	}{
		{"left", -15, 300, -6, 0, 820, 300},
		{"right", 818, 300, 3, 0, -20, 300},
		{"top", 400, -19, 0, -2, 400, 620},
		{"bottom", 400, 619, 0, 2, 400, -20},
		{"inside margin", -19, 300, -0.5, 0, -19.5, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := single(tt.x, tt.y)
			p := s.At(0)
			p.VX, p.VY = tt.vx, tt.vy
			NewSimulator(nil).Integrate(s)
			if p.X != tt.wantX || p.Y != tt.wantY {
				t.Errorf("expected (%f, %f), got (%f, %f)", tt.wantX, tt.wantY, p.X, p.Y)
			}
		})
	}
}

func TestInvariants_ManyTicks(t *testing.T) {
	s := particle.NewStore(800, 600, 42)
	s.Create(400, particle.SpreadHue)
	grid := spatial.New(800, 600, spatial.DefaultCellSize, DefaultWrapMargin)
	sim := NewSimulator(grid)
	st := NewState(250, 3)
	rng := rand.New(rand.NewSource(9))

	for tick := 0; tick < 300; tick++ {
		if tick%20 == 0 {
			st.SetMode(Mode(1 + rng.Intn(3)))
			st.SetAnchor(rng.Float64()*800, rng.Float64()*600, rng.Intn(4) != 0)
		}
		sim.Update(s, st)
		sim.ApplyForce(s, Anchor{X: 400, Y: 300, Mode: Repel, Radius: 150, Strength: 5})

		for i, p := range s.Particles() {
			max2 := p.MaxSpeed * p.MaxSpeed
			// second anchor is applied after integration, so clamp once more
			q := p
			q.ClampSpeed()
			if q.Speed2() > max2*(1+1e-12) {
				t.Fatalf("tick %d particle %d: speed %f exceeds max", tick, i, q.Speed())
			}
			if p.X < -20 || p.X > 820 || p.Y < -20 || p.Y > 620 {
				t.Fatalf("tick %d particle %d escaped: (%f, %f)", tick, i, p.X, p.Y)
			}
			if p.Hue < 0 || p.Hue >= 360 {
				t.Fatalf("tick %d particle %d: hue %f", tick, i, p.Hue)
			}
			if p.Radius < p.BaseRadius {
				t.Fatalf("tick %d particle %d: radius below base", tick, i)
			}
		}
	}
}

func TestSpeedClampAfterUpdate(t *testing.T) {
	s := particle.NewStore(800, 600, 3)
	s.Create(200, particle.SpreadHue)
	sim := NewSimulator(nil)
	st := NewState(400, 50)
	st.SetAnchor(400, 300, true)

	for tick := 0; tick < 50; tick++ {
		sim.Update(s, st)
		for i, p := range s.Particles() {
			if p.Speed2() > p.MaxSpeed*p.MaxSpeed*(1+1e-12) {
				t.Fatalf("tick %d particle %d: speed %f exceeds %f", tick, i, p.Speed(), p.MaxSpeed)
			}
		}
	}
}

func TestScenario_AttractAtCenter(t *testing.T) {
	for _, useGrid := range []bool{false, true} {
		name := "scan"
		if useGrid {
			name = "grid"
		}
		t.Run(name, func(t *testing.T) {
			s := particle.NewStore(800, 600, 17)
			s.Create(300, particle.SpreadHue)
			before := make([]particle.Particle, s.Len())
			copy(before, s.Particles())

			var grid *spatial.Grid
			if useGrid {
				grid = spatial.New(800, 600, spatial.DefaultCellSize, DefaultWrapMargin)
			}
			sim := NewSimulator(grid)
			st := NewState(200, 0.5)
			st.SetMode(Attract)
			st.SetAnchor(400, 300, true)

			inside := 0
			sim.Update(s, st)

			for i, p := range s.Particles() {
				b := before[i]
				dx, dy := 400-b.X, 300-b.Y
				d := math.Hypot(dx, dy)
				f := b.Friction

				if d < 200 && d*d > DefaultEpsilon {
					inside++
					dvx := p.VX/f - b.VX
					dvy := p.VY/f - b.VY
					if dvx*dx+dvy*dy <= 0 {
						t.Errorf("particle %d at %f: impulse not toward center", i, d)
					}
					continue
				}
				if math.Abs(p.VX-b.VX*f) > 1e-12 || math.Abs(p.VY-b.VY*f) > 1e-12 {
					t.Errorf("particle %d at %f: velocity changed beyond friction", i, d)
				}
			}
			if inside == 0 {
				t.Fatal("expected some particles inside the radius")
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"attract", Attract, false},
		{" Repel ", Repel, false},
		{"SWIRL", Swirl, false},
		{"neutral", Neutral, false},
		{"vortex", Neutral, true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q): unexpected error %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}

	if Attract.Next() != Repel || Repel.Next() != Swirl || Swirl.Next() != Attract || Neutral.Next() != Attract {
		t.Error("unexpected mode cycle")
	}
}

func TestState(t *testing.T) {
	st := NewState(0, 0.5)
	if st.Radius != DefaultRadius {
		t.Errorf("expected default radius, got %f", st.Radius)
	}
	if st.SetMode(Attract) {
		t.Error("setting the current mode should report no change")
	}
	if !st.SetMode(Swirl) {
		t.Error("expected mode change")
	}

	for i := 0; i < 1000; i++ {
		st.AdvanceBreath(0.5)
		if st.Breath < 0 || st.Breath > 1 {
			t.Fatalf("breath %f out of [0, 1]", st.Breath)
		}
	}

	st.BreathRate = 10
	st.AdvanceBreath(0.25)
	if st.Breath < 0 || st.Breath > 1 {
		t.Errorf("breath %f out of [0, 1] after large step", st.Breath)
	}
}

func TestIdle(t *testing.T) {
	s := particle.NewStore(800, 600, 8)
	s.Create(100, particle.SpreadHue)
	rng := rand.New(rand.NewSource(1))
	idle := NewIdle(800, 600, rng)

	for i := 0; i < 200; i++ {
		idle.Step(s, rng)
	}

	for _, c := range idle.Centers {
		if c[0] < 80 || c[0] > 720 || c[1] < 60 || c[1] > 540 {
			t.Errorf("attractor drifted out of bounds: %v", c)
		}
	}
	for i, p := range s.Particles() {
		if math.IsNaN(p.VX) || math.IsNaN(p.VY) {
			t.Fatalf("particle %d: NaN velocity", i)
		}
	}
}
