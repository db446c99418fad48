package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/glowfield/internal/config"
	"github.com/san-kum/glowfield/internal/field"
	"github.com/san-kum/glowfield/internal/sim"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Viewport.Width, cfg.Viewport.Height = 400, 300
	cfg.Particles.Count = 50
	return cfg
}

func newEngine(t *testing.T) *sim.Engine {
	t.Helper()
	e, err := sim.New(testConfig())
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return e
}

const demo = `
name: demo
description: swirl then a wave
steps:
  - duration: 100ms
    mode: swirl
    palette: ocean
    anchor: {x: 0.25, y: 0.5}
  - duration: 50ms
    at: {x: 0.5, y: 0.5}
    commands: [burst, wave]
  - duration: 20ms
    release: true
`

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	if err := os.WriteFile(path, []byte(demo), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "demo" || len(s.Steps) != 3 {
		t.Fatalf("scenario = %+v", s)
	}
	if s.Steps[0].Duration != 100*time.Millisecond || s.Steps[0].Anchor.X != 0.25 {
		t.Errorf("step 1 = %+v", s.Steps[0])
	}
	if s.Length() != 170*time.Millisecond {
		t.Errorf("length = %v", s.Length())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		step    ScenarioStep
		wantErr error
	}{
		{"ok", ScenarioStep{Mode: "repel", Commands: []string{"chaos"}}, nil},
		{"bad command", ScenarioStep{Commands: []string{"explode"}}, ErrUnknownCommand},
		{"bad mode", ScenarioStep{Mode: "sideways"}, field.ErrUnknownMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&Scenario{Steps: []ScenarioStep{tt.step}}).Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunScenario(t *testing.T) {
	e := newEngine(t)
	s := &Scenario{Steps: []ScenarioStep{
		{Duration: 100 * time.Millisecond, Mode: "swirl", Palette: "ocean", Anchor: &Point{X: 0.25, Y: 0.5}},
		{Duration: 50 * time.Millisecond, Commands: []string{"burst", "wave"}},
		{Duration: 20 * time.Millisecond, Release: true},
	}}

	calls := 0
	results, err := RunScenario(context.Background(), e, s, 10*time.Millisecond, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}
	if results[0].Ticks != 10 || results[1].Ticks != 5 || results[2].Ticks != 2 || calls != 17 {
		t.Errorf("ticks = %d %d %d, calls = %d", results[0].Ticks, results[1].Ticks, results[2].Ticks, calls)
	}
	if results[0].Mode != field.Swirl || e.Palette() != "ocean" {
		t.Errorf("mode = %v palette = %s", results[0].Mode, e.Palette())
	}
	if results[1].Particles != e.Store().Capacity() {
		t.Errorf("burst left %d particles", results[1].Particles)
	}
	if e.State().Active {
		t.Error("release did not deactivate the anchor")
	}
}

func TestRunScenario_Cancelled(t *testing.T) {
	e := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scenario{Steps: []ScenarioStep{{Duration: time.Second}}}

	ticks := 0
	_, err := RunScenario(ctx, e, s, 10*time.Millisecond, func() error {
		ticks++
		if ticks == 3 {
			cancel()
		}
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
	if ticks != 3 {
		t.Errorf("ran %d ticks after cancel", ticks)
	}
}

func TestRunScenario_BadPalette(t *testing.T) {
	e := newEngine(t)
	s := &Scenario{Steps: []ScenarioStep{{Duration: 10 * time.Millisecond, Palette: "plaid"}}}
	if _, err := RunScenario(context.Background(), e, s, 0, nil); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("err = %v", err)
	}
}

func TestRunSweep(t *testing.T) {
	sweep := &ParameterSweep{
		Param:    "strength",
		Min:      0,
		Max:      2,
		NumSteps: 3,
		Duration: 50 * time.Millisecond,
	}
	results, err := RunSweep(context.Background(), testConfig(), sweep)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}
	for i, want := range []float64{0, 1, 2} {
		if results[i].Value != want {
			t.Errorf("value[%d] = %v, want %v", i, results[i].Value, want)
		}
		if results[i].MeanSpeed < 0 || results[i].PeakEnergy < 0 {
			t.Errorf("result[%d] = %+v", i, results[i])
		}
	}
}

func TestRunSweep_UnknownParam(t *testing.T) {
	_, err := RunSweep(context.Background(), testConfig(), &ParameterSweep{Param: "gravity", NumSteps: 2})
	if !errors.Is(err, ErrUnknownParam) {
		t.Errorf("err = %v", err)
	}
}
