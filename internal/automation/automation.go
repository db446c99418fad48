package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/glowfield/internal/config"
	"github.com/san-kum/glowfield/internal/control"
	"github.com/san-kum/glowfield/internal/field"
	"github.com/san-kum/glowfield/internal/sim"
)

var (
	ErrUnknownCommand = errors.New("automation: unknown command")
	ErrUnknownParam   = errors.New("automation: unknown sweep parameter")
)

// Scenario is a scripted sequence of inputs played against an engine.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// Point is a position in normalized [0, 1] viewport coordinates.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// ScenarioStep applies its inputs once and then runs the engine for
// Duration.
type ScenarioStep struct {
	Duration time.Duration `yaml:"duration"`
	Mode     string        `yaml:"mode"`
	Palette  string        `yaml:"palette"`
	Anchor   *Point        `yaml:"anchor"`
	Release  bool          `yaml:"release"`
	At       *Point        `yaml:"at"`
	Commands []string      `yaml:"commands"`
}

// StepResult summarizes the field over one step.
type StepResult struct {
	Ticks      int
	MeanEnergy float64
	PeakEnergy float64
	Particles  int
	Mode       field.Mode
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// Validate checks names before anything runs, so a typo fails fast.
func (s *Scenario) Validate() error {
	for i, step := range s.Steps {
		if step.Mode != "" {
			if _, err := field.ParseMode(step.Mode); err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
		}
		for _, name := range step.Commands {
			if _, ok := control.ParseCommand(name); !ok {
				return fmt.Errorf("step %d: %w: %q", i+1, ErrUnknownCommand, name)
			}
		}
	}
	return nil
}

// Length is the scenario's total running time.
func (s *Scenario) Length() time.Duration {
	var d time.Duration
	for _, step := range s.Steps {
		d += step.Duration
	}
	return d
}

// RunScenario plays every step at a fixed dt. each, when set, runs after
// every tick and may stop the scenario by returning an error.
func RunScenario(ctx context.Context, e *sim.Engine, scenario *Scenario, dt time.Duration, each func() error) ([]StepResult, error) {
	if dt <= 0 {
		dt = e.Config().FrameInterval()
	}
	manual := control.NewManual(e)
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		if err := apply(e, manual, step); err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		var res StepResult
		for elapsed := time.Duration(0); elapsed < step.Duration; elapsed += dt {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			e.Tick(dt)
			stats := e.Snapshot()
			res.Ticks++
			res.MeanEnergy += stats.Energy
			res.PeakEnergy = max(res.PeakEnergy, stats.Energy)
			if each != nil {
				if err := each(); err != nil {
					return results, err
				}
			}
		}
		if res.Ticks > 0 {
			res.MeanEnergy /= float64(res.Ticks)
		}
		res.Particles = e.Store().Len()
		res.Mode = e.Mode()
		results = append(results, res)
	}

	return results, nil
}

func apply(e *sim.Engine, manual *control.Manual, step ScenarioStep) error {
	w, h := e.Size()
	if step.Palette != "" {
		if err := e.SetPalette(step.Palette); err != nil {
			return err
		}
	}
	if step.Mode != "" {
		m, err := field.ParseMode(step.Mode)
		if err != nil {
			return err
		}
		e.SetMode(m)
	}
	if step.Anchor != nil {
		e.SetAnchor(step.Anchor.X*float64(w), step.Anchor.Y*float64(h), true)
	}
	if step.Release {
		x, y := e.State().AnchorX, e.State().AnchorY
		e.SetAnchor(x, y, false)
	}

	at := Point{X: 0.5, Y: 0.5}
	if step.At != nil {
		at = *step.At
	}
	manual.Point(at.X*float64(w), at.Y*float64(h))
	for _, name := range step.Commands {
		c, ok := control.ParseCommand(name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
		}
		manual.Apply(c)
	}
	return nil
}

// ParameterSweep runs one fresh engine per value of a field parameter,
// with the anchor held at the centre.
type ParameterSweep struct {
	Param    string
	Min      float64
	Max      float64
	NumSteps int
	Duration time.Duration
}

type SweepResult struct {
	Value      float64
	MeanEnergy float64
	PeakEnergy float64
	MeanSpeed  float64
}

var sweepParams = map[string]func(c *config.Config, v float64){
	"strength":    func(c *config.Config, v float64) { c.Field.Strength = v },
	"radius":      func(c *config.Config, v float64) { c.Field.Radius = v },
	"particles":   func(c *config.Config, v float64) { c.Particles.Count = int(v) },
	"sensitivity": func(c *config.Config, v float64) { c.Gesture.Sensitivity = v },
}

// SweepParams lists the parameters RunSweep accepts.
func SweepParams() []string {
	return []string{"particles", "radius", "sensitivity", "strength"}
}

func RunSweep(ctx context.Context, base *config.Config, sweep *ParameterSweep) ([]SweepResult, error) {
	set, ok := sweepParams[sweep.Param]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParam, sweep.Param)
	}
	n := max(sweep.NumSteps, 1)
	step := 0.0
	if n > 1 {
		step = (sweep.Max - sweep.Min) / float64(n-1)
	}
	scenario := &Scenario{Steps: []ScenarioStep{{
		Duration: sweep.Duration,
		Anchor:   &Point{X: 0.5, Y: 0.5},
	}}}

	results := make([]SweepResult, 0, n)
	for i := 0; i < n; i++ {
		value := sweep.Min + float64(i)*step
		cfg := *base
		set(&cfg, value)

		e, err := sim.New(&cfg)
		if err != nil {
			return results, fmt.Errorf("%s=%.4g: %w", sweep.Param, value, err)
		}

		var speed float64
		var ticks int
		steps, err := RunScenario(ctx, e, scenario, 0, func() error {
			speed += e.Snapshot().MeanSpeed
			ticks++
			return nil
		})
		if err != nil {
			return results, err
		}
		if ticks > 0 {
			speed /= float64(ticks)
		}

		results = append(results, SweepResult{
			Value:      value,
			MeanEnergy: steps[0].MeanEnergy,
			PeakEnergy: steps[0].PeakEnergy,
			MeanSpeed:  speed,
		})
	}

	return results, nil
}
