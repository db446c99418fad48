package sim

import (
	"context"
	"time"

	"github.com/san-kum/glowfield/internal/cue"
	"github.com/san-kum/glowfield/internal/field"
	"github.com/san-kum/glowfield/internal/metrics"
	"github.com/san-kum/glowfield/internal/render"
)

type Stats struct {
	Particles   int
	Capacity    int
	MeanSpeed   float64
	Energy      float64
	FPS         float64
	Tier        render.Tier
	Mode        field.Mode
	Palette     string
	Performance bool
	Idle        bool
	Hands       int
	Elapsed     time.Duration
	Ticks       uint64
	Metrics     map[string]float64
}

// Tick advances the field by one frame. dt is the wall-clock time since
// the previous tick; it only drives the clocks, and is clamped to
// MaxFrameDelta before it does.
func (e *Engine) Tick(dt time.Duration) {
	raw := dt
	if dt < 0 {
		dt = 0
	}
	if dt > MaxFrameDelta {
		dt = MaxFrameDelta
	}
	secs := dt.Seconds()
	e.elapsed += dt
	e.ticks++

	e.state.AdvanceBreath(secs)
	e.trackFrameRate(raw)
	e.trackIdle(dt)

	for _, b := range e.bursts {
		e.injector.SpawnBurst(b.x, b.y, b.count)
	}
	e.bursts = e.bursts[:0]

	if e.boost {
		e.injector.EnergyBoost()
		e.boost = false
	}
	if e.flow != nil {
		e.injector.Flow(e.flow[0], e.flow[1], e.mapper.FlowStrength)
		e.flow = nil
	}
	if e.wave != nil {
		e.injector.Wave(e.wave.x, e.wave.y, e.wave.phase)
		e.wave.phase += e.WaveSpeed * secs
		if e.wave.remaining -= dt; e.wave.remaining <= 0 {
			e.wave = nil
		}
	}
	if e.chaos != nil {
		e.injector.Chaos(e.chaos.x, e.chaos.y)
		if e.chaos.remaining -= dt; e.chaos.remaining <= 0 {
			e.chaos = nil
		}
	}

	switch {
	case len(e.hands) > 0:
		e.contact(e.applyHands())
		e.field.Integrate(e.store)
	case e.idling && !e.state.Active:
		e.idle.Step(e.store, e.store.Rand())
		e.field.Integrate(e.store)
	default:
		_, touching := e.field.Update(e.store, e.state)
		e.contact(touching)
	}

	for _, m := range e.metrics {
		m.Observe(e.store)
	}
	if len(e.observers) > 0 {
		s := e.Snapshot()
		for _, o := range e.observers {
			o.OnTick(s)
		}
	}
}

// applyHands runs one force pass per resolved hand anchor and returns how
// many particles ended up touching one.
func (e *Engine) applyHands() int {
	w, h := e.store.Bounds()
	hands := e.smoother.Smooth(e.hands)
	f := e.mapper.Map(hands, w, h, e.elapsed)
	if f.Exit && !e.exit {
		e.exit = true
		e.log.Info("exit gesture held")
	}
	e.handAnchors = append(e.handAnchors[:0], f.Anchors...)

	for _, b := range f.Bursts {
		e.injector.SpawnBurst(b.X, b.Y, e.cfg.Effects.BurstCount)
	}
	if f.Flowing {
		e.injector.Flow(f.FlowX, f.FlowY, f.FlowGain)
	}
	if f.Merged {
		e.cues.Play(cue.Resonant)
	}

	touching := 0
	for _, a := range f.Anchors {
		_, n := e.field.ApplyForce(e.store, a)
		touching += n
	}
	return touching
}

// contact plays the soft pop when particles reach an anchor, at most once
// per SoftPopCooldown of engine time.
func (e *Engine) contact(touching int) {
	if touching == 0 {
		return
	}
	if e.popped && e.elapsed-e.lastPop < SoftPopCooldown {
		return
	}
	e.popped = true
	e.lastPop = e.elapsed
	e.cues.Play(cue.SoftPop)
}

func (e *Engine) trackFrameRate(raw time.Duration) {
	if raw <= 0 {
		return
	}
	e.frames.Observe(raw)
	if !e.cfg.Render.Adaptive {
		return
	}
	switch e.frames.Track(raw, e.cfg.Render.LowFPS, e.cfg.Render.HighFPS, e.cfg.Render.Hold) {
	case -1:
		if !e.autoPerf {
			e.autoPerf = true
			e.log.Info("frame rate low, switching to performance tier", "fps", e.frames.FPS())
		}
	case 1:
		if e.autoPerf {
			e.autoPerf = false
			e.log.Info("frame rate recovered, switching to quality tier", "fps", e.frames.FPS())
		}
	}
	e.applyPerformance()
}

func (e *Engine) trackIdle(dt time.Duration) {
	after := e.cfg.Effects.IdleAfter
	if after <= 0 || e.state.Active || len(e.hands) > 0 {
		e.sinceInput = 0
		return
	}
	e.sinceInput += dt
	if !e.idling && e.sinceInput >= after {
		e.idling = true
		e.log.Debug("idle started", "after", after)
	}
}

// Render paints the current frame onto s.
func (e *Engine) Render(s render.Surface) render.Tier {
	e.lastTier = e.pipeline.Render(s, e.store, e.state, e.handAnchors...)
	return e.lastTier
}

func (e *Engine) Snapshot() Stats {
	s := Stats{
		Particles:   e.store.Len(),
		Capacity:    e.store.Capacity(),
		MeanSpeed:   metrics.MeanSpeed(e.store),
		Energy:      metrics.KineticEnergy(e.store),
		FPS:         e.frames.FPS(),
		Tier:        e.lastTier,
		Mode:        e.state.Mode,
		Palette:     e.palette,
		Performance: e.pipeline.Performance(),
		Idle:        e.idling,
		Hands:       len(e.hands),
		Elapsed:     e.elapsed,
		Ticks:       e.ticks,
	}
	if len(e.metrics) > 0 {
		s.Metrics = make(map[string]float64, len(e.metrics))
		for _, m := range e.metrics {
			s.Metrics[m.Name()] = m.Value()
		}
	}
	return s
}

// Run drives Tick from a ticker at fps until ctx is cancelled or frame
// returns false. frame runs after each tick with the unclamped delta.
func (e *Engine) Run(ctx context.Context, fps int, frame func(dt time.Duration) bool) error {
	if fps <= 0 {
		fps = e.cfg.Viewport.FPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			e.Tick(dt)
			if frame != nil && !frame(dt) {
				return nil
			}
		}
	}
}
