// Package sim owns one running field: the particle store, the force field,
// the effects and the renderer, advanced by an explicit Tick.
package sim

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/glowfield/internal/config"
	"github.com/san-kum/glowfield/internal/cue"
	"github.com/san-kum/glowfield/internal/effects"
	"github.com/san-kum/glowfield/internal/field"
	"github.com/san-kum/glowfield/internal/gesture"
	"github.com/san-kum/glowfield/internal/metrics"
	"github.com/san-kum/glowfield/internal/particle"
	"github.com/san-kum/glowfield/internal/render"
	"github.com/san-kum/glowfield/internal/spatial"
)

const (
	// MaxFrameDelta caps a single tick so a stalled frame cannot fling
	// particles across the screen.
	MaxFrameDelta = 100 * time.Millisecond

	// DefaultWaveSpeed is how fast the ripple phase advances, in radians
	// per second.
	DefaultWaveSpeed = 5.0

	// SoftPopCooldown spaces the contact cue while particles stay in
	// touching distance of an anchor.
	SoftPopCooldown = 100 * time.Millisecond
)

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func WithCues(s cue.Sink) Option {
	return func(e *Engine) {
		if s != nil {
			e.cues = s
		}
	}
}

// WithSeed overrides the config seed.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

// Observer is notified after every tick.
type Observer interface {
	OnTick(s Stats)
}

type pendingBurst struct {
	x, y  float64
	count int
}

type timed struct {
	x, y      float64
	remaining time.Duration
	phase     float64
}

type Engine struct {
	cfg  config.Config
	log  *slog.Logger
	cues cue.Sink
	seed int64

	store    *particle.Store
	grid     *spatial.Grid
	field    *field.Simulator
	state    *field.State
	injector *effects.Injector
	pipeline *render.Pipeline
	idle     *field.Idle

	mapper      *gesture.Mapper
	smoother    *gesture.Smoother
	hands       []gesture.Hand
	handAnchors []field.Anchor
	exit        bool

	frames    *metrics.FrameRate
	metrics   []metrics.Metric
	observers []Observer

	palette string

	bursts []pendingBurst
	boost  bool
	flow   *[2]float64
	wave   *timed
	chaos  *timed

	WaveSpeed float64

	elapsed    time.Duration
	ticks      uint64
	lastPop    time.Duration
	popped     bool
	sinceInput time.Duration
	idling     bool

	userPerf   bool
	autoPerf   bool
	forcedPerf bool
	lastTier   render.Tier
}

// New builds an engine from cfg. The config is validated and copied.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:       *cfg,
		log:       slog.New(slog.DiscardHandler),
		cues:      cue.Nop{},
		seed:      cfg.Seed,
		WaveSpeed: DefaultWaveSpeed,
		frames:    metrics.NewFrameRate(metrics.DefaultFrameWindow),
		lastTier:  render.TierQuality,
	}
	for _, opt := range opts {
		opt(e)
	}

	w, h := float64(cfg.Viewport.Width), float64(cfg.Viewport.Height)
	e.store = particle.NewStore(w, h, e.seed)
	e.grid = spatial.New(w, h, spatial.DefaultCellSize, field.DefaultWrapMargin)
	e.field = field.NewSimulator(e.grid)
	e.state = field.NewState(cfg.Field.Radius, cfg.Field.Strength)
	e.state.Mode = cfg.Mode()
	e.injector = effects.NewInjector(e.store, e.grid, e.cues)
	e.pipeline = render.NewPipeline()
	e.pipeline.SetIndicator(cfg.Render.Indicator)
	e.pipeline.SetTrails(cfg.Render.Trails)
	e.userPerf = cfg.Render.Performance
	e.idle = field.NewIdle(w, h, e.store.Rand())

	strength := cfg.Field.Strength * cfg.Gesture.Sensitivity
	e.mapper = gesture.NewMapper(cfg.Field.Radius, strength, cfg.Gesture.SpawnCooldown)
	e.smoother = gesture.NewSmoother(cfg.Viewport.FPS, cfg.Gesture.Smoothing)

	if err := e.SetPalette(cfg.Particles.Palette); err != nil {
		return nil, err
	}
	e.store.Create(cfg.Particles.Count, particle.FromPalette(e.currentPalette()))
	e.applyPerformance()

	e.log.Debug("engine ready",
		"particles", e.store.Len(),
		"width", cfg.Viewport.Width,
		"height", cfg.Viewport.Height,
		"mode", e.state.Mode.String(),
		"seed", e.seed,
	)
	return e, nil
}

func (e *Engine) AddMetric(m metrics.Metric) { e.metrics = append(e.metrics, m) }
func (e *Engine) AddObserver(o Observer)     { e.observers = append(e.observers, o) }

func (e *Engine) Store() *particle.Store     { return e.store }
func (e *Engine) State() *field.State        { return e.state }
func (e *Engine) Pipeline() *render.Pipeline { return e.pipeline }
func (e *Engine) Config() config.Config      { return e.cfg }
func (e *Engine) Elapsed() time.Duration     { return e.elapsed }
func (e *Engine) Idle() bool                 { return e.idling }
func (e *Engine) Palette() string            { return e.palette }

func (e *Engine) Size() (int, int) {
	w, h := e.store.Bounds()
	return int(w), int(h)
}

// SetAnchor feeds the pointer anchor. An active anchor counts as input.
func (e *Engine) SetAnchor(x, y float64, active bool) {
	e.state.SetAnchor(x, y, active)
	if active {
		e.touch()
	}
}

// SetMode switches the field mode, announcing real changes.
func (e *Engine) SetMode(m field.Mode) {
	if e.state.SetMode(m) {
		e.cues.Play(cue.ModeChange)
		e.log.Debug("mode changed", "mode", m.String())
	}
}

func (e *Engine) Mode() field.Mode { return e.state.Mode }

// Point feeds one pointer sample. A held button anchors the field at the
// pointer under the current mode; the pointer never changes the mode.
func (e *Engine) Point(s gesture.Sample) {
	e.SetAnchor(s.X, s.Y, s.Pressed)
	if s.Spawn {
		e.Burst(s.X, s.Y, 0)
	}
	if s.Flowing {
		e.Flow(s.FlowX, s.FlowY)
	}
}

// SetHands replaces the detected hands. Hands take precedence over the
// pointer anchor until they are cleared with an empty slice. Each hand
// applies its own labelled mode; the field mode in State is left alone.
func (e *Engine) SetHands(hands []gesture.Hand) {
	e.hands = append(e.hands[:0], hands...)
	if len(hands) == 0 {
		e.handAnchors = e.handAnchors[:0]
		e.smoother.Reset()
		e.mapper.Reset()
		return
	}
	e.touch()
}

// HandAnchors are the anchors the hands resolved to on the last tick.
func (e *Engine) HandAnchors() []field.Anchor { return e.handAnchors }

// ExitRequested reports that both hands were held in fists long enough to
// ask the frontend to quit.
func (e *Engine) ExitRequested() bool { return e.exit }

func (e *Engine) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	fw, fh := float64(w), float64(h)
	e.store.Resize(fw, fh)
	e.grid.Resize(fw, fh)
	e.pipeline.Invalidate()
	e.idle = field.NewIdle(fw, fh, e.store.Rand())
	e.log.Debug("resized", "width", w, "height", h)
}

// SetPerformance is the user's performance-mode toggle.
func (e *Engine) SetPerformance(on bool) {
	e.userPerf = on
	e.applyPerformance()
}

// ForcePerformance pins the performance tier regardless of the user
// toggle and the frame-rate controller. The recorder uses it.
func (e *Engine) ForcePerformance(on bool) {
	e.forcedPerf = on
	e.applyPerformance()
}

func (e *Engine) Performance() bool { return e.pipeline.Performance() }

func (e *Engine) applyPerformance() {
	e.pipeline.SetPerformance(e.forcedPerf || e.userPerf || e.autoPerf)
}

func (e *Engine) SetIndicator(on bool) { e.pipeline.SetIndicator(on) }
func (e *Engine) SetTrails(on bool)    { e.pipeline.SetTrails(on) }

// SetPalette recolours the field and future bursts.
func (e *Engine) SetPalette(name string) error {
	pal, ok := particle.GetPalette(name)
	if !ok {
		return fmt.Errorf("%w: unknown palette %q", config.ErrInvalidConfig, name)
	}
	e.palette = name
	e.injector.Palette = &pal
	rng := e.store.Rand()
	e.store.Each(func(_ int, p *particle.Particle) {
		pal.Pick(rng).Apply(p)
	})
	return nil
}

// CyclePalette moves to the next palette and returns its name.
func (e *Engine) CyclePalette() string {
	next := particle.NextPalette(e.palette)
	if err := e.SetPalette(next); err != nil {
		e.log.Warn("palette", "error", err)
	}
	return e.palette
}

func (e *Engine) currentPalette() particle.Palette {
	pal, _ := particle.GetPalette(e.palette)
	return pal
}

// Burst queues a spawn of count particles at (x, y). Zero or less uses the
// configured burst size.
func (e *Engine) Burst(x, y float64, count int) {
	if count <= 0 {
		count = e.cfg.Effects.BurstCount
	}
	e.bursts = append(e.bursts, pendingBurst{x: x, y: y, count: count})
	e.touch()
}

func (e *Engine) StartWave(x, y float64) {
	e.wave = &timed{x: x, y: y, remaining: e.cfg.Effects.WaveDuration}
	e.touch()
}

func (e *Engine) Boost() {
	e.boost = true
	e.touch()
}

func (e *Engine) StartChaos(x, y float64) {
	e.chaos = &timed{x: x, y: y, remaining: e.cfg.Effects.ChaosDuration}
	e.touch()
}

func (e *Engine) Flow(dx, dy float64) {
	e.flow = &[2]float64{dx, dy}
	e.touch()
}

func (e *Engine) WaveActive() bool  { return e.wave != nil }
func (e *Engine) ChaosActive() bool { return e.chaos != nil }

func (e *Engine) touch() {
	e.sinceInput = 0
	if e.idling {
		e.idling = false
		e.log.Debug("idle ended")
	}
}
