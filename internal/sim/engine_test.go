package sim_test

import (
	"context"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/glowfield/internal/config"
	"github.com/san-kum/glowfield/internal/cue"
	"github.com/san-kum/glowfield/internal/field"
	"github.com/san-kum/glowfield/internal/gesture"
	"github.com/san-kum/glowfield/internal/metrics"
	"github.com/san-kum/glowfield/internal/particle"
	"github.com/san-kum/glowfield/internal/render"
	"github.com/san-kum/glowfield/internal/sim"
)

type glowSurface struct {
	w, h    int
	glows   int
	fills   int
	strokes int
}

func (s *glowSurface) Size() (int, int)                                { return s.w, s.h }
func (s *glowSurface) Clear(render.Color)                              {}
func (s *glowSurface) FillCircle(_, _, _ float64, _ render.Color)      { s.fills++ }
func (s *glowSurface) StrokeCircle(_, _, _, _ float64, _ render.Color) { s.strokes++ }
func (s *glowSurface) FillGradient(*render.Gradient)                   {}
func (s *glowSurface) GlowCircle(_, _, _ float64, _ render.Color)      { s.glows++ }
func (s *glowSurface) BeginAdditive()                                  {}
func (s *glowSurface) EndAdditive()                                    {}

type tickCounter struct{ n int }

func (c *tickCounter) OnTick(sim.Stats) { c.n++ }

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Viewport.Width = 800
	cfg.Viewport.Height = 600
	cfg.Particles.Count = 300
	return cfg
}

func meanDistance(s *particle.Store, x, y float64) float64 {
	total := 0.0
	s.Each(func(_ int, p *particle.Particle) {
		total += math.Hypot(p.X-x, p.Y-y)
	})
	return total / float64(s.Len())
}

func runFor(e *sim.Engine, ticks int, dt time.Duration) {
	for i := 0; i < ticks; i++ {
		e.Tick(dt)
	}
}

var _ = Describe("Engine", func() {
	var (
		cfg    *config.Config
		cues   *cue.Recorder
		engine *sim.Engine
	)

	frame := 16 * time.Millisecond

	BeforeEach(func() {
		cfg = testConfig()
		cues = &cue.Recorder{}
	})

	JustBeforeEach(func() {
		var err error
		engine, err = sim.New(cfg, sim.WithCues(cues), sim.WithSeed(7))
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("construction", func() {
		It("creates the configured population", func() {
			Expect(engine.Store().Len()).To(Equal(300))
			Expect(engine.Store().Capacity()).To(Equal(360))
			Expect(engine.Mode()).To(Equal(field.Attract))
			w, h := engine.Size()
			Expect([]int{w, h}).To(Equal([]int{800, 600}))
		})

		Context("with an invalid config", func() {
			It("rejects it", func() {
				bad := testConfig()
				bad.Field.Radius = 0
				_, err := sim.New(bad)
				Expect(err).To(MatchError(config.ErrInvalidConfig))
			})
		})

		It("is deterministic for a seed", func() {
			other, err := sim.New(testConfig(), sim.WithSeed(7))
			Expect(err).NotTo(HaveOccurred())

			engine.SetAnchor(400, 300, true)
			other.SetAnchor(400, 300, true)
			runFor(engine, 30, frame)
			runFor(other, 30, frame)

			Expect(other.Store().Particles()).To(Equal(engine.Store().Particles()))
		})
	})

	Describe("Tick", func() {
		It("clamps long frames", func() {
			engine.Tick(5 * time.Second)
			Expect(engine.Elapsed()).To(Equal(sim.MaxFrameDelta))

			engine.Tick(-time.Second)
			Expect(engine.Elapsed()).To(Equal(sim.MaxFrameDelta))
		})

		It("keeps every particle inside the wrap margin and under its speed limit", func() {
			engine.SetMode(field.Repel)
			engine.SetAnchor(400, 300, true)
			runFor(engine, 200, frame)

			engine.Store().Each(func(_ int, p *particle.Particle) {
				Expect(p.X).To(BeNumerically(">=", -field.DefaultWrapMargin))
				Expect(p.X).To(BeNumerically("<=", 800+field.DefaultWrapMargin))
				Expect(p.Y).To(BeNumerically(">=", -field.DefaultWrapMargin))
				Expect(p.Y).To(BeNumerically("<=", 600+field.DefaultWrapMargin))
				Expect(p.Speed()).To(BeNumerically("<=", p.MaxSpeed+1e-9))
			})
		})

		It("pulls the population toward an attracting anchor", func() {
			before := meanDistance(engine.Store(), 400, 300)
			engine.SetAnchor(400, 300, true)
			runFor(engine, 120, frame)
			Expect(meanDistance(engine.Store(), 400, 300)).To(BeNumerically("<", before))
		})

		It("notifies observers and reports metrics", func() {
			counter := &tickCounter{}
			engine.AddObserver(counter)
			engine.AddMetric(metrics.NewEnergy())
			runFor(engine, 5, frame)

			Expect(counter.n).To(Equal(5))
			snap := engine.Snapshot()
			Expect(snap.Ticks).To(BeEquivalentTo(5))
			Expect(snap.Metrics).To(HaveKey("energy"))
			Expect(snap.Energy).To(BeNumerically(">", 0))
		})
	})

	Describe("mode changes", func() {
		It("announces only real changes", func() {
			engine.SetMode(field.Attract)
			Expect(cues.Count(cue.ModeChange)).To(Equal(0))

			engine.SetMode(field.Swirl)
			engine.SetMode(field.Swirl)
			Expect(cues.Count(cue.ModeChange)).To(Equal(1))
			Expect(engine.Mode()).To(Equal(field.Swirl))
		})
	})

	Describe("effects", func() {
		It("applies a burst on the next tick", func() {
			engine.Burst(100, 100, 0)
			Expect(engine.Store().Len()).To(Equal(300))

			engine.Tick(frame)
			Expect(engine.Store().Len()).To(Equal(330))
			Expect(cues.Count(cue.Pop)).To(Equal(1))
		})

		It("never grows past the soft capacity", func() {
			for i := 0; i < 10; i++ {
				engine.Burst(100, 100, 30)
				engine.Tick(frame)
			}
			Expect(engine.Store().Len()).To(Equal(360))
		})

		It("keeps a wave running for its duration", func() {
			engine.StartWave(400, 300)
			runFor(engine, 19, sim.MaxFrameDelta)
			Expect(engine.WaveActive()).To(BeTrue())
			engine.Tick(sim.MaxFrameDelta)
			Expect(engine.WaveActive()).To(BeFalse())
		})

		It("ends chaos after the configured duration", func() {
			engine.StartChaos(400, 300)
			runFor(engine, 30, sim.MaxFrameDelta)
			Expect(engine.ChaosActive()).To(BeFalse())
		})

		It("boosts once", func() {
			engine.Boost()
			runFor(engine, 3, frame)
			Expect(cues.Count(cue.Chime)).To(Equal(1))
		})
	})

	Describe("performance tier", func() {
		var surface *glowSurface

		BeforeEach(func() {
			surface = &glowSurface{w: 800, h: 600}
		})

		It("renders the quality tier by default", func() {
			Expect(engine.Render(surface)).To(Equal(render.TierQuality))
			Expect(surface.glows).To(Equal(300))
		})

		It("honours the forced override", func() {
			engine.ForcePerformance(true)
			Expect(engine.Render(surface)).To(Equal(render.TierPerformance))
			Expect(surface.glows).To(BeZero())

			engine.ForcePerformance(false)
			Expect(engine.Render(surface)).To(Equal(render.TierQuality))
		})

		It("degrades after a sustained low frame rate and recovers", func() {
			runFor(engine, 70, 30*time.Millisecond)
			Expect(engine.Performance()).To(BeTrue())
			Expect(engine.Render(surface)).To(Equal(render.TierPerformance))

			runFor(engine, 400, 10*time.Millisecond)
			Expect(engine.Performance()).To(BeFalse())
		})

		It("keeps a forced override through recovery", func() {
			engine.ForcePerformance(true)
			runFor(engine, 400, 10*time.Millisecond)
			Expect(engine.Performance()).To(BeTrue())
		})

		Context("when adaptation is disabled", func() {
			BeforeEach(func() {
				cfg.Render.Adaptive = false
			})

			It("stays in quality tier", func() {
				runFor(engine, 200, 30*time.Millisecond)
				Expect(engine.Performance()).To(BeFalse())
			})
		})
	})

	Describe("idle mode", func() {
		BeforeEach(func() {
			cfg.Effects.IdleAfter = time.Second
		})

		It("starts after a quiet period and ends on input", func() {
			runFor(engine, 9, sim.MaxFrameDelta)
			Expect(engine.Idle()).To(BeFalse())
			runFor(engine, 2, sim.MaxFrameDelta)
			Expect(engine.Idle()).To(BeTrue())

			engine.SetAnchor(10, 10, true)
			Expect(engine.Idle()).To(BeFalse())
		})
	})

	Describe("hands", func() {
		It("maps a palm to an attracting anchor without touching the field mode", func() {
			engine.SetMode(field.Repel)
			before := cues.Count(cue.ModeChange)
			engine.SetHands([]gesture.Hand{{Label: gesture.Palm, X: 0.5, Y: 0.5}})
			engine.Tick(frame)

			anchors := engine.HandAnchors()
			Expect(anchors).To(HaveLen(1))
			Expect(anchors[0].Mode).To(Equal(field.Attract))
			Expect(anchors[0].X).To(BeNumerically("~", 400, 1e-6))
			Expect(engine.Mode()).To(Equal(field.Repel))
			Expect(cues.Count(cue.ModeChange)).To(Equal(before))
		})

		It("draws one indicator per hand", func() {
			engine.SetHands([]gesture.Hand{
				{Label: gesture.Palm, X: 0.25, Y: 0.5},
				{Label: gesture.Fist, X: 0.75, Y: 0.5},
			})
			engine.Tick(frame)

			surface := &glowSurface{w: 800, h: 600}
			engine.Render(surface)
			Expect(surface.strokes).To(Equal(2))
		})

		It("asks to exit after both fists are held", func() {
			fists := []gesture.Hand{
				{Label: gesture.Fist, X: 0.3, Y: 0.5},
				{Label: gesture.Fist, X: 0.7, Y: 0.5},
			}
			engine.SetHands(fists)
			runFor(engine, 20, sim.MaxFrameDelta)
			Expect(engine.ExitRequested()).To(BeFalse())
			runFor(engine, 15, sim.MaxFrameDelta)
			Expect(engine.ExitRequested()).To(BeTrue())
		})

		It("spawns on pinch with a cooldown", func() {
			pinch := []gesture.Hand{{Label: gesture.Pinch, X: 0.2, Y: 0.2}}
			engine.SetHands(pinch)
			runFor(engine, 10, frame)
			Expect(engine.Store().Len()).To(Equal(330))

			runFor(engine, 30, frame)
			Expect(engine.Store().Len()).To(Equal(360))
		})

		It("resonates on a two-hand merge without touching the field strength", func() {
			engine.SetHands([]gesture.Hand{
				{Label: gesture.Merge, X: 0.3, Y: 0.5},
				{Label: gesture.Merge, X: 0.7, Y: 0.5},
			})
			engine.Tick(frame)

			Expect(cues.Count(cue.Resonant)).To(Equal(1))
			Expect(engine.State().Strength).To(Equal(cfg.Field.Strength))
			Expect(engine.State().AnchorX).To(BeNumerically("~", 400, 1e-6))
		})

		It("releases the hand anchors when hands disappear", func() {
			engine.SetHands([]gesture.Hand{{Label: gesture.Fist, X: 0.5, Y: 0.5}})
			engine.Tick(frame)
			Expect(engine.HandAnchors()).To(HaveLen(1))

			engine.SetHands(nil)
			engine.Tick(frame)
			Expect(engine.HandAnchors()).To(BeEmpty())
			Expect(engine.State().Active).To(BeFalse())
		})
	})

	Describe("pointer", func() {
		It("keeps the selected mode while pressed and pushes particles away", func() {
			engine.SetMode(field.Repel)
			changes := cues.Count(cue.ModeChange)
			before := meanDistance(engine.Store(), 400, 300)

			ptr := gesture.NewPointer()
			for i := 0; i < 60; i++ {
				engine.Point(ptr.Update(400, 300, gesture.Buttons{Left: true}))
				engine.Tick(frame)
			}

			Expect(engine.Mode()).To(Equal(field.Repel))
			Expect(cues.Count(cue.ModeChange)).To(Equal(changes))
			Expect(engine.State().Active).To(BeTrue())
			Expect(meanDistance(engine.Store(), 400, 300)).To(BeNumerically(">", before))
		})

		It("releases the anchor with the button", func() {
			ptr := gesture.NewPointer()
			engine.Point(ptr.Update(100, 100, gesture.Buttons{Right: true}))
			Expect(engine.State().Active).To(BeTrue())

			engine.Point(ptr.Update(100, 100, gesture.Buttons{}))
			Expect(engine.State().Active).To(BeFalse())
			Expect(engine.State().AnchorX).To(Equal(100.0))
		})

		It("bursts on a middle press", func() {
			ptr := gesture.NewPointer()
			engine.Point(ptr.Update(200, 200, gesture.Buttons{Middle: true}))
			engine.Tick(frame)
			Expect(engine.Store().Len()).To(Equal(330))
		})
	})

	Describe("contact", func() {
		It("plays a throttled soft pop while particles touch the anchor", func() {
			engine.SetAnchor(400, 300, true)
			runFor(engine, 120, frame)
			Expect(cues.Count(cue.SoftPop)).To(BeNumerically(">", 0))

			n := cues.Count(cue.SoftPop)
			runFor(engine, 5, frame)
			Expect(cues.Count(cue.SoftPop)).To(BeNumerically("<=", n+1))
		})

		It("stays quiet with no anchor", func() {
			runFor(engine, 60, frame)
			Expect(cues.Count(cue.SoftPop)).To(BeZero())
		})
	})

	Describe("Resize", func() {
		It("rescales the population and rebuilds the background", func() {
			surface := &glowSurface{w: 800, h: 600}
			engine.Render(surface)
			first := engine.Pipeline().GradientRebuilds()

			x := engine.Store().At(0).X
			engine.Resize(1600, 600)
			Expect(engine.Store().At(0).X).To(BeNumerically("~", x*2, 1e-9))

			surface.w = 1600
			engine.Render(surface)
			Expect(engine.Pipeline().GradientRebuilds()).To(Equal(first + 1))
		})

		It("ignores degenerate sizes", func() {
			engine.Resize(0, 100)
			w, h := engine.Size()
			Expect([]int{w, h}).To(Equal([]int{800, 600}))
		})
	})

	Describe("palettes", func() {
		It("cycles and rejects unknown names", func() {
			start := engine.Palette()
			next := engine.CyclePalette()
			Expect(next).NotTo(Equal(start))
			Expect(engine.SetPalette("nope")).To(MatchError(config.ErrInvalidConfig))
		})
	})

	Describe("Run", func() {
		It("stops when the frame callback declines", func() {
			frames := 0
			err := engine.Run(context.Background(), 200, func(time.Duration) bool {
				frames++
				return frames < 3
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(frames).To(Equal(3))
			Expect(engine.Snapshot().Ticks).To(BeEquivalentTo(3))
		})

		It("stops on cancellation", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
			defer cancel()
			err := engine.Run(ctx, 100, nil)
			Expect(err).To(MatchError(context.DeadlineExceeded))
		})
	})
})
