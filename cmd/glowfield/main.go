package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gogpu/gg"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/glowfield/internal/audio"
	"github.com/san-kum/glowfield/internal/automation"
	"github.com/san-kum/glowfield/internal/capture"
	"github.com/san-kum/glowfield/internal/config"
	"github.com/san-kum/glowfield/internal/control"
	"github.com/san-kum/glowfield/internal/export"
	"github.com/san-kum/glowfield/internal/gui"
	"github.com/san-kum/glowfield/internal/metrics"
	"github.com/san-kum/glowfield/internal/raster"
	"github.com/san-kum/glowfield/internal/render"
	"github.com/san-kum/glowfield/internal/sim"
	"github.com/san-kum/glowfield/internal/storage"
	"github.com/san-kum/glowfield/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	seed       int64
	particles  int
	palette    string
	mode       string
	noAudio    bool

	snapshotTicks int
	benchTicks    int

	format   string
	output   string
	duration time.Duration
	effect   string
	script   string

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
)

var logger = slog.New(slog.DiscardHandler)

var errClipDone = errors.New("clip complete")

// stabilityThreshold is the share of particles pinned at max speed above
// which a tick counts as unstable.
const stabilityThreshold = 0.25

func main() {
	rootCmd := &cobra.Command{
		Use:   "glowfield",
		Short: "interactive particle force field",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
		RunE: runGUI,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".glowfield", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "apply a named preset")
	pf.StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.Int64Var(&seed, "seed", 0, "random seed")
	pf.IntVar(&particles, "particles", 0, "particle count")
	pf.StringVar(&palette, "palette", "", "colour palette")
	pf.StringVar(&mode, "mode", "", "initial mode (attract, repel, swirl, neutral)")
	pf.BoolVar(&noAudio, "no-audio", false, "disable sound cues")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "run in a window",
		RunE:  runGUI,
	}

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "run in the terminal",
		RunE:  runTUI,
	}

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "simulate headless and write one frame",
		RunE:  runSnapshot,
	}
	snapshotCmd.Flags().IntVar(&snapshotTicks, "ticks", 120, "ticks to simulate first")
	snapshotCmd.Flags().StringVar(&format, "format", "png", "output format (png, svg, json)")
	snapshotCmd.Flags().StringVarP(&output, "out", "o", "", "output path (default glowfield.<format>)")

	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "record a GIF clip headless into the data directory",
		RunE:  runRecord,
	}
	recordCmd.Flags().DurationVar(&duration, "duration", 0, "clip length (default from config)")
	recordCmd.Flags().StringVar(&effect, "effect", "wave", "effect fired at the centre (burst, wave, boost, chaos, none)")
	recordCmd.Flags().StringVar(&script, "script", "", "scenario file to play while recording (yaml)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep a field parameter and report energy",
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepParam, "param", "strength", fmt.Sprintf("parameter to sweep %v", automation.SweepParams()))
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.1, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 2.0, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 8, "number of values")
	sweepCmd.Flags().DurationVar(&duration, "duration", 3*time.Second, "simulated time per value")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure tick and render cost per tier",
		RunE:  runBench,
	}
	benchCmd.Flags().IntVar(&benchTicks, "ticks", 600, "ticks to run")

	capturesCmd := &cobra.Command{
		Use:   "captures",
		Short: "list stored captures",
		RunE:  listCaptures,
	}
	capturesCmd.AddCommand(&cobra.Command{
		Use:   "show [id]",
		Short: "plot a capture's telemetry",
		Args:  cobra.ExactArgs(1),
		RunE:  showCapture,
	})

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage config files",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "write the effective config to a yaml file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	})

	rootCmd.AddCommand(guiCmd, tuiCmd, snapshotCmd, recordCmd, sweepCmd, benchCmd, capturesCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogging installs a stderr text logger for the app, gg and the
// off-screen canvas.
func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	gg.SetLogger(logger)
	raster.SetLogger(logger)
	return nil
}

// loadConfig builds the effective config: defaults or the config file, then
// the preset, then flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if preset != "" && !cfg.Apply(preset) {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("particles") {
		cfg.Particles.Count = particles
	}
	if flags.Changed("palette") {
		cfg.Particles.Palette = palette
	}
	if flags.Changed("mode") {
		cfg.Field.Mode = mode
	}
	if noAudio {
		cfg.Audio.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newEngine builds a silent engine with the run metrics attached.
func newEngine(cfg *config.Config, opts ...sim.Option) (*sim.Engine, error) {
	opts = append([]sim.Option{sim.WithLogger(logger)}, opts...)
	e, err := sim.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	e.AddMetric(metrics.NewEnergy())
	e.AddMetric(metrics.NewStability(stabilityThreshold))
	return e, nil
}

// newLiveEngine builds the engine with sound when the config and the machine
// allow it. The mixer is nil without sound; the returned func releases the
// audio device.
func newLiveEngine(cfg *config.Config) (*sim.Engine, control.Mixer, func(), error) {
	var (
		opts    []sim.Option
		mixer   control.Mixer
		cleanup = func() {}
	)
	if cfg.Audio.Enabled {
		player := audio.NewPlayer(cfg.Audio.Volume, logger)
		if err := player.Start(); err != nil {
			logger.Warn("audio unavailable", "error", err)
		} else {
			player.SetAmbient(cfg.Audio.Ambient)
			player.SetBinaural(cfg.Audio.Binaural)
			opts = append(opts, sim.WithCues(audio.NewThrottle(player, cfg.Audio.Cooldown)))
			mixer = player
			cleanup = player.Stop
		}
	}

	e, err := newEngine(cfg, opts...)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	return e, mixer, cleanup, nil
}

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	e, mixer, cleanup, err := newLiveEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	return gui.Run(e, gui.Options{Store: st, Audio: mixer, Logger: logger})
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	e, mixer, cleanup, err := newLiveEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	return viz.Run(e, viz.Options{Store: st, Audio: mixer, Logger: logger})
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	e, err := newEngine(cfg)
	if err != nil {
		return err
	}

	dt := cfg.FrameInterval()
	for i := 0; i < snapshotTicks; i++ {
		e.Tick(dt)
	}

	if output == "" {
		output = "glowfield." + format
	}
	w, h := e.Size()

	switch strings.ToLower(format) {
	case "png":
		c := raster.New(w, h)
		defer c.Close()
		tier := e.Render(c)
		if err := c.SavePNG(output); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%dx%d, %s)\n", output, w, h, tier)
	case "svg":
		s := export.NewSVG(w, h)
		tier := e.Render(s)
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		if _, err := s.WriteTo(f); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%dx%d, %s)\n", output, w, h, tier)
	case "json":
		stats := e.Snapshot()
		data := storage.NewExportData(e.Store(), stats.Mode.String(), snapshotTicks, runMetrics(stats))
		if err := storage.ExportJSON(output, data); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d particles)\n", output, stats.Particles)
	default:
		return fmt.Errorf("unknown format: %s (available: png, svg, json)", format)
	}
	return nil
}

func fireEffect(e *sim.Engine, name string) error {
	w, h := e.Size()
	x, y := float64(w)/2, float64(h)/2
	switch name {
	case "burst":
		e.Burst(x, y, 0)
	case "wave":
		e.StartWave(x, y)
	case "boost":
		e.Boost()
	case "chaos":
		e.StartChaos(x, y)
	case "none", "":
	default:
		return fmt.Errorf("unknown effect: %s", name)
	}
	return nil
}

func runRecord(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	var scenario *automation.Scenario
	if script != "" {
		if scenario, err = automation.LoadScenario(script); err != nil {
			return fmt.Errorf("failed to load script: %w", err)
		}
		cfg.Capture.Duration = scenario.Length()
	}
	if cmd.Flags().Changed("duration") {
		cfg.Capture.Duration = duration
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	e, err := newEngine(cfg)
	if err != nil {
		return err
	}

	rec := capture.NewRecorder(e, cfg.Capture.Duration, cfg.Capture.FPS, cfg.Capture.Scale, logger)
	defer rec.Close()

	dt := cfg.FrameInterval()
	done := false
	advance := func() error {
		stats := e.Snapshot()
		done = rec.Advance(dt, storage.Sample{
			FPS:       stats.FPS,
			Energy:    stats.Energy,
			MeanSpeed: stats.MeanSpeed,
			Particles: stats.Particles,
		})
		if done {
			return errClipDone
		}
		return nil
	}

	rec.Start()
	if scenario != nil {
		fmt.Printf("playing %s (%v)\n", scenario.Name, scenario.Length())
		if _, err := automation.RunScenario(context.Background(), e, scenario, dt, advance); err != nil && err != errClipDone {
			rec.Cancel()
			return err
		}
	} else if err := fireEffect(e, effect); err != nil {
		rec.Cancel()
		return err
	}
	for !done {
		e.Tick(dt)
		advance()
	}

	stats := e.Snapshot()
	id, err := rec.Save(st, storage.CaptureMetadata{
		Seed:      cfg.Seed,
		Mode:      stats.Mode.String(),
		Palette:   stats.Palette,
		Particles: stats.Particles,
		Metrics:   runMetrics(stats),
	})
	if err != nil {
		return err
	}
	fmt.Printf("capture saved: %s\n", id)
	fmt.Printf("gif: %s\n", st.GIFPath(id))
	return nil
}

// runMetrics merges the engine's accumulated metrics with the final frame's
// energy and speed. The accumulated "energy" is the run mean.
func runMetrics(stats sim.Stats) map[string]float64 {
	m := map[string]float64{"final_energy": stats.Energy, "mean_speed": stats.MeanSpeed}
	for k, v := range stats.Metrics {
		m[k] = v
	}
	return m
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	results, err := automation.RunSweep(context.Background(), cfg, &automation.ParameterSweep{
		Param:    sweepParam,
		Min:      sweepMin,
		Max:      sweepMax,
		NumSteps: sweepSteps,
		Duration: duration,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tMEAN ENERGY\tPEAK ENERGY\tMEAN SPEED\n", strings.ToUpper(sweepParam))
	energy := make([]float64, len(results))
	for i, r := range results {
		fmt.Fprintf(w, "%.4g\t%.2f\t%.2f\t%.3f\n", r.Value, r.MeanEnergy, r.PeakEnergy, r.MeanSpeed)
		energy[i] = r.MeanEnergy
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(energy) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(energy,
			asciigraph.Height(8),
			asciigraph.Caption("mean energy vs "+sweepParam),
		))
	}
	return nil
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	e, err := newEngine(cfg)
	if err != nil {
		return err
	}
	if benchTicks <= 0 {
		return fmt.Errorf("ticks must be positive")
	}

	dt := cfg.FrameInterval()
	tickMs := make([]float64, benchTicks)
	start := time.Now()
	for i := range tickMs {
		t0 := time.Now()
		e.Tick(dt)
		tickMs[i] = float64(time.Since(t0).Microseconds()) / 1000
	}
	tickTotal := time.Since(start)

	w, h := e.Size()
	c := raster.New(w, h)
	defer c.Close()

	const frames = 30
	renderTime := func(force bool) (time.Duration, render.Tier) {
		e.ForcePerformance(force)
		defer e.ForcePerformance(false)
		var tier render.Tier
		t0 := time.Now()
		for i := 0; i < frames; i++ {
			tier = e.Render(c)
		}
		return time.Since(t0) / frames, tier
	}
	quality, qTier := renderTime(false)
	perf, pTier := renderTime(true)

	fmt.Printf("benchmarking %d particles at %dx%d\n\n", e.Store().Len(), w, h)
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STAGE\tTIER\tPER FRAME\tFRAMES/SEC")
	fmt.Fprintf(tw, "tick\t-\t%v\t%.0f\n", tickTotal/time.Duration(benchTicks), float64(benchTicks)/tickTotal.Seconds())
	fmt.Fprintf(tw, "render\t%s\t%v\t%.0f\n", qTier, quality, 1/quality.Seconds())
	fmt.Fprintf(tw, "render\t%s\t%v\t%.0f\n", pTier, perf, 1/perf.Seconds())
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(asciigraph.Plot(tickMs,
		asciigraph.Height(8),
		asciigraph.Width(80),
		asciigraph.Caption("tick time (ms)"),
	))
	return nil
}

func listCaptures(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	caps, err := st.List()
	if err != nil {
		return err
	}

	if len(caps) == 0 {
		fmt.Println("no captures found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODE\tPALETTE\tTIME\tFRAMES\tSIZE\tDURATION")
	for _, c := range caps {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%dx%d\t%.1fs\n",
			c.ID,
			c.Mode,
			c.Palette,
			c.Timestamp.Format("2006-01-02 15:04:05"),
			c.Frames,
			c.Width, c.Height,
			c.Duration,
		)
	}
	return w.Flush()
}

func showCapture(cmd *cobra.Command, args []string) error {
	id := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(id)
	if err != nil {
		return err
	}
	samples, err := st.LoadTelemetry(id)
	if err != nil {
		return err
	}

	fmt.Printf("capture: %s\n", meta.ID)
	fmt.Printf("mode: %s  palette: %s  seed: %d\n", meta.Mode, meta.Palette, meta.Seed)
	fmt.Printf("frames: %d at %d fps\n\n", meta.Frames, meta.FPS)

	if len(samples) < 2 {
		fmt.Println("not enough telemetry to plot")
		return nil
	}

	energy := make([]float64, len(samples))
	speed := make([]float64, len(samples))
	for i, s := range samples {
		energy[i] = s.Energy
		speed[i] = s.MeanSpeed
	}
	fmt.Println(asciigraph.Plot(energy, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("kinetic energy")))
	fmt.Println()
	fmt.Println(asciigraph.Plot(speed, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("mean speed")))
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path := "glowfield.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
