package viz

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/glowfield/internal/capture"
	"github.com/san-kum/glowfield/internal/control"
	"github.com/san-kum/glowfield/internal/gesture"
	"github.com/san-kum/glowfield/internal/metrics"
	"github.com/san-kum/glowfield/internal/render"
	"github.com/san-kum/glowfield/internal/sim"
	"github.com/san-kum/glowfield/internal/storage"
)

const (
	// DotSize is how many world pixels one braille dot covers.
	DotSize = 8

	panelWidth = 40
	historyLen = 120
	messageTTL = 2 * time.Second

	defaultCols = 80
	defaultRows = 24
)

type TickMsg time.Time

type Options struct {
	Store  *storage.Store
	Audio  control.Mixer
	Logger *slog.Logger
}

// Model drives an engine from the terminal. The mouse anchors the field in
// the current mode; keys go through the shared control bindings.
type Model struct {
	Engine   *sim.Engine
	Manual   *control.Manual
	Pointer  *gesture.Pointer
	Recorder *capture.Recorder
	Store    *storage.Store

	canvas  *Canvas
	styles  Styles
	fps     *metrics.History
	energy  *metrics.History
	tier    render.Tier
	showHUD bool

	interval time.Duration
	last     time.Time

	buttons gesture.Buttons
	mouseX  float64
	mouseY  float64

	message    string
	messageAge time.Duration
	log        *slog.Logger
}

func NewModel(e *sim.Engine, opts Options) *Model {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	cfg := e.Config()
	m := &Model{
		Engine:   e,
		Manual:   control.NewManual(e),
		Pointer:  gesture.NewPointer(),
		Recorder: capture.NewRecorder(e, cfg.Capture.Duration, cfg.Capture.FPS, cfg.Capture.Scale, log),
		Store:    opts.Store,
		canvas:   NewCanvas(defaultCols-panelWidth, defaultRows),
		styles:   NewStyles(GetTheme(e.Palette())),
		fps:      metrics.NewHistory(historyLen),
		energy:   metrics.NewHistory(historyLen),
		showHUD:  true,
		interval: cfg.FrameInterval(),
		log:      log,
	}
	m.Manual.Audio = opts.Audio
	w, h := e.Size()
	m.canvas.Fit(w, h)
	return m
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *Model) Init() tea.Cmd { return m.tick() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if m.Command(control.ParseKey(msg.String())) {
			return m, tea.Quit
		}
	case tea.MouseMsg:
		m.mouse(msg)
	case TickMsg:
		now := time.Time(msg)
		dt := m.interval
		if !m.last.IsZero() {
			dt = now.Sub(m.last)
		}
		m.last = now
		m.Step(dt)
		if m.Engine.ExitRequested() {
			m.log.Info("exit gesture, quitting")
			m.Command(control.Quit)
			return m, tea.Quit
		}
		return m, m.tick()
	}
	return m, nil
}

// resize fits the canvas to the terminal and the engine to the canvas.
func (m *Model) resize(cols, rows int) {
	if m.showHUD {
		cols -= panelWidth + 2
	}
	cols = max(cols, 10)
	rows = max(rows-1, 5)
	m.canvas.Resize(cols, rows)

	w, h := cols*2*DotSize, rows*4*DotSize
	m.Engine.Resize(w, h)
	m.canvas.Fit(w, h)
}

func (m *Model) mouse(msg tea.MouseMsg) {
	m.mouseX, m.mouseY = m.canvas.World(msg.X, msg.Y)

	down := msg.Action != tea.MouseActionRelease
	switch msg.Button {
	case tea.MouseButtonLeft:
		m.buttons.Left = down
	case tea.MouseButtonMiddle:
		m.buttons.Middle = down
	case tea.MouseButtonRight:
		m.buttons.Right = down
	}
	if msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonNone {
		m.buttons = gesture.Buttons{}
	}
}

// Step advances the engine by dt and repaints the canvas.
func (m *Model) Step(dt time.Duration) {
	m.Manual.Point(m.mouseX, m.mouseY)
	m.Engine.Point(m.Pointer.Update(m.mouseX, m.mouseY, m.buttons))

	m.Engine.Tick(dt)
	stats := m.Engine.Snapshot()
	m.fps.Push(stats.FPS)
	m.energy.Push(stats.Energy)

	if m.Recorder.Recording() {
		done := m.Recorder.Advance(dt, storage.Sample{
			FPS:       stats.FPS,
			Energy:    stats.Energy,
			MeanSpeed: stats.MeanSpeed,
			Particles: stats.Particles,
		})
		if done {
			m.saveCapture(stats)
		}
	}

	m.tier = m.Engine.Render(m.canvas)

	if m.message != "" {
		m.messageAge += dt
		if m.messageAge > messageTTL {
			m.message = ""
		}
	}
}

// Command handles one user command and reports whether the program should
// quit.
func (m *Model) Command(c control.Command) bool {
	if m.Manual.Apply(c) {
		m.log.Debug("command", "name", c.String())
		switch c {
		case control.CyclePalette:
			m.styles = NewStyles(GetTheme(m.Engine.Palette()))
			m.flash("palette: " + m.Engine.Palette())
		case control.TogglePerformance:
			m.flash(fmt.Sprintf("performance: %v", m.Manual.UserPerformance()))
		case control.ToggleTrails:
			m.flash(fmt.Sprintf("trails: %v", m.Engine.Pipeline().Trails()))
		case control.VolumeUp, control.VolumeDown, control.ToggleAmbient, control.ToggleBinaural:
			m.flashAudio(c)
		}
		return false
	}
	switch c {
	case control.Record:
		if m.Recorder.Recording() {
			m.Recorder.Cancel()
			m.flash("recording cancelled")
			return false
		}
		m.Recorder.Start()
		m.flash("recording")
	case control.ToggleHUD:
		m.showHUD = !m.showHUD
	case control.Quit:
		if m.Recorder.Recording() {
			m.Recorder.Cancel()
		}
		return true
	}
	return false
}

func (m *Model) saveCapture(stats sim.Stats) {
	if m.Store == nil {
		m.Recorder.Cancel()
		m.flash("no capture directory")
		return
	}
	meta := storage.CaptureMetadata{
		Seed:      m.Engine.Config().Seed,
		Mode:      stats.Mode.String(),
		Palette:   stats.Palette,
		Particles: stats.Particles,
		Metrics:   map[string]float64{"energy": stats.Energy, "mean_speed": stats.MeanSpeed},
	}
	id, err := m.Recorder.Save(m.Store, meta)
	if err != nil {
		m.log.Error("save capture", "error", err)
		m.flash("capture failed")
		return
	}
	m.log.Info("capture saved", "id", id)
	m.flash("saved " + id)
}

func (m *Model) flashAudio(c control.Command) {
	a := m.Manual.Audio
	if a == nil {
		m.flash("audio off")
		return
	}
	switch c {
	case control.ToggleAmbient:
		m.flash(fmt.Sprintf("ambient: %v", a.Ambient()))
	case control.ToggleBinaural:
		m.flash(fmt.Sprintf("binaural: %v", a.Binaural()))
	default:
		m.flash(fmt.Sprintf("volume: %.0f%%", a.Volume()*100))
	}
}

func (m *Model) flash(msg string) {
	m.message = msg
	m.messageAge = 0
}

// Message is the transient status line, empty once it has expired.
func (m *Model) Message() string { return m.message }

func (m *Model) View() string {
	field := m.canvas.Render()
	if !m.showHUD {
		return field
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, field, m.panel())
}

func (m *Model) panel() string {
	st := m.styles
	stats := m.Engine.Snapshot()

	var s strings.Builder
	s.WriteString(st.Title.Render("GLOWFIELD") + "\n")

	switch {
	case m.Recorder.Recording():
		s.WriteString(st.Recording.Render("● REC ") + st.ProgressBar(m.Recorder.Progress(), 20) + "\n")
	case stats.Idle:
		s.WriteString(st.Idle.Render("IDLE") + "\n")
	default:
		s.WriteString(st.Running.Render("RUNNING") + "\n")
	}
	s.WriteString("\n")

	row := func(label, value string) {
		s.WriteString(st.Label.Render(label) + st.Value.Render(value) + "\n")
	}
	row("Mode", stats.Mode.String())
	row("Palette", stats.Palette)
	row("Tier", m.tier.String())
	row("Particles", fmt.Sprintf("%d/%d", stats.Particles, stats.Capacity))
	row("Hands", fmt.Sprintf("%d", stats.Hands))
	row("FPS", fmt.Sprintf("%.0f", stats.FPS))
	row("Energy", fmt.Sprintf("%.1f", stats.Energy))
	row("Time", fmt.Sprintf("%.1fs", stats.Elapsed.Seconds()))

	if values := m.energy.Values(); len(values) > 1 {
		chart := asciigraph.Plot(values, asciigraph.Height(4), asciigraph.Width(panelWidth-12), asciigraph.Caption("Energy"))
		s.WriteString(st.Graph.Render(chart) + "\n")
	}
	s.WriteString(st.Label.Render("FPS") + st.Sparkline(m.fps.Values(), panelWidth-16) + "\n")

	if m.message != "" {
		s.WriteString("\n" + st.Message.Render(m.message) + "\n")
	}
	s.WriteString(st.Help.Render("1/2/3 mode  m cycle\nb burst  w wave  e boost  c chaos\np perf  i indicator  t trails\nn palette  a ambient  d binaural\n+/- volume  r record  h hud  q quit\nmouse: L/R anchor  M burst"))
	return st.Panel.Render(s.String())
}

// Run takes over the terminal until the user quits.
func Run(e *sim.Engine, opts Options) error {
	m := NewModel(e, opts)
	defer m.Recorder.Close()
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	return err
}
