package gui

import (
	"fmt"
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/glowfield/internal/capture"
	"github.com/san-kum/glowfield/internal/control"
	"github.com/san-kum/glowfield/internal/gesture"
	"github.com/san-kum/glowfield/internal/metrics"
	"github.com/san-kum/glowfield/internal/render"
	"github.com/san-kum/glowfield/internal/sim"
	"github.com/san-kum/glowfield/internal/storage"
)

var (
	ColText    = rl.NewColor(200, 200, 210, 255)
	ColTextDim = rl.NewColor(90, 90, 110, 255)
	ColAccent  = rl.NewColor(0, 212, 255, 255)
	ColRecord  = rl.NewColor(255, 0, 110, 255)
)

const (
	fontPath   = "/usr/share/fonts/liberation/LiberationMono-Regular.ttf"
	historyLen = 200
	messageTTL = 2 * time.Second
)

var keyNames = map[int32]string{
	rl.KeyOne:    "1",
	rl.KeyTwo:    "2",
	rl.KeyThree:  "3",
	rl.KeyM:      "m",
	rl.KeyB:      "b",
	rl.KeyW:      "w",
	rl.KeyE:      "e",
	rl.KeyC:      "c",
	rl.KeyP:      "p",
	rl.KeyI:      "i",
	rl.KeyN:      "n",
	rl.KeyR:      "r",
	rl.KeyH:      "h",
	rl.KeyT:      "t",
	rl.KeyA:      "a",
	rl.KeyD:      "d",
	rl.KeyEqual:  "=",
	rl.KeyKpAdd:  "+",
	rl.KeyMinus:  "-",
	rl.KeyQ:      "q",
	rl.KeyEscape: "esc",
}

type Options struct {
	Title  string
	Store  *storage.Store
	Audio  control.Mixer
	Logger *slog.Logger
}

type App struct {
	Engine   *sim.Engine
	Manual   *control.Manual
	Pointer  *gesture.Pointer
	Recorder *capture.Recorder
	Store    *storage.Store
	Font     rl.Font

	FPS    *metrics.History
	Energy *metrics.History

	ShowHUD bool
	Running bool

	surface    Surface
	log        *slog.Logger
	message    string
	messageAge time.Duration
}

func initWindow(w, h int, title string) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(w), int32(h), title)
	rl.SetExitKey(0)
}

func loadFont() rl.Font {
	font := rl.LoadFontEx(fontPath, 32, nil, 0)
	if font.Texture.ID == 0 {
		return rl.GetFontDefault()
	}
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

func NewApp(e *sim.Engine, opts Options) *App {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	cfg := e.Config()
	manual := control.NewManual(e)
	manual.Audio = opts.Audio
	return &App{
		Engine:   e,
		Manual:   manual,
		Pointer:  gesture.NewPointer(),
		Recorder: capture.NewRecorder(e, cfg.Capture.Duration, cfg.Capture.FPS, cfg.Capture.Scale, log),
		Store:    opts.Store,
		FPS:      metrics.NewHistory(historyLen),
		Energy:   metrics.NewHistory(historyLen),
		ShowHUD:  true,
		Running:  true,
		log:      log,
	}
}

// Run opens a window sized to the engine and blocks until it is closed.
func Run(e *sim.Engine, opts Options) error {
	if opts.Title == "" {
		opts.Title = "glowfield"
	}
	w, h := e.Size()
	initWindow(w, h, opts.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(e.Config().Viewport.FPS))

	app := NewApp(e, opts)
	app.Font = loadFont()
	defer app.Recorder.Close()

	app.RunLoop()
	return nil
}

func (a *App) RunLoop() {
	for a.Running && !rl.WindowShouldClose() {
		a.Update()
		a.Draw()
	}
	if a.Recorder.Recording() {
		a.Recorder.Cancel()
	}
}

func (a *App) Update() {
	dt := time.Duration(float64(rl.GetFrameTime()) * float64(time.Second))

	if rl.IsWindowResized() {
		w, h := rl.GetScreenWidth(), rl.GetScreenHeight()
		a.Engine.Resize(w, h)
	}

	for key, name := range keyNames {
		if rl.IsKeyPressed(key) {
			a.Command(control.ParseKey(name))
		}
	}

	a.updatePointer()
	a.Engine.Tick(dt)
	if a.Engine.ExitRequested() {
		a.log.Info("exit gesture, closing window")
		a.Running = false
	}

	stats := a.Engine.Snapshot()
	a.FPS.Push(stats.FPS)
	a.Energy.Push(stats.Energy)

	if a.Recorder.Recording() {
		done := a.Recorder.Advance(dt, storage.Sample{
			FPS:       stats.FPS,
			Energy:    stats.Energy,
			MeanSpeed: stats.MeanSpeed,
			Particles: stats.Particles,
		})
		if done {
			a.saveCapture(stats)
		}
	}

	if a.message != "" {
		a.messageAge += dt
		if a.messageAge > messageTTL {
			a.message = ""
		}
	}
}

// updatePointer anchors the field under the mouse in the current mode.
func (a *App) updatePointer() {
	pos := rl.GetMousePosition()
	a.Manual.Point(float64(pos.X), float64(pos.Y))

	buttons := gesture.Buttons{
		Left:   rl.IsMouseButtonDown(rl.MouseLeftButton),
		Middle: rl.IsMouseButtonDown(rl.MouseMiddleButton),
		Right:  rl.IsMouseButtonDown(rl.MouseRightButton),
	}
	a.Engine.Point(a.Pointer.Update(float64(pos.X), float64(pos.Y), buttons))
}

// Command handles one user command, engine commands first.
func (a *App) Command(c control.Command) {
	if a.Manual.Apply(c) {
		a.log.Debug("command", "name", c.String())
		switch c {
		case control.CyclePalette:
			a.flash("palette: " + a.Engine.Palette())
		case control.TogglePerformance:
			a.flash(fmt.Sprintf("performance: %v", a.Manual.UserPerformance()))
		case control.ToggleTrails:
			a.flash(fmt.Sprintf("trails: %v", a.Engine.Pipeline().Trails()))
		case control.VolumeUp, control.VolumeDown:
			if a.Manual.Audio != nil {
				a.flash(fmt.Sprintf("volume: %.0f%%", a.Manual.Audio.Volume()*100))
			}
		case control.ToggleAmbient:
			if a.Manual.Audio != nil {
				a.flash(fmt.Sprintf("ambient: %v", a.Manual.Audio.Ambient()))
			}
		case control.ToggleBinaural:
			if a.Manual.Audio != nil {
				a.flash(fmt.Sprintf("binaural: %v", a.Manual.Audio.Binaural()))
			}
		}
		return
	}
	switch c {
	case control.Record:
		if a.Recorder.Recording() {
			a.Recorder.Cancel()
			a.flash("recording cancelled")
			return
		}
		a.Recorder.Start()
	case control.ToggleHUD:
		a.ShowHUD = !a.ShowHUD
	case control.Quit:
		a.Running = false
	}
}

func (a *App) saveCapture(stats sim.Stats) {
	if a.Store == nil {
		a.Recorder.Cancel()
		return
	}
	meta := storage.CaptureMetadata{
		Seed:      a.Engine.Config().Seed,
		Mode:      stats.Mode.String(),
		Palette:   stats.Palette,
		Particles: stats.Particles,
		Metrics:   map[string]float64{"energy": stats.Energy, "mean_speed": stats.MeanSpeed},
	}
	id, err := a.Recorder.Save(a.Store, meta)
	if err != nil {
		a.log.Error("save capture", "error", err)
		a.flash("capture failed")
		return
	}
	a.log.Info("capture saved", "id", id)
	a.flash("saved " + id)
}

func (a *App) flash(msg string) {
	a.message = msg
	a.messageAge = 0
}

func (a *App) Draw() {
	rl.BeginDrawing()
	tier := a.Engine.Render(a.surface)
	if a.ShowHUD {
		a.DrawHUD(tier)
	}
	rl.EndDrawing()
}

func (a *App) DrawHUD(tier render.Tier) {
	stats := a.Engine.Snapshot()
	w, h := rl.GetScreenWidth(), rl.GetScreenHeight()

	a.drawText("glowfield", 30, 30, 24, ColText)
	a.drawText(fmt.Sprintf(":: %s  %s  %s", stats.Mode, stats.Palette, tier), 170, 34, 16, ColTextDim)
	a.drawText(fmt.Sprintf("%d/%d", stats.Particles, stats.Capacity), 30, 60, 14, ColTextDim)
	if stats.Idle {
		a.drawText("IDLE", w-90, 30, 16, ColTextDim)
	}

	if a.Recorder.Recording() {
		p := a.Recorder.Progress()
		rl.DrawCircle(int32(w-120), 38, 6, ColRecord)
		rl.DrawRectangle(int32(w-105), 34, int32(70*p), 8, ColRecord)
	}

	DrawTelemetry(a.FPS.Values(), 30, h-110, 300, 50, ColAccent)
	a.drawText(fmt.Sprintf("%.0f FPS", stats.FPS), 340, h-70, 14, ColText)

	a.drawText("[1/2/3] MODE  [B]URST  [W]AVE  [E]NERGY  [C]HAOS  [P]ERF  [N] PALETTE  [T]RAILS  [A]MBIENT  [+/-] VOL  [R]EC  [Q]UIT", 30, h-40, 14, ColTextDim)
	if a.message != "" {
		a.drawText(a.message, 30, 84, 14, ColAccent)
	}
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}
