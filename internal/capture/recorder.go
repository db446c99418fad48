// Package capture records short animated clips of the field. Recording
// pins the renderer to the performance tier so the clip does not drag
// the live frame rate down.
package capture

import (
	"errors"
	"image"
	"image/color/palette"
	"image/gif"
	"log/slog"
	"math"
	"time"

	"golang.org/x/image/draw"

	"github.com/san-kum/glowfield/internal/raster"
	"github.com/san-kum/glowfield/internal/render"
	"github.com/san-kum/glowfield/internal/storage"
)

var ErrNotRecording = errors.New("capture: not recording")

const (
	DefaultDuration = 5 * time.Second
	DefaultFPS      = 20
	DefaultScale    = 0.5
)

// Source is what a recorder films.
type Source interface {
	ForcePerformance(on bool)
	Render(s render.Surface) render.Tier
	Size() (int, int)
}

type Recorder struct {
	Duration time.Duration
	FPS      int
	Scale    float64

	src    Source
	canvas *raster.Canvas
	log    *slog.Logger

	recording bool
	elapsed   time.Duration
	nextFrame time.Duration
	frames    []*image.Paletted
	samples   []storage.Sample
}

func NewRecorder(src Source, duration time.Duration, fps int, scale float64, log *slog.Logger) *Recorder {
	if duration <= 0 {
		duration = DefaultDuration
	}
	if fps <= 0 {
		fps = DefaultFPS
	}
	if scale <= 0 || scale > 1 {
		scale = DefaultScale
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Recorder{Duration: duration, FPS: fps, Scale: scale, src: src, log: log}
}

func (r *Recorder) Recording() bool { return r.recording }

// Progress is the fraction of the clip recorded so far.
func (r *Recorder) Progress() float64 {
	if !r.recording {
		return 0
	}
	return math.Min(1, float64(r.elapsed)/float64(r.Duration))
}

func (r *Recorder) Frames() int { return len(r.frames) }

func (r *Recorder) Start() {
	w, h := r.src.Size()
	if r.canvas == nil {
		r.canvas = raster.New(w, h)
	} else if cw, ch := r.canvas.Size(); cw != w || ch != h {
		if err := r.canvas.Resize(w, h); err != nil {
			r.canvas = raster.New(w, h)
		}
	}
	r.recording = true
	r.elapsed = 0
	r.nextFrame = 0
	r.frames = r.frames[:0]
	r.samples = r.samples[:0]
	r.src.ForcePerformance(true)
	r.log.Info("recording started", "duration", r.Duration, "fps", r.FPS)
}

// Advance moves the recording clock by dt and grabs a frame whenever one
// is due. It reports true once the clip is complete; the caller then
// calls Finish.
func (r *Recorder) Advance(dt time.Duration, sample storage.Sample) bool {
	if !r.recording {
		return false
	}
	interval := time.Second / time.Duration(r.FPS)
	for r.elapsed >= r.nextFrame && r.nextFrame < r.Duration {
		sample.Time = r.nextFrame.Seconds()
		r.grab(sample)
		r.nextFrame += interval
	}
	r.elapsed += dt
	return r.elapsed >= r.Duration
}

func (r *Recorder) grab(sample storage.Sample) {
	r.src.Render(r.canvas)
	src := r.canvas.Image()

	b := src.Bounds()
	w := max(1, int(float64(b.Dx())*r.Scale))
	h := max(1, int(float64(b.Dy())*r.Scale))

	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), src, b, draw.Src, nil)

	frame := image.NewPaletted(scaled.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(frame, frame.Bounds(), scaled, image.Point{})

	r.frames = append(r.frames, frame)
	r.samples = append(r.samples, sample)
}

// Finish stops recording, releases the performance override and returns
// the clip with its telemetry.
func (r *Recorder) Finish() (*gif.GIF, []storage.Sample, error) {
	if !r.recording {
		return nil, nil, ErrNotRecording
	}
	r.recording = false
	r.src.ForcePerformance(false)

	delay := int(math.Round(100 / float64(r.FPS)))
	anim := &gif.GIF{LoopCount: 0}
	for _, f := range r.frames {
		anim.Image = append(anim.Image, f)
		anim.Delay = append(anim.Delay, delay)
	}
	samples := append([]storage.Sample(nil), r.samples...)
	r.log.Info("recording finished", "frames", len(anim.Image))
	return anim, samples, nil
}

// Cancel abandons the clip.
func (r *Recorder) Cancel() {
	if !r.recording {
		return
	}
	r.recording = false
	r.frames = r.frames[:0]
	r.samples = r.samples[:0]
	r.src.ForcePerformance(false)
}

// Save finishes the clip and stores it.
func (r *Recorder) Save(st *storage.Store, meta storage.CaptureMetadata) (string, error) {
	anim, samples, err := r.Finish()
	if err != nil {
		return "", err
	}
	if meta.FPS == 0 {
		meta.FPS = r.FPS
	}
	if meta.Duration == 0 {
		meta.Duration = r.Duration.Seconds()
	}
	if len(anim.Image) > 0 {
		b := anim.Image[0].Bounds()
		meta.Width, meta.Height = b.Dx(), b.Dy()
	}
	return st.SaveCapture(meta, anim, samples)
}

func (r *Recorder) Close() error {
	if r.canvas == nil {
		return nil
	}
	err := r.canvas.Close()
	r.canvas = nil
	return err
}
