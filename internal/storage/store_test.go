package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/glowfield/internal/particle"
)

func testGIF(frames int) *gif.GIF {
	pal := color.Palette{color.Black, color.White}
	anim := &gif.GIF{}
	for i := 0; i < frames; i++ {
		img := image.NewPaletted(image.Rect(0, 0, 4, 4), pal)
		img.SetColorIndex(i%4, 0, 1)
		anim.Image = append(anim.Image, img)
		anim.Delay = append(anim.Delay, 5)
	}
	return anim
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta := CaptureMetadata{
		Seed:      42,
		Mode:      "swirl",
		Particles: 500,
		Width:     640,
		Height:    360,
		FPS:       20,
		Duration:  5,
		Metrics:   map[string]float64{"energy": 1.5},
	}
	samples := []Sample{
		{Time: 0, FPS: 20, Energy: 1.5, MeanSpeed: 0.7, Particles: 500},
		{Time: 0.05, FPS: 19.5, Energy: 1.4, MeanSpeed: 0.69, Particles: 510},
	}

	id, err := st.SaveCapture(meta, testGIF(3), samples)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty capture id")
	}

	loaded, err := st.Load(id)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Mode != "swirl" || loaded.Seed != 42 || loaded.Frames != 3 {
		t.Errorf("metadata = %+v", loaded)
	}
	if loaded.Metrics["energy"] != 1.5 {
		t.Errorf("metrics = %v", loaded.Metrics)
	}

	anim, err := st.LoadGIF(id)
	if err != nil {
		t.Fatalf("load gif failed: %v", err)
	}
	if len(anim.Image) != 3 {
		t.Errorf("frames = %d, want 3", len(anim.Image))
	}

	got, err := st.LoadTelemetry(id)
	if err != nil {
		t.Fatalf("load telemetry failed: %v", err)
	}
	if len(got) != 2 || got[1].Particles != 510 || got[1].FPS != 19.5 {
		t.Errorf("telemetry = %+v", got)
	}
}

func TestSaveCapture_NoFrames(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.SaveCapture(CaptureMetadata{}, &gif.GIF{}, nil); !errors.Is(err, ErrNoFrames) {
		t.Errorf("err = %v, want ErrNoFrames", err)
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	caps, err := st.List()
	if err != nil || len(caps) != 0 {
		t.Fatalf("empty list = %v, %v", caps, err)
	}

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, mode := range []string{"attract", "repel"} {
		meta := CaptureMetadata{Mode: mode, Timestamp: base.Add(time.Duration(i) * time.Minute)}
		if _, err := st.SaveCapture(meta, testGIF(1), nil); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	caps, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(caps) != 2 {
		t.Fatalf("captures = %d, want 2", len(caps))
	}
	if caps[0].Mode != "repel" {
		t.Errorf("newest first: got %s", caps[0].Mode)
	}
}

func TestList_MissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "nope"))
	caps, err := st.List()
	if err != nil || len(caps) != 0 {
		t.Errorf("List() = %v, %v", caps, err)
	}
}

func TestExportJSON(t *testing.T) {
	s := particle.NewStore(100, 50, 1)
	s.Create(4, nil)

	var buf bytes.Buffer
	if err := WriteJSON(&buf, NewExportData(s, "attract", 10, nil)); err != nil {
		t.Fatal(err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Particles) != 4 || got.Width != 100 || got.Mode != "attract" {
		t.Errorf("export = %+v", got)
	}
	if got.Particles[2].X != s.At(2).X {
		t.Errorf("particle 2 x = %v, want %v", got.Particles[2].X, s.At(2).X)
	}
}
