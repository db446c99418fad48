package raster

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"log/slog"
	"strings"
	"testing"

	"github.com/san-kum/glowfield/internal/field"
	"github.com/san-kum/glowfield/internal/particle"
	"github.com/san-kum/glowfield/internal/render"
)

func luminance(c *Canvas, x, y int) uint32 {
	r, g, b, _ := c.Image().At(x, y).RGBA()
	return r + g + b
}

func TestCanvas_Clear(t *testing.T) {
	c := New(32, 32)
	defer c.Close()

	c.Clear(render.RGB8(255, 0, 0))
	r, g, b, _ := c.Image().At(5, 5).RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("expected red, got %d %d %d", r>>8, g>>8, b>>8)
	}
}

func TestCanvas_FillCircle(t *testing.T) {
	c := New(64, 64)
	defer c.Close()

	c.Clear(render.Color{A: 1})
	c.FillCircle(32, 32, 10, render.White)

	if luminance(c, 32, 32) <= luminance(c, 2, 2) {
		t.Error("expected circle center to be brighter than background")
	}
}

func TestCanvas_AdditiveGlowBrightens(t *testing.T) {
	c := New(64, 64)
	defer c.Close()

	c.Clear(render.RGB8(40, 40, 40))
	before := luminance(c, 32, 32)

	c.BeginAdditive()
	c.GlowCircle(32, 32, 20, render.RGB8(0, 0, 200))
	c.EndAdditive()

	if luminance(c, 32, 32) <= before {
		t.Error("expected glow pass to lighten the frame")
	}
	if luminance(c, 1, 1) != before {
		t.Error("glow leaked outside its radius")
	}
}

func TestCanvas_RenderQuality(t *testing.T) {
	c := New(200, 150)
	defer c.Close()

	store := particle.NewStore(200, 150, 3)
	store.Create(40, particle.SpreadHue)
	st := field.NewState(100, 0.5)
	st.SetAnchor(100, 75, true)

	p := render.NewPipeline()
	if tier := p.Render(c, store, st); tier != render.TierQuality {
		t.Fatalf("expected quality tier, got %v", tier)
	}

	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 150 {
		t.Errorf("unexpected bounds %v", b)
	}
}

func TestCanvas_Resize(t *testing.T) {
	c := New(10, 10)
	defer c.Close()

	c.BeginAdditive()
	if err := c.Resize(40, 20); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if w, h := c.Size(); w != 40 || h != 20 {
		t.Errorf("expected 40x20, got %dx%d", w, h)
	}
	c.EndAdditive()
}

func TestCheck_LogsDrawErrors(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)

	check("fill", nil)
	if buf.Len() != 0 {
		t.Fatalf("successful op logged: %q", buf.String())
	}

	check("stroke", errors.New("empty path"))
	out := buf.String()
	for _, want := range []string{"level=DEBUG", "op=stroke", `error="empty path"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %s", out, want)
		}
	}
}

func TestSetLogger_NilSilences(t *testing.T) {
	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("default logger is enabled")
	}
}
