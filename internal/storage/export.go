package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/glowfield/internal/particle"
)

type ParticleState struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Radius float64 `json:"radius"`
	Hue    float64 `json:"hue"`
}

type ExportData struct {
	Width     float64            `json:"width"`
	Height    float64            `json:"height"`
	Mode      string             `json:"mode"`
	Ticks     int                `json:"ticks"`
	Metrics   map[string]float64 `json:"metrics"`
	Particles []ParticleState    `json:"particles"`
}

func NewExportData(s *particle.Store, mode string, ticks int, metrics map[string]float64) ExportData {
	w, h := s.Bounds()
	data := ExportData{
		Width:     w,
		Height:    h,
		Mode:      mode,
		Ticks:     ticks,
		Metrics:   metrics,
		Particles: make([]ParticleState, s.Len()),
	}
	s.Each(func(i int, p *particle.Particle) {
		data.Particles[i] = ParticleState{
			X: p.X, Y: p.Y, VX: p.VX, VY: p.VY,
			Radius: p.Radius, Hue: p.Hue,
		}
	})
	return data
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}
