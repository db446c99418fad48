package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/glowfield/internal/field"
	"github.com/san-kum/glowfield/internal/particle"
)

var ErrInvalidConfig = errors.New("config: invalid value")

const (
	DefaultWidth     = 1280
	DefaultHeight    = 720
	DefaultParticles = 500
	DefaultFPS       = 60
	DefaultBurst     = 30
	DefaultVolume    = 0.7
)

type Config struct {
	Seed      int64          `yaml:"seed"`
	Viewport  ViewportConfig `yaml:"viewport"`
	Particles ParticleConfig `yaml:"particles"`
	Field     FieldConfig    `yaml:"field"`
	Render    RenderConfig   `yaml:"render"`
	Effects   EffectsConfig  `yaml:"effects"`
	Gesture   GestureConfig  `yaml:"gesture"`
	Audio     AudioConfig    `yaml:"audio"`
	Capture   CaptureConfig  `yaml:"capture"`
}

type ViewportConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	FPS    int `yaml:"fps"`
}

type ParticleConfig struct {
	Count   int    `yaml:"count"`
	Palette string `yaml:"palette"`
}

type FieldConfig struct {
	Mode     string  `yaml:"mode"`
	Radius   float64 `yaml:"radius"`
	Strength float64 `yaml:"strength"`
}

type RenderConfig struct {
	Performance bool          `yaml:"performance"`
	Indicator   bool          `yaml:"indicator"`
	Trails      bool          `yaml:"trails"`
	Adaptive    bool          `yaml:"adaptive"`
	LowFPS      float64       `yaml:"low_fps"`
	HighFPS     float64       `yaml:"high_fps"`
	Hold        time.Duration `yaml:"hold"`
}

type EffectsConfig struct {
	BurstCount    int           `yaml:"burst_count"`
	WaveDuration  time.Duration `yaml:"wave_duration"`
	ChaosDuration time.Duration `yaml:"chaos_duration"`
	IdleAfter     time.Duration `yaml:"idle_after"`
}

type GestureConfig struct {
	Sensitivity   float64       `yaml:"sensitivity"`
	SpawnCooldown time.Duration `yaml:"spawn_cooldown"`
	Smoothing     float64       `yaml:"smoothing"`
}

type AudioConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Volume   float64       `yaml:"volume"`
	Cooldown time.Duration `yaml:"cooldown"`
	Ambient  bool          `yaml:"ambient"`
	Binaural bool          `yaml:"binaural"`
}

type CaptureConfig struct {
	Duration time.Duration `yaml:"duration"`
	FPS      int           `yaml:"fps"`
	Scale    float64       `yaml:"scale"`
}

func DefaultConfig() *Config {
	return &Config{
		Seed: 1,
		Viewport: ViewportConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
			FPS:    DefaultFPS,
		},
		Particles: ParticleConfig{
			Count:   DefaultParticles,
			Palette: "default",
		},
		Field: FieldConfig{
			Mode:     "attract",
			Radius:   field.DefaultRadius,
			Strength: field.DefaultStrength,
		},
		Render: RenderConfig{
			Indicator: true,
			Trails:    true,
			Adaptive:  true,
			LowFPS:    45,
			HighFPS:   55,
			Hold:      2 * time.Second,
		},
		Effects: EffectsConfig{
			BurstCount:    DefaultBurst,
			WaveDuration:  2 * time.Second,
			ChaosDuration: 3 * time.Second,
			IdleAfter:     20 * time.Second,
		},
		Gesture: GestureConfig{
			Sensitivity:   1.0,
			SpawnCooldown: 500 * time.Millisecond,
			Smoothing:     6.0,
		},
		Audio: AudioConfig{
			Enabled:  true,
			Volume:   DefaultVolume,
			Cooldown: 80 * time.Millisecond,
			Ambient:  true,
		},
		Capture: CaptureConfig{
			Duration: 5 * time.Second,
			FPS:      20,
			Scale:    0.5,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Viewport.Width <= 0 || c.Viewport.Height <= 0:
		return fmt.Errorf("%w: viewport %dx%d", ErrInvalidConfig, c.Viewport.Width, c.Viewport.Height)
	case c.Viewport.FPS <= 0:
		return fmt.Errorf("%w: fps %d", ErrInvalidConfig, c.Viewport.FPS)
	case c.Particles.Count < 0:
		return fmt.Errorf("%w: particle count %d", ErrInvalidConfig, c.Particles.Count)
	case c.Field.Radius <= 0:
		return fmt.Errorf("%w: field radius %f", ErrInvalidConfig, c.Field.Radius)
	case c.Field.Strength < 0:
		return fmt.Errorf("%w: field strength %f", ErrInvalidConfig, c.Field.Strength)
	case c.Audio.Volume < 0 || c.Audio.Volume > 1:
		return fmt.Errorf("%w: volume %f", ErrInvalidConfig, c.Audio.Volume)
	case c.Capture.Duration <= 0 || c.Capture.FPS <= 0:
		return fmt.Errorf("%w: capture %s at %d fps", ErrInvalidConfig, c.Capture.Duration, c.Capture.FPS)
	case c.Capture.Scale <= 0 || c.Capture.Scale > 1:
		return fmt.Errorf("%w: capture scale %f", ErrInvalidConfig, c.Capture.Scale)
	}
	if _, err := field.ParseMode(c.Field.Mode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, ok := particle.GetPalette(c.Particles.Palette); !ok {
		return fmt.Errorf("%w: unknown palette %q", ErrInvalidConfig, c.Particles.Palette)
	}
	return nil
}

// Mode parses Field.Mode, falling back to attract.
func (c *Config) Mode() field.Mode {
	m, err := field.ParseMode(c.Field.Mode)
	if err != nil {
		return field.Attract
	}
	return m
}

// FrameInterval is the target time between ticks.
func (c *Config) FrameInterval() time.Duration {
	if c.Viewport.FPS <= 0 {
		return time.Second / DefaultFPS
	}
	return time.Second / time.Duration(c.Viewport.FPS)
}
