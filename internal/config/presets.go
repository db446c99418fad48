package config

import "sort"

type preset func(c *Config)

var Presets = map[string]preset{
	"calm": func(c *Config) {
		c.Particles.Count = 400
		c.Particles.Palette = "ocean"
		c.Field.Mode = "swirl"
		c.Field.Radius = 260
		c.Field.Strength = 0.3
		c.Audio.Binaural = true
	},
	"storm": func(c *Config) {
		c.Particles.Count = 900
		c.Particles.Palette = "sunset"
		c.Field.Mode = "repel"
		c.Field.Radius = 300
		c.Field.Strength = 1.4
		c.Effects.BurstCount = 60
	},
	"dense": func(c *Config) {
		c.Particles.Count = 2000
		c.Particles.Palette = "aurora"
		c.Render.Performance = true
		c.Render.Trails = false
	},
	"minimal": func(c *Config) {
		c.Particles.Count = 150
		c.Particles.Palette = "monochrome"
		c.Render.Indicator = false
		c.Render.Trails = false
		c.Audio.Enabled = false
	},
}

// GetPreset returns the defaults with the named preset applied, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

// Apply overlays the named preset onto c and reports whether it exists.
func (c *Config) Apply(name string) bool {
	apply, ok := Presets[name]
	if ok {
		apply(c)
	}
	return ok
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
