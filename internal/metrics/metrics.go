// Package metrics observes the particle population and frame timing.
package metrics

import "github.com/san-kum/glowfield/internal/particle"

// Metric accumulates one scalar over successive observations of the store.
type Metric interface {
	Name() string
	Observe(s *particle.Store)
	Value() float64
	Reset()
}
