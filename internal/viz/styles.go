package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles is the panel style set derived from a Theme.
type Styles struct {
	Panel     lipgloss.Style
	Title     lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Graph     lipgloss.Style
	Help      lipgloss.Style
	Message   lipgloss.Style
	Running   lipgloss.Style
	Idle      lipgloss.Style
	Recording lipgloss.Style

	SparkHigh lipgloss.Style
	SparkMid  lipgloss.Style
	SparkLow  lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1).
			Width(panelWidth),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Secondary).
			MarginBottom(1),
		Label:   lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		Value:   lipgloss.NewStyle().Foreground(t.Text).Bold(true),
		Graph:   lipgloss.NewStyle().Foreground(t.Secondary),
		Help:    lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1),
		Message: lipgloss.NewStyle().Foreground(t.Accent),
		Running: lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		Idle:    lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		Recording: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Error).
			Blink(true),

		SparkHigh: lipgloss.NewStyle().Foreground(t.Success),
		SparkMid:  lipgloss.NewStyle().Foreground(t.Warning),
		SparkLow:  lipgloss.NewStyle().Foreground(t.Error),
	}
}

// ProgressBar renders percent in [0, 1] as a bar of the given width.
func (s Styles) ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	if percent > 0.8 {
		return s.SparkHigh.Render(bar)
	} else if percent > 0.4 {
		return s.SparkMid.Render(bar)
	}
	return s.SparkLow.Render(bar)
}

// Sparkline renders the last width values with block characters.
func (s Styles) Sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var result strings.Builder
	for _, v := range values {
		norm := (v - lo) / rng
		idx := int(norm * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))

		c := string(chars[idx])
		if norm > 0.7 {
			result.WriteString(s.SparkHigh.Render(c))
		} else if norm > 0.3 {
			result.WriteString(s.SparkMid.Render(c))
		} else {
			result.WriteString(s.SparkLow.Render(c))
		}
	}
	return result.String()
}
