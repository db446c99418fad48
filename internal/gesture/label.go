// Package gesture translates hand or pointer input into field anchors and
// effect triggers. Recognition itself happens elsewhere; this package only
// sees a label and a normalized palm centre per hand.
package gesture

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownLabel = errors.New("gesture: unknown label")

type Label int

const (
	Neutral Label = iota
	Palm
	Fist
	Pinch
	Spread
	Merge
	Expand
)

var labelNames = [...]string{
	Neutral: "neutral",
	Palm:    "palm",
	Fist:    "fist",
	Pinch:   "pinch",
	Spread:  "spread",
	Merge:   "merge",
	Expand:  "expand",
}

func (l Label) String() string {
	if l < 0 || int(l) >= len(labelNames) {
		return "unknown"
	}
	return labelNames[l]
}

func ParseLabel(s string) (Label, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range labelNames {
		if name == s {
			return Label(i), nil
		}
	}
	return Neutral, fmt.Errorf("%w: %q", ErrUnknownLabel, s)
}

// TwoHanded reports whether the label only makes sense with a pair of hands.
func (l Label) TwoHanded() bool { return l == Merge || l == Expand }

// Hand is one detected hand. X and Y are in [0, 1]; VX and VY are the
// per-frame displacement in the same units.
type Hand struct {
	Label  Label
	X, Y   float64
	VX, VY float64
}
