package field

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownMode = errors.New("field: unknown mode")

// Mode selects the vector-field shape applied around the anchor.
type Mode int

const (
	Neutral Mode = iota
	Attract
	Repel
	Swirl
)

var modeNames = [...]string{
	Neutral: "neutral",
	Attract: "attract",
	Repel:   "repel",
	Swirl:   "swirl",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range modeNames {
		if n == name {
			return Mode(m), nil
		}
	}
	return Neutral, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Next cycles attract → repel → swirl → attract. Neutral advances to attract.
func (m Mode) Next() Mode {
	switch m {
	case Attract:
		return Repel
	case Repel:
		return Swirl
	default:
		return Attract
	}
}
