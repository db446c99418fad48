package audio

import (
	"sync"
	"time"

	"github.com/san-kum/glowfield/internal/cue"
)

// Throttle forwards cues to a sink, dropping repeats of the same cue that
// arrive within the cooldown.
type Throttle struct {
	mu       sync.Mutex
	sink     cue.Sink
	cooldown time.Duration
	last     map[cue.Cue]time.Time
	now      func() time.Time
}

func NewThrottle(sink cue.Sink, cooldown time.Duration) *Throttle {
	return &Throttle{
		sink:     sink,
		cooldown: cooldown,
		last:     make(map[cue.Cue]time.Time),
		now:      time.Now,
	}
}

func (t *Throttle) Play(c cue.Cue) {
	t.mu.Lock()
	now := t.now()
	if prev, ok := t.last[c]; ok && now.Sub(prev) < t.cooldown {
		t.mu.Unlock()
		return
	}
	t.last[c] = now
	t.mu.Unlock()
	t.sink.Play(c)
}
