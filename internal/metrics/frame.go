package metrics

import "time"

const DefaultFrameWindow = 60

// FrameRate keeps a rolling window of frame durations.
type FrameRate struct {
	window []time.Duration
	next   int
	filled bool
	sum    time.Duration

	below time.Duration
	above time.Duration
}

func NewFrameRate(size int) *FrameRate {
	if size <= 0 {
		size = DefaultFrameWindow
	}
	return &FrameRate{window: make([]time.Duration, size)}
}

func (f *FrameRate) Observe(dt time.Duration) {
	if dt <= 0 {
		return
	}
	f.sum -= f.window[f.next]
	f.window[f.next] = dt
	f.sum += dt
	f.next++
	if f.next == len(f.window) {
		f.next = 0
		f.filled = true
	}
}

func (f *FrameRate) Samples() int {
	if f.filled {
		return len(f.window)
	}
	return f.next
}

// FPS is the mean rate over the window, zero before the first sample.
func (f *FrameRate) FPS() float64 {
	n := f.Samples()
	if n == 0 || f.sum <= 0 {
		return 0
	}
	return float64(n) / f.sum.Seconds()
}

// Track feeds the sustained-threshold timers with one frame. It returns
// +1 once fps has stayed above high for hold, -1 once it has stayed below
// low for hold, and 0 otherwise.
func (f *FrameRate) Track(dt time.Duration, low, high float64, hold time.Duration) int {
	fps := f.FPS()
	switch {
	case fps > 0 && fps < low:
		f.below += dt
		f.above = 0
	case fps > high:
		f.above += dt
		f.below = 0
	default:
		f.below, f.above = 0, 0
	}
	if f.below >= hold {
		f.below = 0
		return -1
	}
	if f.above >= hold {
		f.above = 0
		return 1
	}
	return 0
}

func (f *FrameRate) Reset() {
	for i := range f.window {
		f.window[i] = 0
	}
	f.next, f.filled, f.sum = 0, false, 0
	f.below, f.above = 0, 0
}
