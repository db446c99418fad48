package metrics

// History is a fixed-size ring of samples for telemetry charts.
type History struct {
	buf  []float64
	next int
	full bool
}

func NewHistory(size int) *History {
	if size <= 0 {
		size = 1
	}
	return &History{buf: make([]float64, size)}
}

func (h *History) Push(v float64) {
	h.buf[h.next] = v
	h.next = (h.next + 1) % len(h.buf)
	if h.next == 0 {
		h.full = true
	}
}

func (h *History) Len() int {
	if h.full {
		return len(h.buf)
	}
	return h.next
}

// Values returns samples oldest first.
func (h *History) Values() []float64 {
	if !h.full {
		out := make([]float64, h.next)
		copy(out, h.buf[:h.next])
		return out
	}
	out := make([]float64, 0, len(h.buf))
	out = append(out, h.buf[h.next:]...)
	return append(out, h.buf[:h.next]...)
}

func (h *History) Last() float64 {
	if h.Len() == 0 {
		return 0
	}
	return h.buf[(h.next-1+len(h.buf))%len(h.buf)]
}
