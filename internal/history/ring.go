// Package history keeps fixed-capacity trend windows of metric samples.
package history

// DefaultCapacity is the number of samples kept per trended metric.
const DefaultCapacity = 30

// Ring is a FIFO window of the most recent samples. Pushing into a full ring
// evicts the oldest sample. A Ring is owned by a single goroutine.
type Ring struct {
	buf   []float64
	start int
	n     int
}

// New returns an empty ring. A non-positive capacity selects DefaultCapacity.
func New(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{buf: make([]float64, capacity)}
}

// Push appends v, evicting the oldest sample when the ring is full.
func (r *Ring) Push(v float64) {
	end := (r.start + r.n) % len(r.buf)
	r.buf[end] = v
	if r.n < len(r.buf) {
		r.n++
		return
	}
	r.start = (r.start + 1) % len(r.buf)
}

// Snapshot returns a copy of the samples in chronological order, oldest
// first. An empty ring yields an empty, non-nil slice.
func (r *Ring) Snapshot() []float64 {
	out := make([]float64, r.n)
	for i := 0; i < r.n; i++ {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

func (r *Ring) Len() int { return r.n }

func (r *Ring) Cap() int { return len(r.buf) }
