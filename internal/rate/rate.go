// Package rate turns cumulative OS counters into point-in-time rates and
// percentages using consecutive-sample deltas. The first observation only
// establishes a baseline.
package rate

import "time"

// Busy converts cumulative busy/total CPU time counters, as found in
// /proc/stat, into the busy percentage of the interval between observations.
type Busy struct {
	prevBusy  float64
	prevTotal float64
	primed    bool
}

// Observe records the counters and returns the busy percentage since the
// previous call, clamped to 0-100. The first call returns 0.
func (b *Busy) Observe(busy, total float64) float64 {
	prevBusy, prevTotal, primed := b.prevBusy, b.prevTotal, b.primed
	b.prevBusy, b.prevTotal, b.primed = busy, total, true
	if !primed {
		return 0
	}
	dt := total - prevTotal
	if dt <= 0 {
		return 0
	}
	return clamp(100*(busy-prevBusy)/dt, 0, 100)
}

// Wall converts a cumulative CPU-seconds counter for a single process into
// the percentage of wall-clock time it was on-CPU. Multi-threaded processes
// may exceed 100.
type Wall struct {
	prev   float64
	at     time.Time
	primed bool
}

// Observe records cpuSeconds at now and returns the percentage since the
// previous call. The first call, a non-advancing clock, and a counter that
// went backwards all return 0.
func (w *Wall) Observe(cpuSeconds float64, now time.Time) float64 {
	prev, at, primed := w.prev, w.at, w.primed
	w.prev, w.at, w.primed = cpuSeconds, now, true
	if !primed {
		return 0
	}
	elapsed := now.Sub(at).Seconds()
	if elapsed <= 0 || cpuSeconds < prev {
		return 0
	}
	return 100 * (cpuSeconds - prev) / elapsed
}

// Counter derives a per-second rate from a monotonic byte counter.
type Counter struct {
	prev   uint64
	at     time.Time
	primed bool
}

// Observe records v at now. It reports false until a baseline exists or when
// no wall time elapsed. A counter that decreased (interface restart, wrap)
// yields 0 rather than a negative rate.
func (c *Counter) Observe(v uint64, now time.Time) (float64, bool) {
	prev, at, primed := c.prev, c.at, c.primed
	c.prev, c.at, c.primed = v, now, true
	if !primed {
		return 0, false
	}
	elapsed := now.Sub(at).Seconds()
	if elapsed <= 0 {
		return 0, false
	}
	if v < prev {
		return 0, true
	}
	return float64(v-prev) / elapsed, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
