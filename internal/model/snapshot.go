package model

import (
	"encoding/json"
	"time"
)

// CPU aggregates system-wide CPU usage.
type CPU struct {
	Percent Opt[float64] `json:"percent"` // 0-100
	Load1   Opt[float64] `json:"load1"`
}

// Memory captures virtual memory usage.
type Memory struct {
	Percent    Opt[float64] `json:"percent"`
	FreeBytes  Opt[uint64]  `json:"free_bytes"`
	TotalBytes Opt[uint64]  `json:"total_bytes"`
}

// Disk captures usage of a single mount point.
type Disk struct {
	Path      string       `json:"path"`
	Percent   Opt[float64] `json:"percent"`
	FreeBytes Opt[uint64]  `json:"free_bytes"`
}

// Network holds cumulative byte counters across all interfaces and the
// per-second rates derived from consecutive ticks.
type Network struct {
	SentBytes Opt[uint64]  `json:"sent_bytes"`
	RecvBytes Opt[uint64]  `json:"recv_bytes"`
	SentRate  Opt[float64] `json:"sent_rate"` // bytes/s
	RecvRate  Opt[float64] `json:"recv_rate"` // bytes/s
}

// GPU holds the first device reported by the vendor tool.
type GPU struct {
	Name          string       `json:"name,omitempty"`
	Percent       Opt[float64] `json:"percent"`
	MemoryPercent Opt[float64] `json:"memory_percent"`
	TempC         Opt[float64] `json:"temp_c"`
}

// Self is the monitor's own resource usage.
type Self struct {
	PID           int     `json:"pid"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryBytes   uint64  `json:"memory_bytes"`
	MemoryPercent Opt[float64] `json:"memory_percent"` // of total system memory
}

// ProcessInfo is one row of the process ranking. PIDs are only unique at the
// instant of sampling and must not be used to correlate rows across ticks.
type ProcessInfo struct {
	PID           int     `json:"pid"`
	Name          string  `json:"name"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
}

// Snapshot is the immutable result of one tick. It is handed to the
// presentation layer by value; Top is freshly allocated every tick.
type Snapshot struct {
	Timestamp time.Time     `json:"timestamp"`
	Interval  Millis        `json:"interval_ms"`
	CPU       CPU           `json:"cpu"`
	Memory    Memory        `json:"memory"`
	Disk      Disk          `json:"disk"`
	Network   Network       `json:"network"`
	GPU       GPU           `json:"gpu"`
	TempC     Opt[float64]  `json:"temp_c"`
	Self      Self          `json:"self"`
	Top       []ProcessInfo `json:"top"`
	Status    Status        `json:"status"`
	// Failed names the metrics whose adapters errored (not merely Unavailable) this tick.
	Failed []string `json:"failed,omitempty"`
}

// History carries chronological copies of the trend buffers, oldest first.
type History struct {
	CPU    []float64 `json:"cpu"`
	Memory []float64 `json:"memory"`
}

// Frame is what the sampler delivers to the presentation layer each tick.
type Frame struct {
	Snapshot Snapshot `json:"snapshot"`
	History  History  `json:"history"`
}

// Millis is a duration that encodes to JSON as whole milliseconds, the unit
// of the refresh_interval config key.
type Millis time.Duration

func (m Millis) Duration() time.Duration { return time.Duration(m) }

func (m Millis) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(m).Milliseconds())
}

func (m *Millis) UnmarshalJSON(b []byte) error {
	var ms int64
	if err := json.Unmarshal(b, &ms); err != nil {
		return err
	}
	*m = Millis(time.Duration(ms) * time.Millisecond)
	return nil
}
