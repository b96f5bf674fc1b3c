// Package ranking produces the best-effort "top processes" list.
//
// Enumeration stops after ScanLimit processes have been read successfully, so
// the result is the busiest of the first processes the OS hands back, not a
// global top-N. This bounds tick latency on hosts with thousands of PIDs.
package ranking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/Dicklesworthstone/moonlight/internal/model"
	"github.com/Dicklesworthstone/moonlight/internal/rate"
)

const (
	DefaultScanLimit = 8
	DefaultShowLimit = 7
	// NameWidth is the display width process names are truncated to.
	NameWidth = 25
)

// Handle is the subset of *process.Process the ranker reads.
type Handle interface {
	PID() int32
	NameWithContext(ctx context.Context) (string, error)
	TimesWithContext(ctx context.Context) (*cpu.TimesStat, error)
	MemoryPercentWithContext(ctx context.Context) (float32, error)
}

type proc struct{ *process.Process }

func (p proc) PID() int32 { return p.Pid }

// openProcess builds a handle for one PID. It runs only for PIDs the
// enumeration actually reaches, so the scan cap also bounds this work.
func openProcess(ctx context.Context, pid int32) (Handle, error) {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return nil, err
	}
	return proc{p}, nil
}

// Ranker keeps per-PID CPU baselines between ticks.
type Ranker struct {
	SelfPID   int32
	ScanLimit int
	ShowLimit int

	pids     func(ctx context.Context) ([]int32, error)
	open     func(ctx context.Context, pid int32) (Handle, error)
	now      func() time.Time
	baseline map[int32]*rate.Wall
}

// New returns a Ranker that never reports selfPID.
func New(selfPID int) *Ranker {
	return &Ranker{
		SelfPID:   int32(selfPID),
		ScanLimit: DefaultScanLimit,
		ShowLimit: DefaultShowLimit,
		pids:      process.PidsWithContext,
		open:      openProcess,
		now:       time.Now,
		baseline:  make(map[int32]*rate.Wall),
	}
}

// Rank enumerates processes and returns at most ShowLimit rows sorted by CPU
// percent, descending. Processes that exit or deny access while being read
// are skipped silently. Equal CPU values keep enumeration order.
func (r *Ranker) Rank(ctx context.Context) ([]model.ProcessInfo, error) {
	pids, err := r.pids(ctx)
	if err != nil {
		return nil, fmt.Errorf("ranking: list processes: %w", err)
	}
	now := r.now()
	seen := make(map[int32]struct{}, r.ScanLimit)
	rows := make([]model.ProcessInfo, 0, r.ScanLimit)

	for _, pid := range pids {
		if len(rows) >= r.ScanLimit {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if pid == r.SelfPID {
			continue
		}
		h, err := r.open(ctx, pid)
		if err != nil {
			continue
		}
		row, cpuSeconds, ok := read(ctx, h)
		if !ok {
			continue
		}
		w, exists := r.baseline[pid]
		if !exists {
			w = &rate.Wall{}
			r.baseline[pid] = w
		}
		row.CPUPercent = w.Observe(cpuSeconds, now)
		seen[pid] = struct{}{}
		rows = append(rows, row)
	}

	for pid := range r.baseline {
		if _, ok := seen[pid]; !ok {
			delete(r.baseline, pid)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CPUPercent > rows[j].CPUPercent })
	if len(rows) > r.ShowLimit {
		rows = rows[:r.ShowLimit]
	}
	return rows, nil
}

func read(ctx context.Context, h Handle) (model.ProcessInfo, float64, bool) {
	name, err := h.NameWithContext(ctx)
	if err != nil || name == "" {
		return model.ProcessInfo{}, 0, false
	}
	times, err := h.TimesWithContext(ctx)
	if err != nil || times == nil {
		return model.ProcessInfo{}, 0, false
	}
	memPct, err := h.MemoryPercentWithContext(ctx)
	if err != nil {
		return model.ProcessInfo{}, 0, false
	}
	return model.ProcessInfo{
		PID:           int(h.PID()),
		Name:          truncate(name, NameWidth),
		MemoryPercent: float64(memPct),
	}, times.User + times.System, true
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
