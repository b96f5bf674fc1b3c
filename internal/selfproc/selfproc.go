// Package selfproc tracks the monitor's own CPU and memory consumption so it
// can be shown separately from system-wide totals.
package selfproc

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/Dicklesworthstone/moonlight/internal/model"
	"github.com/Dicklesworthstone/moonlight/internal/rate"
)

type handle interface {
	TimesWithContext(ctx context.Context) (*cpu.TimesStat, error)
	MemoryInfoWithContext(ctx context.Context) (*process.MemoryInfoStat, error)
}

// Tracker holds the handle to the current process for its whole lifetime.
type Tracker struct {
	pid  int
	proc handle
	cpu  rate.Wall
	now  func() time.Time
}

// New resolves the current process once.
func New(ctx context.Context) (*Tracker, error) {
	pid := os.Getpid()
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return nil, fmt.Errorf("selfproc: open pid %d: %w", pid, err)
	}
	return &Tracker{pid: pid, proc: p, now: time.Now}, nil
}

func (t *Tracker) PID() int { return t.pid }

// Sample reports CPU percent since the previous call (0 on the first call),
// resident memory, and resident memory as a share of totalMem. A zero
// totalMem leaves MemoryPercent Unavailable.
func (t *Tracker) Sample(ctx context.Context, totalMem uint64) (model.Self, error) {
	times, err := t.proc.TimesWithContext(ctx)
	if err != nil {
		return model.Self{}, fmt.Errorf("selfproc: cpu times: %w", err)
	}
	mi, err := t.proc.MemoryInfoWithContext(ctx)
	if err != nil {
		return model.Self{}, fmt.Errorf("selfproc: memory info: %w", err)
	}
	s := model.Self{
		PID:         t.pid,
		CPUPercent:  t.cpu.Observe(times.User+times.System, t.now()),
		MemoryBytes: mi.RSS,
	}
	if totalMem > 0 {
		s.MemoryPercent = model.Some(float64(mi.RSS) / float64(totalMem) * 100)
	}
	return s, nil
}
