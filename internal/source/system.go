package source

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"

	"github.com/Dicklesworthstone/moonlight/internal/rate"
)

// CPU reports aggregate utilisation from the busy/total time delta since the
// previous sample. The first sample returns 0.
type CPU struct {
	times func(ctx context.Context, percpu bool) ([]cpu.TimesStat, error)
	busy  rate.Busy
}

func NewCPU() *CPU { return &CPU{times: cpu.TimesWithContext} }

func (c *CPU) Sample(ctx context.Context) (float64, error) {
	times, err := c.times(ctx, false)
	if err != nil {
		if isNotSupported(err) {
			return 0, ErrUnavailable
		}
		return 0, fmt.Errorf("source: cpu times: %w", err)
	}
	if len(times) == 0 {
		return 0, fmt.Errorf("source: cpu times: empty result")
	}
	cur := times[0]
	total := cur.Total()
	idle := cur.Idle + cur.Iowait
	return c.busy.Observe(total-idle, total), nil
}

// MemoryStat is a virtual memory reading.
type MemoryStat struct {
	Percent   float64
	FreeBytes uint64 // available to new allocations without swapping
	Total     uint64
}

type Memory struct {
	virtual func(ctx context.Context) (*mem.VirtualMemoryStat, error)
}

func NewMemory() *Memory { return &Memory{virtual: mem.VirtualMemoryWithContext} }

func (m *Memory) Sample(ctx context.Context) (MemoryStat, error) {
	vm, err := m.virtual(ctx)
	if err != nil {
		if isNotSupported(err) {
			return MemoryStat{}, ErrUnavailable
		}
		return MemoryStat{}, fmt.Errorf("source: virtual memory: %w", err)
	}
	if vm == nil || vm.Total == 0 {
		return MemoryStat{}, fmt.Errorf("source: virtual memory: zero total")
	}
	return MemoryStat{Percent: vm.UsedPercent, FreeBytes: vm.Available, Total: vm.Total}, nil
}

// DiskStat is the usage of one mount point.
type DiskStat struct {
	Percent   float64
	FreeBytes uint64
}

// Disk samples usage of the filesystem mounted at Path.
type Disk struct {
	Path  string
	usage func(ctx context.Context, path string) (*disk.UsageStat, error)
}

// DefaultDiskPath is the mount point sampled unless configured otherwise.
const DefaultDiskPath = "/"

func NewDisk(path string) *Disk {
	if path == "" {
		path = DefaultDiskPath
	}
	return &Disk{Path: path, usage: disk.UsageWithContext}
}

func (d *Disk) Sample(ctx context.Context) (DiskStat, error) {
	u, err := d.usage(ctx, d.Path)
	if err != nil {
		if isNotSupported(err) {
			return DiskStat{}, ErrUnavailable
		}
		return DiskStat{}, fmt.Errorf("source: disk usage %s: %w", d.Path, err)
	}
	return DiskStat{Percent: u.UsedPercent, FreeBytes: u.Free}, nil
}

// NetStat holds cumulative byte counters summed over all interfaces.
type NetStat struct {
	SentBytes uint64
	RecvBytes uint64
}

type Network struct {
	counters func(ctx context.Context, pernic bool) ([]net.IOCountersStat, error)
}

func NewNetwork() *Network { return &Network{counters: net.IOCountersWithContext} }

func (n *Network) Sample(ctx context.Context) (NetStat, error) {
	counters, err := n.counters(ctx, false)
	if err != nil {
		if isNotSupported(err) {
			return NetStat{}, ErrUnavailable
		}
		return NetStat{}, fmt.Errorf("source: net counters: %w", err)
	}
	if len(counters) == 0 {
		return NetStat{}, ErrUnavailable
	}
	return NetStat{SentBytes: counters[0].BytesSent, RecvBytes: counters[0].BytesRecv}, nil
}

// Load reports the 1-minute load average.
type Load struct {
	avg func(ctx context.Context) (*load.AvgStat, error)
}

func NewLoad() *Load { return &Load{avg: load.AvgWithContext} }

func (l *Load) Sample(ctx context.Context) (float64, error) {
	a, err := l.avg(ctx)
	if err != nil {
		if isNotSupported(err) {
			return 0, ErrUnavailable
		}
		return 0, fmt.Errorf("source: load average: %w", err)
	}
	return a.Load1, nil
}

var (
	_ Source[float64]    = (*CPU)(nil)
	_ Source[MemoryStat] = (*Memory)(nil)
	_ Source[DiskStat]   = (*Disk)(nil)
	_ Source[NetStat]    = (*Network)(nil)
	_ Source[float64]    = (*Load)(nil)
)
