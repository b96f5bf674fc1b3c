package source

import (
	"context"
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
)

func TestCPUSampleDelta(t *testing.T) {
	readings := [][]cpu.TimesStat{
		{{CPU: "cpu-total", User: 100, System: 50, Idle: 800, Iowait: 50}},
		{{CPU: "cpu-total", User: 150, System: 100, Idle: 850, Iowait: 50}},
	}
	c := NewCPU()
	call := 0
	c.times = func(context.Context, bool) ([]cpu.TimesStat, error) {
		r := readings[call]
		call++
		return r, nil
	}

	first, err := c.Sample(context.Background())
	if err != nil || first != 0 {
		t.Fatalf("first Sample = (%v, %v), want (0, nil)", first, err)
	}
	// total +150, idle +50 => busy 100/150.
	second, err := c.Sample(context.Background())
	if err != nil {
		t.Fatalf("second Sample: %v", err)
	}
	if second < 66.6 || second > 66.7 {
		t.Errorf("second Sample = %v, want ~66.67", second)
	}
}

func TestCPUSampleErrors(t *testing.T) {
	c := NewCPU()
	c.times = func(context.Context, bool) ([]cpu.TimesStat, error) {
		return nil, errors.New("open /proc/stat: permission denied")
	}
	if _, err := c.Sample(context.Background()); err == nil || errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want transient error", err)
	}

	c.times = func(context.Context, bool) ([]cpu.TimesStat, error) {
		return nil, errors.New("not implemented yet")
	}
	if _, err := c.Sample(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestMemorySample(t *testing.T) {
	m := NewMemory()
	m.virtual = func(context.Context) (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{Total: 16 << 30, Available: 4 << 30, UsedPercent: 75}, nil
	}
	got, err := m.Sample(context.Background())
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	want := MemoryStat{Percent: 75, FreeBytes: 4 << 30, Total: 16 << 30}
	if got != want {
		t.Errorf("Sample = %+v, want %+v", got, want)
	}

	m.virtual = func(context.Context) (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{}, nil
	}
	if _, err := m.Sample(context.Background()); err == nil {
		t.Error("expected error for zero total")
	}
}

func TestDiskSample(t *testing.T) {
	d := NewDisk("")
	if d.Path != DefaultDiskPath {
		t.Errorf("Path = %q, want %q", d.Path, DefaultDiskPath)
	}
	var gotPath string
	d.usage = func(_ context.Context, path string) (*disk.UsageStat, error) {
		gotPath = path
		return &disk.UsageStat{UsedPercent: 42.5, Free: 1234}, nil
	}
	got, err := d.Sample(context.Background())
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if gotPath != "/" || got.Percent != 42.5 || got.FreeBytes != 1234 {
		t.Errorf("Sample = %+v from %q", got, gotPath)
	}
}

func TestNetworkSample(t *testing.T) {
	n := NewNetwork()
	n.counters = func(_ context.Context, pernic bool) ([]net.IOCountersStat, error) {
		if pernic {
			t.Error("expected aggregate counters")
		}
		return []net.IOCountersStat{{Name: "all", BytesSent: 10, BytesRecv: 20}}, nil
	}
	got, err := n.Sample(context.Background())
	if err != nil || got.SentBytes != 10 || got.RecvBytes != 20 {
		t.Errorf("Sample = (%+v, %v)", got, err)
	}

	n.counters = func(context.Context, bool) ([]net.IOCountersStat, error) { return nil, nil }
	if _, err := n.Sample(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("empty counters err = %v, want ErrUnavailable", err)
	}
}

func TestLoadSample(t *testing.T) {
	l := NewLoad()
	l.avg = func(context.Context) (*load.AvgStat, error) {
		return &load.AvgStat{Load1: 1.5, Load5: 1, Load15: 0.5}, nil
	}
	if got, err := l.Sample(context.Background()); err != nil || got != 1.5 {
		t.Errorf("Sample = (%v, %v), want (1.5, nil)", got, err)
	}
}
