package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/Dicklesworthstone/moonlight/internal/model"
)

const (
	// DefaultGPUTool is the vendor query tool.
	DefaultGPUTool = "nvidia-smi"
	// DefaultGPUTimeout bounds a single invocation of the tool.
	DefaultGPUTimeout = 2 * time.Second
)

// gpuQueryArgs is the fixed argument set: utilization%, memory used MiB,
// memory total MiB, temperature C; no header, no units.
var gpuQueryArgs = []string{
	"--query-gpu=utilization.gpu,memory.used,memory.total,temperature.gpu",
	"--format=csv,noheader,nounits",
}

// GPUStat is one device row reported by the vendor tool.
type GPUStat struct {
	Percent       float64
	MemoryPercent model.Opt[float64]
	TempC         model.Opt[float64]
}

// GPU shells out to the vendor tool. Every failure mode (tool absent,
// non-zero exit, timeout, malformed output) is reported as ErrUnavailable and
// Sample returns within Timeout.
type GPU struct {
	Tool     string
	Timeout  time.Duration
	lookPath func(file string) (string, error)
	run      func(ctx context.Context, name string, args ...string) (string, error)
}

func NewGPU() *GPU {
	return &GPU{
		Tool:     DefaultGPUTool,
		Timeout:  DefaultGPUTimeout,
		lookPath: exec.LookPath,
		run:      runCmd,
	}
}

func (g *GPU) Sample(ctx context.Context) (GPUStat, error) {
	path, err := g.lookPath(g.Tool)
	if err != nil {
		return GPUStat{}, fmt.Errorf("%w: %s not found", ErrUnavailable, g.Tool)
	}
	timeout := g.Timeout
	if timeout <= 0 || timeout > DefaultGPUTimeout {
		timeout = DefaultGPUTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := g.run(ctx, path, gpuQueryArgs...)
	if err != nil {
		return GPUStat{}, fmt.Errorf("%w: %s: %v", ErrUnavailable, g.Tool, err)
	}
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		stat, err := ParseGPULine(line)
		if err != nil {
			return GPUStat{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return stat, nil
	}
	return GPUStat{}, fmt.Errorf("%w: %s: empty output", ErrUnavailable, g.Tool)
}

// ParseGPULine parses "util, mem_used, mem_total, temp". Utilisation must be
// numeric; memory and temperature may be reported as "[N/A]" by the tool.
func ParseGPULine(line string) (GPUStat, error) {
	parts := strings.Split(line, ",")
	if len(parts) < 4 {
		return GPUStat{}, fmt.Errorf("source: gpu row %q: want 4 fields, got %d", line, len(parts))
	}
	util, err := parseFloat(parts[0])
	if err != nil {
		return GPUStat{}, fmt.Errorf("source: gpu utilization %q: %w", parts[0], err)
	}
	stat := GPUStat{Percent: util}
	used, errUsed := parseFloat(parts[1])
	total, errTotal := parseFloat(parts[2])
	if errUsed == nil && errTotal == nil && total > 0 {
		stat.MemoryPercent = model.Some(used / total * 100)
	}
	if temp, err := parseFloat(parts[3]); err == nil {
		stat.TempC = model.Some(temp)
	}
	return stat, nil
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	return strconv.ParseFloat(s, 64)
}

// gpuWaitDelay caps how long Wait lingers on the child's pipes after the
// context kills it.
const gpuWaitDelay = 100 * time.Millisecond

func runCmd(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = gpuWaitDelay
	out, err := cmd.Output()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("exit status %d", exitErr.ExitCode())
		}
		return "", err
	}
	return string(out), nil
}

var _ Source[GPUStat] = (*GPU)(nil)
