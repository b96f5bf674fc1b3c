package sampler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dicklesworthstone/moonlight/internal/logging"
	"github.com/Dicklesworthstone/moonlight/internal/ranking"
	"github.com/Dicklesworthstone/moonlight/internal/selfproc"
	"github.com/Dicklesworthstone/moonlight/internal/source"
)

// DefaultSources wires the gopsutil-backed adapters for this host. Only
// failing to open the monitor's own process is fatal.
func DefaultSources(ctx context.Context, logger *slog.Logger) (Sources, error) {
	logger = logging.OrDiscard(logger)
	self, err := selfproc.New(ctx)
	if err != nil {
		return Sources{}, fmt.Errorf("sampler: %w", err)
	}

	gpuName := ""
	if cards, err := source.GPUCards(); err == nil {
		gpuName = source.PreferredGPUName(cards)
		logger.Info("gpu inventory", "cards", cards)
	} else if !errors.Is(err, source.ErrUnavailable) {
		logger.Warn("gpu inventory failed", "error", err)
	}

	disk := source.NewDisk(source.DefaultDiskPath)
	return Sources{
		CPU:         source.NewCPU(),
		Load:        source.NewLoad(),
		Memory:      source.NewMemory(),
		Disk:        disk,
		DiskPath:    disk.Path,
		Network:     source.NewNetwork(),
		Temperature: source.NewTemperature(),
		GPU:         source.NewGPU(),
		GPUName:     gpuName,
		Self:        self,
		Processes:   ranking.New(self.PID()),
	}, nil
}
