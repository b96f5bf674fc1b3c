package sampler

import (
	"context"
	"errors"
	"time"

	"github.com/Dicklesworthstone/moonlight/internal/source"
)

// gpuPollInterval is how often the worker queries the vendor tool. The tool
// can take most of its timeout on some drivers, so it runs off the tick path
// and each tick reads the cached result.
const gpuPollInterval = 2 * time.Second

func (s *Sampler) gpuLoop(ctx context.Context) {
	if s.src.GPU == nil {
		return
	}
	s.UpdateGPU(ctx)

	ticker := time.NewTicker(gpuPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.UpdateGPU(ctx)
		}
	}
}

// UpdateGPU queries the GPU adapter once and caches the result for the
// following ticks. It is a no-op while GPU sampling is disabled.
func (s *Sampler) UpdateGPU(ctx context.Context) {
	if s.src.GPU == nil || !s.Settings().GPU {
		return
	}
	stat, err := s.src.GPU.Sample(ctx)
	if err != nil && ctx.Err() != nil {
		return
	}
	if err != nil {
		if errors.Is(err, source.ErrUnavailable) {
			s.logger.Debug("gpu unavailable", "error", err)
		} else {
			s.logger.Warn("gpu sample failed", "error", err)
		}
	}
	s.setGPU(gpuReading{stat: stat, err: err, at: s.now()})
}

func (s *Sampler) setGPU(r gpuReading) {
	s.gpuMu.Lock()
	s.gpu = r
	s.gpuMu.Unlock()
}

func (s *Sampler) gpuSnapshot() gpuReading {
	s.gpuMu.RLock()
	defer s.gpuMu.RUnlock()
	return s.gpu
}
