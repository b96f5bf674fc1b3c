// Package sampler runs the periodic sampling pass: it invokes every counter
// adapter, feeds the rate calculators and history rings, and assembles one
// model.Frame per tick for the presentation layer.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Dicklesworthstone/moonlight/internal/config"
	"github.com/Dicklesworthstone/moonlight/internal/history"
	"github.com/Dicklesworthstone/moonlight/internal/logging"
	"github.com/Dicklesworthstone/moonlight/internal/model"
	"github.com/Dicklesworthstone/moonlight/internal/rate"
	"github.com/Dicklesworthstone/moonlight/internal/source"
)

// DefaultInterval is the tick period when none is configured.
const DefaultInterval = 2 * time.Second

// Settings are the parts of the user configuration the sampler honours.
// They arrive once at construction and again through Apply whenever the
// presentation layer reports a settings change.
type Settings struct {
	Interval    time.Duration
	GPU         bool
	Temperature bool
}

// FromConfig extracts the sampler settings from a user configuration.
func FromConfig(cfg config.Config) Settings {
	return normalize(Settings{
		Interval:    cfg.Interval(),
		GPU:         cfg.ShowGPU,
		Temperature: cfg.ShowTemp,
	})
}

// SelfTracker reports the monitor's own usage.
type SelfTracker interface {
	PID() int
	Sample(ctx context.Context, totalMem uint64) (model.Self, error)
}

// Ranker produces the top-process rows.
type Ranker interface {
	Rank(ctx context.Context) ([]model.ProcessInfo, error)
}

// Sources are the adapters invoked on every tick. A nil adapter is treated
// as permanently Unavailable.
type Sources struct {
	CPU         source.Source[float64]
	Load        source.Source[float64]
	Memory      source.Source[source.MemoryStat]
	Disk        source.Source[source.DiskStat]
	DiskPath    string
	Network     source.Source[source.NetStat]
	Temperature source.Source[float64]
	GPU         source.Source[source.GPUStat]
	GPUName     string
	Self        SelfTracker
	Processes   Ranker
}

// Sampler owns the current snapshot state and all history buffers.
type Sampler struct {
	src    Sources
	logger *slog.Logger
	now    func() time.Time

	cpuHist *history.Ring
	memHist *history.Ring
	sent    rate.Counter
	recv    rate.Counter

	// last-known values carried between ticks
	memTotal uint64
	self     model.Self

	running atomic.Bool

	mu       sync.Mutex
	settings Settings
	changed  chan struct{}
	refresh  chan struct{}

	gpuMu sync.RWMutex
	gpu   gpuReading
}

type gpuReading struct {
	stat source.GPUStat
	err  error
	at   time.Time
}

// Option configures a Sampler.
type Option func(*Sampler)

func WithLogger(l *slog.Logger) Option { return func(s *Sampler) { s.logger = logging.OrDiscard(l) } }

// WithHistory sets the capacity of each trend buffer.
func WithHistory(capacity int) Option {
	return func(s *Sampler) {
		s.cpuHist = history.New(capacity)
		s.memHist = history.New(capacity)
	}
}

func WithSettings(st Settings) Option { return func(s *Sampler) { s.settings = normalize(st) } }

func WithClock(now func() time.Time) Option { return func(s *Sampler) { s.now = now } }

func New(src Sources, opts ...Option) *Sampler {
	s := &Sampler{
		src:      src,
		logger:   logging.Discard(),
		now:      time.Now,
		cpuHist:  history.New(history.DefaultCapacity),
		memHist:  history.New(history.DefaultCapacity),
		settings: Settings{Interval: DefaultInterval, GPU: true, Temperature: true},
		changed:  make(chan struct{}, 1),
		refresh:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	if src.Self != nil {
		s.self.PID = src.Self.PID()
	}
	return s
}

func normalize(st Settings) Settings {
	if st.Interval <= 0 {
		st.Interval = DefaultInterval
	}
	return st
}

// Settings returns the settings currently in effect.
func (s *Sampler) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Apply is the settings-changed signal. A new interval takes effect on the
// running loop without waiting for the current period to elapse.
func (s *Sampler) Apply(st Settings) {
	st = normalize(st)
	s.mu.Lock()
	prev := s.settings
	s.settings = st
	s.mu.Unlock()
	if prev.GPU && !st.GPU {
		s.setGPU(gpuReading{err: source.ErrUnavailable, at: s.now()})
	}
	s.logger.Info("settings applied", "interval", st.Interval, "gpu", st.GPU, "temperature", st.Temperature)
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// Refresh asks the running loop for an immediate extra pass.
func (s *Sampler) Refresh() {
	select {
	case s.refresh <- struct{}{}:
	default:
	}
}

// Stream runs the sampling loop until ctx is done and returns a channel
// that always holds the most recent frame. A consumer that falls behind
// sees the latest frame, never a backlog. The channel is closed on exit.
func (s *Sampler) Stream(ctx context.Context) <-chan model.Frame {
	ch := make(chan model.Frame, 1)
	go s.gpuLoop(ctx)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(s.Settings().Interval)
		defer ticker.Stop()

		s.emit(ctx, ch)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.emit(ctx, ch)
			case <-s.refresh:
				s.emit(ctx, ch)
			case <-s.changed:
				ticker.Reset(s.Settings().Interval)
			}
		}
	}()
	return ch
}

func (s *Sampler) emit(ctx context.Context, ch chan model.Frame) {
	frame, ok := s.Tick(ctx)
	if !ok || ctx.Err() != nil {
		return
	}
	select {
	case ch <- frame:
	default:
		// Replace the stale frame; this goroutine is the only sender.
		select {
		case <-ch:
		default:
		}
		ch <- frame
	}
}

// Tick runs one sampling pass. It reports false without sampling when a
// previous pass is still in progress, so slow passes never overlap.
func (s *Sampler) Tick(ctx context.Context) (model.Frame, bool) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Debug("tick skipped, previous pass still running")
		return model.Frame{}, false
	}
	defer s.running.Store(false)

	start := s.now()
	frame := s.sample(ctx, start)
	s.logger.Debug("tick complete",
		"duration", s.now().Sub(start),
		"status", frame.Snapshot.Status.String(),
		"failed", len(frame.Snapshot.Failed),
	)
	return frame, true
}

// pass accumulates per-step outcomes for one tick.
type pass struct {
	s      *Sampler
	failed []string
}

// run executes one step. Unavailable is silent; any other error or a panic
// is logged, recorded as a failure, and does not stop later steps.
func (p *pass) run(metric string, fn func() error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.s.logger.Error("metric step panicked", "metric", metric, "panic", fmt.Sprint(r))
			p.failed = append(p.failed, metric)
			ok = false
		}
	}()
	err := fn()
	switch {
	case err == nil:
		return true
	case errors.Is(err, source.ErrUnavailable):
		p.s.logger.Debug("metric unavailable", "metric", metric, "error", err)
	default:
		p.s.logger.Warn("metric sample failed", "metric", metric, "error", err)
		p.failed = append(p.failed, metric)
	}
	return false
}

func (s *Sampler) sample(ctx context.Context, now time.Time) model.Frame {
	st := s.Settings()
	p := &pass{s: s}
	snap := model.Snapshot{
		Timestamp: now,
		Interval:  model.Millis(st.Interval),
		Disk:      model.Disk{Path: s.src.DiskPath},
		GPU:       model.GPU{Name: s.src.GPUName},
	}

	p.run("cpu", func() error {
		v, err := sampleOf(ctx, s.src.CPU)
		if err != nil {
			return err
		}
		snap.CPU.Percent = model.Some(v)
		s.cpuHist.Push(v)
		return nil
	})

	p.run("load", func() error {
		v, err := sampleOf(ctx, s.src.Load)
		if err != nil {
			return err
		}
		snap.CPU.Load1 = model.Some(v)
		return nil
	})

	p.run("memory", func() error {
		m, err := sampleOf(ctx, s.src.Memory)
		if err != nil {
			return err
		}
		snap.Memory = model.Memory{
			Percent:    model.Some(m.Percent),
			FreeBytes:  model.Some(m.FreeBytes),
			TotalBytes: model.Some(m.Total),
		}
		s.memTotal = m.Total
		s.memHist.Push(m.Percent)
		return nil
	})

	p.run("disk", func() error {
		d, err := sampleOf(ctx, s.src.Disk)
		if err != nil {
			return err
		}
		snap.Disk.Percent = model.Some(d.Percent)
		snap.Disk.FreeBytes = model.Some(d.FreeBytes)
		return nil
	})

	p.run("network", func() error {
		n, err := sampleOf(ctx, s.src.Network)
		if err != nil {
			return err
		}
		snap.Network.SentBytes = model.Some(n.SentBytes)
		snap.Network.RecvBytes = model.Some(n.RecvBytes)
		if r, ok := s.sent.Observe(n.SentBytes, now); ok {
			snap.Network.SentRate = model.Some(r)
		}
		if r, ok := s.recv.Observe(n.RecvBytes, now); ok {
			snap.Network.RecvRate = model.Some(r)
		}
		return nil
	})

	if st.Temperature {
		p.run("temperature", func() error {
			v, err := sampleOf(ctx, s.src.Temperature)
			if err != nil {
				return err
			}
			snap.TempC = model.Some(v)
			return nil
		})
	}

	if st.GPU {
		p.run("gpu", func() error {
			r := s.gpuSnapshot()
			if r.at.IsZero() || r.err != nil {
				// Worker failures are always Unavailable; they were logged there.
				return source.ErrUnavailable
			}
			snap.GPU.Percent = model.Some(r.stat.Percent)
			snap.GPU.MemoryPercent = r.stat.MemoryPercent
			snap.GPU.TempC = r.stat.TempC
			return nil
		})
	}

	p.run("self", func() error {
		if s.src.Self == nil {
			return source.ErrUnavailable
		}
		self, err := s.src.Self.Sample(ctx, s.memTotal)
		if err != nil {
			return err
		}
		s.self = self
		return nil
	})
	snap.Self = s.self

	p.run("processes", func() error {
		if s.src.Processes == nil {
			return source.ErrUnavailable
		}
		top, err := s.src.Processes.Rank(ctx)
		if err != nil {
			return err
		}
		snap.Top = top
		return nil
	})
	if snap.Top == nil {
		snap.Top = []model.ProcessInfo{}
	}

	snap.Failed = p.failed
	snap.Status = model.StatusOf(len(p.failed) > 0, snap.CPU.Load1)
	return model.Frame{
		Snapshot: snap,
		History: model.History{
			CPU:    s.cpuHist.Snapshot(),
			Memory: s.memHist.Snapshot(),
		},
	}
}

func sampleOf[T any](ctx context.Context, src source.Source[T]) (T, error) {
	if src == nil {
		var zero T
		return zero, source.ErrUnavailable
	}
	return src.Sample(ctx)
}
