package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/moonlight/internal/autostart"
	"github.com/Dicklesworthstone/moonlight/internal/config"
	"github.com/Dicklesworthstone/moonlight/internal/logging"
	"github.com/Dicklesworthstone/moonlight/internal/sampler"
	"github.com/Dicklesworthstone/moonlight/internal/ui"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

// options are the persistent flags shared by every subcommand.
type options struct {
	configPath string
	interval   time.Duration
	noGPU      bool
	noTemp     bool
	verbose    bool
}

// session is the state every subcommand starts from. file mirrors the
// config on disk; cfg is file with env and flag overrides applied.
type session struct {
	opts     *options
	path     string
	logger   *slog.Logger
	closeLog func() error

	mu   sync.Mutex
	file config.Config
	cfg  config.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "moonlight",
		Short: "Live CPU, memory, GPU, temperature and process dashboard",
		Long: fmt.Sprintf(`%s

A lightweight system monitor. Run without arguments for the dashboard, or use
%s / %s for scriptable output.`,
			bold("moonlight"), cyan("moonlight snapshot"), cyan("moonlight stream")),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.close()
			return runDashboard(cmd.Context(), s)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "config file (default ~/.config/moonlight/config.json)")
	f.DurationVar(&opts.interval, "interval", 0, "refresh interval for this run, e.g. 1s")
	f.BoolVar(&opts.noGPU, "no-gpu", false, "disable GPU sampling")
	f.BoolVar(&opts.noTemp, "no-temp", false, "disable temperature sampling")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newSnapshotCmd(opts), newStreamCmd(opts), newConfigCmd(opts))
	return root
}

// execute runs root under a context cancelled by SIGINT or SIGTERM.
func execute(root *cobra.Command) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return root.ExecuteContext(ctx)
}

// open sets up logging and loads the configuration. Config problems are
// logged and never fatal: Load always yields a usable Config.
func (o *options) open() (*session, error) {
	logger, closeLog := logging.Discard(), func() error { return nil }
	if logPath, err := logging.DefaultPath(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", yellow("warning:"), err)
	} else if l, c, err := logging.Setup(logPath, o.verbose); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", yellow("warning:"), err)
	} else {
		logger, closeLog = l, c
	}

	path, err := configPath(o)
	if err != nil {
		closeLog()
		return nil, err
	}

	cfg, err := config.Load(path)
	switch {
	case err == nil:
	case errors.Is(err, config.ErrMalformed):
		logger.Warn("config malformed, using defaults", "path", path, "error", err)
	default:
		logger.Warn("config loaded with problems", "path", path, "error", err)
	}

	s := &session{opts: o, path: path, logger: logger, closeLog: closeLog, file: cfg}
	s.cfg = s.override(cfg)
	logger.Info("moonlight starting", "pid", os.Getpid(), "config", path, "interval", s.cfg.Interval())
	return s, nil
}

// override applies environment and flag overrides on top of a loaded config.
func (s *session) override(cfg config.Config) config.Config {
	cfg = config.ApplyEnv(cfg)
	if s.opts.interval > 0 {
		cfg.RefreshInterval = int(s.opts.interval / time.Millisecond)
	}
	if s.opts.noGPU {
		cfg.ShowGPU = false
	}
	if s.opts.noTemp {
		cfg.ShowTemp = false
	}
	return cfg
}

// persist saves the keys that differ between the effective config and next,
// leaving overridden keys on disk untouched, and returns the new effective
// config with overrides re-applied.
func (s *session) persist(next config.Config) (config.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	file := config.ApplyChanges(s.file, s.cfg, next)
	if err := config.Save(s.path, file); err != nil {
		return s.cfg, err
	}
	s.file = file
	s.cfg = s.override(file)
	return s.cfg, nil
}

// reload records a config read back from disk and returns its effective form.
func (s *session) reload(file config.Config) config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.file = file
	s.cfg = s.override(file)
	return s.cfg
}

func (s *session) close() {
	if err := s.closeLog(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", yellow("warning:"), err)
	}
}

func (s *session) newSampler(ctx context.Context) (*sampler.Sampler, error) {
	src, err := sampler.DefaultSources(ctx, s.logger)
	if err != nil {
		return nil, err
	}
	return sampler.New(src,
		sampler.WithLogger(s.logger),
		sampler.WithSettings(sampler.FromConfig(s.cfg)),
	), nil
}

func (s *session) syncAutostart(enabled bool) {
	path, err := autostart.DefaultPath()
	if err != nil {
		s.logger.Warn("autostart path", "error", err)
		return
	}
	exe, err := os.Executable()
	if err != nil {
		s.logger.Warn("locate executable", "error", err)
		return
	}
	changed, err := autostart.Sync(path, enabled, exe)
	if err != nil {
		s.logger.Warn("autostart sync", "path", path, "error", err)
		return
	}
	if changed {
		s.logger.Info("autostart updated", "path", path, "enabled", enabled)
	}
}

func runDashboard(ctx context.Context, s *session) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.syncAutostart(s.cfg.Autostart)
	smp, err := s.newSampler(ctx)
	if err != nil {
		return err
	}
	frames := smp.Stream(ctx)

	save := func(next config.Config) (config.Config, error) {
		cfg, err := s.persist(next)
		if err != nil {
			return cfg, err
		}
		s.syncAutostart(cfg.Autostart)
		return cfg, nil
	}
	model := ui.New(s.cfg, smp, frames, save, s.logger)

	err = ui.Run(model, func(prog *tea.Program) {
		go func() {
			<-ctx.Done()
			prog.Quit()
		}()
		go func() {
			err := config.Watch(ctx, s.path, s.logger, func(cfg config.Config) {
				prog.Send(ui.ConfigMsg(s.reload(cfg)))
			})
			if err != nil && ctx.Err() == nil {
				s.logger.Warn("config watch stopped", "error", err)
			}
		}()
	})
	s.logger.Info("moonlight stopped")
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
